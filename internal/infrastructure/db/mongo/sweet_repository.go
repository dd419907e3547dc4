package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
	"github.com/candycraft/sweetshop-api/internal/core/ports"
)

const collectionSweets = "sweets"

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

type SweetRepository struct {
	col *mongo.Collection
}

func NewSweetRepository(db *mongo.Database) *SweetRepository {
	return &SweetRepository{col: db.Collection(collectionSweets)}
}

type mongoSweet struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Category    string             `bson:"category"`
	Price       float64            `bson:"price"`
	Quantity    int                `bson:"quantity"`
	Description string             `bson:"description,omitempty"`
	ImageURL    string             `bson:"image_url,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (m *mongoSweet) toDomain() *domain.Sweet {
	return &domain.Sweet{
		ID:          m.ID.Hex(),
		Name:        m.Name,
		Category:    domain.Category(m.Category),
		Price:       m.Price,
		Quantity:    m.Quantity,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// Create inserts a new sweet document and returns it with its assigned id.
func (r *SweetRepository) Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error) {
	doc := mongoSweet{
		ID:          primitive.NewObjectID(),
		Name:        s.Name,
		Category:    string(s.Category),
		Price:       s.Price,
		Quantity:    s.Quantity,
		Description: s.Description,
		ImageURL:    s.ImageURL,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert sweet: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SweetRepository) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var m mongoSweet
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		return nil, notFound(err, "find sweet")
	}
	return m.toDomain(), nil
}

// List returns one page ordered newest first together with the collection size.
func (r *SweetRepository) List(ctx context.Context, skip int64, limit int) ([]*domain.Sweet, int64, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count sweets: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(skip).
		SetLimit(int64(limit))

	sweets, err := r.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	return sweets, total, nil
}

// Search applies the text index when a query is given and an inclusive price
// range for whichever bounds are present.
func (r *SweetRepository) Search(ctx context.Context, f ports.SearchFilter) ([]*domain.Sweet, error) {
	filter := bson.M{}
	if f.Query != "" {
		filter["$text"] = bson.M{"$search": f.Query}
	}

	price := bson.M{}
	if f.PriceMin != nil {
		price["$gte"] = *f.PriceMin
	}
	if f.PriceMax != nil {
		price["$lte"] = *f.PriceMax
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	return r.find(ctx, filter, options.Find().SetSort(newestFirst))
}

// Update sets only the fields present in the patch.
func (r *SweetRepository) Update(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Category != nil {
		set["category"] = string(*patch.Category)
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.ImageURL != nil {
		set["image_url"] = *patch.ImageURL
	}

	var m mongoSweet
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		return nil, notFound(err, "update sweet")
	}
	return m.toDomain(), nil
}

func (r *SweetRepository) Delete(ctx context.Context, id string) (*domain.Sweet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var m mongoSweet
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		return nil, notFound(err, "delete sweet")
	}
	return m.toDomain(), nil
}

// AdjustQuantity applies delta in one findAndModify. For a decrement the filter
// also requires quantity >= -delta, for an increment quantity <= MaxQuantity-delta,
// so the bound check and the write cannot be interleaved with another update.
func (r *SweetRepository) AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Sweet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	} else {
		filter["quantity"] = bson.M{"$lte": domain.MaxQuantity - delta}
	}
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	var m mongoSweet
	err = r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err == nil {
		return m.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("adjust quantity: %w", err)
	}
	// The conditional update matched nothing: tell a missing sweet apart from
	// a stock bound.
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("adjust quantity: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}
	if delta >= 0 {
		return nil, domain.ErrStockLimit
	}
	return nil, domain.ErrInsufficientStock
}

// EnsureIndexes creates the text index used by Search and the sort indexes.
func (r *SweetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "category", Value: "text"}},
			Options: options.Index().SetName("name_category_text"),
		},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *SweetRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Sweet, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find sweets: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoSweet
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sweets: %w", err)
	}

	sweets := make([]*domain.Sweet, len(docs))
	for i := range docs {
		sweets[i] = docs[i].toDomain()
	}
	return sweets, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
