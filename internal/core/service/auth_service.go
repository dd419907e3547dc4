package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
	"github.com/candycraft/sweetshop-api/internal/core/ports"
)

const (
	defaultTokenTTL   = 7 * 24 * time.Hour
	minPasswordLength = 6
)

// AuthConfig holds the token and hashing parameters.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// Claims is the payload of a session token.
type Claims struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and token validation.
type AuthService struct {
	repo       ports.UserRepository
	throttle   ports.LoginThrottle
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	validate   *validator.Validate
	log        zerolog.Logger
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService wires the service. A nil throttle disables login throttling.
func NewAuthService(repo ports.UserRepository, cfg AuthConfig, throttle ports.LoginThrottle, log zerolog.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if throttle == nil {
		throttle = NopThrottle{}
	}
	return &AuthService{
		repo:       repo,
		throttle:   throttle,
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cfg.BcryptCost,
		validate:   validator.New(),
		log:        log,
		now:        time.Now,
	}
}

// Register creates a customer (or the requested role) and returns a session token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.Validationf("name, email, and password are required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, domain.Validationf("please provide a valid email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.Validationf("password must be at least %d characters", minPasswordLength)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		return nil, domain.Validationf("role must be one of: admin, customer")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.Errorf(domain.ErrDuplicateEmail, "Email already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.Errorf(domain.ErrDuplicateEmail, "Email already registered")
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return &ports.AuthResult{User: created.Public(), Token: token}, nil
}

// Login verifies credentials. An unknown email and a wrong password fail with
// the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validationf("email and password are required")
	}

	allowed, err := s.throttle.Allowed(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
	} else if !allowed {
		return nil, domain.Errorf(domain.ErrTooManyAttempts, "too many failed login attempts, try again later")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		// Burn a comparison so unknown emails cost the same as bad passwords.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, s.loginFailed(ctx, email)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.loginFailed(ctx, email)
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login throttle")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{User: user.Public(), Token: token}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email string) error {
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
	s.log.Info().Msg("login failed")
	return domain.Errorf(domain.ErrInvalidCredentials, "Invalid email or password")
}

// Profile returns the public view of the user behind an identity.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.PublicUser, error) {
	if !domain.ValidID(userID) {
		return nil, domain.Errorf(domain.ErrInvalidID, "Invalid user ID")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Errorf(domain.ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	pub := user.Public()
	return &pub, nil
}

// EnsureUser creates the account when missing, otherwise resets its password
// and role. Used to seed default accounts at startup.
func (s *AuthService) EnsureUser(ctx context.Context, name, email, password string, role domain.Role) (created bool, err error) {
	email = domain.NormalizeEmail(email)
	if !role.Valid() {
		return false, domain.Validationf("role must be one of: admin, customer")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		if _, err := s.Register(ctx, ports.RegisterInput{Name: name, Email: email, Password: password, Role: role}); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("ensure user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("ensure user: hash password: %w", err)
	}
	if err := s.repo.UpdateCredentials(ctx, existing.ID, string(hash), role); err != nil {
		return false, fmt.Errorf("ensure user: %w", err)
	}
	return false, nil
}

// ValidateToken verifies the signature and expiry of a session token.
func (s *AuthService) ValidateToken(token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.Errorf(domain.ErrUnauthenticated, "Access token required")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.Errorf(domain.ErrUnauthenticated, "Invalid or expired token")
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, domain.Errorf(domain.ErrUnauthenticated, "Invalid or expired token")
	}

	return &domain.Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("sweetshop-dummy-password"), s.bcryptCost)
	})
	return s.dummyHash
}

// NopThrottle never blocks a login.
type NopThrottle struct{}

func (NopThrottle) Allowed(context.Context, string) (bool, error) { return true, nil }
func (NopThrottle) RecordFailure(context.Context, string) error   { return nil }
func (NopThrottle) Reset(context.Context, string) error           { return nil }
