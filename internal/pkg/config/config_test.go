package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "sweetshop", cfg.Mongo.Database)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5, cfg.Login.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Login.LockoutWindow)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.True(t, cfg.Seed.Enabled)
	assert.Equal(t, "admin@sweetshop.com", cfg.Seed.AdminEmail)
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":           "s3cret",
		"PORT":                 "8080",
		"ENV":                  "production",
		"JWT_EXPIRES_IN":       "1h",
		"REDIS_ADDR":           "redis:6379",
		"CORS_ALLOWED_ORIGINS": "https://shop.example.com,https://admin.example.com",
		"SEED_USERS":           "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Len(t, cfg.HTTP.AllowedOrigins, 2)
	assert.False(t, cfg.Seed.Enabled)
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {},
		"blank secret":   {"JWT_SECRET": "   "},
		"bad cost":       {"JWT_SECRET": "x", "BCRYPT_COST": "2"},
		"bad duration":   {"JWT_SECRET": "x", "JWT_EXPIRES_IN": "7 days"},
		"negative rps":   {"JWT_SECRET": "x", "RATE_LIMIT_RPS": "-1"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
