package ports

import "context"

// LoginThrottle tracks failed logins per account key and blocks brute forcing.
type LoginThrottle interface {
	// Allowed reports whether another login attempt may be made for key.
	Allowed(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
