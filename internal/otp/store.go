package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned when no code is pending for the email.
	ErrNotFound = errors.New("otp: no code pending")

	// ErrMismatch is returned when the supplied code is wrong.
	ErrMismatch = errors.New("otp: code mismatch")
)

// Store keeps one pending code per email in redis with a TTL. Verification
// consumes the code whether or not it matches, so a code can only be guessed
// once.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates an OTP store. TTL defaults to five minutes.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{client: client, ttl: ttl}
}

func key(email string) string {
	return "otp:" + email
}

// Generate creates a fresh 4-digit code for the email, replacing any pending
// one and restarting the TTL.
func (s *Store) Generate(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("otp: generate: %w", err)
	}
	code := fmt.Sprintf("%04d", n.Int64())
	if err := s.client.Set(ctx, key(email), code, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("otp: store: %w", err)
	}
	return code, nil
}

// Verify consumes the pending code for the email and compares it. An expired
// or absent code reports ErrNotFound; a wrong code reports ErrMismatch.
func (s *Store) Verify(ctx context.Context, email, code string) error {
	stored, err := s.client.GetDel(ctx, key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("otp: lookup: %w", err)
	}
	if stored != code {
		return ErrMismatch
	}
	return nil
}
