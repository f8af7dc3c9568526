package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL is how long a verification code stays valid. Redis expiry takes the
// place of a cleanup job: an expired code simply stops existing.
const TTL = 10 * time.Minute

// Store keeps pending verification codes in Redis, one per email address.
// Issuing a new code replaces any pending one.
type Store struct {
	rdb *redis.Client
}

// NewStore creates a Store from a Redis URL.
func NewStore(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &Store{rdb: redis.NewClient(opts)}, nil
}

// Issue generates a fresh 6-digit code for the email and stores it with the
// standard TTL, replacing any previous code.
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, key(email), code, TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}
	return code, nil
}

// Pending reports whether a code is currently outstanding for the email.
func (s *Store) Pending(ctx context.Context, email string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check pending code: %w", err)
	}
	return n > 0, nil
}

// Verify checks the submitted code. A correct code is consumed (deleted) so
// it cannot be replayed; a missing or expired key verifies as false.
func (s *Store) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.rdb.Get(ctx, key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read code: %w", err)
	}
	if stored != code {
		return false, nil
	}

	if err := s.rdb.Del(ctx, key(email)).Err(); err != nil {
		return false, fmt.Errorf("failed to consume code: %w", err)
	}
	return true, nil
}

// Close closes the Redis client connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func key(email string) string {
	return "otp:" + strings.ToLower(email)
}

// GenerateCode returns a random 6-digit verification code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
