package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSubmissionInFlight = errors.New("a submission for this form is already in flight")
)

// Guard serializes form submissions: while a submission for a given form key
// is outstanding, duplicates of the same submission are rejected instead of
// producing a second write.
type Guard interface {
	WithSubmission(ctx context.Context, formKey string, fn func(ctx context.Context) error) error
}

type redisSubmitGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSubmitGuard creates a guard backed by a per form-key Redis key.
func NewRedisSubmitGuard(client *redis.Client, ttl time.Duration) Guard {
	return &redisSubmitGuard{
		client: client,
		ttl:    ttl,
	}
}

func (g *redisSubmitGuard) WithSubmission(ctx context.Context, formKey string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("inflight:form:%s", formKey)
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire submission guard: %w", err)
	}
	if !ok {
		return ErrSubmissionInFlight
	}

	defer func() {
		_ = g.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, g.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var releaseScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (g *redisSubmitGuard) release(ctx context.Context, key, token string) error {
	_, err := releaseScript.Run(ctx, g.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release submission guard: %w", err)
	}
	return nil
}

// PassthroughGuard runs submissions without any duplicate protection. It is
// used where no Redis is available, e.g. in the simulator and in tests.
type PassthroughGuard struct{}

func (PassthroughGuard) WithSubmission(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
