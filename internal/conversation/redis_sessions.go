package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore is a SessionStore backed by Redis, one JSON value per
// user key. Selected with SESSION_STORE=redis for deployments that keep
// session state out of DynamoDB.
type RedisSessionStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

// NewRedisSessionStore creates the store. A zero ttl keeps sessions forever.
func NewRedisSessionStore(redisClient *redis.Client, ttl time.Duration) *RedisSessionStore {
	if redisClient == nil {
		return nil
	}
	return &RedisSessionStore{
		redis:  redisClient,
		tracer: otel.Tracer("chatrelay.internal.conversation.sessions"),
		ttl:    ttl,
	}
}

func (s *RedisSessionStore) GetSession(ctx context.Context, userID string) (*UserSession, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if userID == "" {
		return nil, errors.New("conversation: session userID required")
	}

	ctx, span := s.tracer.Start(ctx, "conversation.sessions.get")
	defer span.End()

	raw, err := s.redis.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to get session: %w", err)
	}

	var session UserSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) PutSession(ctx context.Context, session UserSession) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if session.UserID == "" {
		return errors.New("conversation: session userID required")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("conversation: failed to encode session: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "conversation.sessions.put")
	defer span.End()

	if err := s.redis.Set(ctx, sessionKey(session.UserID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to put session: %w", err)
	}
	return nil
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}
