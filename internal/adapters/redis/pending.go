package rediscache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/alekus2/portifolioalek/internal/domain"
	pkglog "github.com/alekus2/portifolioalek/pkg/log"
)

const pendingPrefix = "pending:"

// PendingStore is the ephemeral cache for registration fields captured
// before an identity is confirmed. All operations are best-effort: losing a
// pending record must never block signup or reconciliation.
type PendingStore interface {
	Save(ctx context.Context, email string, reg domain.PendingRegistration)
	// Read returns nil on a missing key and on any decode failure.
	Read(ctx context.Context, email string) *domain.PendingRegistration
	Clear(ctx context.Context, email string)
}

type pendingStore struct {
	client *goredis.Client
	logger pkglog.Logger
	ttl    time.Duration
}

func NewPendingStore(client *goredis.Client, logger pkglog.Logger, ttl time.Duration) PendingStore {
	return &pendingStore{client: client, logger: logger, ttl: ttl}
}

func pendingKey(email string) string {
	return pendingPrefix + strings.ToLower(strings.TrimSpace(email))
}

func (s *pendingStore) Save(ctx context.Context, email string, reg domain.PendingRegistration) {
	reg.Email = strings.ToLower(strings.TrimSpace(email))
	data, err := json.Marshal(reg)
	if err != nil {
		s.logger.Warn().Err(err).Msg("pending registration encode failed")
		return
	}
	if err := s.client.Set(ctx, pendingKey(email), data, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("email", reg.Email).Msg("pending registration save failed")
	}
}

func (s *pendingStore) Read(ctx context.Context, email string) *domain.PendingRegistration {
	val, err := s.client.Get(ctx, pendingKey(email)).Result()
	if err == goredis.Nil {
		return nil
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("pending registration read failed")
		return nil
	}
	return decodePending([]byte(val), s.logger)
}

func (s *pendingStore) Clear(ctx context.Context, email string) {
	if err := s.client.Del(ctx, pendingKey(email)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("pending registration clear failed")
	}
}

// decodePending treats corrupt payloads as absence, not as an error.
func decodePending(data []byte, logger pkglog.Logger) *domain.PendingRegistration {
	var reg domain.PendingRegistration
	if err := json.Unmarshal(data, &reg); err != nil {
		logger.Warn().Err(err).Msg("pending registration decode failed")
		return nil
	}
	return &reg
}
