package service

import (
	"context"
	"encoding/json"

	"github.com/notsocj/SmartExam/internal/config"
	ws "github.com/notsocj/SmartExam/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ProctorNotifier fans out live attempt events to whoever is watching a
// test. Best-effort: a failed publish never fails the attempt operation.
type ProctorNotifier interface {
	Notify(ctx context.Context, event ws.ProctorEvent)
}

// ProctorService publishes attempt events on the test's Redis channel and
// lets monitor connections subscribe to it. Pub/sub decouples the request
// path from however many admin monitors are open, including across
// multiple server instances.
type ProctorService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewProctorService creates a new ProctorService.
func NewProctorService(rdb *redis.Client, log zerolog.Logger) *ProctorService {
	return &ProctorService{
		rdb: rdb,
		log: log.With().Str("component", "proctor").Logger(),
	}
}

// Notify publishes one event on the test's channel.
func (s *ProctorService) Notify(ctx context.Context, event ws.ProctorEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Msg("Marshal proctor event failed")
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.TestProctorChannel(event.TestID), data).Err(); err != nil {
		s.log.Error().Err(err).Int("test_id", event.TestID).Msg("Publish proctor event failed")
	}
}

// Subscribe opens a subscription on the test's channel. The caller owns the
// returned PubSub and must Close it.
func (s *ProctorService) Subscribe(ctx context.Context, testID int) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.TestProctorChannel(testID))
}
