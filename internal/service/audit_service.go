package service

import (
	"context"
	"encoding/json"

	"github.com/notsocj/SmartExam/internal/config"
	"github.com/notsocj/SmartExam/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Auditor records test lifecycle events. Best-effort: recording never fails
// the operation that produced the event.
type Auditor interface {
	Record(ctx context.Context, event model.AuditEvent)
}

// QueueAuditor pushes events onto the Redis audit queue for the audit
// worker to persist.
type QueueAuditor struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewQueueAuditor creates a new QueueAuditor.
func NewQueueAuditor(rdb *redis.Client, log zerolog.Logger) *QueueAuditor {
	return &QueueAuditor{
		rdb: rdb,
		log: log.With().Str("component", "auditor").Logger(),
	}
}

// Record queues one event. Failures are logged and swallowed.
func (a *QueueAuditor) Record(ctx context.Context, event model.AuditEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		a.log.Error().Err(err).Msg("Marshal audit event failed")
		return
	}
	if err := a.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, data).Err(); err != nil {
		a.log.Error().Err(err).
			Int("user_id", event.UserID).
			Str("event_type", string(event.EventType)).
			Msg("Queue audit event failed")
	}
}
