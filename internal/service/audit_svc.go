package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/crediforum/crediforum-go/internal/model"
)

const (
	auditEventsKey = "credibility:events"

	// AuditMaxEvents is the retention cap of the audit list; the oldest
	// entries are trimmed on every write.
	AuditMaxEvents = 200
)

// AuditService is the capped, append-only sink for scoring decisions. It is
// a best-effort side channel: writes are never awaited for correctness and
// failures never surface to the vote path.
type AuditService struct {
	rdb *redis.Client
}

// NewAuditService creates an audit sink. A nil client turns every operation
// into a no-op.
func NewAuditService(rdb *redis.Client) *AuditService {
	return &AuditService{rdb: rdb}
}

// Append pushes one event and trims the list to AuditMaxEvents, newest
// first. Errors are logged and swallowed.
func (s *AuditService) Append(ctx context.Context, event model.AuditEvent) {
	if s.rdb == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("audit: marshal event error: %v", err)
		return
	}

	pipe := s.rdb.Pipeline()
	pipe.LPush(ctx, auditEventsKey, payload)
	pipe.LTrim(ctx, auditEventsKey, 0, AuditMaxEvents-1)
	if _, err := pipe.Exec(ctx); err != nil {
		auditDropped.Inc()
		log.Printf("audit: append event error: %v", err)
	}
}

// Recent returns up to n most-recent events, newest first. Entries that fail
// to parse are skipped.
func (s *AuditService) Recent(ctx context.Context, n int) ([]model.AuditEvent, error) {
	if s.rdb == nil {
		return []model.AuditEvent{}, nil
	}

	raw, err := s.rdb.LRange(ctx, auditEventsKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	events := make([]model.AuditEvent, 0, len(raw))
	for _, item := range raw {
		var e model.AuditEvent
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			log.Printf("audit: skipping malformed event: %v", err)
			continue
		}
		events = append(events, e)
	}
	return events, nil
}
