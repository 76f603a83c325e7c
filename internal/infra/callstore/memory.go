// Package callstore keeps call sessions in process memory.
package callstore

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/xavierca1/leaddialer/internal/entity"
)

// ErrRejected is returned when the cache drops a write (buffer contention or admission policy).
var ErrRejected = errors.New("callstore: session write rejected")

// MemoryStore keeps the latest call session per lead in a ristretto cache.
// Sessions expire after ttl; restarting the process forgets them.
type MemoryStore struct {
	c   *ristretto.Cache[string, entity.CallSession]
	ttl time.Duration
}

// NewMemoryStore sizes the cache for maxSessions live sessions. Cost counts
// sessions, not bytes, so the internal per-item cost is ignored.
func NewMemoryStore(maxSessions int64, ttl time.Duration) (*MemoryStore, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, entity.CallSession]{
		NumCounters:        maxSessions * 10,
		MaxCost:            maxSessions,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryStore{c: c, ttl: ttl}, nil
}

func (s *MemoryStore) Save(_ context.Context, session *entity.CallSession) error {
	if !s.c.SetWithTTL(session.LeadID, *session, 1, s.ttl) {
		return ErrRejected
	}
	// make the write visible to the next Get
	s.c.Wait()
	return nil
}

func (s *MemoryStore) FindByLeadID(_ context.Context, leadID string) (*entity.CallSession, error) {
	v, ok := s.c.Get(leadID)
	if !ok {
		return nil, entity.ErrCallNotFound
	}
	return &v, nil
}

func (s *MemoryStore) Close() {
	s.c.Close()
}
