// Package results persists the last search result set per session.
//
// The store is keyed by session identifier with a bounded TTL; the next
// search by the same session overwrites its slot, and distinct sessions never
// see each other's results.
package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/kindermatch/internal/db"
	"github.com/kailas-cloud/kindermatch/internal/domain"
)

// kv is the consumer interface for result storage (ISP).
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Store implements the per-session result cache on top of the KV store.
type Store struct {
	kv     kv
	prefix string
	ttl    time.Duration
}

// New creates a result store. prefix namespaces the keys, ttl bounds how long
// a published result set stays readable.
func New(kv kv, prefix string, ttl time.Duration) *Store {
	return &Store{kv: kv, prefix: prefix, ttl: ttl}
}

// Set publishes a result set for the session, replacing any previous one.
func (s *Store) Set(ctx context.Context, sessionID string, rs domain.ResultSet) error {
	data, err := marshalResultSet(rs)
	if err != nil {
		return fmt.Errorf("marshal result set: %w", err)
	}
	if err := s.kv.SetWithTTL(ctx, s.key(sessionID), data, s.ttl); err != nil {
		return fmt.Errorf("store results for session %s: %w", sessionID, err)
	}
	return nil
}

// Get returns the session's last published result set. A missing or expired
// slot yields an empty set, never an error.
func (s *Store) Get(ctx context.Context, sessionID string) (domain.ResultSet, error) {
	data, err := s.kv.Get(ctx, s.key(sessionID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ResultSet{}, nil
		}
		return nil, fmt.Errorf("load results for session %s: %w", sessionID, err)
	}

	rs, err := unmarshalResultSet(data)
	if err != nil {
		return nil, fmt.Errorf("decode results for session %s: %w", sessionID, err)
	}
	return rs, nil
}

// Delete drops the session's slot immediately instead of waiting for the TTL.
// Deleting a session that has nothing published is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.key(sessionID)); err != nil {
		return fmt.Errorf("clear results for session %s: %w", sessionID, err)
	}
	return nil
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}
