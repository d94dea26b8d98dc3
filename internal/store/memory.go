package store

import (
	"context"
	"sync"
	"time"
)

const defaultRetention = 24 * time.Hour

type memoryStore struct {
	retention time.Duration

	mu     sync.RWMutex
	events map[int64]Event
}

// NewMemory keeps events in process for the given retention (24h when not positive).
func NewMemory(retention time.Duration) EventStore {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &memoryStore{retention: retention, events: make(map[int64]Event)}
}

func (s *memoryStore) Record(_ context.Context, event Event) error {
	event, err := stamp(event, s.retention)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.SignatoryID] = event
	return nil
}

func (s *memoryStore) Latest(_ context.Context, signatoryID int64) (Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[signatoryID]
	if !ok {
		return Event{}, false, nil
	}
	if time.Now().After(event.ExpiresAt) {
		delete(s.events, signatoryID)
		return Event{}, false, nil
	}
	return event, true, nil
}

// Size counts live events and evicts the expired ones.
func (s *memoryStore) Size(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, event := range s.events {
		if now.After(event.ExpiresAt) {
			delete(s.events, id)
		}
	}
	return int64(len(s.events)), nil
}

func (s *memoryStore) Close(context.Context) error {
	return nil
}
