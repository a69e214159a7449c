package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"AnamBot/entity"
)

// MemoryStateStore is an in-process StateStore used when MongoDB is disabled
// and by tests. It enforces the same create-only and compare-and-swap
// semantics as the database-backed store.
type MemoryStateStore struct {
	mu    sync.Mutex
	slots map[string]memorySlot
}

type memorySlot struct {
	payload []byte
	version string
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{slots: make(map[string]memorySlot)}
}

func (s *MemoryStateStore) Get(_ context.Context, conversationKey, slot string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.slots[conversationKey+"/"+slot]
	if !ok {
		return nil, "", nil
	}
	payload := make([]byte, len(entry.payload))
	copy(payload, entry.payload)
	return payload, entry.version, nil
}

func (s *MemoryStateStore) Put(_ context.Context, conversationKey, slot string, payload []byte, expectedVersion string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := conversationKey + "/" + slot
	entry, exists := s.slots[key]

	if expectedVersion == "" {
		if exists {
			return "", ErrConcurrency
		}
	} else if !exists || entry.version != expectedVersion {
		return "", ErrConcurrency
	}

	stored := make([]byte, len(payload))
	copy(stored, payload)
	version := uuid.NewString()
	s.slots[key] = memorySlot{payload: stored, version: version}
	return version, nil
}

// MemoryAnswerStore is an in-process AnswerStore counterpart.
type MemoryAnswerStore struct {
	mu      sync.Mutex
	order   []string
	records map[string]entity.AnswerRecord
}

func NewMemoryAnswerStore() *MemoryAnswerStore {
	return &MemoryAnswerStore{records: make(map[string]entity.AnswerRecord)}
}

func (s *MemoryAnswerStore) Append(_ context.Context, rec *entity.AnswerRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	stored.ID = uuid.NewString()
	stored.Token = uuid.NewString()
	stored.CreatedAt = time.Now()
	stored.Symptoms = append([]string(nil), rec.Symptoms...)

	s.order = append(s.order, stored.ID)
	s.records[stored.ID] = stored
	return stored.ID, nil
}

func (s *MemoryAnswerStore) Update(_ context.Context, id string, rec *entity.AnswerRecord, expectedToken string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[id]
	if !ok || existing.Token != expectedToken {
		return "", ErrConcurrency
	}

	updated := *rec
	updated.ID = id
	updated.Token = uuid.NewString()
	updated.CreatedAt = existing.CreatedAt
	updated.Symptoms = append([]string(nil), rec.Symptoms...)
	s.records[id] = updated
	return updated.Token, nil
}

func (s *MemoryAnswerStore) List(_ context.Context, limit int64) ([]entity.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.AnswerRecord, 0, len(s.order))
	for _, id := range s.order {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		out = append(out, s.records[id])
	}
	return out, nil
}
