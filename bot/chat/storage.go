package chat

import (
	"context"
	"errors"

	"AnamBot/entity"
)

// ErrConcurrency is returned by the stores when an optimistic concurrency
// token does not match the stored one. The write is rejected; the caller must
// re-read and retry or fail the turn. Stores never merge.
var ErrConcurrency = errors.New("concurrency token mismatch")

// Slot names for per-conversation state. The registry is fixed: accessors only
// read and write these slots.
const (
	SlotWelcome  = "welcome-flag"
	SlotTurns    = "turn-counter"
	SlotStack    = "dialog-stack"
	SlotQuestion = "current-question"
)

// StateStore is key/value persistence for opaque per-conversation state blobs.
//
// Get returns a nil payload when the slot is absent. Put with an empty
// expectedVersion succeeds only if the slot is currently absent (create
// semantics); otherwise the expected version must match the stored one.
type StateStore interface {
	Get(ctx context.Context, conversationKey, slot string) (payload []byte, version string, err error)
	Put(ctx context.Context, conversationKey, slot string, payload []byte, expectedVersion string) (newVersion string, err error)
}

// AnswerStore is durable append-style storage of captured answer records.
// Append does not deduplicate; Update only succeeds when expectedToken matches
// the record's stored concurrency token.
type AnswerStore interface {
	Append(ctx context.Context, rec *entity.AnswerRecord) (id string, err error)
	Update(ctx context.Context, id string, rec *entity.AnswerRecord, expectedToken string) (newToken string, err error)
	List(ctx context.Context, limit int64) ([]entity.AnswerRecord, error)
}
