package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"AnamBot/entity"
)

// StateAccessors builds per-turn typed views over the state store.
type StateAccessors struct {
	store StateStore
}

func NewStateAccessors(store StateStore) (*StateAccessors, error) {
	if store == nil {
		return nil, fmt.Errorf("state accessors: state store: %w", ErrConfiguration)
	}
	return &StateAccessors{store: store}, nil
}

// Load reads every registered slot for the conversation and returns a staging
// view over them. Mutations stay in memory until Flush.
func (a *StateAccessors) Load(ctx context.Context, conversationKey string) (*TurnState, error) {
	ts := &TurnState{
		store: a.store,
		key:   conversationKey,
		slots: make(map[string]*slotState, 4),
	}
	for _, name := range slotNames {
		payload, version, err := a.store.Get(ctx, conversationKey, name)
		if err != nil {
			return nil, fmt.Errorf("reading slot %s: %w", name, err)
		}
		ts.slots[name] = &slotState{raw: payload, version: version}
	}
	return ts, nil
}

var slotNames = []string{SlotWelcome, SlotTurns, SlotStack, SlotQuestion}

type slotState struct {
	raw     []byte // JSON payload; nil when the slot is absent
	version string // concurrency token; empty when the slot is absent
	dirty   bool
}

// TurnState is the turn-scoped view of one conversation's state. Getters
// synthesize defaults for absent slots without persisting them; setters stage
// a pending write. Flush commits all staged writes near turn end; if any
// write hits a concurrency conflict the turn is failed, staged changes after
// the failing slot are not committed and earlier slot writes are not rolled
// back.
type TurnState struct {
	store StateStore
	key   string
	slots map[string]*slotState
}

// Key returns the conversation key this state is scoped to.
func (t *TurnState) Key() string { return t.key }

func (t *TurnState) get(slot string, out any) bool {
	s := t.slots[slot]
	if s == nil || s.raw == nil {
		return false
	}
	if err := json.Unmarshal(s.raw, out); err != nil {
		return false
	}
	return true
}

func (t *TurnState) set(slot string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	s := t.slots[slot]
	s.raw = raw
	s.dirty = true
}

func (t *TurnState) DidWelcome() bool {
	var v bool
	t.get(SlotWelcome, &v)
	return v
}

func (t *TurnState) SetDidWelcome(v bool) { t.set(SlotWelcome, v) }

func (t *TurnState) TurnCount() int {
	var v int
	t.get(SlotTurns, &v)
	return v
}

func (t *TurnState) SetTurnCount(v int) { t.set(SlotTurns, v) }

func (t *TurnState) DialogStack() []DialogInstance {
	var v []DialogInstance
	t.get(SlotStack, &v)
	return v
}

func (t *TurnState) SetDialogStack(stack []DialogInstance) { t.set(SlotStack, stack) }

// Question returns the scenario currently being interviewed, or nil when no
// scenario is mid-flight.
func (t *TurnState) Question() *entity.QuestionState {
	var v *entity.QuestionState
	t.get(SlotQuestion, &v)
	return v
}

// SetQuestion stages the scenario state; passing nil clears it.
func (t *TurnState) SetQuestion(q *entity.QuestionState) { t.set(SlotQuestion, q) }

// Flush writes every staged slot back to the store in one pass, carrying each
// slot's concurrency token. The first conflict aborts the flush.
func (t *TurnState) Flush(ctx context.Context) error {
	for _, name := range slotNames {
		s := t.slots[name]
		if !s.dirty {
			continue
		}
		version, err := t.store.Put(ctx, t.key, name, s.raw, s.version)
		if err != nil {
			return fmt.Errorf("flushing slot %s: %w", name, err)
		}
		s.version = version
		s.dirty = false
	}
	return nil
}
