package chat

import (
	"context"
	"errors"

	"AnamBot/entity"
)

// ErrConfiguration is returned by constructors when a required collaborator
// is missing. Nothing is processed past a failed construction.
var ErrConfiguration = errors.New("missing required dependency")

// DialogID is a unique identifier for a dialog unit in the engine registry.
type DialogID string

// DialogStatus describes what a dialog unit did with the current turn.
type DialogStatus string

const (
	// StatusWaiting means the dialog suspended and awaits the next user input.
	StatusWaiting DialogStatus = "waiting"
	// StatusComplete means the dialog finished; its frame is popped and the
	// result handed to the frame below.
	StatusComplete DialogStatus = "complete"
	// StatusEmpty means no dialog was active to consume the input.
	StatusEmpty DialogStatus = "empty"
)

// DialogResult is the outcome of one dialog invocation within a turn.
type DialogResult struct {
	Status DialogStatus
	Result any
	Error  error
}

// UserInput is a normalized inbound event as seen by dialog units.
type UserInput struct {
	Text   string
	IsText bool
}

// Dialog is a resumable unit of conversational logic. Implementations keep all
// cross-turn data in the frame's continuation state (dc.State()) or in the
// accessor-backed slots; the struct itself must stay stateless so one instance
// serves every conversation.
type Dialog interface {
	// ID returns the unique identifier for this dialog unit.
	ID() DialogID

	// Begin is called when a new frame for this dialog is pushed.
	Begin(ctx context.Context, dc *DialogContext, args any) DialogResult

	// Continue is called when user input arrives while this frame is on top.
	Continue(ctx context.Context, dc *DialogContext, input UserInput) DialogResult

	// Resume is called when a child dialog completed and this frame is exposed
	// again; result is whatever the child returned.
	Resume(ctx context.Context, dc *DialogContext, result any) DialogResult
}

// Messenger delivers outbound replies on a concrete transport. Send failures
// are non-fatal for the turn: committed state is never rolled back because a
// reply could not be delivered.
type Messenger interface {
	SendText(chatID, text string) error
}

// MessageListener is notified of every incoming and outgoing message so
// transcripts can be persisted and broadcast without coupling the core to
// storage or websockets.
type MessageListener interface {
	OnChatMessage(msg entity.ChatMessage)
}
