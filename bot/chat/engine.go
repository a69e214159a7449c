package chat

import (
	"context"
	"fmt"
	"log/slog"
)

// DialogEngine is the stack-based dialog orchestrator. It owns no dialog
// logic itself, only the registry and the stack bookkeeping: pushing frames,
// routing input to the top frame and propagating results downward when frames
// complete. Cross-turn mutual exclusion per conversation is the transport's
// responsibility, not the engine's.
type DialogEngine struct {
	dialogs map[DialogID]Dialog
	log     *slog.Logger
}

func NewDialogEngine(log *slog.Logger) (*DialogEngine, error) {
	if log == nil {
		return nil, fmt.Errorf("dialog engine: logger: %w", ErrConfiguration)
	}
	return &DialogEngine{
		dialogs: make(map[DialogID]Dialog),
		log:     log,
	}, nil
}

// Register adds a dialog unit to the engine registry.
func (e *DialogEngine) Register(d Dialog) {
	e.dialogs[d.ID()] = d
	e.log.Info("dialog engine: registered dialog", slog.String("dialog_id", string(d.ID())))
}

// NewContext builds the turn-scoped dialog context for one conversation,
// loading the persisted stack from the accessor-backed state.
func (e *DialogEngine) NewContext(turn *TurnState, m Messenger, chatID string) *DialogContext {
	return &DialogContext{
		engine:    e,
		turn:      turn,
		messenger: m,
		chatID:    chatID,
		stack:     turn.DialogStack(),
		log:       e.log,
	}
}

// DialogContext carries everything a dialog unit may touch during one turn:
// the working copy of the dialog stack, the staged conversation state and the
// outbound messenger. It is never shared across turns.
type DialogContext struct {
	engine    *DialogEngine
	turn      *TurnState
	messenger Messenger
	chatID    string
	stack     []DialogInstance
	log       *slog.Logger
}

// Turn returns the staged conversation state for this turn.
func (dc *DialogContext) Turn() *TurnState { return dc.turn }

// ActiveDialog returns the top stack frame, or nil when the stack is empty.
func (dc *DialogContext) ActiveDialog() *DialogInstance {
	if len(dc.stack) == 0 {
		return nil
	}
	return &dc.stack[len(dc.stack)-1]
}

// State returns the continuation state of the active frame.
func (dc *DialogContext) State() map[string]any {
	top := dc.ActiveDialog()
	if top == nil {
		return nil
	}
	if top.State == nil {
		top.State = make(map[string]any)
	}
	return top.State
}

// SendText delivers a reply on the conversation's transport. Delivery
// failures are logged and reported but never fail the turn: committed state
// does not depend on the reply reaching the user.
func (dc *DialogContext) SendText(text string) error {
	if err := dc.messenger.SendText(dc.chatID, text); err != nil {
		dc.log.Warn("dialog: sending reply",
			slog.String("chat_id", dc.chatID),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// Begin pushes a new frame for the dialog and runs its entry behavior,
// then settles the stack: synchronously completing dialogs are popped and
// their results propagated to the frames below.
func (dc *DialogContext) Begin(ctx context.Context, id DialogID, args any) (DialogResult, error) {
	res := dc.BeginChild(ctx, id, args)
	return dc.settle(ctx, res)
}

// Continue routes user input to the top frame and settles the stack.
func (dc *DialogContext) Continue(ctx context.Context, input UserInput) (DialogResult, error) {
	top := dc.ActiveDialog()
	if top == nil {
		return DialogResult{Status: StatusEmpty}, nil
	}
	d, ok := dc.engine.dialogs[top.ID]
	if !ok {
		return DialogResult{}, fmt.Errorf("dialog not found: %s", top.ID)
	}
	res := d.Continue(ctx, dc, input)
	return dc.settle(ctx, res)
}

// BeginChild pushes a child frame and runs its entry behavior without
// settling. Dialog units use this to suspend themselves beneath a child; the
// child's result flows back through the surrounding settle loop.
func (dc *DialogContext) BeginChild(ctx context.Context, id DialogID, args any) DialogResult {
	d, ok := dc.engine.dialogs[id]
	if !ok {
		return DialogResult{Error: fmt.Errorf("dialog not found: %s", id)}
	}
	dc.stack = append(dc.stack, DialogInstance{ID: id, State: make(map[string]any)})
	return d.Begin(ctx, dc, args)
}

// settle drives the pop/resume loop until a frame suspends or the stack
// empties, then stages the resulting stack for the end-of-turn flush.
func (dc *DialogContext) settle(ctx context.Context, res DialogResult) (DialogResult, error) {
	const maxResumes = 20

	for i := 0; i < maxResumes; i++ {
		if res.Error != nil {
			return res, res.Error
		}

		switch res.Status {
		case StatusWaiting:
			dc.turn.SetDialogStack(dc.stack)
			return res, nil

		case StatusComplete:
			dc.stack = dc.stack[:len(dc.stack)-1]
			if len(dc.stack) == 0 {
				dc.turn.SetDialogStack(dc.stack)
				return res, nil
			}
			top := dc.stack[len(dc.stack)-1]
			parent, ok := dc.engine.dialogs[top.ID]
			if !ok {
				return DialogResult{}, fmt.Errorf("dialog not found: %s", top.ID)
			}
			res = parent.Resume(ctx, dc, res.Result)

		default:
			dc.turn.SetDialogStack(dc.stack)
			return res, nil
		}
	}

	return DialogResult{}, fmt.Errorf("dialog stack did not settle after %d resumes", maxResumes)
}
