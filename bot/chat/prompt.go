package chat

import (
	"context"
	"fmt"
	"strings"
)

// PromptDialogID identifies the text-capture primitive dialog.
const PromptDialogID DialogID = "text-prompt"

// PromptOptions configure one invocation of the text prompt.
type PromptOptions struct {
	Prompt string
	Retry  string
}

// Continuation state keys
const (
	keyPrompt = "prompt"
	keyRetry  = "retry"
)

// TextPrompt asks a question and waits for a non-empty text reply. Empty,
// whitespace-only or non-text input re-prompts and stays suspended; a valid
// reply completes the dialog with the trimmed text as its result.
type TextPrompt struct{}

func NewTextPrompt() *TextPrompt { return &TextPrompt{} }

func (p *TextPrompt) ID() DialogID { return PromptDialogID }

func (p *TextPrompt) Begin(ctx context.Context, dc *DialogContext, args any) DialogResult {
	opts, ok := args.(PromptOptions)
	if !ok || opts.Prompt == "" {
		return DialogResult{Error: fmt.Errorf("text prompt: invalid options %T", args)}
	}
	if opts.Retry == "" {
		opts.Retry = opts.Prompt
	}

	state := dc.State()
	state[keyPrompt] = opts.Prompt
	state[keyRetry] = opts.Retry

	_ = dc.SendText(opts.Prompt)
	return DialogResult{Status: StatusWaiting}
}

func (p *TextPrompt) Continue(ctx context.Context, dc *DialogContext, input UserInput) DialogResult {
	text := strings.TrimSpace(input.Text)
	if !input.IsText || text == "" {
		retry := stateString(dc.State(), keyRetry)
		if retry == "" {
			retry = stateString(dc.State(), keyPrompt)
		}
		_ = dc.SendText(retry)
		return DialogResult{Status: StatusWaiting}
	}
	return DialogResult{Status: StatusComplete, Result: text}
}

func (p *TextPrompt) Resume(ctx context.Context, dc *DialogContext, result any) DialogResult {
	// The prompt never pushes children; stay suspended if this ever fires.
	return DialogResult{Status: StatusWaiting}
}
