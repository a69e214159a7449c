package interview

import (
	"context"
	"fmt"
	"log/slog"

	"AnamBot/bot/chat"
	"AnamBot/entity"
)

// ID of the interview dialog in the engine registry.
const ID chat.DialogID = "interview"

const retryPrompt = "Não entendi. Pode descrever com suas palavras, por favor?"

// ScenarioSource synthesizes a fresh role-play scenario when a conversation
// has none mid-flight.
type ScenarioSource interface {
	NewScenario(ctx context.Context) (*entity.Scenario, error)
}

// AnswerStore is the subset of answer persistence the interview needs.
type AnswerStore interface {
	Append(ctx context.Context, rec *entity.AnswerRecord) (string, error)
}

// Dialog walks the user through a scenario's scripted prompts, capturing each
// free-text answer as a durable record. Scenario progress lives entirely in
// the current-question slot, so the dialog resumes across restarts from
// storage alone.
type Dialog struct {
	scenarios ScenarioSource
	answers   AnswerStore
	retries   int
	log       *slog.Logger
}

func New(scenarios ScenarioSource, answers AnswerStore, persistRetries int, log *slog.Logger) (*Dialog, error) {
	if scenarios == nil {
		return nil, fmt.Errorf("interview dialog: scenario source: %w", chat.ErrConfiguration)
	}
	if answers == nil {
		return nil, fmt.Errorf("interview dialog: answer store: %w", chat.ErrConfiguration)
	}
	if log == nil {
		return nil, fmt.Errorf("interview dialog: logger: %w", chat.ErrConfiguration)
	}
	if persistRetries < 1 {
		persistRetries = 3
	}
	return &Dialog{
		scenarios: scenarios,
		answers:   answers,
		retries:   persistRetries,
		log:       log,
	}, nil
}

func (d *Dialog) ID() chat.DialogID { return ID }

// Begin resumes a mid-flight scenario when one is persisted; only a
// conversation without one gets a freshly synthesized scenario. Re-entering
// while a scenario exists therefore never produces a duplicate.
func (d *Dialog) Begin(ctx context.Context, dc *chat.DialogContext, args any) chat.DialogResult {
	qs := dc.Turn().Question()
	if qs == nil {
		scenario, err := d.scenarios.NewScenario(ctx)
		if err != nil {
			return chat.DialogResult{Error: fmt.Errorf("synthesizing scenario: %w", err)}
		}
		if len(scenario.Prompts) == 0 {
			return chat.DialogResult{Error: fmt.Errorf("scenario has no prompts")}
		}
		qs = scenario.QuestionState()
		dc.Turn().SetQuestion(qs)
		_ = dc.SendText(introText(qs))

		d.log.Info("interview: scenario started",
			slog.String("conversation", dc.Turn().Key()),
			slog.String("destiny", qs.Destiny),
			slog.Int("prompts", len(qs.Prompts)),
		)
	}
	return d.ask(ctx, dc, qs)
}

// Continue only fires if input reaches the interview frame directly, without
// a prompt child on top. Re-ask the current question to rebuild the child.
func (d *Dialog) Continue(ctx context.Context, dc *chat.DialogContext, input chat.UserInput) chat.DialogResult {
	qs := dc.Turn().Question()
	if qs == nil {
		return d.Begin(ctx, dc, nil)
	}
	return d.ask(ctx, dc, qs)
}

// Resume consumes a captured answer from the prompt child: persist it, then
// either loop to the next scripted prompt or complete the scenario.
func (d *Dialog) Resume(ctx context.Context, dc *chat.DialogContext, result any) chat.DialogResult {
	answer, ok := result.(string)
	if !ok || answer == "" {
		return chat.DialogResult{Error: fmt.Errorf("interview: unexpected prompt result %T", result)}
	}

	qs := dc.Turn().Question()
	if qs == nil {
		return chat.DialogResult{Error: fmt.Errorf("interview: answer without active scenario")}
	}

	rec := &entity.AnswerRecord{
		Gender:   qs.Gender,
		Question: qs.Question,
		Answer:   answer,
		Destiny:  qs.Destiny,
		Age:      qs.Age,
		Symptoms: append([]string(nil), qs.Symptoms...),
	}
	if err := d.persist(ctx, dc, rec); err != nil {
		return chat.DialogResult{Error: fmt.Errorf("persisting answer: %w", err)}
	}

	qs.Symptoms = append(qs.Symptoms, answer)
	qs.PromptIndex++

	if qs.Exhausted() {
		dc.Turn().SetQuestion(nil)
		_ = dc.SendText("Obrigado! O cenário está completo. Envie uma mensagem quando quiser começar outro.")
		return chat.DialogResult{Status: chat.StatusComplete, Result: len(qs.Symptoms)}
	}

	qs.Question = qs.Prompts[qs.PromptIndex]
	dc.Turn().SetQuestion(qs)
	return d.ask(ctx, dc, qs)
}

func (d *Dialog) ask(ctx context.Context, dc *chat.DialogContext, qs *entity.QuestionState) chat.DialogResult {
	return dc.BeginChild(ctx, chat.PromptDialogID, chat.PromptOptions{
		Prompt: qs.Question,
		Retry:  retryPrompt,
	})
}

// persist appends the record with a small bounded retry. Conflicts and other
// store failures are retried alike; exhaustion fails the turn.
func (d *Dialog) persist(ctx context.Context, dc *chat.DialogContext, rec *entity.AnswerRecord) error {
	var err error
	for attempt := 1; attempt <= d.retries; attempt++ {
		var id string
		id, err = d.answers.Append(ctx, rec)
		if err == nil {
			rec.ID = id
			return nil
		}
		d.log.Warn("interview: answer append failed",
			slog.String("conversation", dc.Turn().Key()),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}
	return err
}

func introText(qs *entity.QuestionState) string {
	return fmt.Sprintf(
		"Novo cenário: você fará o papel de %s, %s, %d anos. Encaminhamento: %s.",
		qs.Relation, qs.Gender, qs.Age, qs.Destiny,
	)
}
