package chat_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"AnamBot/bot/chat"
	"AnamBot/bot/chat/interview"
	"AnamBot/entity"
)

type stubScenarios struct {
	calls int
}

func (s *stubScenarios) NewScenario(_ context.Context) (*entity.Scenario, error) {
	s.calls++
	return &entity.Scenario{
		Destiny:  "triagem",
		Relation: "paciente",
		Gender:   "feminino",
		Age:      34,
		Prompts: []string{
			"Quais sintomas você está sentindo?",
			"Há quanto tempo os sintomas começaram?",
		},
	}, nil
}

func newTestProcessor(t *testing.T, store chat.StateStore, answers chat.AnswerStore, src interview.ScenarioSource) *chat.TurnProcessor {
	t.Helper()
	lg := testLogger()

	accessors, err := chat.NewStateAccessors(store)
	require.NoError(t, err)

	engine, err := chat.NewDialogEngine(lg)
	require.NoError(t, err)

	dialog, err := interview.New(src, answers, 2, lg)
	require.NoError(t, err)
	engine.Register(chat.NewTextPrompt())
	engine.Register(dialog)

	processor, err := chat.NewTurnProcessor(engine, accessors, interview.ID, lg)
	require.NoError(t, err)
	return processor
}

func joinActivity(name string) entity.Activity {
	return entity.Activity{
		Kind:           entity.KindConversationUpdate,
		Channel:        "web",
		ConversationID: "conv-1",
		RecipientID:    "bot",
		MembersAdded:   []entity.ChannelAccount{{ID: "user-1", Name: name}},
	}
}

func messageActivity(text string) entity.Activity {
	return entity.Activity{
		Kind:           entity.KindMessage,
		Channel:        "web",
		ConversationID: "conv-1",
		SenderID:       "user-1",
		SenderName:     "Ana",
		Text:           text,
	}
}

func countWelcomes(sent []string) int {
	n := 0
	for _, text := range sent {
		if strings.HasPrefix(text, "Olá") {
			n++
		}
	}
	return n
}

func TestJoinGreetsOnceAndStartsInterview(t *testing.T) {
	store := chat.NewMemoryStateStore()
	answers := chat.NewMemoryAnswerStore()
	src := &stubScenarios{}
	p := newTestProcessor(t, store, answers, src)
	m := &captureMessenger{}
	ctx := context.Background()

	require.NoError(t, p.ProcessActivity(ctx, m, joinActivity("Ana")))
	require.Equal(t, 1, src.calls)
	joined := strings.Join(m.sent, "\n")
	require.Contains(t, joined, "Olá, Ana!")
	require.Contains(t, joined, "Quais sintomas você está sentindo?")

	// A redelivered join event sends nothing and starts nothing new.
	before := len(m.sent)
	require.NoError(t, p.ProcessActivity(ctx, m, joinActivity("Ana")))
	require.Equal(t, before, len(m.sent))
	require.Equal(t, 1, src.calls)
	require.Equal(t, 1, countWelcomes(m.sent))
}

func TestBotOwnJoinIsIgnored(t *testing.T) {
	store := chat.NewMemoryStateStore()
	answers := chat.NewMemoryAnswerStore()
	p := newTestProcessor(t, store, answers, &stubScenarios{})
	m := &captureMessenger{}

	act := joinActivity("Ana")
	act.MembersAdded = []entity.ChannelAccount{{ID: "bot", Name: "AnamBot"}}
	require.NoError(t, p.ProcessActivity(context.Background(), m, act))
	require.Empty(t, m.sent)
}

func TestMessageWithoutJoinWelcomesAndBegins(t *testing.T) {
	store := chat.NewMemoryStateStore()
	answers := chat.NewMemoryAnswerStore()
	src := &stubScenarios{}
	p := newTestProcessor(t, store, answers, src)
	m := &captureMessenger{}

	require.NoError(t, p.ProcessActivity(context.Background(), m, messageActivity("oi")))
	require.Equal(t, 1, src.calls)
	require.Equal(t, 1, countWelcomes(m.sent))
	require.Contains(t, strings.Join(m.sent, "\n"), "Quais sintomas você está sentindo?")
}

func TestInterviewScenarioFlow(t *testing.T) {
	store := chat.NewMemoryStateStore()
	answers := chat.NewMemoryAnswerStore()
	src := &stubScenarios{}
	p := newTestProcessor(t, store, answers, src)
	m := &captureMessenger{}
	ctx := context.Background()

	require.NoError(t, p.ProcessActivity(ctx, m, joinActivity("Ana")))

	// The first answer is recorded against the question that elicited it,
	// with the symptom list as it stood before the answer.
	require.NoError(t, p.ProcessActivity(ctx, m, messageActivity("tenho febre")))
	records, err := answers.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "tenho febre", records[0].Answer)
	require.Equal(t, "Quais sintomas você está sentindo?", records[0].Question)
	require.Equal(t, "triagem", records[0].Destiny)
	require.Equal(t, "feminino", records[0].Gender)
	require.Equal(t, 34, records[0].Age)
	require.Empty(t, records[0].Symptoms)
	require.Equal(t, "Há quanto tempo os sintomas começaram?", m.sent[len(m.sent)-1])

	// Blank input re-prompts and records nothing.
	require.NoError(t, p.ProcessActivity(ctx, m, messageActivity("   ")))
	records, err = answers.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	// The last answer carries the accumulated symptoms and ends the scenario.
	require.NoError(t, p.ProcessActivity(ctx, m, messageActivity("dois dias")))
	records, err = answers.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "dois dias", records[1].Answer)
	require.Equal(t, []string{"tenho febre"}, records[1].Symptoms)
	require.Contains(t, m.sent[len(m.sent)-1], "completo")

	accessors, err := chat.NewStateAccessors(store)
	require.NoError(t, err)
	ts, err := accessors.Load(ctx, joinActivity("Ana").ConversationKey())
	require.NoError(t, err)
	require.Empty(t, ts.DialogStack())
	require.Nil(t, ts.Question())
	require.Equal(t, 3, ts.TurnCount())

	// The next message starts a fresh scenario without a second welcome.
	require.NoError(t, p.ProcessActivity(ctx, m, messageActivity("quero outro")))
	require.Equal(t, 2, src.calls)
	require.Equal(t, 1, countWelcomes(m.sent))
}

// An interview interrupted mid-scenario must pick up from storage with a
// completely fresh processor, as after a process restart.
func TestInterviewSurvivesRestart(t *testing.T) {
	store := chat.NewMemoryStateStore()
	answers := chat.NewMemoryAnswerStore()
	src := &stubScenarios{}
	ctx := context.Background()
	m := &captureMessenger{}

	first := newTestProcessor(t, store, answers, src)
	require.NoError(t, first.ProcessActivity(ctx, m, joinActivity("Ana")))
	require.NoError(t, first.ProcessActivity(ctx, m, messageActivity("tenho febre")))

	second := newTestProcessor(t, store, answers, src)
	require.NoError(t, second.ProcessActivity(ctx, m, messageActivity("dois dias")))

	records, err := answers.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "dois dias", records[1].Answer)
	require.Equal(t, []string{"tenho febre"}, records[1].Symptoms)

	// The restart never synthesized a second scenario.
	require.Equal(t, 1, src.calls)
}

func TestUnclassifiedActivityRepromptsOnly(t *testing.T) {
	store := chat.NewMemoryStateStore()
	answers := chat.NewMemoryAnswerStore()
	p := newTestProcessor(t, store, answers, &stubScenarios{})
	m := &captureMessenger{}
	ctx := context.Background()

	require.NoError(t, p.ProcessActivity(ctx, m, joinActivity("Ana")))
	before := len(m.sent)

	act := messageActivity("")
	act.Kind = entity.KindOther
	require.NoError(t, p.ProcessActivity(ctx, m, act))

	// One re-prompt, no answer, no turn counted.
	require.Equal(t, before+1, len(m.sent))
	records, err := answers.List(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, records)

	accessors, err := chat.NewStateAccessors(store)
	require.NoError(t, err)
	ts, err := accessors.Load(ctx, act.ConversationKey())
	require.NoError(t, err)
	require.Zero(t, ts.TurnCount())
}

type listenerSpy struct {
	messages []entity.ChatMessage
}

func (l *listenerSpy) OnChatMessage(msg entity.ChatMessage) {
	l.messages = append(l.messages, msg)
}

func TestTranscriptListenerSeesBothDirections(t *testing.T) {
	store := chat.NewMemoryStateStore()
	answers := chat.NewMemoryAnswerStore()
	p := newTestProcessor(t, store, answers, &stubScenarios{})
	spy := &listenerSpy{}
	p.SetMessageListener(spy)
	m := &captureMessenger{}
	ctx := context.Background()

	require.NoError(t, p.ProcessActivity(ctx, m, messageActivity("oi")))

	require.NotEmpty(t, spy.messages)
	require.Equal(t, "incoming", spy.messages[0].Direction)
	require.Equal(t, "oi", spy.messages[0].Text)

	outgoing := 0
	for _, msg := range spy.messages[1:] {
		require.Equal(t, "outgoing", msg.Direction)
		outgoing++
	}
	require.Equal(t, len(m.sent), outgoing)
}
