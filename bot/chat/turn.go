package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"AnamBot/entity"
)

// TurnProcessor is the entry point for one inbound activity. It loads the
// conversation's staged state, classifies the event, delegates message turns
// to the dialog engine and commits all staged writes at turn end.
type TurnProcessor struct {
	engine    *DialogEngine
	accessors *StateAccessors
	root      DialogID
	listener  MessageListener
	log       *slog.Logger
}

func NewTurnProcessor(engine *DialogEngine, accessors *StateAccessors, root DialogID, log *slog.Logger) (*TurnProcessor, error) {
	if engine == nil {
		return nil, fmt.Errorf("turn processor: dialog engine: %w", ErrConfiguration)
	}
	if accessors == nil {
		return nil, fmt.Errorf("turn processor: state accessors: %w", ErrConfiguration)
	}
	if root == "" {
		return nil, fmt.Errorf("turn processor: root dialog: %w", ErrConfiguration)
	}
	if log == nil {
		return nil, fmt.Errorf("turn processor: logger: %w", ErrConfiguration)
	}
	return &TurnProcessor{
		engine:    engine,
		accessors: accessors,
		root:      root,
		log:       log,
	}, nil
}

// SetMessageListener sets the transcript listener (may stay nil).
func (p *TurnProcessor) SetMessageListener(l MessageListener) {
	p.listener = l
}

// ProcessActivity runs one logical turn. The turn either commits its staged
// state writes in full or returns an error with nothing durably changed
// beyond replies already sent. Callers must not run two turns for the same
// conversation key concurrently.
func (p *TurnProcessor) ProcessActivity(ctx context.Context, m Messenger, act entity.Activity) error {
	ts, err := p.accessors.Load(ctx, act.ConversationKey())
	if err != nil {
		return fmt.Errorf("loading conversation state: %w", err)
	}

	if p.listener != nil && act.Kind == entity.KindMessage {
		p.listener.OnChatMessage(entity.ChatMessage{
			Channel:        act.Channel,
			ConversationID: act.ConversationID,
			Direction:      "incoming",
			Sender:         "user",
			Text:           act.Text,
			CreatedAt:      time.Now(),
		})
	}
	m = &observedMessenger{inner: m, listener: p.listener, act: act}

	dc := p.engine.NewContext(ts, m, act.ConversationID)

	switch act.Kind {
	case entity.KindConversationUpdate:
		if err := p.greetMembers(ctx, dc, ts, act); err != nil {
			return fmt.Errorf("processing turn: %w", err)
		}

	case entity.KindMessage:
		ts.SetTurnCount(ts.TurnCount() + 1)
		if !ts.DidWelcome() {
			_ = dc.SendText(welcomeText(act.SenderName))
			ts.SetDidWelcome(true)
		}

		var err error
		if dc.ActiveDialog() != nil {
			_, err = dc.Continue(ctx, UserInput{Text: act.Text, IsText: true})
		} else {
			_, err = dc.Begin(ctx, p.root, nil)
		}
		if err != nil {
			return fmt.Errorf("processing turn: %w", err)
		}

	default:
		// Attachments and other unclassified events: re-prompt the active
		// dialog without advancing any state, ignore otherwise.
		if dc.ActiveDialog() != nil {
			if _, err := dc.Continue(ctx, UserInput{}); err != nil {
				return fmt.Errorf("processing turn: %w", err)
			}
		}
	}

	if err := ts.Flush(ctx); err != nil {
		return fmt.Errorf("committing turn state: %w", err)
	}

	p.log.Debug("turn committed",
		slog.String("conversation", act.ConversationKey()),
		slog.String("kind", string(act.Kind)),
		slog.Int("turns", ts.TurnCount()),
	)
	return nil
}

// greetMembers welcomes newly added members and starts the root dialog. The
// welcome is sent exactly once per conversation no matter how many update
// events the transport delivers.
func (p *TurnProcessor) greetMembers(ctx context.Context, dc *DialogContext, ts *TurnState, act entity.Activity) error {
	for _, member := range act.MembersAdded {
		if member.ID == act.RecipientID || ts.DidWelcome() {
			continue
		}
		_ = dc.SendText(welcomeText(member.Name))
		ts.SetDidWelcome(true)

		if dc.ActiveDialog() == nil {
			if _, err := dc.Begin(ctx, p.root, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func welcomeText(name string) string {
	if name == "" {
		return "Olá! Bem-vindo ao treino de anamnese. Vamos montar um cenário de simulação."
	}
	return fmt.Sprintf("Olá, %s! Bem-vindo ao treino de anamnese. Vamos montar um cenário de simulação.", name)
}

// observedMessenger tees successful outbound sends to the transcript listener.
type observedMessenger struct {
	inner    Messenger
	listener MessageListener
	act      entity.Activity
}

func (o *observedMessenger) SendText(chatID, text string) error {
	err := o.inner.SendText(chatID, text)
	if err == nil && o.listener != nil {
		o.listener.OnChatMessage(entity.ChatMessage{
			Channel:        o.act.Channel,
			ConversationID: o.act.ConversationID,
			Direction:      "outgoing",
			Sender:         "bot",
			Text:           text,
			CreatedAt:      time.Now(),
		})
	}
	return err
}
