package transcript

import (
	"context"
	"log/slog"
	"time"

	"AnamBot/entity"
	"AnamBot/internal/lib/sl"
)

// ChatMessageRepository persists transcript messages.
type ChatMessageRepository interface {
	SaveChatMessage(ctx context.Context, msg entity.ChatMessage) error
}

// Broadcaster fans a transcript message out to connected observers.
type Broadcaster interface {
	BroadcastMessage(msg entity.ChatMessage)
}

// Service implements chat.MessageListener: every incoming and outgoing
// message is stored and broadcast. Both collaborators are optional; transcript
// failures never affect the turn.
type Service struct {
	repo ChatMessageRepository
	hub  Broadcaster
	log  *slog.Logger
}

func NewService(repo ChatMessageRepository, hub Broadcaster, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		hub:  hub,
		log:  log.With(sl.Module("transcript")),
	}
}

func (s *Service) OnChatMessage(msg entity.ChatMessage) {
	if s.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveChatMessage(ctx, msg); err != nil {
			s.log.Warn("saving transcript message", sl.Err(err))
		}
	}
	if s.hub != nil {
		s.hub.BroadcastMessage(msg)
	}
}
