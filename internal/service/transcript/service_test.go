package transcript

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"AnamBot/entity"
)

type repoStub struct {
	saved []entity.ChatMessage
	err   error
}

func (r *repoStub) SaveChatMessage(_ context.Context, msg entity.ChatMessage) error {
	r.saved = append(r.saved, msg)
	return r.err
}

type hubStub struct {
	broadcast []entity.ChatMessage
}

func (h *hubStub) BroadcastMessage(msg entity.ChatMessage) {
	h.broadcast = append(h.broadcast, msg)
}

func TestOnChatMessageStoresAndBroadcasts(t *testing.T) {
	repo := &repoStub{}
	hub := &hubStub{}
	svc := NewService(repo, hub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	msg := entity.ChatMessage{
		Channel:        "web",
		ConversationID: "conv-1",
		Direction:      "incoming",
		Sender:         "user",
		Text:           "tenho febre",
	}
	svc.OnChatMessage(msg)

	require.Len(t, repo.saved, 1)
	require.Equal(t, "tenho febre", repo.saved[0].Text)
	require.Len(t, hub.broadcast, 1)
}

func TestOnChatMessageToleratesFailuresAndNilDeps(t *testing.T) {
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))

	// A failing repository still broadcasts.
	repo := &repoStub{err: errors.New("db down")}
	hub := &hubStub{}
	NewService(repo, hub, lg).OnChatMessage(entity.ChatMessage{Text: "oi"})
	require.Len(t, hub.broadcast, 1)

	// Nil collaborators are a no-op, not a panic.
	NewService(nil, nil, lg).OnChatMessage(entity.ChatMessage{Text: "oi"})
}
