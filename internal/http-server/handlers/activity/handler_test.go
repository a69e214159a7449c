package activity_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"AnamBot/bot/chat"
	"AnamBot/entity"
	"AnamBot/internal/http-server/handlers/activity"
	"AnamBot/internal/lib/locker"
)

type coreStub struct {
	got     entity.Activity
	replies []string
	err     error
}

func (c *coreStub) ProcessActivity(_ context.Context, m chat.Messenger, act entity.Activity) error {
	c.got = act
	for _, text := range c.replies {
		_ = m.SendText(act.ConversationID, text)
	}
	return c.err
}

func serve(t *testing.T, core *coreStub, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := activity.Handle(lg, core, locker.New())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/activities", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleReturnsReplies(t *testing.T) {
	core := &coreStub{replies: []string{"Olá, Ana!", "Quais sintomas você está sentindo?"}}
	body, err := json.Marshal(entity.Activity{
		Kind:           entity.KindMessage,
		Channel:        "web",
		ConversationID: "conv-1",
		Text:           "oi",
	})
	require.NoError(t, err)

	rec := serve(t, core, body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "web:conv-1", core.got.ConversationKey())

	var result activity.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "OK", result.Status)
	require.Len(t, result.Replies, 2)
	require.Equal(t, "Olá, Ana!", result.Replies[0].Text)
}

func TestHandleRejectsMalformedBody(t *testing.T) {
	rec := serve(t, &coreStub{}, []byte("{not json"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRejectsInvalidActivity(t *testing.T) {
	body, err := json.Marshal(entity.Activity{Kind: "bogus", Channel: "web", ConversationID: "conv-1"})
	require.NoError(t, err)

	rec := serve(t, &coreStub{}, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReportsTurnFailure(t *testing.T) {
	core := &coreStub{err: errors.New("committing turn state: conflict")}
	body, err := json.Marshal(entity.Activity{
		Kind:           entity.KindMessage,
		Channel:        "web",
		ConversationID: "conv-1",
		Text:           "oi",
	})
	require.NoError(t, err)

	rec := serve(t, core, body)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var result activity.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "Error", result.Status)
}
