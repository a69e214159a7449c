package activity

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"AnamBot/bot/chat"
	"AnamBot/entity"
	"AnamBot/internal/lib/api/response"
	"AnamBot/internal/lib/locker"
	"AnamBot/internal/lib/sl"
)

// Core is the turn-processing surface the handler needs.
type Core interface {
	ProcessActivity(ctx context.Context, m chat.Messenger, act entity.Activity) error
}

// Reply is one outbound text produced while processing the activity.
type Reply struct {
	Text string `json:"text"`
}

type Result struct {
	response.Response
	Replies []Reply `json:"replies"`
}

// Handle accepts one inbound activity, runs it as a single turn and returns
// the replies the dialog produced. Turns for the same conversation are
// serialized here; the core assumes that invariant.
func Handle(log *slog.Logger, core Core, locks *locker.Keyed) http.HandlerFunc {
	validate := validator.New()
	log = log.With(sl.Module("http.handlers.activity"))

	return func(w http.ResponseWriter, r *http.Request) {
		var act entity.Activity
		if err := render.DecodeJSON(r.Body, &act); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if err := validate.Struct(act); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		unlock := locks.Lock(act.ConversationKey())
		defer unlock()

		m := &replyCollector{}
		if err := core.ProcessActivity(r.Context(), m, act); err != nil {
			log.Error("turn failed",
				slog.String("conversation", act.ConversationKey()),
				sl.Err(err),
			)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Turn processing failed"))
			return
		}

		render.JSON(w, r, Result{Response: response.OK(), Replies: m.replies})
	}
}

// replyCollector implements chat.Messenger by buffering outbound texts into
// the HTTP response instead of pushing them to an external channel.
type replyCollector struct {
	replies []Reply
}

func (c *replyCollector) SendText(_, text string) error {
	c.replies = append(c.replies, Reply{Text: text})
	return nil
}
