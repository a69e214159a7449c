package answers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"AnamBot/entity"
	"AnamBot/internal/lib/api/response"
	"AnamBot/internal/lib/sl"
)

// Core lists captured answer records.
type Core interface {
	List(ctx context.Context, limit int64) ([]entity.AnswerRecord, error)
}

type Result struct {
	response.Response
	Answers []entity.AnswerRecord `json:"answers"`
}

func List(log *slog.Logger, core Core) http.HandlerFunc {
	log = log.With(sl.Module("http.handlers.answers"))

	return func(w http.ResponseWriter, r *http.Request) {
		limit := int64(100)
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed < 1 {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid limit"))
				return
			}
			limit = parsed
		}

		records, err := core.List(r.Context(), limit)
		if err != nil {
			log.Error("listing answers", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list answers"))
			return
		}
		if records == nil {
			records = []entity.AnswerRecord{}
		}

		render.JSON(w, r, Result{Response: response.OK(), Answers: records})
	}
}
