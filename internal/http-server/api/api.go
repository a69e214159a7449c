package api

import (
	"AnamBot/internal/config"
	"AnamBot/internal/http-server/handlers/activity"
	"AnamBot/internal/http-server/handlers/answers"
	"AnamBot/internal/http-server/handlers/errors"
	"AnamBot/internal/http-server/middleware/authenticate"
	"AnamBot/internal/http-server/middleware/timeout"
	"AnamBot/internal/lib/locker"
	"AnamBot/internal/lib/sl"
	"AnamBot/internal/ws"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net"
	"net/http"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Handler bundles the core surfaces the API exposes.
type Handler interface {
	activity.Core
	answers.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	locks := locker.New()

	router := chi.NewRouter()
	router.Use(timeout.Timeout(30))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(authenticate.New(log, conf.Listen.ApiKey))
		v1.Post("/activities", activity.Handle(log, handler, locks))
		v1.Get("/answers", answers.List(log, handler))
	})

	if hub != nil {
		router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(hub, conf.Listen.ApiKey, log, w, r)
		})
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
