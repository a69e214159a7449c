package main

import (
	"AnamBot/bot"
	"AnamBot/bot/chat"
	"AnamBot/bot/chat/interview"
	"AnamBot/internal/config"
	repository "AnamBot/internal/database"
	"AnamBot/internal/http-server/api"
	"AnamBot/internal/lib/logger"
	"AnamBot/internal/lib/sl"
	"AnamBot/internal/service/scenario"
	"AnamBot/internal/service/transcript"
	"AnamBot/internal/ws"
	"context"
	"flag"
	"log/slog"
	"time"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	lg.Info("starting anambot", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	var stateStore chat.StateStore
	var answerStore chat.AnswerStore
	var messageRepo transcript.ChatMessageRepository

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
		return
	}
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := db.EnsureIndexes(ctx); err != nil {
			lg.With(sl.Err(err)).Error("mongo indexes")
			cancel()
			return
		}
		cancel()
		stateStore = db
		answerStore = db
		messageRepo = db
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	} else {
		stateStore = chat.NewMemoryStateStore()
		answerStore = chat.NewMemoryAnswerStore()
		lg.Info("mongo disabled, using in-memory stores")
	}

	accessors, err := chat.NewStateAccessors(stateStore)
	if err != nil {
		lg.Error("state accessors", sl.Err(err))
		return
	}

	engine, err := chat.NewDialogEngine(lg)
	if err != nil {
		lg.Error("dialog engine", sl.Err(err))
		return
	}

	script := scenario.NewScript(time.Now().UnixNano())
	var scenarios interview.ScenarioSource = script
	if conf.OpenAI.Enabled {
		generator, err := scenario.NewGenerator(conf.OpenAI.ApiKey, conf.OpenAI.Model, script, lg)
		if err != nil {
			lg.Warn("scenario generator disabled", sl.Err(err))
		} else {
			scenarios = generator
			lg.With(
				sl.Secret("openai_key", conf.OpenAI.ApiKey),
				slog.String("model", conf.OpenAI.Model),
			).Info("scenario generator initialized")
		}
	}

	interviewDialog, err := interview.New(scenarios, answerStore, conf.Interview.PersistRetries, lg)
	if err != nil {
		lg.Error("interview dialog", sl.Err(err))
		return
	}
	engine.Register(chat.NewTextPrompt())
	engine.Register(interviewDialog)

	processor, err := chat.NewTurnProcessor(engine, accessors, interview.ID, lg)
	if err != nil {
		lg.Error("turn processor", sl.Err(err))
		return
	}

	hub := ws.NewHub(lg)
	go hub.Run()
	processor.SetMessageListener(transcript.NewService(messageRepo, hub, lg))

	if conf.Telegram.Enabled {
		tgBot, err := bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, processor, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
			go func() {
				if err := tgBot.Start(); err != nil {
					lg.Error("telegram bot error", sl.Err(err))
				}
			}()
		}
	}

	handler := struct {
		*chat.TurnProcessor
		chat.AnswerStore
	}{processor, answerStore}

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
