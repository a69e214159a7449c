package bot

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"

	"AnamBot/bot/chat"
	"AnamBot/bot/chat/telegram"
	"AnamBot/entity"
	"AnamBot/internal/lib/locker"
	"AnamBot/internal/lib/sl"
)

const channelTelegram = "telegram"

// TgBot is the Telegram transport: it maps updates to activities, serializes
// turns per chat and hands them to the turn processor.
type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	botUsername string
	processor   *chat.TurnProcessor
	messenger   chat.Messenger
	locks       *locker.Keyed
}

func NewTgBot(botName, apiKey string, processor *chat.TurnProcessor, log *slog.Logger) (*TgBot, error) {
	if processor == nil {
		return nil, fmt.Errorf("telegram bot: turn processor: %w", chat.ErrConfiguration)
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}

	return &TgBot{
		log:         log.With(sl.Module("tgbot")),
		api:         api,
		botUsername: botName,
		processor:   processor,
		messenger:   telegram.NewMessenger(api),
		locks:       locker.New(),
	}, nil
}

func (t *TgBot) Start() error {

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		// If an error is returned by a handler, log it and continue going.
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			log.Println("an error occurred while handling update:", err.Error())
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	updater := ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("start", t.handleStart))
	dispatcher.AddHandler(handlers.NewMessage(newChatMembers, t.handleNewMembers))
	dispatcher.AddHandler(handlers.NewMessage(message.Text, t.handleMessage))

	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.Info("telegram bot polling", slog.String("bot_name", t.botUsername))

	// Idle, to keep updates coming in, and avoid bot stopping.
	updater.Idle()

	return nil
}

func newChatMembers(msg *tgbotapi.Message) bool {
	return len(msg.NewChatMembers) > 0
}

// handleStart treats /start in a private chat like joining a conversation.
func (t *TgBot) handleStart(bot *tgbotapi.Bot, ctx *ext.Context) error {
	user := ctx.EffectiveUser
	act := entity.Activity{
		Kind:           entity.KindConversationUpdate,
		Channel:        channelTelegram,
		ConversationID: strconv.FormatInt(ctx.EffectiveChat.Id, 10),
		SenderID:       strconv.FormatInt(user.Id, 10),
		SenderName:     user.FirstName,
		MembersAdded: []entity.ChannelAccount{
			{ID: strconv.FormatInt(user.Id, 10), Name: user.FirstName},
		},
	}
	return t.process(act)
}

func (t *TgBot) handleNewMembers(bot *tgbotapi.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage

	var members []entity.ChannelAccount
	for _, u := range msg.NewChatMembers {
		if u.IsBot && u.Username == t.botUsername {
			continue
		}
		members = append(members, entity.ChannelAccount{
			ID:   strconv.FormatInt(u.Id, 10),
			Name: u.FirstName,
		})
	}
	if len(members) == 0 {
		return nil
	}

	act := entity.Activity{
		Kind:           entity.KindConversationUpdate,
		Channel:        channelTelegram,
		ConversationID: strconv.FormatInt(msg.Chat.Id, 10),
		MembersAdded:   members,
	}
	return t.process(act)
}

func (t *TgBot) handleMessage(bot *tgbotapi.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	user := ctx.EffectiveUser

	act := entity.Activity{
		Kind:           entity.KindMessage,
		Channel:        channelTelegram,
		ConversationID: strconv.FormatInt(msg.Chat.Id, 10),
		SenderID:       strconv.FormatInt(user.Id, 10),
		SenderName:     user.FirstName,
		Text:           msg.Text,
	}
	return t.process(act)
}

func (t *TgBot) process(act entity.Activity) error {
	unlock := t.locks.Lock(act.ConversationKey())
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := t.processor.ProcessActivity(ctx, t.messenger, act); err != nil {
		t.log.Error("turn failed",
			slog.String("conversation", act.ConversationKey()),
			sl.Err(err),
		)
		return err
	}
	return nil
}
