package bot

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/telefetch/telefetch/internal/config"
	"github.com/telefetch/telefetch/internal/queue"
	"github.com/telefetch/telefetch/internal/store"
)

type Config struct {
	Token string
}

// Bot owns the Telegram side: the polling loop, conversation state, and
// the delivery methods the worker loop calls back into. Handlers run on
// the update loop and must stay non-blocking; the only heavy work is
// handed to the queue.
type Bot struct {
	api      *tgbotapi.BotAPI
	queue    *queue.Queue
	cancels  *queue.Registry
	store    *store.Store
	sessions *sessionRegistry
}

func New(cfg Config, q *queue.Queue, cancels *queue.Registry, st *store.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:      api,
		queue:    q,
		cancels:  cancels,
		store:    st,
		sessions: newSessionRegistry(),
	}, nil
}

func (b *Bot) Start() error {
	log.Printf("[Bot] Logged in as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	go b.loop(updates)
	return nil
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

func (b *Bot) loop(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		b.dispatch(update)
	}
	log.Println("[Bot] Update loop stopped")
}

func (b *Bot) dispatch(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Bot] Handler panic: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(update.Message)
	}
}

func (b *Bot) lang(userID int64) string {
	l := b.store.Language(userID)
	if !config.Contains(config.Languages, l) {
		return "en"
	}
	return l
}

func (b *Bot) reply(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(m); err != nil {
		log.Printf("[Bot] Send failed: %v", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	e := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.api.Send(e); err != nil {
		log.Printf("[Bot] Edit failed: %v", err)
	}
}
