package bot

import (
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/telefetch/telefetch/internal/config"
	"github.com/telefetch/telefetch/internal/queue"
	"github.com/telefetch/telefetch/internal/store"
	"github.com/telefetch/telefetch/internal/util"
)

var alnumRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

func (b *Bot) handleCommand(m *tgbotapi.Message) {
	uid := m.From.ID
	lang := b.lang(uid)

	switch m.Command() {
	case "start":
		b.sessions.Reset(uid)
		reply := tgbotapi.NewMessage(m.Chat.ID, msg(lang, "start"))
		reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(msg(lang, "btn_menu"), "show_menu"),
			),
		)
		if _, err := b.api.Send(reply); err != nil {
			log.Printf("[Bot] Send failed: %v", err)
		}
	case "menu":
		b.sendMenu(m.Chat.ID, uid, 0)
	case "help":
		b.reply(m.Chat.ID, msgf(lang, "help", config.GuestDailyLimit, config.UserDailyLimit))
	default:
		b.reply(m.Chat.ID, msg(lang, "send_link"))
	}
}

func (b *Bot) handleText(m *tgbotapi.Message) {
	uid := m.From.ID
	text := strings.TrimSpace(m.Text)

	if _, _, ok := util.DetectPlatform(text); ok {
		b.admit(m, text)
		return
	}

	session := b.sessions.Get(uid)
	if session.State != StateIdle {
		b.handleConversation(m, session, text)
		return
	}

	b.reply(m.Chat.ID, msg(b.lang(uid), "send_link"))
}

// admit runs the quota and URL checks, then enqueues. Quota is enforced
// here only; once submitted, a job is never rejected for quota reasons.
func (b *Bot) admit(m *tgbotapi.Message, rawURL string) {
	uid := m.From.ID
	lang := b.lang(uid)

	registered, err := b.store.UserExists(uid)
	if err != nil {
		log.Printf("[Bot] Account lookup failed: %v", err)
	}
	limit := int64(config.GuestDailyLimit)
	if registered {
		limit = config.UserDailyLimit
	}

	count, err := b.store.CountSince(uid, store.MidnightUTC(time.Now()))
	if err != nil {
		log.Printf("[Bot] Quota count failed: %v", err)
	}
	if count >= limit {
		b.reply(m.Chat.ID, msgf(lang, "quota_reached", limit))
		return
	}

	if v := util.ValidateURL(rawURL); !v.Valid {
		b.reply(m.Chat.ID, msg(lang, "invalid_url"))
		return
	}

	platform, kind, ok := util.DetectPlatform(rawURL)
	if !ok {
		b.reply(m.Chat.ID, msg(lang, "unsupported"))
		return
	}

	job := &queue.Job{
		ID:        uuid.New().String(),
		Requester: uid,
		ChatID:    m.Chat.ID,
		URL:       rawURL,
		Platform:  platform,
		Kind:      kind,
	}

	// The status message goes out before the job is visible to the
	// worker so progress edits always have a message to land on.
	status := tgbotapi.NewMessage(m.Chat.ID, msg(lang, "queued"))
	status.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(msg(lang, "btn_cancel"), cancelCallbackData(job)),
		),
	)
	sent, err := b.api.Send(status)
	if err != nil {
		log.Printf("[Bot] Status message failed: %v", err)
	} else {
		job.StatusMsgID = sent.MessageID
	}

	b.queue.Submit(job)
	log.Printf("[Bot] %s queued %s for user %d", util.ShortID(job.ID), platform, uid)
}

func (b *Bot) handleConversation(m *tgbotapi.Message, session *Session, text string) {
	uid := m.From.ID
	lang := b.lang(uid)

	switch session.State {
	case StateRegisterName:
		session.FullName = text
		session.State = StateRegisterUsername
		b.reply(m.Chat.ID, msg(lang, "register_username"))

	case StateRegisterUsername:
		username := strings.TrimPrefix(strings.TrimSpace(text), "@")
		if len(username) < config.MinUsernameLen {
			b.reply(m.Chat.ID, msg(lang, "username_short"))
			return
		}
		session.Username = username
		session.State = StateRegisterPassword
		b.reply(m.Chat.ID, msg(lang, "register_password"))

	case StateRegisterPassword:
		if len(text) < config.MinPasswordLen || len(text) > config.MaxPasswordLen || !alnumRe.MatchString(text) {
			b.reply(m.Chat.ID, msg(lang, "password_bad"))
			return
		}
		err := b.store.CreateUser(uid, session.Username, session.FullName, text)
		switch {
		case errors.Is(err, store.ErrUsernameTaken):
			session.State = StateRegisterUsername
			b.reply(m.Chat.ID, msg(lang, "register_taken"))
		case errors.Is(err, store.ErrAccountExists):
			b.sessions.Reset(uid)
			b.reply(m.Chat.ID, msg(lang, "register_exists"))
		case err != nil:
			log.Printf("[Bot] Registration failed for %d: %v", uid, err)
			b.sessions.Reset(uid)
			b.reply(m.Chat.ID, msg(lang, "send_link"))
		default:
			b.sessions.Reset(uid)
			b.reply(m.Chat.ID, msg(lang, "register_done"))
		}

	case StateLoginUsername:
		session.Username = strings.TrimPrefix(strings.TrimSpace(text), "@")
		session.State = StateLoginPassword
		b.reply(m.Chat.ID, msg(lang, "login_password"))

	case StateLoginPassword:
		user, err := b.store.Authenticate(session.Username, text)
		b.sessions.Reset(uid)
		if err != nil {
			b.reply(m.Chat.ID, msg(lang, "login_bad"))
			return
		}
		b.reply(m.Chat.ID, msgf(lang, "login_ok", user.FullName))
	}
}
