package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/telefetch/telefetch/internal/config"
	"github.com/telefetch/telefetch/internal/queue"
	"github.com/telefetch/telefetch/internal/store"
	"github.com/telefetch/telefetch/internal/util"
)

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	uid := cq.From.ID
	lang := b.lang(uid)
	chatID := cq.Message.Chat.ID
	msgID := cq.Message.MessageID

	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Printf("[Bot] Callback ack failed: %v", err)
	}

	data := cq.Data
	if strings.HasPrefix(data, "cancel:") {
		owner, jobID, ok := parseCancel(data)
		if !ok || owner != uid {
			// In a group chat anyone can see the button; only the
			// requester may cancel their own job.
			log.Printf("[Bot] Ignored cancel press from user %d", uid)
			return
		}
		b.cancels.Mark(jobID)
		log.Printf("[Bot] %s marked canceled by user %d", util.ShortID(jobID), uid)
		return
	}

	switch data {
	case "show_menu":
		b.sendMenu(chatID, uid, msgID)

	case "my_downloads":
		records, err := b.store.Recent(uid, config.HistoryLimit)
		if err != nil {
			log.Printf("[Bot] History query failed: %v", err)
			return
		}
		if len(records) == 0 {
			b.edit(chatID, msgID, msg(lang, "no_history"))
			return
		}
		var sb strings.Builder
		sb.WriteString(msg(lang, "history_header"))
		sb.WriteString("\n\n")
		for _, rec := range records {
			fmt.Fprintf(&sb, "• %s | %s\n  %s\n\n", rec.Platform, rec.CreatedAt.Local().Format("15:04"), rec.Title)
		}
		sb.WriteString("/start")
		b.edit(chatID, msgID, sb.String())

	case "my_stats":
		total, bytes, err := b.store.Stats(uid)
		if err != nil {
			log.Printf("[Bot] Stats query failed: %v", err)
			return
		}
		today, err := b.store.CountSince(uid, store.MidnightUTC(time.Now()))
		if err != nil {
			log.Printf("[Bot] Quota count failed: %v", err)
		}
		b.edit(chatID, msgID, msgf(lang, "stats", total, today, float64(bytes)/1024/1024))

	case "register":
		exists, err := b.store.UserExists(uid)
		if err != nil {
			log.Printf("[Bot] Account lookup failed: %v", err)
		}
		if exists {
			b.edit(chatID, msgID, msg(lang, "register_exists"))
			return
		}
		b.sessions.Get(uid).State = StateRegisterName
		b.edit(chatID, msgID, msg(lang, "register_name"))

	case "login":
		b.sessions.Get(uid).State = StateLoginUsername
		b.edit(chatID, msgID, msg(lang, "login_username"))

	case "logout":
		b.sessions.Reset(uid)
		b.edit(chatID, msgID, msg(lang, "logout"))

	case "toggle_lang":
		next := nextLanguage(lang)
		if err := b.store.SetLanguage(uid, next); err != nil {
			log.Printf("[Bot] Language update failed: %v", err)
		}
		b.edit(chatID, msgID, msg(next, "lang_set"))

	case "help":
		b.edit(chatID, msgID, msgf(lang, "help", config.GuestDailyLimit, config.UserDailyLimit))
	}
}

// cancelCallbackData builds the cancel button payload, carrying the
// requester id so a press by anyone else can be rejected.
func cancelCallbackData(job *queue.Job) string {
	return fmt.Sprintf("cancel:%d:%s", job.Requester, job.ID)
}

func parseCancel(data string) (owner int64, jobID string, ok bool) {
	rest, found := strings.CutPrefix(data, "cancel:")
	if !found {
		return 0, "", false
	}
	ownerStr, id, found := strings.Cut(rest, ":")
	if !found || id == "" {
		return 0, "", false
	}
	n, err := strconv.ParseInt(ownerStr, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return n, id, true
}

// nextLanguage steps through the supported language list in order.
func nextLanguage(lang string) string {
	for i, l := range config.Languages {
		if l == lang {
			return config.Languages[(i+1)%len(config.Languages)]
		}
	}
	return config.Languages[0]
}

// sendMenu edits in place when called from a callback (messageID > 0),
// otherwise posts a fresh message.
func (b *Bot) sendMenu(chatID, userID int64, messageID int) {
	lang := b.lang(userID)
	registered, err := b.store.UserExists(userID)
	if err != nil {
		log.Printf("[Bot] Account lookup failed: %v", err)
	}

	var text string
	var kb tgbotapi.InlineKeyboardMarkup
	if registered {
		text = msg(lang, "menu_user")
		kb = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(msg(lang, "btn_downloads"), "my_downloads")),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(msg(lang, "btn_stats"), "my_stats")),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(msg(lang, "btn_lang"), "toggle_lang")),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(msg(lang, "btn_logout"), "logout")),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(msg(lang, "btn_help"), "help")),
		)
	} else {
		text = msg(lang, "menu_guest")
		kb = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(msg(lang, "btn_register"), "register")),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(msg(lang, "btn_login"), "login")),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(msg(lang, "btn_help"), "help")),
		)
	}

	if messageID > 0 {
		e := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
		if _, err := b.api.Send(e); err != nil {
			log.Printf("[Bot] Menu edit failed: %v", err)
		}
		return
	}
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = kb
	if _, err := b.api.Send(m); err != nil {
		log.Printf("[Bot] Menu send failed: %v", err)
	}
}
