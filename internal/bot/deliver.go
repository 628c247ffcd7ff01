package bot

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/telefetch/telefetch/internal/queue"
	"github.com/telefetch/telefetch/internal/util"
)

// The worker loop drives these from its own goroutine; they only touch
// the thread-safe API client and the store.

func (b *Bot) Progress(job *queue.Job, percent float64) {
	if job.StatusMsgID == 0 {
		return
	}
	lang := b.lang(job.Requester)
	b.edit(job.ChatID, job.StatusMsgID, msgf(lang, "downloading", percent))
}

func (b *Bot) Canceled(job *queue.Job) {
	b.status(job, msg(b.lang(job.Requester), "canceled"))
}

func (b *Bot) Failed(job *queue.Job, reason string) {
	b.status(job, msgf(b.lang(job.Requester), "failed", reason))
}

func (b *Bot) Delivered(job *queue.Job, title string) {
	b.status(job, msgf(b.lang(job.Requester), "delivered", util.Truncate(title, 80)))
}

// SendVideo is the inline delivery path: Telegram renders a playable
// preview but may transcode the payload.
func (b *Bot) SendVideo(job *queue.Job, path, title string) error {
	v := tgbotapi.NewVideo(job.ChatID, tgbotapi.FilePath(path))
	v.Caption = title
	v.SupportsStreaming = true
	_, err := b.api.Send(v)
	return err
}

// SendDocument is the generic-file path: the container is preserved
// byte for byte. Audio and oversized video both land here.
func (b *Bot) SendDocument(job *queue.Job, path, title string) error {
	d := tgbotapi.NewDocument(job.ChatID, tgbotapi.FilePath(path))
	d.Caption = title
	_, err := b.api.Send(d)
	return err
}

func (b *Bot) status(job *queue.Job, text string) {
	if job.StatusMsgID > 0 {
		// Drop the cancel button along with the old text.
		e := tgbotapi.NewEditMessageText(job.ChatID, job.StatusMsgID, text)
		if _, err := b.api.Send(e); err != nil {
			log.Printf("[Bot] Status edit failed: %v", err)
		}
		return
	}
	b.reply(job.ChatID, text)
}
