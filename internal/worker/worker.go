package worker

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/telefetch/telefetch/internal/alerts"
	"github.com/telefetch/telefetch/internal/config"
	"github.com/telefetch/telefetch/internal/extract"
	"github.com/telefetch/telefetch/internal/queue"
	"github.com/telefetch/telefetch/internal/util"
)

// Extractor is the blocking media-extraction boundary.
type Extractor interface {
	Extract(ctx context.Context, job *queue.Job, dir string, onProgress func(percent float64)) (*extract.Result, error)
}

// Transport is what the loop needs from the chat side: status updates
// plus the three delivery paths.
type Transport interface {
	Progress(job *queue.Job, percent float64)
	Canceled(job *queue.Job)
	Failed(job *queue.Job, reason string)
	Delivered(job *queue.Job, title string)
	SendVideo(job *queue.Job, path, title string) error
	SendDocument(job *queue.Job, path, title string) error
}

// Recorder appends one history record per delivered job.
type Recorder interface {
	SaveDownload(userID int64, platform, url, title, kind string, size int64) error
}

// Loop is the single consumer of the job queue. One extraction runs at
// a time; cancellation is checked before extraction starts and again
// before delivery.
type Loop struct {
	queue     *queue.Queue
	cancels   *queue.Registry
	extractor Extractor
	transport Transport
	recorder  Recorder
	root      string
}

func NewLoop(q *queue.Queue, cancels *queue.Registry, ex Extractor, tr Transport, rec Recorder, root string) *Loop {
	return &Loop{
		queue:     q,
		cancels:   cancels,
		extractor: ex,
		transport: tr,
		recorder:  rec,
		root:      root,
	}
}

// Run drains the queue until ctx is cancelled. A failure inside one job
// never takes the loop down.
func (l *Loop) Run(ctx context.Context) error {
	log.Println("[Worker] Loop started")
	for {
		job, err := l.queue.Take(ctx)
		if err != nil {
			log.Println("[Worker] Loop stopped")
			return err
		}
		l.process(ctx, job)
	}
}

func (l *Loop) process(ctx context.Context, job *queue.Job) {
	short := util.ShortID(job.ID)
	defer l.cancels.Clear(job.ID)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Worker] %s panic: %v", short, r)
			l.transport.Failed(job, "Download failed")
		}
	}()

	if l.cancels.IsCanceled(job.ID) {
		log.Printf("[Worker] %s canceled before extraction", short)
		l.transport.Canceled(job)
		return
	}

	scratch := filepath.Join(l.root, job.ID)
	if err := os.MkdirAll(scratch, 0755); err != nil {
		log.Printf("[Worker] %s scratch dir failed: %v", short, err)
		l.transport.Failed(job, "Download failed")
		return
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Printf("[Worker] %s scratch cleanup failed: %v", short, err)
		}
	}()

	log.Printf("[Worker] %s extracting %s (%s)", short, util.Truncate(job.URL, 120), job.Kind)

	exCtx, cancel := context.WithTimeout(ctx, config.ExtractTimeout)
	result, err := l.extractor.Extract(exCtx, job, scratch, func(percent float64) {
		l.transport.Progress(job, percent)
	})
	cancel()
	if err != nil {
		log.Printf("[Worker] %s extraction failed: %v", short, err)
		alerts.ExtractionFailed(job.ID, job.URL, err)
		l.transport.Failed(job, util.ToUserError(err.Error()))
		return
	}

	// Covers cancellation that landed while extraction was in flight;
	// the fresh file is discarded with the scratch dir.
	if l.cancels.IsCanceled(job.ID) {
		log.Printf("[Worker] %s canceled after extraction, discarding file", short)
		l.transport.Canceled(job)
		return
	}

	title := result.Title
	if title == "" {
		title = "download"
	}
	title = util.Truncate(title, config.MaxTitleLen)

	// The delivered file carries the title, not yt-dlp's id-based
	// output name.
	if name := util.SanitizeFilename(title); name != "" && result.Ext != "" {
		named := filepath.Join(scratch, name+"."+result.Ext)
		if named != result.Path {
			if err := os.Rename(result.Path, named); err == nil {
				result.Path = named
			}
		}
	}

	if err := l.deliver(job, result, title); err != nil {
		log.Printf("[Worker] %s delivery failed: %v", short, err)
		alerts.DeliveryFailed(job.ID, err)
		l.transport.Failed(job, "Couldn't send the file, it may be too large")
		return
	}

	if err := l.recorder.SaveDownload(job.Requester, result.Platform, job.URL, title, string(job.Kind), result.Size); err != nil {
		// Delivered but not recorded; log and move on rather than
		// confuse the user with a failure they can see succeeded.
		log.Printf("[Worker] %s record failed: %v", short, err)
		alerts.StoreError("save download", err)
	}

	l.transport.Delivered(job, title)
	log.Printf("[Worker] %s done: %s (%.1fMB)", short, title, float64(result.Size)/1024/1024)
}

// deliver picks the transport path: audio always goes as a document so
// the container survives untouched; video rides the inline path while it
// fits under the ceiling.
func (l *Loop) deliver(job *queue.Job, result *extract.Result, title string) error {
	if job.Kind == queue.KindAudio {
		return l.transport.SendDocument(job, result.Path, title)
	}
	if result.Size < config.VideoSizeCeiling {
		return l.transport.SendVideo(job, result.Path, title)
	}
	return l.transport.SendDocument(job, result.Path, title)
}
