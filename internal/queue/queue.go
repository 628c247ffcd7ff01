package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Job is one user-submitted request to fetch media from a URL. Jobs are
// in-memory only; a restart drops whatever was pending.
type Job struct {
	ID          string
	Requester   int64
	ChatID      int64
	URL         string
	Platform    string
	Kind        Kind
	StatusMsgID int
	SubmittedAt time.Time
}

// Queue is a strictly FIFO, unbounded job store. Any number of handler
// goroutines may Submit concurrently; exactly one worker calls Take in a
// loop.
type Queue struct {
	mu    sync.Mutex
	items []*Job
	ready chan struct{}
}

func New() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Submit appends the job, assigning it an id, and returns that id.
func (q *Queue) Submit(job *Job) string {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	q.items = append(q.items, job)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return job.ID
}

// Take blocks until a job is available or ctx is cancelled, then removes
// and returns the oldest unprocessed job.
func (q *Queue) Take(ctx context.Context) (*Job, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			job := q.items[0]
			q.items = q.items[1:]
			if len(q.items) > 0 {
				select {
				case q.ready <- struct{}{}:
				default:
				}
			}
			q.mu.Unlock()
			return job, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.ready:
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
