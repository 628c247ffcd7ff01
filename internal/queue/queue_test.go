package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := New()

	var ids []string
	for i := 0; i < 10; i++ {
		job := &Job{Requester: int64(i), URL: fmt.Sprintf("https://example.com/%d", i)}
		ids = append(ids, q.Submit(job))
	}

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		job, err := q.Take(ctx)
		if err != nil {
			t.Fatalf("Take failed: %v", err)
		}
		if job.ID != ids[i] {
			t.Errorf("Take %d returned job %s, expected %s", i, job.ID, ids[i])
		}
	}

	if q.Len() != 0 {
		t.Errorf("Queue should be empty, has %d items", q.Len())
	}
}

func TestSubmitAssignsIDAndTimestamp(t *testing.T) {
	q := New()
	job := &Job{URL: "https://example.com"}
	id := q.Submit(job)

	if id == "" || job.ID != id {
		t.Errorf("Submit should assign and return the job id, got %q / %q", id, job.ID)
	}
	if job.SubmittedAt.IsZero() {
		t.Error("Submit should stamp SubmittedAt")
	}
}

func TestTakeBlocksUntilSubmit(t *testing.T) {
	q := New()

	done := make(chan *Job)
	go func() {
		job, err := q.Take(context.Background())
		if err != nil {
			t.Errorf("Take failed: %v", err)
		}
		done <- job
	}()

	select {
	case <-done:
		t.Fatal("Take returned before anything was submitted")
	case <-time.After(50 * time.Millisecond):
	}

	q.Submit(&Job{URL: "https://example.com"})

	select {
	case job := <-done:
		if job.URL != "https://example.com" {
			t.Errorf("Unexpected job: %+v", job)
		}
	case <-time.After(time.Second):
		t.Fatal("Take did not wake up after Submit")
	}
}

func TestTakeCancellation(t *testing.T) {
	q := New()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error)
	go func() {
		_, err := q.Take(ctx)
		errCh <- err
	}()

	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("Take returned %v, expected context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Take did not return after context cancellation")
	}
}

func TestConcurrentSubmitSingleConsumer(t *testing.T) {
	q := New()

	const producers = 8
	const perProducer = 25

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Submit(&Job{Requester: int64(p)})
			}
		}(p)
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	seen := 0
	for seen < producers*perProducer {
		if _, err := q.Take(ctx); err != nil {
			t.Fatalf("Take failed after %d jobs: %v", seen, err)
		}
		seen++
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if r.IsCanceled("a") {
		t.Error("Fresh registry should not report a canceled job")
	}

	r.Mark("a")
	r.Mark("a") // idempotent
	if !r.IsCanceled("a") {
		t.Error("Mark did not register the job")
	}
	if r.IsCanceled("b") {
		t.Error("Unmarked job reported as canceled")
	}

	r.Clear("a")
	if r.IsCanceled("a") {
		t.Error("Clear did not remove the mark")
	}
	r.Clear("a") // clearing twice is fine
}
