package worker

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Janitor sweeps the download root for artifacts orphaned by crashes
// between extraction and the loop's guaranteed cleanup. The retention
// threshold sits above the extraction timeout so in-flight scratch dirs
// are never touched.
type Janitor struct {
	Root     string
	MaxAge   time.Duration
	Interval time.Duration
}

func NewJanitor(root string, maxAge, interval time.Duration) *Janitor {
	return &Janitor{Root: root, MaxAge: maxAge, Interval: interval}
}

func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[Janitor] Stopped")
			return ctx.Err()
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep removes every entry older than MaxAge. Failures are logged and
// retried on the next tick; the sweep itself never errors out.
func (j *Janitor) Sweep() {
	entries, err := os.ReadDir(j.Root)
	if err != nil {
		return
	}
	now := time.Now()
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= j.MaxAge {
			continue
		}
		p := filepath.Join(j.Root, e.Name())
		if err := os.RemoveAll(p); err != nil {
			log.Printf("[Janitor] Failed to remove %s: %v", e.Name(), err)
			continue
		}
		log.Printf("[Janitor] Removed stale entry: %s", e.Name())
	}
}
