package queue

import "sync"

// Registry tracks jobs the user asked to cancel. Marking is idempotent
// and safe from any goroutine; the worker probes it at its checkpoints
// and clears the entry once the job is consumed, so the set stays
// bounded by queue depth.
type Registry struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]struct{})}
}

func (r *Registry) Mark(jobID string) {
	r.mu.Lock()
	r.ids[jobID] = struct{}{}
	r.mu.Unlock()
}

func (r *Registry) IsCanceled(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[jobID]
	return ok
}

func (r *Registry) Clear(jobID string) {
	r.mu.Lock()
	delete(r.ids, jobID)
	r.mu.Unlock()
}
