package bootstrap

import (
	"sync"
)

// Report tracks per-model bootstrap outcomes.
//
// The health endpoint consults it, so it is safe for concurrent use.
type Report struct {
	mu        sync.Mutex
	done      bool
	aborted   string
	succeeded []string
	failed    map[string]string
}

func NewReport() *Report {
	return &Report{failed: map[string]string{}}
}

// CompletedReport is the report of a gateway with nothing to seed.
func CompletedReport() *Report {
	r := NewReport()
	r.done = true
	return r
}

func (r *Report) success(image string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded = append(r.succeeded, image)
}

func (r *Report) failure(image string, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[image] = reason
}

func (r *Report) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
}

func (r *Report) abort(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aborted = reason
}

// Snapshot of the report at one moment.
type Snapshot struct {
	// Done: the bootstrap pass over all built-ins has finished.
	Done bool

	// Aborted is non-empty when the pass stopped before reaching the
	// built-ins, for example because the store never came up.
	Aborted string

	Succeeded []string

	// Failed maps image tag to the reason registration failed.
	Failed map[string]string
}

func (r *Report) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		Done:      r.done,
		Aborted:   r.aborted,
		Succeeded: make([]string, len(r.succeeded)),
		Failed:    make(map[string]string, len(r.failed)),
	}
	copy(s.Succeeded, r.succeeded)
	for k, v := range r.failed {
		s.Failed[k] = v
	}
	return s
}

// Degraded: the catalog is not (yet) the full built-in set.
// True while the bootstrap is still running and when any built-in
// failed to register.
func (r *Report) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.done || r.aborted != "" || 0 < len(r.failed)
}
