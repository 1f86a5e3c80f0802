// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"sync"
)

// cancelRegistry tracks the cancel function of every running job so Cancel
// can interrupt it.
type cancelRegistry struct {
	mu sync.Mutex
	m  map[string]context.CancelFunc
}

func newCancelRegistry() cancelRegistry {
	return cancelRegistry{m: make(map[string]context.CancelFunc)}
}

func (r *cancelRegistry) put(id string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[id] = cancel
}

func (r *cancelRegistry) get(id string) (context.CancelFunc, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancel, ok := r.m[id]
	return cancel, ok
}

func (r *cancelRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
}
