// Package backnav routes back-navigation requests to the highest-priority
// registered handler.
//
// Two registries usually exist per program: one for the in-app back action
// and one for the platform-level back gesture or key.
package backnav

import (
	"sort"
	"sync"
)

// Default priorities. A handler registered above PriorityDefault intercepts
// back navigation before the router's own pop behavior.
const (
	PriorityDefault = 0
	PrioritySession = 101
)

// Handler reacts to a back request. The handle passed in lets the handler
// forward the request to the next registered handler.
type Handler func(h *Handle)

// Registry holds back handlers ordered by priority.
type Registry struct {
	mu       sync.Mutex
	name     string
	handlers []*Handle
	seq      int
}

// Handle identifies one registration.
type Handle struct {
	reg      *Registry
	priority int
	order    int
	fn       Handler
	once     sync.Once
}

// NewRegistry creates an empty registry.
func NewRegistry(name string) *Registry {
	return &Registry{name: name}
}

// Name returns the registry's label.
func (r *Registry) Name() string { return r.name }

// Register adds a handler. Among equal priorities the latest registration
// wins.
func (r *Registry) Register(priority int, fn Handler) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	h := &Handle{reg: r, priority: priority, order: r.seq, fn: fn}
	r.handlers = append(r.handlers, h)
	sort.SliceStable(r.handlers, func(i, j int) bool {
		a, b := r.handlers[i], r.handlers[j]
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		return a.order > b.order
	})
	return h
}

// Len reports the number of active registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}

// Dispatch invokes the top handler. It returns false when nothing is
// registered.
func (r *Registry) Dispatch() bool {
	r.mu.Lock()
	if len(r.handlers) == 0 {
		r.mu.Unlock()
		return false
	}
	top := r.handlers[0]
	r.mu.Unlock()

	top.fn(top)
	return true
}

// Unregister removes the handler. Calling it more than once is a no-op.
func (h *Handle) Unregister() {
	h.once.Do(func() {
		r := h.reg
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, other := range r.handlers {
			if other == h {
				r.handlers = append(r.handlers[:i], r.handlers[i+1:]...)
				return
			}
		}
	})
}

// Forward invokes the next handler below h. It returns false when h is the
// last one.
func (h *Handle) Forward() bool {
	r := h.reg
	r.mu.Lock()
	var next *Handle
	for _, other := range r.handlers {
		if other == h {
			continue
		}
		if other.priority < h.priority || (other.priority == h.priority && other.order < h.order) {
			next = other
			break
		}
	}
	r.mu.Unlock()

	if next == nil {
		return false
	}
	next.fn(next)
	return true
}
