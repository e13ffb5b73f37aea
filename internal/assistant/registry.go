package assistant

import (
	"sync"

	"github.com/atcdesk/radioscribe/pkg/logging"
)

// Registry stores assistant descriptors keyed by command, preserving
// registration order for enumeration.
type Registry struct {
	mu     sync.RWMutex
	byCmd  map[string]*Descriptor
	order  []string
	logger *logging.Logger
}

func NewRegistry(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Default()
	}
	return &Registry{
		byCmd:  make(map[string]*Descriptor),
		logger: logger.Component("assistant.registry"),
	}
}

// Register adds a descriptor. Re-registering an existing command
// overwrites the previous descriptor and logs a warning; the command
// keeps its original position in enumeration order.
func (r *Registry) Register(d Descriptor) {
	if d.Command == "" {
		panic("assistant: descriptor command cannot be empty")
	}
	if d.HandleMessage == nil {
		panic("assistant: descriptor must have a message handler")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byCmd[d.Command]; exists {
		r.logger.Warn("assistant already registered, overwriting", "command", d.Command, "name", d.Name)
	} else {
		r.order = append(r.order, d.Command)
	}
	r.byCmd[d.Command] = &d
	r.logger.Info("assistant registered", "command", d.Command, "name", d.Name)
}

// Get returns the descriptor for a command. Command matching is
// case-sensitive.
func (r *Registry) Get(command string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byCmd[command]
	return d, ok
}

// ListAll returns all descriptors in registration order.
func (r *Registry) ListAll() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.order))
	for _, cmd := range r.order {
		out = append(out, r.byCmd[cmd])
	}
	return out
}
