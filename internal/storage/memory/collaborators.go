package memory

import (
	"context"
	"sync"

	"github.com/jcmexdev/marketplace-orders/internal/split"
)

// Flags is an in-memory feature-flag source. Unknown flags default to on.
type Flags struct {
	mu       sync.Mutex
	disabled map[string]bool
}

func NewFlags() *Flags {
	return &Flags{disabled: make(map[string]bool)}
}

func (f *Flags) Set(name string, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled[name] = !enabled
}

func (f *Flags) Enabled(ctx context.Context, name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.disabled[name]
}

// EventRecorder collects dispatched split events so tests and the demo host
// can inspect the workflow.
type EventRecorder struct {
	mu     sync.Mutex
	events []split.Event
}

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

func (r *EventRecorder) Dispatch(ctx context.Context, ev split.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything dispatched so far.
func (r *EventRecorder) Events() []split.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]split.Event(nil), r.events...)
}

// OfType returns the recorded events of one type.
func (r *EventRecorder) OfType(t split.EventType) []split.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []split.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// Rules is a fixed per-vendor commission rule table with a fallback.
type Rules struct {
	mu       sync.Mutex
	rules    map[string]split.CommissionRule
	fallback split.CommissionRule
}

func NewRules(fallback split.CommissionRule) *Rules {
	return &Rules{
		rules:    make(map[string]split.CommissionRule),
		fallback: fallback,
	}
}

func (r *Rules) SetRule(vendorID string, rule split.CommissionRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[vendorID] = rule
}

func (r *Rules) RuleFor(ctx context.Context, vendorID string) (split.CommissionRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule, ok := r.rules[vendorID]; ok {
		return rule, nil
	}
	return r.fallback, nil
}
