package checkout

import (
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
)

// State is the checkout orchestrator state for one cart.
type State string

const (
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateEditing:    {StateValidating},
	StateValidating: {StateEditing, StateSubmitting},
	StateSubmitting: {StateCompleted, StateFailed},
	StateFailed:     {StateEditing},
	StateCompleted:  {StateEditing},
}

// CanTransition reports whether the machine may move from s to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// allowsEmptyCart reports whether an empty cart is expected in this state:
// mid-submission or right after the post-submit clear.
func (s State) allowsEmptyCart() bool {
	return s == StateSubmitting || s == StateCompleted
}

// DefaultConfirmationTTL is how long a completed checkout keeps its
// confirmation and its exemption from the empty-cart guard.
const DefaultConfirmationTTL = 10 * time.Minute

type entry struct {
	state        State
	confirmation *Confirmation
	updatedAt    time.Time
}

// Tracker holds the orchestrator state of carts in this process. Carts at
// rest in StateEditing have no entry; other entries expire after the
// confirmation TTL.
type Tracker struct {
	mu        sync.Mutex
	entries   map[string]*entry
	retain    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewTracker returns an empty tracker. Unknown carts are in StateEditing.
// retain <= 0 uses DefaultConfirmationTTL; a nil now uses time.Now.
func NewTracker(retain time.Duration, now func() time.Time) *Tracker {
	if retain <= 0 {
		retain = DefaultConfirmationTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Tracker{entries: map[string]*entry{}, retain: retain, now: now}
}

// State returns the current state and the last confirmation, if any.
func (t *Tracker) State(cartID string) (State, *Confirmation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep()
	e, ok := t.entries[cartID]
	if !ok {
		return StateEditing, nil
	}
	if t.expired(e, t.now()) {
		delete(t.entries, cartID)
		return StateEditing, nil
	}
	return e.state, e.confirmation
}

// Transition moves cartID to next or returns STATE_CONFLICT.
func (t *Tracker) Transition(cartID string, next State) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entry(cartID)
	if !e.state.CanTransition(next) {
		if e.state == StateEditing {
			delete(t.entries, cartID)
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout cannot move from "+string(e.state)+" to "+string(next)).
			WithDetails(map[string]any{"from": e.state, "to": next})
	}
	t.set(cartID, e, next)
	return nil
}

// begin starts a submission attempt. A completed or failed checkout returns to
// editing first; a submission already in flight is rejected.
func (t *Tracker) begin(cartID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep()
	if e, ok := t.entries[cartID]; ok && t.expired(e, t.now()) {
		delete(t.entries, cartID)
	}
	e := t.entry(cartID)
	switch e.state {
	case StateSubmitting, StateValidating:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "an order is already being placed for this cart")
	}
	e.confirmation = nil
	t.set(cartID, e, StateValidating)
	return nil
}

func (t *Tracker) complete(cartID string, c *Confirmation) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entry(cartID)
	if !e.state.CanTransition(StateCompleted) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout cannot move from "+string(e.state)+" to "+string(StateCompleted))
	}
	t.set(cartID, e, StateCompleted)
	e.confirmation = c
	return nil
}

// Forget drops the state of a cart.
func (t *Tracker) Forget(cartID string) {
	t.mu.Lock()
	delete(t.entries, cartID)
	t.mu.Unlock()
}

// Len reports how many carts currently hold state.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Tracker) entry(cartID string) *entry {
	e, ok := t.entries[cartID]
	if !ok {
		e = &entry{state: StateEditing, updatedAt: t.now()}
		t.entries[cartID] = e
	}
	return e
}

// set moves e to next. Editing is the resting state and keeps no entry.
func (t *Tracker) set(cartID string, e *entry, next State) {
	if next == StateEditing {
		delete(t.entries, cartID)
		return
	}
	e.state = next
	e.updatedAt = t.now()
	if next != StateCompleted {
		e.confirmation = nil
	}
}

// expired reports whether e outlived the TTL. This also frees entries left
// mid-submission by a request that never finished.
func (t *Tracker) expired(e *entry, now time.Time) bool {
	return now.Sub(e.updatedAt) >= t.retain
}

// sweep drops expired entries. It runs at most once per half TTL.
func (t *Tracker) sweep() {
	now := t.now()
	if now.Sub(t.lastSweep) < t.retain/2 {
		return
	}
	t.lastSweep = now
	for id, e := range t.entries {
		if t.expired(e, now) {
			delete(t.entries, id)
		}
	}
}
