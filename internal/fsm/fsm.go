// Package fsm wraps looplab/fsm with typed states and events and a
// build-then-use lifecycle.
// file: internal/fsm/fsm.go
package fsm

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	lfsm "github.com/looplab/fsm" // Use alias 'lfsm'.
)

// State represents a state in the FSM.
type State string

// Event represents an event that can trigger a state transition.
type Event string

// EnterAction runs after the machine enters a transition's destination state.
type EnterAction func(ctx context.Context, from, to State)

// Transition defines a transition rule between states.
type Transition struct {
	From    []State     // Source states for this transition.
	To      State       // The destination state.
	Event   Event       // The event triggering the transition.
	OnEnter EnterAction // Optional.
}

// FSM defines the interface for our finite state machine wrapper.
type FSM interface {
	// AddTransition stores a transition definition. Call Build() after adding all transitions.
	AddTransition(transition Transition) FSM
	// Build finalizes the configuration and creates the underlying machine.
	Build() error
	// CurrentState returns the current state. Requires Build().
	CurrentState() State
	// CanTransition checks if the event is defined for the current state. Requires Build().
	CanTransition(event Event) bool
	// Transition attempts to trigger a state transition. Requires Build().
	Transition(ctx context.Context, event Event) error
}

// loopFSM implements the FSM interface using looplab/fsm.
type loopFSM struct {
	initialState State
	logger       logging.Logger
	transitions  []Transition
	fsm          *lfsm.FSM // nil until Build() is called.
	buildErr     error
	mu           sync.RWMutex
}

// NewFSM creates a new FSM builder with the specified initial state.
func NewFSM(initialState State, logger logging.Logger) FSM {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &loopFSM{
		initialState: initialState,
		logger:       logger.WithField("component", "fsm"),
	}
}

// AddTransition stores a transition definition to be used during Build().
func (l *loopFSM) AddTransition(t Transition) FSM {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case l.fsm != nil:
		l.setBuildErr(errors.New("cannot AddTransition after Build"))
	case len(t.From) == 0:
		l.setBuildErr(errors.Newf("transition %q is missing 'From' states", t.Event))
	default:
		l.transitions = append(l.transitions, t)
	}
	return l
}

func (l *loopFSM) setBuildErr(err error) {
	l.logger.Error("Invalid FSM configuration.", "error", err)
	if l.buildErr == nil {
		l.buildErr = err
	}
}

// Build finalizes the FSM configuration and creates the underlying looplab/fsm instance.
func (l *loopFSM) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fsm != nil || l.buildErr != nil {
		return l.buildErr
	}

	descs := make(map[Event]*lfsm.EventDesc)
	order := make([]Event, 0, len(l.transitions))
	callbacks := make(lfsm.Callbacks)

	for _, t := range l.transitions {
		desc, exists := descs[t.Event]
		if !exists {
			desc = &lfsm.EventDesc{Name: string(t.Event), Dst: string(t.To)}
			descs[t.Event] = desc
			order = append(order, t.Event)
		} else if desc.Dst != string(t.To) {
			l.buildErr = errors.Newf("conflicting destinations (%q and %q) for event %q", desc.Dst, t.To, t.Event)
			return l.buildErr
		}
		for _, s := range t.From {
			desc.Src = append(desc.Src, string(s))
		}
		if t.OnEnter != nil {
			action := t.OnEnter
			// Keyed by event so each transition keeps its own action.
			callbacks["after_"+string(t.Event)] = func(ctx context.Context, e *lfsm.Event) {
				action(ctx, State(e.Src), State(e.Dst))
			}
		}
	}

	events := make(lfsm.Events, 0, len(order))
	for _, name := range order {
		events = append(events, *descs[name])
	}

	l.fsm = lfsm.NewFSM(string(l.initialState), events, callbacks)
	l.logger.Debug("FSM built.", "initialState", l.initialState, "events", len(events))
	return nil
}

// CurrentState returns the current state of the FSM. Requires Build().
func (l *loopFSM) CurrentState() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		return l.initialState
	}
	return State(l.fsm.Current())
}

// CanTransition checks if the given event can trigger a transition from the current state.
func (l *loopFSM) CanTransition(event Event) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		return false
	}
	return l.fsm.Can(string(event))
}

// Transition triggers a state transition based on the event. Requires Build().
func (l *loopFSM) Transition(ctx context.Context, event Event) error {
	l.mu.RLock()
	instance := l.fsm
	buildErr := l.buildErr
	l.mu.RUnlock()
	if instance == nil {
		if buildErr != nil {
			return buildErr
		}
		return errors.New("fsm: Transition called before Build")
	}

	from := State(instance.Current())
	if err := instance.Event(ctx, string(event)); err != nil {
		var noTransition lfsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return nil
		}
		l.logger.Debug("FSM transition failed.", "event", event, "from_state", from, "error", err)
		return errors.Wrapf(err, "transition %q from %q", event, from)
	}
	l.logger.Debug("Transition successful.", "event", event, "old_state", from, "new_state", instance.Current())
	return nil
}
