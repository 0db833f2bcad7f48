package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Guard decides at fire time whether a transition may be taken.
type Guard[S, E comparable] func(ctx context.Context, from S, event E, data any) bool

// Action runs before the state changes. An error aborts the transition.
type Action[S, E comparable] func(ctx context.Context, from, to S, event E, data any) error

// Observer is told about every completed transition, after the lock is released.
type Observer[S, E comparable] func(ctx context.Context, from, to S, event E)

type transition[S, E comparable] struct {
	to      S
	guards  []Guard[S, E]
	actions []Action[S, E]
}

// Machine is a thread-safe finite state machine over comparable state and
// event types. Several transitions may share a (from, event) pair; the first
// whose guards all pass is taken.
type Machine[S, E comparable] struct {
	mu          sync.RWMutex
	initial     S
	current     S
	transitions map[S]map[E][]transition[S, E]
	observers   []Observer[S, E]
}

// New builds a machine starting in initial.
func New[S, E comparable](initial S, opts ...Option[S, E]) (*Machine[S, E], error) {
	m := &Machine[S, E]{
		initial:     initial,
		current:     initial,
		transitions: make(map[S]map[E][]transition[S, E]),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is like New but panics on error.
func MustNew[S, E comparable](initial S, opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("statemachine: %v", err))
	}
	return m
}

func (m *Machine[S, E]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is in state s.
func (m *Machine[S, E]) Is(s S) bool {
	return m.Current() == s
}

// Fire applies event and returns the resulting state.
func (m *Machine[S, E]) Fire(ctx context.Context, event E, data any) (S, error) {
	m.mu.Lock()

	from := m.current
	t, err := m.pick(ctx, from, event, data)
	if err != nil {
		m.mu.Unlock()
		return from, err
	}

	for _, action := range t.actions {
		if err := action(ctx, from, t.to, event, data); err != nil {
			m.mu.Unlock()
			return from, fmt.Errorf("action failed: %w", err)
		}
	}

	m.current = t.to
	observers := m.observers
	m.mu.Unlock()

	for _, o := range observers {
		o(ctx, from, t.to, event)
	}
	return t.to, nil
}

// CanFire reports whether Fire would succeed, ignoring action failures.
func (m *Machine[S, E]) CanFire(ctx context.Context, event E, data any) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, err := m.pick(ctx, m.current, event, data)
	return err == nil
}

// Reset returns the machine to its initial state without running actions.
func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	m.current = m.initial
	m.mu.Unlock()
}

func (m *Machine[S, E]) add(from, to S, event E, guards []Guard[S, E], actions []Action[S, E]) {
	byEvent, ok := m.transitions[from]
	if !ok {
		byEvent = make(map[E][]transition[S, E])
		m.transitions[from] = byEvent
	}
	byEvent[event] = append(byEvent[event], transition[S, E]{to: to, guards: guards, actions: actions})
}

func (m *Machine[S, E]) pick(ctx context.Context, from S, event E, data any) (transition[S, E], error) {
	candidates := m.transitions[from][event]
	if len(candidates) == 0 {
		return transition[S, E]{}, &NoTransitionError{State: fmt.Sprint(from), Event: fmt.Sprint(event)}
	}
next:
	for _, t := range candidates {
		for _, g := range t.guards {
			if !g(ctx, from, event, data) {
				continue next
			}
		}
		return t, nil
	}
	return transition[S, E]{}, &RejectedError{State: fmt.Sprint(from), Event: fmt.Sprint(event)}
}
