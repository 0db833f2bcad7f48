package viewstate

import "sync"

// Seq identifies one fetch. Later calls to Begin return larger values.
type Seq uint64

// Value is shared view state written by concurrent fetches. Each fetch takes
// a ticket with Begin and hands its result to Commit. With stale discard on,
// a result is dropped if a newer ticket has already committed, so a slow
// older response can never overwrite a newer one. The whole value is replaced
// on every commit.
type Value[T any] struct {
	mu           sync.RWMutex
	value        T
	issued       Seq
	committed    Seq
	discardStale bool
	listeners    []func(T)
	version      uint64 // bumped on every stored value

	// notifyMu serializes listener calls; delivered is the newest version
	// listeners have seen, so they never observe an older value last.
	notifyMu  sync.Mutex
	delivered uint64
}

// New returns a Value holding initial with stale discard enabled.
func New[T any](initial T) *Value[T] {
	return &Value[T]{value: initial, discardStale: true}
}

// NewUnsequenced returns a Value where every commit wins, in completion order.
func NewUnsequenced[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Begin issues the ticket for a new fetch.
func (v *Value[T]) Begin() Seq {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued++
	return v.issued
}

// Commit stores x if seq is still current and reports whether it did.
func (v *Value[T]) Commit(seq Seq, x T) bool {
	v.mu.Lock()
	if v.discardStale && (seq <= v.committed || seq > v.issued) {
		v.mu.Unlock()
		return false
	}
	v.value = x
	if seq > v.committed {
		v.committed = seq
	}
	v.version++
	ver, listeners := v.version, v.listeners
	v.mu.Unlock()

	v.notify(ver, listeners, x)
	return true
}

// Update is Commit with a value computed from the current one under the lock.
// fn must not call back into v.
func (v *Value[T]) Update(seq Seq, fn func(T) T) bool {
	v.mu.Lock()
	if v.discardStale && (seq <= v.committed || seq > v.issued) {
		v.mu.Unlock()
		return false
	}
	x := fn(v.value)
	v.value = x
	if seq > v.committed {
		v.committed = seq
	}
	v.version++
	ver, listeners := v.version, v.listeners
	v.mu.Unlock()

	v.notify(ver, listeners, x)
	return true
}

// Reset replaces the value and invalidates every ticket issued so far.
func (v *Value[T]) Reset(x T) {
	v.mu.Lock()
	v.value = x
	v.committed = v.issued
	v.version++
	ver, listeners := v.version, v.listeners
	v.mu.Unlock()

	v.notify(ver, listeners, x)
}

// notify delivers x unless a newer value was already delivered.
func (v *Value[T]) notify(ver uint64, listeners []func(T), x T) {
	if len(listeners) == 0 {
		return
	}
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()
	if ver <= v.delivered {
		return
	}
	v.delivered = ver
	for _, fn := range listeners {
		fn(x)
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Latest reports the newest issued and committed tickets.
func (v *Value[T]) Latest() (issued, committed Seq) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.issued, v.committed
}

// Subscribe calls fn with values stored from now on, one call at a time and in
// storage order. A value superseded before its turn is skipped, so the last
// call always carries the current value. fn may read v but must not write it.
func (v *Value[T]) Subscribe(fn func(T)) {
	if fn == nil {
		return
	}
	v.mu.Lock()
	v.listeners = append(v.listeners, fn)
	v.mu.Unlock()
}
