// Package statemachine is a small generic finite state machine.
//
// States and events are any comparable type, typically string enums:
//
//	type Phase string
//	type Event string
//
//	m := statemachine.MustNew[Phase, Event](Idle,
//		statemachine.WithTransition(Idle, Loading, Start),
//		statemachine.WithTransition(Loading, Ready, Loaded,
//			statemachine.WithGuard[Phase, Event](hasPayload),
//		),
//	)
//	next, err := m.Fire(ctx, Start, nil)
//
// Fire holds the machine lock while guards and actions run, so they must not
// call back into the same machine. Observers run after the lock is released.
package statemachine
