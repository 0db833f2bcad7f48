// Package viewstate guards shared state that is filled by asynchronous
// fetches which may complete out of order.
//
//	seq := state.Begin()
//	res, err := fetch(ctx)
//	if err == nil {
//		state.Commit(seq, res) // false if a newer fetch already landed
//	}
//
// Reset also invalidates every in-flight ticket, which is how a session
// teardown keeps late responses from resurrecting cleared state.
package viewstate
