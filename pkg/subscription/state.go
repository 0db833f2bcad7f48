package subscription

import (
	"slices"
	"time"

	"github.com/ngolasuite/ngola/pkg/plans"
	"github.com/ngolasuite/ngola/pkg/viewstate"
)

// Phase is the lifecycle phase of the subscription state.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLoading       Phase = "loading"
	PhaseSubscribed    Phase = "subscribed"
	PhaseUnsubscribed  Phase = "unsubscribed"
)

// State is the client-visible subscription record. It is always replaced as
// a whole. Plan is nil whenever Subscribed is false.
type State struct {
	Phase      Phase
	Subscribed bool
	ProductRef string
	Plan       *plans.Plan
	End        *time.Time
	// Err is the last check failure. The other fields keep the last
	// successful answer.
	Err       error
	CheckedAt time.Time
	Seq       viewstate.Seq
}

// Loading reports whether the first check of the session is still running.
func (s State) Loading() bool { return s.Phase == PhaseLoading }

func (s State) clone() State {
	if s.Plan != nil {
		p := *s.Plan
		p.Features = slices.Clone(p.Features)
		s.Plan = &p
	}
	if s.End != nil {
		end := *s.End
		s.End = &end
	}
	return s
}
