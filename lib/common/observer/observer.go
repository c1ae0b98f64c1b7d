package observer

import (
	"github.com/GianlucaGuarini/go-observable"
)

// VerificationObserver publishes lifecycle events of verification
// requests; handlers must not block, delivery failure of a downstream
// collaborator never rolls back the triggering state change.
var VerificationObserver = observable.New()

// VoteObserver publishes every accepted vote, including the abstains
// injected by the deadline sweeper.
var VoteObserver = observable.New()

const (
	EventPanelAssigned    = "panel-assigned"
	EventDecisionReached  = "decision-reached"
	EventDeadlineExtended = "deadline-extended"
	EventVoteRecorded     = "vote-recorded"
)
