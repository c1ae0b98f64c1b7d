package notification

import (
	"github.com/veristry/veristry/lib/common/observer"
	"github.com/veristry/veristry/lib/verification"
)

// Dispatcher fans the observer events out to the configured
// notifiers. It subscribes on Start and unsubscribes on Stop;
// notifier errors are logged and swallowed.
type Dispatcher struct {
	notifiers []Notifier

	onRequest map[string]func(...interface{})
	onVote    map[string]func(...interface{})
}

func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers}
}

func (d *Dispatcher) notifyRequest(event string) func(...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			return
		}
		vr, ok := args[0].(*verification.VerificationRequest)
		if !ok {
			return
		}

		for _, n := range d.notifiers {
			if err := n.NotifyRequest(event, vr); err != nil {
				log.Error("notify failed", "event", event, "request", vr.ID, "error", err)
			}
		}
	}
}

func (d *Dispatcher) notifyVote(event string) func(...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			return
		}
		vote, ok := args[0].(*verification.ValidatorVote)
		if !ok {
			return
		}

		for _, n := range d.notifiers {
			if err := n.NotifyVote(event, vote); err != nil {
				log.Error("notify failed", "event", event, "request", vote.RequestID, "error", err)
			}
		}
	}
}

func (d *Dispatcher) Start() {
	d.onRequest = map[string]func(...interface{}){
		observer.EventPanelAssigned:    d.notifyRequest(observer.EventPanelAssigned),
		observer.EventDecisionReached:  d.notifyRequest(observer.EventDecisionReached),
		observer.EventDeadlineExtended: d.notifyRequest(observer.EventDeadlineExtended),
	}
	d.onVote = map[string]func(...interface{}){
		observer.EventVoteRecorded: d.notifyVote(observer.EventVoteRecorded),
	}

	for event, fn := range d.onRequest {
		observer.VerificationObserver.On(event, fn)
	}
	for event, fn := range d.onVote {
		observer.VoteObserver.On(event, fn)
	}

	log.Info("notification dispatcher started", "notifiers", len(d.notifiers))
}

func (d *Dispatcher) Stop() {
	for event, fn := range d.onRequest {
		observer.VerificationObserver.Off(event, fn)
	}
	for event, fn := range d.onVote {
		observer.VoteObserver.Off(event, fn)
	}
}
