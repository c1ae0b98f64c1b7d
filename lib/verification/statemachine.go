package verification

import (
	"fmt"
	"sync"
	"time"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/common/observer"
	"github.com/veristry/veristry/lib/errors"
	"github.com/veristry/veristry/lib/metrics"
	"github.com/veristry/veristry/lib/storage"
)

// maxStorageRetries bounds the automatic retry of transient storage
// failures; every other error class is final on first evaluation.
const maxStorageRetries = 3

// StateMachine owns every transition of VerificationRequest.status.
// The read-tally, evaluate, conditional-write sequence runs under a
// per-request mutex and inside one storage transaction, so concurrent
// votes and the sweeper share one invariant surface: whoever wins the
// race performs the transition, the loser observes the terminal state
// and does nothing.
type StateMachine struct {
	st       *storage.LevelDBBackend
	conf     common.Config
	verifier *SignatureVerifier

	locks sync.Map // request id -> *sync.Mutex
}

func NewStateMachine(st *storage.LevelDBBackend, conf common.Config) *StateMachine {
	return &StateMachine{
		st:       st,
		conf:     conf,
		verifier: NewSignatureVerifier(conf.NetworkID, conf.SignatureTolerance),
	}
}

func (sm *StateMachine) Storage() *storage.LevelDBBackend {
	return sm.st
}

func (sm *StateMachine) lockRequest(id string) func() {
	v, _ := sm.locks.LoadOrStore(id, &sync.Mutex{})
	mtx := v.(*sync.Mutex)
	mtx.Lock()

	return mtx.Unlock
}

func (sm *StateMachine) withTransaction(fn func(ts *storage.LevelDBBackend) error) (err error) {
	backoff := 100 * time.Millisecond
	for attempt := 0; attempt < maxStorageRetries; attempt++ {
		var ts *storage.LevelDBBackend
		if ts, err = sm.st.OpenTransaction(); err != nil {
			return
		}

		if err = fn(ts); err != nil {
			ts.Discard()
			return
		}

		if err = ts.Commit(); err == nil {
			return
		}

		if e, ok := err.(*errors.Error); !ok || e.Code != errors.StorageCoreError.Code {
			return
		}

		log.Warn("storage commit failed; retrying", "attempt", attempt, "error", err)
		time.Sleep(backoff)
		backoff *= 2
	}

	return
}

func triggerVerificationEvent(event string, vr *VerificationRequest) {
	observer.VerificationObserver.Trigger(event, vr)
	observer.VerificationObserver.Trigger(fmt.Sprintf("%s id=%s", event, vr.ID), vr)
}

// SubmitProject records a new project and opens its verification
// request in `pending`; the panel is assigned in a separate,
// administrator-driven step.
func (sm *StateMachine) SubmitProject(actor Actor, title string) (*Project, *VerificationRequest, error) {
	if !actor.Role.IsValid() {
		return nil, nil, errors.NotAuthorized
	}
	if len(title) < 1 {
		return nil, nil, errors.BadRequestParameter.Clone().SetData("title", "empty")
	}

	project := NewProject(actor.ID, title)
	request := NewVerificationRequest(project.ID, actor.ID, sm.conf.PanelSize, sm.conf.RequiredApprovals)

	err := sm.withTransaction(func(ts *storage.LevelDBBackend) error {
		if err := project.Save(ts); err != nil {
			return err
		}
		return request.Save(ts)
	})
	if err != nil {
		return nil, nil, err
	}

	log.Info("project submitted", "project", project.ID, "request", request.ID, "submitter", actor.ID)
	metrics.Engine.ProjectsSubmitted.Add(1)

	return project, request, nil
}

// AssignPanel selects the panel, persists the assignments, sets the
// voting deadline and flips the request to `in_review` in one atomic
// step; the intermediate state is not observable.
func (sm *StateMachine) AssignPanel(actor Actor, requestID string) (*VerificationRequest, []*ValidatorAssignment, error) {
	if !CanAssign(actor) {
		return nil, nil, errors.NotAuthorized
	}

	unlock := sm.lockRequest(requestID)
	defer unlock()

	vr, err := GetVerificationRequest(sm.st, requestID)
	if err != nil {
		return nil, nil, err
	}

	if vr.Status != StatusPending {
		if vr.Status.IsTerminal() {
			return nil, nil, errors.AlreadyTerminal
		}
		return nil, nil, errors.AlreadyAssigned
	}

	if vr.RequiredApprovals < 1 || vr.RequiredApprovals > vr.PanelSize {
		return nil, nil, errors.InvalidThresholdRule.Clone().
			SetData("required_approvals", vr.RequiredApprovals).
			SetData("panel_size", vr.PanelSize)
	}

	pool, err := GetActiveValidators(sm.st)
	if err != nil {
		return nil, nil, err
	}

	// selection is pure; a failure here leaves no partial assignment rows
	panel, err := SelectPanel(pool, vr.SubmitterID, vr.PanelSize)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	var assignments []*ValidatorAssignment

	err = sm.withTransaction(func(ts *storage.LevelDBBackend) error {
		assignments = assignments[:0]
		for _, v := range panel {
			a := NewValidatorAssignment(vr.ID, v.ID, actor.ID)
			if err := a.Save(ts); err != nil {
				return err
			}
			assignments = append(assignments, a)
		}

		vr.Status = StatusInReview
		vr.AssignedAt = common.FormatISO8601(now)
		vr.VotingDeadline = common.FormatISO8601(now.Add(sm.conf.VotingPeriod))
		vr.Progress = ProgressFloor
		if err := vr.Save(ts); err != nil {
			return err
		}

		return ts.New(GetVerificationRequestInReviewKey(vr.ID), vr.ID)
	})
	if err != nil {
		return nil, nil, err
	}

	log.Info("panel assigned",
		"request", vr.ID,
		"panel_size", vr.PanelSize,
		"required_approvals", vr.RequiredApprovals,
		"deadline", vr.VotingDeadline,
	)
	metrics.Engine.PanelsAssigned.Add(1)
	metrics.Engine.InReview.Add(1)
	triggerVerificationEvent(observer.EventPanelAssigned, vr)

	return vr, assignments, nil
}

// CastVote validates the preconditions in order (assigned, in review,
// before deadline, signature) and then applies the vote upsert and the
// consensus recompute as one atomic unit, so no two concurrent votes
// can both read a stale tally. The returned request always reflects
// the post-vote consensus state.
func (sm *StateMachine) CastVote(actor Actor, requestID string, decision Decision, proof SignatureProof, notes string) (*VerificationRequest, error) {
	if !decision.IsValid() {
		return nil, errors.InvalidDecision.Clone().SetData("decision", decision)
	}
	if !CanVote(actor) {
		return nil, errors.NotAuthorized
	}

	unlock := sm.lockRequest(requestID)
	defer unlock()

	vr, err := GetVerificationRequest(sm.st, requestID)
	if err != nil {
		return nil, err
	}

	if assigned, err := ExistsAssignment(sm.st, requestID, actor.ID); err != nil {
		return nil, err
	} else if !assigned {
		return nil, errors.NotAssigned
	}

	if vr.Status != StatusInReview {
		return nil, errors.WrongState.Clone().SetData("status", vr.Status)
	}

	now := time.Now()
	// a vote landing between the deadline and the next sweep is
	// rejected rather than converted to an abstain, to avoid racing
	// the sweeper
	if vr.DeadlinePassedAt(now) {
		return nil, errors.DeadlinePassed
	}

	validator, err := GetValidator(sm.st, actor.ID)
	if err != nil {
		return nil, err
	}

	if err := sm.verifier.Verify(requestID, actor.ID, decision, proof, validator.Address, now); err != nil {
		log.Warn("vote signature rejected", "request", requestID, "validator", actor.ID, "error", err)
		return nil, err
	}

	vote := NewValidatorVote(requestID, actor.ID, decision, proof, notes)

	var transitioned bool
	err = sm.withTransaction(func(ts *storage.LevelDBBackend) error {
		if err := vote.Save(ts); err != nil {
			return err
		}

		var err error
		transitioned, err = sm.recomputeInTransaction(ts, vr)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("vote recorded",
		"request", requestID,
		"validator", actor.ID,
		"decision", decision,
		"status", vr.Status,
		"progress", vr.Progress,
	)
	metrics.Engine.CountVote(string(vote.Provenance))
	observer.VoteObserver.Trigger(observer.EventVoteRecorded, vote)
	if transitioned {
		sm.observeDecision(vr)
	}

	return vr, nil
}

func (sm *StateMachine) observeDecision(vr *VerificationRequest) {
	metrics.Engine.CountDecision(string(vr.Status))
	metrics.Engine.InReview.Add(-1)
	triggerVerificationEvent(observer.EventDecisionReached, vr)
}

// recomputeInTransaction recomputes the tally from the authoritative
// vote rows and conditionally performs the terminal transition. It
// must run under the per-request lock. A request that is already
// terminal is left untouched.
func (sm *StateMachine) recomputeInTransaction(ts *storage.LevelDBBackend, vr *VerificationRequest) (transitioned bool, err error) {
	if vr.Status.IsTerminal() {
		return false, nil
	}

	votes, err := GetVotesByRequest(ts, vr.ID)
	if err != nil {
		return false, err
	}

	tally := CountVotes(votes)
	result, progress := Evaluate(vr.PanelSize, vr.RequiredApprovals, tally)

	vr.ApprovalCount = tally.Approvals
	vr.RejectionCount = tally.Rejections
	vr.VoteCount = tally.VotesCast()
	vr.Progress = progress

	if result == ResultPending {
		return false, vr.Save(ts)
	}

	now := common.NowISO8601()
	vr.Status = Status(result)
	vr.ConsensusReachedAt = now
	vr.CompletedAt = now
	vr.Progress = 100

	if err = vr.Save(ts); err != nil {
		return false, err
	}

	record := TransitionRecord{
		RequestID:      vr.ID,
		Status:         vr.Status,
		ApprovalCount:  tally.Approvals,
		RejectionCount: tally.Rejections,
		AbstainCount:   tally.Abstains,
		TransitionedAt: now,
	}
	if err = record.Save(ts); err != nil {
		return false, err
	}

	if err = ts.Remove(GetVerificationRequestInReviewKey(vr.ID)); err != nil {
		return false, err
	}

	return true, nil
}

// Recompute re-evaluates one request; calling it on an already
// terminal request is a no-op, which is what makes concurrent entry
// from votes and the sweeper safe.
func (sm *StateMachine) Recompute(requestID string) (*VerificationRequest, error) {
	unlock := sm.lockRequest(requestID)
	defer unlock()

	vr, err := GetVerificationRequest(sm.st, requestID)
	if err != nil {
		return nil, err
	}

	if vr.Status.IsTerminal() {
		return vr, nil
	}

	var transitioned bool
	err = sm.withTransaction(func(ts *storage.LevelDBBackend) error {
		var err error
		transitioned, err = sm.recomputeInTransaction(ts, vr)
		return err
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		sm.observeDecision(vr)
	}

	return vr, nil
}

// ExtendDeadline advances the voting deadline of an in-review request;
// the first extension remembers the original deadline.
func (sm *StateMachine) ExtendDeadline(actor Actor, requestID string, extension time.Duration) (*VerificationRequest, error) {
	if !CanExtend(actor) {
		return nil, errors.NotAuthorized
	}
	if extension <= 0 {
		return nil, errors.BadRequestParameter.Clone().SetData("extension", extension.String())
	}

	unlock := sm.lockRequest(requestID)
	defer unlock()

	vr, err := GetVerificationRequest(sm.st, requestID)
	if err != nil {
		return nil, err
	}

	if vr.Status.IsTerminal() {
		return nil, errors.NotExtendable
	}
	if vr.Status != StatusInReview {
		return nil, errors.WrongState.Clone().SetData("status", vr.Status)
	}

	deadline, err := common.ParseISO8601(vr.VotingDeadline)
	if err != nil {
		return nil, errors.StorageCoreError.Clone().SetData("voting_deadline", vr.VotingDeadline)
	}

	if len(vr.OriginalDeadline) < 1 {
		vr.OriginalDeadline = vr.VotingDeadline
	}
	vr.VotingDeadline = common.FormatISO8601(deadline.Add(extension))
	vr.DeadlineExtended = true

	err = sm.withTransaction(func(ts *storage.LevelDBBackend) error {
		return vr.Save(ts)
	})
	if err != nil {
		return nil, err
	}

	log.Info("deadline extended", "request", vr.ID, "deadline", vr.VotingDeadline, "actor", actor.ID)
	triggerVerificationEvent(observer.EventDeadlineExtended, vr)

	return vr, nil
}

// SweepExpired injects abstains for the silent validators of every
// in-review request past its deadline and re-enters the recompute
// path. Every step is individually idempotent, so a partially
// completed sweep is safe to resume.
func (sm *StateMachine) SweepExpired(now time.Time) (swept int, err error) {
	ids, err := GetInReviewRequestIDs(sm.st)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		processed, err := sm.sweepOne(id, now)
		if err != nil {
			log.Error("sweep failed", "request", id, "error", err)
			continue
		}
		if processed {
			swept++
		}
	}

	return swept, nil
}

func (sm *StateMachine) sweepOne(requestID string, now time.Time) (bool, error) {
	unlock := sm.lockRequest(requestID)
	defer unlock()

	vr, err := GetVerificationRequest(sm.st, requestID)
	if err != nil {
		return false, err
	}

	if vr.Status != StatusInReview || !vr.DeadlinePassedAt(now) {
		return false, nil
	}

	assignments, err := GetAssignmentsByRequest(sm.st, requestID)
	if err != nil {
		return false, err
	}

	var transitioned bool
	var injected int
	err = sm.withTransaction(func(ts *storage.LevelDBBackend) error {
		injected = 0
		for _, a := range assignments {
			voted, err := ExistsValidatorVote(ts, requestID, a.ValidatorID)
			if err != nil {
				return err
			}
			if !voted {
				if err := NewAutoAbstainVote(requestID, a.ValidatorID).Save(ts); err != nil {
					return err
				}
				injected++
			}

			recorded, err := ExistsAutoAbstainRecord(ts, requestID, a.ValidatorID)
			if err != nil {
				return err
			}
			if !voted && !recorded {
				if err := NewAutoAbstainRecord(requestID, a.ValidatorID).Save(ts); err != nil {
					return err
				}
			}
		}

		var err error
		transitioned, err = sm.recomputeInTransaction(ts, vr)
		return err
	})
	if err != nil {
		return false, err
	}

	log.Info("swept expired request", "request", requestID, "status", vr.Status, "progress", vr.Progress)
	metrics.Sweep.AbstainsInjected.Add(float64(injected))
	metrics.Engine.VotesCast.With("provenance", string(ProvenanceAuto)).Add(float64(injected))
	if transitioned {
		sm.observeDecision(vr)
	}

	return true, nil
}

// ConsensusStatus is the read model of one verification request.
type ConsensusStatus struct {
	RequestID         string `json:"request_id"`
	ProjectID         string `json:"project_id"`
	Status            Status `json:"status"`
	Progress          int    `json:"progress"`
	PanelSize         int    `json:"panel_size"`
	RequiredApprovals int    `json:"required_approvals"`
	Tally             Tally  `json:"tally"`
	VoteCount         int    `json:"vote_count"`
	VotingDeadline    string `json:"voting_deadline,omitempty"`
	DeadlineExtended  bool   `json:"deadline_extended"`

	// a fully-voted panel that can no longer reach either threshold;
	// stays in review until an administrator extends the deadline
	Undecidable bool `json:"undecidable"`
}

func (sm *StateMachine) GetConsensusStatus(requestID string) (*ConsensusStatus, error) {
	vr, err := GetVerificationRequest(sm.st, requestID)
	if err != nil {
		return nil, err
	}

	votes, err := GetVotesByRequest(sm.st, requestID)
	if err != nil {
		return nil, err
	}
	tally := CountVotes(votes)

	return &ConsensusStatus{
		RequestID:         vr.ID,
		ProjectID:         vr.ProjectID,
		Status:            vr.Status,
		Progress:          vr.Progress,
		PanelSize:         vr.PanelSize,
		RequiredApprovals: vr.RequiredApprovals,
		Tally:             tally,
		VoteCount:         tally.VotesCast(),
		VotingDeadline:    vr.VotingDeadline,
		DeadlineExtended:  vr.DeadlineExtended,
		Undecidable:       vr.Status == StatusInReview && Undecidable(vr.PanelSize, vr.RequiredApprovals, tally),
	}, nil
}

// RegisterValidator adds a validator to the candidate pool.
func (sm *StateMachine) RegisterValidator(actor Actor, address, alias string) (*Validator, error) {
	if !CanRegisterValidator(actor) {
		return nil, errors.NotAuthorized
	}

	v, err := NewValidator(address, alias)
	if err != nil {
		return nil, err
	}

	err = sm.withTransaction(func(ts *storage.LevelDBBackend) error {
		return v.Save(ts)
	})
	if err != nil {
		return nil, err
	}

	log.Info("validator registered", "validator", v.ID, "address", v.Address, "alias", v.Alias)
	sm.refreshValidatorGauge()

	return v, nil
}

func (sm *StateMachine) refreshValidatorGauge() {
	if actives, err := GetActiveValidators(sm.st); err == nil {
		metrics.Engine.SetValidators(len(actives))
	}
}

// DeactivateValidator removes a validator from the candidate pool for
// future panels; existing assignments are untouched.
func (sm *StateMachine) DeactivateValidator(actor Actor, validatorID string) (*Validator, error) {
	if !CanRegisterValidator(actor) {
		return nil, errors.NotAuthorized
	}

	v, err := GetValidator(sm.st, validatorID)
	if err != nil {
		return nil, err
	}

	v.Active = false
	err = sm.withTransaction(func(ts *storage.LevelDBBackend) error {
		return v.Save(ts)
	})
	if err != nil {
		return nil, err
	}

	sm.refreshValidatorGauge()

	return v, nil
}
