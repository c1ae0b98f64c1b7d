package verification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/errors"
	"github.com/veristry/veristry/lib/storage"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusInReview Status = "in_review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsTerminal reports whether no further mutation of the request is
// permitted.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// VerificationRequest is the record the state machine owns; one per
// submitted project under review. the storage should support,
//   - find by `ID`
//   - find `ID` by `ProjectID`
//   - get list of requests still in review, for the deadline sweeper
//
// models
//   - 'id'
//     'vr-id-<VerificationRequest.ID>': `VerificationRequest`
//   - 'project'
//     'vr-project-<VerificationRequest.ProjectID>': `VerificationRequest.ID`
//   - 'inreview'
//     'vr-inreview-<VerificationRequest.ID>': `VerificationRequest.ID`
//   - 'transition'
//     'vr-transition-<VerificationRequest.ID>': `TransitionRecord`
const (
	VerificationPrefixID         string = "vr-id-"
	VerificationPrefixProject    string = "vr-project-"
	VerificationPrefixInReview   string = "vr-inreview-"
	VerificationPrefixTransition string = "vr-transition-"
)

type VerificationRequest struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	SubmitterID string `json:"submitter_id"`

	RequiredApprovals int `json:"required_approvals"`
	PanelSize         int `json:"panel_size"`

	// cached tally; the authoritative count is always recomputed from
	// the vote rows inside the serialized recompute step
	ApprovalCount  int `json:"approval_count"`
	RejectionCount int `json:"rejection_count"`
	VoteCount      int `json:"vote_count"`

	Status   Status `json:"status"`
	Progress int    `json:"progress"`

	SubmittedAt        string `json:"submitted_at"`
	AssignedAt         string `json:"assigned_at,omitempty"`
	ConsensusReachedAt string `json:"consensus_reached_at,omitempty"`
	CompletedAt        string `json:"completed_at,omitempty"`

	VotingDeadline   string `json:"voting_deadline,omitempty"`
	OriginalDeadline string `json:"original_deadline,omitempty"`
	DeadlineExtended bool   `json:"deadline_extended"`
}

func NewVerificationRequest(projectID, submitterID string, panelSize, requiredApprovals int) *VerificationRequest {
	return &VerificationRequest{
		ID:                common.GenerateUUID(),
		ProjectID:         projectID,
		SubmitterID:       submitterID,
		PanelSize:         panelSize,
		RequiredApprovals: requiredApprovals,
		Status:            StatusPending,
		SubmittedAt:       common.NowISO8601(),
	}
}

func (vr *VerificationRequest) String() string {
	return string(common.MustJSONMarshal(vr))
}

// DeadlinePassedAt reports whether the voting deadline lies before
// `now`; a request without a deadline never expires.
func (vr *VerificationRequest) DeadlinePassedAt(now time.Time) bool {
	if len(vr.VotingDeadline) < 1 {
		return false
	}

	deadline, err := common.ParseISO8601(vr.VotingDeadline)
	if err != nil {
		return false
	}

	return deadline.Before(now)
}

func GetVerificationRequestKey(id string) string {
	return fmt.Sprintf("%s%s", VerificationPrefixID, id)
}

func GetVerificationRequestProjectKey(projectID string) string {
	return fmt.Sprintf("%s%s", VerificationPrefixProject, projectID)
}

func GetVerificationRequestInReviewKey(id string) string {
	return fmt.Sprintf("%s%s", VerificationPrefixInReview, id)
}

func GetTransitionRecordKey(id string) string {
	return fmt.Sprintf("%s%s", VerificationPrefixTransition, id)
}

func (vr *VerificationRequest) Save(st *storage.LevelDBBackend) (err error) {
	key := GetVerificationRequestKey(vr.ID)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		return st.Set(key, vr)
	}

	if err = st.New(key, vr); err != nil {
		return
	}
	err = st.New(GetVerificationRequestProjectKey(vr.ProjectID), vr.ID)

	return
}

func ExistsVerificationRequest(st *storage.LevelDBBackend, id string) (bool, error) {
	return st.Has(GetVerificationRequestKey(id))
}

func GetVerificationRequest(st *storage.LevelDBBackend, id string) (vr *VerificationRequest, err error) {
	if err = st.Get(GetVerificationRequestKey(id), &vr); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.VerificationDoesNotExist
		}
		return
	}

	return
}

func GetVerificationRequestByProject(st *storage.LevelDBBackend, projectID string) (vr *VerificationRequest, err error) {
	var id string
	if err = st.Get(GetVerificationRequestProjectKey(projectID), &id); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.VerificationDoesNotExist
		}
		return
	}

	return GetVerificationRequest(st, id)
}

// GetInReviewRequestIDs collects the ids of every request still in
// review; the sweeper walks this index instead of scanning all
// requests.
func GetInReviewRequestIDs(st *storage.LevelDBBackend) (ids []string, err error) {
	iterFunc, closeFunc := st.GetIterator(VerificationPrefixInReview, nil)
	defer closeFunc()

	for {
		item, hasNext := iterFunc()
		if !hasNext {
			break
		}

		var id string
		if err = json.Unmarshal(item.Value, &id); err != nil {
			return
		}
		ids = append(ids, id)
	}

	return
}

// TransitionRecord is the single-commit audit row of a terminal
// transition; it is written with `New` so a second transition of the
// same request can not happen silently.
type TransitionRecord struct {
	RequestID      string `json:"request_id"`
	Status         Status `json:"status"`
	ApprovalCount  int    `json:"approval_count"`
	RejectionCount int    `json:"rejection_count"`
	AbstainCount   int    `json:"abstain_count"`
	TransitionedAt string `json:"transitioned_at"`
}

func (tr TransitionRecord) Save(st *storage.LevelDBBackend) error {
	return st.New(GetTransitionRecordKey(tr.RequestID), tr)
}

func ExistsTransitionRecord(st *storage.LevelDBBackend, requestID string) (bool, error) {
	return st.Has(GetTransitionRecordKey(requestID))
}

func GetTransitionRecord(st *storage.LevelDBBackend, requestID string) (tr TransitionRecord, err error) {
	err = st.Get(GetTransitionRecordKey(requestID), &tr)
	return
}
