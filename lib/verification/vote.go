package verification

import (
	"encoding/json"
	"fmt"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/storage"
)

// Decision is a single validator's verdict on a request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
	DecisionAbstain Decision = "abstain"
)

func (d Decision) IsValid() bool {
	switch d {
	case DecisionApprove, DecisionReject, DecisionAbstain:
		return true
	}

	return false
}

// Provenance marks who produced a vote row; sweeper-injected abstains
// carry no wallet proof.
type Provenance string

const (
	ProvenanceWallet Provenance = "wallet"
	ProvenanceAuto   Provenance = "auto"
)

// ValidatorVote is the live vote of one validator on one request; a
// replacement pre-deadline overwrites the row in place, so at most one
// row per pair exists.
//
// models
//   - 'pair'
//     'vb-<RequestID>-<ValidatorID>': `ValidatorVote`
//   - auto-abstain audit
//     'vx-<RequestID>-<ValidatorID>': `AutoAbstainRecord`
const (
	VotePrefix        string = "vb-"
	AutoAbstainPrefix string = "vx-"
)

type ValidatorVote struct {
	RequestID   string     `json:"request_id"`
	ValidatorID string     `json:"validator_id"`
	Decision    Decision   `json:"decision"`
	Notes       string     `json:"notes,omitempty"`
	Provenance  Provenance `json:"provenance"`

	// empty when Provenance is "auto"
	WalletAddress   string `json:"wallet_address,omitempty"`
	WalletSignature string `json:"wallet_signature,omitempty"`

	VotedAt string `json:"voted_at"`
}

func NewValidatorVote(requestID, validatorID string, decision Decision, proof SignatureProof, notes string) *ValidatorVote {
	return &ValidatorVote{
		RequestID:       requestID,
		ValidatorID:     validatorID,
		Decision:        decision,
		Notes:           notes,
		Provenance:      ProvenanceWallet,
		WalletAddress:   proof.WalletAddress,
		WalletSignature: proof.Signature,
		VotedAt:         common.NowISO8601(),
	}
}

func NewAutoAbstainVote(requestID, validatorID string) *ValidatorVote {
	return &ValidatorVote{
		RequestID:   requestID,
		ValidatorID: validatorID,
		Decision:    DecisionAbstain,
		Provenance:  ProvenanceAuto,
		VotedAt:     common.NowISO8601(),
	}
}

func (v *ValidatorVote) String() string {
	return string(common.MustJSONMarshal(v))
}

func GetVoteKey(requestID, validatorID string) string {
	return fmt.Sprintf("%s%s-%s", VotePrefix, requestID, validatorID)
}

func GetVoteRequestPrefix(requestID string) string {
	return fmt.Sprintf("%s%s-", VotePrefix, requestID)
}

// Save upserts by pair; a validator may change their mind before the
// deadline and the newest row simply replaces the old one.
func (v *ValidatorVote) Save(st *storage.LevelDBBackend) (err error) {
	key := GetVoteKey(v.RequestID, v.ValidatorID)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		return st.Set(key, v)
	}

	return st.New(key, v)
}

func ExistsValidatorVote(st *storage.LevelDBBackend, requestID, validatorID string) (bool, error) {
	return st.Has(GetVoteKey(requestID, validatorID))
}

func GetValidatorVote(st *storage.LevelDBBackend, requestID, validatorID string) (v *ValidatorVote, err error) {
	err = st.Get(GetVoteKey(requestID, validatorID), &v)
	return
}

func GetVotesByRequest(st *storage.LevelDBBackend, requestID string) (vs []*ValidatorVote, err error) {
	iterFunc, closeFunc := st.GetIterator(GetVoteRequestPrefix(requestID), nil)
	defer closeFunc()

	for {
		item, hasNext := iterFunc()
		if !hasNext {
			break
		}

		var v ValidatorVote
		if err = json.Unmarshal(item.Value, &v); err != nil {
			return
		}
		vs = append(vs, &v)
	}

	return
}

// CountVotes tallies the live vote rows of one request.
func CountVotes(vs []*ValidatorVote) (tally Tally) {
	for _, v := range vs {
		switch v.Decision {
		case DecisionApprove:
			tally.Approvals++
		case DecisionReject:
			tally.Rejections++
		case DecisionAbstain:
			tally.Abstains++
		}
	}

	return
}

// AutoAbstainRecord is the audit row of one sweeper-injected abstain;
// written with `New` keyed by the pair, so re-running a sweep can
// never duplicate it.
type AutoAbstainRecord struct {
	RequestID   string `json:"request_id"`
	ValidatorID string `json:"validator_id"`
	RecordedAt  string `json:"recorded_at"`
}

func NewAutoAbstainRecord(requestID, validatorID string) AutoAbstainRecord {
	return AutoAbstainRecord{
		RequestID:   requestID,
		ValidatorID: validatorID,
		RecordedAt:  common.NowISO8601(),
	}
}

func GetAutoAbstainKey(requestID, validatorID string) string {
	return fmt.Sprintf("%s%s-%s", AutoAbstainPrefix, requestID, validatorID)
}

func GetAutoAbstainRequestPrefix(requestID string) string {
	return fmt.Sprintf("%s%s-", AutoAbstainPrefix, requestID)
}

func (r AutoAbstainRecord) Save(st *storage.LevelDBBackend) error {
	return st.New(GetAutoAbstainKey(r.RequestID, r.ValidatorID), r)
}

func ExistsAutoAbstainRecord(st *storage.LevelDBBackend, requestID, validatorID string) (bool, error) {
	return st.Has(GetAutoAbstainKey(requestID, validatorID))
}

func GetAutoAbstainRecordsByRequest(st *storage.LevelDBBackend, requestID string) (rs []AutoAbstainRecord, err error) {
	iterFunc, closeFunc := st.GetIterator(GetAutoAbstainRequestPrefix(requestID), nil)
	defer closeFunc()

	for {
		item, hasNext := iterFunc()
		if !hasNext {
			break
		}

		var r AutoAbstainRecord
		if err = json.Unmarshal(item.Value, &r); err != nil {
			return
		}
		rs = append(rs, r)
	}

	return
}
