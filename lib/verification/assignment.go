package verification

import (
	"encoding/json"
	"fmt"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/storage"
)

// ValidatorAssignment fixes one validator on one panel. Assignments
// are created once when the panel is assigned and never change; there
// is no reassignment operation.
//
// models
//   - 'pair'
//     'va-<RequestID>-<ValidatorID>': `ValidatorAssignment`
const AssignmentPrefix string = "va-"

type ValidatorAssignment struct {
	RequestID   string `json:"request_id"`
	ValidatorID string `json:"validator_id"`
	AssignedBy  string `json:"assigned_by"`
	AssignedAt  string `json:"assigned_at"`
}

func NewValidatorAssignment(requestID, validatorID, assignedBy string) *ValidatorAssignment {
	return &ValidatorAssignment{
		RequestID:   requestID,
		ValidatorID: validatorID,
		AssignedBy:  assignedBy,
		AssignedAt:  common.NowISO8601(),
	}
}

func GetAssignmentKey(requestID, validatorID string) string {
	return fmt.Sprintf("%s%s-%s", AssignmentPrefix, requestID, validatorID)
}

func GetAssignmentRequestPrefix(requestID string) string {
	return fmt.Sprintf("%s%s-", AssignmentPrefix, requestID)
}

// Save only accepts fresh pairs; one-assignment-per-(request,
// validator) is enforced by the storage key.
func (a *ValidatorAssignment) Save(st *storage.LevelDBBackend) error {
	return st.New(GetAssignmentKey(a.RequestID, a.ValidatorID), a)
}

func ExistsAssignment(st *storage.LevelDBBackend, requestID, validatorID string) (bool, error) {
	return st.Has(GetAssignmentKey(requestID, validatorID))
}

func GetAssignmentsByRequest(st *storage.LevelDBBackend, requestID string) (as []*ValidatorAssignment, err error) {
	iterFunc, closeFunc := st.GetIterator(GetAssignmentRequestPrefix(requestID), nil)
	defer closeFunc()

	for {
		item, hasNext := iterFunc()
		if !hasNext {
			break
		}

		var a ValidatorAssignment
		if err = json.Unmarshal(item.Value, &a); err != nil {
			return
		}
		as = append(as, &a)
	}

	return
}
