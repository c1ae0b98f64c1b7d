package verification

import (
	"math"
)

// Result is the outcome of one consensus evaluation.
type Result string

const (
	ResultPending  Result = "pending"
	ResultApproved Result = "approved"
	ResultRejected Result = "rejected"
)

// Tally is the current vote count of one panel. Approvals and
// rejections drive the thresholds; abstains only count toward panel
// completeness.
type Tally struct {
	Approvals  int `json:"approvals"`
	Rejections int `json:"rejections"`
	Abstains   int `json:"abstains"`
}

// VotesCast is the decided-vote counter cached on the verification
// request; abstains are excluded.
func (t Tally) VotesCast() int {
	return t.Approvals + t.Rejections
}

func (t Tally) Total() int {
	return t.Approvals + t.Rejections + t.Abstains
}

// ProgressFloor is granted the moment a panel is assigned; the
// remaining points track vote completion.
const ProgressFloor = 30

// Evaluate decides the consensus of one panel from its tally.
//
//   - approved once approvals reach `requiredApprovals`
//   - rejected once rejections exceed `panelSize - requiredApprovals`,
//     that is, once approval became unreachable even if every silent
//     validator voted approve
//   - pending otherwise
//
// A zero panel never approves; it stays pending. The returned progress
// is 100 for any terminal result; while pending it is driven by the
// decided votes only, so abstains never push it.
func Evaluate(panelSize, requiredApprovals int, tally Tally) (Result, int) {
	if panelSize < 1 {
		return ResultPending, 0
	}

	if tally.Approvals >= requiredApprovals {
		return ResultApproved, 100
	}

	if tally.Rejections > panelSize-requiredApprovals {
		return ResultRejected, 100
	}

	progress := ProgressFloor + int(math.Round(float64(100-ProgressFloor)*float64(tally.VotesCast())/float64(panelSize)))
	if progress > 100 {
		progress = 100
	}

	return ResultPending, progress
}

// Undecidable reports whether a fully-voted panel can no longer reach
// either threshold; such a request stays in review until an
// administrator extends the deadline.
func Undecidable(panelSize, requiredApprovals int, tally Tally) bool {
	if panelSize < 1 || tally.Total() < panelSize {
		return false
	}

	result, _ := Evaluate(panelSize, requiredApprovals, tally)

	return result == ResultPending
}
