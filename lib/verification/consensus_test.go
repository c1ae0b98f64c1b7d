package verification

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateApprovalThreshold(t *testing.T) {
	result, progress := Evaluate(5, 3, Tally{Approvals: 3})
	require.Equal(t, ResultApproved, result)
	require.Equal(t, 100, progress)

	// extra approvals beyond the threshold change nothing
	result, _ = Evaluate(5, 3, Tally{Approvals: 5})
	require.Equal(t, ResultApproved, result)

	result, _ = Evaluate(5, 3, Tally{Approvals: 2})
	require.Equal(t, ResultPending, result)
}

func TestEvaluateEarlyRejection(t *testing.T) {
	// approval needs 3 of 5; once 3 have rejected, approval is
	// unreachable even if both silent validators approve
	result, progress := Evaluate(5, 3, Tally{Rejections: 3})
	require.Equal(t, ResultRejected, result)
	require.Equal(t, 100, progress)

	result, _ = Evaluate(5, 3, Tally{Rejections: 2})
	require.Equal(t, ResultPending, result)
}

func TestEvaluateUnanimousRule(t *testing.T) {
	// requiring every approval makes a single rejection final
	result, _ := Evaluate(5, 5, Tally{Rejections: 1})
	require.Equal(t, ResultRejected, result)

	result, _ = Evaluate(5, 5, Tally{Approvals: 4})
	require.Equal(t, ResultPending, result)

	result, _ = Evaluate(5, 5, Tally{Approvals: 5})
	require.Equal(t, ResultApproved, result)
}

func TestEvaluateProgress(t *testing.T) {
	_, progress := Evaluate(5, 3, Tally{})
	require.Equal(t, 30, progress)

	_, progress = Evaluate(5, 3, Tally{Approvals: 1})
	require.Equal(t, 44, progress)

	_, progress = Evaluate(5, 3, Tally{Approvals: 1, Rejections: 1})
	require.Equal(t, 58, progress)

	// abstains decide nothing and add no progress
	_, progress = Evaluate(5, 3, Tally{Approvals: 2, Abstains: 2})
	require.Equal(t, 58, progress)

	// a fully-abstained-out panel stays pending and never reports the
	// progress reserved for terminal decisions
	result, progress := Evaluate(5, 3, Tally{Approvals: 1, Rejections: 1, Abstains: 3})
	require.Equal(t, ResultPending, result)
	require.Equal(t, 58, progress)
}

func TestEvaluateZeroPanel(t *testing.T) {
	// fails closed: no panel can never approve
	result, progress := Evaluate(0, 0, Tally{Approvals: 10})
	require.Equal(t, ResultPending, result)
	require.Equal(t, 0, progress)

	result, _ = Evaluate(-1, 3, Tally{Approvals: 3})
	require.Equal(t, ResultPending, result)
}

func TestUndecidable(t *testing.T) {
	// 2 approve, 2 reject, 1 abstain of 5 with threshold 3: neither
	// side can move anymore
	require.True(t, Undecidable(5, 3, Tally{Approvals: 2, Rejections: 2, Abstains: 1}))

	// panel not fully voted yet
	require.False(t, Undecidable(5, 3, Tally{Approvals: 2, Rejections: 2}))

	// terminal tallies are decided, not undecidable
	require.False(t, Undecidable(5, 3, Tally{Approvals: 3, Rejections: 1, Abstains: 1}))
	require.False(t, Undecidable(5, 3, Tally{Rejections: 3, Abstains: 2}))

	// all-abstain sweep result
	require.True(t, Undecidable(5, 3, Tally{Abstains: 5}))
}
