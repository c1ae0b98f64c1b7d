package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/storage"
)

func testExpireRequest(t *testing.T, st *storage.LevelDBBackend, vr *VerificationRequest) {
	vr.VotingDeadline = common.FormatISO8601(time.Now().Add(-1 * time.Minute))
	require.NoError(t, vr.Save(st))
}

func TestSweepExpiredInjectsAbstains(t *testing.T) {
	sm, st := testStateMachine(t, 5, 3)
	vr, assignments, kps := testAssignedRequest(t, sm, st)

	// two approvals before the deadline
	for i := 0; i < 2; i++ {
		vid := assignments[i].ValidatorID
		proof := TestMakeProof(kps[vid], vr.ID, vid, DecisionApprove)
		_, err := sm.CastVote(Actor{ID: vid, Role: RoleValidator}, vr.ID, DecisionApprove, proof, "")
		require.NoError(t, err)
	}

	testExpireRequest(t, st, vr)

	swept, err := sm.SweepExpired(time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, swept)

	// the three silent validators got auto abstains
	votes, err := GetVotesByRequest(st, vr.ID)
	require.NoError(t, err)
	require.Len(t, votes, 5)

	tally := CountVotes(votes)
	require.Equal(t, 2, tally.Approvals)
	require.Equal(t, 3, tally.Abstains)

	records, err := GetAutoAbstainRecordsByRequest(st, vr.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)

	for _, r := range records {
		vote, err := GetValidatorVote(st, vr.ID, r.ValidatorID)
		require.NoError(t, err)
		require.Equal(t, DecisionAbstain, vote.Decision)
		require.Equal(t, ProvenanceAuto, vote.Provenance)
		require.Empty(t, vote.WalletSignature)
	}

	// 2 approvals can still reach neither threshold: stays in review
	// flagged undecidable, waiting for an extension
	cs, err := sm.GetConsensusStatus(vr.ID)
	require.NoError(t, err)
	require.Equal(t, StatusInReview, cs.Status)
	require.True(t, cs.Undecidable)

	// abstains add no progress; 100 stays reserved for terminal states
	require.Equal(t, 58, cs.Progress)
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	sm, st := testStateMachine(t, 5, 3)
	vr, _, _ := testAssignedRequest(t, sm, st)

	testExpireRequest(t, st, vr)

	_, err := sm.SweepExpired(time.Now())
	require.NoError(t, err)

	// a second sweep adds nothing
	_, err = sm.SweepExpired(time.Now())
	require.NoError(t, err)

	votes, err := GetVotesByRequest(st, vr.ID)
	require.NoError(t, err)
	require.Len(t, votes, 5)

	records, err := GetAutoAbstainRecordsByRequest(st, vr.ID)
	require.NoError(t, err)
	require.Len(t, records, 5)
}

func TestSweepExpiredSkipsLiveRequests(t *testing.T) {
	sm, st := testStateMachine(t, 5, 3)
	vr, _, _ := testAssignedRequest(t, sm, st)

	// deadline still in the future
	swept, err := sm.SweepExpired(time.Now())
	require.NoError(t, err)
	require.Equal(t, 0, swept)

	votes, err := GetVotesByRequest(st, vr.ID)
	require.NoError(t, err)
	require.Len(t, votes, 0)
}

func TestSweepExpiredKeepsManualVotes(t *testing.T) {
	sm, st := testStateMachine(t, 5, 3)
	vr, assignments, kps := testAssignedRequest(t, sm, st)

	// a voted validator must not be overwritten by the sweep
	vid := assignments[0].ValidatorID
	proof := TestMakeProof(kps[vid], vr.ID, vid, DecisionReject)
	_, err := sm.CastVote(Actor{ID: vid, Role: RoleValidator}, vr.ID, DecisionReject, proof, "no")
	require.NoError(t, err)

	testExpireRequest(t, st, vr)

	_, err = sm.SweepExpired(time.Now())
	require.NoError(t, err)

	vote, err := GetValidatorVote(st, vr.ID, vid)
	require.NoError(t, err)
	require.Equal(t, DecisionReject, vote.Decision)
	require.Equal(t, ProvenanceWallet, vote.Provenance)

	records, err := GetAutoAbstainRecordsByRequest(st, vr.ID)
	require.NoError(t, err)
	require.Len(t, records, 4)
}

func TestSweeperRunAndStop(t *testing.T) {
	sm, st := testStateMachine(t, 5, 3)
	vr, _, _ := testAssignedRequest(t, sm, st)
	testExpireRequest(t, st, vr)

	sweeper := NewSweeper(sm, 50*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- sweeper.Run()
	}()

	// the first sweep runs on start, before the first tick
	deadline := time.Now().Add(2 * time.Second)
	for {
		records, err := GetAutoAbstainRecordsByRequest(st, vr.ID)
		if err == nil && len(records) == 5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sweeper did not process the expired request")
		}
		time.Sleep(10 * time.Millisecond)
	}

	sweeper.Stop()
	require.NoError(t, <-done)
}
