package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veristry/veristry/lib/storage"
	"github.com/veristry/veristry/lib/verification"
)

func testDecidedRequest(t *testing.T) (*verification.VerificationRequest, *storage.LevelDBBackend) {
	st := storage.NewTestStorage()
	t.Cleanup(func() {
		st.Close()
	})

	sm := verification.NewStateMachine(st, verification.TestConfig())
	_, kps := verification.TestRegisterValidators(st, 6)

	_, vr, err := sm.SubmitProject(verification.TestMember("alice"), "solar farm audit")
	require.NoError(t, err)
	_, assignments, err := sm.AssignPanel(verification.TestAdmin(), vr.ID)
	require.NoError(t, err)

	// the third approval reaches the threshold and decides
	for i := 0; i < 2; i++ {
		vid := assignments[i].ValidatorID
		proof := verification.TestMakeProof(kps[vid], vr.ID, vid, verification.DecisionApprove)
		_, err := sm.CastVote(verification.Actor{ID: vid, Role: verification.RoleValidator}, vr.ID, verification.DecisionApprove, proof, "")
		require.NoError(t, err)
	}
	vid := assignments[2].ValidatorID
	proof := verification.TestMakeProof(kps[vid], vr.ID, vid, verification.DecisionApprove)
	vr, err = sm.CastVote(verification.Actor{ID: vid, Role: verification.RoleValidator}, vr.ID, verification.DecisionApprove, proof, "")
	require.NoError(t, err)
	require.Equal(t, verification.StatusApproved, vr.Status)

	return vr, st
}

func TestPublisherBuild(t *testing.T) {
	vr, st := testDecidedRequest(t)

	p := NewPublisher(st, "http://localhost:0/settlements", nil)
	s, err := p.Build(vr)
	require.NoError(t, err)

	require.Equal(t, vr.ID, s.RequestID)
	require.Equal(t, vr.ProjectID, s.ProjectID)
	require.Equal(t, verification.StatusApproved, s.Status)
	require.Equal(t, 3, s.ApprovalCount)
	require.Equal(t, 0, s.RejectionCount)
	require.Equal(t, vr.ConsensusReachedAt, s.DecidedAt)

	// only wallet-signed votes carry proofs
	require.Len(t, s.Proofs, 3)
	for _, proof := range s.Proofs {
		require.Equal(t, verification.DecisionApprove, proof.Decision)
		require.NotEmpty(t, proof.WalletAddress)
		require.NotEmpty(t, proof.WalletSignature)
	}
}

func TestPublisherBuildExcludesAutoAbstains(t *testing.T) {
	st := storage.NewTestStorage()
	t.Cleanup(func() {
		st.Close()
	})

	sm := verification.NewStateMachine(st, verification.TestConfig())
	_, kps := verification.TestRegisterValidators(st, 6)

	_, vr, err := sm.SubmitProject(verification.TestMember("alice"), "bridge retrofit")
	require.NoError(t, err)
	_, assignments, err := sm.AssignPanel(verification.TestAdmin(), vr.ID)
	require.NoError(t, err)

	// three rejections decide the request early, before the other
	// two validators vote
	for i := 0; i < 3; i++ {
		vid := assignments[i].ValidatorID
		proof := verification.TestMakeProof(kps[vid], vr.ID, vid, verification.DecisionReject)
		vr, err = sm.CastVote(verification.Actor{ID: vid, Role: verification.RoleValidator}, vr.ID, verification.DecisionReject, proof, "")
		require.NoError(t, err)
	}
	require.Equal(t, verification.StatusRejected, vr.Status)

	// expire and sweep; terminal requests are skipped so no abstains
	// should appear at all
	vr.VotingDeadline = "2020-01-01T00:00:00.000000000Z"
	require.NoError(t, vr.Save(st))
	swept, err := sm.SweepExpired(time.Now())
	require.NoError(t, err)
	require.Equal(t, 0, swept)

	p := NewPublisher(st, "http://localhost:0/settlements", nil)
	s, err := p.Build(vr)
	require.NoError(t, err)
	require.Equal(t, 0, s.AbstainCount)
	require.Len(t, s.Proofs, 3)
}
