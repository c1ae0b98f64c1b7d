package notification

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veristry/veristry/lib/storage"
	"github.com/veristry/veristry/lib/verification"
)

type recordingNotifier struct {
	sync.Mutex
	requestEvents []string
	voteEvents    []string
}

func (n *recordingNotifier) NotifyRequest(event string, vr *verification.VerificationRequest) error {
	n.Lock()
	defer n.Unlock()
	n.requestEvents = append(n.requestEvents, event)
	return nil
}

func (n *recordingNotifier) NotifyVote(event string, vote *verification.ValidatorVote) error {
	n.Lock()
	defer n.Unlock()
	n.voteEvents = append(n.voteEvents, event)
	return nil
}

func (n *recordingNotifier) snapshot() ([]string, []string) {
	n.Lock()
	defer n.Unlock()
	return append([]string{}, n.requestEvents...), append([]string{}, n.voteEvents...)
}

func TestDispatcherDelivery(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	sm := verification.NewStateMachine(st, verification.TestConfig())
	_, kps := verification.TestRegisterValidators(st, 6)

	recorder := &recordingNotifier{}
	d := NewDispatcher(recorder)
	d.Start()
	defer d.Stop()

	_, vr, err := sm.SubmitProject(verification.TestMember("alice"), "solar farm audit")
	require.NoError(t, err)
	_, assignments, err := sm.AssignPanel(verification.TestAdmin(), vr.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		vid := assignments[i].ValidatorID
		proof := verification.TestMakeProof(kps[vid], vr.ID, vid, verification.DecisionApprove)
		_, err := sm.CastVote(verification.Actor{ID: vid, Role: verification.RoleValidator}, vr.ID, verification.DecisionApprove, proof, "")
		require.NoError(t, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		requests, votes := recorder.snapshot()
		if len(requests) >= 2 && len(votes) >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("dispatcher did not deliver all events")
		}
		time.Sleep(10 * time.Millisecond)
	}

	requests, votes := recorder.snapshot()
	require.Contains(t, requests, "panel-assigned")
	require.Contains(t, requests, "decision-reached")
	require.Len(t, votes, 3)
	for _, event := range votes {
		require.Equal(t, "vote-recorded", event)
	}
}

func TestDispatcherStopUnsubscribes(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	sm := verification.NewStateMachine(st, verification.TestConfig())
	verification.TestRegisterValidators(st, 6)

	recorder := &recordingNotifier{}
	d := NewDispatcher(recorder)
	d.Start()
	d.Stop()

	_, vr, err := sm.SubmitProject(verification.TestMember("alice"), "wind survey")
	require.NoError(t, err)
	_, _, err = sm.AssignPanel(verification.TestAdmin(), vr.ID)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	requests, votes := recorder.snapshot()
	require.Len(t, requests, 0)
	require.Len(t, votes, 0)
}
