package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/errors"
	"github.com/veristry/veristry/lib/storage"
)

func TestVerificationRequestSaveAndGet(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	vr := NewVerificationRequest("project-1", "alice", 5, 3)
	require.NoError(t, vr.Save(st))

	fetched, err := GetVerificationRequest(st, vr.ID)
	require.NoError(t, err)
	require.Equal(t, vr.ID, fetched.ID)
	require.Equal(t, StatusPending, fetched.Status)
	require.Equal(t, 0, fetched.Progress)

	byProject, err := GetVerificationRequestByProject(st, "project-1")
	require.NoError(t, err)
	require.Equal(t, vr.ID, byProject.ID)
}

func TestTransitionRecordSavesOnce(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	record := TransitionRecord{
		RequestID:      "req-1",
		Status:         StatusApproved,
		ApprovalCount:  3,
		TransitionedAt: common.NowISO8601(),
	}
	require.NoError(t, record.Save(st))

	// the record is the no-double-transition audit row; a second save
	// must fail instead of overwriting
	err := record.Save(st)
	require.Error(t, err)
	require.Equal(t, errors.StorageRecordAlreadyExists.Code, err.(*errors.Error).Code)

	fetched, err := GetTransitionRecord(st, "req-1")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, fetched.Status)
	require.Equal(t, 3, fetched.ApprovalCount)
}

func TestGetInReviewRequestIDsCorruptRow(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	require.NoError(t, st.New(GetVerificationRequestInReviewKey("req-1"), "req-1"))
	require.NoError(t, st.New(GetVerificationRequestInReviewKey("req-2"), 42))

	// a row that does not decode must surface, not vanish from the sweep
	_, err := GetInReviewRequestIDs(st)
	require.Error(t, err)
}

func TestDeadlinePassedAt(t *testing.T) {
	now := time.Now()

	vr := NewVerificationRequest("project-1", "alice", 5, 3)
	require.False(t, vr.DeadlinePassedAt(now)) // no deadline yet

	vr.VotingDeadline = common.FormatISO8601(now.Add(time.Hour))
	require.False(t, vr.DeadlinePassedAt(now))
	require.True(t, vr.DeadlinePassedAt(now.Add(2*time.Hour)))
}
