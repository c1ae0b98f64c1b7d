package verification

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veristry/veristry/lib/errors"
)

func testMakePool(n int) []*Validator {
	var pool []*Validator
	for i := 0; i < n; i++ {
		v, _ := TestMakeValidator()
		pool = append(pool, v)
	}

	return pool
}

func TestSelectPanelExcludesSubmitter(t *testing.T) {
	pool := testMakePool(6)
	submitter := pool[0]

	// selection is random; a single lucky pass proves nothing
	for i := 0; i < 50; i++ {
		panel, err := SelectPanel(pool, submitter.ID, 5)
		require.NoError(t, err)
		require.Len(t, panel, 5)

		for _, v := range panel {
			require.NotEqual(t, submitter.ID, v.ID)
		}
	}
}

func TestSelectPanelDistinctMembers(t *testing.T) {
	pool := testMakePool(10)

	panel, err := SelectPanel(pool, "", 5)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, v := range panel {
		require.False(t, seen[v.ID])
		seen[v.ID] = true
	}
}

func TestSelectPanelInsufficientCandidates(t *testing.T) {
	pool := testMakePool(5)

	// the submitter being in the pool leaves only 4 candidates
	_, err := SelectPanel(pool, pool[0].ID, 5)
	require.Error(t, err)

	coded, ok := err.(*errors.Error)
	require.True(t, ok)
	require.Equal(t, errors.InsufficientCandidates.Code, coded.Code)
	require.Equal(t, 4, coded.Data["eligible"])
	require.Equal(t, 5, coded.Data["requested"])
}

func TestSelectPanelDoesNotMutatePool(t *testing.T) {
	pool := testMakePool(8)
	ids := map[string]bool{}
	for _, v := range pool {
		ids[v.ID] = true
	}

	_, err := SelectPanel(pool, "", 5)
	require.NoError(t, err)

	require.Len(t, pool, 8)
	for _, v := range pool {
		require.True(t, ids[v.ID])
	}
}
