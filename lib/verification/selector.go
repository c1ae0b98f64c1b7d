package verification

import (
	"crypto/rand"
	"math/big"

	"github.com/veristry/veristry/lib/errors"
)

// SelectPanel picks `n` distinct validators uniformly at random from
// the candidate pool, never including the excluded submitter. It has
// no side effects; persisting the assignments is the state machine's
// step, so a selection failure never leaves partial assignment rows.
func SelectPanel(pool []*Validator, exclude string, n int) ([]*Validator, error) {
	var eligible []*Validator
	for _, v := range pool {
		if v.ID == exclude {
			continue
		}
		eligible = append(eligible, v)
	}

	if len(eligible) < n {
		return nil, errors.InsufficientCandidates.Clone().
			SetData("eligible", len(eligible)).
			SetData("requested", n)
	}

	for i := len(eligible) - 1; i > 0; i-- {
		j := randomIntn(i + 1)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}

	return eligible[:n], nil
}

func randomIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}
