package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"github.com/veristry/veristry/lib/verification"
)

type Vote struct {
	v *verification.ValidatorVote
}

func NewVote(v *verification.ValidatorVote) *Vote {
	return &Vote{
		v: v,
	}
}

func (r Vote) GetMap() hal.Entry {
	return hal.Entry{
		"request_id":   r.v.RequestID,
		"validator_id": r.v.ValidatorID,
		"decision":     r.v.Decision,
		"provenance":   r.v.Provenance,
		"voted_at":     r.v.VotedAt,
	}
}

func (r Vote) Resource() *hal.Resource {
	res := hal.NewResource(r, r.LinkSelf())
	res.AddLink("verification", hal.NewLink(strings.Replace(URLVerifications, "{id}", r.v.RequestID, -1)))
	return res
}

func (r Vote) LinkSelf() string {
	return strings.Replace(URLVerifications, "{id}", r.v.RequestID, -1) + "/votes"
}
