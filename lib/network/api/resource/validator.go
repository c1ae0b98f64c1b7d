package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"github.com/veristry/veristry/lib/verification"
)

type Validator struct {
	v *verification.Validator
}

func NewValidator(v *verification.Validator) *Validator {
	return &Validator{
		v: v,
	}
}

func (r Validator) GetMap() hal.Entry {
	return hal.Entry{
		"id":         r.v.ID,
		"address":    r.v.Address,
		"alias":      r.v.Alias,
		"active":     r.v.Active,
		"created_at": r.v.CreatedAt,
	}
}

func (r Validator) Resource() *hal.Resource {
	res := hal.NewResource(r, r.LinkSelf())
	return res
}

func (r Validator) LinkSelf() string {
	return strings.Replace(URLValidators, "{id}", r.v.ID, -1)
}
