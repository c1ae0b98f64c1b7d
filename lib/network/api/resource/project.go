package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"github.com/veristry/veristry/lib/verification"
)

type Project struct {
	p *verification.Project
}

func NewProject(p *verification.Project) *Project {
	return &Project{
		p: p,
	}
}

func (r Project) GetMap() hal.Entry {
	return hal.Entry{
		"id":           r.p.ID,
		"submitter_id": r.p.SubmitterID,
		"title":        r.p.Title,
		"submitted_at": r.p.SubmittedAt,
	}
}

func (r Project) Resource() *hal.Resource {
	res := hal.NewResource(r, r.LinkSelf())
	return res
}

func (r Project) LinkSelf() string {
	return strings.Replace(URLProjects, "{id}", r.p.ID, -1)
}
