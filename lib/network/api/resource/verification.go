package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"github.com/veristry/veristry/lib/verification"
)

type Verification struct {
	vr *verification.VerificationRequest
}

func NewVerification(vr *verification.VerificationRequest) *Verification {
	v := &Verification{
		vr: vr,
	}
	return v
}

func (v Verification) GetMap() hal.Entry {
	return hal.Entry{
		"id":                 v.vr.ID,
		"project_id":         v.vr.ProjectID,
		"submitter_id":       v.vr.SubmitterID,
		"status":             v.vr.Status,
		"progress":           v.vr.Progress,
		"panel_size":         v.vr.PanelSize,
		"required_approvals": v.vr.RequiredApprovals,
		"approval_count":     v.vr.ApprovalCount,
		"rejection_count":    v.vr.RejectionCount,
		"vote_count":         v.vr.VoteCount,
		"submitted_at":       v.vr.SubmittedAt,
		"assigned_at":        v.vr.AssignedAt,
		"voting_deadline":    v.vr.VotingDeadline,
		"deadline_extended":  v.vr.DeadlineExtended,
		"completed_at":       v.vr.CompletedAt,
	}
}

func (v Verification) Resource() *hal.Resource {
	r := hal.NewResource(v, v.LinkSelf())
	r.AddLink("status", hal.NewLink(v.LinkSelf()+"/status"))
	r.AddLink("votes", hal.NewLink(v.LinkSelf()+"/votes"))
	r.AddLink("project", hal.NewLink(strings.Replace(URLProjects, "{id}", v.vr.ProjectID, -1)))
	return r
}

func (v Verification) LinkSelf() string {
	return strings.Replace(URLVerifications, "{id}", v.vr.ID, -1)
}

// ConsensusStatus renders the read model of one request; it embeds
// nothing and only links back to the request.
type ConsensusStatus struct {
	cs *verification.ConsensusStatus
}

func NewConsensusStatus(cs *verification.ConsensusStatus) *ConsensusStatus {
	return &ConsensusStatus{cs: cs}
}

func (s ConsensusStatus) GetMap() hal.Entry {
	return hal.Entry{
		"request_id":         s.cs.RequestID,
		"project_id":         s.cs.ProjectID,
		"status":             s.cs.Status,
		"progress":           s.cs.Progress,
		"panel_size":         s.cs.PanelSize,
		"required_approvals": s.cs.RequiredApprovals,
		"approvals":          s.cs.Tally.Approvals,
		"rejections":         s.cs.Tally.Rejections,
		"abstains":           s.cs.Tally.Abstains,
		"vote_count":         s.cs.VoteCount,
		"voting_deadline":    s.cs.VotingDeadline,
		"deadline_extended":  s.cs.DeadlineExtended,
		"undecidable":        s.cs.Undecidable,
	}
}

func (s ConsensusStatus) Resource() *hal.Resource {
	r := hal.NewResource(s, s.LinkSelf())
	r.AddLink("verification", hal.NewLink(strings.Replace(URLVerifications, "{id}", s.cs.RequestID, -1)))
	return r
}

func (s ConsensusStatus) LinkSelf() string {
	return strings.Replace(URLVerifications, "{id}", s.cs.RequestID, -1) + "/status"
}
