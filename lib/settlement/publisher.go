package settlement

import (
	"net/http"

	logging "github.com/inconshreveable/log15"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/common/observer"
	"github.com/veristry/veristry/lib/storage"
	"github.com/veristry/veristry/lib/verification"
)

var log logging.Logger = logging.New("module", "settlement")

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

// Settlement is the outward record of one decided verification: the
// terminal status plus the wallet-signed proofs that justify it. Auto
// abstains carry no proof and are only counted.
type Settlement struct {
	RequestID string              `json:"request_id"`
	ProjectID string              `json:"project_id"`
	Status    verification.Status `json:"status"`

	ApprovalCount  int `json:"approval_count"`
	RejectionCount int `json:"rejection_count"`
	AbstainCount   int `json:"abstain_count"`

	DecidedAt string      `json:"decided_at"`
	Proofs    []VoteProof `json:"proofs"`
}

type VoteProof struct {
	ValidatorID     string                `json:"validator_id"`
	Decision        verification.Decision `json:"decision"`
	WalletAddress   string                `json:"wallet_address"`
	WalletSignature string                `json:"wallet_signature"`
	VotedAt         string                `json:"voted_at"`
}

// Publisher posts a Settlement to the configured endpoint whenever a
// request reaches a terminal status. It subscribes to the decision
// event on Start; publication failure is logged and never blocks or
// reverses the decision.
type Publisher struct {
	st       *storage.LevelDBBackend
	endpoint string
	client   *common.HTTP2Client

	handler func(...interface{})
}

func NewPublisher(st *storage.LevelDBBackend, endpoint string, client *common.HTTP2Client) *Publisher {
	return &Publisher{
		st:       st,
		endpoint: endpoint,
		client:   client,
	}
}

// Build assembles the settlement record from the authoritative vote
// rows of a terminal request.
func (p *Publisher) Build(vr *verification.VerificationRequest) (*Settlement, error) {
	votes, err := verification.GetVotesByRequest(p.st, vr.ID)
	if err != nil {
		return nil, err
	}

	tally := verification.CountVotes(votes)

	s := &Settlement{
		RequestID:      vr.ID,
		ProjectID:      vr.ProjectID,
		Status:         vr.Status,
		ApprovalCount:  tally.Approvals,
		RejectionCount: tally.Rejections,
		AbstainCount:   tally.Abstains,
		DecidedAt:      vr.ConsensusReachedAt,
	}

	for _, v := range votes {
		if v.Provenance != verification.ProvenanceWallet {
			continue
		}
		s.Proofs = append(s.Proofs, VoteProof{
			ValidatorID:     v.ValidatorID,
			Decision:        v.Decision,
			WalletAddress:   v.WalletAddress,
			WalletSignature: v.WalletSignature,
			VotedAt:         v.VotedAt,
		})
	}

	return s, nil
}

func (p *Publisher) Publish(vr *verification.VerificationRequest) error {
	s, err := p.Build(vr)
	if err != nil {
		return err
	}

	body, err := common.EncodeJSONValue(s)
	if err != nil {
		return err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	resp, err := p.client.Post(p.endpoint, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	log.Info("settlement published",
		"request", s.RequestID,
		"status", s.Status,
		"proofs", len(s.Proofs),
		"http_status", resp.StatusCode,
	)

	return nil
}

func (p *Publisher) Start() {
	p.handler = func(args ...interface{}) {
		if len(args) < 1 {
			return
		}
		vr, ok := args[0].(*verification.VerificationRequest)
		if !ok {
			return
		}

		if err := p.Publish(vr); err != nil {
			log.Error("settlement publication failed", "request", vr.ID, "error", err)
		}
	}

	observer.VerificationObserver.On(observer.EventDecisionReached, p.handler)
	log.Info("settlement publisher started", "endpoint", p.endpoint)
}

func (p *Publisher) Stop() {
	if p.handler != nil {
		observer.VerificationObserver.Off(observer.EventDecisionReached, p.handler)
	}
}
