package notification

import (
	"net/http"

	logging "github.com/inconshreveable/log15"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/verification"
)

var log logging.Logger = logging.New("module", "notification")

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

// Notifier delivers one lifecycle event to one destination. Delivery
// failure never affects the state change that produced the event.
type Notifier interface {
	NotifyRequest(event string, vr *verification.VerificationRequest) error
	NotifyVote(event string, vote *verification.ValidatorVote) error
}

// LogNotifier writes every event to the structured log; it is the
// default destination when no webhook endpoint is configured.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyRequest(event string, vr *verification.VerificationRequest) error {
	n.log.Info("verification event",
		"event", event,
		"request", vr.ID,
		"project", vr.ProjectID,
		"status", vr.Status,
		"progress", vr.Progress,
	)
	return nil
}

func (n *LogNotifier) NotifyVote(event string, vote *verification.ValidatorVote) error {
	n.log.Info("vote event",
		"event", event,
		"request", vote.RequestID,
		"validator", vote.ValidatorID,
		"decision", vote.Decision,
		"provenance", vote.Provenance,
	)
	return nil
}

// WebhookNotifier posts each event as JSON to a single endpoint. The
// underlying client retries transient failures with exponential
// backoff; an endpoint that keeps failing only costs a log line.
type WebhookNotifier struct {
	endpoint string
	client   *common.HTTP2Client
}

type webhookEnvelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

func NewWebhookNotifier(endpoint string, client *common.HTTP2Client) *WebhookNotifier {
	return &WebhookNotifier{
		endpoint: endpoint,
		client:   client,
	}
}

func (n *WebhookNotifier) post(event string, payload interface{}) error {
	body, err := common.EncodeJSONValue(webhookEnvelope{Event: event, Payload: payload})
	if err != nil {
		return err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	resp, err := n.client.Post(n.endpoint, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	log.Debug("webhook delivered", "event", event, "endpoint", n.endpoint, "status", resp.StatusCode)

	return nil
}

func (n *WebhookNotifier) NotifyRequest(event string, vr *verification.VerificationRequest) error {
	return n.post(event, vr)
}

func (n *WebhookNotifier) NotifyVote(event string, vote *verification.ValidatorVote) error {
	return n.post(event, vote)
}
