package verification

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stellar/go/keypair"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/errors"
)

// SignatureProof is the wallet-produced evidence attached to a vote.
// Keys and signing live on the client side; the engine only verifies.
type SignatureProof struct {
	WalletAddress string `json:"wallet_address"`
	Signature     string `json:"signature"`
	IssuedAt      string `json:"issued_at"`
}

// MakeVoteMessage builds the canonical challenge message. It binds the
// request id, the voter id, the declared decision and the issuance
// timestamp, so a signature can not be replayed for a different vote
// or request.
func MakeVoteMessage(requestID, validatorID string, decision Decision, issuedAt string) string {
	return fmt.Sprintf("veristry-vote:%s:%s:%s:%s", requestID, validatorID, decision, issuedAt)
}

// MakeVoteProof signs the canonical message with the given keypair;
// used by operator tooling and tests, never by the engine itself.
func MakeVoteProof(kp *keypair.Full, networkID []byte, requestID, validatorID string, decision Decision, issuedAt string) (SignatureProof, error) {
	message := MakeVoteMessage(requestID, validatorID, decision, issuedAt)

	signature, err := kp.Sign(append(networkID, []byte(message)...))
	if err != nil {
		return SignatureProof{}, err
	}

	return SignatureProof{
		WalletAddress: kp.Address(),
		Signature:     base58.Encode(signature),
		IssuedAt:      issuedAt,
	}, nil
}

// SignatureVerifier checks that a submitted vote was authentically
// produced by the claimed wallet within the freshness window. Pure;
// a failure is a client-correctable condition, never retried.
type SignatureVerifier struct {
	networkID []byte
	tolerance time.Duration
}

func NewSignatureVerifier(networkID []byte, tolerance time.Duration) *SignatureVerifier {
	return &SignatureVerifier{
		networkID: networkID,
		tolerance: tolerance,
	}
}

func (sv *SignatureVerifier) Verify(requestID, validatorID string, decision Decision, proof SignatureProof, registeredAddress string, now time.Time) (err error) {
	if len(proof.Signature) < 1 || len(proof.WalletAddress) < 1 {
		return errors.MalformedSignature
	}

	var kp keypair.KP
	if kp, err = keypair.Parse(proof.WalletAddress); err != nil {
		return errors.MalformedSignature
	}

	signature := base58.Decode(proof.Signature)
	if len(signature) < 1 {
		return errors.MalformedSignature
	}

	if proof.WalletAddress != registeredAddress {
		return errors.AddressMismatch
	}

	var issuedAt time.Time
	if issuedAt, err = common.ParseISO8601(proof.IssuedAt); err != nil {
		return errors.MalformedSignature
	}

	skew := now.Sub(issuedAt)
	if skew < 0 {
		skew = -skew
	}
	if skew > sv.tolerance {
		return errors.StaleTimestamp
	}

	message := MakeVoteMessage(requestID, validatorID, decision, proof.IssuedAt)
	if err = kp.Verify(append(sv.networkID, []byte(message)...), signature); err != nil {
		return errors.CryptographicFailure
	}

	return nil
}
