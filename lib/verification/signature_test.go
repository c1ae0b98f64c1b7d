package verification

import (
	"testing"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/require"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/errors"
)

func TestSignatureVerifierAccepts(t *testing.T) {
	kp, _ := keypair.Random()
	sv := NewSignatureVerifier(networkID, common.DefaultSignatureTolerance)

	proof := TestMakeProof(kp, "request", "validator", DecisionApprove)
	err := sv.Verify("request", "validator", DecisionApprove, proof, kp.Address(), time.Now())
	require.NoError(t, err)
}

func TestSignatureVerifierMalformed(t *testing.T) {
	kp, _ := keypair.Random()
	sv := NewSignatureVerifier(networkID, common.DefaultSignatureTolerance)

	proof := TestMakeProof(kp, "request", "validator", DecisionApprove)

	empty := proof
	empty.Signature = ""
	err := sv.Verify("request", "validator", DecisionApprove, empty, kp.Address(), time.Now())
	require.True(t, errors.MalformedSignature.Equal(err))

	badAddress := proof
	badAddress.WalletAddress = "not-an-address"
	err = sv.Verify("request", "validator", DecisionApprove, badAddress, kp.Address(), time.Now())
	require.True(t, errors.MalformedSignature.Equal(err))

	badIssuedAt := proof
	badIssuedAt.IssuedAt = "yesterday"
	err = sv.Verify("request", "validator", DecisionApprove, badIssuedAt, kp.Address(), time.Now())
	require.True(t, errors.MalformedSignature.Equal(err))
}

func TestSignatureVerifierAddressMismatch(t *testing.T) {
	kp, _ := keypair.Random()
	other, _ := keypair.Random()
	sv := NewSignatureVerifier(networkID, common.DefaultSignatureTolerance)

	// signed correctly, but the wallet is not the registered one
	proof := TestMakeProof(kp, "request", "validator", DecisionApprove)
	err := sv.Verify("request", "validator", DecisionApprove, proof, other.Address(), time.Now())
	require.True(t, errors.AddressMismatch.Equal(err))
}

func TestSignatureVerifierStaleTimestamp(t *testing.T) {
	kp, _ := keypair.Random()
	sv := NewSignatureVerifier(networkID, 10*time.Minute)

	issuedAt := common.FormatISO8601(time.Now().Add(-11 * time.Minute))
	proof, err := MakeVoteProof(kp, networkID, "request", "validator", DecisionApprove, issuedAt)
	require.NoError(t, err)

	err = sv.Verify("request", "validator", DecisionApprove, proof, kp.Address(), time.Now())
	require.True(t, errors.StaleTimestamp.Equal(err))

	// a timestamp from the future is just as stale
	issuedAt = common.FormatISO8601(time.Now().Add(11 * time.Minute))
	proof, err = MakeVoteProof(kp, networkID, "request", "validator", DecisionApprove, issuedAt)
	require.NoError(t, err)

	err = sv.Verify("request", "validator", DecisionApprove, proof, kp.Address(), time.Now())
	require.True(t, errors.StaleTimestamp.Equal(err))
}

func TestSignatureVerifierCryptographicFailure(t *testing.T) {
	kp, _ := keypair.Random()
	sv := NewSignatureVerifier(networkID, common.DefaultSignatureTolerance)

	// the message binds the decision; approving with a signature made
	// for reject must fail
	proof := TestMakeProof(kp, "request", "validator", DecisionReject)
	err := sv.Verify("request", "validator", DecisionApprove, proof, kp.Address(), time.Now())
	require.True(t, errors.CryptographicFailure.Equal(err))

	// so does a signature for another request
	proof = TestMakeProof(kp, "other-request", "validator", DecisionApprove)
	err = sv.Verify("request", "validator", DecisionApprove, proof, kp.Address(), time.Now())
	require.True(t, errors.CryptographicFailure.Equal(err))
}

func TestSignatureVerifierNetworkBinding(t *testing.T) {
	kp, _ := keypair.Random()
	sv := NewSignatureVerifier([]byte("another-network"), common.DefaultSignatureTolerance)

	proof := TestMakeProof(kp, "request", "validator", DecisionApprove)
	err := sv.Verify("request", "validator", DecisionApprove, proof, kp.Address(), time.Now())
	require.True(t, errors.CryptographicFailure.Equal(err))
}
