package key

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stellar/go/keypair"

	"github.com/veristry/veristry/cmd/veristry/common"
	veristrycommon "github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/verification"
)

var (
	SignVoteCmd *cobra.Command

	flagSeed        string
	flagNetworkID   string
	flagRequestID   string
	flagValidatorID string
	flagDecision    string
	flagSignFormat  string
)

type signedVote struct {
	Decision      string `json:"decision"`
	WalletAddress string `json:"wallet_address"`
	Signature     string `json:"signature"`
	IssuedAt      string `json:"issued_at"`
}

func init() {
	SignVoteCmd = &cobra.Command{
		Use:   "sign-vote",
		Short: "Sign a vote with the validator wallet, printing the request body for the vote endpoint",
		Run: func(c *cobra.Command, args []string) {
			if len(flagSeed) < 1 {
				common.PrintFlagsError(c, "--secret-seed", errors.New("must be given"))
			}
			if len(flagNetworkID) < 1 {
				common.PrintFlagsError(c, "--network-id", errors.New("must be given"))
			}
			if len(flagRequestID) < 1 {
				common.PrintFlagsError(c, "--request", errors.New("must be given"))
			}
			if len(flagValidatorID) < 1 {
				common.PrintFlagsError(c, "--validator", errors.New("must be given"))
			}

			decision := verification.Decision(flagDecision)
			if !decision.IsValid() {
				common.PrintFlagsError(c, "--decision", fmt.Errorf(`"%s" not recognized`, flagDecision))
			}

			parsed, err := keypair.Parse(flagSeed)
			if err != nil {
				common.PrintFlagsError(c, "--secret-seed", err)
			}
			full, ok := parsed.(*keypair.Full)
			if !ok {
				common.PrintFlagsError(c, "--secret-seed", errors.New("not a secret seed"))
			}

			issuedAt := veristrycommon.NowISO8601()
			proof, err := verification.MakeVoteProof(full, []byte(flagNetworkID), flagRequestID, flagValidatorID, decision, issuedAt)
			if err != nil {
				common.PrintError(c, err)
			}

			encode, ok := common.DefaultEncodes[flagSignFormat]
			if !ok {
				common.PrintFlagsError(c, "format", fmt.Errorf(`"%s" not recognized`, flagSignFormat))
			}

			if err := encode(signedVote{
				Decision:      string(decision),
				WalletAddress: proof.WalletAddress,
				Signature:     proof.Signature,
				IssuedAt:      proof.IssuedAt,
			}, os.Stdout); err != nil {
				panic(err)
			}
		},
	}

	SignVoteCmd.Flags().StringVar(&flagSeed, "secret-seed", "", "secret seed of the validator wallet")
	SignVoteCmd.Flags().StringVar(&flagNetworkID, "network-id", "", "network id")
	SignVoteCmd.Flags().StringVar(&flagRequestID, "request", "", "verification request id")
	SignVoteCmd.Flags().StringVar(&flagValidatorID, "validator", "", "validator id")
	SignVoteCmd.Flags().StringVar(&flagDecision, "decision", "approve", "decision={approve, reject, abstain}")
	SignVoteCmd.Flags().StringVar(&flagSignFormat, "format", "prettyjson", "format={json, prettyjson, yaml}")
}
