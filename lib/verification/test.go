// Provides test utilities for the verification engine
package verification

import (
	"github.com/stellar/go/keypair"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/storage"
)

var networkID []byte = []byte("test-veristry-network")

func TestConfig() common.Config {
	conf := common.NewConfig(networkID)
	conf.PanelSize = 5
	conf.RequiredApprovals = 3

	return conf
}

func TestMakeValidator() (*Validator, *keypair.Full) {
	kp, _ := keypair.Random()
	v, err := NewValidator(kp.Address(), "test-validator")
	if err != nil {
		panic(err)
	}

	return v, kp
}

// TestRegisterValidators saves `n` fresh validators and returns them
// with their wallet keypairs.
func TestRegisterValidators(st *storage.LevelDBBackend, n int) (vs []*Validator, kps map[string]*keypair.Full) {
	kps = map[string]*keypair.Full{}
	for i := 0; i < n; i++ {
		v, kp := TestMakeValidator()
		if err := v.Save(st); err != nil {
			panic(err)
		}
		vs = append(vs, v)
		kps[v.ID] = kp
	}

	return
}

// TestMakeProof signs a fresh vote proof for the given validator.
func TestMakeProof(kp *keypair.Full, requestID, validatorID string, decision Decision) SignatureProof {
	proof, err := MakeVoteProof(kp, networkID, requestID, validatorID, decision, common.NowISO8601())
	if err != nil {
		panic(err)
	}

	return proof
}

func TestAdmin() Actor {
	return Actor{ID: "admin", Role: RoleAdmin}
}

func TestMember(id string) Actor {
	return Actor{ID: id, Role: RoleMember}
}

func TestVoter(v *Validator) Actor {
	return Actor{ID: v.ID, Role: RoleValidator}
}
