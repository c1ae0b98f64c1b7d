package verification

import (
	"encoding/json"
	"fmt"

	"github.com/stellar/go/keypair"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/errors"
	"github.com/veristry/veristry/lib/storage"
)

// Validator is a registered reviewer with a wallet address. the
// storage should support,
//   - find by `ID`
//   - find `ID` by wallet `Address`
//   - get list by created order
//
// models
//   - 'id'
//     'vd-id-<Validator.ID>': `Validator`
//   - 'address'
//     'vd-address-<Validator.Address>': `Validator.ID`
//   - 'created'
//     'vd-created-<sequential uuid1>': `Validator.ID`
const (
	ValidatorPrefixID      string = "vd-id-"
	ValidatorPrefixAddress string = "vd-address-"
	ValidatorPrefixCreated string = "vd-created-"
)

type Validator struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Alias     string `json:"alias"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

func NewValidator(address, alias string) (*Validator, error) {
	if _, err := keypair.Parse(address); err != nil {
		return nil, errors.BadRequestParameter.Clone().SetData("address", address)
	}

	return &Validator{
		ID:        common.GenerateUUID(),
		Address:   address,
		Alias:     alias,
		Active:    true,
		CreatedAt: common.NowISO8601(),
	}, nil
}

func (v *Validator) String() string {
	return string(common.MustJSONMarshal(v))
}

func (v *Validator) Serialize() (encoded []byte, err error) {
	encoded, err = common.EncodeJSONValue(v)
	return
}

func GetValidatorKey(id string) string {
	return fmt.Sprintf("%s%s", ValidatorPrefixID, id)
}

func GetValidatorAddressKey(address string) string {
	return fmt.Sprintf("%s%s", ValidatorPrefixAddress, address)
}

func GetValidatorCreatedKey(created string) string {
	return fmt.Sprintf("%s%s", ValidatorPrefixCreated, created)
}

func (v *Validator) Save(st *storage.LevelDBBackend) (err error) {
	key := GetValidatorKey(v.ID)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		return st.Set(key, v)
	}

	if exists, err = st.Has(GetValidatorAddressKey(v.Address)); exists || err != nil {
		if exists {
			err = errors.ValidatorAlreadyExists
		}
		return
	}

	if err = st.New(key, v); err != nil {
		return
	}
	if err = st.New(GetValidatorAddressKey(v.Address), v.ID); err != nil {
		return
	}
	err = st.New(GetValidatorCreatedKey(common.GetUniqueIDFromUUID()), v.ID)

	return
}

func ExistsValidator(st *storage.LevelDBBackend, id string) (bool, error) {
	return st.Has(GetValidatorKey(id))
}

func GetValidator(st *storage.LevelDBBackend, id string) (v *Validator, err error) {
	if err = st.Get(GetValidatorKey(id), &v); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.ValidatorDoesNotExist
		}
		return
	}

	return
}

func GetValidatorByAddress(st *storage.LevelDBBackend, address string) (v *Validator, err error) {
	var id string
	if err = st.Get(GetValidatorAddressKey(address), &id); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.ValidatorDoesNotExist
		}
		return
	}

	return GetValidator(st, id)
}

// GetValidators walks the registry in created order honoring the list
// options; inactive validators are included.
func GetValidators(st *storage.LevelDBBackend, options storage.ListOptions) (vs []*Validator, cursor []byte, err error) {
	iterFunc, closeFunc := st.GetIterator(ValidatorPrefixCreated, options)
	defer closeFunc()

	for {
		item, hasNext := iterFunc()
		if !hasNext {
			break
		}
		cursor = item.Key

		var id string
		if err = json.Unmarshal(item.Value, &id); err != nil {
			return
		}

		var v *Validator
		if v, err = GetValidator(st, id); err != nil {
			return
		}

		vs = append(vs, v)
	}

	return
}

// GetActiveValidators returns the candidate pool for panel selection,
// in created order.
func GetActiveValidators(st *storage.LevelDBBackend) (vs []*Validator, err error) {
	iterFunc, closeFunc := st.GetIterator(ValidatorPrefixCreated, nil)
	defer closeFunc()

	for {
		item, hasNext := iterFunc()
		if !hasNext {
			break
		}

		var id string
		if err = json.Unmarshal(item.Value, &id); err != nil {
			return
		}

		var v *Validator
		if v, err = GetValidator(st, id); err != nil {
			return
		}
		if !v.Active {
			continue
		}

		vs = append(vs, v)
	}

	return
}
