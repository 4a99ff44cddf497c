package reputation

import (
	"errors"
	"fmt"

	"microlend/crypto"
)

// storage abstracts the subset of state manager functionality required by the
// reputation ledger.
type storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var reputationPrefix = []byte("reputation/score/")

func reputationKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", reputationPrefix, addr.Bytes()))
}

var errStorageUnavailable = errors.New("reputation: storage unavailable")

// storedReputation is the persisted shape of a reputation record. The address
// is carried redundantly so records can be rebuilt from a raw key scan.
type storedReputation struct {
	Addr           [20]byte
	CompletedLoans uint64
	Defaults       uint64
	Score          uint64
}

// Ledger persists per-identity repayment statistics. It is mutated only as a
// side effect of terminal loan transitions.
type Ledger struct {
	store storage
}

// NewLedger constructs a ledger bound to the provided storage backend.
func NewLedger(store storage) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) load(addr crypto.Address) (*storedReputation, bool, error) {
	if l == nil || l.store == nil {
		return nil, false, errStorageUnavailable
	}
	var stored storedReputation
	ok, err := l.store.KVGet(reputationKey(addr), &stored)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &stored, true, nil
}

func (l *Ledger) ensure(addr crypto.Address) (*storedReputation, error) {
	stored, ok, err := l.load(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		stored = &storedReputation{Score: BaselineScore}
		copy(stored.Addr[:], addr.Bytes())
	}
	return stored, nil
}

// RecordDefault increments the identity's default count and deducts the fixed
// penalty from its score, floored at zero. A first default therefore lands
// the identity at 80.
func (l *Ledger) RecordDefault(addr crypto.Address) error {
	stored, err := l.ensure(addr)
	if err != nil {
		return err
	}
	stored.Defaults++
	if stored.Score > DefaultPenalty {
		stored.Score -= DefaultPenalty
	} else {
		stored.Score = 0
	}
	return l.store.KVPut(reputationKey(addr), stored)
}

// RecordCompletion increments the identity's completed-loan count. The score
// is left untouched: the baseline is already the maximum.
func (l *Ledger) RecordCompletion(addr crypto.Address) error {
	stored, err := l.ensure(addr)
	if err != nil {
		return err
	}
	stored.CompletedLoans++
	return l.store.KVPut(reputationKey(addr), stored)
}

// Get returns the identity's record, or ok=false when it has never completed
// or defaulted on a loan.
func (l *Ledger) Get(addr crypto.Address) (*Reputation, bool, error) {
	stored, ok, err := l.load(addr)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	record := &Reputation{
		Address:        crypto.NewAddress(crypto.LendPrefix, append([]byte(nil), stored.Addr[:]...)),
		CompletedLoans: stored.CompletedLoans,
		Defaults:       stored.Defaults,
		Score:          stored.Score,
	}
	return record, true, nil
}
