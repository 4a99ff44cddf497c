package state

import (
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"microlend/crypto"
	"microlend/native/assets"
	"microlend/native/lending"
	"microlend/storage"
)

// Manager holds the authoritative in-memory ledger state: contract metadata,
// the asset registry, the append-only loan collection and the raw KV space
// used by the reputation ledger. Durability is the host's concern; the node
// serializes every mutating call against a single Manager, so no internal
// locking is required.
type Manager struct {
	owner      crypto.Address
	halted     bool
	nextLoanID uint64

	assets map[string]*assets.Asset
	loans  map[uint64]*lending.Loan
	kv     storage.Database
}

// NewManager returns an empty ledger owned by the genesis administrator. Loan
// ids start at 1. A nil database falls back to an in-memory store.
func NewManager(owner crypto.Address, db storage.Database) *Manager {
	if db == nil {
		db = storage.NewMemDB()
	}
	return &Manager{
		owner:      owner,
		nextLoanID: 1,
		assets:     make(map[string]*assets.Asset),
		loans:      make(map[uint64]*lending.Loan),
		kv:         db,
	}
}

// --- access controller state ---

func (m *Manager) Owner() crypto.Address        { return m.owner }
func (m *Manager) SetOwner(addr crypto.Address) { m.owner = addr }
func (m *Manager) Halted() bool                 { return m.halted }
func (m *Manager) SetHalted(halted bool)        { m.halted = halted }

// --- asset registry state ---

func (m *Manager) GetAsset(symbol string) (*assets.Asset, error) {
	asset, ok := m.assets[symbol]
	if !ok {
		return nil, nil
	}
	return asset.Clone(), nil
}

func (m *Manager) PutAsset(asset *assets.Asset) error {
	m.assets[asset.Symbol] = asset.Clone()
	return nil
}

func (m *Manager) ListAssets() ([]*assets.Asset, error) {
	symbols := make([]string, 0, len(m.assets))
	for symbol := range m.assets {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	out := make([]*assets.Asset, 0, len(symbols))
	for _, symbol := range symbols {
		out = append(out, m.assets[symbol].Clone())
	}
	return out, nil
}

// --- loan ledger state ---

func (m *Manager) GetLoan(id uint64) (*lending.Loan, error) {
	loan, ok := m.loans[id]
	if !ok {
		return nil, nil
	}
	return loan.Clone(), nil
}

func (m *Manager) PutLoan(loan *lending.Loan) error {
	m.loans[loan.ID] = loan.Clone()
	return nil
}

// AllocateLoanID hands out the next dense id and advances the counter. The
// lending engine only calls it once every validation has passed, so failed
// requests never consume an id.
func (m *Manager) AllocateLoanID() uint64 {
	id := m.nextLoanID
	m.nextLoanID++
	return id
}

// NextLoanID peeks at the id the next accepted request will receive.
func (m *Manager) NextLoanID() uint64 { return m.nextLoanID }

// LoanCount returns the number of stored loans.
func (m *Manager) LoanCount() int { return len(m.loans) }

// --- raw KV state (reputation ledger) ---

func (m *Manager) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.kv.Put(key, encoded)
}

func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	encoded, err := m.kv.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(encoded, out); err != nil {
		return false, err
	}
	return true, nil
}
