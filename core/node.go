package core

import (
	"errors"
	"math/big"
	"sync"

	"microlend/core/state"
	"microlend/core/types"
	"microlend/crypto"
	"microlend/native/access"
	"microlend/native/assets"
	"microlend/native/lending"
	"microlend/native/reputation"
	"microlend/storage"
)

var errNoOwner = errors.New("node: genesis owner required")

// Genesis seeds a fresh ledger: the initial administrator, the risk limits
// the lending engine enforces, and the key-value store backing the raw KV
// space. A nil DB keeps everything in memory.
type Genesis struct {
	Owner  crypto.Address
	Params lending.RiskParameters
	DB     storage.Database
}

// Status summarises the contract-level state for query consumers.
type Status struct {
	Owner      string `json:"owner"`
	Halted     bool   `json:"emergencyStopped"`
	NextLoanID uint64 `json:"nextLoanId"`
	Height     uint64 `json:"height"`
}

// Node hosts the ledger modules and supplies the two inputs the core treats
// as trusted: the caller identity (forwarded per call) and the block height.
// A single mutex serializes every call so each one runs to completion against
// one authoritative state snapshot, preserving the all-or-nothing commit
// guarantee of the engines.
type Node struct {
	mu sync.Mutex

	state      *state.Manager
	height     uint64
	events     []types.Event
	access     *access.Controller
	registry   *assets.Registry
	engine     *lending.Engine
	reputation *reputation.Ledger
}

// NewNode constructs a node with an empty ledger at height 1.
func NewNode(genesis Genesis) (*Node, error) {
	if genesis.Owner.IsZero() {
		return nil, errNoOwner
	}
	manager := state.NewManager(genesis.Owner, genesis.DB)
	node := &Node{
		state:  manager,
		height: 1,
	}
	node.access = access.NewController(manager)
	node.registry = assets.NewRegistry(manager, node.access)
	node.reputation = reputation.NewLedger(manager)

	engine := lending.NewEngine(genesis.Params)
	engine.SetState(manager)
	engine.SetAuthority(node.access)
	engine.SetHaltView(node.access)
	engine.SetAssetView(registryAssetView{registry: node.registry})
	engine.SetReputationRecorder(recordingReputation{node: node})
	engine.SetEmitter(node.appendEvent)
	node.engine = engine
	return node, nil
}

// registryAssetView adapts the asset registry to the lending engine's
// validation view.
type registryAssetView struct {
	registry *assets.Registry
}

func (v registryAssetView) Asset(symbol string) (*big.Int, bool, error) {
	asset, ok, err := v.registry.Get(symbol)
	if err != nil {
		return nil, false, err
	}
	if !ok || !asset.Listed {
		return nil, false, nil
	}
	return asset.Price, true, nil
}

// recordingReputation forwards terminal-transition side effects to the
// reputation ledger and emits the matching events.
type recordingReputation struct {
	node *Node
}

func (r recordingReputation) RecordDefault(addr crypto.Address) error {
	if err := r.node.reputation.RecordDefault(addr); err != nil {
		return err
	}
	record, _, err := r.node.reputation.Get(addr)
	if err != nil {
		return err
	}
	r.node.appendEvent(reputation.NewDefaultRecordedEvent(record))
	return nil
}

func (r recordingReputation) RecordCompletion(addr crypto.Address) error {
	if err := r.node.reputation.RecordCompletion(addr); err != nil {
		return err
	}
	record, _, err := r.node.reputation.Get(addr)
	if err != nil {
		return err
	}
	r.node.appendEvent(reputation.NewCompletionRecordedEvent(record))
	return nil
}

// appendEvent records an event on the node's feed. Callers hold the node
// mutex for the duration of the emitting operation.
func (n *Node) appendEvent(evt *types.Event) {
	if evt == nil {
		return
	}
	n.events = append(n.events, *evt)
}

// Height returns the current block height.
func (n *Node) Height() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.height
}

// AdvanceBlocks moves the logical clock forward. The height is monotonically
// increasing and advanced only by the host, never by ledger operations.
func (n *Node) AdvanceBlocks(count uint64) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.height += count
	return n.height
}

// AddCollateralAsset marks a symbol as accepted collateral. Administrator
// only.
func (n *Node) AddCollateralAsset(caller crypto.Address, symbol string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.registry.ListAsset(caller, symbol); err != nil {
		return err
	}
	n.appendEvent(assets.NewAssetListedEvent(symbol))
	return nil
}

// UpdateAssetPrice posts a price for a listed symbol. Administrator only.
func (n *Node) UpdateAssetPrice(caller crypto.Address, symbol string, price *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.registry.SetPrice(caller, symbol, price); err != nil {
		return err
	}
	asset, _, err := n.registry.Get(symbol)
	if err != nil {
		return err
	}
	n.appendEvent(assets.NewPriceUpdatedEvent(asset))
	return nil
}

// CreateLoanRequest validates and stores a pending loan for the borrower and
// returns the allocated id.
func (n *Node) CreateLoanRequest(borrower crypto.Address, amount, collateralAmount *big.Int, symbol string, durationBlocks, interestRateBps uint64) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	return n.engine.CreateLoanRequest(borrower, amount, collateralAmount, symbol, durationBlocks, interestRateBps)
}

// ActivateLoan moves a pending loan to active. Administrator only.
func (n *Node) ActivateLoan(caller crypto.Address, id uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	return n.engine.ActivateLoan(caller, id)
}

// RepayLoan settles an active loan. Borrower only; returns the flat amount
// due.
func (n *Node) RepayLoan(caller crypto.Address, id uint64) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	return n.engine.RepayLoan(caller, id)
}

// LiquidateLoan drives an expired active loan to its liquidated state and
// penalizes the borrower's reputation. Open to any caller.
func (n *Node) LiquidateLoan(caller crypto.Address, id uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	return n.engine.LiquidateLoan(caller, id)
}

// ToggleHalt flips the emergency stop and returns the new flag value.
// Administrator only.
func (n *Node) ToggleHalt(caller crypto.Address) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	halted, err := n.access.ToggleHalt(caller)
	if err != nil {
		return false, err
	}
	n.appendEvent(access.NewHaltToggledEvent(halted))
	return halted, nil
}

// SetOwner transfers administrator rights. Current owner only.
func (n *Node) SetOwner(caller, newOwner crypto.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	previous := n.access.Owner()
	if err := n.access.TransferOwner(caller, newOwner); err != nil {
		return err
	}
	n.appendEvent(access.NewOwnerTransferredEvent(previous, newOwner))
	return nil
}

// GetLoan returns a copy of the loan record, or ok=false when unknown.
func (n *Node) GetLoan(id uint64) (*lending.Loan, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.GetLoan(id)
}

// CalculateTotalDue resolves the loan and computes the flat amount owed.
func (n *Node) CalculateTotalDue(id uint64) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.TotalDueByID(id)
}

// GetReputation returns the identity's repayment record, or ok=false when it
// has no history.
func (n *Node) GetReputation(addr crypto.Address) (*reputation.Reputation, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reputation.Get(addr)
}

// GetStatus returns the contract-level state snapshot. No authorization is
// required.
func (n *Node) GetStatus() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Status{
		Owner:      n.access.Owner().String(),
		Halted:     n.access.IsHalted(),
		NextLoanID: n.state.NextLoanID(),
		Height:     n.height,
	}
}

// ListAssets returns a snapshot of the asset registry.
func (n *Node) ListAssets() ([]*assets.Asset, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.Snapshot()
}

// Events returns a copy of the event feed starting at the given index.
func (n *Node) Events(from int) []types.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	if from < 0 {
		from = 0
	}
	if from >= len(n.events) {
		return []types.Event{}
	}
	out := make([]types.Event, len(n.events)-from)
	copy(out, n.events[from:])
	return out
}

// RiskParameters returns the limits enforced by the lending engine.
func (n *Node) RiskParameters() lending.RiskParameters {
	return n.engine.Params()
}
