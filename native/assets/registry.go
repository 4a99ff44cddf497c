package assets

import (
	"errors"
	"math/big"
	"strings"

	"microlend/crypto"
)

var (
	errNilState = errors.New("asset registry: state not configured")

	// ErrInvalidAsset marks operations against a symbol that is not listed or
	// carries no posted price.
	ErrInvalidAsset = errors.New("asset registry: collateral asset not listed")
	// ErrInvalidPrice marks price updates that would violate the price > 0
	// invariant.
	ErrInvalidPrice = errors.New("asset registry: price must be positive")
	// ErrInvalidSymbol marks empty or whitespace-only symbols.
	ErrInvalidSymbol = errors.New("asset registry: symbol required")
)

// Asset captures an accepted collateral asset and its latest posted price.
// Prices are denominated in micro-units. Assets are never delisted.
type Asset struct {
	Symbol string   `json:"symbol"`
	Price  *big.Int `json:"price"`
	Listed bool     `json:"listed"`
}

// Clone returns a deep copy of the asset record.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	clone := &Asset{Symbol: a.Symbol, Listed: a.Listed}
	if a.Price != nil {
		clone.Price = new(big.Int).Set(a.Price)
	}
	return clone
}

// registryState abstracts the asset collection owned by the registry.
type registryState interface {
	GetAsset(symbol string) (*Asset, error)
	PutAsset(asset *Asset) error
	ListAssets() ([]*Asset, error)
}

// authority gates the administrator-only registry mutations.
type authority interface {
	RequireOwner(caller crypto.Address) error
}

// Registry holds the set of accepted collateral assets and their prices.
type Registry struct {
	state registryState
	auth  authority
}

// NewRegistry constructs a registry bound to the provided state and authority.
func NewRegistry(state registryState, auth authority) *Registry {
	return &Registry{state: state, auth: auth}
}

// ListAsset marks the symbol as accepted collateral. Re-listing an already
// listed symbol is an overwrite of listed=true and keeps any posted price.
func (r *Registry) ListAsset(caller crypto.Address, symbol string) error {
	if r == nil || r.state == nil {
		return errNilState
	}
	if err := r.auth.RequireOwner(caller); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(symbol)
	if trimmed == "" {
		return ErrInvalidSymbol
	}
	asset, err := r.state.GetAsset(trimmed)
	if err != nil {
		return err
	}
	if asset == nil {
		asset = &Asset{Symbol: trimmed}
	}
	asset.Listed = true
	return r.state.PutAsset(asset)
}

// SetPrice posts a new price for a listed symbol. The symbol must already be
// listed and the price must be positive.
func (r *Registry) SetPrice(caller crypto.Address, symbol string, price *big.Int) error {
	if r == nil || r.state == nil {
		return errNilState
	}
	if err := r.auth.RequireOwner(caller); err != nil {
		return err
	}
	asset, err := r.state.GetAsset(strings.TrimSpace(symbol))
	if err != nil {
		return err
	}
	if asset == nil || !asset.Listed {
		return ErrInvalidAsset
	}
	if price == nil || price.Sign() <= 0 {
		return ErrInvalidPrice
	}
	asset.Price = new(big.Int).Set(price)
	return r.state.PutAsset(asset)
}

// Get returns the asset record for the symbol, or ok=false when unknown.
func (r *Registry) Get(symbol string) (*Asset, bool, error) {
	if r == nil || r.state == nil {
		return nil, false, errNilState
	}
	asset, err := r.state.GetAsset(strings.TrimSpace(symbol))
	if err != nil {
		return nil, false, err
	}
	if asset == nil {
		return nil, false, nil
	}
	return asset.Clone(), true, nil
}

// Snapshot returns a deep copy of every asset record for query consumers.
func (r *Registry) Snapshot() ([]*Asset, error) {
	if r == nil || r.state == nil {
		return nil, errNilState
	}
	stored, err := r.state.ListAssets()
	if err != nil {
		return nil, err
	}
	out := make([]*Asset, 0, len(stored))
	for _, asset := range stored {
		out = append(out, asset.Clone())
	}
	return out, nil
}
