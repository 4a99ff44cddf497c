package assets

import "microlend/core/types"

const (
	// EventTypeAssetListed is emitted when a symbol becomes accepted
	// collateral.
	EventTypeAssetListed = "assets.assetListed"
	// EventTypePriceUpdated is emitted when the administrator posts a price.
	EventTypePriceUpdated = "assets.priceUpdated"
)

// NewAssetListedEvent returns the canonical payload for a listing.
func NewAssetListedEvent(symbol string) *types.Event {
	return &types.Event{Type: EventTypeAssetListed, Attributes: map[string]string{"symbol": symbol}}
}

// NewPriceUpdatedEvent returns the canonical payload for a price post.
func NewPriceUpdatedEvent(asset *Asset) *types.Event {
	attrs := make(map[string]string)
	if asset != nil {
		attrs["symbol"] = asset.Symbol
		if asset.Price != nil {
			attrs["price"] = asset.Price.String()
		}
	}
	return &types.Event{Type: EventTypePriceUpdated, Attributes: attrs}
}
