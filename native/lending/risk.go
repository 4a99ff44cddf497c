package lending

import (
	"math/big"

	"microlend/native/common"
)

var basisPoints = big.NewInt(10_000)

// AssetView resolves collateral symbols against the asset registry. Listed is
// false for unknown symbols; price is nil until the first price post.
type AssetView interface {
	Asset(symbol string) (price *big.Int, listed bool, err error)
}

// ValidateLoanRequest applies the risk checks for a new loan request in order:
// emergency stop, collateral asset, collateralization ratio, duration bounds,
// rate cap. It performs no mutation; callers persist the loan only when it
// returns nil.
func (e *Engine) ValidateLoanRequest(amount, collateralAmount *big.Int, symbol string, durationBlocks, interestRateBps uint64) error {
	if e == nil {
		return errNilState
	}
	if err := common.Guard(e.halts); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if collateralAmount == nil || collateralAmount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if e.assets == nil {
		return errNilState
	}
	price, listed, err := e.assets.Asset(symbol)
	if err != nil {
		return err
	}
	if !listed || price == nil || price.Sign() <= 0 {
		return ErrInvalidCollateralAsset
	}
	if !collateralRatioMet(amount, collateralAmount, e.params.MinCollateralRatioBps) {
		return ErrInsufficientCollateral
	}
	if durationBlocks < e.params.MinDurationBlocks || durationBlocks > e.params.MaxDurationBlocks {
		return ErrInvalidDuration
	}
	if interestRateBps > e.params.MaxInterestRateBps {
		return ErrInvalidInterestRate
	}
	return nil
}

// collateralRatioMet checks collateralAmount/amount >= minRatioBps/10000 using
// integer cross-multiplication so no precision is lost.
func collateralRatioMet(amount, collateralAmount *big.Int, minRatioBps uint64) bool {
	lhs := new(big.Int).Mul(collateralAmount, basisPoints)
	rhs := new(big.Int).Mul(amount, new(big.Int).SetUint64(minRatioBps))
	return lhs.Cmp(rhs) >= 0
}

// TotalDue computes amount + amount*rateBps/10000 with truncation toward zero
// on any remainder. Interest is a flat rate independent of how long the loan
// has been outstanding.
func TotalDue(amount *big.Int, interestRateBps uint64) *big.Int {
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0)
	}
	interest := new(big.Int).Mul(amount, new(big.Int).SetUint64(interestRateBps))
	interest.Quo(interest, basisPoints)
	return new(big.Int).Add(amount, interest)
}
