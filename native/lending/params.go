package lending

// RiskParameters groups the safety limits applied when accepting a loan
// request. All ratios and rates are expressed in basis points for
// deterministic integer accounting.
type RiskParameters struct {
	// MinCollateralRatioBps is the minimum collateralAmount/amount ratio a
	// request must post, expressed in basis points (20000 = 200%).
	MinCollateralRatioBps uint64
	// MinDurationBlocks bounds the shortest acceptable loan term.
	MinDurationBlocks uint64
	// MaxDurationBlocks bounds the longest acceptable loan term.
	MaxDurationBlocks uint64
	// MaxInterestRateBps caps the interest rate a request may carry.
	MaxInterestRateBps uint64
}

const (
	defaultMinCollateralRatioBps = 20_000
	defaultMinDurationBlocks     = 1_440
	defaultMaxDurationBlocks     = 525_600
	defaultMaxInterestRateBps    = 5_000
)

// DefaultRiskParameters returns the production limits: 200% collateral, terms
// between one day and one year of minute blocks, rates at or below 50%.
func DefaultRiskParameters() RiskParameters {
	return RiskParameters{
		MinCollateralRatioBps: defaultMinCollateralRatioBps,
		MinDurationBlocks:     defaultMinDurationBlocks,
		MaxDurationBlocks:     defaultMaxDurationBlocks,
		MaxInterestRateBps:    defaultMaxInterestRateBps,
	}
}

// Normalize backfills zero-valued limits with the defaults so a partially
// specified configuration never disables a check.
func (p RiskParameters) Normalize() RiskParameters {
	out := p
	if out.MinCollateralRatioBps == 0 {
		out.MinCollateralRatioBps = defaultMinCollateralRatioBps
	}
	if out.MinDurationBlocks == 0 {
		out.MinDurationBlocks = defaultMinDurationBlocks
	}
	if out.MaxDurationBlocks == 0 {
		out.MaxDurationBlocks = defaultMaxDurationBlocks
	}
	if out.MaxInterestRateBps == 0 {
		out.MaxInterestRateBps = defaultMaxInterestRateBps
	}
	return out
}
