package reputation

import "microlend/crypto"

const (
	// BaselineScore is the conceptual starting score for every identity.
	BaselineScore = 100
	// DefaultPenalty is deducted from the score for each defaulted loan,
	// floored at zero.
	DefaultPenalty = 20
)

// Reputation captures the repayment history of a single identity. Records are
// created lazily on the first completion or default and are never removed.
type Reputation struct {
	Address        crypto.Address `json:"address"`
	CompletedLoans uint64         `json:"completedLoans"`
	Defaults       uint64         `json:"defaults"`
	// Score stays within [0, 100]. Completions never raise it above the
	// baseline; defaults lower it by DefaultPenalty each.
	Score uint64 `json:"reputationScore"`
}
