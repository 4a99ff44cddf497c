package reputation

import (
	"strconv"

	"microlend/core/types"
)

const (
	// EventTypeDefaultRecorded is emitted when a liquidation penalizes an
	// identity's score.
	EventTypeDefaultRecorded = "reputation.defaultRecorded"
	// EventTypeCompletionRecorded is emitted when a repayment credits an
	// identity's completion count.
	EventTypeCompletionRecorded = "reputation.completionRecorded"
)

// NewDefaultRecordedEvent returns the canonical payload for a recorded
// default.
func NewDefaultRecordedEvent(record *Reputation) *types.Event {
	attrs := make(map[string]string)
	if record != nil {
		attrs["address"] = record.Address.String()
		attrs["defaults"] = strconv.FormatUint(record.Defaults, 10)
		attrs["reputationScore"] = strconv.FormatUint(record.Score, 10)
	}
	return &types.Event{Type: EventTypeDefaultRecorded, Attributes: attrs}
}

// NewCompletionRecordedEvent returns the canonical payload for a recorded
// completion.
func NewCompletionRecordedEvent(record *Reputation) *types.Event {
	attrs := make(map[string]string)
	if record != nil {
		attrs["address"] = record.Address.String()
		attrs["completedLoans"] = strconv.FormatUint(record.CompletedLoans, 10)
		attrs["reputationScore"] = strconv.FormatUint(record.Score, 10)
	}
	return &types.Event{Type: EventTypeCompletionRecorded, Attributes: attrs}
}
