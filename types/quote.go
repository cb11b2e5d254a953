package types

import (
	"github.com/filecoin-project/go-state-types/big"
)

// PriceQuote is the cost of storing a specific payload, derived from the
// on-chain price table. Recomputed per request, never persisted.
type PriceQuote struct {
	SizeBytes uint64

	// On-chain pricing inputs, atto-tokens.
	PricePerTiBPerMonth  big.Int
	MinimumPricePerMonth big.Int
	EpochsPerMonth       uint64

	// Derived costs for SizeBytes. PerMonth is the size-proportional rate
	// clamped up to MinimumPricePerMonth; AppliedMinimum records whether the
	// clamp fired.
	PerEpoch USDFC
	PerDay   USDFC
	PerMonth USDFC

	AppliedMinimum bool
}

// SolvencyReport is the output of a balance evaluation: whether the account
// can sustain the requested storage, and if not, by how much it is short.
// Produced fresh per evaluation and never mutated afterwards.
type SolvencyReport struct {
	// DepositNeeded is the exact top-up required to restore the runway, zero
	// when the account is already within the notification threshold.
	DepositNeeded USDFC

	// AvailableToFreeUp is escrowed funds in excess of what the requested
	// persistence needs. Informational, feeds withdrawal flows; not part of
	// the sufficiency decision.
	AvailableToFreeUp USDFC

	// DaysLeftAtBurnRate projects runway at what the account is actively
	// spending today; DaysLeftAtMaxBurnRate projects it at what the
	// requested capacity would cost.
	DaysLeftAtBurnRate    Days
	DaysLeftAtMaxBurnRate Days

	RateSufficient   bool
	LockupSufficient bool
	Sufficient       bool
}
