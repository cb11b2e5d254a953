// Package accountant decides whether a payment account can sustain a
// requested amount of storage for a requested duration. Evaluation is pure:
// all chain state arrives in the arguments, so the same inputs always
// produce the same report.
package accountant

import (
	"github.com/filecoin-project/go-state-types/big"

	"github.com/filecoin-project/go-filpay/api"
	"github.com/filecoin-project/go-filpay/build"
	"github.com/filecoin-project/go-filpay/types"
)

// Evaluate produces a solvency report for holding quote.SizeBytes of storage
// for persistDays. A deposit is requested only when the projected runway at
// the requested capacity falls below thresholdDays, even if the raw
// day-count math implies a shortfall.
func Evaluate(account api.AccountState, quote *types.PriceQuote, persistDays, thresholdDays uint64) *types.SolvencyReport {
	available := orZero(account.AvailableFunds)

	// What the account actively spends today vs what the requested capacity
	// would cost. The two runways answer different questions and both are
	// reported.
	currentMonthlyRate := big.Mul(orZero(account.RateUsed), big.NewIntUnsigned(quote.EpochsPerMonth))
	maxMonthlyRate := quote.PerMonth.Atto()

	daysLeft := types.DaysAtRate(available, currentMonthlyRate)
	daysLeftAtMax := types.DaysAtRate(available, maxMonthlyRate)

	amountNeeded := big.Mul(quote.PerDay.Atto(), big.NewIntUnsigned(persistDays))

	depositNeeded := big.Zero()
	if !daysLeftAtMax.AtLeast(thresholdDays) {
		depositNeeded = big.Max(big.Sub(amountNeeded, available), big.Zero())
	}

	availableToFreeUp := big.Max(big.Sub(available, amountNeeded), big.Zero())

	// The payment manager always requests maximal allowances, so standing
	// approvals are sufficient exactly when they carry the sentinel.
	rateOK := orZero(account.RateAllowance).Equals(build.UnlimitedAllowance)
	lockupOK := orZero(account.LockupAllowance).Equals(build.UnlimitedAllowance)

	return &types.SolvencyReport{
		DepositNeeded:     types.AttoUSDFC(depositNeeded),
		AvailableToFreeUp: types.AttoUSDFC(availableToFreeUp),

		DaysLeftAtBurnRate:    daysLeft,
		DaysLeftAtMaxBurnRate: daysLeftAtMax,

		RateSufficient:   rateOK,
		LockupSufficient: lockupOK,
		Sufficient:       rateOK && lockupOK && daysLeftAtMax.AtLeast(thresholdDays),
	}
}

func orZero(n big.Int) big.Int {
	if n.Nil() {
		return big.Zero()
	}
	return n
}
