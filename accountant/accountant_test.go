package accountant

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-filpay/api"
	"github.com/filecoin-project/go-filpay/build"
	"github.com/filecoin-project/go-filpay/mock"
	"github.com/filecoin-project/go-filpay/pricing"
	"github.com/filecoin-project/go-filpay/types"
)

func quoteFor(t *testing.T, sizeBytes uint64) *types.PriceQuote {
	t.Helper()
	q, err := pricing.NewOracle(mock.NewBackend()).Quote(context.Background(), sizeBytes)
	require.NoError(t, err)
	return q
}

func emptyAccount() api.AccountState {
	return api.AccountState{
		AvailableFunds:  big.Zero(),
		RateAllowance:   big.Zero(),
		LockupAllowance: big.Zero(),
		RateUsed:        big.Zero(),
	}
}

func approvedAccount(funds types.USDFC) api.AccountState {
	return api.AccountState{
		AvailableFunds:  funds.Atto(),
		RateAllowance:   build.UnlimitedAllowance,
		LockupAllowance: build.UnlimitedAllowance,
		RateUsed:        big.Zero(),
	}
}

// Scenario: 150 GiB for a year against an empty account. The deposit is the
// full year's cost and nothing about the account is sufficient.
func TestEvaluateEmptyAccount(t *testing.T) {
	quote := quoteFor(t, 150*build.BytesPerGiB)

	report := Evaluate(emptyAccount(), quote, 365, 45)

	// perDay = 0.01220703125, times 365
	require.Equal(t, "4.45556640625", report.DepositNeeded.Unitless())
	require.Equal(t, "0", report.AvailableToFreeUp.Unitless())
	require.Equal(t, "0.000 days", report.DaysLeftAtMaxBurnRate.String())
	require.False(t, report.RateSufficient)
	require.False(t, report.LockupSufficient)
	require.False(t, report.Sufficient)
}

// Scenario: allowances at the unlimited sentinel and an effectively
// unbounded runway. Nothing to pay.
func TestEvaluateHealthyAccount(t *testing.T) {
	quote := quoteFor(t, 150*build.BytesPerGiB)

	report := Evaluate(approvedAccount(types.NewUSDFC(1000)), quote, 365, 45)

	require.Equal(t, "0", report.DepositNeeded.Unitless())
	require.Equal(t, types.UnboundedDays, report.DaysLeftAtBurnRate)
	require.True(t, report.DaysLeftAtMaxBurnRate.AtLeast(45))
	require.True(t, report.RateSufficient)
	require.True(t, report.LockupSufficient)
	require.True(t, report.Sufficient)
}

// A deposit is requested only when the runway at the requested capacity
// falls below the threshold, even if the raw amountNeeded math implies a
// shortfall.
func TestEvaluateThresholdGatesDeposit(t *testing.T) {
	quote := quoteFor(t, 150*build.BytesPerGiB)

	// Funds cover ~60 days at the max burn rate: above a 45-day threshold,
	// below the 365-day persistence ask.
	funds := types.AttoUSDFC(big.Mul(quote.PerDay.Atto(), big.NewInt(60)))
	report := Evaluate(approvedAccount(funds), quote, 365, 45)

	require.True(t, report.DaysLeftAtMaxBurnRate.AtLeast(45))
	require.Equal(t, "0", report.DepositNeeded.Unitless(), "deposit must be gated on the runway threshold")
	require.True(t, report.Sufficient)

	// Same account against a 90-day threshold is below the gate, and the
	// magnitude is the full persistence ask minus available funds.
	report = Evaluate(approvedAccount(funds), quote, 365, 90)
	require.False(t, report.DaysLeftAtMaxBurnRate.AtLeast(90))
	wantDeposit := big.Sub(big.Mul(quote.PerDay.Atto(), big.NewInt(365)), funds.Atto())
	require.True(t, report.DepositNeeded.Atto().Equals(wantDeposit))
	require.False(t, report.Sufficient)
}

// DepositNeeded and AvailableToFreeUp are both non-negative and never both
// positive for the same amountNeeded.
func TestEvaluateNeverBothPositive(t *testing.T) {
	quote := quoteFor(t, 150*build.BytesPerGiB)

	for _, funds := range []types.USDFC{
		types.AttoUSDFC(big.Zero()),
		types.MustParseUSDFC("0.5"),
		types.MustParseUSDFC("4.45556640625"),
		types.NewUSDFC(5),
		types.NewUSDFC(500),
	} {
		report := Evaluate(approvedAccount(funds), quote, 365, 45)
		require.True(t, report.DepositNeeded.Atto().GreaterThanEqual(big.Zero()))
		require.True(t, report.AvailableToFreeUp.Atto().GreaterThanEqual(big.Zero()))
		require.False(t,
			report.DepositNeeded.Atto().Sign() > 0 && report.AvailableToFreeUp.Atto().Sign() > 0,
			"funds %s", funds)
	}
}

// Increasing available funds while holding everything else fixed never flips
// sufficiency from true to false.
func TestEvaluateMonotonic(t *testing.T) {
	quote := quoteFor(t, 150*build.BytesPerGiB)

	sufficient := false
	for tokens := uint64(0); tokens <= 20; tokens++ {
		report := Evaluate(approvedAccount(types.NewUSDFC(tokens)), quote, 365, 45)
		if sufficient {
			require.True(t, report.Sufficient, "sufficiency regressed at %d tokens", tokens)
		}
		sufficient = report.Sufficient
	}
	require.True(t, sufficient)
}

// Evaluate is pure: identical inputs give identical reports.
func TestEvaluateIdempotent(t *testing.T) {
	quote := quoteFor(t, build.BytesPerGiB)
	account := approvedAccount(types.MustParseUSDFC("1.25"))

	a := Evaluate(account, quote, 365, 45)
	b := Evaluate(account, quote, 365, 45)
	require.Equal(t, a, b)
}

// Degenerate zero-rate quote: runway at the requested capacity is unbounded
// and sufficiency reduces to the allowance flags.
func TestEvaluateZeroRate(t *testing.T) {
	quote := &types.PriceQuote{
		SizeBytes:      1,
		EpochsPerMonth: build.EpochsInMonth,
		PerEpoch:       types.AttoUSDFC(big.Zero()),
		PerDay:         types.AttoUSDFC(big.Zero()),
		PerMonth:       types.AttoUSDFC(big.Zero()),
	}

	report := Evaluate(emptyAccount(), quote, 365, 45)
	require.Equal(t, types.UnboundedDays, report.DaysLeftAtMaxBurnRate)
	require.False(t, report.Sufficient, "allowances still insufficient")

	report = Evaluate(approvedAccount(types.AttoUSDFC(big.Zero())), quote, 365, 45)
	require.True(t, report.Sufficient)
}

// The current burn rate and the requested capacity rate are tracked
// separately: an account spending nothing today still projects a finite
// runway at the requested capacity.
func TestEvaluateTwoBurnRates(t *testing.T) {
	quote := quoteFor(t, 150*build.BytesPerGiB)

	account := approvedAccount(types.MustParseUSDFC("0.3662109375")) // one month at max rate
	account.RateUsed = big.Div(quote.PerEpoch.Atto(), big.NewInt(2))

	report := Evaluate(account, quote, 365, 45)
	require.Equal(t, "30.000 days", report.DaysLeftAtMaxBurnRate.String())
	require.True(t, report.DaysLeftAtBurnRate > report.DaysLeftAtMaxBurnRate)
}
