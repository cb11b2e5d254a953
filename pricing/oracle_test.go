package pricing

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-filpay/api"
	"github.com/filecoin-project/go-filpay/build"
	"github.com/filecoin-project/go-filpay/mock"
	"github.com/filecoin-project/go-filpay/types"
)

// mainnet-shaped pricing used throughout: 2.5 USDFC/TiB/month with a 0.06
// monthly minimum. The clamp threshold works out to 0.024 TiB ≈ 24.576 GiB,
// which is not a whole byte count; this is the first size at or above it.
const clampThresholdBytes = uint64(26_388_279_067)

func TestQuoteAppliesMinimum(t *testing.T) {
	oracle := NewOracle(mock.NewBackend())
	ctx := context.Background()

	// Scenario: 1 GiB is far below the minimum-pricing threshold, so the
	// monthly cost is the network minimum exactly.
	q, err := oracle.Quote(ctx, build.BytesPerGiB)
	require.NoError(t, err)
	require.True(t, q.AppliedMinimum)
	require.Equal(t, "0.06", q.PerMonth.Unitless())
	require.Equal(t, "0.002", q.PerDay.Unitless())
}

func TestQuoteProportional(t *testing.T) {
	oracle := NewOracle(mock.NewBackend())
	ctx := context.Background()

	q, err := oracle.Quote(ctx, 150*build.BytesPerGiB)
	require.NoError(t, err)
	require.False(t, q.AppliedMinimum)
	require.Equal(t, "0.3662109375", q.PerMonth.Unitless())
	require.Equal(t, "0.01220703125", q.PerDay.Unitless())

	// perEpoch * epochsPerMonth never exceeds perMonth (integer division
	// truncates toward the account's favor).
	total := big.Mul(q.PerEpoch.Atto(), big.NewIntUnsigned(q.EpochsPerMonth))
	require.True(t, total.LessThanEqual(q.PerMonth.Atto()))
}

func TestQuoteClampThreshold(t *testing.T) {
	oracle := NewOracle(mock.NewBackend())
	ctx := context.Background()

	// At the threshold the proportional rate reaches the minimum and the
	// clamp no longer fires.
	q, err := oracle.Quote(ctx, clampThresholdBytes)
	require.NoError(t, err)
	require.False(t, q.AppliedMinimum)
	require.True(t, q.PerMonth.Atto().GreaterThanEqual(q.MinimumPricePerMonth))

	// One byte below, the clamp fires and the price is the minimum exactly.
	q, err = oracle.Quote(ctx, clampThresholdBytes-1)
	require.NoError(t, err)
	require.True(t, q.AppliedMinimum)
	require.Equal(t, "0.06", q.PerMonth.Unitless())
}

// Every positive size is priced at no less than the monthly minimum.
func TestQuoteNeverBelowMinimum(t *testing.T) {
	oracle := NewOracle(mock.NewBackend())
	ctx := context.Background()

	for _, size := range []uint64{1, build.BytesPerKiB, build.BytesPerGiB, clampThresholdBytes, build.BytesPerTiB, 100 * build.BytesPerTiB} {
		q, err := oracle.Quote(ctx, size)
		require.NoError(t, err)
		require.True(t, q.PerMonth.Atto().GreaterThanEqual(q.MinimumPricePerMonth), "size %d", size)
	}
}

func TestQuoteZeroSize(t *testing.T) {
	oracle := NewOracle(mock.NewBackend())

	_, err := oracle.Quote(context.Background(), 0)
	require.Error(t, err)
	require.Equal(t, types.KindInvalidInput, types.Kind(err))
}

// flakyReader fails a set number of reads before recovering, which the
// oracle should ride out: price reads are idempotent.
type flakyReader struct {
	api.ChainReader
	failures int
	calls    int
}

func (f *flakyReader) StoragePrice(ctx context.Context) (api.PriceTable, error) {
	f.calls++
	if f.calls <= f.failures {
		return api.PriceTable{}, xerrors.New("rpc unreachable")
	}
	return mock.NewBackend().Price, nil
}

func (f *flakyReader) WalletBalances(ctx context.Context, addr address.Address) (api.WalletBalances, error) {
	return api.WalletBalances{}, xerrors.New("not used")
}

func (f *flakyReader) PaymentAccount(ctx context.Context, addr address.Address) (api.AccountState, error) {
	return api.AccountState{}, xerrors.New("not used")
}

func TestQuoteRetriesReads(t *testing.T) {
	r := &flakyReader{failures: 2}

	q, err := NewOracle(r).Quote(context.Background(), build.BytesPerGiB)
	require.NoError(t, err)
	require.Equal(t, 3, r.calls)
	require.Equal(t, "0.06", q.PerMonth.Unitless())
}

func TestQuoteReadFailure(t *testing.T) {
	r := &flakyReader{failures: readAttempts + 1}

	_, err := NewOracle(r).Quote(context.Background(), build.BytesPerGiB)
	require.Error(t, err)
	require.Equal(t, types.KindReadFailed, types.Kind(err))
	require.Equal(t, readAttempts, r.calls)
}
