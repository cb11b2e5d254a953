package pricing

import (
	"context"
	"time"

	"github.com/filecoin-project/go-state-types/big"
	logging "github.com/ipfs/go-log/v2"
	"github.com/jpillora/backoff"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-filpay/api"
	"github.com/filecoin-project/go-filpay/build"
	"github.com/filecoin-project/go-filpay/types"
)

var log = logging.Logger("pricing")

const readAttempts = 5

// Oracle quotes storage cost for a payload size from the on-chain price
// table. The table is fetched per quote; the arithmetic is deterministic
// integer math so a quote can be replayed against the ledger exactly.
type Oracle struct {
	reader api.ChainReader
}

func NewOracle(reader api.ChainReader) *Oracle {
	return &Oracle{reader: reader}
}

// Quote prices sizeBytes of storage. The monthly cost is the
// size-proportional rate, clamped up to the network's monthly minimum for
// small payloads.
func (o *Oracle) Quote(ctx context.Context, sizeBytes uint64) (*types.PriceQuote, error) {
	if sizeBytes == 0 {
		return nil, types.Errorf(types.KindInvalidInput, "cannot quote zero-size payload")
	}

	table, err := o.fetchTable(ctx)
	if err != nil {
		return nil, types.WrapErr(types.KindReadFailed, xerrors.Errorf("fetching price table: %w", err))
	}
	if table.EpochsPerMonth == 0 {
		return nil, types.Errorf(types.KindReadFailed, "price table reports zero epochs per month")
	}

	perMonth := big.Div(
		big.Mul(table.PricePerTiBPerMonth, big.NewIntUnsigned(sizeBytes)),
		big.NewIntUnsigned(build.BytesPerTiB),
	)

	appliedMinimum := false
	if perMonth.LessThan(table.MinimumPricePerMonth) {
		perMonth = table.MinimumPricePerMonth
		appliedMinimum = true
	}

	quote := &types.PriceQuote{
		SizeBytes:            sizeBytes,
		PricePerTiBPerMonth:  table.PricePerTiBPerMonth,
		MinimumPricePerMonth: table.MinimumPricePerMonth,
		EpochsPerMonth:       table.EpochsPerMonth,

		PerEpoch: types.AttoUSDFC(big.Div(perMonth, big.NewIntUnsigned(table.EpochsPerMonth))),
		PerDay:   types.AttoUSDFC(big.Div(perMonth, big.NewInt(build.DaysInMonth))),
		PerMonth: types.AttoUSDFC(perMonth),

		AppliedMinimum: appliedMinimum,
	}

	log.Debugw("quoted storage", "size", sizeBytes, "perMonth", quote.PerMonth.Unitless(), "appliedMinimum", appliedMinimum)
	return quote, nil
}

// fetchTable retries the price read a few times. Reads are idempotent, so
// bounded retry is safe here in a way it is not for message pushes.
func (o *Oracle) fetchTable(ctx context.Context) (api.PriceTable, error) {
	b := &backoff.Backoff{Min: 100 * time.Millisecond, Max: 2 * time.Second, Factor: 2}

	var lastErr error
	for i := 0; i < readAttempts; i++ {
		table, err := o.reader.StoragePrice(ctx)
		if err == nil {
			return table, nil
		}
		lastErr = err
		log.Warnw("price table read failed", "attempt", i+1, "error", err)

		select {
		case <-ctx.Done():
			return api.PriceTable{}, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
	return api.PriceTable{}, lastErr
}
