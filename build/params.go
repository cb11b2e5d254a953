package build

import (
	"github.com/filecoin-project/go-state-types/big"
)

// TokenPrecision is the number of indivisible units in one whole USDFC
// (atto-denominated, same as FIL).
const TokenPrecision = 1_000_000_000_000_000_000

const EpochDurationSeconds = 30

const (
	SecondsInDay  = 24 * 60 * 60
	EpochsInDay   = SecondsInDay / EpochDurationSeconds
	DaysInMonth   = 30
	EpochsInMonth = EpochsInDay * DaysInMonth
)

const (
	BytesPerKiB = uint64(1) << 10
	BytesPerGiB = uint64(1) << 30
	BytesPerTiB = uint64(1) << 40
)

// MessageConfidence is the number of epochs to wait on top of a message
// landing on chain before treating it as final for payment purposes.
const MessageConfidence = uint64(1)

// MaxReportedDays caps runway projections. A zero burn rate projects an
// unbounded runway, which is reported as this cap.
const MaxReportedDays = 9999

// Floors for user-supplied persistence settings. The storage network meters
// spend in whole months, so anything shorter than a month is not expressible.
const (
	MinPersistenceDays  = 30
	MinNotificationDays = 30
)

// UnlimitedAllowance is the sentinel the payment manager sets for both the
// rate and lockup allowances. The design always requests maximal allowances
// rather than the precisely computed amount; see paymgr.
var UnlimitedAllowance big.Int

func init() {
	UnlimitedAllowance = big.Sub(big.Lsh(big.NewInt(1), 256), big.NewInt(1))
}
