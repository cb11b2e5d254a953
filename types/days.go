package types

import (
	"fmt"

	"github.com/filecoin-project/go-state-types/big"

	"github.com/filecoin-project/go-filpay/build"
)

// Days is a runway projection in millidays. Fixed-point is deliberate:
// threshold comparisons must be exact at boundary values (a projection of
// exactly 45.000 days compares equal to a 45-day threshold), which float
// division does not guarantee.
type Days int64

const milli = 1000

// UnboundedDays is the reporting cap. A zero burn rate projects forever;
// both cases render and compare as the cap.
const UnboundedDays = Days(build.MaxReportedDays * milli)

// WholeDays converts a day count to its fixed-point form, saturating at
// the reporting cap.
func WholeDays(n uint64) Days {
	if n >= build.MaxReportedDays {
		return UnboundedDays
	}
	return Days(n * milli)
}

// DaysAtRate projects how many days funds last when burned at monthlyRate
// per 30 days. A zero or negative rate is an unbounded runway.
func DaysAtRate(funds big.Int, monthlyRate big.Int) Days {
	if monthlyRate.Nil() || monthlyRate.Sign() <= 0 {
		return UnboundedDays
	}
	if funds.Nil() || funds.Sign() <= 0 {
		return 0
	}
	md := big.Div(big.Mul(funds, big.NewInt(build.DaysInMonth*milli)), monthlyRate)
	if !md.IsInt64() || Days(md.Int64()) > UnboundedDays {
		return UnboundedDays
	}
	return Days(md.Int64())
}

// AtLeast reports whether the runway covers n whole days. An unbounded
// runway covers any threshold.
func (d Days) AtLeast(n uint64) bool {
	if d == UnboundedDays {
		return true
	}
	return d >= WholeDays(n)
}

func (d Days) String() string {
	if d >= UnboundedDays {
		return fmt.Sprintf("%d+ days", build.MaxReportedDays)
	}
	return fmt.Sprintf("%d.%03d days", d/milli, d%milli)
}

func (d Days) MarshalJSON() ([]byte, error) {
	if d >= UnboundedDays {
		return []byte(fmt.Sprintf(`"%d+"`, build.MaxReportedDays)), nil
	}
	return []byte(fmt.Sprintf(`"%d.%03d"`, d/milli, d%milli)), nil
}
