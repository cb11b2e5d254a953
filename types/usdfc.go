package types

import (
	"encoding/json"
	"fmt"
	big2 "math/big"
	"strings"

	"github.com/filecoin-project/go-state-types/big"

	"github.com/filecoin-project/go-filpay/build"
)

// USDFC is an amount of the stable token, denominated in atto units
// (10^-18). All arithmetic happens on the embedded integer; this type only
// adds parsing and display.
type USDFC big.Int

var zeroUSDFC = big.Zero()

// NewUSDFC returns an amount of n whole tokens.
func NewUSDFC(n uint64) USDFC {
	return USDFC(big.Mul(big.NewIntUnsigned(n), big.NewInt(build.TokenPrecision)))
}

// AttoUSDFC returns an amount directly in atto units.
func AttoUSDFC(n big.Int) USDFC {
	return USDFC(n)
}

func (f USDFC) Atto() big.Int {
	if f.Int == nil {
		return zeroUSDFC
	}
	return big.Int(f)
}

func (f USDFC) IsZero() bool {
	return f.Int == nil || f.Int.Sign() == 0
}

// Unitless renders the amount as a plain decimal, with trailing zeros
// trimmed.
func (f USDFC) Unitless() string {
	if f.Int == nil {
		return "0"
	}
	r := new(big2.Rat).SetFrac(f.Int, big2.NewInt(build.TokenPrecision))
	res := strings.TrimRight(r.FloatString(18), "0")
	return strings.TrimRight(res, ".")
}

func (f USDFC) String() string {
	return f.Unitless() + " USDFC"
}

// ParseUSDFC parses a decimal token amount. An optional "USDFC" or
// "attoUSDFC" suffix selects the unit; the default is whole tokens.
func ParseUSDFC(s string) (USDFC, error) {
	suffix := strings.TrimLeft(s, "-.1234567890")
	s = s[:len(s)-len(suffix)]
	var attoScale bool

	if suffix != "" {
		norm := strings.ToLower(strings.TrimSpace(suffix))
		switch norm {
		case "usdfc":
		case "attousdfc", "ausdfc":
			attoScale = true
		default:
			return USDFC{}, fmt.Errorf("unrecognized token unit suffix: %q", suffix)
		}
	}

	r, ok := new(big2.Rat).SetString(s)
	if !ok {
		return USDFC{}, fmt.Errorf("failed to parse %q as a decimal number", s)
	}

	if !attoScale {
		r = r.Mul(r, big2.NewRat(build.TokenPrecision, 1))
	}
	if !r.IsInt() {
		return USDFC{}, fmt.Errorf("invalid USDFC value: %q (sub-atto precision)", s)
	}

	return USDFC{r.Num()}, nil
}

// MustParseUSDFC is ParseUSDFC for statically known inputs.
func MustParseUSDFC(s string) USDFC {
	n, err := ParseUSDFC(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (f USDFC) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Unitless())
}

func (f *USDFC) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n, err := ParseUSDFC(s)
	if err != nil {
		return err
	}
	*f = n
	return nil
}
