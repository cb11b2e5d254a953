package types

import (
	"testing"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-filpay/build"
)

func monthly(tokens string) big.Int {
	return MustParseUSDFC(tokens).Atto()
}

func TestDaysAtRate(t *testing.T) {
	testCases := map[string]struct {
		funds big.Int
		rate  big.Int
		want  string
	}{
		"one month of funds":   {funds: monthly("3"), rate: monthly("3"), want: "30.000 days"},
		"half month":           {funds: monthly("1.5"), rate: monthly("3"), want: "15.000 days"},
		"fractional":           {funds: monthly("1"), rate: monthly("3"), want: "10.000 days"},
		"sub-day precision":    {funds: monthly("0.1"), rate: monthly("3"), want: "1.000 days"},
		"zero rate unbounded":  {funds: monthly("1"), rate: big.Zero(), want: "9999+ days"},
		"zero funds":           {funds: big.Zero(), rate: monthly("3"), want: "0.000 days"},
		"huge runway capped":   {funds: monthly("100000000"), rate: monthly("0.01"), want: "9999+ days"},
		"nil rate unbounded":   {funds: monthly("1"), rate: big.Int{}, want: "9999+ days"},
		"truncates not rounds": {funds: big.NewInt(1), rate: monthly("3"), want: "0.000 days"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, DaysAtRate(tc.funds, tc.rate).String())
		})
	}
}

// A projection of exactly the threshold must satisfy the threshold. This is
// the boundary the fixed-point representation exists for.
func TestDaysExactBoundary(t *testing.T) {
	// funds/rate*30 = exactly 45 days
	funds := monthly("4.5")
	rate := monthly("3")

	d := DaysAtRate(funds, rate)
	require.Equal(t, "45.000 days", d.String())
	require.True(t, d.AtLeast(45))
	require.False(t, d.AtLeast(46))

	// One atto less than exactly 45 days of funds must not satisfy 45.
	d = DaysAtRate(big.Sub(funds, big.NewInt(1)), rate)
	require.False(t, d.AtLeast(45))
	require.True(t, d.AtLeast(44))
}

func TestDaysUnbounded(t *testing.T) {
	d := DaysAtRate(monthly("1"), big.Zero())
	require.Equal(t, UnboundedDays, d)
	require.True(t, d.AtLeast(build.MaxReportedDays))
	require.True(t, d.AtLeast(1<<40))
}

func TestWholeDays(t *testing.T) {
	require.Equal(t, "45.000 days", WholeDays(45).String())
	require.Equal(t, UnboundedDays, WholeDays(100000))
}

// JSON output mirrors String: a capped runway is rendered as the cap, not
// as a plain figure a consumer could mistake for an exact projection.
func TestDaysMarshalJSON(t *testing.T) {
	out, err := DaysAtRate(monthly("4.5"), monthly("3")).MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `"45.000"`, string(out))

	out, err = UnboundedDays.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `"9999+"`, string(out))
}
