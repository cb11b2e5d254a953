package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/filecoin-project/go-filpay/accountant"
	"github.com/filecoin-project/go-filpay/build"
	"github.com/filecoin-project/go-filpay/pricing"
	"github.com/filecoin-project/go-filpay/types"
)

var balanceCmd = &cli.Command{
	Name:  "balance",
	Usage: "Check whether the payment account can sustain the requested storage",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "capacity",
			Usage: "storage capacity to price, e.g. 150GiB (default from config)",
		},
		&cli.Uint64Flag{
			Name:  "days",
			Usage: "persistence period in days, minimum 30 (default from config)",
		},
		&cli.Uint64Flag{
			Name:  "threshold",
			Usage: "notification threshold in days, minimum 30 (default from config)",
		},
	},
	Action: func(cctx *cli.Context) error {
		srv, err := GetServices(cctx)
		if err != nil {
			return err
		}
		ctx := ReqContext(cctx)

		capacity, days, threshold, err := storageParams(cctx, srv)
		if err != nil {
			return err
		}

		quote, err := pricing.NewOracle(srv.Reader).Quote(ctx, capacity)
		if err != nil {
			return err
		}

		account, err := srv.Reader.PaymentAccount(ctx, srv.Wallet)
		if err != nil {
			return types.WrapErr(types.KindReadFailed, err)
		}

		report := accountant.Evaluate(account, quote, days, threshold)
		printReport(cctx, capacity, days, quote, report)
		return nil
	},
}

// storageParams resolves capacity/days/threshold from flags with config
// defaults, enforcing the 30-day floors.
func storageParams(cctx *cli.Context, srv *Services) (capacity, days, threshold uint64, err error) {
	capacity = srv.Config.DefaultCapacityGiB * build.BytesPerGiB
	if cctx.IsSet("capacity") {
		capacity, err = humanize.ParseBytes(cctx.String("capacity"))
		if err != nil {
			return 0, 0, 0, ShowHelp(cctx, fmt.Errorf("parsing capacity: %w", err))
		}
	}
	if capacity == 0 {
		return 0, 0, 0, ShowHelp(cctx, fmt.Errorf("capacity must be positive"))
	}

	days = srv.Config.DefaultPersistenceDays
	if cctx.IsSet("days") {
		days = cctx.Uint64("days")
	}
	if days < build.MinPersistenceDays {
		return 0, 0, 0, ShowHelp(cctx, fmt.Errorf("persistence period must be at least %d days", build.MinPersistenceDays))
	}

	threshold = srv.Config.DefaultNotificationDays
	if cctx.IsSet("threshold") {
		threshold = cctx.Uint64("threshold")
	}
	if threshold < build.MinNotificationDays {
		return 0, 0, 0, ShowHelp(cctx, fmt.Errorf("notification threshold must be at least %d days", build.MinNotificationDays))
	}

	return capacity, days, threshold, nil
}

func printReport(cctx *cli.Context, capacity, days uint64, quote *types.PriceQuote, report *types.SolvencyReport) {
	w := cctx.App.Writer

	minNote := ""
	if quote.AppliedMinimum {
		minNote = " (network minimum applied)"
	}
	fmt.Fprintf(w, "Capacity:            %s for %d days\n", humanize.IBytes(capacity), days)
	fmt.Fprintf(w, "Cost:                %s/month%s, %s/day, %s/epoch\n",
		quote.PerMonth.Unitless(), minNote, quote.PerDay.Unitless(), quote.PerEpoch.Unitless())
	fmt.Fprintf(w, "Deposit needed:      %s\n", report.DepositNeeded)
	fmt.Fprintf(w, "Could free up:       %s\n", report.AvailableToFreeUp)
	fmt.Fprintf(w, "Runway (current):    %s\n", report.DaysLeftAtBurnRate)
	fmt.Fprintf(w, "Runway (requested):  %s\n", report.DaysLeftAtMaxBurnRate)
	fmt.Fprintf(w, "Rate allowance:      %s\n", okness(report.RateSufficient))
	fmt.Fprintf(w, "Lockup allowance:    %s\n", okness(report.LockupSufficient))

	if report.Sufficient {
		fmt.Fprintln(w, color.GreenString("Account is solvent for the requested storage"))
	} else {
		fmt.Fprintln(w, color.RedString("Account cannot sustain the requested storage"))
	}
}

func okness(ok bool) string {
	if ok {
		return "sufficient"
	}
	return "insufficient"
}
