package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/filecoin-project/go-filpay/accountant"
	"github.com/filecoin-project/go-filpay/build"
	"github.com/filecoin-project/go-filpay/paymgr"
	"github.com/filecoin-project/go-filpay/pricing"
	"github.com/filecoin-project/go-filpay/types"
)

var fundCmd = &cli.Command{
	Name:  "fund",
	Usage: "Deposit into the storage payment escrow and set allowances",
	Description: `With --amount, deposits exactly that many USDFC. With --auto, runs a
balance check for the configured (or flagged) capacity and deposits the
computed shortfall, which may be nothing at all.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "amount",
			Usage: "deposit amount in USDFC, e.g. 2.5",
		},
		&cli.BoolFlag{
			Name:  "auto",
			Usage: "deposit whatever a balance check says is missing",
		},
		&cli.StringFlag{
			Name:  "capacity",
			Usage: "capacity for --auto, e.g. 150GiB (default from config)",
		},
		&cli.Uint64Flag{
			Name:  "days",
			Usage: "persistence period for --auto (default from config)",
		},
		&cli.Uint64Flag{
			Name:  "threshold",
			Usage: "notification threshold for --auto (default from config)",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.IsSet("amount") == cctx.Bool("auto") {
			return ShowHelp(cctx, fmt.Errorf("pass exactly one of --amount or --auto"))
		}

		srv, err := GetServices(cctx)
		if err != nil {
			return err
		}
		ctx := ReqContext(cctx)

		account, err := srv.Reader.PaymentAccount(ctx, srv.Wallet)
		if err != nil {
			return types.WrapErr(types.KindReadFailed, err)
		}
		allowancesOK := !account.RateAllowance.Nil() && account.RateAllowance.Equals(build.UnlimitedAllowance) &&
			!account.LockupAllowance.Nil() && account.LockupAllowance.Equals(build.UnlimitedAllowance)

		deposit := types.USDFC{}
		if cctx.Bool("auto") {
			capacity, days, threshold, err := storageParams(cctx, srv)
			if err != nil {
				return err
			}
			quote, err := pricing.NewOracle(srv.Reader).Quote(ctx, capacity)
			if err != nil {
				return err
			}
			report := accountant.Evaluate(account, quote, days, threshold)
			deposit = report.DepositNeeded
			allowancesOK = report.RateSufficient && report.LockupSufficient
		} else {
			deposit, err = types.ParseUSDFC(cctx.String("amount"))
			if err != nil {
				return ShowHelp(cctx, fmt.Errorf("parsing amount: %w", err))
			}
		}

		outcome, err := paymgr.NewManager(srv.Writer).EnsureFunded(ctx, deposit.Atto(), allowancesOK)
		printOutcome(cctx, deposit, outcome)
		return err
	},
}

func printOutcome(cctx *cli.Context, deposit types.USDFC, outcome *types.PaymentOutcome) {
	w := cctx.App.Writer

	switch {
	case outcome == nil:
	case outcome.Skipped:
		fmt.Fprintln(w, "Nothing to do: account already funded and approved")
	case outcome.Succeeded && outcome.MsgCid != nil:
		fmt.Fprintf(w, "%s deposited %s in message %s\n", color.GreenString("Funded:"), deposit, outcome.MsgCid)
	case outcome.Succeeded:
		fmt.Fprintf(w, "%s\n", color.GreenString("Funded"))
	default:
		fmt.Fprintf(w, "%s %s\n", color.RedString("Funding failed:"), outcome.Error)
	}
}
