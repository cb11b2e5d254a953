package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/filecoin-project/go-filpay/build"
	"github.com/filecoin-project/go-filpay/pipeline"
	"github.com/filecoin-project/go-filpay/types"
)

var uploadCmd = &cli.Command{
	Name:      "upload",
	Usage:     "Upload a file, funding the payment account first if needed",
	ArgsUsage: "[filePath]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "dataset",
			Usage: "dataset to add the piece to",
		},
		&cli.BoolFlag{
			Name:  "cdn",
			Usage: "enable CDN retrieval for the piece",
		},
		&cli.StringSliceFlag{
			Name:  "metadata",
			Usage: "piece metadata as key=value, up to 4 entries",
		},
		&cli.Uint64Flag{
			Name:  "days",
			Usage: "persistence period in days (default from config)",
		},
		&cli.Uint64Flag{
			Name:  "threshold",
			Usage: "notification threshold in days (default from config)",
		},
		&cli.BoolFlag{
			Name:  "no-auto-fund",
			Usage: "fail instead of depositing when the account is short",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return ShowHelp(cctx, fmt.Errorf("'upload' expects one argument, the file path"))
		}

		srv, err := GetServices(cctx)
		if err != nil {
			return err
		}
		ctx := ReqContext(cctx)

		metadata, err := parseMetadata(cctx.StringSlice("metadata"))
		if err != nil {
			return ShowHelp(cctx, err)
		}

		days := srv.Config.DefaultPersistenceDays
		if cctx.IsSet("days") {
			days = cctx.Uint64("days")
		}
		if days < build.MinPersistenceDays {
			return ShowHelp(cctx, fmt.Errorf("persistence period must be at least %d days", build.MinPersistenceDays))
		}
		threshold := srv.Config.DefaultNotificationDays
		if cctx.IsSet("threshold") {
			threshold = cctx.Uint64("threshold")
		}
		if threshold < build.MinNotificationDays {
			return ShowHelp(cctx, fmt.Errorf("notification threshold must be at least %d days", build.MinNotificationDays))
		}

		p := pipeline.New(srv.Reader, srv.Writer, srv.Store, srv.Wallet)
		report := p.Run(ctx, pipeline.UploadRequest{
			Path:          cctx.Args().First(),
			DatasetID:     cctx.String("dataset"),
			CDN:           cctx.Bool("cdn"),
			Metadata:      metadata,
			PersistDays:   days,
			ThresholdDays: threshold,
			AutoFund:      !cctx.Bool("no-auto-fund"),
		})

		w := cctx.App.Writer
		for _, ev := range report.Events {
			fmt.Fprintln(w, ev)
		}

		if !report.Succeeded {
			return fmt.Errorf("upload failed (%s): %s", report.ErrorKind, report.Error)
		}

		fmt.Fprintf(w, "%s %s (%s)\n", color.GreenString("Stored:"), report.FileName, humanize.IBytes(report.FileSizeBytes))
		fmt.Fprintf(w, "Piece:       %s\n", report.PieceCid)
		if report.PaymentCid != "" {
			fmt.Fprintf(w, "Payment msg: %s\n", report.PaymentCid)
		}
		if report.ProofCid != "" {
			fmt.Fprintf(w, "Proof msg:   %s\n", report.ProofCid)
		}
		return nil
	},
}

func parseMetadata(kvs []string) (map[string]string, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	if len(kvs) > pipeline.MaxMetadataEntries {
		return nil, types.Errorf(types.KindInvalidInput, "at most %d metadata entries allowed", pipeline.MaxMetadataEntries)
	}
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		k, v, found := strings.Cut(kv, "=")
		if !found || k == "" {
			return nil, types.Errorf(types.KindInvalidInput, "metadata entry %q is not key=value", kv)
		}
		m[k] = v
	}
	return m, nil
}
