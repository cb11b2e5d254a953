package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	lcli "github.com/filecoin-project/go-filpay/cli"
	"github.com/filecoin-project/go-filpay/node/config"
)

func main() {
	logging.SetLogLevel("*", "INFO") //nolint:errcheck
	if os.Getenv("FILPAY_DEBUG") != "" {
		logging.SetDebugLogging()
	}

	app := &cli.App{
		Name:    "filpay",
		Usage:   "Solvency-checked payments for Filecoin storage",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the filpay config file",
				Value: config.DefaultPath,
			},
			&cli.StringFlag{
				Name:  "wallet",
				Usage: "paying account, overrides the configured wallet",
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "run against an in-memory chain (demo mode)",
			},
		},
		Commands: lcli.Commands,
	}
	app.Setup()

	lcli.RunApp(app)
}
