package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-filpay/node/config"
)

var configCmd = &cli.Command{
	Name:  "config",
	Usage: "Manage the filpay configuration file",
	Subcommands: []*cli.Command{
		configDefaultCmd,
		configInitCmd,
	},
}

var configDefaultCmd = &cli.Command{
	Name:  "default",
	Usage: "Print the default configuration",
	Action: func(cctx *cli.Context) error {
		return toml.NewEncoder(cctx.App.Writer).Encode(config.Default())
	},
}

var configInitCmd = &cli.Command{
	Name:  "init",
	Usage: "Write a default configuration file",
	Action: func(cctx *cli.Context) error {
		path, err := homedir.Expand(cctx.String("config"))
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return xerrors.Errorf("config file %s already exists, refusing to overwrite", path)
		}
		if err := config.WriteFile(path, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "wrote %s\n", path)
		return nil
	},
}
