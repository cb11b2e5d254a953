package cli

import (
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("cli")

var Commands = []*cli.Command{
	balanceCmd,
	fundCmd,
	uploadCmd,
	configCmd,
}
