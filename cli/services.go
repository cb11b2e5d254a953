package cli

import (
	"context"

	"github.com/filecoin-project/go-address"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-filpay/api"
	"github.com/filecoin-project/go-filpay/mock"
	"github.com/filecoin-project/go-filpay/node/config"
	"github.com/filecoin-project/go-filpay/types"
)

// Services bundles the configured collaborators for one command invocation.
// Everything is constructed per invocation; there is no cached global
// client or signer.
type Services struct {
	Config *config.Config
	Wallet address.Address

	Reader api.ChainReader
	Writer api.ChainWriter
	Store  api.FileStore
}

// NewBackend builds the chain and storage collaborators from config.
// Programs embedding this CLI replace it with a real client; the default
// only supports --offline runs against the in-memory backend.
var NewBackend = func(ctx context.Context, cfg *config.Config) (api.ChainReader, api.ChainWriter, api.FileStore, error) {
	return nil, nil, nil, xerrors.Errorf("no chain backend wired in; pass --offline or embed a backend")
}

func GetServices(cctx *cli.Context) (*Services, error) {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return nil, xerrors.Errorf("loading config: %w", err)
	}

	walletStr := cfg.Wallet
	if cctx.IsSet("wallet") {
		walletStr = cctx.String("wallet")
	}

	if cctx.Bool("offline") {
		return offlineServices(cfg, walletStr)
	}

	if walletStr == "" {
		return nil, xerrors.Errorf("no wallet configured; set Wallet in config or pass --wallet")
	}
	wallet, err := address.NewFromString(walletStr)
	if err != nil {
		return nil, xerrors.Errorf("parsing wallet address %q: %w", walletStr, err)
	}

	reader, writer, store, err := NewBackend(ReqContext(cctx), cfg)
	if err != nil {
		return nil, err
	}
	return &Services{Config: cfg, Wallet: wallet, Reader: reader, Writer: writer, Store: store}, nil
}

// offlineServices runs every command against a prefunded in-memory chain.
// Useful for demos and for exercising the flow without touching a network.
func offlineServices(cfg *config.Config, walletStr string) (*Services, error) {
	wallet := address.TestAddress
	if walletStr != "" {
		var err error
		wallet, err = address.NewFromString(walletStr)
		if err != nil {
			return nil, xerrors.Errorf("parsing wallet address %q: %w", walletStr, err)
		}
	}

	b := mock.NewBackend()
	b.Native = types.MustParseUSDFC("1").Atto()
	b.Stable = types.MustParseUSDFC("100").Atto()

	return &Services{Config: cfg, Wallet: wallet, Reader: b, Writer: b, Store: b}, nil
}
