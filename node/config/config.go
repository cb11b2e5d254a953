// Package config holds the filpay client configuration: a TOML file under
// the filpay directory, overridable per-field with FILPAY_* environment
// variables, validated once at load.
package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/filecoin-project/go-address"
	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-filpay/build"
)

const DefaultPath = "~/.filpay/config.toml"

type Config struct {
	// ChainRPC is the endpoint of the chain node used for balance reads and
	// message submission.
	ChainRPC string `toml:"ChainRPC" envconfig:"CHAIN_RPC"`

	// StorageEndpoint is the storage network service uploads go through.
	StorageEndpoint string `toml:"StorageEndpoint" envconfig:"STORAGE_ENDPOINT"`

	// Wallet is the paying account.
	Wallet string `toml:"Wallet" envconfig:"WALLET"`

	// DefaultCapacityGiB is the capacity assumed by balance checks when the
	// caller does not name one.
	DefaultCapacityGiB uint64 `toml:"DefaultCapacityGiB" envconfig:"DEFAULT_CAPACITY_GIB"`

	// DefaultPersistenceDays is how long uploads should stay paid for.
	// Floor of 30: the network meters spend in whole months.
	DefaultPersistenceDays uint64 `toml:"DefaultPersistenceDays" envconfig:"DEFAULT_PERSISTENCE_DAYS"`

	// DefaultNotificationDays is the runway below which a top-up is
	// requested. Floor of 30.
	DefaultNotificationDays uint64 `toml:"DefaultNotificationDays" envconfig:"DEFAULT_NOTIFICATION_DAYS"`
}

func Default() *Config {
	return &Config{
		ChainRPC:                "https://api.node.glif.io/rpc/v1",
		StorageEndpoint:         "",
		Wallet:                  "",
		DefaultCapacityGiB:      10,
		DefaultPersistenceDays:  365,
		DefaultNotificationDays: 45,
	}
}

// FromFile loads path, falling back to def when the file does not exist.
func FromFile(path string, def *Config) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, xerrors.Errorf("expanding config path: %w", err)
	}

	file, err := os.Open(path)
	switch {
	case os.IsNotExist(err):
		if def == nil {
			return nil, xerrors.Errorf("config file %s not found", path)
		}
		cfg := *def
		return &cfg, nil
	case err != nil:
		return nil, err
	}
	defer file.Close() //nolint:errcheck // file is read-only

	return FromReader(file, def)
}

func FromReader(reader io.Reader, def *Config) (*Config, error) {
	var cfg Config
	if def != nil {
		cfg = *def
	}
	if _, err := toml.NewDecoder(reader).Decode(&cfg); err != nil {
		return nil, xerrors.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overlays FILPAY_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	return envconfig.Process("FILPAY", cfg)
}

// Load is the full startup path: file, then environment, then validation.
func Load(path string) (*Config, error) {
	cfg, err := FromFile(path, Default())
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, xerrors.Errorf("applying environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DefaultCapacityGiB == 0 {
		return xerrors.Errorf("DefaultCapacityGiB must be positive")
	}
	if c.DefaultPersistenceDays < build.MinPersistenceDays {
		return xerrors.Errorf("DefaultPersistenceDays %d is below the %d-day floor", c.DefaultPersistenceDays, build.MinPersistenceDays)
	}
	if c.DefaultNotificationDays < build.MinNotificationDays {
		return xerrors.Errorf("DefaultNotificationDays %d is below the %d-day floor", c.DefaultNotificationDays, build.MinNotificationDays)
	}
	if c.Wallet != "" {
		if _, err := address.NewFromString(c.Wallet); err != nil {
			return xerrors.Errorf("parsing Wallet address %q: %w", c.Wallet, err)
		}
	}
	return nil
}

// WriteFile persists cfg, creating parent directories as needed.
func WriteFile(path string, cfg *Config) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return xerrors.Errorf("expanding config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return xerrors.Errorf("making config parent directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return xerrors.Errorf("creating config file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	return toml.NewEncoder(f).Encode(cfg)
}
