package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"microlend/crypto"
	"microlend/native/lending"
)

// Config captures the runtime configuration for a microlend node.
type Config struct {
	RPCAddress   string `toml:"RPCAddress"`
	GenesisOwner string `toml:"GenesisOwner"`
	// DataDir holds the LevelDB directory for the reputation ledger. Empty
	// keeps the ledger in memory.
	DataDir string `toml:"DataDir"`
	// DevClock exposes the node_advanceBlocks RPC method. In production the
	// host environment advances the block height; the dev clock stands in for
	// it on local deployments.
	DevClock bool `toml:"DevClock"`

	LogFile       string `toml:"LogFile"`
	LogMaxSizeMB  int    `toml:"LogMaxSizeMB"`
	LogMaxBackups int    `toml:"LogMaxBackups"`
	LogMaxAgeDays int    `toml:"LogMaxAgeDays"`

	Lending LendingConfig `toml:"lending"`
}

// LendingConfig carries the risk limits applied when accepting loan requests.
// Zero values fall back to the engine defaults.
type LendingConfig struct {
	MinCollateralRatioBps uint64 `toml:"MinCollateralRatioBps"`
	MinDurationBlocks     uint64 `toml:"MinDurationBlocks"`
	MaxDurationBlocks     uint64 `toml:"MaxDurationBlocks"`
	MaxInterestRateBps    uint64 `toml:"MaxInterestRateBps"`
}

// RiskParameters converts the configuration into engine limits.
func (c LendingConfig) RiskParameters() lending.RiskParameters {
	return lending.RiskParameters{
		MinCollateralRatioBps: c.MinCollateralRatioBps,
		MinDurationBlocks:     c.MinDurationBlocks,
		MaxDurationBlocks:     c.MaxDurationBlocks,
		MaxInterestRateBps:    c.MaxInterestRateBps,
	}.Normalize()
}

// Owner decodes the configured genesis administrator address.
func (c *Config) Owner() (crypto.Address, error) {
	trimmed := strings.TrimSpace(c.GenesisOwner)
	if trimmed == "" {
		return crypto.Address{}, fmt.Errorf("config: GenesisOwner required")
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return crypto.Address{}, fmt.Errorf("config: invalid GenesisOwner: %w", err)
	}
	return addr, nil
}

// Load loads the configuration from the given path, creating a default file
// with a freshly generated owner identity when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8645"
	}
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate owner key: %w", err)
	}
	owner := key.PubKey().Address()

	cfg := &Config{
		RPCAddress:   "127.0.0.1:8645",
		GenesisOwner: owner.String(),
		DevClock:     true,
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	keyPath := filepath.Join(dir, "owner.key")
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key.Bytes())), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write owner key: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
