package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Storage backends selectable for DataDir.
const (
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

// Config is the on-disk configuration of the incentive tooling. Quantities
// are decimal strings scaled to 18 decimals on resolution.
type Config struct {
	Owner         string `toml:"Owner"`
	Vault         string `toml:"Vault"`
	Token         string `toml:"Token"`
	RewardReserve string `toml:"RewardReserve"`
	BonusReserve  string `toml:"BonusReserve"`
	DataDir       string `toml:"DataDir"`
	Backend       string `toml:"Backend"`
	LogFile       string `toml:"LogFile"`
	Environment   string `toml:"Environment"`
	LogLevel      string `toml:"LogLevel"`

	Reward  RewardConfig  `toml:"Reward"`
	Bonus   BonusConfig   `toml:"Bonus"`
	Metrics MetricsConfig `toml:"Metrics"`
}

// RewardConfig holds the reward engine parameters and target weights.
type RewardConfig struct {
	Factor         string         `toml:"Factor"`
	MaxRewardPerc  string         `toml:"MaxRewardPerc"`
	MaxPenaltyPerc string         `toml:"MaxPenaltyPerc"`
	Targets        []TargetConfig `toml:"Targets"`
}

type TargetConfig struct {
	Asset  string `toml:"Asset"`
	Weight string `toml:"Weight"`
}

// BonusConfig holds the bonus engine parameters.
type BonusConfig struct {
	AmountMultiplier string   `toml:"AmountMultiplier"`
	RewardMultiplier string   `toml:"RewardMultiplier"`
	MinimumAmount    string   `toml:"MinimumAmount"`
	MaximumBonus     string   `toml:"MaximumBonus"`
	Paused           bool     `toml:"Paused"`
	Assets           []string `toml:"Assets"`
}

type MetricsConfig struct {
	ListenAddress string `toml:"ListenAddress"`
}

// Load loads the configuration from the given path. A missing file is
// created with defaults so operators have a template to fill in.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown key %s", path, undecoded[0].String())
	}
	cfg.normalize()
	return cfg, nil
}

func (cfg *Config) normalize() {
	cfg.Owner = strings.TrimSpace(cfg.Owner)
	cfg.Vault = strings.TrimSpace(cfg.Vault)
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.RewardReserve = strings.TrimSpace(cfg.RewardReserve)
	cfg.BonusReserve = strings.TrimSpace(cfg.BonusReserve)
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = BackendLevelDB
	}
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)
	cfg.Environment = strings.TrimSpace(cfg.Environment)
	if cfg.Environment == "" {
		cfg.Environment = "dev"
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.Metrics.ListenAddress = strings.TrimSpace(cfg.Metrics.ListenAddress)
	for i := range cfg.Reward.Targets {
		cfg.Reward.Targets[i].Asset = strings.TrimSpace(cfg.Reward.Targets[i].Asset)
	}
	for i := range cfg.Bonus.Assets {
		cfg.Bonus.Assets[i] = strings.TrimSpace(cfg.Bonus.Assets[i])
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		Backend:     BackendLevelDB,
		Environment: "dev",
		LogLevel:    "info",
		Reward: RewardConfig{
			Factor:         "0",
			MaxRewardPerc:  "0",
			MaxPenaltyPerc: "0",
			Targets:        []TargetConfig{},
		},
		Bonus: BonusConfig{
			AmountMultiplier: "0",
			RewardMultiplier: "0",
			MinimumAmount:    "0",
			MaximumBonus:     "0",
			Assets:           []string{},
		},
	}
	if err := Save(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating the parent directory.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
