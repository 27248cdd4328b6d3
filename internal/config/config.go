package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"tonmaster/internal/game"
)

const envPrefix = "TONMASTER_"

type Config struct {
	App     AppConfig     `koanf:"app"`
	HTTP    HTTPConfig    `koanf:"http"`
	Gemini  GeminiConfig  `koanf:"gemini"`
	Rewards RewardsConfig `koanf:"rewards"`
	Player  PlayerConfig  `koanf:"player"`
}

type AppConfig struct {
	Name     string `koanf:"name"`
	HTTPAddr string `koanf:"http_addr"`
	LogLevel string `koanf:"log_level"`
	LogFile  string `koanf:"log_file"`
}

type HTTPConfig struct {
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// GeminiConfig switches live scenario generation on when APIKey is set.
type GeminiConfig struct {
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// RewardsConfig holds the game policy. Amounts are decimal strings.
type RewardsConfig struct {
	Fraction    string        `koanf:"fraction"`
	XP          int           `koanf:"xp"`
	Tolerance   string        `koanf:"tolerance"`
	SuccessHold time.Duration `koanf:"success_hold"`
	FailureHold time.Duration `koanf:"failure_hold"`
}

// PlayerConfig overrides the starting save. Zero values keep the seed.
type PlayerConfig struct {
	MerchantName string `koanf:"merchant_name"`
	Balance      string `koanf:"balance"`
	XP           int    `koanf:"xp"`
	Level        int    `koanf:"level"`
}

func Default() Config {
	p := game.DefaultPolicy()
	return Config{
		App: AppConfig{
			Name:     "tonmaster",
			HTTPAddr: ":8080",
			LogLevel: "info",
			LogFile:  "./logs/tonmaster.log",
		},
		HTTP: HTTPConfig{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.5-flash",
			Timeout: 8 * time.Second,
		},
		Rewards: RewardsConfig{
			Fraction:    p.RewardFraction.String(),
			XP:          p.FixedXP,
			Tolerance:   p.AmountTolerance.String(),
			SuccessHold: p.SuccessHold,
			FailureHold: p.FailureHold,
		},
	}
}

// Load layers <dir>/base.yaml, <dir>/<envName>.yaml and TONMASTER_* variables
// (nested with __) over the defaults. A .env file in the working directory is
// read first; both yaml files are optional.
func Load(dir, envName string) (Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := loadFile(k, filepath.Join(dir, "base.yaml")); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}
	if envName != "" {
		if err := loadFile(k, filepath.Join(dir, envName+".yaml")); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envName, err)
		}
	}

	// e.g. TONMASTER_GEMINI__API_KEY, TONMASTER_REWARDS__FRACTION
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyCredentialAliases()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	err := k.Load(file.Provider(path), yaml.Parser())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// applyCredentialAliases picks up the plain variable names people already
// export for Gemini.
func (c *Config) applyCredentialAliases() {
	for _, name := range []string{"GEMINI_API_KEY", "API_KEY"} {
		if c.Gemini.APIKey != "" {
			return
		}
		c.Gemini.APIKey = strings.TrimSpace(os.Getenv(name))
	}
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("gemini.timeout must be positive")
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.Player.Balance != "" {
		if _, err := decimal.NewFromString(c.Player.Balance); err != nil {
			return fmt.Errorf("player.balance: %w", err)
		}
	}
	return nil
}

// Policy builds the game policy from the rewards section.
func (c Config) Policy() (game.Policy, error) {
	fraction, err := decimal.NewFromString(c.Rewards.Fraction)
	if err != nil {
		return game.Policy{}, fmt.Errorf("rewards.fraction: %w", err)
	}
	tolerance, err := decimal.NewFromString(c.Rewards.Tolerance)
	if err != nil {
		return game.Policy{}, fmt.Errorf("rewards.tolerance: %w", err)
	}
	p := game.Policy{
		RewardFraction:  fraction,
		FixedXP:         c.Rewards.XP,
		AmountTolerance: tolerance,
		SuccessHold:     c.Rewards.SuccessHold,
		FailureHold:     c.Rewards.FailureHold,
	}
	if err := p.Validate(); err != nil {
		return game.Policy{}, err
	}
	return p, nil
}

// Seed returns the starting player state with configured overrides applied.
func (c Config) Seed(now time.Time) game.PlayerState {
	s := game.SeedPlayer(now)
	if name := strings.TrimSpace(c.Player.MerchantName); name != "" {
		s.MerchantName = name
	}
	if b, err := decimal.NewFromString(c.Player.Balance); err == nil {
		s.Balance = b
	}
	if c.Player.XP > 0 {
		s.XP = c.Player.XP
	}
	if c.Player.Level > 0 {
		s.Level = c.Player.Level
	}
	slices.Sort(s.UnlockedItems)
	return s
}
