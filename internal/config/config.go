// Package config loads the bot configuration: TOML file over defaults,
// with the Telegram token overridable from the environment so the
// secret can stay out of the file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"breadbot/internal/economy"
)

const TokenEnv = "TELEGRAM_BOT_TOKEN"

type Config struct {
	Telegram Telegram `toml:"telegram"`
	Storage  Storage  `toml:"storage"`
	API      API      `toml:"api"`
	Players  Players  `toml:"players"`
	Economy  Economy  `toml:"economy"`
}

type Telegram struct {
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"` // long-poll timeout
	Debug          bool   `toml:"debug"`
}

type Storage struct {
	Backend string `toml:"backend"` // "file" or "sqlite"
	Path    string `toml:"path"`
}

type API struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

type Players struct {
	Command        []string `toml:"command"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

type Economy struct {
	ClaimCooldownSeconds int64   `toml:"claim_cooldown_seconds"`
	RobCooldownSeconds   int64   `toml:"rob_cooldown_seconds"`
	WeekdayRewardMin     int64   `toml:"weekday_reward_min"`
	WeekdayRewardMax     int64   `toml:"weekday_reward_max"`
	WeekendRewardMin     int64   `toml:"weekend_reward_min"`
	WeekendRewardMax     int64   `toml:"weekend_reward_max"`
	RobAmountMax         int64   `toml:"rob_amount_max"`
	RobChance            float64 `toml:"rob_chance"`
}

// Default returns the production defaults. The economy numbers mirror
// economy.DefaultRules.
func Default() Config {
	rules := economy.DefaultRules()
	return Config{
		Telegram: Telegram{TimeoutSeconds: 60},
		Storage:  Storage{Backend: "file", Path: "data/bread.json"},
		API:      API{Enabled: false, Host: "127.0.0.1", Port: 8090},
		Players:  Players{TimeoutSeconds: 10},
		Economy: Economy{
			ClaimCooldownSeconds: int64(rules.ClaimCooldown / time.Second),
			RobCooldownSeconds:   int64(rules.RobCooldown / time.Second),
			WeekdayRewardMin:     rules.WeekdayRewardMin,
			WeekdayRewardMax:     rules.WeekdayRewardMax,
			WeekendRewardMin:     rules.WeekendRewardMin,
			WeekendRewardMax:     rules.WeekendRewardMax,
			RobAmountMax:         rules.RobAmountMax,
			RobChance:            rules.RobChance,
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is
// fine; the defaults stand. TELEGRAM_BOT_TOKEN always wins over the
// file's token.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("stat %s: %w", path, err)
		}
	}
	if tok := os.Getenv(TokenEnv); tok != "" {
		cfg.Telegram.Token = tok
	}
	if err := cfg.Economy.validate(); err != nil {
		return cfg, fmt.Errorf("economy config: %w", err)
	}
	return cfg, nil
}

// validate rejects economy numbers the engine cannot draw from.
func (e Economy) validate() error {
	if e.WeekdayRewardMin < 0 || e.WeekdayRewardMax < e.WeekdayRewardMin {
		return fmt.Errorf("weekday reward range %d..%d is invalid", e.WeekdayRewardMin, e.WeekdayRewardMax)
	}
	if e.WeekendRewardMin < 0 || e.WeekendRewardMax < e.WeekendRewardMin {
		return fmt.Errorf("weekend reward range %d..%d is invalid", e.WeekendRewardMin, e.WeekendRewardMax)
	}
	if e.RobAmountMax < 1 {
		return fmt.Errorf("rob_amount_max must be at least 1, got %d", e.RobAmountMax)
	}
	if e.RobChance < 0 || e.RobChance > 1 {
		return fmt.Errorf("rob_chance must be between 0 and 1, got %v", e.RobChance)
	}
	if e.ClaimCooldownSeconds < 0 || e.RobCooldownSeconds < 0 {
		return fmt.Errorf("cooldowns cannot be negative")
	}
	return nil
}

// Rules converts the economy section to engine rules.
func (e Economy) Rules() economy.Rules {
	return economy.Rules{
		ClaimCooldown:    time.Duration(e.ClaimCooldownSeconds) * time.Second,
		RobCooldown:      time.Duration(e.RobCooldownSeconds) * time.Second,
		WeekdayRewardMin: e.WeekdayRewardMin,
		WeekdayRewardMax: e.WeekdayRewardMax,
		WeekendRewardMin: e.WeekendRewardMin,
		WeekendRewardMax: e.WeekendRewardMax,
		RobAmountMax:     e.RobAmountMax,
		RobChance:        e.RobChance,
	}
}

// Timeout returns the player lookup deadline as a duration.
func (p Players) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}
