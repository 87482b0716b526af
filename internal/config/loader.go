package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileName = "azul.yaml"

// Load loads the configuration.
// Search order: customPath -> ~/.azul/configs/azul.yaml -> ./configs/azul.yaml -> embedded default
// Files found on the search path are decoded over the defaults, so a partial
// file only overrides the keys it sets.
func Load(customPath string) (Config, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg := embeddedDefault()
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory
	if userCfgPath := userConfigPath(fileName); userCfgPath != "" {
		if cfg, ok := tryFile(userCfgPath); ok {
			return cfg, cfg.Validate()
		}
	}

	// Try local configs directory
	if cfg, ok := tryFile(filepath.Join("configs", fileName)); ok {
		return cfg, cfg.Validate()
	}

	return embeddedDefault(), nil
}

func tryFile(path string) (Config, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, false
	}
	cfg := embeddedDefault()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, false
	}
	return cfg, true
}

func embeddedDefault() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultAzulYAML, &cfg); err != nil {
		return DefaultConfig() // Fallback to hardcoded if embed fails
	}
	return cfg
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".azul", "configs", filename)
}

// Validate checks values the rest of the program relies on.
func (c Config) Validate() error {
	for players, displays := range c.Table.DisplaysByPlayers {
		if players < 2 || players > 4 {
			return fmt.Errorf("config: table.displays_by_players: unsupported player count %d", players)
		}
		if displays < 1 {
			return fmt.Errorf("config: table.displays_by_players[%d]: need at least one display, got %d", players, displays)
		}
	}
	if c.Server.Bots < 1 || c.Server.Bots > 3 {
		return fmt.Errorf("config: server.bots: must be between 1 and 3, got %d", c.Server.Bots)
	}
	if c.Bots.Difficulty != "" {
		if _, ok := StrategyForPreset(DifficultyPreset(c.Bots.Difficulty)); !ok {
			return fmt.Errorf("config: bots.difficulty: unknown preset %q", c.Bots.Difficulty)
		}
	}
	return nil
}

// BotStrategy returns the strategy id for computer players: the difficulty
// preset when one is set, the configured strategy otherwise.
func (c Config) BotStrategy() string {
	if s, ok := StrategyForPreset(DifficultyPreset(c.Bots.Difficulty)); ok {
		return s
	}
	return c.Bots.Strategy
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
