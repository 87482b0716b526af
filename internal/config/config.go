// Package config provides YAML-based configuration loading for the Azul
// table, bots, servers and storage.
package config

import "time"

// Config is the complete application configuration.
type Config struct {
	Table   TableConfig   `yaml:"table"`
	Bots    BotsConfig    `yaml:"bots"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// TableConfig controls how tables are laid out.
type TableConfig struct {
	// DisplaysByPlayers maps a player count (2..4) to the number of factory
	// displays. Missing entries use two displays per player plus one.
	DisplaysByPlayers map[int]int `yaml:"displays_by_players"`
	Seed              int64       `yaml:"seed"` // 0 = seed from the clock
}

// BotsConfig defines computer player behaviour.
type BotsConfig struct {
	Strategy   string        `yaml:"strategy"`    // default strategy id
	Difficulty string        `yaml:"difficulty"`  // easy, normal or hard; overrides strategy when set
	LuaScript  string        `yaml:"lua_script"`  // script for the "lua" strategy
	ThinkDelay time.Duration `yaml:"think_delay"` // pause before each bot move in interactive play
}

// ServerConfig defines the network frontends.
type ServerConfig struct {
	SSHAddr     string        `yaml:"ssh_addr"`
	HostKeyPath string        `yaml:"host_key_path"`
	WSAddr      string        `yaml:"ws_addr"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	GameIdleTTL time.Duration `yaml:"game_idle_ttl"` // unwatched unfinished games are dropped after this long
	Bots        int           `yaml:"bots"`          // computer opponents per SSH session
}

// StorageConfig defines where finished games are kept.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig defines logging output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
