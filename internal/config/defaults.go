package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/azul.yaml
var defaultAzulYAML []byte

// DefaultConfig returns the hardcoded configuration, used when the embedded
// YAML cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Table: TableConfig{
			DisplaysByPlayers: map[int]int{2: 5, 3: 7, 4: 9},
		},
		Bots: BotsConfig{
			Strategy:   "greedy",
			ThinkDelay: 400 * time.Millisecond,
		},
		Server: ServerConfig{
			SSHAddr:     ":2222",
			HostKeyPath: "~/.azul/ssh_host_key",
			WSAddr:      ":8080",
			IdleTimeout: 30 * time.Minute,
			GameIdleTTL: 30 * time.Minute,
			Bots:        1,
		},
		Storage: StorageConfig{
			DBPath: "~/.azul/azul.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultAzulYAML
}
