// Package config handles application configuration.
//
// Two binaries share this package: coordinatord (the central server)
// and minerd (an independent miner process). Each loads defaults, then
// an optional .conf file, then command-line flags, in that order of
// precedence.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// App identifies which binary is loading configuration. It selects the
// flag set that gets registered and the usage text that gets printed.
type App string

const (
	AppCoordinator App = "coordinatord"
	AppMiner       App = "minerd"
)

// DefaultPort is the TCP port the coordinator listens on and miners
// dial. Every participant in one deployment must agree on it.
const DefaultPort = 65432

// Config holds runtime configuration for both binaries. Coordinator
// settings are ignored by minerd and vice versa.
type Config struct {
	// Core
	DataDir string `conf:"datadir"`

	// Coordinator server
	Coordinator CoordinatorConfig

	// Miner process
	Miner MinerConfig

	// Logging
	Log LogConfig
}

// CoordinatorConfig holds the coordinator's listener settings.
type CoordinatorConfig struct {
	ListenAddr string `conf:"coordinator.listen"`
	Port       int    `conf:"coordinator.port"`
}

// MinerConfig holds a miner process's settings.
type MinerConfig struct {
	// CoordinatorAddr is the host:port the miner dials.
	CoordinatorAddr string `conf:"miner.coordinator"`

	// Selfish selects the vote strategy: a selfish miner rejects every
	// foreign block.
	Selfish bool `conf:"miner.selfish"`

	// KeyFile, when set, persists the miner's keypair encrypted at rest
	// so the same identity survives a restart. Empty means a fresh
	// keypair per run, held in memory only.
	KeyFile string `conf:"miner.keyfile"`

	// KeyPass is the passphrase for KeyFile. Supplying it in a config
	// file or flag is acceptable here only because the whole system is
	// educational; keys are shipped to the coordinator on request anyway.
	KeyPass string `conf:"miner.keypass"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.hashvote
//	macOS:   ~/Library/Application Support/Hashvote
//	Windows: %APPDATA%\Hashvote
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hashvote"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Hashvote")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Hashvote")
		}
		return filepath.Join(home, "AppData", "Roaming", "Hashvote")
	default:
		return filepath.Join(home, ".hashvote")
	}
}

// KeysDir returns the directory for encrypted miner keyfiles.
func (c *Config) KeysDir() string {
	return filepath.Join(c.DataDir, "keys")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "hashvote.conf")
}
