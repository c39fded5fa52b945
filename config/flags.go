package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Flags holds parsed command-line flags for either binary. Fields that
// belong to the other binary are left at their zero value.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	DataDir string
	Config  string

	// Coordinator
	ListenAddr string
	Port       int

	// Miner
	Coordinator string
	Selfish     bool
	KeyFile     string
	KeyPass     string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetSelfish bool
	SetLogJSON bool
}

// ParseFlags parses command-line flags for the given binary.
func ParseFlags(app App, args []string) *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet(string(app), flag.ContinueOnError)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	switch app {
	case AppCoordinator:
		fs.StringVar(&f.ListenAddr, "listen", "", "Listen address")
		fs.IntVar(&f.Port, "port", 0, "Listen port")
	case AppMiner:
		fs.StringVar(&f.Coordinator, "coordinator", "", "Coordinator address (host:port)")
		fs.BoolVar(&f.Selfish, "selfish", false, "Reject every foreign block instead of validating it")
		fs.StringVar(&f.KeyFile, "keyfile", "", "Path to an encrypted keypair file (created if absent)")
		fs.StringVar(&f.KeyPass, "keypass", "", "Passphrase for --keyfile")
	}

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	// Custom usage
	fs.Usage = func() {
		printUsage(app)
	}

	// Parse
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	f.SetSelfish = isFlagSet(fs, "selfish")
	f.SetLogJSON = isFlagSet(fs, "log-json")

	f.Args = fs.Args()

	// Detect unparsed flags caused by positional arguments stopping the
	// parser, e.g. "--selfish true --keyfile x" where "true" is not a
	// flag value (--selfish is a bool) and stops all further parsing.
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			fmt.Fprintf(os.Stderr, "Error: flag %q was not parsed (positional argument stopped parsing)\n", arg)
			fmt.Fprintf(os.Stderr, "Hint: boolean flags take no value. Use --selfish (not --selfish true)\n")
			os.Exit(1)
		}
	}

	return f
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Coordinator
	if f.ListenAddr != "" {
		cfg.Coordinator.ListenAddr = f.ListenAddr
	}
	if f.Port != 0 {
		cfg.Coordinator.Port = f.Port
	}

	// Miner
	if f.Coordinator != "" {
		cfg.Miner.CoordinatorAddr = f.Coordinator
	}
	if f.SetSelfish {
		cfg.Miner.Selfish = f.Selfish
	}
	if f.KeyFile != "" {
		cfg.Miner.KeyFile = f.KeyFile
	}
	if f.KeyPass != "" {
		cfg.Miner.KeyPass = f.KeyPass
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printUsage(app App) {
	switch app {
	case AppMiner:
		fmt.Print(`Hashvote Miner - a miner process that dials the coordinator

Usage:
  minerd [options]
  minerd --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --datadir       Data directory (default: ~/.hashvote)
  --config, -c    Config file path (default: <datadir>/hashvote.conf)

Miner Options:
  --coordinator   Coordinator address (default: 127.0.0.1:65432)
  --selfish       Reject every foreign block instead of validating it
  --keyfile       Path to an encrypted keypair file (created if absent)
  --keypass       Passphrase for --keyfile

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stdout)
  --log-json      Output logs as JSON

Examples:
  # Honest miner against a local coordinator
  minerd

  # Selfish miner
  minerd --selfish

  # Miner with a persistent identity
  minerd --keyfile ~/.hashvote/keys/miner1.key --keypass hunter2
`)
	default:
		fmt.Print(`Hashvote Coordinator - drives the mining/voting round protocol

Usage:
  coordinatord [options]
  coordinatord --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --datadir       Data directory (default: ~/.hashvote)
  --config, -c    Config file path (default: <datadir>/hashvote.conf)

Coordinator Options:
  --listen        Listen address (default: 127.0.0.1)
  --port          Listen port (default: 65432)

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stdout)
  --log-json      Output logs as JSON

Once running, the prompt accepts: mine, integrity, status, peers,
keys <id>, tx <payload>, quit.
`)
	}
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Command-line flags
func Load(app App) (*Config, *Flags, error) {
	flags := ParseFlags(app, os.Args[1:])

	// Handle help/version
	if flags.Help {
		printUsage(app)
		os.Exit(0)
	}
	if flags.Version {
		fmt.Printf("%s version 0.1.0\n", app)
		os.Exit(0)
	}

	// Start with defaults
	cfg := Default()

	// Override datadir if specified
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	// Auto-create data directories and default config on first start.
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	// Determine config file path
	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	// Load config file
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}

	// Apply file config
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	// Apply flags (highest precedence)
	ApplyFlags(cfg, flags)

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default
// config file if they don't already exist. This is idempotent — safe to
// call on every startup.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.KeysDir(),
		cfg.LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	// Create default config if it doesn't exist.
	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
