package config

import "fmt"

// Default returns the default configuration shared by both binaries.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Coordinator: CoordinatorConfig{
			ListenAddr: "127.0.0.1",
			Port:       DefaultPort,
		},
		Miner: MinerConfig{
			CoordinatorAddr: fmt.Sprintf("127.0.0.1:%d", DefaultPort),
			Selfish:         false,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
