// Package config loads the process-wide daemon configuration: a YAML file
// merged over built-in defaults, with COLORD_* environment overrides. The
// resulting Config is immutable after Load and safe to share across
// concurrent requests.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bitcoind    BitcoindConfig    `yaml:"bitcoind"`
	Environment EnvironmentConfig `yaml:"environment"`
	Cache       CacheConfig       `yaml:"cache"`
	RPC         RPCConfig         `yaml:"rpc"`
}

type BitcoindConfig struct {
	RPCURL string `yaml:"rpcUrl"`
}

type EnvironmentConfig struct {
	VersionByte     byte  `yaml:"versionByte"`
	P2SHVersionByte byte  `yaml:"p2shVersionByte"`
	DustLimit       int64 `yaml:"dustLimit"`
	DefaultFees     int64 `yaml:"defaultFees"`
}

type CacheConfig struct {
	Path string `yaml:"path"`
}

type RPCConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// fileConfig mirrors Config with optional fields so absent keys do not
// clobber defaults during the merge.
type fileConfig struct {
	Bitcoind struct {
		RPCURL *string `yaml:"rpcUrl"`
	} `yaml:"bitcoind"`
	Environment struct {
		VersionByte     *byte  `yaml:"versionByte"`
		P2SHVersionByte *byte  `yaml:"p2shVersionByte"`
		DustLimit       *int64 `yaml:"dustLimit"`
		DefaultFees     *int64 `yaml:"defaultFees"`
	} `yaml:"environment"`
	Cache struct {
		Path *string `yaml:"path"`
	} `yaml:"cache"`
	RPC struct {
		Enabled *bool `yaml:"enabled"`
		Port    *int  `yaml:"port"`
	} `yaml:"rpc"`
}

// Default returns the testnet defaults the daemon starts from.
func Default() Config {
	return Config{
		Bitcoind: BitcoindConfig{
			RPCURL: "http://localhost:18332",
		},
		Environment: EnvironmentConfig{
			VersionByte:     111,
			P2SHVersionByte: 196,
			DustLimit:       600,
			DefaultFees:     10000,
		},
		Cache: CacheConfig{
			Path: "cache.db",
		},
		RPC: RPCConfig{
			Enabled: false,
			Port:    8080,
		},
	}
}

// Load reads the configuration file at configPath, or the first of the
// default candidate paths when configPath is empty. A missing candidate is
// fine; a missing explicit path is an error.
func Load(configPath string) (Config, error) {
	cfg := Default()

	candidates := make([]string, 0, 2)
	explicit := configPath != ""
	if explicit {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates, "config.yaml", "configs/config.yaml")
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
			continue
		}
		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		merge(&cfg, parsed)
		break
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func merge(dst *Config, src fileConfig) {
	if src.Bitcoind.RPCURL != nil {
		dst.Bitcoind.RPCURL = *src.Bitcoind.RPCURL
	}
	if src.Environment.VersionByte != nil {
		dst.Environment.VersionByte = *src.Environment.VersionByte
	}
	if src.Environment.P2SHVersionByte != nil {
		dst.Environment.P2SHVersionByte = *src.Environment.P2SHVersionByte
	}
	if src.Environment.DustLimit != nil {
		dst.Environment.DustLimit = *src.Environment.DustLimit
	}
	if src.Environment.DefaultFees != nil {
		dst.Environment.DefaultFees = *src.Environment.DefaultFees
	}
	if src.Cache.Path != nil {
		dst.Cache.Path = *src.Cache.Path
	}
	if src.RPC.Enabled != nil {
		dst.RPC.Enabled = *src.RPC.Enabled
	}
	if src.RPC.Port != nil {
		dst.RPC.Port = *src.RPC.Port
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("COLORD_BITCOIND_RPCURL")); v != "" {
		cfg.Bitcoind.RPCURL = v
	}
	if v := strings.TrimSpace(os.Getenv("COLORD_CACHE_PATH")); v != "" {
		cfg.Cache.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("COLORD_RPC_ENABLED")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.RPC.Enabled = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("COLORD_RPC_PORT")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.RPC.Port = parsed
		}
	}
}
