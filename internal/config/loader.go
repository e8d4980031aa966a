package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	pkgconfig "github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables that override file settings.
const EnvPrefix = "GPINDEXER_"

type decodeFunc func(data []byte, cfg *pkgconfig.Config) error

var decoders = map[string]decodeFunc{
	".yaml": decodeYAML,
	".yml":  decodeYAML,
	".json": decodeJSON,
	".toml": decodeTOML,
}

func decodeYAML(data []byte, cfg *pkgconfig.Config) error {
	return yaml.Unmarshal(data, cfg)
}

func decodeJSON(data []byte, cfg *pkgconfig.Config) error {
	return json.NewDecoder(bytes.NewReader(data)).Decode(cfg)
}

func decodeTOML(data []byte, cfg *pkgconfig.Config) error {
	_, err := toml.Decode(string(data), cfg)
	return err
}

// envOverrides maps variable names (without EnvPrefix) to the setting they replace.
// RPC endpoints and the Redis password usually carry credentials, so they are kept
// out of the committed config file.
var envOverrides = map[string]func(cfg *pkgconfig.Config, value string){
	"RPC_HTTP_URL": func(cfg *pkgconfig.Config, v string) { cfg.RPC.HTTPURL = v },
	"RPC_WS_URL":   func(cfg *pkgconfig.Config, v string) { cfg.RPC.WSURL = v },
	"DB_PATH":      func(cfg *pkgconfig.Config, v string) { cfg.DB.Path = v },
	"NATS_URL": func(cfg *pkgconfig.Config, v string) {
		if cfg.NATS == nil {
			cfg.NATS = &pkgconfig.NATSConfig{}
		}
		cfg.NATS.URL = v
	},
	"REDIS_ADDR": func(cfg *pkgconfig.Config, v string) {
		if cfg.Redis == nil {
			cfg.Redis = &pkgconfig.RedisConfig{}
		}
		cfg.Redis.Addr = v
	},
	"REDIS_PASSWORD": func(cfg *pkgconfig.Config, v string) {
		if cfg.Redis != nil {
			cfg.Redis.Password = v
		}
	},
}

// LoadFromFile loads the indexer configuration, picking the decoder by extension
// (.yaml, .yml, .json, .toml). GPINDEXER_* variables override the matching file settings
// before defaults and validation run.
func LoadFromFile(path string) (*pkgconfig.Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*pkgconfig.Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json, .toml)", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg pkgconfig.Config
	if err := decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s config %s: %w", strings.TrimPrefix(ext, "."), path, err)
	}

	applyEnv(&cfg, lookup)

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnv applies the overrides in a fixed order so REDIS_ADDR is seen before REDIS_PASSWORD.
func applyEnv(cfg *pkgconfig.Config, lookup func(string) (string, bool)) {
	names := make([]string, 0, len(envOverrides))
	for name := range envOverrides {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			envOverrides[name](cfg, v)
		}
	}
}
