package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment prefix the CLI reads credentials from (CS_USER, CS_PASSWORD).
const DefaultEnvPrefix = "CS"

// Loader hydrates the configuration while respecting env > file > default precedence.
type Loader struct {
	envPrefix string
	files     []string
}

// NewLoader prepares a config hydrator. Empty file paths are ignored.
func NewLoader(envPrefix string, files ...string) *Loader {
	return &Loader{
		envPrefix: envPrefix,
		files:     files,
	}
}

// Files returns the configuration files the loader reads, in precedence order.
func (l *Loader) Files() []string {
	out := make([]string, 0, len(l.files))
	for _, path := range l.files {
		if path != "" {
			out = append(out, path)
		}
	}
	return out
}

// Load assembles the effective snapshot.
func (l *Loader) Load(ctx context.Context) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(structToMap(DefaultConfig()), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	for _, path := range l.Files() {
		select {
		case <-ctx.Done():
			return Config{}, ctx.Err()
		default:
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config: file %s not found", path)
			}
			return Config{}, fmt.Errorf("config: stat %s: %w", path, err)
		}
		parser, err := parserFor(path)
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return Config{}, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if l.envPrefix != "" {
		prefix := l.envPrefix + "_"
		canonical := map[string]string{
			"baseurl":                              "baseURL",
			"timeoutseconds":                       "timeoutSeconds",
			"ratelimit.requestspersecond":          "rateLimit.requestsPerSecond",
			"ratelimit.burst":                      "rateLimit.burst",
			"output.templatesfolder":               "output.templatesFolder",
			"callback.store.retentionseconds":      "callback.store.retentionSeconds",
			"callback.store.valkey.tls.cafile":     "callback.store.valkey.tls.caFile",
			"callback.ratelimit.requestspersecond": "callback.rateLimit.requestsPerSecond",
			"callback.ratelimit.burst":             "callback.rateLimit.burst",
			"callback.ratelimit.idleseconds":       "callback.rateLimit.idleSeconds",
		}
		transform := func(s string) string {
			// Double underscores signal a nested path (CS_CALLBACK__LISTEN__PORT -> callback.listen.port).
			key := strings.TrimPrefix(s, prefix)
			key = strings.ReplaceAll(key, "__", ".")
			// Single underscores are dropped so CS_BASE_URL and CS_BASEURL agree.
			key = strings.ToLower(strings.ReplaceAll(key, "_", ""))
			if mapped, ok := canonical[key]; ok {
				return mapped
			}
			return key
		}
		if err := k.Load(env.Provider(prefix, ".", transform), nil); err != nil {
			return Config{}, fmt.Errorf("config: load env: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return kjson.Parser(), nil
	case ".toml", ".tml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("config: unsupported config file extension %q", ext)
	}
}

// structToMap converts DefaultConfig into a map for the koanf confmap provider.
func structToMap(cfg Config) map[string]any {
	return map[string]any{
		"user":           cfg.User,
		"password":       cfg.Password,
		"environment":    cfg.Environment,
		"baseURL":        cfg.BaseURL,
		"timeoutSeconds": cfg.TimeoutSeconds,
		"rateLimit": map[string]any{
			"requestsPerSecond": cfg.RateLimit.RequestsPerSecond,
			"burst":             cfg.RateLimit.Burst,
		},
		"logging": map[string]any{
			"level":  cfg.Logging.Level,
			"format": cfg.Logging.Format,
		},
		"output": map[string]any{
			"format":          cfg.Output.Format,
			"templatesFolder": cfg.Output.TemplatesFolder,
		},
		"callback": map[string]any{
			"listen": map[string]any{
				"address": cfg.Callback.Listen.Address,
				"port":    cfg.Callback.Listen.Port,
			},
			"store": map[string]any{
				"backend":          cfg.Callback.Store.Backend,
				"retentionSeconds": cfg.Callback.Store.RetentionSeconds,
				"valkey": map[string]any{
					"address":  cfg.Callback.Store.Valkey.Address,
					"username": cfg.Callback.Store.Valkey.Username,
					"password": cfg.Callback.Store.Valkey.Password,
					"db":       cfg.Callback.Store.Valkey.DB,
					"tls": map[string]any{
						"enabled": cfg.Callback.Store.Valkey.TLS.Enabled,
						"caFile":  cfg.Callback.Store.Valkey.TLS.CAFile,
					},
				},
			},
			"rateLimit": map[string]any{
				"requestsPerSecond": cfg.Callback.RateLimit.RequestsPerSecond,
				"burst":             cfg.Callback.RateLimit.Burst,
				"idleSeconds":       cfg.Callback.RateLimit.IdleSeconds,
			},
		},
	}
}
