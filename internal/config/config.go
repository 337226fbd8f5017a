// Package config loads application settings from defaults, an optional YAML
// file, a .env file, KAPP_ environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	envPrefix = "KAPP_"
	// koanfAnnotation marks the flags that carry configuration keys.
	koanfAnnotation = "koanf"
)

type Config struct {
	Env      string         `koanf:"env" validate:"oneof=development production testing"`
	Log      LogConfig      `koanf:"log"`
	HTTP     HTTPConfig     `koanf:"http"`
	Database DatabaseConfig `koanf:"database"`
	SRS      SRSConfig      `koanf:"srs"`
	Sync     SyncConfig     `koanf:"sync"`
}

type LogConfig struct {
	Mode string `koanf:"mode" validate:"required"`
}

type HTTPConfig struct {
	Addr        string   `koanf:"addr" validate:"required"`
	CORSOrigins []string `koanf:"cors_origins" validate:"dive,url"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `koanf:"dsn" validate:"required"`
}

type SRSConfig struct {
	DueLimitDefault   int  `koanf:"due_limit_default" validate:"min=1"`
	DueLimitMax       int  `koanf:"due_limit_max" validate:"gtefield=DueLimitDefault"`
	SentenceEnabled   bool `koanf:"sentence_enabled"`
	VocabularyEnabled bool `koanf:"vocabulary_enabled"`
}

type SyncConfig struct {
	ReposDir string        `koanf:"repos_dir" validate:"required"`
	Interval time.Duration `koanf:"interval"`
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

var defaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:5174",
}

// RegisterFlags adds the configuration flags, and --config and --env-file,
// to flags. Flag defaults are the configuration defaults.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("env-file", ".env", "Path to a .env file loaded into the environment")

	flags.String("env", "development", "Runtime environment (development, production, testing)")
	flags.String("log.mode", "dev", "Log mode (dev or prod)")
	flags.String("http.addr", ":5000", "HTTP listen address")
	flags.StringSlice("http.cors_origins", defaultCORSOrigins, "Allowed CORS origins")
	flags.String("database.driver", "sqlite", "Database driver (sqlite or postgres)")
	flags.String("database.dsn", "data/kapp.db", "Database DSN or SQLite file path")
	flags.Int("srs.due_limit_default", 20, "Default number of due items returned")
	flags.Int("srs.due_limit_max", 50, "Maximum number of due items returned")
	flags.Bool("srs.sentence_enabled", false, "Enable exercise review")
	flags.Bool("srs.vocabulary_enabled", true, "Enable vocabulary review")
	flags.String("sync.repos_dir", "repos", "Directory git sources are cloned into")
	flags.Duration("sync.interval", 0, "Interval between automatic source syncs (0 disables)")

	flags.VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, ".") || f.Name == "env" {
			_ = flags.SetAnnotation(f.Name, koanfAnnotation, []string{"true"})
		}
	})
}

// Load builds the configuration. flags must have been set up by RegisterFlags
// and already parsed.
func Load(flags *pflag.FlagSet) (*Config, error) {
	envFile, _ := flags.GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	k := koanf.New(".")

	if path, _ := flags.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	fp := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if _, ok := f.Annotations[koanfAnnotation]; !ok {
			return "", nil
		}
		return f.Name, posflag.FlagVal(flags, f)
	})
	if err := k.Load(fp, nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// envValue maps KAPP_HTTP__CORS_ORIGINS=a,b to http.cors_origins=[a b].
func envValue(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "http.cors_origins" {
		parts := strings.Split(value, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		return key, origins
	}
	return key, value
}
