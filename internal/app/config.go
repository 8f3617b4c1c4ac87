package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string  `mapstructure:"port"`
	SolverUrl         string  `mapstructure:"solver_url"`
	SubmitRate        float64 `mapstructure:"submit_rate"`
	SubmitBurst       int     `mapstructure:"submit_burst"`
	HistoryDriver     string  `mapstructure:"history_driver"`
	HistoryDsn        string  `mapstructure:"history_dsn"`
	HistorySize       int     `mapstructure:"history_size"`
	LogLevel          string  `mapstructure:"log_level"`
	StrictConstraints bool    `mapstructure:"strict_constraints"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("solver_url", "http://127.0.0.1:5000/optimize")
	v.SetDefault("submit_rate", 5.0)
	v.SetDefault("submit_burst", 10)
	v.SetDefault("history_driver", "memory")
	v.SetDefault("history_dsn", "")
	v.SetDefault("history_size", 100)
	v.SetDefault("log_level", "info")
	v.SetDefault("strict_constraints", false)
}

// LoadConfig reads LPVIZ_* environment variables on top of the defaults. When
// LPVIZ_CONFIG names a file it is read first; the environment still wins.
func LoadConfig() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LPVIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", "LPVIZ_PORT", "GOPORT"); err != nil {
		return Config{}, err
	}

	if file := os.Getenv("LPVIZ_CONFIG"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if config.SubmitBurst < 1 {
		config.SubmitBurst = 1
	}
	if config.HistorySize < 1 {
		config.HistorySize = 100
	}

	return config, nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// Level maps LogLevel onto slog. Unknown names fall back to info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		slog.Warn(fmt.Sprintf("unknown log level %q, using info", c.LogLevel))
		return slog.LevelInfo
	}
	return level
}
