package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the top-level service configuration. Values resolve in the
// usual precedence order: flags, then environment (CINEHUB_ prefix), then
// the config file, then defaults.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	Push    PushConfig    `mapstructure:"push"`
	Scanner ScannerConfig `mapstructure:"scanner"`
	Log     LogConfig     `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Path         string `mapstructure:"path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// PushConfig tunes the in-memory delivery registry.
type PushConfig struct {
	MailboxSize   int `mapstructure:"mailbox_size"`
	SessionBuffer int `mapstructure:"session_buffer"`
}

// ScannerConfig drives the release scan schedules. Specs use standard
// five-field cron syntax.
type ScannerConfig struct {
	UpcomingSpec    string        `mapstructure:"upcoming_spec"`
	DailySpec       string        `mapstructure:"daily_spec"`
	HealthSpec      string        `mapstructure:"health_spec"`
	UpcomingWindow  time.Duration `mapstructure:"upcoming_window"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
	MaxRetries      int           `mapstructure:"max_retries"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`

	// level backs LevelVar and is what the logger actually consults, so
	// hot reloads take effect without rebuilding the handler.
	level slog.LevelVar
}

// LevelVar exposes the live log level. Handlers built on it observe
// config-file reloads atomically.
func (l *LogConfig) LevelVar() *slog.LevelVar {
	return &l.level
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":5000")
	v.SetDefault("http.shutdown_timeout", 15*time.Second)

	v.SetDefault("db.path", "cinehub.db")
	v.SetDefault("db.max_open_conns", 20)

	v.SetDefault("push.mailbox_size", 64)
	v.SetDefault("push.session_buffer", 32)

	v.SetDefault("scanner.upcoming_spec", "0 * * * *")
	v.SetDefault("scanner.daily_spec", "0 9 * * *")
	v.SetDefault("scanner.health_spec", "*/5 * * * *")
	v.SetDefault("scanner.upcoming_window", 7*24*time.Hour)
	v.SetDefault("scanner.query_timeout", 30*time.Second)
	v.SetDefault("scanner.breaker_cooldown", time.Minute)
	v.SetDefault("scanner.max_retries", 5)

	v.SetDefault("log.level", "info")
}

// LoadConfig resolves the configuration from flags, environment and an
// optional config file. A missing file is not an error; explicit paths
// that fail to parse are.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CINEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fs := pflag.NewFlagSet("cinehub", pflag.ContinueOnError)
	fs.String("http.addr", ":5000", "HTTP listen address")
	fs.String("db.path", "cinehub.db", "SQLite database path")
	fs.String("log.level", "info", "log level (debug, info, warn, error)")
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("cinehub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/cinehub")
	}

	if err := v.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Log.level.Set(parseLevel(cfg.Log.Level))

	watch(v, cfg)

	return cfg, nil
}

// watch applies log-level changes when the config file is rewritten on
// disk. Everything else, including scanner cadence, stays fixed for the
// process lifetime; those values are copied into their consumers at
// startup.
func watch(v *viper.Viper, cfg *Config) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		fresh := new(Config)
		if err := v.Unmarshal(fresh); err != nil {
			slog.Warn("ignoring invalid config change", "file", e.Name, "error", err)
			return
		}
		cfg.Log.level.Set(parseLevel(fresh.Log.Level))
		slog.Info("log level reloaded", "file", e.Name, "level", fresh.Log.Level)
	})
	v.WatchConfig()
}
