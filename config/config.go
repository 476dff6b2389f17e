package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"chatward-plugin/chatfilter"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	DB       DBConfig       `toml:"database"`
	Command  CommandConfig  `toml:"command"`
	Defaults DefaultsConfig `toml:"defaults"`
}

type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

func (l *LogLevel) UnmarshalText(text []byte) error {
	v := string(text)
	switch LogLevel(v) {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
		*l = LogLevel(v)
		return nil
	default:
		return fmt.Errorf("invalid log.level: %q (must be debug, info, warn, error)", v)
	}
}

func (l LogLevel) String() string { return string(l) }

func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type LogConfig struct {
	Level LogLevel `toml:"level"`
}

type DBConfig struct {
	Path string `toml:"path"`
}

type CommandConfig struct {
	Prefix string `toml:"prefix"`
}

// DefaultsConfig seeds newly created per-user records. Each entry follows the
// block-command syntax: a comma-separated entry becomes a conjunction rule.
type DefaultsConfig struct {
	BlockedPhrases []string `toml:"blocked_phrases"`
}

func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: InfoLevel},
		DB: DBConfig{
			Path: "./chatward-db",
		},
		Command: CommandConfig{
			Prefix: "/cw",
		},
	}
}

func (c *Config) validate() error {
	if c.DB.Path == "" {
		return errors.New("database.path must be set")
	}
	if !strings.HasPrefix(c.Command.Prefix, "/") {
		return fmt.Errorf("command.prefix must start with '/', got %q", c.Command.Prefix)
	}
	if _, err := c.DefaultPhrases(); err != nil {
		return err
	}
	return nil
}

// DefaultPhrases parses the configured seed entries into phrase rules.
func (c *Config) DefaultPhrases() ([]chatfilter.PhraseFilter, error) {
	out := make([]chatfilter.PhraseFilter, 0, len(c.Defaults.BlockedPhrases))
	for _, raw := range c.Defaults.BlockedPhrases {
		f, err := chatfilter.ParsePhrase(raw)
		if err != nil {
			return nil, fmt.Errorf("defaults.blocked_phrases: unusable entry %q: %w", raw, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func Load(path string, useDefaults bool) (*Config, bool, error) {
	cfg := defaultConfig()
	defaultsUsed := false

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if useDefaults {
				defaultsUsed = true
				if err := cfg.validate(); err != nil {
					return nil, true, err
				}
				return cfg, defaultsUsed, nil
			}
			return nil, false, fmt.Errorf("config file not found at %s", path)
		}
		return nil, false, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, false, err
	}
	return cfg, defaultsUsed, nil
}
