// Package config resolves the startup configuration from defaults, an
// optional config file, the environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sebastiantruijens/cinemadiary/internal/omdb"
)

const (
	// ErrCodeInvalid marks an unreadable config file or an invalid value.
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingAPIKey marks a configuration without an OMDb API key.
	ErrCodeMissingAPIKey = "config_missing_api_key"
)

// AppName names the data directory and the log file.
const AppName = "cinemadiary"

// Defaults for settings the OMDb client does not own.
const (
	DefaultDebounce       = 300 * time.Millisecond
	DefaultMinQueryLength = 3
	DefaultLogLevel       = "info"

	// LogDisabled as log file turns file logging off.
	LogDisabled = "off"
)

// Config is the resolved configuration consumed by the rest of the program.
type Config struct {
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	Debounce       time.Duration
	MinQueryLength int
	CacheSize      int
	DataDir        string
	ResetWatched   bool
	Posters        bool
	Log            LogConfig

	// File is the config file that was read, empty when none was found.
	File string
}

// LogConfig controls the rotated log file.
type LogConfig struct {
	File       string
	Level      string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Error is a configuration error carrying a machine readable code.
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingAPIKey:
		return fmt.Sprintf("%s: no OMDb API key configured (use --api-key, OMDB_API_KEY or api-key in the config file)", e.Code)
	default:
		if e.Path != "" {
			return fmt.Sprintf("%s: %s: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code from err, or "" if err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// NewFlagSet declares the command line flags.
func NewFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("api-key", "", "OMDb API key")
	fs.String("base-url", omdb.DefaultBaseURL, "OMDb API endpoint")
	fs.Duration("timeout", omdb.DefaultTimeout, "timeout for a single OMDb request")
	fs.Duration("debounce", DefaultDebounce, "delay between the last keystroke and the search request")
	fs.Int("min-query", DefaultMinQueryLength, "shortest query that triggers a search")
	fs.Int("cache-size", omdb.DefaultCacheSize, "number of movie details kept in memory (negative disables)")
	fs.String("data-dir", "", "directory holding the watched list")
	fs.String("log-file", "", "log file path, \"off\" to disable (default <data-dir>/cinemadiary.log)")
	fs.String("log-level", DefaultLogLevel, "log level: debug, info, warn or error")
	fs.Bool("reset-watched", false, "clear the watched list before starting")
	fs.Bool("posters", true, "render movie posters in the detail view")
	return fs
}

// Load parses args and resolves the configuration. Precedence, highest
// first: flags, environment (CINEMADIARY_*, OMDB_API_KEY), config file,
// defaults.
func Load(args []string) (Config, error) {
	fs := NewFlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return FromFlags(fs)
}

// FromFlags resolves the configuration from an already parsed flag set.
func FromFlags(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()

	v.SetDefault("log.max-size", 10)
	v.SetDefault("log.max-backups", 3)
	v.SetDefault("log.max-age", 28)
	v.SetDefault("log.compress", false)

	if err := v.BindPFlags(fs); err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Err: err}
	}
	for key, flag := range map[string]string{"log.file": "log-file", "log.level": "log-level"} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Err: err}
		}
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api-key", "CINEMADIARY_API_KEY", "OMDB_API_KEY"); err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Err: err}
	}

	path, err := readConfigFile(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIKey:         strings.TrimSpace(v.GetString("api-key")),
		BaseURL:        strings.TrimSpace(v.GetString("base-url")),
		Timeout:        v.GetDuration("timeout"),
		Debounce:       v.GetDuration("debounce"),
		MinQueryLength: v.GetInt("min-query"),
		CacheSize:      v.GetInt("cache-size"),
		DataDir:        strings.TrimSpace(v.GetString("data-dir")),
		ResetWatched:   v.GetBool("reset-watched"),
		Posters:        v.GetBool("posters"),
		Log: LogConfig{
			File:       strings.TrimSpace(v.GetString("log.file")),
			Level:      strings.TrimSpace(v.GetString("log.level")),
			MaxSize:    v.GetInt("log.max-size"),
			MaxBackups: v.GetInt("log.max-backups"),
			MaxAge:     v.GetInt("log.max-age"),
			Compress:   v.GetBool("log.compress"),
		},
		File: path,
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.DataDir, AppName+".log")
	}
	if strings.EqualFold(cfg.Log.File, LogDisabled) {
		cfg.Log.File = ""
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper) (string, error) {
	explicit := strings.TrimSpace(v.GetString("config"))
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", &Error{Code: ErrCodeInvalid, Path: explicit, Err: err}
	}
	return v.ConfigFileUsed(), nil
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return &Error{Code: ErrCodeMissingAPIKey}
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("base-url %q must be an http(s) URL", c.BaseURL)}
	}
	if c.Timeout <= 0 {
		return &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("timeout must be positive, got %s", c.Timeout)}
	}
	if c.Debounce < 0 {
		return &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("debounce must not be negative, got %s", c.Debounce)}
	}
	if c.MinQueryLength < 1 {
		return &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("min-query must be at least 1, got %d", c.MinQueryLength)}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("log level %q: %w", c.Log.Level, err)}
	}
	return nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return "." + AppName
}
