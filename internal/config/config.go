// Package config resolves runtime settings from defaults, an optional YAML
// file, STUDYD_* environment variables and bound command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sandeepkv93/studyd/internal/storage"
)

// ErrInvalidConfig wraps every validation failure except an unknown backend,
// which keeps storage.ErrUnknownBackend.
var ErrInvalidConfig = errors.New("config: invalid")

const (
	EnvPrefix = "STUDYD"
	AppName   = "studyd"
)

const (
	KeyBackend             = "backend"
	KeyDataPath            = "data_path"
	KeyLogLevel            = "log_level"
	KeyLogFile             = "log_file"
	KeyStrictReferences    = "strict_references"
	KeyUpcomingHorizonDays = "upcoming_horizon_days"
	KeyRecentNotesLimit    = "recent_notes_limit"
	KeyAutosaveDelay       = "autosave_delay"
	KeyDesktopTheme        = "desktop_theme"
)

type RuntimeConfig struct {
	Backend             storage.Kind
	DataPath            string
	LogLevel            string
	LogFile             string
	StrictReferences    bool
	UpcomingHorizonDays int
	RecentNotesLimit    int
	AutosaveDelay       time.Duration
	DesktopTheme        string
	ConfigFile          string
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Backend:             storage.KindSQLite,
		LogLevel:            "warn",
		UpcomingHorizonDays: 7,
		RecentNotesLimit:    3,
		AutosaveDelay:       time.Second,
		DesktopTheme:        "dark",
	}
}

// New returns a viper instance with defaults, env binding and config file
// discovery set up. configFile wins over $STUDYD_CONFIG and the search paths.
func New(configFile string) *viper.Viper {
	v := viper.New()
	def := DefaultRuntimeConfig()
	v.SetDefault(KeyBackend, string(def.Backend))
	v.SetDefault(KeyDataPath, "")
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyStrictReferences, def.StrictReferences)
	v.SetDefault(KeyUpcomingHorizonDays, def.UpcomingHorizonDays)
	v.SetDefault(KeyRecentNotesLimit, def.RecentNotesLimit)
	v.SetDefault(KeyAutosaveDelay, def.AutosaveDelay.String())
	v.SetDefault(KeyDesktopTheme, def.DesktopTheme)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(userConfigDir(), AppName))
	}
	return v
}

// Load reads the config file if there is one and decodes the merged settings.
// A missing file is fine unless it was named explicitly.
func Load(v *viper.Viper) (RuntimeConfig, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return RuntimeConfig{}, fmt.Errorf("%w: read config: %w", ErrInvalidConfig, err)
		}
	}

	kind, err := storage.ParseKind(v.GetString(KeyBackend))
	if err != nil {
		return RuntimeConfig{}, err
	}
	cfg := RuntimeConfig{
		Backend:             kind,
		DataPath:            v.GetString(KeyDataPath),
		LogLevel:            strings.ToLower(v.GetString(KeyLogLevel)),
		LogFile:             v.GetString(KeyLogFile),
		StrictReferences:    v.GetBool(KeyStrictReferences),
		UpcomingHorizonDays: v.GetInt(KeyUpcomingHorizonDays),
		RecentNotesLimit:    v.GetInt(KeyRecentNotesLimit),
		AutosaveDelay:       v.GetDuration(KeyAutosaveDelay),
		DesktopTheme:        v.GetString(KeyDesktopTheme),
		ConfigFile:          v.ConfigFileUsed(),
	}
	if cfg.DataPath == "" {
		cfg.DataPath = DefaultDataPath(cfg.Backend)
	}
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

func (c RuntimeConfig) Validate() error {
	switch c.Backend {
	case storage.KindSQLite, storage.KindJSON, storage.KindMemory:
	default:
		return fmt.Errorf("config: %w: %q", storage.ErrUnknownBackend, c.Backend)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.UpcomingHorizonDays <= 0 {
		return fmt.Errorf("%w: upcoming_horizon_days must be positive, got %d", ErrInvalidConfig, c.UpcomingHorizonDays)
	}
	if c.RecentNotesLimit <= 0 {
		return fmt.Errorf("%w: recent_notes_limit must be positive, got %d", ErrInvalidConfig, c.RecentNotesLimit)
	}
	if c.AutosaveDelay < 0 {
		return fmt.Errorf("%w: autosave_delay must not be negative, got %s", ErrInvalidConfig, c.AutosaveDelay)
	}
	return nil
}

// DefaultDataPath places the data file under the XDG data directory.
func DefaultDataPath(kind storage.Kind) string {
	name := "studyd.db"
	if kind == storage.KindJSON {
		name = "studyd.json"
	}
	return filepath.Join(DataDir(), name)
}

func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", AppName)
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// CacheDir is where the log file lives by default.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Caches", AppName)
	}
	return filepath.Join(home, ".cache", AppName)
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}
