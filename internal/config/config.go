// Package config resolves mmwall settings from the config file, MMWALL_
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/mmwall/internal/domain"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".config/mmwall"
	envPrefix  = "MMWALL"

	BackendTOML   = "toml"
	BackendSQLite = "sqlite"
)

const (
	KeySelectionMethod       = "selection.method"
	KeyEnhancedShuffle       = "selection.enhanced_shuffle"
	KeyRecentlyShownTracking = "selection.recently_shown_tracking"
	KeyRecentlyShownCount    = "selection.recently_shown_count"
	KeyRecentlyShownCooldown = "selection.recently_shown_cooldown"
	KeyPersistRecentlyShown  = "selection.persist_recently_shown"
	KeyHistorySize           = "selection.history_size"
	KeyDebug                 = "selection.debug"
	KeyPoolsRotating         = "pools.rotating"
	KeyPoolSize              = "pools.size"
	KeyPoolRotationInterval  = "pools.rotation_interval"
	KeyCollectionPath        = "collection.path"
	KeyMaximumEntries        = "collection.maximum_entries"
	KeySlideInterval         = "slideshow.slide_interval"
	KeyUpdateInterval        = "slideshow.update_interval"
	KeyStateBackend          = "state.backend"
	KeyStatePath             = "state.path"
	KeyServerListen          = "server.listen"
	KeyServerRate            = "server.rate"
	KeyServerBurst           = "server.burst"
	KeyLogLevel              = "log.level"
	KeyLogPretty             = "log.pretty"
)

type Settings struct {
	Selection            domain.Config
	PersistRecentlyShown bool
	Debug                bool

	CollectionPath string
	SlideInterval  time.Duration
	UpdateInterval time.Duration

	StateBackend string
	StatePath    string

	ServerListen string
	ServerRate   float64
	ServerBurst  int

	LogLevel  string
	LogPretty bool

	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string
}

// Load reads configuration into v. An explicit configFile must exist; the
// default location is optional.
func Load(v *viper.Viper, configFile string) (Settings, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("resolve home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, configDir)

	setDefaults(v, baseDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(baseDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configNotFound) {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString(KeyStateBackend)))
	if backend != BackendTOML && backend != BackendSQLite {
		return Settings{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedBackend, v.GetString(KeyStateBackend))
	}
	if v.GetString(KeyStatePath) == "" {
		v.Set(KeyStatePath, defaultStatePath(baseDir, backend))
	}

	settings := Settings{
		Selection: domain.Config{
			SelectionMethod:       domain.ParseSelectionMethod(v.GetString(KeySelectionMethod)),
			EnhancedShuffle:       v.GetBool(KeyEnhancedShuffle),
			RecentlyShownTracking: v.GetBool(KeyRecentlyShownTracking),
			RecentlyShownCount:    v.GetInt(KeyRecentlyShownCount),
			RecentlyShownCooldown: v.GetInt(KeyRecentlyShownCooldown),
			RotatingPools:         v.GetBool(KeyPoolsRotating),
			PoolSize:              v.GetInt(KeyPoolSize),
			PoolRotationInterval:  v.GetFloat64(KeyPoolRotationInterval),
			MaximumEntries:        v.GetInt(KeyMaximumEntries),
			HistorySize:           v.GetInt(KeyHistorySize),
		},
		PersistRecentlyShown: v.GetBool(KeyPersistRecentlyShown),
		Debug:                v.GetBool(KeyDebug),
		CollectionPath:       expandHome(v.GetString(KeyCollectionPath), homeDir),
		SlideInterval:        v.GetDuration(KeySlideInterval),
		UpdateInterval:       v.GetDuration(KeyUpdateInterval),
		StateBackend:         backend,
		StatePath:            expandHome(v.GetString(KeyStatePath), homeDir),
		ServerListen:         v.GetString(KeyServerListen),
		ServerRate:           v.GetFloat64(KeyServerRate),
		ServerBurst:          v.GetInt(KeyServerBurst),
		LogLevel:             v.GetString(KeyLogLevel),
		LogPretty:            v.GetBool(KeyLogPretty),
		ConfigFile:           v.ConfigFileUsed(),
	}
	v.Set(KeyStatePath, settings.StatePath)

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func (s Settings) Validate() error {
	if err := s.Selection.Validate(); err != nil {
		return err
	}
	if s.SlideInterval < 0 {
		return fmt.Errorf("%w: slide interval must not be negative", domain.ErrInvalidConfig)
	}
	if s.UpdateInterval < 0 {
		return fmt.Errorf("%w: update interval must not be negative", domain.ErrInvalidConfig)
	}
	if s.ServerRate < 0 {
		return fmt.Errorf("%w: server rate must not be negative", domain.ErrInvalidConfig)
	}
	if s.ServerBurst < 0 {
		return fmt.Errorf("%w: server burst must not be negative", domain.ErrInvalidConfig)
	}
	if strings.TrimSpace(s.CollectionPath) == "" {
		return fmt.Errorf("%w: collection path is empty", domain.ErrInvalidConfig)
	}

	return nil
}

func setDefaults(v *viper.Viper, baseDir string) {
	defaults := domain.DefaultConfig()

	v.SetDefault(KeySelectionMethod, string(defaults.SelectionMethod))
	v.SetDefault(KeyEnhancedShuffle, defaults.EnhancedShuffle)
	v.SetDefault(KeyRecentlyShownTracking, defaults.RecentlyShownTracking)
	v.SetDefault(KeyRecentlyShownCount, defaults.RecentlyShownCount)
	v.SetDefault(KeyRecentlyShownCooldown, defaults.RecentlyShownCooldown)
	v.SetDefault(KeyPersistRecentlyShown, true)
	v.SetDefault(KeyHistorySize, defaults.HistorySize)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyPoolsRotating, defaults.RotatingPools)
	v.SetDefault(KeyPoolSize, defaults.PoolSize)
	v.SetDefault(KeyPoolRotationInterval, defaults.PoolRotationInterval)
	v.SetDefault(KeyCollectionPath, filepath.Join(baseDir, "images.json"))
	v.SetDefault(KeyMaximumEntries, defaults.MaximumEntries)
	v.SetDefault(KeySlideInterval, 5*time.Minute)
	v.SetDefault(KeyUpdateInterval, time.Hour)
	v.SetDefault(KeyStateBackend, BackendTOML)
	v.SetDefault(KeyServerListen, "127.0.0.1:8787")
	v.SetDefault(KeyServerRate, 2.0)
	v.SetDefault(KeyServerBurst, 4)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogPretty, true)
}

func defaultStatePath(baseDir, backend string) string {
	if backend == BackendSQLite {
		return filepath.Join(baseDir, "state.db")
	}
	return filepath.Join(baseDir, "state.toml")
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
