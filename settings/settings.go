// Package settings holds process-wide configuration for the window and IPC
// collaborators, with an explicit init-before-use lifecycle: Get before Init
// is a SETTINGS_NOT_INITIALIZED error.
package settings

import (
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/trae-op/electron-modular/errors"
)

// Folders locates the built renderer and main bundles.
type Folders struct {
	DistRenderer string `mapstructure:"dist_renderer" validate:"required"`
	DistMain     string `mapstructure:"dist_main" validate:"required"`
}

// Settings is the process-wide configuration consumed by window factories
// and the IPC bridge.
type Settings struct {
	LocalhostPort     int      `mapstructure:"localhost_port" validate:"gte=0,lte=65535"`
	Folders           Folders  `mapstructure:"folders"`
	CSPConnectSources []string `mapstructure:"csp_connect_sources" validate:"dive,required"`
}

// ApplyDefaults fills unset fields with development defaults.
func (s *Settings) ApplyDefaults() {
	if s.Folders.DistRenderer == "" {
		s.Folders.DistRenderer = "dist/renderer"
	}
	if s.Folders.DistMain == "" {
		s.Folders.DistMain = "dist/main"
	}
}

// Validate checks the settings against their struct tags.
func (s *Settings) Validate() error {
	return validator.New().Struct(s)
}

var (
	mu      sync.RWMutex
	current *Settings
)

// Option configures loading behavior.
type Option func(*loaderOptions)

type loaderOptions struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit settings file instead of searching the
// standard locations.
func WithConfigFile(path string) Option {
	return func(o *loaderOptions) { o.configFile = path }
}

// WithEnvFile sets an explicit .env file to load before reading config.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// Init loads, validates, and installs the process settings. Environment
// variables prefixed EMOD_ override file values (EMOD_LOCALHOST_PORT, ...).
func Init(opts ...Option) (*Settings, error) {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return nil, apperrors.Internal("loading env file", err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	v := viper.New()
	v.SetEnvPrefix("EMOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults register the keys so env-only overrides survive Unmarshal.
	v.SetDefault("localhost_port", 0)
	v.SetDefault("folders.dist_renderer", "")
	v.SetDefault("folders.dist_main", "")
	v.SetDefault("csp_connect_sources", []string{})

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.Internal("reading settings file", err)
		}
	} else {
		v.SetConfigName("settings")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, apperrors.Internal("reading settings file", err)
			}
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, apperrors.Internal("unmarshaling settings", err)
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, apperrors.Internal("validating settings", err)
	}

	mu.Lock()
	current = s
	mu.Unlock()
	return s, nil
}

// Set installs settings directly. Used by tests and by hosts that manage
// their own configuration loading.
func Set(s *Settings) error {
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return apperrors.Internal("validating settings", err)
	}
	mu.Lock()
	current = s
	mu.Unlock()
	return nil
}

// Get returns the installed settings, or SETTINGS_NOT_INITIALIZED when Init
// has not been called.
func Get() (*Settings, error) {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return nil, apperrors.SettingsNotInitialized()
	}
	return current, nil
}

// Reset clears the installed settings. Used by tests.
func Reset() {
	mu.Lock()
	current = nil
	mu.Unlock()
}
