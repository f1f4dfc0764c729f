// Package config loads the wallet client configuration from defaults, an
// optional YAML file, a .env file and WALLET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Aidin1998/wallet_system/internal/storage"
)

// EnvPrefix prefixes every environment override, e.g. WALLET_API_TIMEOUT
const EnvPrefix = "WALLET"

// LegacyBaseURLEnv is the base URL variable used by the web client
const LegacyBaseURLEnv = "VITE_API_BASE_URL"

// Config holds the whole client configuration
type Config struct {
	App     AppConfig     `mapstructure:"app" yaml:"app"`
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

type AppConfig struct {
	Name    string `mapstructure:"name" yaml:"name" validate:"required"`
	Version string `mapstructure:"version" yaml:"version" validate:"required"`
}

// APIConfig points at the wallet service
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

// StorageConfig selects where the wallet id and preferences are kept
type StorageConfig struct {
	Driver         string `mapstructure:"driver" yaml:"driver" validate:"oneof=memory badger redis"`
	Path           string `mapstructure:"path" yaml:"path" validate:"required_if=Driver badger"`
	RedisAddr      string `mapstructure:"redis_addr" yaml:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword  string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB        int    `mapstructure:"redis_db" yaml:"redis_db" validate:"gte=0"`
	KeyPrefix      string `mapstructure:"key_prefix" yaml:"key_prefix"`
	WalletIDKey    string `mapstructure:"wallet_id_key" yaml:"wallet_id_key" validate:"required"`
	PreferencesKey string `mapstructure:"preferences_key" yaml:"preferences_key" validate:"required"`
}

type SessionConfig struct {
	ReloadDelay time.Duration `mapstructure:"reload_delay" yaml:"reload_delay" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json console"`
}

// Store returns the storage driver settings
func (s StorageConfig) Store() storage.Config {
	return storage.Config{
		Driver:        s.Driver,
		Path:          s.Path,
		RedisAddr:     s.RedisAddr,
		RedisPassword: s.RedisPassword,
		RedisDB:       s.RedisDB,
		KeyPrefix:     s.KeyPrefix,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Wallet System")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("api.base_url", "http://localhost:3002")
	v.SetDefault("api.timeout", 10*time.Second)

	v.SetDefault("storage.driver", storage.DriverBadger)
	v.SetDefault("storage.path", "~/.wallet-system")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.key_prefix", "wallet:")
	v.SetDefault("storage.wallet_id_key", "walletId")
	v.SetDefault("storage.preferences_key", "userPreferences")

	v.SetDefault("session.reload_delay", 1500*time.Millisecond)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads the configuration. An empty path searches for wallet.yaml in
// the working directory and in ~/.wallet-system; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.base_url", EnvPrefix+"_API_BASE_URL", LegacyBaseURLEnv); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("wallet")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.wallet-system")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the loaded values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files, or ./.env when none
// are named. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ValidateEnvironment warns about unset variables that fall back to defaults
// and returns their names.
func ValidateEnvironment(logger *zap.Logger) []string {
	var missing []string
	if os.Getenv(EnvPrefix+"_API_BASE_URL") == "" && os.Getenv(LegacyBaseURLEnv) == "" {
		missing = append(missing, LegacyBaseURLEnv)
	}
	for _, name := range missing {
		logger.Warn("Environment variable is not set, using default value", zap.String("variable", name))
	}
	return missing
}
