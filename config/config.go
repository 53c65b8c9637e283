package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lakehouselib/lakehouse/devserver"
	"github.com/lakehouselib/lakehouse/devserver/database"
	devhttp "github.com/lakehouselib/lakehouse/devserver/http"
	"github.com/lakehouselib/lakehouse/devserver/users"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LAKEHOUSE_DEV"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration of the development server.
type Config struct {
	Server   ServerConfig       `mapstructure:"server"`
	Database database.Config    `mapstructure:"database"`
	Storage  StorageConfig      `mapstructure:"storage"`
	Auth     AuthConfig         `mapstructure:"auth"`
	Signing  SigningConfig      `mapstructure:"signing"`
	CORS     devhttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig          `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration. PublicURL is the base of
// signed URLs handed to clients; it defaults to http://localhost:<port>.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	PublicURL string `mapstructure:"public_url" validate:"omitempty,http_url"`
}

// BaseURL returns PublicURL, or the loopback URL of Port when unset.
func (s ServerConfig) BaseURL() string {
	if s.PublicURL != "" {
		return strings.TrimSuffix(s.PublicURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", s.Port)
}

// StorageConfig holds blob storage configuration.
type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AuthConfig holds login and bearer token configuration.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	Users     users.Config  `mapstructure:"users"`
}

// SigningConfig holds the key pair and lifetime of signed transfer URLs.
type SigningConfig struct {
	AccessKey string        `mapstructure:"access_key" validate:"required"`
	SecretKey string        `mapstructure:"secret_key" validate:"required"`
	Expires   time.Duration `mapstructure:"expires" validate:"gt=0,max=168h"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-path": "storage.path",
	"port":         "server.port",
	"public-url":   "server.public_url",
	"log-level":    "log.level",
	"users-file":   "auth.users.file",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. The
// defaults run a local server the client's default endpoint can reach.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.public_url", "")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "lakehouse.db")
	v.SetDefault("database.table", "lakehouse_documents")

	v.SetDefault("storage.path", "./data")

	v.SetDefault("auth.jwt_secret", "lakehouse-dev-jwt-secret")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.users.file", "")

	v.SetDefault("signing.access_key", "lakehouse-dev")
	v.SetDefault("signing.secret_key", "lakehouse-dev-secret")
	v.SetDefault("signing.expires", devserver.DefaultSignedURLExpiry)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("devserver")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
