package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/davoli/staticms/internal/logger"
)

const (
	ProviderAuto   = "auto"
	ProviderGitHub = "github"
	ProviderLocal  = "local"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Misc    MiscConfig    `mapstructure:"misc"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutDownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
}

// StorageConfig selects and configures the content storage backend.
type StorageConfig struct {
	Provider string       `mapstructure:"provider"`
	GitHub   GitHubConfig `mapstructure:"github"`
	Local    LocalConfig  `mapstructure:"local"`
}

// GitHubConfig holds the coordinates of the content repository.
// Token is normally supplied via STATICMS_STORAGE_GITHUB_TOKEN or a .env file.
type GitHubConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Owner   string `mapstructure:"owner"`
	Repo    string `mapstructure:"repo"`
	Branch  string `mapstructure:"branch"`
	Token   string `mapstructure:"token"`
}

// LocalConfig holds settings for the on-disk fallback store.
type LocalConfig struct {
	FilePath        string        `mapstructure:"file_path"`
	PersistInterval time.Duration `mapstructure:"persist_interval"`
}

// MiscConfig holds everything that does not fit elsewhere.
type MiscConfig struct {
	GinMode  string `mapstructure:"gin_mode"`
	LogLevel string `mapstructure:"log_level"`
}

// HasGitHubCoordinates reports whether all fields required to reach the
// remote repository are present. It does not verify them.
func (g GitHubConfig) HasGitHubCoordinates() bool {
	return g.Owner != "" && g.Repo != "" && g.Token != ""
}

// LoadConfig reads configuration from ./config/config.yaml (if present),
// .env and environment variables. Env vars use the STATICMS prefix, e.g.
// STATICMS_SERVER_PORT overrides server.port.
func LoadConfig() (*Config, error) {
	// .env is optional; it usually only carries the GitHub token.
	if err := godotenv.Load(); err == nil {
		logger.WithComponent("config").Debug("loaded environment from .env")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("STATICMS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.WithComponent("config").Info("no config file found, using defaults and env vars")
		} else {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Second)
	viper.SetDefault("server.idle_timeout", 120*time.Second)
	viper.SetDefault("server.shutdown_timeout", 5*time.Second)
	viper.SetDefault("server.request_timeout", 10*time.Second)
	viper.SetDefault("server.cors_allowed_origins", "*")

	viper.SetDefault("storage.provider", ProviderAuto)
	viper.SetDefault("storage.github.enabled", false)
	viper.SetDefault("storage.github.owner", "")
	viper.SetDefault("storage.github.repo", "")
	viper.SetDefault("storage.github.branch", "main")
	viper.SetDefault("storage.github.token", "")
	viper.SetDefault("storage.local.file_path", "./data/content.json")
	viper.SetDefault("storage.local.persist_interval", 5*time.Second)

	viper.SetDefault("misc.gin_mode", "release")
	viper.SetDefault("misc.log_level", "info")
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.ShutDownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	switch c.Storage.Provider {
	case ProviderAuto, ProviderGitHub, ProviderLocal:
	default:
		return fmt.Errorf("unknown storage provider: %s (supported: %s, %s, %s)",
			c.Storage.Provider, ProviderAuto, ProviderGitHub, ProviderLocal)
	}

	if c.Storage.Local.FilePath == "" {
		return fmt.Errorf("local storage file path is required")
	}
	if c.Storage.Local.PersistInterval <= 0 {
		return fmt.Errorf("local persist interval must be positive")
	}
	if c.Storage.GitHub.Branch == "" {
		return fmt.Errorf("github branch is required")
	}

	return nil
}
