package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

var AppFs = afero.NewOsFs()

// Config holds the application configuration
type Config struct {
	Provider    string
	DatabaseURL string
	Table       string
	TimeoutMS   int
	CacheSize   int
	CacheTTLSec int
	IndexPath   string
	Debug       bool
}

// LoadConfig loads configuration from config files, .env files and
// QUERYKIT_* environment variables, in rising priority.
func LoadConfig() (*Config, error) {
	// Find home directory
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	// Set config file paths
	viper.SetConfigName(".querykit")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "querykit"))

	// Set environment variable prefix
	viper.SetEnvPrefix("QUERYKIT")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("provider", "sqlite")
	viper.SetDefault("database_url", "querykit.db")
	viper.SetDefault("table", "")
	viper.SetDefault("timeout_ms", 30000)
	viper.SetDefault("cache_size", 256)
	viper.SetDefault("cache_ttl_sec", 60)
	viper.SetDefault("index_path", ".querykit/index.json")
	viper.SetDefault("debug", false)

	// Try to read config file (ignore if not found)
	_ = viper.ReadInConfig()

	// Load .env file if it exists
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	// Load .env.local if it exists (higher priority)
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		Provider:    viper.GetString("provider"),
		DatabaseURL: viper.GetString("database_url"),
		Table:       viper.GetString("table"),
		TimeoutMS:   viper.GetInt("timeout_ms"),
		CacheSize:   viper.GetInt("cache_size"),
		CacheTTLSec: viper.GetInt("cache_ttl_sec"),
		IndexPath:   viper.GetString("index_path"),
		Debug:       viper.GetBool("debug"),
	}

	// DATABASE_URL wins over everything, matching common deployment setups.
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	return cfg, nil
}

// SaveConfig saves configuration to the per-user config file
func SaveConfig(cfg *Config) error {
	home, err := homedir.Dir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".config", "querykit")
	if err := AppFs.MkdirAll(configPath, 0755); err != nil {
		return err
	}

	return SaveConfigTo(cfg, filepath.Join(configPath, ".querykit.yaml"))
}

// SaveConfigTo writes the configuration to an explicit path.
func SaveConfigTo(cfg *Config, path string) error {
	viper.Set("provider", cfg.Provider)
	viper.Set("database_url", cfg.DatabaseURL)
	viper.Set("table", cfg.Table)
	viper.Set("timeout_ms", cfg.TimeoutMS)
	viper.Set("cache_size", cfg.CacheSize)
	viper.Set("cache_ttl_sec", cfg.CacheTTLSec)
	viper.Set("index_path", cfg.IndexPath)
	viper.Set("debug", cfg.Debug)

	return viper.WriteConfigAs(path)
}
