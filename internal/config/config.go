// Package config loads tool configuration from YAML files, .env files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// GitHub configuration
	GitHub GitHubConfig `yaml:"github"`

	// Analysis settings
	Analysis AnalysisConfig `yaml:"analysis"`

	// Code pair generation settings
	Pairs PairsConfig `yaml:"pairs"`

	// Import settings
	Import ImportConfig `yaml:"import"`
}

type StorageConfig struct {
	Type        string `yaml:"type"` // "postgres", "sqlite"
	PostgresDSN string `yaml:"postgres_dsn"`
	LocalPath   string `yaml:"local_path"`
}

type GitHubConfig struct {
	Token     string `yaml:"token"`
	RateLimit int    `yaml:"rate_limit"` // Requests per second
	CachePath string `yaml:"cache_path"`
}

type AnalysisConfig struct {
	ResultsDir          string  `yaml:"results_dir"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

type PairsConfig struct {
	ProjectsDir  string `yaml:"projects_dir"`
	ExtractorJAR string `yaml:"extractor_jar"`
}

type ImportConfig struct {
	APIURL string `yaml:"api_url"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Storage: StorageConfig{
			Type:      "sqlite",
			LocalPath: filepath.Join(homeDir, ".jperfevo", "local.db"),
		},
		GitHub: GitHubConfig{
			RateLimit: 10, // 10 requests per second
			CachePath: filepath.Join(homeDir, ".jperfevo", "stats.db"),
		},
		Analysis: AnalysisConfig{
			ResultsDir:          "results",
			SimilarityThreshold: 0.90,
		},
		Pairs: PairsConfig{
			ProjectsDir:  "projects",
			ExtractorJAR: filepath.Join("resources", "jpb.jar"),
		},
		Import: ImportConfig{
			APIURL: "http://localhost:5001/api/admin/import-code-pairs",
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	// Load .env files first (in order of precedence)
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults
	cfg := Default()
	v.SetDefault("storage", cfg.Storage)
	v.SetDefault("github", cfg.GitHub)
	v.SetDefault("analysis", cfg.Analysis)
	v.SetDefault("pairs", cfg.Pairs)
	v.SetDefault("import", cfg.Import)

	// Load from environment variables
	v.SetEnvPrefix("JPERFEVO")
	v.AutomaticEnv()

	// Try to find config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Search for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath(".jperfevo")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".jperfevo"))
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	// Unmarshal into struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() {
	envFiles := []string{
		".env.local", // Local overrides (highest precedence)
		".env",       // Main environment file
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	// Also try loading from home directory
	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".jperfevo", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	// GitHub configuration
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if rateLimit := os.Getenv("GITHUB_RATE_LIMIT"); rateLimit != "" {
		if rate, err := strconv.Atoi(rateLimit); err == nil {
			cfg.GitHub.RateLimit = rate
		}
	}

	// Storage configuration
	if storageType := os.Getenv("STORAGE_TYPE"); storageType != "" {
		cfg.Storage.Type = storageType
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Storage.PostgresDSN = dsn
	}
	if path := os.Getenv("LOCAL_DB_PATH"); path != "" {
		cfg.Storage.LocalPath = path
	}

	// Import configuration
	if url := os.Getenv("IMPORT_API_URL"); url != "" {
		cfg.Import.APIURL = url
	}
}
