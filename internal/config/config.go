package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Metadata catalog provider
	CatalogURL string

	// Text generation provider
	LLMURL   string
	LLMKey   string
	LLMModel string

	// SMS provider
	SMSAccountSID string
	SMSAuthToken  string
	SMSFromNumber string

	// Refresh heuristics
	StalenessWindow  time.Duration // Age after which fetched metadata counts as stale
	BackgroundBatch  int           // Max animes refreshed per background sweep
	EnrichBatchSize  int           // Max characters enriched per request
	EnrichMarkFailed bool          // Mark characters failed on enrichment error instead of leaving status untouched

	// Server
	ServerPort string

	// Paths
	DatabaseFile  string // $CONFIG_DIR/aniarr.db
	MirrorFile    string // $CONFIG_DIR/mirror.json
	BlocklistFile string // $CONFIG_DIR/blocklist.txt

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("CATALOG_URL", "https://api.jikan.moe/v4")
	viper.SetDefault("LLM_URL", "https://api.openai.com/v1")
	viper.SetDefault("LLM_MODEL", "gpt-4o-mini")
	viper.SetDefault("STALENESS_WINDOW_HOURS", 24)
	viper.SetDefault("BACKGROUND_BATCH", 10)
	viper.SetDefault("ENRICH_BATCH_SIZE", 5)
	viper.SetDefault("ENRICH_MARK_FAILED", false)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "aniarr")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		CatalogURL: viper.GetString("CATALOG_URL"),

		LLMURL:   viper.GetString("LLM_URL"),
		LLMKey:   viper.GetString("LLM_KEY"),
		LLMModel: viper.GetString("LLM_MODEL"),

		SMSAccountSID: viper.GetString("SMS_ACCOUNT_SID"),
		SMSAuthToken:  viper.GetString("SMS_AUTH_TOKEN"),
		SMSFromNumber: viper.GetString("SMS_FROM_NUMBER"),

		StalenessWindow:  time.Duration(viper.GetInt("STALENESS_WINDOW_HOURS")) * time.Hour,
		BackgroundBatch:  viper.GetInt("BACKGROUND_BATCH"),
		EnrichBatchSize:  viper.GetInt("ENRICH_BATCH_SIZE"),
		EnrichMarkFailed: viper.GetBool("ENRICH_MARK_FAILED"),

		ServerPort: viper.GetString("SERVER_PORT"),

		DatabaseFile:  filepath.Join(configDir, "aniarr.db"),
		MirrorFile:    filepath.Join(configDir, "mirror.json"),
		BlocklistFile: filepath.Join(configDir, "blocklist.txt"),

		LogLevel:  viper.GetString("LOG_LEVEL"),
		LogFormat: viper.GetString("LOG_FORMAT"),
	}

	// Validate required fields
	if config.LLMKey == "" {
		return nil, fmt.Errorf("LLM_KEY is required")
	}
	if config.SMSAccountSID == "" {
		return nil, fmt.Errorf("SMS_ACCOUNT_SID is required")
	}
	if config.SMSAuthToken == "" {
		return nil, fmt.Errorf("SMS_AUTH_TOKEN is required")
	}
	if config.SMSFromNumber == "" {
		return nil, fmt.Errorf("SMS_FROM_NUMBER is required")
	}

	return config, nil
}
