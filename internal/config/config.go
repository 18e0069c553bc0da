package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sheets    SheetsConfig    `yaml:"sheets" mapstructure:"sheets"`
	Drive     DriveConfig     `yaml:"drive" mapstructure:"drive"`
	Pricing   PricingConfig   `yaml:"pricing" mapstructure:"pricing"`
	Recalls   RecallsConfig   `yaml:"recalls" mapstructure:"recalls"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Answers   AnswersConfig   `yaml:"answers" mapstructure:"answers"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SheetsConfig holds Google Sheets API settings.
type SheetsConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// DriveConfig holds Google Drive API settings.
type DriveConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PricingConfig lists the pricing data sources.
type PricingConfig struct {
	Spreadsheets []SpreadsheetRef `yaml:"spreadsheets" mapstructure:"spreadsheets"`
	Workbooks    []string         `yaml:"workbooks" mapstructure:"workbooks"`
}

// SpreadsheetRef names one spreadsheet and the A1 ranges to fetch from it.
type SpreadsheetRef struct {
	ID     string   `yaml:"id" mapstructure:"id"`
	Ranges []string `yaml:"ranges" mapstructure:"ranges"`
}

// RecallsConfig configures where recall notices are listed from.
type RecallsConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // "drive" or "ftp"
	FolderID string `yaml:"folder_id" mapstructure:"folder_id"`
	FTPURL   string `yaml:"ftp_url" mapstructure:"ftp_url"`
}

// AnthropicConfig holds Anthropic API settings for the summarizer.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CacheConfig configures the data cache lifecycle.
type CacheConfig struct {
	StaleAfterMins    int  `yaml:"stale_after_mins" mapstructure:"stale_after_mins"`
	CheckIntervalSecs int  `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	ConcurrentFetch   bool `yaml:"concurrent_fetch" mapstructure:"concurrent_fetch"`
}

// SearchConfig tunes the pricing record ranking.
type SearchConfig struct {
	TopK     int `yaml:"top_k" mapstructure:"top_k"`
	MinScore int `yaml:"min_score" mapstructure:"min_score"`
}

// AnswersConfig configures the query answer cache.
type AnswersConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
	TTLMins  int `yaml:"ttl_mins" mapstructure:"ttl_mins"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SERVICEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sheets.base_url", "https://sheets.googleapis.com/v4")
	v.SetDefault("drive.base_url", "https://www.googleapis.com/drive/v3")
	v.SetDefault("recalls.provider", "drive")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("cache.stale_after_mins", 60)
	v.SetDefault("cache.check_interval_secs", 300)
	v.SetDefault("search.top_k", 5)
	v.SetDefault("search.min_score", 2)
	v.SetDefault("answers.capacity", 100)
	v.SetDefault("answers.ttl_mins", 60)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the fields required for the given mode are set.
// Modes: "serve" (HTTP server), "query" (one-shot question), "reload".
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "serve", "query", "reload":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(c.Pricing.Spreadsheets) == 0 && len(c.Pricing.Workbooks) == 0 {
		missing = append(missing, "at least one pricing source (pricing.spreadsheets or pricing.workbooks) is required")
	}
	if len(c.Pricing.Spreadsheets) > 0 && c.Sheets.Key == "" {
		missing = append(missing, "sheets.key is required when pricing.spreadsheets is set")
	}

	switch c.Recalls.Provider {
	case "drive":
		if c.Recalls.FolderID != "" && c.Drive.Key == "" {
			missing = append(missing, "drive.key is required when recalls.folder_id is set")
		}
	case "ftp":
		if c.Recalls.FTPURL == "" {
			missing = append(missing, "recalls.ftp_url is required for the ftp provider")
		}
	default:
		missing = append(missing, "recalls.provider must be \"drive\" or \"ftp\"")
	}

	if mode == "serve" || mode == "query" {
		if c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required")
		}
	}
	if mode == "serve" && c.Server.Port <= 0 {
		missing = append(missing, "server.port must be > 0")
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// Redacted returns a copy with API keys masked, for printing.
func (c Config) Redacted() Config {
	c.Sheets.Key = redact(c.Sheets.Key)
	c.Drive.Key = redact(c.Drive.Key)
	c.Anthropic.Key = redact(c.Anthropic.Key)
	return c
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
