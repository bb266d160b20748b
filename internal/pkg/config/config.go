package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// placeholderContractAddress is shipped in sample env files and never points at a deployed contract.
const placeholderContractAddress = "0x1234567890123456789012345678901234567890"

type Config struct {
	Port  string `mapstructure:"PORT"`
	DbUrl string `mapstructure:"DB_URL"`

	IndexerUrl          string `mapstructure:"INDEXER_URL"`
	ContractAddress     string `mapstructure:"CONTRACT_ADDRESS"`
	FixedGasPrice       string `mapstructure:"FIXED_GAS_PRICE"`
	PageLimit           int    `mapstructure:"PAGE_LIMIT"`
	FetchTimeoutSeconds int    `mapstructure:"FETCH_TIMEOUT_SECONDS"`

	IngestCron        string `mapstructure:"INGEST_CRON"`
	IngestMaxAttempts int    `mapstructure:"INGEST_MAX_ATTEMPTS"`

	GoogleProjectId           string `mapstructure:"GOOGLE_PROJECT_ID"`
	IngestTriggerSubscription string `mapstructure:"INGEST_TRIGGER_SUBSCRIPTION"`
	AuthEnabled               bool   `mapstructure:"AUTH_ENABLED"`
	CorsAllowedOrigins        string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

var keys = []string{
	"PORT", "DB_URL", "INDEXER_URL", "CONTRACT_ADDRESS", "FIXED_GAS_PRICE", "PAGE_LIMIT",
	"FETCH_TIMEOUT_SECONDS", "INGEST_CRON", "INGEST_MAX_ATTEMPTS", "GOOGLE_PROJECT_ID",
	"INGEST_TRIGGER_SUBSCRIPTION", "AUTH_ENABLED", "CORS_ALLOWED_ORIGINS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", ":8080")
	v.SetDefault("FIXED_GAS_PRICE", "1000000000")
	v.SetDefault("PAGE_LIMIT", 50)
	v.SetDefault("FETCH_TIMEOUT_SECONDS", 30)
	v.SetDefault("INGEST_CRON", "@every 1m")
	v.SetDefault("INGEST_MAX_ATTEMPTS", 5)
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// Load reads the environment and, when present, the given .env file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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

func (c *Config) Validate() error {
	if strings.TrimSpace(c.IndexerUrl) == "" {
		return errors.New("INDEXER_URL is required")
	}
	gasPrice, err := decimal.NewFromString(c.FixedGasPrice)
	if err != nil || !gasPrice.IsPositive() || !gasPrice.IsInteger() {
		return fmt.Errorf("FIXED_GAS_PRICE must be a positive integer in wei, got %q", c.FixedGasPrice)
	}
	if c.PageLimit <= 0 {
		return fmt.Errorf("PAGE_LIMIT must be positive, got %d", c.PageLimit)
	}
	if c.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT_SECONDS must be positive, got %d", c.FetchTimeoutSeconds)
	}
	if c.IngestMaxAttempts <= 0 {
		return fmt.Errorf("INGEST_MAX_ATTEMPTS must be positive, got %d", c.IngestMaxAttempts)
	}
	if strings.TrimSpace(c.IngestCron) == "" {
		return errors.New("INGEST_CRON is required")
	}
	if c.IngestTriggerSubscription != "" && c.GoogleProjectId == "" {
		return errors.New("GOOGLE_PROJECT_ID is required when INGEST_TRIGGER_SUBSCRIPTION is set")
	}
	if c.ContractAddress != "" && !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("CONTRACT_ADDRESS %q is not a hex address", c.ContractAddress)
	}
	return nil
}

// ContractConfigured reports whether ingestion has a real contract to attribute transactions to.
func (c *Config) ContractConfigured() bool {
	return c.ContractAddress != "" && !strings.EqualFold(c.ContractAddress, placeholderContractAddress)
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c *Config) CorsOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CorsAllowedOrigins, ",") {
		if o := strings.TrimSpace(origin); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
