package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INDEXER_URL", "http://indexer.local")
	t.Setenv("CONTRACT_ADDRESS", "0x00000000000000000000000000000000000000c0")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://indexer.local", cfg.IndexerUrl)
	assert.Equal(t, "1000000000", cfg.FixedGasPrice)
	assert.Equal(t, 50, cfg.PageLimit)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 5, cfg.IngestMaxAttempts)
	assert.True(t, cfg.ContractConfigured())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INDEXER_URL", "http://indexer.local")
	t.Setenv("PAGE_LIMIT", "10")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.PageLimit)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins())
}

func TestLoadRejectsMissingIndexer(t *testing.T) {
	t.Setenv("INDEXER_URL", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{IndexerUrl: "http://x", FixedGasPrice: "1000000000", PageLimit: 50, FetchTimeoutSeconds: 30, IngestMaxAttempts: 3, IngestCron: "@every 1m"}
	require.NoError(t, valid.Validate())

	badAddress := valid
	badAddress.ContractAddress = "not-an-address"
	assert.Error(t, badAddress.Validate())

	badGasPrice := valid
	badGasPrice.FixedGasPrice = "0.5"
	assert.Error(t, badGasPrice.Validate())

	badLimit := valid
	badLimit.PageLimit = 0
	assert.Error(t, badLimit.Validate())

	noProject := valid
	noProject.IngestTriggerSubscription = "ingest-trigger"
	assert.ErrorContains(t, noProject.Validate(), "GOOGLE_PROJECT_ID")

	noSchedule := valid
	noSchedule.IngestCron = " "
	assert.Error(t, noSchedule.Validate())
}

func TestContractConfigured(t *testing.T) {
	tests := []struct {
		address string
		want    bool
	}{
		{"", false},
		{placeholderContractAddress, false},
		{"0x1234567890ABCDEF1234567890abcdef12345678", true},
	}
	for _, tt := range tests {
		cfg := Config{ContractAddress: tt.address}
		assert.Equal(t, tt.want, cfg.ContractConfigured(), tt.address)
	}
}

func TestCorsOrigins(t *testing.T) {
	cfg := Config{CorsAllowedOrigins: " https://a.example, ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins())
}
