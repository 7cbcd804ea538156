package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealflowhq/dealflow/internal/record"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")
	t.Setenv("SOURCE_CHANNEL_ID", "C001")
	t.Setenv("FOLLOW_UP_CHANNEL_ID", "C002")
	t.Setenv("FUND_X_CHANNEL_ID", "C003")
	t.Setenv("NO_ACTION_CHANNEL_ID", "C004")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EMAIL_USERNAME", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")
	t.Setenv("EMAIL_FROM", "bot@example.com")
	t.Setenv("EMAIL_TEST_RECIPIENT", "ops@example.com")
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EMAIL_PROVIDER", "office365")
	t.Setenv("HTTP_PORT", "8088")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken.Value())
	assert.Equal(t, "C001", cfg.Slack.SourceChannel)
	assert.Equal(t, "office365", cfg.Email.Provider)
	assert.Equal(t, "ops@example.com", cfg.Email.Recipient())
	assert.Equal(t, 8088, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults survive env overrides elsewhere.
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.EqualValues(t, 1947215, cfg.DealCloud.InteractionType)
}

func TestLoadCriteriaFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "criteria.yaml")
	content := `
funds:
  fund_x:
    min_revenue: 1000000
    target_industries: [ai, saas, fintech]
    stages: [series_a, series_b]
    check_size_min: 500000
    check_size_max: 5000000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	fund, ok := cfg.Funds["fund_x"]
	require.True(t, ok)
	assert.Equal(t, float64(1000000), fund.MinRevenue)
	assert.Equal(t, []record.Industry{record.IndustryAI, record.IndustrySaaS, record.IndustryFintech}, fund.TargetIndustries)
	assert.Equal(t, float64(5000000), fund.CheckSizeMax)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateMissingCredentials(t *testing.T) {
	cfg := NewDefault()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack bot token")
	assert.Contains(t, err.Error(), "openai api key")
}

func TestValidateDealCloudEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DEALCLOUD_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dealcloud base url")

	t.Setenv("DEALCLOUD_BASE_URL", "https://crm.example.com")
	t.Setenv("DEALCLOUD_CLIENT_ID", "42")
	t.Setenv("DEALCLOUD_CLIENT_SECRET", "s3cret")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("hunter2")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "hunter2", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `"[REDACTED]"`, string(data))

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}
