package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envKeys maps environment variable names to config keys. Only variables
// listed here are read; everything else in the environment is ignored.
var envKeys = map[string]string{
	"SLACK_BOT_TOKEN":      "slack.bot_token",
	"SLACK_APP_TOKEN":      "slack.app_token",
	"SOURCE_CHANNEL_ID":    "slack.source_channel",
	"FOLLOW_UP_CHANNEL_ID": "slack.follow_up_channel",
	"FUND_X_CHANNEL_ID":    "slack.fund_x_channel",
	"NO_ACTION_CHANNEL_ID": "slack.no_action_channel",

	"OPENAI_API_KEY":     "openai.api_key",
	"OPENAI_MODEL":       "openai.model",
	"OPENAI_BASE_URL":    "openai.base_url",
	"OPENAI_TEMPERATURE": "openai.temperature",

	"EMAIL_PROVIDER":           "email.provider",
	"EMAIL_USERNAME":           "email.username",
	"EMAIL_PASSWORD":           "email.password",
	"EMAIL_FROM":               "email.from",
	"EMAIL_OWNER_EMAIL":        "email.owner_email",
	"EMAIL_TEST_RECIPIENT":     "email.test_recipient",
	"EMAIL_USE_TEST_RECIPIENT": "email.use_test_recipient",

	"DEALCLOUD_ENABLED":          "dealcloud.enabled",
	"DEALCLOUD_BASE_URL":         "dealcloud.base_url",
	"DEALCLOUD_CLIENT_ID":        "dealcloud.client_id",
	"DEALCLOUD_CLIENT_SECRET":    "dealcloud.client_secret",
	"DEALCLOUD_INTERACTION_TYPE": "dealcloud.interaction_type",
	"DEALCLOUD_ATTENDEE_ID":      "dealcloud.attendee_id",

	"HTTP_HOST": "http.host",
	"HTTP_PORT": "http.port",

	"LOG_LEVEL":  "log.level",
	"LOG_FORMAT": "log.format",
	"LOG_CALLER": "log.caller",
}

// Load builds the configuration from defaults, an optional YAML file
// (fund criteria and overrides), and environment variables, in that order.
// configPath may be empty; a non-empty path that does not exist is an error.
func Load(configPath string) (*Config, error) {
	cfg := NewDefault()
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	// Environment variables override the file. Unknown variables are
	// dropped by the transformer returning "".
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
