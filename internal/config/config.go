// Package config provides configuration loading for dealflowd.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (SLACK_BOT_TOKEN, EMAIL_PROVIDER, HTTP_PORT, ...)
//  2. Optional YAML file (fund criteria and overrides)
//  3. Hardcoded defaults
package config

import (
	"errors"
	"fmt"

	"github.com/dealflowhq/dealflow/internal/logging"
	"github.com/dealflowhq/dealflow/internal/record"
)

// Config is the root configuration for the daemon.
type Config struct {
	Slack     SlackConfig                    `koanf:"slack"`
	OpenAI    OpenAIConfig                   `koanf:"openai"`
	Email     EmailConfig                    `koanf:"email"`
	DealCloud DealCloudConfig                `koanf:"dealcloud"`
	HTTP      HTTPConfig                     `koanf:"http"`
	Log       logging.Config                 `koanf:"log"`
	Funds     map[string]record.FundCriteria `koanf:"funds"`
}

// SlackConfig holds bot credentials and the channel topology.
type SlackConfig struct {
	BotToken Secret `koanf:"bot_token"`
	AppToken Secret `koanf:"app_token"`

	// SourceChannel receives raw transcripts. FollowUpChannel receives the
	// interactive notifications. FundXChannel and NoActionChannel receive
	// outcome broadcasts.
	SourceChannel   string `koanf:"source_channel"`
	FollowUpChannel string `koanf:"follow_up_channel"`
	FundXChannel    string `koanf:"fund_x_channel"`
	NoActionChannel string `koanf:"no_action_channel"`
}

// OpenAIConfig configures the text-generation service.
type OpenAIConfig struct {
	APIKey      Secret  `koanf:"api_key"`
	Model       string  `koanf:"model"`
	Temperature float64 `koanf:"temperature"`
	BaseURL     string  `koanf:"base_url"`
}

// EmailConfig configures SMTP delivery. Provider selects one of two fixed
// presets (gmail or office365), both port 587 with STARTTLS.
type EmailConfig struct {
	Provider string `koanf:"provider"`
	Username string `koanf:"username"`
	Password Secret `koanf:"password"`
	From     string `koanf:"from"`

	// OwnerEmail is the production recipient; TestRecipient is used while
	// UseTestRecipient is set (the default).
	OwnerEmail       string `koanf:"owner_email"`
	TestRecipient    string `koanf:"test_recipient"`
	UseTestRecipient bool   `koanf:"use_test_recipient"`
}

// Recipient returns the active recipient address.
func (c EmailConfig) Recipient() string {
	if c.UseTestRecipient {
		return c.TestRecipient
	}
	return c.OwnerEmail
}

// DealCloudConfig configures the CRM integration.
type DealCloudConfig struct {
	Enabled      bool   `koanf:"enabled"`
	BaseURL      string `koanf:"base_url"`
	ClientID     string `koanf:"client_id"`
	ClientSecret Secret `koanf:"client_secret"`

	// InteractionType is the CRM's integer type code for meeting
	// interactions. AttendeeID is the internal attendee entry to associate.
	InteractionType int64 `koanf:"interaction_type"`
	AttendeeID      int64 `koanf:"attendee_id"`
}

// HTTPConfig configures the health/metrics listener.
type HTTPConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// NewDefault returns config with defaults applied.
func NewDefault() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o",
			Temperature: 0,
		},
		Email: EmailConfig{
			Provider:         "gmail",
			UseTestRecipient: true,
		},
		DealCloud: DealCloudConfig{
			InteractionType: 1947215,
		},
		HTTP: HTTPConfig{
			Host: "localhost",
			Port: 9090,
		},
		Log: logging.NewDefaultConfig(),
	}
}

// Validate checks that all required credentials and channels are present.
// A validation failure is fatal at startup; the process must not start.
func (c *Config) Validate() error {
	var errs []error

	if !c.Slack.BotToken.IsSet() {
		errs = append(errs, errors.New("slack bot token is required (SLACK_BOT_TOKEN)"))
	}
	if !c.Slack.AppToken.IsSet() {
		errs = append(errs, errors.New("slack app token is required (SLACK_APP_TOKEN)"))
	}
	if c.Slack.SourceChannel == "" {
		errs = append(errs, errors.New("source channel is required (SOURCE_CHANNEL_ID)"))
	}
	if c.Slack.FollowUpChannel == "" {
		errs = append(errs, errors.New("follow-up channel is required (FOLLOW_UP_CHANNEL_ID)"))
	}
	if !c.OpenAI.APIKey.IsSet() {
		errs = append(errs, errors.New("openai api key is required (OPENAI_API_KEY)"))
	}

	switch c.Email.Provider {
	case "gmail", "office365":
	default:
		errs = append(errs, fmt.Errorf("unsupported email provider %q (want gmail or office365)", c.Email.Provider))
	}
	if c.Email.Username == "" {
		errs = append(errs, errors.New("email username is required (EMAIL_USERNAME)"))
	}
	if !c.Email.Password.IsSet() {
		errs = append(errs, errors.New("email password is required (EMAIL_PASSWORD)"))
	}
	if c.Email.From == "" {
		errs = append(errs, errors.New("from address is required (EMAIL_FROM)"))
	}
	if c.Email.Recipient() == "" {
		errs = append(errs, errors.New("email recipient is required (EMAIL_TEST_RECIPIENT or EMAIL_OWNER_EMAIL)"))
	}

	if c.DealCloud.Enabled {
		if c.DealCloud.BaseURL == "" {
			errs = append(errs, errors.New("dealcloud base url is required when enabled (DEALCLOUD_BASE_URL)"))
		}
		if c.DealCloud.ClientID == "" {
			errs = append(errs, errors.New("dealcloud client id is required when enabled (DEALCLOUD_CLIENT_ID)"))
		}
		if !c.DealCloud.ClientSecret.IsSet() {
			errs = append(errs, errors.New("dealcloud client secret is required when enabled (DEALCLOUD_CLIENT_SECRET)"))
		}
	}

	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid http port %d", c.HTTP.Port))
	}

	return errors.Join(errs...)
}
