package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the relay service.
// Values come from configs/config.defaults.yaml overridden by APP_* env vars.
type Config struct {
	ServerPort int    `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	// TestMode selects the Twilio test credential pair and test masked number.
	TestMode bool `mapstructure:"TEST_MODE"`

	TwilioAPIBaseURL      string `mapstructure:"TWILIO_API_BASE_URL"`
	TwilioAccountSID      string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken       string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioTestAccountSID  string `mapstructure:"TWILIO_TEST_ACCOUNT_SID"`
	TwilioTestAuthToken   string `mapstructure:"TWILIO_TEST_AUTH_TOKEN"`
	TwilioPhoneNumber     string `mapstructure:"TWILIO_PHONE_NUMBER"`
	TwilioTestPhoneNumber string `mapstructure:"TWILIO_TEST_PHONE_NUMBER"`
	TwilioProxyServiceSID string `mapstructure:"TWILIO_PROXY_SERVICE_SID"`

	HubSpotAPIBaseURL string `mapstructure:"HUBSPOT_API_BASE_URL"`
	HubSpotAPIKey     string `mapstructure:"HUBSPOT_API_KEY"`

	// ClientPhone is the single client number this relay serves.
	ClientPhone string `mapstructure:"CLIENT_PHONE"`

	// RoleNumbers maps logical role identifiers to real destination numbers.
	RoleNumbers map[string]string `mapstructure:"ROLE_NUMBERS"`

	ProviderTimeout time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	CRMTimeout      time.Duration `mapstructure:"CRM_TIMEOUT"`
}

// ActiveAccountSID returns the Twilio account SID for the current mode.
func (c *Config) ActiveAccountSID() string {
	if c.TestMode {
		return c.TwilioTestAccountSID
	}
	return c.TwilioAccountSID
}

// ActiveAuthToken returns the Twilio auth token for the current mode.
func (c *Config) ActiveAuthToken() string {
	if c.TestMode {
		return c.TwilioTestAuthToken
	}
	return c.TwilioAuthToken
}

// ActiveMaskedNumber returns the outbound masked number for the current mode.
func (c *Config) ActiveMaskedNumber() string {
	if c.TestMode {
		return c.TwilioTestPhoneNumber
	}
	return c.TwilioPhoneNumber
}

func Load(serviceName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config.defaults")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix("APP") // APP_LOG_LEVEL, APP_CLIENT_PHONE etc.

	v.SetDefault("SERVER_PORT", 5000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TEST_MODE", false)

	v.SetDefault("TWILIO_API_BASE_URL", "https://api.twilio.com")
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_TEST_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_TEST_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_PHONE_NUMBER", "")
	v.SetDefault("TWILIO_TEST_PHONE_NUMBER", "")
	v.SetDefault("TWILIO_PROXY_SERVICE_SID", "")

	v.SetDefault("HUBSPOT_API_BASE_URL", "https://api.hubapi.com")
	v.SetDefault("HUBSPOT_API_KEY", "")

	v.SetDefault("CLIENT_PHONE", "")
	// Dummy directory numbers, override per deployment.
	v.SetDefault("ROLE_NUMBERS", map[string]string{
		"project_manager":  "+15556667777",
		"content_producer": "+14445558888",
	})

	v.SetDefault("PROVIDER_TIMEOUT", "10s")
	v.SetDefault("CRM_TIMEOUT", "15s")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Base configuration file ('config.defaults.yaml') not found for %s; using defaults and environment variables.", serviceName)
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
