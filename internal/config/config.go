package config

import (
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config holds the service settings. Values in the YAML file are defaults;
// matching environment variables always win so hosted deploys can override
// without shipping a file.
type Config struct {
	Port string `yaml:"port"`

	NutritionAPIURL string `yaml:"nutrition_api_url"`
	NutritionAPIKey string `yaml:"nutrition_api_key"`
	VisionAPIURL    string `yaml:"vision_api_url"`

	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	MailFrom       string `yaml:"mail_from"`
	AppBaseURL     string `yaml:"app_base_url"`
	SelfBaseURL    string `yaml:"self_base_url"`

	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`

	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads the YAML config at path (missing file is fine) and applies env
// overrides on top.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:              "5050",
		NutritionAPIURL:   "https://api.calorieninjas.com",
		VisionAPIURL:      "http://localhost:8000",
		AppBaseURL:        "http://localhost:5173",
		MailFrom:          "no-reply@nutrivision.app",
		HeartbeatInterval: 60 * time.Second,
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.NutritionAPIURL, "NUTRITION_API_URL")
	overrideString(&cfg.NutritionAPIKey, "CALORIENINJAS_API_KEY")
	overrideString(&cfg.VisionAPIURL, "VISION_API_URL")
	overrideString(&cfg.SendGridAPIKey, "SENDGRID_API_KEY")
	overrideString(&cfg.MailFrom, "MAIL_FROM")
	overrideString(&cfg.AppBaseURL, "APP_BASE_URL")
	overrideString(&cfg.SelfBaseURL, "SELF_BASE_URL")
	overrideString(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	overrideString(&cfg.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")

	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 60 * time.Second
	}
	// The OAuth redirect URI is built from this, so a deployed instance must
	// set it to its public address.
	if cfg.SelfBaseURL == "" {
		cfg.SelfBaseURL = "http://localhost:" + cfg.Port
	}

	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
