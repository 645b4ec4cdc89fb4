package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	ReviewLimit      int    `mapstructure:"review_limit"`
	ProgressTTLHours int    `mapstructure:"progress_ttl_hours"`
	SeedDir          string `mapstructure:"seed_dir"`
}

type JWTConfig struct {
	SecretKey   string `mapstructure:"secret_key"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type LLMConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	URL            string  `mapstructure:"url"`
	Model          string  `mapstructure:"model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
}

type MailConfig struct {
	// Provider selects the Mailer implementation: "log" or "ses".
	Provider string `mapstructure:"provider"`
	From     string `mapstructure:"from"`
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	AuthType        string `mapstructure:"auth_type"` // "static_credentials" or "iam_role"
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	App      AppConfig      `mapstructure:"app"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Mail     MailConfig     `mapstructure:"mail"`
	SES      SESConfig      `mapstructure:"ses"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// LoadConfig reads configs/config.yaml (or the given path) with APP_-prefixed
// environment overrides, e.g. APP_LLM_API_KEY, APP_JWT_SECRET_KEY.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", "APP_DATABASE_URL")
	_ = v.BindEnv("jwt.secret_key", "APP_JWT_SECRET_KEY")
	_ = v.BindEnv("llm.api_key", "APP_LLM_API_KEY")
	_ = v.BindEnv("ses.access_key_id", "APP_SES_ACCESS_KEY_ID")
	_ = v.BindEnv("ses.secret_access_key", "APP_SES_SECRET_ACCESS_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("config: read: %w", err)
		}
		// No config file is fine; env vars and defaults carry it.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.App.ReviewLimit <= 0 {
		cfg.App.ReviewLimit = DefaultReviewLimit
	}
	if cfg.App.ProgressTTLHours <= 0 {
		cfg.App.ProgressTTLHours = DefaultProgressTTLHours
	}
	if cfg.JWT.ExpiryHours <= 0 {
		cfg.JWT.ExpiryHours = DefaultJWTExpiryHours
	}
	if cfg.LLM.URL == "" {
		cfg.LLM.URL = DefaultLLMURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultLLMModel
	}
	if cfg.LLM.TimeoutSeconds <= 0 {
		cfg.LLM.TimeoutSeconds = DefaultLLMTimeoutSeconds
	}
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = DefaultLLMMaxTokens
	}
	if cfg.LLM.Temperature <= 0 {
		cfg.LLM.Temperature = DefaultLLMTemperature
	}
	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "log"
	}
}
