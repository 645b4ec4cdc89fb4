package config

const (
	AppName    = "language-app"
	AppVersion = "0.3.0"
)

// Default settings applied when the config file and environment are silent.
const (
	DefaultServerPort        = ":8080"
	DefaultLogLevel          = "info"
	DefaultReviewLimit       = 20
	DefaultProgressTTLHours  = 24
	DefaultJWTExpiryHours    = 72
	DefaultLLMURL            = "https://api.openai.com/v1/chat/completions"
	DefaultLLMModel          = "gpt-4o-mini"
	DefaultLLMTimeoutSeconds = 30
	DefaultLLMMaxTokens      = 1024
	DefaultLLMTemperature    = 0.4
)

// ProgressKeyPrefix namespaces exercise progress records in the store.
const ProgressKeyPrefix = "exercise-progress-"
