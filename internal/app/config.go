package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (AQUILA_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Chat      ChatConfig
	Session   SessionConfig
	Gateway   GatewayConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// ChatConfig configures the Gemini-backed shopping assistant.
type ChatConfig struct {
	APIKey  string        `usage:"Gemini API key (AQUILA_CHAT_API_KEY or GEMINI_API_KEY)" flag:"gemini-api-key"`
	Model   string        `default:"gemini-2.5-flash" usage:"Gemini model name" flag:"gemini-model"`
	Timeout time.Duration `default:"30s" usage:"Per-reply generation timeout" flag:"gemini-timeout"`
}

// SessionConfig controls visitor session lifetime.
type SessionConfig struct {
	TTL             time.Duration `default:"30m" usage:"Idle time before a session is evicted"`
	JanitorInterval time.Duration `default:"1m" usage:"How often idle sessions are swept" flag:"janitor-interval"`
}

// GatewayConfig controls the simulated payment gateway.
type GatewayConfig struct {
	Delay time.Duration `default:"2s" usage:"Simulated payment processing delay"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults. A missing Gemini key is
// not an error; the assistant degrades to a fixed unavailable reply.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "AQUILA",
		Files:     []string{"config.yaml", "/etc/aquila/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like GEMINI_API_KEY
// and PORT to the application's AQUILA_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Chat.APIKey == "" {
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			c.Chat.APIKey = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
