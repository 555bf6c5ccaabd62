package respectify

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	// DefaultBaseURL is the production service address.
	DefaultBaseURL = "https://app.respectify.org"

	// DefaultAPIVersion is the protocol revision spoken by default.
	DefaultAPIVersion = 0.2
)

// Encoding selects how request bodies are serialized. Older protocol
// revisions only accepted form encoding.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingForm Encoding = "form"
)

// Config holds the configuration for the client.
type Config struct {
	Email                string                // Account email, sent as X-User-Email (required)
	APIKey               string                // API key, sent as X-API-Key (required)
	BaseURL              string                // Service base URL
	APIVersion           float64               // Protocol revision, rendered to one decimal in URLs
	Encoding             Encoding              // Request body encoding
	EnableCircuitBreaker bool                  // Enable the transport circuit breaker
	CircuitBreakerConfig *CircuitBreakerConfig // Circuit breaker configuration
	EnableMetrics        bool                  // Enable Prometheus metrics
}

// NewDefaultConfig creates a config with sensible defaults.
func NewDefaultConfig(email, apiKey string) Config {
	return Config{
		Email:      email,
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		APIVersion: DefaultAPIVersion,
		Encoding:   EncodingJSON,
	}
}

// WithBaseURL points the client at a different service address.
func (c Config) WithBaseURL(baseURL string) Config {
	c.BaseURL = baseURL
	return c
}

// WithAPIVersion selects the protocol revision.
func (c Config) WithAPIVersion(version float64) Config {
	c.APIVersion = version
	return c
}

// WithFormEncoding switches request bodies to
// application/x-www-form-urlencoded for older protocol revisions.
func (c Config) WithFormEncoding() Config {
	c.Encoding = EncodingForm
	return c
}

// WithMetrics enables Prometheus metrics.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithCircuitBreaker enables the transport circuit breaker with default
// settings.
func (c Config) WithCircuitBreaker() Config {
	c.EnableCircuitBreaker = true
	c.CircuitBreakerConfig = &CircuitBreakerConfig{
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip on 5 consecutive failures OR failure rate > 60%
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && failureRatio > 0.6)
		},
	}
	return c
}

// WithCircuitBreakerConfig enables the circuit breaker with custom
// settings.
func (c Config) WithCircuitBreakerConfig(config *CircuitBreakerConfig) Config {
	c.EnableCircuitBreaker = true
	c.CircuitBreakerConfig = config
	return c
}

// Validate checks if the config is valid.
func (c Config) Validate() error {
	if c.Email == "" {
		return ErrMissingEmail
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}

	if c.BaseURL != "" {
		parsed, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("invalid base URL scheme: %q", parsed.Scheme)
		}
	}

	if c.APIVersion < 0 {
		return errors.New("API version must be non-negative")
	}

	switch c.Encoding {
	case "", EncodingJSON, EncodingForm:
	default:
		return fmt.Errorf("unsupported encoding: %q", c.Encoding)
	}

	if c.EnableCircuitBreaker && c.CircuitBreakerConfig == nil {
		return errors.New("circuit breaker enabled but config is nil")
	}

	return nil
}

// withDefaults fills in zero-valued optional fields.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.APIVersion == 0 {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Encoding == "" {
		c.Encoding = EncodingJSON
	}
	return c
}

// versionPath renders the version segment of request URLs, always with one
// decimal place (v0.2, v1.0).
func (c Config) versionPath() string {
	return fmt.Sprintf("v%.1f", c.APIVersion)
}
