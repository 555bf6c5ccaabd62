package respectify_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sony/gobreaker/v2"

	"github.com/respectify/respectify-go/respectify"
)

var _ = Describe("Config", func() {
	Describe("NewDefaultConfig", func() {
		It("should create config with sensible defaults", func() {
			cfg := respectify.NewDefaultConfig("user@example.com", "test-key")

			Expect(cfg.Email).To(Equal("user@example.com"))
			Expect(cfg.APIKey).To(Equal("test-key"))
			Expect(cfg.BaseURL).To(Equal("https://app.respectify.org"))
			Expect(cfg.APIVersion).To(Equal(0.2))
			Expect(cfg.Encoding).To(Equal(respectify.EncodingJSON))
			Expect(cfg.EnableCircuitBreaker).To(BeFalse())
			Expect(cfg.CircuitBreakerConfig).To(BeNil())
			Expect(cfg.EnableMetrics).To(BeFalse())
		})
	})

	Describe("builders", func() {
		It("should override the base URL", func() {
			cfg := respectify.NewDefaultConfig("user@example.com", "key").
				WithBaseURL("https://staging.respectify.org")
			Expect(cfg.BaseURL).To(Equal("https://staging.respectify.org"))
		})

		It("should select a protocol revision", func() {
			cfg := respectify.NewDefaultConfig("user@example.com", "key").
				WithAPIVersion(1.0)
			Expect(cfg.APIVersion).To(Equal(1.0))
		})

		It("should switch to form encoding", func() {
			cfg := respectify.NewDefaultConfig("user@example.com", "key").
				WithFormEncoding()
			Expect(cfg.Encoding).To(Equal(respectify.EncodingForm))
		})

		It("should enable metrics", func() {
			cfg := respectify.NewDefaultConfig("user@example.com", "key").
				WithMetrics()
			Expect(cfg.EnableMetrics).To(BeTrue())
		})

		It("should enable circuit breaker with default settings", func() {
			cfg := respectify.NewDefaultConfig("user@example.com", "key").
				WithCircuitBreaker()

			Expect(cfg.EnableCircuitBreaker).To(BeTrue())
			Expect(cfg.CircuitBreakerConfig).ToNot(BeNil())
			Expect(cfg.CircuitBreakerConfig.MaxRequests).To(Equal(uint32(10)))
			Expect(cfg.CircuitBreakerConfig.Interval).To(Equal(60 * time.Second))
			Expect(cfg.CircuitBreakerConfig.Timeout).To(Equal(30 * time.Second))
			Expect(cfg.CircuitBreakerConfig.ReadyToTrip).ToNot(BeNil())
		})

		It("should use custom circuit breaker settings when provided", func() {
			custom := &respectify.CircuitBreakerConfig{
				MaxRequests: 5,
				Interval:    30 * time.Second,
				Timeout:     15 * time.Second,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures >= 2
				},
			}
			cfg := respectify.NewDefaultConfig("user@example.com", "key").
				WithCircuitBreakerConfig(custom)

			Expect(cfg.EnableCircuitBreaker).To(BeTrue())
			Expect(cfg.CircuitBreakerConfig).To(Equal(custom))
		})
	})

	Describe("Validate", func() {
		var cfg respectify.Config

		BeforeEach(func() {
			cfg = respectify.NewDefaultConfig("user@example.com", "test-key")
		})

		It("should accept the default config", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject a missing email", func() {
			cfg.Email = ""
			Expect(cfg.Validate()).To(Equal(respectify.ErrMissingEmail))
		})

		It("should reject a missing API key", func() {
			cfg.APIKey = ""
			Expect(cfg.Validate()).To(Equal(respectify.ErrMissingAPIKey))
		})

		It("should reject a base URL without an HTTP scheme", func() {
			cfg.BaseURL = "ftp://app.respectify.org"
			err := cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("scheme"))
		})

		It("should reject a negative API version", func() {
			cfg.APIVersion = -1
			err := cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("version"))
		})

		It("should reject an unknown encoding", func() {
			cfg.Encoding = "xml"
			err := cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("encoding"))
		})

		It("should reject an enabled breaker with nil config", func() {
			cfg.EnableCircuitBreaker = true
			cfg.CircuitBreakerConfig = nil
			err := cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("circuit breaker"))
		})
	})

	Describe("New", func() {
		It("should reject an invalid config", func() {
			_, err := respectify.New(respectify.Config{})
			Expect(err).To(Equal(respectify.ErrMissingEmail))
		})

		It("should create a client from a valid config", func() {
			client, err := respectify.New(respectify.NewDefaultConfig("user@example.com", "key"))
			Expect(err).ToNot(HaveOccurred())
			Expect(client).ToNot(BeNil())
		})
	})
})
