package respectify_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sony/gobreaker/v2"

	"github.com/respectify/respectify-go/respectify"
)

var _ = Describe("CircuitBreakerTransport", func() {
	var ctx context.Context

	trippy := func() *respectify.CircuitBreakerConfig {
		return &respectify.CircuitBreakerConfig{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("should pass successful responses through untouched", func() {
		inner := newSpyTransport(200, `{"is_spam": false}`)
		breaker := respectify.NewCircuitBreakerTransport(inner, trippy())

		resp, err := breaker.Post(ctx, "https://example.com", nil, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(200))
		Expect(breaker.State()).To(Equal(gobreaker.StateClosed))
	})

	It("should open after consecutive transport failures", func() {
		inner := failingTransport(errors.New("connection refused"))
		breaker := respectify.NewCircuitBreakerTransport(inner, trippy())

		for i := 0; i < 3; i++ {
			_, err := breaker.Post(ctx, "https://example.com", nil, nil)
			Expect(err).To(HaveOccurred())
		}

		Expect(breaker.State()).To(Equal(gobreaker.StateOpen))

		_, err := breaker.Post(ctx, "https://example.com", nil, nil)
		Expect(errors.Is(err, gobreaker.ErrOpenState)).To(BeTrue())
		Expect(inner.calls).To(HaveLen(3), "open circuit must not reach the network")
	})

	It("should count server errors as failures while still delivering the response", func() {
		inner := newSpyTransport(500, "")
		breaker := respectify.NewCircuitBreakerTransport(inner, trippy())

		for i := 0; i < 3; i++ {
			resp, err := breaker.Post(ctx, "https://example.com", nil, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(500))
		}

		Expect(breaker.State()).To(Equal(gobreaker.StateOpen))
	})

	It("should count auth rejections as failures", func() {
		inner := newSpyTransport(401, "")
		breaker := respectify.NewCircuitBreakerTransport(inner, trippy())

		for i := 0; i < 3; i++ {
			_, err := breaker.Get(ctx, "https://example.com", nil)
			Expect(err).ToNot(HaveOccurred())
		}

		Expect(breaker.State()).To(Equal(gobreaker.StateOpen))
	})

	It("should not trip on ordinary client errors", func() {
		inner := newSpyTransport(400, "")
		breaker := respectify.NewCircuitBreakerTransport(inner, trippy())

		for i := 0; i < 10; i++ {
			_, err := breaker.Post(ctx, "https://example.com", nil, nil)
			Expect(err).ToNot(HaveOccurred())
		}

		Expect(breaker.State()).To(Equal(gobreaker.StateClosed))
	})

	It("should not trip on caller cancellation", func() {
		inner := failingTransport(context.Canceled)
		breaker := respectify.NewCircuitBreakerTransport(inner, trippy())

		for i := 0; i < 10; i++ {
			_, err := breaker.Post(ctx, "https://example.com", nil, nil)
			Expect(err).To(HaveOccurred())
		}

		Expect(breaker.State()).To(Equal(gobreaker.StateClosed))
	})

	It("should report health per state", func() {
		inner := failingTransport(errors.New("connection refused"))
		breaker := respectify.NewCircuitBreakerTransport(inner, trippy())

		health := breaker.Health()
		Expect(health.Healthy).To(BeTrue())
		Expect(health.Status).To(Equal("closed"))

		for i := 0; i < 3; i++ {
			breaker.Post(ctx, "https://example.com", nil, nil) //nolint:errcheck
		}

		health = breaker.Health()
		Expect(health.Healthy).To(BeFalse())
		Expect(health.Status).To(Equal("open"))
		Expect(health.Details).To(HaveKey("consecutive_failures"))
	})

	It("should notify the configured state change callback", func() {
		var transitions []gobreaker.State
		config := trippy()
		config.OnStateChange = func(_ string, _, to gobreaker.State) {
			transitions = append(transitions, to)
		}

		inner := failingTransport(errors.New("connection refused"))
		breaker := respectify.NewCircuitBreakerTransport(inner, config)

		for i := 0; i < 3; i++ {
			breaker.Post(ctx, "https://example.com", nil, nil) //nolint:errcheck
		}

		Expect(transitions).To(ContainElement(gobreaker.StateOpen))
	})

	Describe("client integration", func() {
		It("should surface open-circuit rejections as transport errors", func() {
			inner := failingTransport(errors.New("connection refused"))
			cfg := respectify.NewDefaultConfig("user@example.com", "key").
				WithCircuitBreakerConfig(trippy())
			client, err := respectify.NewWithTransport(cfg, inner)
			Expect(err).ToNot(HaveOccurred())

			for i := 0; i < 3; i++ {
				_, err := client.CheckSpam(ctx, "a comment")
				Expect(errors.Is(err, respectify.ErrTransport)).To(BeTrue())
			}

			_, err = client.CheckSpam(ctx, "a comment")
			Expect(errors.Is(err, respectify.ErrTransport)).To(BeTrue())
			Expect(errors.Is(err, gobreaker.ErrOpenState)).To(BeTrue())
			Expect(inner.calls).To(HaveLen(3))
		})

		It("should expose breaker state through client health", func() {
			cfg := respectify.NewDefaultConfig("user@example.com", "key").
				WithCircuitBreakerConfig(trippy())
			client, err := respectify.NewWithTransport(cfg, newSpyTransport(200, `{}`))
			Expect(err).ToNot(HaveOccurred())

			health := client.Health()
			Expect(health.Healthy).To(BeTrue())
			Expect(health.Status).To(Equal("closed"))
			Expect(health.Details).To(HaveKeyWithValue("state", "closed"))
		})
	})
})
