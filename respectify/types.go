package respectify

import (
	"context"
)

// TopicID identifies a topic (article context) previously registered with
// the service. It is created by CreateTopicFromText/CreateTopicFromURL and
// consumed by every comment-scoped operation. The value is opaque to this
// client; its lifetime is owned by the server.
type TopicID string

// Service names one of the evaluators a MegaCall can fan out to.
type Service string

const (
	ServiceSpam         Service = "spam"
	ServiceRelevance    Service = "relevance"
	ServiceCommentScore Service = "commentscore"
	ServiceDogwhistle   Service = "dogwhistle"
)

// requiresTopic reports whether the service needs an article context to
// evaluate against. Spam detection is the only one that can run standalone.
func (s Service) requiresTopic() bool {
	return s == ServiceRelevance || s == ServiceCommentScore || s == ServiceDogwhistle
}

// SpamResult is the anti-spam evaluator's verdict on a comment.
type SpamResult struct {
	IsSpam     bool    // Whether the comment was judged to be spam
	Confidence float64 // Confidence in the verdict, 0..1
	Reasoning  string  // Model explanation for the verdict
}

// OnTopicResult reports whether a comment is relevant to its topic.
type OnTopicResult struct {
	OnTopic    bool
	Confidence float64
	Reasoning  string
}

// BannedTopicsResult reports how much of a comment touches on topics the
// caller declared off-limits.
type BannedTopicsResult struct {
	BannedTopics           []string // Banned topics the comment touched, server order
	QuantityOnBannedTopics float64  // Fraction of the comment on banned topics, 0..1
	Confidence             float64
	Reasoning              string
}

// RelevanceResult combines the on-topic and banned-topic evaluations.
// Both sub-results are always populated, with zero values when the server
// had nothing to report.
type RelevanceResult struct {
	OnTopic      OnTopicResult
	BannedTopics BannedTopicsResult
}

// LogicalFallacy is one fallacy the comment-quality evaluator found.
type LogicalFallacy struct {
	FallacyName      string
	QuotedExample    string // Verbatim quote from the comment
	Explanation      string
	SuggestedRewrite string
}

// ObjectionablePhrase is one phrase flagged as objectionable.
type ObjectionablePhrase struct {
	QuotedPhrase     string
	Explanation      string
	SuggestedRewrite string
}

// NegativeTonePhrase is one phrase flagged for negative tone.
type NegativeTonePhrase struct {
	QuotedPhrase     string
	Explanation      string
	SuggestedRewrite string
}

// CommentScore is the comment-quality evaluator's full assessment.
//
// IsSpam, ToxicityScore and ToxicityExplanation only exist in some server
// schema revisions; HasToxicity reports whether the response carried them.
type CommentScore struct {
	LogicalFallacies     []LogicalFallacy
	ObjectionablePhrases []ObjectionablePhrase
	NegativeTonePhrases  []NegativeTonePhrase
	AppearsLowEffort     bool
	OverallScore         int // 1..5

	IsSpam              bool
	ToxicityScore       float64
	ToxicityExplanation string
	HasToxicity         bool
}

// DogwhistleDetection is the headline verdict of the dogwhistle evaluator.
type DogwhistleDetection struct {
	DogwhistlesDetected bool
	Confidence          float64
	Reasoning           string
}

// DogwhistleDetails carries the specifics of detected coded language.
// It is nil when nothing was detected.
type DogwhistleDetails struct {
	DogwhistleTerms []string
	Categories      []string
	SubtletyLevel   float64 // 0..1, higher is more subtle
	HarmPotential   float64 // 0..1
}

// DogwhistleResult is the dogwhistle evaluator's output.
type DogwhistleResult struct {
	Detection DogwhistleDetection
	Details   *DogwhistleDetails
}

// MegaCallResult holds the per-service results of a MegaCall. A field is
// non-nil exactly when its service was named in the request; presence is
// driven by what the caller asked for, never inferred from the response.
type MegaCallResult struct {
	Spam         *SpamResult
	Relevance    *RelevanceResult
	CommentScore *CommentScore
	Dogwhistle   *DogwhistleResult
}

// Response is the transport-level view of an HTTP response.
type Response struct {
	StatusCode int
	Reason     string // HTTP reason phrase
	Body       []byte
}

// Transport abstracts the HTTP layer so tests can inject spies and callers
// can supply their own pooled or instrumented clients.
type Transport interface {
	Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error)
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

// HealthStatus describes the client's current health, primarily the state
// of the optional circuit breaker.
type HealthStatus struct {
	Healthy bool
	Status  string
	Details map[string]interface{}
}

// CallOption is a functional option for per-call parameters.
type CallOption func(*callOptions)

type callOptions struct {
	topicID            TopicID
	replyTo            string
	bannedTopics       []string
	sensitiveTopics    []string
	exampleDogwhistles []string
}

func applyCallOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTopic supplies an article context to operations where it is optional,
// such as CheckSpam and MegaCall.
func WithTopic(id TopicID) CallOption {
	return func(o *callOptions) {
		o.topicID = id
	}
}

// WithReplyTo supplies the comment being replied to, giving the evaluators
// conversational context.
func WithReplyTo(comment string) CallOption {
	return func(o *callOptions) {
		o.replyTo = comment
	}
}

// WithBannedTopics declares topics the relevance evaluator should treat as
// off-limits. Order is preserved on the wire.
func WithBannedTopics(topics ...string) CallOption {
	return func(o *callOptions) {
		o.bannedTopics = topics
	}
}

// WithSensitiveTopics points the dogwhistle evaluator at topics likely to
// attract coded language.
func WithSensitiveTopics(topics ...string) CallOption {
	return func(o *callOptions) {
		o.sensitiveTopics = topics
	}
}

// WithExampleDogwhistles supplies known dogwhistle terms as examples for
// the evaluator.
func WithExampleDogwhistles(examples ...string) CallOption {
	return func(o *callOptions) {
		o.exampleDogwhistles = examples
	}
}
