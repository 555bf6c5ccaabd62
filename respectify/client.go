package respectify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// API endpoints.
const (
	endpointInitTopic        = "inittopic"
	endpointCommentScore     = "commentscore"
	endpointAntiSpam         = "antispam"
	endpointCommentRelevance = "commentrelevance"
	endpointDogwhistle       = "dogwhistle"
	endpointMegaCall         = "megacall"
	endpointUserCheck        = "usercheck"
)

const (
	headerEmail     = "X-User-Email"
	headerAPIKey    = "X-API-Key"
	headerRequestID = "X-Request-Id"
)

// Client talks to the comment-evaluation API. It is immutable after
// construction and safe for concurrent use; issuing calls from several
// goroutines puts their requests in flight concurrently, bounded only by
// the transport. The client never retries, never caches and sets no
// timeout of its own; deadlines come from the caller's context.
type Client struct {
	config    Config
	transport Transport
	breaker   *CircuitBreakerTransport
	metrics   *MetricsRecorder
}

// New creates a client with the default net/http transport.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newClient(cfg, NewHTTPTransport()), nil
}

// NewWithTransport creates a client over a caller-supplied transport.
func NewWithTransport(cfg Config, transport Transport) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newClient(cfg, transport), nil
}

func newClient(cfg Config, transport Transport) *Client {
	cfg = cfg.withDefaults()

	var breaker *CircuitBreakerTransport
	if cfg.EnableCircuitBreaker {
		slog.Info("Enabling circuit breaker",
			"max_requests", cfg.CircuitBreakerConfig.MaxRequests,
			"timeout", cfg.CircuitBreakerConfig.Timeout)
		breaker = NewCircuitBreakerTransport(transport, cfg.CircuitBreakerConfig)
		transport = breaker
	}

	return &Client{
		config:    cfg,
		transport: transport,
		breaker:   breaker,
		metrics:   NewMetricsRecorder(cfg.EnableMetrics),
	}
}

// CreateTopicFromText registers article text as a topic for later comment
// evaluation and returns the server-assigned topic id.
func (c *Client) CreateTopicFromText(ctx context.Context, text string) (TopicID, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text must not be empty", ErrInvalidRequest)
	}

	body, err := c.post(ctx, endpointInitTopic, map[string]interface{}{"text": text})
	if err != nil {
		return "", err
	}
	return topicFromResponse(body)
}

// CreateTopicFromURL registers the article behind a URL as a topic. The
// URL is fetched and parsed server-side; this client never retrieves it.
func (c *Client) CreateTopicFromURL(ctx context.Context, articleURL string) (TopicID, error) {
	if strings.TrimSpace(articleURL) == "" {
		return "", fmt.Errorf("%w: url must not be empty", ErrInvalidRequest)
	}

	body, err := c.post(ctx, endpointInitTopic, map[string]interface{}{"url": articleURL})
	if err != nil {
		return "", err
	}
	return topicFromResponse(body)
}

func topicFromResponse(body map[string]interface{}) (TopicID, error) {
	id := stringField(body, "article_id")
	if id == "" {
		return "", fmt.Errorf("%w: missing article_id in inittopic response", ErrMalformedResponse)
	}
	return TopicID(id), nil
}

// ScoreComment evaluates a comment's conversational quality against a
// topic. WithReplyTo supplies the comment being replied to.
func (c *Client) ScoreComment(ctx context.Context, topicID TopicID, comment string, opts ...CallOption) (*CommentScore, error) {
	o := applyCallOptions(opts)
	if err := requireTopicAndComment(topicID, comment); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"article_context_id": string(topicID),
		"comment":            comment,
	}
	if o.replyTo != "" {
		fields["reply_to_comment"] = o.replyTo
	}

	body, err := c.post(ctx, endpointCommentScore, fields)
	if err != nil {
		return nil, err
	}
	return NewCommentScore(body), nil
}

// CheckSpam evaluates a comment for spam. A topic is optional (WithTopic);
// spam detection can run standalone.
func (c *Client) CheckSpam(ctx context.Context, comment string, opts ...CallOption) (*SpamResult, error) {
	o := applyCallOptions(opts)
	if strings.TrimSpace(comment) == "" {
		return nil, fmt.Errorf("%w: comment must not be empty", ErrInvalidRequest)
	}

	fields := map[string]interface{}{"comment": comment}
	if o.topicID != "" {
		fields["article_context_id"] = string(o.topicID)
	}

	body, err := c.post(ctx, endpointAntiSpam, fields)
	if err != nil {
		return nil, err
	}
	return NewSpamResult(body), nil
}

// CheckRelevance evaluates whether a comment is on topic and whether it
// touches banned topics (WithBannedTopics, forwarded in order; absence
// means no restricted topics).
func (c *Client) CheckRelevance(ctx context.Context, topicID TopicID, comment string, opts ...CallOption) (*RelevanceResult, error) {
	o := applyCallOptions(opts)
	if err := requireTopicAndComment(topicID, comment); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"article_context_id": string(topicID),
		"comment":            comment,
	}
	if len(o.bannedTopics) > 0 {
		fields["banned_topics"] = o.bannedTopics
	}

	body, err := c.post(ctx, endpointCommentRelevance, fields)
	if err != nil {
		return nil, err
	}
	return NewRelevanceResult(body), nil
}

// CheckDogwhistle evaluates a comment for coded language. WithSensitiveTopics
// and WithExampleDogwhistles give the evaluator extra context.
func (c *Client) CheckDogwhistle(ctx context.Context, topicID TopicID, comment string, opts ...CallOption) (*DogwhistleResult, error) {
	o := applyCallOptions(opts)
	if err := requireTopicAndComment(topicID, comment); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"article_context_id": string(topicID),
		"comment":            comment,
	}
	if len(o.sensitiveTopics) > 0 {
		fields["sensitive_topics"] = o.sensitiveTopics
	}
	if len(o.exampleDogwhistles) > 0 {
		fields["example_dogwhistles"] = o.exampleDogwhistles
	}

	body, err := c.post(ctx, endpointDogwhistle, fields)
	if err != nil {
		return nil, err
	}
	return NewDogwhistleResult(body), nil
}

// CheckUserCredentials verifies the configured email and API key. Unlike
// every other operation, a 401 here is application data, not an error: it
// resolves to ok=false with an explanatory message. Any other non-200
// status still produces a typed error.
func (c *Client) CheckUserCredentials(ctx context.Context) (ok bool, info string, err error) {
	requestID := uuid.NewString()
	endpointURL := c.endpointURL(endpointUserCheck)

	slog.Debug("Checking user credentials", "request_id", requestID)

	start := time.Now()
	resp, err := c.transport.Get(ctx, endpointURL, c.headers(requestID, false))
	if err != nil {
		c.metrics.RecordError("transport")
		return false, "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	c.observe(endpointUserCheck, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return true, credentialInfo(resp.Body), nil
	case http.StatusUnauthorized:
		return false, "Unauthorized: the server rejected the supplied email and API key", nil
	default:
		apiErr := classifyStatus(resp.StatusCode, resp.Reason, string(resp.Body))
		c.metrics.RecordError(errorKindLabel(apiErr))
		return false, "", apiErr
	}
}

// credentialInfo extracts the info message from a usercheck response,
// falling back to the sanitized raw body.
func credentialInfo(body []byte) string {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err == nil {
		if info := stringField(asMap(Sanitize(decoded)), "info"); info != "" {
			return info
		}
	}
	return SanitizeText(string(body))
}

// MegaCall evaluates a comment with up to four services in a single
// request. The fan-out happens server-side; this client shapes one flag
// per requested service and decomposes the composite response. Relevance,
// commentscore and dogwhistle require a topic (WithTopic); spam alone may
// omit it.
func (c *Client) MegaCall(ctx context.Context, comment string, services []Service, opts ...CallOption) (*MegaCallResult, error) {
	o := applyCallOptions(opts)
	if strings.TrimSpace(comment) == "" {
		return nil, fmt.Errorf("%w: comment must not be empty", ErrInvalidRequest)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("%w: at least one service must be requested", ErrInvalidRequest)
	}

	fields := map[string]interface{}{"comment": comment}
	for _, svc := range services {
		switch svc {
		case ServiceSpam, ServiceRelevance, ServiceCommentScore, ServiceDogwhistle:
			fields[string(svc)] = true
		default:
			return nil, fmt.Errorf("%w: unknown service %q", ErrInvalidRequest, svc)
		}
		if svc.requiresTopic() && o.topicID == "" {
			return nil, fmt.Errorf("%w: service %q requires a topic id", ErrInvalidRequest, svc)
		}
	}

	if o.topicID != "" {
		fields["article_context_id"] = string(o.topicID)
	}
	if o.replyTo != "" {
		fields["reply_to_comment"] = o.replyTo
	}
	if len(o.bannedTopics) > 0 {
		fields["banned_topics"] = o.bannedTopics
	}
	if len(o.sensitiveTopics) > 0 {
		fields["sensitive_topics"] = o.sensitiveTopics
	}
	if len(o.exampleDogwhistles) > 0 {
		fields["example_dogwhistles"] = o.exampleDogwhistles
	}

	body, err := c.post(ctx, endpointMegaCall, fields)
	if err != nil {
		return nil, err
	}
	return NewMegaCallResult(body, services), nil
}

// Health reports the client's health, including circuit breaker state
// when the breaker is enabled.
func (c *Client) Health() HealthStatus {
	if c.breaker != nil {
		return c.breaker.Health()
	}
	return HealthStatus{
		Healthy: true,
		Status:  "ok",
		Details: map[string]interface{}{},
	}
}

// post runs the shared request pipeline: encode, issue exactly one HTTP
// request, classify non-200 outcomes, and decode-and-sanitize the body.
func (c *Client) post(ctx context.Context, endpoint string, fields map[string]interface{}) (map[string]interface{}, error) {
	requestID := uuid.NewString()

	payload, err := c.encodeBody(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request body: %w", ErrInvalidRequest, err)
	}

	slog.Debug("Issuing API request",
		"endpoint", endpoint,
		"request_id", requestID,
		"encoding", string(c.config.Encoding))

	start := time.Now()
	resp, err := c.transport.Post(ctx, c.endpointURL(endpoint), c.headers(requestID, true), payload)
	if err != nil {
		c.metrics.RecordError("transport")
		slog.Warn("API request failed in transport",
			"endpoint", endpoint,
			"request_id", requestID,
			"error", err)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	c.observe(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		apiErr := classifyStatus(resp.StatusCode, resp.Reason, string(resp.Body))
		c.metrics.RecordError(errorKindLabel(apiErr))
		slog.Warn("API request rejected",
			"endpoint", endpoint,
			"request_id", requestID,
			"status", resp.StatusCode)
		return nil, apiErr
	}

	return decodeResponse(endpoint, resp.Body)
}

// decodeResponse parses a 200 body as JSON and sanitizes every string
// leaf before any typed result is built from it.
func decodeResponse(endpoint string, body []byte) (map[string]interface{}, error) {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON from %s: %w", ErrMalformedResponse, endpoint, err)
	}

	obj, ok := Sanitize(decoded).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s response is not a JSON object", ErrMalformedResponse, endpoint)
	}
	return obj, nil
}

func (c *Client) endpointURL(endpoint string) string {
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(c.config.BaseURL, "/"), c.config.versionPath(), endpoint)
}

func (c *Client) headers(requestID string, withBody bool) map[string]string {
	h := map[string]string{
		headerEmail:     c.config.Email,
		headerAPIKey:    c.config.APIKey,
		headerRequestID: requestID,
	}
	if withBody {
		if c.config.Encoding == EncodingForm {
			h["Content-Type"] = "application/x-www-form-urlencoded"
		} else {
			h["Content-Type"] = "application/json"
		}
	}
	return h
}

// encodeBody serializes request fields per the configured encoding. The
// legacy form encoding has no list syntax, so list parameters flatten to
// comma-joined values.
func (c *Client) encodeBody(fields map[string]interface{}) ([]byte, error) {
	if c.config.Encoding == EncodingForm {
		values := url.Values{}
		for k, v := range fields {
			switch val := v.(type) {
			case string:
				values.Set(k, val)
			case bool:
				values.Set(k, strconv.FormatBool(val))
			case []string:
				values.Set(k, strings.Join(val, ","))
			default:
				values.Set(k, fmt.Sprint(val))
			}
		}
		return []byte(values.Encode()), nil
	}
	return json.Marshal(fields)
}

func (c *Client) observe(endpoint string, status int, elapsed time.Duration) {
	c.metrics.RecordRequest(endpoint, strconv.Itoa(status))
	c.metrics.RecordRequestDuration(endpoint, elapsed.Seconds())
}

func requireTopicAndComment(topicID TopicID, comment string) error {
	if topicID == "" {
		return fmt.Errorf("%w: topic id must not be empty", ErrInvalidRequest)
	}
	if strings.TrimSpace(comment) == "" {
		return fmt.Errorf("%w: comment must not be empty", ErrInvalidRequest)
	}
	return nil
}
