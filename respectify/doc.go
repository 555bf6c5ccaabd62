// Package respectify provides a Go client for the Respectify comment
// evaluation API, which judges comments against a registered topic for
// spam, relevance, banned-topic content, coded language (dogwhistles) and
// general conversational quality.
//
// The client issues one HTTP request per operation, classifies failures
// into a typed error taxonomy matchable with errors.Is, and defensively
// sanitizes all text echoed back by the server before constructing typed
// results, so string fields are safe to render as HTML.
//
// Features:
//   - One operation per API capability, including the megacall fan-out
//   - Typed error taxonomy driven purely by HTTP status codes
//   - Recursive, idempotent response sanitization
//   - Total result constructors with explicit per-field defaults
//   - Interface-first transport for testing and custom HTTP clients
//   - Optional circuit breaker (sony/gobreaker) around the transport
//   - Prometheus metrics integration
//
// Basic usage:
//
//	cfg := respectify.NewDefaultConfig(os.Getenv("RESPECTIFY_EMAIL"), os.Getenv("RESPECTIFY_API_KEY"))
//	client, err := respectify.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	topic, err := client.CreateTopicFromText(ctx, articleText)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	score, err := client.ScoreComment(ctx, topic, comment)
package respectify
