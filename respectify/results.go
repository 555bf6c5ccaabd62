package respectify

// Result constructors are total: every field of every record has an
// explicit default (false, 0, "", empty slice) applied when the key is
// absent or carries the wrong type. A partially-populated but parseable
// response degrades to default-valued fields instead of failing. Inputs
// are expected to have passed through Sanitize already.

func asMap(v interface{}) map[string]interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return m
}

func mapField(m map[string]interface{}, key string) map[string]interface{} {
	return asMap(m[key])
}

func boolField(m map[string]interface{}, key string) bool {
	b, ok := m[key].(bool)
	if !ok {
		return false
	}
	return b
}

func floatField(m map[string]interface{}, key string) float64 {
	// encoding/json decodes every number as float64.
	f, ok := m[key].(float64)
	if !ok {
		return 0
	}
	return f
}

func intField(m map[string]interface{}, key string) int {
	return int(floatField(m, key))
}

func stringField(m map[string]interface{}, key string) string {
	s, ok := m[key].(string)
	if !ok {
		return ""
	}
	return s
}

func stringsField(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, elem := range raw {
		if s, ok := elem.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func listField(m map[string]interface{}, key string) []interface{} {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	return raw
}

// NewSpamResult builds a SpamResult from a sanitized response object.
func NewSpamResult(m map[string]interface{}) *SpamResult {
	return &SpamResult{
		IsSpam:     boolField(m, "is_spam"),
		Confidence: floatField(m, "confidence"),
		Reasoning:  stringField(m, "reasoning"),
	}
}

func newOnTopicResult(m map[string]interface{}) OnTopicResult {
	return OnTopicResult{
		OnTopic:    boolField(m, "on_topic"),
		Confidence: floatField(m, "confidence"),
		Reasoning:  stringField(m, "reasoning"),
	}
}

func newBannedTopicsResult(m map[string]interface{}) BannedTopicsResult {
	return BannedTopicsResult{
		BannedTopics:           stringsField(m, "banned_topics"),
		QuantityOnBannedTopics: floatField(m, "quantity_on_banned_topics"),
		Confidence:             floatField(m, "confidence"),
		Reasoning:              stringField(m, "reasoning"),
	}
}

// NewRelevanceResult builds a RelevanceResult from a sanitized response
// object. Both sub-results are always present, zero-valued when the server
// omitted them.
func NewRelevanceResult(m map[string]interface{}) *RelevanceResult {
	return &RelevanceResult{
		OnTopic:      newOnTopicResult(mapField(m, "on_topic")),
		BannedTopics: newBannedTopicsResult(mapField(m, "banned_topics")),
	}
}

func newLogicalFallacy(m map[string]interface{}) LogicalFallacy {
	return LogicalFallacy{
		FallacyName:      stringField(m, "fallacy_name"),
		QuotedExample:    stringField(m, "quoted_logical_fallacy_example"),
		Explanation:      stringField(m, "explanation"),
		SuggestedRewrite: stringField(m, "suggested_rewrite"),
	}
}

func newObjectionablePhrase(m map[string]interface{}) ObjectionablePhrase {
	return ObjectionablePhrase{
		QuotedPhrase:     stringField(m, "quoted_objectionable_phrase"),
		Explanation:      stringField(m, "explanation"),
		SuggestedRewrite: stringField(m, "suggested_rewrite"),
	}
}

func newNegativeTonePhrase(m map[string]interface{}) NegativeTonePhrase {
	return NegativeTonePhrase{
		QuotedPhrase:     stringField(m, "quoted_negative_tone_phrase"),
		Explanation:      stringField(m, "explanation"),
		SuggestedRewrite: stringField(m, "suggested_rewrite"),
	}
}

// NewCommentScore builds a CommentScore from a sanitized response object.
// The toxicity extension fields only exist in some server schema
// revisions; HasToxicity records whether this response carried them.
func NewCommentScore(m map[string]interface{}) *CommentScore {
	score := &CommentScore{
		LogicalFallacies:     []LogicalFallacy{},
		ObjectionablePhrases: []ObjectionablePhrase{},
		NegativeTonePhrases:  []NegativeTonePhrase{},
		AppearsLowEffort:     boolField(m, "appears_low_effort"),
		OverallScore:         intField(m, "overall_score"),
	}

	for _, elem := range listField(m, "logical_fallacies") {
		score.LogicalFallacies = append(score.LogicalFallacies, newLogicalFallacy(asMap(elem)))
	}
	for _, elem := range listField(m, "objectionable_phrases") {
		score.ObjectionablePhrases = append(score.ObjectionablePhrases, newObjectionablePhrase(asMap(elem)))
	}
	for _, elem := range listField(m, "negative_tone_phrases") {
		score.NegativeTonePhrases = append(score.NegativeTonePhrases, newNegativeTonePhrase(asMap(elem)))
	}

	if _, ok := m["toxicity_score"]; ok {
		score.HasToxicity = true
		score.IsSpam = boolField(m, "is_spam")
		score.ToxicityScore = floatField(m, "toxicity_score")
		score.ToxicityExplanation = stringField(m, "toxicity_explanation")
	}

	return score
}

// NewDogwhistleResult builds a DogwhistleResult from a sanitized response
// object. Details stay nil unless the detection verdict is positive.
func NewDogwhistleResult(m map[string]interface{}) *DogwhistleResult {
	detection := mapField(m, "detection")
	result := &DogwhistleResult{
		Detection: DogwhistleDetection{
			DogwhistlesDetected: boolField(detection, "dogwhistles_detected"),
			Confidence:          floatField(detection, "confidence"),
			Reasoning:           stringField(detection, "reasoning"),
		},
	}

	if result.Detection.DogwhistlesDetected {
		details := mapField(m, "details")
		result.Details = &DogwhistleDetails{
			DogwhistleTerms: stringsField(details, "dogwhistle_terms"),
			Categories:      stringsField(details, "categories"),
			SubtletyLevel:   floatField(details, "subtlety_level"),
			HarmPotential:   floatField(details, "harm_potential"),
		}
	}

	return result
}

// NewMegaCallResult decomposes a composite megacall response. A field is
// populated exactly when its service was requested; the response body is
// never consulted to decide presence, so a requested service missing from
// the body still yields a default-valued (non-nil) result.
func NewMegaCallResult(m map[string]interface{}, services []Service) *MegaCallResult {
	result := &MegaCallResult{}
	for _, svc := range services {
		switch svc {
		case ServiceSpam:
			result.Spam = NewSpamResult(mapField(m, "spam"))
		case ServiceRelevance:
			result.Relevance = NewRelevanceResult(mapField(m, "relevance"))
		case ServiceCommentScore:
			result.CommentScore = NewCommentScore(mapField(m, "commentscore"))
		case ServiceDogwhistle:
			result.Dogwhistle = NewDogwhistleResult(mapField(m, "dogwhistle"))
		}
	}
	return result
}
