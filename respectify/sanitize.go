package respectify

import (
	"strings"
)

// Response bodies echo text the caller originally submitted (its own
// comments and topics), so string content coming back from the server is
// treated as untrusted. Sanitize makes it safe to interpose into HTML
// without further escaping. The pass is idempotent: the escaped output
// contains no quote characters and only recognized entities, so a second
// application changes nothing.

// Sanitize walks an arbitrary decoded JSON value and returns an equivalent
// structure with every string leaf cleaned by SanitizeText. Maps and
// slices are rebuilt recursively; non-string scalars pass through.
func Sanitize(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return SanitizeText(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, elem := range val {
			out[k] = Sanitize(elem)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, elem := range val {
			out[i] = Sanitize(elem)
		}
		return out
	default:
		return v
	}
}

// SanitizeText cleans a single string: strips ASCII control characters,
// trims surrounding whitespace, reverses backslash escaping when the
// server's storage layer double-escaped quotes, and HTML-entity-escapes
// the markup-significant characters.
func SanitizeText(s string) string {
	s = stripControl(s)
	s = strings.TrimSpace(s)
	if strings.Contains(s, `\"`) || strings.Contains(s, `\'`) {
		s = stripSlashes(s)
	}
	return escapeHTML(s)
}

// stripControl removes ASCII control characters (0x00-0x1F, 0x7F).
func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripSlashes reverses one level of backslash escaping: each backslash is
// dropped and the character it escaped is kept. A trailing lone backslash
// is dropped.
func stripSlashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// entityNames are the entities escapeHTML emits. An ampersand already
// starting one of these is left alone so repeated sanitization cannot
// double-escape.
var entityNames = []string{"amp;", "lt;", "gt;", "quot;", "#39;"}

func startsEntity(rest string) bool {
	for _, name := range entityNames {
		if strings.HasPrefix(rest, name) {
			return true
		}
	}
	return false
}

// escapeHTML escapes < > & " ' for safe HTML interpolation.
func escapeHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#39;")
		case '&':
			if startsEntity(s[i+1:]) {
				b.WriteByte('&')
			} else {
				b.WriteString("&amp;")
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
