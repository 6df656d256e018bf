// Package extract resolves one logical value from a response whose field
// names drift between API versions.
package extract

import "strings"

// Rule is an ordered list of candidate field names. The first field holding
// a non-empty string wins.
type Rule struct {
	Name   string
	Fields []string
}

// Result is the outcome of applying a Rule.
type Result struct {
	Value string
	Field string
	Found bool
}

// Apply evaluates r against src.
func (r Rule) Apply(src map[string]any) Result {
	for _, field := range r.Fields {
		raw, ok := src[field]
		if !ok || raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return Result{Value: s, Field: field, Found: true}
		}
	}
	return Result{}
}

// Or returns the resolved value or fallback when nothing matched.
func (r Result) Or(fallback string) string {
	if r.Found {
		return r.Value
	}
	return fallback
}

var (
	// AudioURL lists the fields the music service has used for the result audio.
	AudioURL = Rule{
		Name:   "audio_url",
		Fields: []string{"audio_url", "conversion_path", "url", "result_url", "file_url", "s3_path"},
	}

	// CoverImage lists the fields used for album art.
	CoverImage = Rule{
		Name:   "cover_image",
		Fields: []string{"album_cover_url", "cover_image", "cover_url", "image_url"},
	}
)
