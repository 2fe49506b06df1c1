package collector

import (
	"fmt"
	"regexp"
)

// DefaultLabelPattern matches labels of the form ":<anything>: from <origin>".
// The lazy prefix makes the origin start after the first ": from ".
const DefaultLabelPattern = `^:.*?: from (.*)$`

// ServerExtractor derives the origin server name from an accessibility label.
type ServerExtractor interface {
	Extract(label string) (string, bool)
}

// PatternExtractor extracts the first capture group of a regular expression.
type PatternExtractor struct {
	re *regexp.Regexp
}

// NewPatternExtractor compiles pattern, which must have one capture group.
func NewPatternExtractor(pattern string) (*PatternExtractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid label pattern: %w", err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("label pattern %q must have exactly one capture group, has %d", pattern, re.NumSubexp())
	}
	return &PatternExtractor{re: re}, nil
}

// DefaultExtractor returns an extractor for DefaultLabelPattern.
func DefaultExtractor() *PatternExtractor {
	return &PatternExtractor{re: regexp.MustCompile(DefaultLabelPattern)}
}

// Extract returns the origin captured from label.
func (p *PatternExtractor) Extract(label string) (string, bool) {
	m := p.re.FindStringSubmatch(label)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// String returns the source pattern.
func (p *PatternExtractor) String() string {
	return p.re.String()
}
