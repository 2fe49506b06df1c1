package include

import (
	"fmt"
	"regexp"
	"strings"

	"emojiscraper/pkg/models"
)

// Default is the include.txt written into new workspaces.
const Default = `+ all
// Replace with "- all" to include no emojis by default
// Use + "<server name>" or - "<server name>" to include or exclude servers
`

const (
	includePrefix = "+ "
	excludePrefix = "- "
	emojiIndent   = "    "
	commentPrefix = "// "
)

var (
	allSearch      = regexp.MustCompile(`^all(?: *// .*)?$`)
	specificSearch = regexp.MustCompile(`^"(.*)"(?: *// .*)?$`)
	regexSearch    = regexp.MustCompile(`^/(.*)/(?: *// .*)?$`)
)

// Mode says what a line does with the emojis it selects.
type Mode int

const (
	ModePassive Mode = iota
	ModeInclude
	ModeExclude
)

func (m Mode) String() string {
	switch m {
	case ModeInclude:
		return "include"
	case ModeExclude:
		return "exclude"
	default:
		return "passive"
	}
}

// Target distinguishes server lines from emoji lines.
type Target int

const (
	TargetServer Target = iota
	TargetEmoji
)

// LineError reports an invalid include.txt line.
type LineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

// Rule is one parsed line.
type Rule struct {
	Line   int
	Text   string
	Target Target
	Mode   Mode
	All    bool
	Name   string
	Regexp *regexp.Regexp
}

func (r Rule) matches(s string) bool {
	switch {
	case r.All:
		return true
	case r.Regexp != nil:
		return r.Regexp.MatchString(s)
	default:
		return s == r.Name
	}
}

// Rules is a parsed include file.
type Rules struct {
	rules []Rule
}

// Parse parses the text of an include file. Errors that depend on the emoji
// data, such as an unknown server name, are reported by Apply.
func Parse(text string) (*Rules, error) {
	var rules []Rule
	haveServer := false

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		rule := Rule{Line: i + 1, Text: line}
		search := line

		if strings.HasPrefix(line, emojiIndent) {
			if !haveServer {
				return nil, &LineError{Line: rule.Line, Text: line, Reason: "emoji without server filter"}
			}
			rule.Target = TargetEmoji
			search = strings.TrimPrefix(line, emojiIndent)
			switch {
			case strings.HasPrefix(search, includePrefix):
				rule.Mode = ModeInclude
			case strings.HasPrefix(search, excludePrefix):
				rule.Mode = ModeExclude
			default:
				return nil, &LineError{Line: rule.Line, Text: line, Reason: `emoji must start with "+ " or "- "`}
			}
			search = search[len(includePrefix):]
		} else {
			rule.Target = TargetServer
			switch {
			case strings.HasPrefix(search, includePrefix):
				rule.Mode = ModeInclude
				search = search[len(includePrefix):]
			case strings.HasPrefix(search, excludePrefix):
				rule.Mode = ModeExclude
				search = search[len(excludePrefix):]
			}
			haveServer = true
		}

		if err := parseSearch(&rule, search); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return &Rules{rules: rules}, nil
}

func parseSearch(rule *Rule, search string) error {
	kind := "server"
	if rule.Target == TargetEmoji {
		kind = "emoji"
	}

	switch {
	case rule.Target == TargetServer && allSearch.MatchString(search):
		rule.All = true
	case specificSearch.MatchString(search):
		rule.Name = specificSearch.FindStringSubmatch(search)[1]
	case regexSearch.MatchString(search):
		expr := regexSearch.FindStringSubmatch(search)[1]
		re, err := regexp.Compile(expr)
		if err != nil {
			return &LineError{Line: rule.Line, Text: rule.Text, Reason: fmt.Sprintf("invalid regex: %v", err)}
		}
		rule.Regexp = re
	default:
		return &LineError{Line: rule.Line, Text: rule.Text, Reason: "invalid " + kind + " search"}
	}
	return nil
}

// Rules returns a copy of the parsed lines.
func (r *Rules) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Apply selects the emojis of data the rules include. The result keeps the
// order of data.Emojis.
func (r *Rules) Apply(data models.EmojiData) ([]models.EmojiRecord, error) {
	known := make(map[string]bool, len(data.Servers))
	for _, s := range data.Servers {
		known[s] = true
	}

	selected := make(map[string]bool)
	current := make(map[string]bool)

	for _, rule := range r.rules {
		if rule.Target == TargetServer {
			if !rule.All && rule.Regexp == nil && !known[rule.Name] {
				return nil, &LineError{Line: rule.Line, Text: rule.Text, Reason: "invalid server search"}
			}
			current = make(map[string]bool)
			for _, s := range data.Servers {
				if rule.matches(s) {
					current[s] = true
				}
			}
		}

		if rule.Mode == ModePassive {
			continue
		}

		for _, e := range data.Emojis {
			if !current[e.Server] {
				continue
			}
			if rule.Target == TargetEmoji && !rule.matches(e.Name) {
				continue
			}
			if rule.Mode == ModeInclude {
				selected[e.ID] = true
			} else {
				delete(selected, e.ID)
			}
		}
	}

	out := make([]models.EmojiRecord, 0, len(selected))
	for _, e := range data.Emojis {
		if selected[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

// Filter parses text and applies it to data.
func Filter(data models.EmojiData, text string) ([]models.EmojiRecord, error) {
	rules, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return rules.Apply(data)
}
