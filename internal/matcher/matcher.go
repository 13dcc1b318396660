// Package matcher selects names with glob or regex patterns.
//
// It backs column selection on catalog tables, where a caller asks for
// "koi_*mag" or "^koi_(period|prad)$" instead of spelling every column out.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto attempts to detect the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher matches a single pattern.
type Matcher interface {
	// Match checks if the input matches the pattern.
	Match(input string) bool
	// MatchAll returns the matching inputs in input order.
	MatchAll(inputs ...string) []string
	// Pattern returns the original pattern string.
	Pattern() string
	// Type returns the resolved pattern type.
	Type() PatternType
}

// Options configures the matcher behavior.
type Options struct {
	// CaseInsensitive makes matching case-insensitive.
	CaseInsensitive bool
	// Anchored adds ^ and $ to regex patterns if not present.
	Anchored bool
}

type matcher struct {
	pattern     string
	patternType PatternType
	glob        string
	compiled    *regexp.Regexp
	fold        bool
}

// New creates a Matcher for pattern. Auto resolves to Regex when the pattern
// carries regex-only syntax and to Glob otherwise.
func New(patternType PatternType, pattern string, opts ...*Options) (Matcher, error) {
	options := &Options{}
	if len(opts) > 0 && opts[0] != nil {
		options = opts[0]
	}

	m := &matcher{pattern: pattern, patternType: patternType, fold: options.CaseInsensitive}
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}

	switch m.patternType {
	case Glob:
		m.glob = pattern
		if m.fold {
			m.glob = strings.ToLower(m.glob)
		}
		if _, err := filepath.Match(m.glob, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	case Regex:
		expr := pattern
		if options.Anchored {
			if !strings.HasPrefix(expr, "^") {
				expr = "^" + expr
			}
			if !strings.HasSuffix(expr, "$") {
				expr += "$"
			}
		}
		if m.fold && !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		compiled, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		m.compiled = compiled
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", patternType)
	}
	return m, nil
}

// MustNew is New that panics on error.
func MustNew(patternType PatternType, pattern string, opts ...*Options) Matcher {
	m, err := New(patternType, pattern, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *matcher) Match(input string) bool {
	if m.patternType == Regex {
		return m.compiled.MatchString(input)
	}
	if m.fold {
		input = strings.ToLower(input)
	}
	ok, _ := filepath.Match(m.glob, input)
	return ok
}

func (m *matcher) MatchAll(inputs ...string) []string {
	out := make([]string, 0)
	for _, in := range inputs {
		if m.Match(in) {
			out = append(out, in)
		}
	}
	return out
}

func (m *matcher) Pattern() string   { return m.pattern }
func (m *matcher) Type() PatternType { return m.patternType }

// detectPatternType reports Regex when the pattern uses syntax a glob never does.
func detectPatternType(pattern string) PatternType {
	indicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", "{", "}", "+", "|", "(", ")",
	}
	for _, ind := range indicators {
		if strings.Contains(pattern, ind) {
			return Regex
		}
	}
	return Glob
}

// IsPattern reports whether s holds any glob or regex metacharacter, that is
// whether it is more than a literal name.
func IsPattern(s string) bool {
	return strings.ContainsAny(s, "*?[]") || detectPatternType(s) == Regex
}

// MultiMatcher matches when any of its patterns does.
type MultiMatcher struct {
	matchers []Matcher
}

// NewMultiMatcher compiles every pattern with the same type and options.
func NewMultiMatcher(patterns []string, patternType PatternType, opts ...*Options) (*MultiMatcher, error) {
	mm := &MultiMatcher{matchers: make([]Matcher, 0, len(patterns))}
	for _, p := range patterns {
		m, err := New(patternType, p, opts...)
		if err != nil {
			return nil, err
		}
		mm.matchers = append(mm.matchers, m)
	}
	return mm, nil
}

// Match returns true if any pattern matches.
func (mm *MultiMatcher) Match(input string) bool {
	for _, m := range mm.matchers {
		if m.Match(input) {
			return true
		}
	}
	return false
}

// MatchAll returns the distinct inputs matching any pattern, in input order.
func (mm *MultiMatcher) MatchAll(inputs ...string) []string {
	out := make([]string, 0)
	seen := make(map[string]bool)
	for _, in := range inputs {
		if !seen[in] && mm.Match(in) {
			out = append(out, in)
			seen[in] = true
		}
	}
	return out
}

// Select expands patterns against names.
//
// A literal (no metacharacters) is kept as is even when absent from names, so
// the caller's lookup reports it as missing. Patterns expand to the matching
// names in names order. The result holds each name once, in the order the
// selectors first produced it.
func Select(names []string, patterns ...string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	seen := make(map[string]bool)
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}

	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !IsPattern(p) {
			add(p)
			continue
		}
		m, err := New(Auto, p, &Options{Anchored: true})
		if err != nil {
			return nil, err
		}
		for _, n := range m.MatchAll(names...) {
			add(n)
		}
	}
	return out, nil
}

// SplitList splits a comma separated selector list such as a query parameter.
// Commas inside regex braces (e.g. "x{1,2}") are not split.
func SplitList(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				if part := strings.TrimSpace(s[start:i]); part != "" {
					out = append(out, part)
				}
				start = i + 1
			}
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		out = append(out, part)
	}
	return out
}
