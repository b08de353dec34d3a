// Package selector implements PathSelector: combining include/exclude
// glob and regex patterns into a single path matcher, with Maven-3
// compatible handling of the '/' separator in unprefixed glob patterns.
//
// Patterns are plain strings optionally prefixed with a syntax tag,
// "glob:" or "regex:". An unprefixed pattern is treated as a glob. In a
// glob pattern, an unescaped '/' always means "path separator" and is
// mapped to the platform separator; a backslash escapes the following
// character, so "\/" is a literal slash rather than a separator, decided
// by the parity of consecutive backslashes immediately preceding it.
package selector

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	syntaxGlob  = "glob"
	syntaxRegex = "regex"
)

// Matcher answers whether a given path (expected to be absolute, or at
// least consistently rooted with however the selector was built) matches.
type Matcher interface {
	Match(path string) bool
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m *regexMatcher) Match(path string) bool {
	return m.re.MatchString(filepath.ToSlash(path))
}

// alwaysMatcher matches every path; used to simplify a selector with no
// patterns at all into a trivial always-true matcher.
type alwaysMatcher struct{}

func (alwaysMatcher) Match(string) bool { return true }

type neverMatcher struct{}

func (neverMatcher) Match(string) bool { return false }

// anyMatcher matches when any of its children matches (used for a list
// of include patterns - a path is included if it matches *any* include).
type anyMatcher struct {
	matchers []Matcher
}

func (m *anyMatcher) Match(path string) bool {
	for _, sub := range m.matchers {
		if sub.Match(path) {
			return true
		}
	}
	return false
}

// PathSelector combines a list of include patterns and a list of exclude
// patterns rooted at a directory into one matcher: a path matches if it
// matches at least one include (or there are no includes at all) and no
// exclude.
type PathSelector struct {
	includes Matcher
	excludes Matcher
}

// New builds a PathSelector from raw include/exclude pattern strings.
// When the pattern list degenerates to a single glob include and no
// excludes, the returned selector wraps a single compiled regex directly
// rather than going through the any/exclude combinator - this is the
// "simplified matcher" spec.md refers to.
func New(includes, excludes []string) (*PathSelector, error) {
	incMatcher, err := compilePatternList(includes, true)
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}
	excMatcher, err := compilePatternList(excludes, false)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}
	return &PathSelector{includes: incMatcher, excludes: excMatcher}, nil
}

func compilePatternList(patterns []string, matchAllWhenEmpty bool) (Matcher, error) {
	if len(patterns) == 0 {
		if matchAllWhenEmpty {
			return alwaysMatcher{}, nil
		}
		return neverMatcher{}, nil
	}
	matchers := make([]Matcher, 0, len(patterns))
	for _, p := range patterns {
		m, err := compileOne(p)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	if len(matchers) == 1 {
		return matchers[0], nil
	}
	return &anyMatcher{matchers: matchers}, nil
}

func compileOne(raw string) (Matcher, error) {
	syntax, pattern := splitSyntaxTag(raw)
	switch syntax {
	case syntaxRegex:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", raw, err)
		}
		return &regexMatcher{re: re}, nil
	default:
		re, err := globToRegexp(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", raw, err)
		}
		return &regexMatcher{re: re}, nil
	}
}

// splitSyntaxTag splits a "glob:foo/**" or "regex:.*\.java" pattern into
// its syntax tag and the remaining pattern text. A pattern with no
// recognized tag is treated as glob.
func splitSyntaxTag(raw string) (syntax, pattern string) {
	if rest, ok := strings.CutPrefix(raw, "glob:"); ok {
		return syntaxGlob, rest
	}
	if rest, ok := strings.CutPrefix(raw, "regex:"); ok {
		return syntaxRegex, rest
	}
	return syntaxGlob, raw
}

// Match reports whether path is selected: included (or there are no
// include patterns) and not excluded.
func (s *PathSelector) Match(path string) bool {
	if !s.includes.Match(path) {
		return false
	}
	return !s.excludes.Match(path)
}

// globToRegexp translates a Maven-3 style glob pattern into an anchored
// regular expression matching forward-slash-normalized paths.
//
// Separator handling: an unescaped '/' in the raw pattern always denotes
// a path separator (translated here to '/', since Match normalizes
// incoming paths to forward slashes too); a backslash escapes the
// character that follows it, with the parity of consecutive backslashes
// immediately preceding a '/' determining whether that slash is a literal
// character or a separator.
//
// Glob semantics: "**" matches zero or more path segments (including the
// separators between them); "*" matches zero or more characters within a
// single segment (never crossing a separator); "?" matches exactly one
// character that is not a separator.
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	segments := splitGlobOnSeparator(pattern)

	var b strings.Builder
	b.WriteString("^")
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("/")
		}
		if seg == "**" {
			// "**" alone as a segment: handled specially below by
			// rewriting the separator join; here just emit a segment
			// wildcard, corrected after the loop.
			b.WriteString(`.*`)
			continue
		}
		writeGlobSegment(&b, seg)
	}
	b.WriteString("$")

	// "**" needs to be able to also consume (or not consume) the
	// separators adjacent to it so "a/**/b" matches "a/b" too. Do a
	// second pass with a textual substitution since building that
	// directly above would require lookahead capture of neighboring
	// literal slashes.
	exprStr := b.String()
	exprStr = strings.ReplaceAll(exprStr, `/.*`+"/", `(?:/.*/|/)`)
	exprStr = strings.ReplaceAll(exprStr, "^.*/", "^(?:.*/)?")
	exprStr = strings.ReplaceAll(exprStr, "/.*$", "(?:/.*)?$")

	re, err := regexp.Compile(exprStr)
	if err != nil {
		return nil, err
	}
	return re, nil
}

func writeGlobSegment(b *strings.Builder, seg string) {
	runes := []rune(seg)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			b.WriteString(`[^/]*`)
		case '?':
			b.WriteString(`[^/]`)
		case '\\':
			if i+1 < len(runes) {
				i++
				b.WriteString(regexp.QuoteMeta(string(runes[i])))
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
}

// splitGlobOnSeparator splits a raw glob pattern into path segments,
// honoring backslash-escaping of '/' per the parity rule: a '/' preceded
// by an odd number of consecutive backslashes is a literal character (the
// escaping backslash is consumed, not included in the segment), and a '/'
// preceded by an even number (including zero) is a separator.
func splitGlobOnSeparator(pattern string) []string {
	var segments []string
	var cur strings.Builder
	backslashRun := 0
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '\\' {
			backslashRun++
			cur.WriteRune(c)
			continue
		}
		if c == '/' {
			if backslashRun%2 == 1 {
				// literal slash: drop the escaping backslash already
				// written, keep the rest, append literal '/'
				s := cur.String()
				cur.Reset()
				cur.WriteString(s[:len(s)-1])
				cur.WriteRune('/')
			} else {
				segments = append(segments, cur.String())
				cur.Reset()
			}
			backslashRun = 0
			continue
		}
		backslashRun = 0
		cur.WriteRune(c)
	}
	segments = append(segments, cur.String())
	return segments
}
