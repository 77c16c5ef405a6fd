package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sm-moshi/cursor-stats/pkg/models"
)

// countMatch is an extracted request count plus the free-text phrase the
// label is resolved from. Verbatim marks phrases that already are a model
// identifier and skip label resolution.
type countMatch struct {
	count    int
	phrase   string
	verbatim bool
}

// countMatcher extracts a request count from a line description. Matchers
// are tried in a fixed priority order; the first hit wins.
type countMatcher struct {
	name    string
	extract func(string) (countMatch, bool)
}

var (
	tokenBasedRe = regexp.MustCompile(`(?i)\b(\d+)\s+token-based usage calls to\s+([^,]+)`)
	requestsRe   = regexp.MustCompile(`(?i)\b(\d+)\s+([^,@]*(?:requests?|calls?)[^,@]*)`)
	bareCountRe  = regexp.MustCompile(`\b(\d+)\s+(\S+)`)
)

// countMatchers is the ordered extraction chain: the explicit token-based
// pattern, then the general request/call pattern, then a bare count plus the
// following word.
var countMatchers = []countMatcher{
	{
		name: "token-based",
		extract: func(desc string) (countMatch, bool) {
			m := tokenBasedRe.FindStringSubmatch(desc)
			if m == nil {
				return countMatch{}, false
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return countMatch{}, false
			}
			return countMatch{count: n, phrase: strings.TrimSpace(m[2]), verbatim: true}, true
		},
	},
	{
		name: "requests",
		extract: func(desc string) (countMatch, bool) {
			m := requestsRe.FindStringSubmatch(desc)
			if m == nil {
				return countMatch{}, false
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return countMatch{}, false
			}
			return countMatch{count: n, phrase: strings.TrimSpace(m[2])}, true
		},
	},
	{
		name: "bare-count",
		extract: func(desc string) (countMatch, bool) {
			m := bareCountRe.FindStringSubmatch(desc)
			if m == nil {
				return countMatch{}, false
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return countMatch{}, false
			}
			return countMatch{count: n, phrase: m[2]}, true
		},
	},
}

// labelMatcher resolves a free-text phrase to a model label. Matchers are
// tried in a fixed priority order; a phrase no matcher claims is flagged as
// an unknown model.
type labelMatcher struct {
	name    string
	resolve func(string) (string, bool)
}

var (
	toolCallsRe   = regexp.MustCompile(`(?i)\btool\s+calls?\b`)
	fastPremiumRe = regexp.MustCompile(`(?i)\b(?:extra\s+)?fast\s+premium\b`)
	parenRe       = regexp.MustCompile(`\(([^)]+)\)`)
)

// knownModelRes enumerates recognized model families. The matched substring
// is used verbatim as the label.
var knownModelRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bclaude-[\w.-]+\b`),
	regexp.MustCompile(`(?i)\bgpt-\d+(?:[\w.-]*\w)?\b`),
	regexp.MustCompile(`(?i)\bo[134](?:-mini|-preview|-pro)?\b`),
	regexp.MustCompile(`(?i)\bgemini-[\w.-]+\b`),
	regexp.MustCompile(`(?i)\bdeepseek(?:-[\w.]+)?\b`),
	regexp.MustCompile(`(?i)\bgrok(?:-[\w.]+)?\b`),
	regexp.MustCompile(`(?i)\bcursor-(?:small|fast)\b`),
	regexp.MustCompile(`(?i)\bllama-?[\w.-]*\b`),
	regexp.MustCompile(`(?i)\bmi(?:s|x)tral(?:-[\w.]+)?\b`),
	regexp.MustCompile(`(?i)\b(?:haiku|sonnet|opus)\b`),
}

func resolveKnownModel(phrase string) (string, bool) {
	for _, re := range knownModelRes {
		if m := re.FindString(phrase); m != "" {
			return m, true
		}
	}
	return "", false
}

func labelMatchers(unknown func(string) (string, bool)) []labelMatcher {
	return []labelMatcher{
		{
			name: "tool-calls",
			resolve: func(phrase string) (string, bool) {
				if toolCallsRe.MatchString(phrase) {
					return models.ToolCallsModel, true
				}
				return "", false
			},
		},
		{
			name: "extra-fast-premium",
			resolve: func(phrase string) (string, bool) {
				if !fastPremiumRe.MatchString(phrase) {
					return "", false
				}
				if m := parenRe.FindStringSubmatch(phrase); m != nil {
					return strings.TrimSpace(m[1]), true
				}
				return models.FastPremiumModel, true
			},
		},
		{name: "known-model", resolve: resolveKnownModel},
		{name: "unknown-model", resolve: unknown},
	}
}

// suffixWords are generic filler words stripped from a phrase before it is
// reported as an unknown model term.
var suffixWords = map[string]struct{}{
	"request": {}, "requests": {}, "call": {}, "calls": {},
	"beyond": {}, "per": {}, "usage": {}, "each": {}, "to": {},
	"token": {}, "tokens": {}, "token-based": {}, "of": {}, "the": {},
	"at": {}, "discounted": {}, "totalling": {}, "totaling": {},
}

// cleanTerm strips generic suffix words, bare numbers, and currency amounts
// from a phrase, preserving the remaining word order.
func cleanTerm(phrase string) string {
	var kept []string
	for _, w := range strings.Fields(phrase) {
		word := strings.Trim(w, ".,:;()")
		key := strings.ToLower(word)
		if _, drop := suffixWords[key]; drop {
			continue
		}
		if word == "" || word == "@" || strings.HasPrefix(word, "$") || isNumeric(word) {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return len(s) > 0
}

// defaultBlocklist are generic terms never worth reporting as unknown
// models. Extendable through configuration.
var defaultBlocklist = []string{
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
	"premium", "extra", "fast", "thinking", "slow", "pro", "free",
	"monthly", "invoice", "payment", "credit", "mid-month",
}
