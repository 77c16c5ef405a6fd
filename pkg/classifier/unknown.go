package classifier

import (
	"sort"
	"strings"
)

// Tracker accumulates invoice terms that could not be mapped to a known
// model. It lives for the whole process and backs a single aggregate
// notification. All access happens on the one logical refresh flow, so no
// locking is needed.
type Tracker struct {
	terms    []string
	notified bool
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe adds a term unless an existing entry already covers it. Coverage
// is case-insensitive substring containment in either direction, so
// "claude-9" suppresses "Claude-9-Mega" and vice versa.
func (t *Tracker) Observe(term string) {
	lower := strings.ToLower(term)
	for _, existing := range t.terms {
		el := strings.ToLower(existing)
		if strings.Contains(el, lower) || strings.Contains(lower, el) {
			return
		}
	}
	t.terms = append(t.terms, term)
}

// ShouldNotify returns true exactly once per process lifetime, the first
// time it is called with a non-empty set.
func (t *Tracker) ShouldNotify() bool {
	if t.notified || len(t.terms) == 0 {
		return false
	}
	t.notified = true
	return true
}

// Terms returns a sorted copy of the accumulated terms.
func (t *Tracker) Terms() []string {
	out := make([]string, len(t.terms))
	copy(out, t.terms)
	sort.Strings(out)
	return out
}
