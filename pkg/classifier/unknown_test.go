package classifier

import "testing"

func TestTrackerDedup(t *testing.T) {
	tr := NewTracker()
	tr.Observe("claude-9-mega")
	tr.Observe("Claude-9-Mega")
	tr.Observe("claude-9")

	if got := tr.Terms(); len(got) != 1 {
		t.Errorf("expected 1 term after near-duplicates, got %v", got)
	}

	tr.Observe("frontier-x")
	if got := tr.Terms(); len(got) != 2 {
		t.Errorf("expected 2 terms, got %v", got)
	}
}

func TestTrackerSubstringEitherDirection(t *testing.T) {
	tr := NewTracker()
	tr.Observe("mega")
	tr.Observe("claude-9-mega") // existing "mega" is a substring of this
	if got := tr.Terms(); len(got) != 1 {
		t.Errorf("expected containment in either direction to suppress, got %v", got)
	}
}

func TestShouldNotifyOnce(t *testing.T) {
	tr := NewTracker()
	if tr.ShouldNotify() {
		t.Error("empty set must not notify")
	}

	tr.Observe("claude-9-mega")
	if !tr.ShouldNotify() {
		t.Error("expected first notify to fire")
	}
	if tr.ShouldNotify() || tr.ShouldNotify() {
		t.Error("notify must fire at most once per process")
	}

	tr.Observe("frontier-x")
	if tr.ShouldNotify() {
		t.Error("set growth must not re-arm the notification")
	}
}
