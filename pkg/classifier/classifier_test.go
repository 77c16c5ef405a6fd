package classifier

import (
	"testing"

	"github.com/sm-moshi/cursor-stats/pkg/models"
)

func cents(n int64) *int64 { return &n }

func TestClassifySkipsMissingAmount(t *testing.T) {
	c := New(nil, nil, nil)
	res := c.Classify(models.InvoiceItem{Description: "5 fast premium requests"})
	if res.Kind != Skip {
		t.Errorf("expected skip for missing cents, got %v", res.Kind)
	}
}

func TestClassifyMidMonthCredit(t *testing.T) {
	c := New(nil, nil, nil)
	res := c.Classify(models.InvoiceItem{Description: "Mid-month usage paid", Cents: cents(-500)})
	if res.Kind != MidMonthCredit {
		t.Fatalf("expected mid-month credit, got %v", res.Kind)
	}
	if res.CreditCents != 500 {
		t.Errorf("expected 500 credit cents, got %d", res.CreditCents)
	}
}

func TestClassifyTokenBasedLine(t *testing.T) {
	c := New(nil, nil, nil)
	res := c.Classify(models.InvoiceItem{
		Description: "42 token-based usage calls to gpt-5-extreme, totalling: $4.20",
		Cents:       cents(420),
	})
	if res.Kind != LineItem {
		t.Fatalf("expected line item, got %v", res.Kind)
	}
	if res.RequestCount != 42 {
		t.Errorf("expected 42 requests, got %d", res.RequestCount)
	}
	if res.ModelName != "gpt-5-extreme" {
		t.Errorf("expected gpt-5-extreme, got %q", res.ModelName)
	}
	if res.Cents != 420 {
		t.Errorf("expected 420 cents, got %d", res.Cents)
	}
	if res.IsDiscounted {
		t.Error("expected not discounted")
	}
}

func TestClassifyLabels(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want string
	}{
		{"tool calls", "1270 tool calls", "tool-calls"},
		{"tool calls beats unknown", "12 mystery tool calls", "tool-calls"},
		{"extra fast premium with parens", "30 extra fast premium requests (claude-3-opus)", "claude-3-opus"},
		{"fast premium without parens", "216 fast premium requests beyond 500", "fast-premium"},
		{"known claude", "9 requests to claude-3.5-sonnet", "claude-3.5-sonnet"},
		{"known gpt", "14 gpt-4o-mini requests", "gpt-4o-mini"},
		{"known o-series", "7 o1-mini requests", "o1-mini"},
		{"unknown model", "8 frontier-x requests", models.UnknownModelName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(NewTracker(), nil, nil)
			res := c.Classify(models.InvoiceItem{Description: tt.desc, Cents: cents(100)})
			if res.Kind != LineItem {
				t.Fatalf("expected line item, got %v", res.Kind)
			}
			if res.ModelName != tt.want {
				t.Errorf("expected %q, got %q", tt.want, res.ModelName)
			}
		})
	}
}

func TestClassifyZeroCountSkips(t *testing.T) {
	c := New(nil, nil, nil)
	res := c.Classify(models.InvoiceItem{Description: "0 fast premium requests", Cents: cents(100)})
	if res.Kind != Skip {
		t.Errorf("expected skip for zero count, got %v", res.Kind)
	}
}

func TestClassifyUnparsableSkips(t *testing.T) {
	c := New(nil, nil, nil)
	res := c.Classify(models.InvoiceItem{Description: "monthly platform fee", Cents: cents(2000)})
	if res.Kind != Skip {
		t.Errorf("expected skip for line without a count, got %v", res.Kind)
	}
}

func TestClassifyDiscounted(t *testing.T) {
	c := New(nil, nil, nil)
	res := c.Classify(models.InvoiceItem{
		Description: "100 discounted fast premium requests",
		Cents:       cents(200),
	})
	if res.Kind != LineItem {
		t.Fatalf("expected line item, got %v", res.Kind)
	}
	if !res.IsDiscounted {
		t.Error("expected discounted flag")
	}
}

func TestUnknownTermForwarding(t *testing.T) {
	tr := NewTracker()
	c := New(tr, nil, nil)

	c.Classify(models.InvoiceItem{Description: "8 frontier-x requests beyond 500", Cents: cents(100)})
	terms := tr.Terms()
	if len(terms) != 1 {
		t.Fatalf("expected 1 tracked term, got %v", terms)
	}
	if terms[0] != "frontier-x" {
		t.Errorf("expected suffix words stripped, got %q", terms[0])
	}
}

func TestUnknownTermBlocklist(t *testing.T) {
	tr := NewTracker()
	c := New(tr, []string{"special-tier"}, nil)

	// Month names and configured extras never reach the tracker.
	c.Classify(models.InvoiceItem{Description: "3 September requests", Cents: cents(100)})
	c.Classify(models.InvoiceItem{Description: "3 special-tier requests", Cents: cents(100)})
	if got := tr.Terms(); len(got) != 0 {
		t.Errorf("expected no tracked terms, got %v", got)
	}
}
