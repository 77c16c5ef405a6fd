package usage

import (
	"strings"
	"testing"
	"time"

	"github.com/sm-moshi/cursor-stats/pkg/classifier"
	"github.com/sm-moshi/cursor-stats/pkg/models"
)

func cents(n int64) *int64 { return &n }

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	return NewBuilder(classifier.New(classifier.NewTracker(), nil, nil), nil)
}

func TestBuildMonthPadding(t *testing.T) {
	b := newTestBuilder(t)
	inv := models.MonthlyInvoice{Items: []models.InvoiceItem{
		{Description: "999 fast premium requests beyond 500", Cents: cents(3996)},
		{Description: "5 fast premium requests beyond 500", Cents: cents(20)},
	}}

	m := b.BuildMonth(time.August, 2026, inv)
	if len(m.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(m.Items))
	}
	if !strings.HasPrefix(m.Items[0].DisplayCalculation, "999 ") {
		t.Errorf("unexpected first calc %q", m.Items[0].DisplayCalculation)
	}
	if !strings.HasPrefix(m.Items[1].DisplayCalculation, "005 ") {
		t.Errorf("expected count zero-padded to 3 digits, got %q", m.Items[1].DisplayCalculation)
	}
}

func TestBuildMonthMidMonthRunningTotal(t *testing.T) {
	b := newTestBuilder(t)
	inv := models.MonthlyInvoice{Items: []models.InvoiceItem{
		{Description: "Mid-month usage paid", Cents: cents(-500)},
		{Description: "10 fast premium requests beyond 500", Cents: cents(40)},
		{Description: "Mid-month usage paid", Cents: cents(-300)},
	}}

	m := b.BuildMonth(time.August, 2026, inv)

	if m.MidMonthPaymentCents != 800 {
		t.Errorf("expected running total 800, got %d", m.MidMonthPaymentCents)
	}
	var payments []models.UsageLineItem
	for _, it := range m.Items {
		if it.ModelName == models.MidMonthPaymentModel {
			payments = append(payments, it)
		}
	}
	if len(payments) != 1 {
		t.Fatalf("expected exactly one synthetic payment item, got %d", len(payments))
	}
	if payments[0].TotalDollars != "-$8.00" {
		t.Errorf("expected -$8.00 running total, got %q", payments[0].TotalDollars)
	}
	// The synthetic item keeps its original position.
	if m.Items[0].ModelName != models.MidMonthPaymentModel {
		t.Errorf("expected payment item first, got %q", m.Items[0].ModelName)
	}
}

func TestBuildMonthSkipsDoNotEmit(t *testing.T) {
	b := newTestBuilder(t)
	inv := models.MonthlyInvoice{Items: []models.InvoiceItem{
		{Description: "5 fast premium requests"}, // no cents
		{Description: "monthly platform fee", Cents: cents(2000)},
	}}

	m := b.BuildMonth(time.August, 2026, inv)
	if len(m.Items) != 0 {
		t.Errorf("expected no items, got %d", len(m.Items))
	}
}

func TestBuildMonthUnpaidFlagPassthrough(t *testing.T) {
	b := newTestBuilder(t)
	m := b.BuildMonth(time.August, 2026, models.MonthlyInvoice{HasUnpaidMidMonthInvoice: true})
	if !m.HasUnpaidMidMonthInvoice {
		t.Error("expected unpaid flag copied verbatim")
	}
}

func TestBuildMonthTokenBasedExample(t *testing.T) {
	b := newTestBuilder(t)
	inv := models.MonthlyInvoice{Items: []models.InvoiceItem{
		{Description: "42 token-based usage calls to gpt-5-extreme, totalling: $4.20", Cents: cents(420)},
	}}

	m := b.BuildMonth(time.August, 2026, inv)
	if len(m.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(m.Items))
	}
	it := m.Items[0]
	if it.ModelName != "gpt-5-extreme" {
		t.Errorf("expected gpt-5-extreme, got %q", it.ModelName)
	}
	if it.TotalDollars != "$4.20" {
		t.Errorf("expected $4.20, got %q", it.TotalDollars)
	}
	if it.IsDiscounted {
		t.Error("expected not discounted")
	}
	if it.DisplayCalculation != "42 requests @ $0.10" {
		t.Errorf("unexpected calc %q", it.DisplayCalculation)
	}
}

func TestFormatDollars(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{420, "$4.20"},
		{-800, "-$8.00"},
		{0, "$0.00"},
		{5, "$0.05"},
		{123456, "$1234.56"},
	}
	for _, tt := range tests {
		if got := FormatDollars(tt.cents); got != tt.want {
			t.Errorf("FormatDollars(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestCostPerRequestSubCent(t *testing.T) {
	if got := costPerRequest(5, 100); got != "0.0005" {
		t.Errorf("expected four decimals for sub-cent cost, got %q", got)
	}
	if got := costPerRequest(400, 100); got != "0.04" {
		t.Errorf("expected 0.04, got %q", got)
	}
}
