package models

import "time"

// Sentinel model labels used when a line cannot be mapped to a known model.
const (
	UnknownModelName     = "unknown-model"
	MidMonthPaymentModel = "mid-month-payment"
)

// ToolCallsModel labels lines billed as agent tool invocations.
const ToolCallsModel = "tool-calls"

// FastPremiumModel labels "extra fast premium" lines that carry no explicit model.
const FastPremiumModel = "fast-premium"

// UsageLineItem is one billable event or adjustment from a monthly invoice.
type UsageLineItem struct {
	// DisplayCalculation is a presentation-ready "N requests @ cost" string,
	// zero-padded against the widest line of the same month.
	DisplayCalculation string `json:"display_calculation"`
	// TotalDollars is the signed formatted USD amount, e.g. "$4.20" or "-$8.00".
	// Credits (mid-month payments) are negative.
	TotalDollars   string `json:"total_dollars"`
	RawDescription string `json:"raw_description"`
	ModelName      string `json:"model_name"`
	IsDiscounted   bool   `json:"is_discounted"`
	// Cents is the signed amount in cents backing TotalDollars.
	Cents int64 `json:"cents"`
}

// MonthUsage is a normalized view of one month's invoice. It is built once per
// refresh and never mutated afterwards.
type MonthUsage struct {
	Month                    time.Month      `json:"month"`
	Year                     int             `json:"year"`
	Items                    []UsageLineItem `json:"items"`
	HasUnpaidMidMonthInvoice bool            `json:"has_unpaid_mid_month_invoice"`
	// MidMonthPaymentCents is the running total of mid-month credits, in
	// absolute cents. It only grows as lines are processed.
	MidMonthPaymentCents int64 `json:"mid_month_payment_cents"`
}

// TotalCents sums the signed cents of all items.
func (m MonthUsage) TotalCents() int64 {
	var total int64
	for _, it := range m.Items {
		total += it.Cents
	}
	return total
}

// PremiumQuota is the subscription's included monthly count of priority
// requests, resolved either from the individual usage feed or a team roster.
type PremiumQuota struct {
	CurrentCount int       `json:"current_count"`
	Limit        int       `json:"limit"`
	PeriodStart  time.Time `json:"period_start"`
}

// PercentUsed returns usage as a percentage of the limit. A zero limit, which
// the upstream service can legitimately report, yields 0.
func (q PremiumQuota) PercentUsed() float64 {
	if q.Limit <= 0 {
		return 0
	}
	return float64(q.CurrentCount) / float64(q.Limit) * 100
}

// UsageSnapshot is the consolidated result of one refresh cycle. It is owned
// by the caller and never shares mutable state with other snapshots.
type UsageSnapshot struct {
	CycleID      string       `json:"cycle_id"`
	CurrentMonth MonthUsage   `json:"current_month"`
	LastMonth    MonthUsage   `json:"last_month"`
	PremiumQuota PremiumQuota `json:"premium_quota"`
	FetchedAt    time.Time    `json:"fetched_at"`
}

// DisplayMonth returns the month to surface: the active billing month when it
// has at least one item, otherwise the preceding month. Invoices for a fresh
// billing period may not populate until a few days in.
func (s UsageSnapshot) DisplayMonth() MonthUsage {
	if len(s.CurrentMonth.Items) > 0 {
		return s.CurrentMonth
	}
	return s.LastMonth
}
