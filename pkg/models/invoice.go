package models

import "encoding/json"

// InvoiceItem is one raw line from the monthly invoice feed. Cents is absent
// for informational lines that carry no amount.
type InvoiceItem struct {
	Description string `json:"description"`
	Cents       *int64 `json:"cents,omitempty"`
}

// MonthlyInvoice is the upstream invoice feed for one calendar month.
// HasUnpaidMidMonthInvoice is asserted by the upstream service and passed
// through verbatim, never derived locally.
type MonthlyInvoice struct {
	Items                    []InvoiceItem `json:"items"`
	HasUnpaidMidMonthInvoice bool          `json:"hasUnpaidMidMonthInvoice"`
}

// ModelCategoryUsage is one model category's counters from the individual
// usage feed.
type ModelCategoryUsage struct {
	NumRequests     int  `json:"numRequests"`
	TotalRequests   int  `json:"numRequestsTotal"`
	MaxRequestUsage *int `json:"maxRequestUsage"`
	TokenUsage      *int `json:"numTokens"`
}

// IndividualUsage is the premium quota feed for a single subject. The
// upstream response keys model categories at the top level next to
// startOfMonth, so decoding is done by hand.
type IndividualUsage struct {
	// Models maps a model category (e.g. "gpt-4") to its counters.
	Models       map[string]ModelCategoryUsage `json:"-"`
	StartOfMonth string                        `json:"startOfMonth"`
}

// UnmarshalJSON splits the flat upstream object into StartOfMonth and
// per-category counters. Keys that do not decode as counters are ignored.
func (u *IndividualUsage) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.Models = make(map[string]ModelCategoryUsage)
	for key, val := range raw {
		if key == "startOfMonth" {
			if err := json.Unmarshal(val, &u.StartOfMonth); err != nil {
				return err
			}
			continue
		}
		var mc ModelCategoryUsage
		if err := json.Unmarshal(val, &mc); err != nil {
			continue
		}
		u.Models[key] = mc
	}
	return nil
}
