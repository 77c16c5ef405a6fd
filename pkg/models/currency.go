package models

import "time"

// ExchangeRateFreshness is how long a fetched rate snapshot may be trusted.
const ExchangeRateFreshness = 24 * time.Hour

// ExchangeRateSnapshot holds USD-relative exchange rates from the rate feed.
type ExchangeRateSnapshot struct {
	BaseCurrency string             `json:"base_currency"`
	Rates        map[string]float64 `json:"rates"`
	FetchedAt    time.Time          `json:"fetched_at"`
}

// Fresh reports whether the snapshot is still within its freshness window.
func (s ExchangeRateSnapshot) Fresh(now time.Time) bool {
	return !s.FetchedAt.IsZero() && now.Sub(s.FetchedAt) < ExchangeRateFreshness
}

// ConvertedAmount is a monetary amount in a display currency.
type ConvertedAmount struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
	Symbol   string  `json:"symbol"`
}
