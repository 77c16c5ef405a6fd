package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sm-moshi/cursor-stats/pkg/models"
)

const rateCacheKey = "exchange-rates"

// RateStore persists the exchange-rate snapshot between refreshes.
type RateStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Put(ctx context.Context, key string, val any) error
}

// Converter converts USD amounts to a display currency using a rate feed
// cached for 24 hours. It never fails past its boundary: every problem
// degrades to returning the amount unconverted in USD.
type Converter struct {
	url   string
	http  *http.Client
	store RateStore
	log   *logrus.Logger
	now   func() time.Time
}

// NewConverter creates a Converter against the given rate feed URL.
func NewConverter(url string, store RateStore, log *logrus.Logger) *Converter {
	if log == nil {
		log = logrus.New()
	}
	return &Converter{
		url:   url,
		http:  &http.Client{Timeout: 30 * time.Second},
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Convert converts an USD amount into the target currency. "USD" is an
// identity short-circuit that touches neither network nor cache.
func (c *Converter) Convert(ctx context.Context, amountUSD float64, target string) models.ConvertedAmount {
	target = strings.ToUpper(target)
	usd := models.ConvertedAmount{Value: amountUSD, Currency: "USD", Symbol: "$"}
	if target == "" || target == "USD" {
		return usd
	}

	snap, ok := c.snapshot(ctx)
	if !ok {
		return usd
	}

	rate, ok := snap.Rates[strings.ToLower(target)]
	if !ok || rate <= 0 {
		c.log.WithField("currency", target).Debug("currency missing from rate feed, showing USD")
		return usd
	}

	return models.ConvertedAmount{
		Value:    amountUSD * rate,
		Currency: target,
		Symbol:   Symbol(target),
	}
}

// snapshot returns a fresh rate snapshot, refetching when the cached one is
// absent or older than 24 hours.
func (c *Converter) snapshot(ctx context.Context) (models.ExchangeRateSnapshot, bool) {
	var cached models.ExchangeRateSnapshot
	ok, err := c.store.Get(ctx, rateCacheKey, &cached)
	if err != nil {
		c.log.WithError(err).Debug("rate cache read failed")
	} else if ok && cached.Fresh(c.now()) {
		return cached, true
	}

	snap, err := c.fetch(ctx)
	if err != nil {
		c.log.WithError(err).Warn("rate feed unreachable, showing USD")
		return models.ExchangeRateSnapshot{}, false
	}

	// Best effort: a cache write failure never fails the conversion.
	if err := c.store.Put(ctx, rateCacheKey, snap); err != nil {
		c.log.WithError(err).Warn("rate cache write failed")
	}
	return snap, true
}

func (c *Converter) fetch(ctx context.Context) (models.ExchangeRateSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return models.ExchangeRateSnapshot{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.ExchangeRateSnapshot{}, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ExchangeRateSnapshot{}, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	// The feed keys the mapping either as "rates" or under the base
	// currency code.
	var payload struct {
		Date  string             `json:"date"`
		Rates map[string]float64 `json:"rates"`
		USD   map[string]float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.ExchangeRateSnapshot{}, fmt.Errorf("decode rate feed: %w", err)
	}

	rates := payload.Rates
	if rates == nil {
		rates = payload.USD
	}
	if len(rates) == 0 {
		return models.ExchangeRateSnapshot{}, fmt.Errorf("rate feed carried no rates")
	}

	return models.ExchangeRateSnapshot{
		BaseCurrency: "USD",
		Rates:        rates,
		FetchedAt:    c.now().UTC(),
	}, nil
}

// zeroDecimalCurrencies round to whole units for display.
var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {}, "KRW": {}, "VND": {}, "CLP": {},
}

// symbols maps common currency codes to display symbols. Codes outside the
// table fall back to the code itself.
var symbols = map[string]string{
	"USD": "$", "EUR": "€", "GBP": "£", "JPY": "¥", "CNY": "¥",
	"KRW": "₩", "INR": "₹", "AUD": "A$", "CAD": "C$", "NZD": "NZ$",
	"CHF": "CHF", "SEK": "kr", "NOK": "kr", "DKK": "kr", "PLN": "zł",
	"BRL": "R$", "RUB": "₽", "TRY": "₺", "VND": "₫", "CLP": "$",
	"MXN": "$", "SGD": "S$", "HKD": "HK$", "ILS": "₪", "CZK": "Kč",
}

// Symbol returns the display symbol for a currency code.
func Symbol(currency string) string {
	if s, ok := symbols[strings.ToUpper(currency)]; ok {
		return s
	}
	return strings.ToUpper(currency)
}

// FormatAmount renders a converted amount with its symbol, using two
// decimals except for zero-decimal currencies.
func FormatAmount(a models.ConvertedAmount) string {
	if _, whole := zeroDecimalCurrencies[strings.ToUpper(a.Currency)]; whole {
		return a.Symbol + strconv.FormatFloat(a.Value, 'f', 0, 64)
	}
	return a.Symbol + strconv.FormatFloat(a.Value, 'f', 2, 64)
}
