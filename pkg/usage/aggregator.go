package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sm-moshi/cursor-stats/pkg/models"
)

// QuotaResolver yields the caller's premium quota, individual or
// team-resolved.
type QuotaResolver interface {
	PremiumQuota(ctx context.Context) (models.PremiumQuota, error)
}

// InvoiceSource yields one month of the raw invoice feed.
type InvoiceSource interface {
	MonthlyInvoice(ctx context.Context, month time.Month, year int) (models.MonthlyInvoice, error)
}

// Aggregator orchestrates one refresh: quota resolution plus the active and
// preceding billing months. A snapshot is only returned whole; a refresh
// that fails midway discards its partial state.
type Aggregator struct {
	resolver  QuotaResolver
	invoices  InvoiceSource
	builder   *Builder
	cutoffDay int
	log       *logrus.Logger
	now       func() time.Time
}

// NewAggregator wires an Aggregator. cutoffDay comes from billing
// configuration.
func NewAggregator(r QuotaResolver, inv InvoiceSource, b *Builder, cutoffDay int, log *logrus.Logger) *Aggregator {
	if log == nil {
		log = logrus.New()
	}
	return &Aggregator{
		resolver:  r,
		invoices:  inv,
		builder:   b,
		cutoffDay: cutoffDay,
		log:       log,
		now:       time.Now,
	}
}

// Snapshot performs one full refresh cycle.
func (a *Aggregator) Snapshot(ctx context.Context) (models.UsageSnapshot, error) {
	cycleID := uuid.NewString()
	log := a.log.WithField("cycle", cycleID)

	quota, err := a.resolver.PremiumQuota(ctx)
	if err != nil {
		return models.UsageSnapshot{}, fmt.Errorf("resolve premium quota: %w", err)
	}

	anchorMonth, anchorYear := BillingAnchor(a.now(), a.cutoffDay)
	prevMonth, prevYear := PreviousMonth(anchorMonth, anchorYear)

	current, err := a.buildMonth(ctx, anchorMonth, anchorYear)
	if err != nil {
		return models.UsageSnapshot{}, err
	}
	last, err := a.buildMonth(ctx, prevMonth, prevYear)
	if err != nil {
		return models.UsageSnapshot{}, err
	}

	log.WithFields(logrus.Fields{
		"current_items": len(current.Items),
		"last_items":    len(last.Items),
		"premium_used":  quota.CurrentCount,
	}).Debug("refresh complete")

	return models.UsageSnapshot{
		CycleID:      cycleID,
		CurrentMonth: current,
		LastMonth:    last,
		PremiumQuota: quota,
		FetchedAt:    a.now(),
	}, nil
}

func (a *Aggregator) buildMonth(ctx context.Context, month time.Month, year int) (models.MonthUsage, error) {
	inv, err := a.invoices.MonthlyInvoice(ctx, month, year)
	if err != nil {
		return models.MonthUsage{}, fmt.Errorf("fetch invoice %d-%02d: %w", year, month, err)
	}
	return a.builder.BuildMonth(month, year, inv), nil
}
