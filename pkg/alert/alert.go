package alert

import (
	"fmt"
	"sort"

	"github.com/sm-moshi/cursor-stats/pkg/models"
)

// Kind discriminates alert causes.
type Kind string

const (
	// KindQuota fires when premium quota usage crosses a percentage step.
	KindQuota Kind = "quota"
	// KindSpend fires when the display month's total exceeds the limit.
	KindSpend Kind = "spend"
)

// Alert is one triggered usage alert.
type Alert struct {
	Kind      Kind
	Threshold int
	Percent   float64
	Message   string
}

// Evaluator checks snapshots against percentage thresholds and an optional
// monthly spend limit. Each threshold fires once until usage drops back
// below it, which re-arms the step for the next billing period.
type Evaluator struct {
	thresholds        []int
	spendLimitDollars float64

	firedThreshold int
	spendFired     bool
}

// New creates an Evaluator. Thresholds are percentages of the premium quota.
func New(thresholds []int, spendLimitDollars float64) *Evaluator {
	sorted := make([]int, len(thresholds))
	copy(sorted, thresholds)
	sort.Ints(sorted)
	return &Evaluator{
		thresholds:        sorted,
		spendLimitDollars: spendLimitDollars,
	}
}

// Check evaluates one snapshot and returns the alerts it newly triggers.
func (e *Evaluator) Check(snap models.UsageSnapshot) []Alert {
	var alerts []Alert

	pct := snap.PremiumQuota.PercentUsed()
	crossed := 0
	for _, t := range e.thresholds {
		if pct >= float64(t) {
			crossed = t
		}
	}
	if crossed > e.firedThreshold {
		alerts = append(alerts, Alert{
			Kind:      KindQuota,
			Threshold: crossed,
			Percent:   pct,
			Message: fmt.Sprintf("premium quota at %.1f%% (%d/%d requests)",
				pct, snap.PremiumQuota.CurrentCount, snap.PremiumQuota.Limit),
		})
	}
	// Track the highest crossed step in both directions so a new billing
	// period re-arms lower thresholds.
	e.firedThreshold = crossed

	if e.spendLimitDollars > 0 {
		spend := float64(snap.DisplayMonth().TotalCents()) / 100
		if spend >= e.spendLimitDollars {
			if !e.spendFired {
				alerts = append(alerts, Alert{
					Kind:    KindSpend,
					Percent: spend / e.spendLimitDollars * 100,
					Message: fmt.Sprintf("usage-based spend $%.2f exceeds limit $%.2f",
						spend, e.spendLimitDollars),
				})
			}
			e.spendFired = true
		} else {
			e.spendFired = false
		}
	}

	return alerts
}
