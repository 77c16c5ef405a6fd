package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sm-moshi/cursor-stats/pkg/config"
	"github.com/sm-moshi/cursor-stats/pkg/currency"
	"github.com/sm-moshi/cursor-stats/pkg/models"
	"github.com/sm-moshi/cursor-stats/pkg/usage"
)

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the current usage snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			s, err := buildStack(cfg)
			if err != nil {
				return err
			}
			defer s.close()

			ctx := context.Background()
			snap, err := s.refresh(ctx)
			if err != nil {
				return err
			}

			fmt.Print(formatSnapshot(ctx, snap, s, cfg))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}

func formatSnapshot(ctx context.Context, snap models.UsageSnapshot, s *stack, cfg *config.Config) string {
	var b strings.Builder

	q := snap.PremiumQuota
	fmt.Fprintf(&b, "Premium requests: %d/%d (%.1f%%)\n", q.CurrentCount, q.Limit, q.PercentUsed())
	if !q.PeriodStart.IsZero() {
		progress := usage.PeriodProgress(snap.FetchedAt, q.PeriodStart, cfg.Billing.ExcludeWeekends)
		fmt.Fprintf(&b, "Period progress:  %.0f%% (since %s)\n", progress, q.PeriodStart.Format("2006-01-02"))
	}
	b.WriteString("\n")

	month := snap.DisplayMonth()
	b.WriteString(formatMonth(ctx, month, s, cfg))

	if month.HasUnpaidMidMonthInvoice {
		b.WriteString("\nNote: there is an unpaid mid-month invoice.\n")
	}
	if s.tracker.ShouldNotify() {
		fmt.Fprintf(&b, "\nUnrecognized model terms on this invoice: %s\n",
			strings.Join(s.tracker.Terms(), ", "))
	}

	return b.String()
}

func formatMonth(ctx context.Context, m models.MonthUsage, s *stack, cfg *config.Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Usage-based charges for %s %d\n", m.Month, m.Year)
	if len(m.Items) == 0 {
		b.WriteString("  no billable usage\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-28s %-32s %10s\n", "MODEL", "CALCULATION", "TOTAL")
	b.WriteString(strings.Repeat("-", 72) + "\n")
	for _, it := range m.Items {
		fmt.Fprintf(&b, "%-28s %-32s %10s\n", it.ModelName, it.DisplayCalculation, it.TotalDollars)
	}
	b.WriteString(strings.Repeat("-", 72) + "\n")

	total := s.converter.Convert(ctx, float64(m.TotalCents())/100, cfg.Currency)
	fmt.Fprintf(&b, "%-61s %10s\n", "Total", currency.FormatAmount(total))
	if m.MidMonthPaymentCents > 0 {
		fmt.Fprintf(&b, "%-61s %10s\n", "Mid-month payments so far",
			usage.FormatDollars(m.MidMonthPaymentCents))
	}

	return b.String()
}
