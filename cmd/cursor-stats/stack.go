package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sm-moshi/cursor-stats/pkg/api"
	cachepkg "github.com/sm-moshi/cursor-stats/pkg/cache/sqlite"
	"github.com/sm-moshi/cursor-stats/pkg/classifier"
	"github.com/sm-moshi/cursor-stats/pkg/config"
	"github.com/sm-moshi/cursor-stats/pkg/credential"
	"github.com/sm-moshi/cursor-stats/pkg/currency"
	"github.com/sm-moshi/cursor-stats/pkg/history"
	"github.com/sm-moshi/cursor-stats/pkg/models"
	"github.com/sm-moshi/cursor-stats/pkg/team"
	"github.com/sm-moshi/cursor-stats/pkg/usage"
)

// stack wires the full refresh pipeline from configuration. Caches and the
// unknown-model tracker live here for the process lifetime.
type stack struct {
	cfg        *config.Config
	store      *cachepkg.Store
	tracker    *classifier.Tracker
	aggregator *usage.Aggregator
	converter  *currency.Converter
	history    *history.Store
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildStack(cfg *config.Config) (*stack, error) {
	token := cfg.SessionToken
	if token == "" {
		token = os.Getenv("CURSOR_SESSION_TOKEN")
	}
	subject, err := credential.SubjectID(token)
	if err != nil {
		return nil, fmt.Errorf("resolve subject from session token: %w", err)
	}

	store, err := cachepkg.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	hist, err := history.Open(cfg.DBPath)
	if err != nil {
		store.Close()
		return nil, err
	}

	client := api.NewClient(cfg.APIBase, credential.NewStaticSource(token), log)
	resolver := team.NewResolver(client, store, subject, cfg.Billing.TrackedModel, log)
	tracker := classifier.NewTracker()
	builder := usage.NewBuilder(classifier.New(tracker, cfg.Classifier.ExtraBlocklist, log), log)

	return &stack{
		cfg:        cfg,
		store:      store,
		tracker:    tracker,
		aggregator: usage.NewAggregator(resolver, client, builder, cfg.Billing.CutoffDay, log),
		converter:  currency.NewConverter(cfg.RatesURL, store, log),
		history:    hist,
	}, nil
}

func (s *stack) close() {
	_ = s.history.Close()
	_ = s.store.Close()
}

// refresh runs one aggregation cycle and records it in the history store.
func (s *stack) refresh(ctx context.Context) (models.UsageSnapshot, error) {
	snap, err := s.aggregator.Snapshot(ctx)
	if err != nil {
		return models.UsageSnapshot{}, err
	}

	display := snap.DisplayMonth()
	err = s.history.Record(ctx, history.Entry{
		CycleID:         snap.CycleID,
		FetchedAt:       snap.FetchedAt,
		Month:           int(display.Month),
		Year:            display.Year,
		PremiumUsed:     snap.PremiumQuota.CurrentCount,
		PremiumLimit:    snap.PremiumQuota.Limit,
		MonthSpendCents: display.TotalCents(),
		ItemCount:       len(display.Items),
	})
	if err != nil {
		log.WithError(err).Warn("history record failed")
	}

	return snap, nil
}
