package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/sm-moshi/cursor-stats/pkg/alert"
)

func newWatchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the snapshot periodically until interrupted",
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

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var evaluator *alert.Evaluator
			if cfg.Alerts.Enabled {
				evaluator = alert.New(cfg.Alerts.Thresholds, cfg.Alerts.SpendLimitDollars)
			}

			// The limiter paces refreshes so an interrupt-and-restart or
			// manual poke cannot hammer the dashboard.
			limiter := rate.NewLimiter(rate.Every(cfg.Watch.Interval), cfg.Watch.Burst)

			for {
				if err := limiter.Wait(ctx); err != nil {
					return nil // context canceled, clean exit
				}

				snap, err := s.refresh(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					log.WithError(err).Error("refresh failed")
					continue
				}

				fmt.Print(formatSnapshot(ctx, snap, s, cfg))
				fmt.Println()

				if evaluator != nil {
					for _, a := range evaluator.Check(snap) {
						log.WithField("kind", string(a.Kind)).Warn(a.Message)
					}
				}
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}
