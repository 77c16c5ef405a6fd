package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sm-moshi/cursor-stats/pkg/history"
	"github.com/sm-moshi/cursor-stats/pkg/usage"
)

func newHistoryCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past refresh snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			h, err := history.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer h.Close()

			entries, err := h.List(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No refresh history yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tPERIOD\tPREMIUM\tSPEND\tITEMS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%d-%02d\t%d/%d\t%s\t%d\n",
					e.FetchedAt.Format("2006-01-02 15:04"),
					e.Year, e.Month,
					e.PremiumUsed, e.PremiumLimit,
					usage.FormatDollars(e.MonthSpendCents),
					e.ItemCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max entries to show (0 = all)")
	return cmd
}
