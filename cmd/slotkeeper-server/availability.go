package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"slotkeeper/backend/internal/config"
	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/service/scheduling"
)

// availabilityCmd prints one weekly report, or the next week with an open
// slot, as JSON.
func availabilityCmd(cfg *config.Config) *cobra.Command {
	var (
		professionalID string
		weekStart      string
		interval       int
		next           bool
		maxWeeks       int
	)

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Print the weekly availability of a professional",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start, err := scheduling.ParseDate("week-start", weekStart)
			if err != nil {
				return err
			}

			b, err := openBackend(ctx, *cfg, slog.Default())
			if err != nil {
				return err
			}
			defer b.close(slog.Default())
			svc := b.service(*cfg, nil, slog.Default())

			var out any
			if next {
				report, found, err := svc.NextAvailableWeek(ctx, professionalID, start, maxWeeks)
				if err != nil {
					return err
				}
				if !found {
					out = map[string]bool{"found": false}
				} else {
					out = report
				}
			} else {
				report, err := svc.WeeklyAvailability(ctx, professionalID, start, interval)
				if err != nil {
					return err
				}
				out = report
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&professionalID, "professional", "", "professional id")
	cmd.Flags().StringVar(&weekStart, "week-start", "", "first day of the week (YYYY-MM-DD), defaults to today")
	cmd.Flags().IntVar(&interval, "interval", 0, "slot interval in minutes")
	cmd.Flags().BoolVar(&next, "next", false, "search forward for the first week with an open slot")
	cmd.Flags().IntVar(&maxWeeks, "max-weeks", 0, "weeks examined by --next")
	_ = cmd.MarkFlagRequired("professional")
	return cmd
}

func scheduleCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage professional schedules",
	}

	var professionalID, file string
	put := &cobra.Command{
		Use:   "put",
		Short: "Replace a professional's weekly schedule from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var raw map[string]*domain.RawWindow
			if err := json.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			b, err := openBackend(ctx, *cfg, slog.Default())
			if err != nil {
				return err
			}
			defer b.close(slog.Default())

			spec, err := b.service(*cfg, nil, slog.Default()).SetSchedule(ctx, professionalID, raw)
			if err != nil {
				return err
			}
			slog.Info("schedule stored", slog.String("professional_id", professionalID))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(spec.Raw())
		},
	}
	put.Flags().StringVar(&professionalID, "professional", "", "professional id")
	put.Flags().StringVar(&file, "file", "", "path to a JSON object keyed by weekday")
	_ = put.MarkFlagRequired("professional")
	_ = put.MarkFlagRequired("file")

	cmd.AddCommand(put)
	return cmd
}
