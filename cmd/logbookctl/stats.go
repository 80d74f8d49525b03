package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/calendar"
)

func newSummaryCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the all-time training summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newClient().Summary(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "total time\t%s\n", s.TotalTime)
			fmt.Fprintf(tw, "sessions\t%d (active %d, recovery %d)\n", s.TotalSessions, s.ActiveSessions, s.RecoverySessions)
			fmt.Fprintf(tw, "alternative\t%s\n", s.AlternativeTime)
			fmt.Fprintf(tw, "competition distance\t%.2f\n", s.CompetitionDistance)
			fmt.Fprintf(tw, "specific / general\t%d%% / %d%%\n", s.SpecificPercent, s.GeneralPercent)
			for _, level := range activities.AllIntensities {
				t := s.ByIntensity[level]
				fmt.Fprintf(tw, "%s\t%s\t%.2f\n", level, t.Time, t.Distance)
			}
			return tw.Flush()
		},
	}
}

func newWeeklyCmd(newClient clientFactory) *cobra.Command {
	var weeks int

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Show weekly totals, newest week first",
		RunE: func(cmd *cobra.Command, args []string) error {
			buckets, err := newClient().Weekly(cmd.Context(), weeks)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WEEK\tTIME\tDISTANCE\tSWIM\tBIKE\tRUN\tSESSIONS")
			for _, b := range buckets {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%d\n",
					b.Key,
					calendar.MinutesToTime(b.Totals.Duration),
					b.Totals.Distance,
					b.ByType.Swim.Distance,
					b.ByType.Bike.Distance,
					b.ByType.Run.Distance,
					len(b.Activities),
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&weeks, "weeks", "w", 4, "number of weeks")
	return cmd
}
