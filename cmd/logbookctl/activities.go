package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/calendar"
	"github.com/2beens/trainlog/internal/client"
)

type clientFactory func() *client.Client

func newAddCmd(newClient clientFactory) *cobra.Command {
	var (
		draft    activities.Activity
		date     string
		typ      string
		level    string
		distance float64
		feeling  string
		rating   int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a new activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Date = date
			if draft.Date == "" {
				draft.Date = calendar.FormatDate(nowFunc())
			}
			draft.Type = activities.ActivityType(typ)
			draft.Intensity = activities.Intensity(level)
			draft.Distance = activities.Distance(distance)
			draft.Feeling = activities.Feeling(feeling)
			draft.Rating = activities.Rating(rating)

			saved, err := newClient().Add(cmd.Context(), draft)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), saved)
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&typ, "type", "t", "", "activity type: swim, bike, run, recovery, strength, alternative, competition, other (required)")
	cmd.Flags().StringVarP(&level, "intensity", "i", "", "intensity I1..I7 (required)")
	cmd.Flags().StringVar(&draft.Time, "time", "", "duration H:MM (required)")
	cmd.Flags().Float64Var(&distance, "distance", 0, "distance in km")
	cmd.Flags().StringVar(&draft.Details, "details", "", "training details")
	cmd.Flags().StringVar(&draft.Comment, "comment", "", "comment")
	cmd.Flags().StringVar(&feeling, "feeling", "", "good, average or bad")
	cmd.Flags().IntVar(&rating, "rating", 0, "rating 1..5")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("intensity")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func newListCmd(newClient clientFactory) *cobra.Command {
	var filter client.ListFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := newClient().List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tTYPE\tINTENSITY\tTIME\tDISTANCE")
			for _, a := range list.Activities {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\n", a.ID, a.Date, a.Type, a.Intensity, a.Time, float64(a.Distance))
			}
			fmt.Fprintf(tw, "total: %d\n", list.Total)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&filter.Type, "type", "t", "", "only this activity type")
	cmd.Flags().StringVar(&filter.From, "from", "", "from date YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&filter.To, "to", "", "to date YYYY-MM-DD (inclusive)")
	return cmd
}

func newGetCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			activity, err := newClient().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), activity)
		},
	}
}

func newUpdateCmd(newClient clientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of an activity; only the given flags are changed",
		Args:  cobra.ExactArgs(1),
	}
	flags := cmd.Flags()
	flags.String("date", "", "date YYYY-MM-DD")
	flags.String("type", "", "activity type")
	flags.String("intensity", "", "intensity I1..I7")
	flags.String("time", "", "duration H:MM")
	flags.Float64("distance", 0, "distance in km")
	flags.String("details", "", "training details")
	flags.String("comment", "", "comment")
	flags.String("feeling", "", "good, average or bad")
	flags.Int("rating", 0, "rating 1..5")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update, set at least one field flag")
		}

		updated, err := newClient().Update(cmd.Context(), args[0], patch)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), updated)
	}
	return cmd
}

func patchFromFlags(cmd *cobra.Command) (activities.ActivityPatch, error) {
	var patch activities.ActivityPatch
	flags := cmd.Flags()

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	patch.Date = str("date")
	patch.Time = str("time")
	patch.Details = str("details")
	patch.Comment = str("comment")
	if v := str("type"); v != nil {
		t := activities.ActivityType(*v)
		patch.Type = &t
	}
	if v := str("intensity"); v != nil {
		i := activities.Intensity(*v)
		patch.Intensity = &i
	}
	if v := str("feeling"); v != nil {
		f := activities.Feeling(*v)
		patch.Feeling = &f
	}
	if flags.Changed("distance") {
		v, err := flags.GetFloat64("distance")
		if err != nil {
			return patch, err
		}
		d := activities.Distance(v)
		patch.Distance = &d
	}
	if flags.Changed("rating") {
		v, err := flags.GetInt("rating")
		if err != nil {
			return patch, err
		}
		r := activities.Rating(v)
		patch.Rating = &r
	}
	return patch, nil
}

func newDeleteCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
