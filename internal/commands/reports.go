package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studytrack/internal/parser"
	"github.com/balkashynov/studytrack/internal/tracking"
)

// dateFlag resolves an optional date flag, empty stays empty
func dateFlag(a *app, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return parser.ParseStudyDate(value, a.now())
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		subject  uint
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List sessions and manual records",
		Long: `List study sessions and manual records, newest first.

Examples:
  studytrack history
  studytrack history --subject 5 --from "last monday"`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			q := tracking.HistoryQuery{UserID: a.userID}
			if cmd.Flags().Changed("subject") {
				q.SubjectID = &subject
			}

			var err error
			if q.From, err = dateFlag(a, from); err != nil {
				return err
			}
			if q.To, err = dateFlag(a, to); err != nil {
				return err
			}

			items, err := a.svc.History(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No study time recorded.")
				return nil
			}

			fmt.Fprintf(out, "%-10s  %-8s  %-12s  %-6s  %-12s  %s\n", "Date", "ID", "Subject", "Time", "Status", "Pauses")
			fmt.Fprintln(out, strings.Repeat("-", 64))
			for _, item := range items {
				id := fmt.Sprintf("S%d", item.ID)
				if item.Kind == tracking.KindManual {
					id = fmt.Sprintf("M%d", item.ID)
				}
				pauses := "-"
				if item.PauseCount != nil {
					pauses = fmt.Sprintf("%d (%s)", *item.PauseCount, item.PauseFormatted)
				}
				fmt.Fprintf(out, "%-10s  %-8s  %-12s  %-6s  %-12s  %s\n",
					item.StudyDate, id, item.Subject, item.DurationFormatted, item.Status, pauses)
			}
			return nil
		}),
	}

	cmd.Flags().UintVar(&subject, "subject", 0, "Only this subject")
	cmd.Flags().StringVar(&from, "from", "", "Earliest study date")
	cmd.Flags().StringVar(&to, "to", "", "Latest study date")
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var (
		subject  uint
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show study statistics",
		Long: `Summarize study time over a date range. Defaults to the last 7 days.

Examples:
  studytrack stats
  studytrack stats --from 2025-01-01 --to 2025-01-31 --subject 5`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			now := a.now()
			q := tracking.StatisticsQuery{
				UserID: a.userID,
				From:   now.AddDate(0, 0, -6).Format(parser.DateLayout),
				To:     now.Format(parser.DateLayout),
			}
			if cmd.Flags().Changed("subject") {
				q.SubjectID = &subject
			}
			if from != "" {
				d, err := parser.ParseStudyDate(from, now)
				if err != nil {
					return err
				}
				q.From = d
			}
			if to != "" {
				d, err := parser.ParseStudyDate(to, now)
				if err != nil {
					return err
				}
				q.To = d
			}

			stats, err := a.svc.Statistics(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "📊 %s to %s (%d days)\n\n", stats.From, stats.To, stats.DaysInRange)
			fmt.Fprintf(out, "Total:           %s\n", stats.TotalFormatted)
			fmt.Fprintf(out, "Entries:         %d\n", stats.EntryCount)
			fmt.Fprintf(out, "Days studied:    %d\n", stats.DaysWithStudy)
			fmt.Fprintf(out, "Average per day: %s\n", stats.AveragePerDayFormatted)
			fmt.Fprintf(out, "Average entry:   %s\n", stats.AveragePerEntryFormatted)
			fmt.Fprintf(out, "Most studied:    %s\n", stats.MostStudiedSubject)
			fmt.Fprintf(out, "Consistency:     %.2f%%\n", stats.ConsistencyPercent)
			return nil
		}),
	}

	cmd.Flags().UintVar(&subject, "subject", 0, "Only this subject")
	cmd.Flags().StringVar(&from, "from", "", "First day (default 6 days ago)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (default today)")
	return cmd
}
