package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studytrack/internal/parser"
	"github.com/balkashynov/studytrack/internal/tracking"
)

var dayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func newWeekCmd(opts *rootOptions) *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show a weekly timesheet per subject",
		Long: `Show study time of a calendar week grouped by subject and day.

Example output:
  Subject        Mon    Tue    Wed    Thu    Fri    Sat    Sun    Total
  Subject 3    01:30      -  00:45      -      -      -      -    02:15
  Subject 5        -  02:00      -      -      -      -      -    02:00
  Total        01:30  02:00  00:45  00:00  00:00  00:00  00:00    04:15`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			weekStart := getWeekStart(a.now()).AddDate(0, 0, -7*offset)

			items, err := a.svc.History(cmd.Context(), tracking.HistoryQuery{
				UserID: a.userID,
				From:   weekStart.Format(parser.DateLayout),
				To:     weekStart.AddDate(0, 0, 6).Format(parser.DateLayout),
			})
			if err != nil {
				return err
			}

			sheet := buildTimesheet(items, weekStart)
			out := cmd.OutOrStdout()
			if len(sheet.subjects) == 0 {
				fmt.Fprintln(out, "No study time tracked this week.")
				return nil
			}
			sheet.render(out)
			return nil
		}),
	}

	cmd.Flags().IntVar(&offset, "weeks-ago", 0, "Show an earlier week")
	return cmd
}

// timesheet holds minutes per subject per weekday, Monday first
type timesheet struct {
	weekStart time.Time
	subjects  []uint
	minutes   map[uint]*[7]int
}

// getWeekStart returns the start of the calendar week (Monday) for the given time
func getWeekStart(t time.Time) time.Time {
	weekday := t.Weekday()
	daysFromMonday := int(weekday - time.Monday)
	if weekday == time.Sunday {
		daysFromMonday = 6
	}

	weekStart := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location())
}

// dayIndex returns the weekday column of a YYYY-MM-DD date, or -1 outside the week.
// Days are compared as calendar dates since a DST change makes one day 23 or 25 hours.
func dayIndex(weekStart time.Time, studyDate string) int {
	for i := 0; i < 7; i++ {
		if weekStart.AddDate(0, 0, i).Format(parser.DateLayout) == studyDate {
			return i
		}
	}
	return -1
}

func buildTimesheet(items []tracking.HistoryItem, weekStart time.Time) timesheet {
	ts := timesheet{weekStart: weekStart, minutes: make(map[uint]*[7]int)}

	for _, item := range items {
		if item.DurationMinutes <= 0 {
			continue
		}
		idx := dayIndex(weekStart, item.StudyDate)
		if idx < 0 {
			continue
		}

		row, ok := ts.minutes[item.SubjectID]
		if !ok {
			row = &[7]int{}
			ts.minutes[item.SubjectID] = row
			ts.subjects = append(ts.subjects, item.SubjectID)
		}
		row[idx] += item.DurationMinutes
	}

	sort.Slice(ts.subjects, func(i, j int) bool { return ts.subjects[i] < ts.subjects[j] })
	return ts
}

func (ts timesheet) render(w io.Writer) {
	const nameWidth, colWidth = 12, 5

	printRule := func() {
		fmt.Fprint(w, strings.Repeat("-", nameWidth))
		for i := 0; i < 8; i++ {
			fmt.Fprint(w, "  "+strings.Repeat("-", colWidth))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%-*s", nameWidth, "Subject")
	for _, name := range dayNames {
		fmt.Fprintf(w, "  %*s", colWidth, name)
	}
	fmt.Fprintf(w, "  %*s\n", colWidth, "Total")
	printRule()

	var dayTotals [7]int
	grandTotal := 0
	for _, id := range ts.subjects {
		row := ts.minutes[id]
		fmt.Fprintf(w, "%-*s", nameWidth, tracking.SubjectLabel(id))

		rowTotal := 0
		for i, m := range row {
			if m > 0 {
				fmt.Fprintf(w, "  %*s", colWidth, parser.FormatMinutes(m))
			} else {
				fmt.Fprintf(w, "  %*s", colWidth, "-")
			}
			dayTotals[i] += m
			rowTotal += m
		}
		fmt.Fprintf(w, "  %*s\n", colWidth, parser.FormatMinutes(rowTotal))
		grandTotal += rowTotal
	}

	printRule()
	fmt.Fprintf(w, "%-*s", nameWidth, "Total")
	for _, m := range dayTotals {
		fmt.Fprintf(w, "  %*s", colWidth, parser.FormatMinutes(m))
	}
	fmt.Fprintf(w, "  %*s\n", colWidth, parser.FormatMinutes(grandTotal))

	fmt.Fprintf(w, "\nWeek of %s to %s\n",
		ts.weekStart.Format("Jan 2"),
		ts.weekStart.AddDate(0, 0, 6).Format("Jan 2, 2006"))
}
