package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studytrack/internal/models"
	"github.com/balkashynov/studytrack/internal/parser"
	"github.com/balkashynov/studytrack/internal/tracking"
)

func newLogCmd(opts *rootOptions) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "log <subject-id> <date> <start> <end>",
		Short: "Log study time after the fact",
		Long: `Log a manual study record for a single day.

The date accepts YYYY-MM-DD, today, yesterday or natural language like "last monday".
Start and end are HH:MM on that day.

Examples:
  studytrack log 5 today 08:00 09:30
  studytrack log 5 2025-01-15 14:00 15:00 --note "chapter 3"
  studytrack log 5 "last friday" 19:00 20:15`,
		Args: cobra.ExactArgs(4),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			in, err := manualInput(cmd, a, args, note)
			if err != nil {
				return err
			}

			rec, err := a.svc.CreateManualRecord(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged record #%d\n", rec.ID)
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		}),
	}

	cmd.Flags().StringVar(&note, "note", "", "Description of what was studied")

	cmd.AddCommand(newLogEditCmd(opts), newLogRemoveCmd(opts), newLogShowCmd(opts))
	return cmd
}

// manualInput builds the record input from subject, date, start and end arguments
func manualInput(cmd *cobra.Command, a *app, args []string, note string) (tracking.ManualRecordInput, error) {
	subjectID, err := parseID("subject ID", args[0])
	if err != nil {
		return tracking.ManualRecordInput{}, err
	}

	studyDate, err := parser.ParseStudyDate(args[1], a.now())
	if err != nil {
		return tracking.ManualRecordInput{}, err
	}

	in := tracking.ManualRecordInput{
		UserID:    a.userID,
		SubjectID: subjectID,
		StudyDate: studyDate,
		StartTime: args[2],
		EndTime:   args[3],
	}
	if cmd.Flags().Changed("note") {
		in.Description = &note
	}
	return in, nil
}

func newLogEditCmd(opts *rootOptions) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "edit <record-id> <subject-id> <date> <start> <end>",
		Short: "Replace a manual record",
		Long: `Replace every field of a manual record. Records can be edited for 7 days after creation.

Example:
  studytrack log edit 12 5 yesterday 18:00 19:45 --note "revised"`,
		Args: cobra.ExactArgs(5),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID("record ID", args[0])
			if err != nil {
				return err
			}

			in, err := manualInput(cmd, a, args[1:], note)
			if err != nil {
				return err
			}

			rec, err := a.svc.UpdateManualRecord(cmd.Context(), id, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✏️  Updated record #%d\n", rec.ID)
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		}),
	}

	cmd.Flags().StringVar(&note, "note", "", "Description of what was studied")
	return cmd
}

func newLogRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <record-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a manual record",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID("record ID", args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteManualRecord(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted record #%d\n", id)
			return nil
		}),
	}
}

func newLogShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <record-id>",
		Short: "Show a manual record",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID("record ID", args[0])
			if err != nil {
				return err
			}
			rec, err := a.svc.ManualRecord(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Record #%d\n", rec.ID)
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		}),
	}
}

func printRecord(w io.Writer, rec *models.ManualRecord) {
	fmt.Fprintf(w, "Subject: %s\n", tracking.SubjectLabel(rec.SubjectID))
	fmt.Fprintf(w, "Date: %s %s-%s (%s)\n", rec.StudyDate, rec.StartTime, rec.EndTime, parser.FormatMinutes(rec.DurationMinutes))
	if rec.Description != nil && *rec.Description != "" {
		fmt.Fprintf(w, "Note: %s\n", *rec.Description)
	}
}
