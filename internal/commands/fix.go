package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studytrack/internal/models"
	"github.com/balkashynov/studytrack/internal/parser"
	"github.com/balkashynov/studytrack/internal/tracking"
)

func newFixCmd(opts *rootOptions) *cobra.Command {
	var (
		reason  string
		end     string
		subject uint
	)

	cmd := &cobra.Command{
		Use:   "fix <session-id>",
		Short: "Correct a finished session",
		Long: `Correct the end time or subject of a session within 24 hours of its start.

Reasons: interruption_correction, time_adjustment, subject_correction
The end time accepts HH:MM (on the session's start day), "YYYY-MM-DD HH:MM" or RFC3339.

Examples:
  studytrack fix 7 --reason time_adjustment --end 10:45
  studytrack fix 7 --reason subject_correction --subject 3`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID("session ID", args[0])
			if err != nil {
				return err
			}

			in := tracking.EditSessionInput{SessionID: id, Reason: strings.TrimSpace(reason)}

			if cmd.Flags().Changed("end") {
				detail, err := a.svc.SessionDetail(cmd.Context(), id)
				if err != nil {
					return err
				}
				newEnd, err := parser.ParseInstant(end, detail.Session.StartedAt.In(a.svc.Location()))
				if err != nil {
					return err
				}
				in.NewEnd = &newEnd
			}
			if cmd.Flags().Changed("subject") {
				in.NewSubjectID = &subject
			}

			sess, err := a.svc.EditCompletedSession(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🔧 Corrected session #%d (%s)\n", sess.ID, reason)
			fmt.Fprintf(out, "Subject: %s\n", tracking.SubjectLabel(sess.SubjectID))
			printSessionSpan(cmd, a, sess)
			return nil
		}),
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why the session is corrected (required)")
	cmd.Flags().StringVar(&end, "end", "", "New end time")
	cmd.Flags().UintVar(&subject, "subject", 0, "New subject id")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func printSessionSpan(cmd *cobra.Command, a *app, sess *models.Session) {
	if sess.EndedAt == nil || sess.TotalDurationMinutes == nil {
		return
	}
	loc := a.svc.Location()
	fmt.Fprintf(cmd.OutOrStdout(), "Time: %s - %s (%s)\n",
		sess.StartedAt.In(loc).Format("2006-01-02 15:04"),
		sess.EndedAt.In(loc).Format("15:04"),
		parser.FormatMinutes(*sess.TotalDurationMinutes))
}
