package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/balkashynov/studytrack/internal/models"
	"github.com/balkashynov/studytrack/internal/parser"
	"github.com/balkashynov/studytrack/internal/tracking"
	"github.com/balkashynov/studytrack/internal/tui"
)

// parseID parses a positive numeric id argument
func parseID(kind, arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s '%s'", kind, arg)
	}
	return uint(id), nil
}

func newStartCmd(opts *rootOptions) *cobra.Command {
	var noUI bool

	cmd := &cobra.Command{
		Use:   "start <subject-id>",
		Short: "Start a study session",
		Long: `Start a live study session. Opens the interactive timer by default, use --no-ui for a simple start.

Examples:
  studytrack start 5         # Start with the interactive timer
  studytrack start 5 --no-ui # Start without the timer`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			subjectID, err := parseID("subject ID", args[0])
			if err != nil {
				return err
			}

			sess, err := a.svc.StartSession(cmd.Context(), a.userID, subjectID)
			if err != nil {
				return err
			}

			if noUI {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "⏱️  Started session #%d for %s\n", sess.ID, tracking.SubjectLabel(sess.SubjectID))
				fmt.Fprintf(out, "Started at: %s\n", sess.StartedAt.Format("15:04:05"))
				return nil
			}
			return tui.RunTimerTUI(cmd.Context(), a.svc, sess.ID)
		}),
	}

	cmd.Flags().BoolVar(&noUI, "no-ui", false, "Start without the interactive timer")
	return cmd
}

// activeSession loads the user's live session with a friendly error
func activeSession(cmd *cobra.Command, a *app) (*models.Session, error) {
	sess, err := a.svc.ActiveSession(cmd.Context(), a.userID)
	if errors.Is(err, tracking.ErrSessionNotFound) {
		return nil, errors.New("no active study session")
	}
	return sess, err
}

func newPauseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the running session",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			sess, err := activeSession(cmd, a)
			if err != nil {
				return err
			}
			sess, err = a.svc.PauseSession(cmd.Context(), sess.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "⏸️  Paused session #%d\n", sess.ID)
			return nil
		}),
	}
}

func newResumeCmd(opts *rootOptions) *cobra.Command {
	var noUI bool

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused session",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			sess, err := activeSession(cmd, a)
			if err != nil {
				return err
			}
			sess, err = a.svc.ResumeSession(cmd.Context(), sess.ID)
			if errors.Is(err, tracking.ErrPauseTimeout) {
				fmt.Fprintf(cmd.OutOrStdout(), "⚠️  Session #%d was interrupted: the pause exceeded %d minutes\n", sess.ID, a.svc.Limits().MaxPauseMinutes)
				return err
			}
			if err != nil {
				return err
			}

			if noUI {
				fmt.Fprintf(cmd.OutOrStdout(), "▶️  Resumed session #%d\n", sess.ID)
				return nil
			}
			return tui.RunTimerTUI(cmd.Context(), a.svc, sess.ID)
		}),
	}

	cmd.Flags().BoolVar(&noUI, "no-ui", false, "Resume without the interactive timer")
	return cmd
}

func newFinishCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "finish",
		Short: "Finish and save the running session",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			sess, err := activeSession(cmd, a)
			if err != nil {
				return err
			}
			sess, err = a.svc.FinishSession(cmd.Context(), sess.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "⏹️  Finished session #%d for %s\n", sess.ID, tracking.SubjectLabel(sess.SubjectID))
			fmt.Fprintf(out, "📊 Study time: %s\n", parser.FormatMinutes(*sess.TotalDurationMinutes))
			return nil
		}),
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running session",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			out := cmd.OutOrStdout()

			sess, err := a.svc.ActiveSession(cmd.Context(), a.userID)
			if errors.Is(err, tracking.ErrSessionNotFound) {
				fmt.Fprintln(out, "No active study session")
				return nil
			}
			if err != nil {
				return err
			}

			detail, err := a.svc.SessionDetail(cmd.Context(), sess.ID)
			if err != nil {
				return err
			}

			effective := tracking.EffectiveElapsed(detail.Session, detail.Pauses, a.now())
			icon := "⏱️ "
			if sess.Status == models.StatusPaused {
				icon = "⏸️ "
			}
			fmt.Fprintf(out, "%s Session #%d (%s): %s\n", icon, sess.ID, sess.Status, tracking.SubjectLabel(sess.SubjectID))
			fmt.Fprintf(out, "Started: %s (%s)\n", sess.StartedAt.In(a.svc.Location()).Format("15:04:05"), humanize.Time(sess.StartedAt))
			fmt.Fprintf(out, "Study time: %s\n", parser.FormatElapsed(effective))
			fmt.Fprintf(out, "Pauses: %d (%s)\n", len(detail.Pauses), parser.FormatMinutes(detail.PauseMinutes))
			return nil
		}),
	}
}
