package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help",
		Short: "Show comprehensive help for studytrack",
		Long:  `Display detailed help for all studytrack commands and flags.`,
		Run: func(cmd *cobra.Command, args []string) {
			showCustomHelp(cmd.OutOrStdout())
		},
	}
}

func showCustomHelp(w io.Writer) {
	fmt.Fprint(w, `
███████╗████████╗██╗   ██╗██████╗ ██╗   ██╗
██╔════╝╚══██╔══╝██║   ██║██╔══██╗╚██╗ ██╔╝
███████╗   ██║   ██║   ██║██║  ██║ ╚████╔╝
╚════██║   ██║   ██║   ██║██║  ██║  ╚██╔╝
███████║   ██║   ╚██████╔╝██████╔╝   ██║
╚══════╝   ╚═╝    ╚═════╝ ╚═════╝    ╚═╝

studytrack - Study Time Tracker

COMMANDS:

  start <subject-id>      Start a live study session
    --no-ui               Start without interactive timer

    Timer keys:
      p             Pause
      r             Resume
      f             Finish and save
      esc/q         Leave the timer, session keeps running

  pause                   Pause the running session
  resume                  Resume the paused session
    --no-ui               Resume without interactive timer
  finish                  Finish and save the running session
  status                  Show the running session

  log <subject-id> <date> <start> <end>
                          Log study time after the fact
    --note                What was studied

    Dates: YYYY-MM-DD, today, yesterday, "last monday", "3 days ago"
    Times: HH:MM

    Example:
      studytrack log 5 yesterday 18:00 19:30 --note "chapter 4"

  log edit <id> <subject-id> <date> <start> <end>
                          Replace a manual record (within 7 days)
  log rm <id>             Delete a manual record
  log show <id>           Show a manual record

  fix <session-id>        Correct a finished session (within 24 hours)
    --reason              interruption_correction|time_adjustment|subject_correction
    --end                 New end time (HH:MM, "YYYY-MM-DD HH:MM", RFC3339)
    --subject             New subject id

  history                 List sessions and manual records
    --subject             Filter by subject id
    --from, --to          Date bounds

  stats                   Statistics for a date range (default last 7 days)
    --subject             Filter by subject id
    --from, --to          Date bounds

  week                    Weekly timesheet per subject
    --weeks-ago           Show an earlier week

  serve                   Run the HTTP API
    --host, --port        Listen address

  version                 Print version information
  help                    Show this help

GLOBAL FLAGS:
  --config                Config file (default ~/.studytrack/config.yaml)
  -u, --user              User id (default cli.user_id)
  -v, --verbose           Show info and debug logs

`)
}
