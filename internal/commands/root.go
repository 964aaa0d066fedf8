package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studytrack/internal/config"
	"github.com/balkashynov/studytrack/internal/logger"
	"github.com/balkashynov/studytrack/internal/metrics"
	"github.com/balkashynov/studytrack/internal/store"
	"github.com/balkashynov/studytrack/internal/tracking"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app holds everything a command needs once configuration is loaded
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	store   store.Store
	metrics *metrics.Recorder
	svc     *tracking.Service
	userID  uint
}

// now is the current time in the tracking time zone
func (a *app) now() time.Time {
	return time.Now().In(a.svc.Location())
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	a.log.Sync()
}

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configPath string
	userID     uint
	verbose    bool
}

// newApp loads configuration and opens the store. Log output below warn is
// only shown with --verbose, except for the server which logs at the
// configured level.
func newApp(opts *rootOptions, server bool) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if !server && !opts.verbose {
		level = "warn"
	}
	log, err := logger.New(cfg.Log.Mode, level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Tracking.Location()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	rec := metrics.New()
	svc := tracking.NewService(st,
		tracking.WithLimits(cfg.Tracking.Limits()),
		tracking.WithLocation(loc),
		tracking.WithLogger(log),
		tracking.WithMetrics(rec),
	)

	userID := cfg.CLI.UserID
	if opts.userID != 0 {
		userID = opts.userID
	}

	return &app{cfg: cfg, log: log, store: st, metrics: rec, svc: svc, userID: userID}, nil
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	if cfg.Backend == config.BackendMemory {
		return store.NewMemory(), nil
	}

	path := cfg.Path
	if path == "" {
		var err error
		if path, err = store.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return store.OpenSQLite(path)
}

// withApp wraps a command function to build the app first
func withApp(opts *rootOptions, fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(opts, false)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "studytrack",
		Short: "A study time tracker",
		Long: `studytrack records study time: live sessions with pause and resume,
retroactive manual entries, and history and statistics reports.
It runs from the terminal or as an HTTP API for a web frontend.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.studytrack/config.yaml)")
	rootCmd.PersistentFlags().UintVarP(&opts.userID, "user", "u", 0, "User id (default cli.user_id from config)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show info and debug logs")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newStartCmd(opts),
		newPauseCmd(opts),
		newResumeCmd(opts),
		newFinishCmd(opts),
		newStatusCmd(opts),
		newLogCmd(opts),
		newFixCmd(opts),
		newHistoryCmd(opts),
		newStatsCmd(opts),
		newWeekCmd(opts),
		newVersionCmd(),
	)
	rootCmd.SetHelpCommand(newHelpCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "studytrack %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
