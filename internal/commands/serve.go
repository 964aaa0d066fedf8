package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studytrack/internal/httpapi"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the study tracking API under /api/v1 with /healthcheck and /metrics.

Examples:
  studytrack serve
  studytrack serve --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router := httpapi.NewRouter(httpapi.RouterConfig{
				Service:     a.svc,
				Logger:      a.log,
				Metrics:     a.metrics,
				CORSOrigins: a.cfg.Server.CORSOrigins,
			})

			srv := httpapi.NewServer(a.cfg.Server.Addr(), router, a.cfg.Server.ShutdownTimeout, a.log)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (default server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default server.port)")
	return cmd
}
