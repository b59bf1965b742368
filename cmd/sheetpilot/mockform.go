package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sheetpilot/internal/mockform"
)

func newMockformCmd(root *rootOptions) *cobra.Command {
	cfg := mockform.DefaultServerConfig()
	cmd := &cobra.Command{
		Use:   "mockform",
		Short: "Run a local stand-in for the timesheet form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := root.load()
			if err != nil {
				return err
			}
			srv := mockform.NewServer(cfg, logger)
			fmt.Printf("%s mock form at %s (form id %s)\n", green("Serving"), bold(srv.Addr()), cfg.FormID)
			fmt.Println(gray("Set MOCK_MODE=true to route the automation here. Ctrl-C to stop."))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "port to listen on")
	cmd.Flags().StringVar(&cfg.FormID, "form-id", cfg.FormID, "form id to serve")
	return cmd
}
