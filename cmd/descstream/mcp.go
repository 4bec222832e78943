package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/descstream/internal/logger"
	"github.com/dusk-indust/descstream/internal/mcptools"
	"github.com/dusk-indust/descstream/internal/status"
)

func newMCPCommand(global *globalFlags) *cobra.Command {
	var (
		runID    string
		agentURL string
		generate bool
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Expose a description as MCP tools on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol.
			rt, err := setup(global, true)
			if err != nil {
				return err
			}
			defer rt.close()
			if agentURL != "" {
				rt.cfg.AgentEndpoint = agentURL
			}
			if runID == "" {
				runID = uuid.NewString()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := wire(rt, runID)
			if err != nil {
				return err
			}
			defer w.close()

			if generate {
				if err := w.sim.Generate(ctx, w.desc.DefaultLocale(), ""); err != nil {
					return err
				}
			}

			formatter, err := status.NewFormatter(w.desc.DefaultLocale(), status.WithLogger(logger.WithComponent(rt.logger, "status")))
			if err != nil {
				return err
			}
			server := mcptools.NewContentMCPServer(mcptools.NewContentService(w.desc, formatter))
			rt.logger.Info("mcp server on stdio", "run", runID)
			return mcptools.RunStdio(ctx, server)
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "", "run identifier (default: random)")
	cmd.Flags().StringVar(&agentURL, "agent", "", "A2A agent endpoint used for translations")
	cmd.Flags().BoolVar(&generate, "generate", false, "generate the default locale with the simulator before serving")
	return cmd
}
