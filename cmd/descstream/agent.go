package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/descstream/internal/agent"
	"github.com/dusk-indust/descstream/internal/logger"
)

func newAgentCommand(global *globalFlags) *cobra.Command {
	var (
		addr     string
		url      string
		maxTasks int
	)

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Run the translation agent over A2A",
		Long: `Run the A2A translation agent. It answers message/stream calls carrying a
translation request by streaming the blocks of the target locale word by word.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(global, false)
			if err != nil {
				return err
			}
			defer rt.close()
			if addr == "" {
				addr = rt.cfg.AgentAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := agent.NewTranslationAgent(url,
				agent.WithDelay(rt.cfg.ChunkDelayDuration()),
				agent.WithAgentLogger(logger.WithComponent(rt.logger, "agent")),
				agent.WithMaxTasks(maxTasks),
			)
			return a.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: agentAddr from config)")
	cmd.Flags().StringVar(&url, "url", "", "public URL advertised on the agent card")
	cmd.Flags().IntVar(&maxTasks, "max-tasks", agent.DefaultTaskLimit, "number of tasks remembered for tasks/get")
	return cmd
}
