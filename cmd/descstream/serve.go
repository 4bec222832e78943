package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/descstream/internal/a2a"
	"github.com/dusk-indust/descstream/internal/content"
	"github.com/dusk-indust/descstream/internal/generation"
	"github.com/dusk-indust/descstream/internal/httpapi"
	"github.com/dusk-indust/descstream/internal/logger"
	"github.com/dusk-indust/descstream/internal/mcptools"
	"github.com/dusk-indust/descstream/internal/status"
)

type serveFlags struct {
	Addr     string
	MCPAddr  string
	RunID    string
	Agent    string
	Generate bool
	Prefetch bool
}

func newServeCommand(global *globalFlags) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a description over HTTP",
		Long: `Serve one description over HTTP. Chunks can be posted to /events, or generated
by the built-in simulator with --generate. Translations are produced by the simulator,
or by a remote A2A agent when --agent (or agentEndpoint in descstream.yml) is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(global, false)
			if err != nil {
				return err
			}
			defer rt.close()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rt, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", "", "listen address (default: addr from config)")
	cmd.Flags().StringVar(&flags.MCPAddr, "mcp-addr", "", "also serve the MCP tools over streamable HTTP on this address")
	cmd.Flags().StringVar(&flags.RunID, "run-id", "", "run identifier (default: random)")
	cmd.Flags().StringVar(&flags.Agent, "agent", "", "A2A agent endpoint used for translations")
	cmd.Flags().BoolVar(&flags.Generate, "generate", false, "generate the default locale with the simulator on startup")
	cmd.Flags().BoolVar(&flags.Prefetch, "prefetch", false, "translate every other locale once the default one is generated")
	return cmd
}

func runServe(ctx context.Context, rt *runtime, flags serveFlags) error {
	if flags.Addr != "" {
		rt.cfg.Addr = flags.Addr
	}
	if flags.Agent != "" {
		rt.cfg.AgentEndpoint = flags.Agent
	}
	runID := flags.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	w, err := wire(rt, runID)
	if err != nil {
		return err
	}
	defer w.close()
	d := w.desc

	formatter, err := status.NewFormatter(d.DefaultLocale(), status.WithLogger(logger.WithComponent(rt.logger, "status")))
	if err != nil {
		return err
	}

	rt.logger.Info("starting",
		"version", version,
		"run", runID,
		"addr", rt.cfg.Addr,
		"agent", rt.cfg.AgentEndpoint,
		"languages", d.Languages())

	g, gctx := errgroup.WithContext(ctx)

	api := httpapi.New(d, httpapi.WithFormatter(formatter), httpapi.WithLogger(logger.WithComponent(rt.logger, "httpapi")))
	g.Go(func() error { return api.ListenAndServe(gctx, rt.cfg.Addr) })

	if flags.MCPAddr != "" {
		server := mcptools.NewContentMCPServer(mcptools.NewContentService(d, formatter))
		g.Go(func() error { return mcptools.RunHTTP(gctx, server, flags.MCPAddr) })
	}

	if flags.Generate {
		g.Go(func() error {
			if err := w.sim.Generate(gctx, d.DefaultLocale(), ""); err != nil {
				return fmt.Errorf("initial generation: %w", err)
			}
			if !flags.Prefetch {
				return nil
			}
			var targets []content.Locale
			for _, l := range d.Languages() {
				if l != d.DefaultLocale() {
					targets = append(targets, l)
				}
			}
			results, err := generation.NewDescriptionFanout(d).Run(gctx, runID, targets)
			for _, r := range results {
				if r.Err != nil {
					rt.logger.Warn("prefetch failed", "locale", r.Locale, "error", r.Err)
				}
			}
			if err != nil {
				return err
			}
			// Translating moves the current locale; readers start on the default one.
			_, err = d.ChangeLocale(gctx, d.DefaultLocale(), "")
			return err
		})
	}

	return g.Wait()
}

// wiring holds a Description together with its generators.
type wiring struct {
	desc       *content.Description
	sim        *generation.Simulator
	remote     *generation.A2ATranslator
	translator content.Translator
	closers    []func() error
}

// wire builds the Description for runID. The simulator always produces the
// default locale; translations go to the configured agent when there is one,
// and to the simulator when that agent cannot be reached.
func wire(rt *runtime, runID string) (*wiring, error) {
	w := &wiring{}
	w.sim = generation.NewSimulator(
		generation.WithDelay(rt.cfg.ChunkDelayDuration()),
		generation.WithSimulatorLogger(logger.WithComponent(rt.logger, "simulator")),
	)
	w.closers = append(w.closers, w.sim.Close)
	w.translator = w.sim

	if rt.cfg.AgentEndpoint != "" {
		client := a2a.NewHTTPClient(
			a2a.WithTimeout(rt.cfg.RequestTimeoutDuration()),
			a2a.WithClientLogger(logger.WithComponent(rt.logger, "a2a")),
		)
		w.remote = generation.NewA2ATranslator(client, rt.cfg.AgentEndpoint,
			generation.WithTranslatorLogger(logger.WithComponent(rt.logger, "translator")))
		w.closers = append(w.closers, w.remote.Close)
		w.translator = generation.NewFallbackTranslator(w.remote, w.sim, logger.WithComponent(rt.logger, "fallback"))
	}

	d, err := rt.newDescription(runID, w.translator)
	if err != nil {
		w.close()
		return nil, err
	}
	w.desc = d
	w.attach(d)
	return w, nil
}

// attach routes the output of every generator into sink.
func (w *wiring) attach(sink generation.Sink) {
	w.sim.Attach(sink)
	if w.remote != nil {
		w.remote.Attach(sink)
	}
}

func (w *wiring) close() {
	for _, c := range w.closers {
		_ = c()
	}
	if w.desc != nil {
		w.desc.Feed().Close()
	}
}

// wait blocks until every background generation has finished.
func (w *wiring) wait() {
	w.sim.Wait()
	if w.remote != nil {
		w.remote.Wait()
	}
}
