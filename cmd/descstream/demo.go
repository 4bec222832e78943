package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/descstream/internal/content"
	"github.com/dusk-indust/descstream/internal/export"
	"github.com/dusk-indust/descstream/internal/status"
)

type demoFlags struct {
	Agent   string
	Delay   time.Duration
	Locales []string
}

func newDemoCommand(global *globalFlags) *cobra.Command {
	var flags demoFlags

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate a description, translate it and print every locale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(global, true)
			if err != nil {
				return err
			}
			defer rt.close()
			if flags.Agent != "" {
				rt.cfg.AgentEndpoint = flags.Agent
			}
			if cmd.Flags().Changed("delay") {
				rt.cfg.ChunkDelay = flags.Delay.String()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runDemo(ctx, rt, flags.Locales, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.Agent, "agent", "", "A2A agent endpoint used for translations")
	cmd.Flags().DurationVar(&flags.Delay, "delay", 0, "pause between two words (default: chunkDelay from config)")
	cmd.Flags().StringSliceVar(&flags.Locales, "locales", nil, "locales to translate to (default: every non-default locale)")
	return cmd
}

// echoSink prints the streamed chunks before applying them.
type echoSink struct {
	*content.Description

	mu  sync.Mutex
	out io.Writer
}

func (e *echoSink) Apply(ev content.Event) error {
	e.mu.Lock()
	switch {
	case ev.Start != nil:
		fmt.Fprintf(e.out, "\n[%s] %s: ", ev.Start.Locale, ev.Start.Name)
	case ev.Chunk != nil:
		fmt.Fprint(e.out, ev.Chunk.Chunk)
	}
	e.mu.Unlock()
	return e.Description.Apply(ev)
}

func runDemo(ctx context.Context, rt *runtime, locales []string, out io.Writer) error {
	w, err := wire(rt, "demo")
	if err != nil {
		return err
	}
	defer w.close()
	d := w.desc
	w.attach(&echoSink{Description: d, out: out})

	var targets []content.Locale
	if len(locales) == 0 {
		for _, l := range d.Languages() {
			if l != d.DefaultLocale() {
				targets = append(targets, l)
			}
		}
	}
	for _, raw := range locales {
		l, err := content.ParseLocale(raw, d.Languages())
		if err != nil {
			return err
		}
		targets = append(targets, l)
	}

	if err := w.sim.Generate(ctx, d.DefaultLocale(), ""); err != nil {
		return err
	}
	for _, l := range targets {
		if _, err := d.ChangeLocale(ctx, l, ""); err != nil {
			return err
		}
		w.wait()
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	fmt.Fprintln(out)

	for _, lc := range d.LocaleContents() {
		fmt.Fprintf(out, "\n== %s ==\n\n%s", lc.Locale(), export.Markdown(lc))
	}

	formatter, err := status.NewFormatter(d.DefaultLocale())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s", formatter.Format(status.Summarize(d)))
	return nil
}
