package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/descstream/internal/config"
	"github.com/dusk-indust/descstream/internal/content"
	"github.com/dusk-indust/descstream/internal/logger"
)

// version is set with -ldflags at build time.
var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	ConfigDir string
	LogLevel  string
	LogFormat string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "descstream",
		Short: "Streamed, multi-locale descriptions",
		Long: `descstream assembles a description from text chunks streamed block by block,
keeps one copy per locale and requests translations of the default locale on demand.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.ConfigDir, "config-dir", ".", "directory holding descstream.yml and .env")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "", "log format override (text, json)")

	root.AddCommand(
		newServeCommand(&flags),
		newAgentCommand(&flags),
		newMCPCommand(&flags),
		newDemoCommand(&flags),
		newVersionCommand(),
	)
	return root
}

// runtime is what every subcommand needs to get going.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
}

// close releases the log output.
func (rt *runtime) close() {
	_ = rt.closeLog()
}

// setup loads the configuration and builds the logger. forceStderr keeps
// stdout free for protocols that own it.
func setup(flags *globalFlags, forceStderr bool) (*runtime, error) {
	cfg, err := config.Load(flags.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	output := cfg.Log.Output
	if forceStderr && output == "stdout" {
		output = "stderr"
	}
	l, closeLog, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: output})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &runtime{cfg: cfg, logger: l, closeLog: closeLog}, nil
}

// newDescription builds a Description configured from rt.
func (rt *runtime) newDescription(runID string, translator content.Translator) (*content.Description, error) {
	langs, def, err := rt.cfg.Locales()
	if err != nil {
		return nil, err
	}
	return content.NewDescription(runID,
		content.WithLanguages(def, langs...),
		content.WithTranslator(translator),
		content.WithLogger(logger.WithComponent(rt.logger, "content")),
	)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
