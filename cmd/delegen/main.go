package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toyz/delegen/internal/cli"
	"github.com/toyz/delegen/internal/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "delegen",
		Short: "Generate interfaces and forwarding delegates for marked Go types",
		Long: `delegen generates an I<Name> interface and a <Name>Impl delegate for every
type whose doc comment carries a //delegen::implementation marker.

The interface lists the type's exported methods; the delegate wraps a value
of the type and forwards every call to it. Output is written next to the
source as <snake_name>_delegate.go.

Examples:
  delegen generate                          # Generate for ./...
  delegen generate ./internal/...           # Generate for a subtree
  delegen generate --exclude Close --watch  # Keep regenerating on edits
  delegen clean ./...                       # Remove generated files`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Config file (default .delegen.yaml in --dir)")
	root.PersistentFlags().String("dir", "", "Directory patterns are resolved from (default .)")
	root.PersistentFlags().String("log-format", cli.LogFormatText, "Diagnostics format: text or json")
	root.PersistentFlags().BoolP("verbose", "v", false, "Show member details and timings")
	root.PersistentFlags().BoolP("quiet", "q", false, "Only show errors")

	root.AddCommand(newGenerateCmd(), newCleanCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [patterns...]",
		Short: "Generate interfaces and delegates",
		RunE:  runGenerate,
	}

	flags := cmd.Flags()
	flags.StringSlice("exclude", nil, "Member names to leave out, added to the default list")
	flags.Bool("unexported", false, "Forward unexported methods declared in the same package")
	flags.Int("max-rounds", 10, "Maximum number of resolution rounds")
	flags.String("file-suffix", "_delegate.go", "Suffix of generated file names")
	flags.String("file-naming", "snake", "Output file naming: snake or verbatim")
	flags.String("report", "", "Write a YAML run report to this path")
	flags.Bool("dump", false, "Print discovered declaration models")
	flags.StringSlice("tags", nil, "Build tags used when loading packages")
	flags.Bool("watch", false, "Regenerate when source files change")
	return cmd
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [patterns...]",
		Short: "Delete files generated by delegen",
		RunE:  runClean,
	}
}

func loadConfig(cmd *cobra.Command, args []string) (*cli.Config, utils.Logger, error) {
	configFile, _ := cmd.Flags().GetString("config")
	dir, _ := cmd.Flags().GetString("dir")

	v, err := cli.NewViper(configFile, dir)
	if err != nil {
		return nil, nil, err
	}
	if err := cli.BindFlags(v, cmd.Flags()); err != nil {
		return nil, nil, err
	}

	config, err := cli.LoadConfig(v)
	if err != nil {
		return nil, nil, err
	}
	if len(args) > 0 {
		config.Patterns = args
	}

	return config, config.NewLogger(cmd.OutOrStdout(), cmd.ErrOrStderr()), nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	config, logger, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	diagnostics, _ := logger.(*utils.DiagnosticSystem)
	if diagnostics != nil {
		diagnostics.Header("generating interfaces and delegates")
		diagnostics.PhaseHeader("Configuration")
		diagnostics.PhaseProgress(fmt.Sprintf("Patterns: %s", strings.Join(config.Patterns, " ")))
		diagnostics.PhaseProgress(fmt.Sprintf("Max rounds: %d", config.MaxRounds))
		if len(config.Exclude) > 0 {
			diagnostics.PhaseProgress(fmt.Sprintf("Also excluding: %s", strings.Join(config.Exclude, ", ")))
		}
	}

	generator, err := cli.NewGenerator(config, logger)
	if err != nil {
		return err
	}
	generator.SetDumpOutput(cmd.OutOrStdout())

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return watchAndGenerate(cmd.Context(), generator, config, logger)
	}

	report, err := generator.Run(config.Patterns)
	printReport(logger, config, report)
	if err != nil {
		return failureError(report, err)
	}
	return nil
}

func watchAndGenerate(parent context.Context, generator *cli.Generator, config *cli.Config, logger utils.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := cli.NewWatcher(generator, logger, cli.DefaultDebounce)
	if err != nil {
		return err
	}

	logger.Info("Watching for changes, press Ctrl+C to stop")
	return watcher.Watch(ctx, config.Patterns, func(report *cli.Report, err error) {
		printReport(logger, config, report)
		if err != nil {
			logger.Warn("%v", failureError(report, err))
		}
	})
}

func printReport(logger utils.Logger, config *cli.Config, report *cli.Report) {
	if report == nil {
		return
	}

	diagnostics, ok := logger.(*utils.DiagnosticSystem)
	if !ok {
		logger.Info("Run %s finished: %d generated, %d unchanged, %d failed, %d stuck in %d round(s)",
			report.RunID, len(report.Generated), len(report.Unchanged), len(report.Failed), len(report.Stuck), report.Rounds)
		return
	}

	if config.Verbose && len(report.Generated) > 0 {
		diagnostics.PhaseHeader("Generated files")
		for _, file := range report.Generated {
			diagnostics.PhaseItem(file.Output)
		}
	}
	for _, path := range report.Unchanged {
		diagnostics.Verbose("Unchanged %s", path)
	}
	printFailures(diagnostics, "Failed declarations", report.Failed)
	printFailures(diagnostics, "Stuck declarations", report.Stuck)
	diagnostics.Summary("Generation summary", report.Stats())
	if report.OK() {
		diagnostics.GenerationComplete()
	}
}

func printFailures(diagnostics *utils.DiagnosticSystem, title string, failures []cli.Failure) {
	if len(failures) == 0 {
		return
	}
	diagnostics.Section(title)
	diagnostics.Indent()
	defer diagnostics.Unindent()
	for _, f := range failures {
		diagnostics.List("%s [%s]", f.Declaration, f.Code)
		diagnostics.Indent()
		for _, typ := range f.Unresolved {
			diagnostics.List("unresolved: %s", typ)
		}
		diagnostics.Unindent()
	}
}

func failureError(report *cli.Report, err error) error {
	if report == nil || report.OK() {
		return err
	}
	return fmt.Errorf("generation failed: %d declaration(s) failed and %d stuck", len(report.Failed), len(report.Stuck))
}

func runClean(cmd *cobra.Command, args []string) error {
	config, logger, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	removed, err := cli.NewCleaner(logger).Clean(config.Dir, config.Patterns)
	if err != nil {
		return err
	}

	if diagnostics, ok := logger.(*utils.DiagnosticSystem); ok {
		for _, path := range removed {
			diagnostics.PhaseItem("Removed " + path)
		}
		diagnostics.Success("Removed %d generated file(s)", len(removed))
		return nil
	}
	logger.Info("Removed %d generated file(s)", len(removed))
	return nil
}
