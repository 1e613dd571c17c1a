package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/schemaformula/i18n"
	"github.com/reoring/schemaformula/internal/config"
	"github.com/reoring/schemaformula/internal/logging"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

// app carries the state shared by every subcommand once configuration has
// been loaded.
type app struct {
	configDir string
	cfg       *config.Config
	logger    *zap.Logger
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	rootCmd := &cobra.Command{
		Use:   "schemaformula",
		Short: "Inspect and maintain computed fields in JSON-Schema documents",
		Long: `schemaformula works with x-formula fields of JSON-Schema documents.

It renders field paths in pointer and dotted form, computes the relative
reference a formula would use, lists formula dependencies and rewrites
formulas after a field is renamed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.OutOrStdout())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "directory holding schemaformula.yaml (default: working directory)")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newPathCommand())
	rootCmd.AddCommand(newRelativeCommand())
	rootCmd.AddCommand(newDepsCommand(a))
	rootCmd.AddCommand(newRewriteCommand(a))

	return rootCmd
}

func (a *app) setup(out io.Writer) error {
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return err
	}
	a.cfg = cfg
	i18n.SetLanguage(cfg.Lang)
	color.NoColor = !useColor(cfg.Color, out)

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// useColor resolves the configured color mode against the output stream.
func useColor(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			title := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			title.Fprint(out, "schemaformula version: ")
			fmt.Fprintln(out, Version)
			title.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			title.Fprint(out, "Go version: ")
			fmt.Fprintln(out, runtime.Version())
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
