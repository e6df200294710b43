package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Infineon/mtb-manifest-checker/pkg/buildinfo"
	"github.com/Infineon/mtb-manifest-checker/pkg/exitcode"
	"github.com/Infineon/mtb-manifest-checker/pkg/logger"
	"github.com/Infineon/mtb-manifest-checker/pkg/manifest"
)

// newRootCommand creates a fresh root command instance.
// Tests build isolated command trees from it.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-assets <manifest_type> <input> <output>",
		Short: "Validate git references in SDK asset manifests",
		Long: `validate-assets checks that every git reference cited by an SDK manifest exists.

Manifest types: super, board, app, middleware, dependency.

Board, app and middleware manifests record their asset ids in the asset cache
(out/asset_cache.txt by default) so that dependency manifests processed later,
possibly by another invocation, can resolve them. A normalized copy of the
input manifest is written to <output>.

Examples:
   validate-assets super manifests/super-manifest.xml out/super-manifest.xml
   validate-assets board manifests/boards.xml out/boards.xml
   validate-assets suite --plan validate-plan.yaml
   validate-assets cache show`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initializeLogger(cmd)
		},
		RunE: runValidate,
	}

	pf := cmd.PersistentFlags()
	pf.String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	pf.Bool("json", false, "Output logs in JSON format")
	pf.Bool("no-color", false, "Disable colored output")
	pf.String("config", "", "Config file (default .validate-assets.yaml in the working directory)")
	pf.String("asset-cache", "", "Asset cache file (default out/asset_cache.txt)")
	pf.String("scratch-dir", "", "Scratch directory for bare mirror clones (default tmp)")
	pf.String("git-backend", "", "Git backend: cli or gogit (default cli)")
	pf.String("report", "", "Write a session report to FILE (.json JSON, .md Markdown, YAML otherwise)")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("validate-assets {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newSuiteCommand())
	cmd.AddCommand(newCacheCommand())
	cmd.AddCommand(newVersionCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func init() {
	registerSubcommands(rootCmd)
}

// Execute runs the root command and exits with the resulting exit code.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, rootCmd, os.Args[1:])
	stop()
	if code != exitcode.Success {
		os.Exit(code)
	}
}

// run executes cmd with args and maps the outcome onto an exit code.
func run(ctx context.Context, cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitcode.Success
	}

	var coded *exitcode.Error
	if errors.As(err, &coded) {
		// already reported by the command
		return coded.Code
	}

	// flag and argument errors from cobra
	fmt.Fprintf(cmd.ErrOrStderr(), "FATAL ERROR: %v\n", err)
	fmt.Fprintf(cmd.ErrOrStderr(), "Run '%s --help' for usage.\n", cmd.Root().Name())
	return exitcode.ConfigError
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	typ, err := manifest.ParseType(args[0])
	if err != nil {
		return fatal(out, exitcode.ValidationFailure, err)
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return fatal(out, exitcode.ConfigError, err)
	}

	procErr := manifest.Process(cmd.Context(), env.session, typ, args[1], args[2])
	if err := env.finish(); err != nil && procErr == nil {
		return fatal(out, exitcode.ValidationFailure, err)
	}
	if procErr != nil {
		return fatal(out, exitcode.ValidationFailure, procErr)
	}
	return nil
}

// fatal prints err in the "FATAL ERROR: ..." form and returns it tagged with code.
func fatal(w io.Writer, code int, err error) error {
	var pe *manifest.ProcessError
	if errors.As(err, &pe) {
		fmt.Fprintf(w, "FATAL ERROR: %v\n", pe.Err)
		var le *manifest.LookupError
		if errors.As(pe.Err, &le) && le.Hint != "" {
			fmt.Fprintf(w, "   ... %s ...\n", le.Hint)
		}
		fmt.Fprintf(w, "FATAL ERROR: failed to process the %s manifest %s\n", pe.Type, pe.Input)
	} else {
		fmt.Fprintf(w, "FATAL ERROR: %v\n", err)
	}
	logger.Debug("command failed", logger.Int("exit_code", code), logger.Err(err))
	return exitcode.Wrap(code, err)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) error {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "validate-assets",
		Output:    cmd.ErrOrStderr(),
	}

	if err := logger.Initialize(config); err != nil {
		return fatal(cmd.ErrOrStderr(), exitcode.ConfigError, fmt.Errorf("failed to initialize logger: %w", err))
	}
	return nil
}
