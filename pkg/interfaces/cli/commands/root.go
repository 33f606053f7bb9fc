package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vsinha/timber/pkg/infrastructure/ai"
	"github.com/vsinha/timber/pkg/infrastructure/config"
	"github.com/vsinha/timber/pkg/interfaces/cli/output"
)

// skipApp marks commands that run without opening the store
const skipApp = "skip-app"

// Dependencies lets callers replace the AI generator, logger and output writer
type Dependencies struct {
	Generator ai.Generator
	Logger    *zap.Logger
	Out       io.Writer
}

// cli carries the flag values and the wired App for one invocation
type cli struct {
	deps       Dependencies
	configPath string
	format     string
	outputDir  string
	verbose    bool
	capacity   float64

	logger *zap.Logger
	app    *App
}

// NewRootCommand builds the timber command tree
func NewRootCommand(deps Dependencies) *cobra.Command {
	root, _ := newRootCommand(deps)
	return root
}

func newRootCommand(deps Dependencies) (*cobra.Command, *cli) {
	c := &cli{deps: deps}
	if c.deps.Out == nil {
		c.deps.Out = os.Stdout
	}

	root := &cobra.Command{
		Use:   "timber",
		Short: "Timber marketplace: AI match suggestions and truck loading plans",
		Long: `timber keeps a register of customer demands and manufacturer stock,
asks the AI service for likely pairings, records confirmed matches with their
commission and sequences the unbilled matches into a truck loading plan.

Set GEMINI_API_KEY to enable the AI features.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "timber.yaml", "Path to the YAML configuration file")
	root.PersistentFlags().StringVarP(&c.format, "format", "f", "text", "Output format: text, json, svg")
	root.PersistentFlags().StringVarP(&c.outputDir, "output", "o", "", "Output directory for results (optional)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose output and debug logging")

	root.AddCommand(
		c.submitCommand(),
		c.uploadCommand(),
		c.demandsCommand(),
		c.stockCommand(),
		c.importCommand(),
		c.suggestCommand(),
		c.confirmCommand(),
		c.matchesCommand(),
		c.demandStatusCommand("complete", "Mark a demand as completed", c.completeDemand),
		c.demandStatusCommand("cancel", "Cancel a demand", c.cancelDemand),
		c.soldCommand(),
		c.billCommand(),
		c.planCommand(),
		c.volumeCommand(),
		c.tipsCommand(),
	)

	return root, c
}

// Execute runs the CLI and returns the process exit code
func Execute(ctx context.Context, args []string, deps Dependencies) int {
	root, c := newRootCommand(deps)
	if err := c.execute(ctx, root, args); err != nil {
		output.Failure(err, output.Config{Out: os.Stderr, Verbose: c.verbose})
		return 1
	}
	return 0
}

func (c *cli) execute(ctx context.Context, root *cobra.Command, args []string) error {
	root.SetArgs(args)
	root.SetOut(c.deps.Out)
	defer c.teardown()

	return root.ExecuteContext(ctx)
}

// setup loads configuration, builds the logger and wires the App
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if err := output.ValidateFormat(c.format); err != nil {
		return err
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.capacity > 0 {
		cfg.Loading.TruckCapacity = c.capacity
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.logger = c.deps.Logger
	if c.logger == nil {
		if c.logger, err = buildLogger(cfg.Logging.Level, c.verbose); err != nil {
			return err
		}
	}

	if cmd.Annotations[skipApp] != "" {
		return nil
	}

	c.app, err = NewApp(cmd.Context(), cfg, c.deps.Generator, c.logger)
	return err
}

func (c *cli) teardown() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			c.logger.Warn("failed to close store", zap.Error(err))
		}
		c.app = nil
	}
	if c.logger != nil && c.deps.Logger == nil {
		_ = c.logger.Sync()
	}
}

func (c *cli) output() output.Config {
	return output.Config{
		Format:    c.format,
		OutputDir: c.outputDir,
		Verbose:   c.verbose,
		Out:       c.deps.Out,
	}
}

func buildLogger(level string, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
