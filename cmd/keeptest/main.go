package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"keeptest/cmd/keeptest/config"
	"keeptest/internal/discovery"
	"keeptest/internal/logging"
	"keeptest/internal/report"
)

var (
	// Global flags
	verbose bool
	dir     string
	count   int
	rounds  int

	// Logger
	logger *zap.Logger

	cfg config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "keeptest [implementation]",
	Short: "keeptest - dynamic game implementation tester",
	Long: `keeptest loads game implementation files into an isolated interpreter
session, synthesizes a plausible default configuration for each one, and
exercises its objective templates through weighted random sampling.

Run without arguments to discover implementations in the current directory
and pick from an interactive menu. Pass a filename or partial name to test
a single implementation directly.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if dir == "" {
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("resolve working directory: %w", err)
			}
		}

		if err := logging.Initialize(dir); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}

		cfg, err = config.Load()
		if err != nil {
			logger.Warn("config unreadable, using defaults", zap.Error(err))
		}
		if count > 0 {
			cfg.SampleCount = count
		}
		if rounds > 0 {
			cfg.Rounds = rounds
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		interruptToGoodbye()
		if len(args) == 1 {
			return testOne(args[0])
		}
		return runMenu()
	},
}

// testCmd tests a single implementation by name
var testCmd = &cobra.Command{
	Use:   "test [implementation]",
	Short: "Test one implementation by filename or partial name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interruptToGoodbye()
		return testOne(args[0])
	},
}

// listCmd lists discovered implementations without testing them
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered implementations and their confidence scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		candidates, err := newScanner().Scan(dir)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fmt.Println(report.NoImplementations(dir))
			return nil
		}
		fmt.Println(report.Listing(candidates))
		return nil
	},
}

// watchCmd retests implementations as they change on disk
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the directory and retest implementations on change",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		scanner := newScanner()
		w, err := discovery.NewWatcher(dir, scanner, func(c discovery.Candidate) {
			if err := runTest(c); err != nil {
				fmt.Println(report.Failure(c.Path, err))
			}
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		logger.Info("watching for implementation changes", zap.String("dir", dir))

		<-ctx.Done()
		w.Stop()
		fmt.Println(report.Goodbye())
		return nil
	},
}

func newScanner() *discovery.Scanner {
	return discovery.NewScanner(cfg.MinConfidence, cfg.ExcludeGlobs)
}

// interruptToGoodbye turns SIGINT into a clean farewell instead of a stack
// trace mid-run.
func interruptToGoodbye() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println()
		fmt.Println(report.Goodbye())
		logging.CloseAll()
		os.Exit(0)
	}()
}

func testOne(arg string) error {
	c, err := newScanner().Resolve(dir, arg)
	if err != nil {
		return err
	}
	if err := runTest(c); err != nil {
		fmt.Println(report.Failure(c.Path, err))
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dir, "dir", "d", "", "Directory to discover implementations in (default: current)")
	rootCmd.PersistentFlags().IntVarP(&count, "count", "c", 0, "Objectives per round (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&rounds, "rounds", "r", 0, "Generation rounds per test (overrides config)")

	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
