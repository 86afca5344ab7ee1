package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeberg.org/snonux/examplegen/internal/cli"
	"codeberg.org/snonux/examplegen/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	var logger *zap.Logger
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = cli.NewLogger(flags.Verbose, flags.LogJSON)
		return err
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	}

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags, logger)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags, logger *zap.Logger) error {
	// Settings from flags, environment and config file
	cli.ApplyConfig(flags)

	// Positional input overrides --input
	if len(args) > 0 {
		flags.InputFile = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := processor.NewProcessor(flags, logger)

	// Handle --list-models flag
	if flags.ListModels {
		return proc.ListModels(ctx)
	}

	if _, err := proc.Run(ctx); err != nil {
		return err
	}

	if flags.OutputFile != "-" && !flags.DryRun {
		fmt.Printf("\nDone! Rows saved to: %s\n", flags.OutputFile)
	}
	return nil
}
