// Package cmd provides the CLI commands for mcp-vector-search.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/mcp-vector-search/internal/logging"
	"github.com/Aman-CERP/mcp-vector-search/internal/profiling"
	"github.com/Aman-CERP/mcp-vector-search/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()

	profileCPU     string
	profileMem     string
	profileTrace   string
	profiler       = profiling.NewProfiler()
	cpuProfileStop func()
	traceStop      func()
)

// NewRootCmd creates the root command for the mcp-vector-search CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mcp-vector-search",
		Short:   "Semantic search MCP server",
		Long:    `mcp-vector-search ingests configured sources, embeds them, and answers similarity queries over the Model Context Protocol.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("mcp-vector-search version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.mcp-vector-search/logs/")
	cmd.PersistentFlags().StringVar(&profileCPU, "profile-cpu", "", "Write a CPU profile to this path")
	cmd.PersistentFlags().StringVar(&profileMem, "profile-mem", "", "Write a heap profile to this path on exit")
	cmd.PersistentFlags().StringVar(&profileTrace, "profile-trace", "", "Write an execution trace to this path")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startLogging(cmd *cobra.Command, args []string) error {
	if debugMode {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	}
	return startProfiling(cmd, args)
}

func stopLogging(cmd *cobra.Command, args []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return stopProfiling(cmd, args)
}

func startProfiling(_ *cobra.Command, _ []string) error {
	if profileCPU != "" {
		stop, err := profiler.StartCPU(profileCPU)
		if err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		cpuProfileStop = stop
	}
	if profileTrace != "" {
		stop, err := profiler.StartTrace(profileTrace)
		if err != nil {
			return fmt.Errorf("failed to start trace: %w", err)
		}
		traceStop = stop
	}
	return nil
}

func stopProfiling(_ *cobra.Command, _ []string) error {
	if cpuProfileStop != nil {
		cpuProfileStop()
		cpuProfileStop = nil
	}
	if traceStop != nil {
		traceStop()
		traceStop = nil
	}
	if profileMem != "" {
		if err := profiler.WriteHeap(profileMem); err != nil {
			return fmt.Errorf("failed to write heap profile: %w", err)
		}
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
