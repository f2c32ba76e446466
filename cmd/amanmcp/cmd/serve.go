package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/mcp-vector-search/internal/embedmodel"
	"github.com/Aman-CERP/mcp-vector-search/internal/system"
	"github.com/Aman-CERP/mcp-vector-search/resources"
)

// newServeCmd creates the serve command: load configuration, ingest
// every configured source, and answer MCP requests over stdio until the
// process is signalled to stop. This is the default, and only,
// long-running mode of the server.
func newServeCmd() *cobra.Command {
	var projectDir string
	var ollamaHost string
	var ollamaModel string
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Ingest configured sources and serve search over MCP (stdio)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), projectDir, offline, ollamaHost, ollamaModel)
		},
	}

	cmd.Flags().StringVar(&projectDir, "dir", ".", "Project directory to load .mcp-vector-search/config.yaml from")
	cmd.Flags().StringVar(&ollamaHost, "ollama-host", "http://localhost:11434", "Ollama server host")
	cmd.Flags().StringVar(&ollamaModel, "ollama-model", "nomic-embed-text", "Ollama embedding model")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the built-in static embedder instead of Ollama")

	return cmd
}

func runServe(ctx context.Context, projectDir string, offline bool, ollamaHost, ollamaModel string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	embedderCfg := embedmodel.Config{Provider: embedmodel.ProviderOllama, Host: ollamaHost, Model: ollamaModel}
	if offline {
		embedderCfg = embedmodel.Config{Provider: embedmodel.ProviderStatic}
	}

	sys, err := system.New(ctx, projectDir, embedderCfg, resources.FS)
	if err != nil {
		return err
	}

	if err := sys.Start(ctx); err != nil {
		return err
	}
	defer sys.Stop()

	return sys.Serve(ctx)
}
