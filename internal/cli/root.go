package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ragchat-client/internal/bootstrap"
	"ragchat-client/internal/config"
	"ragchat-client/internal/tracer"
)

var (
	backendURL string
	debugMode  bool
	version    = "dev"
)

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Terminal client for a retrieval-augmented chat backend",
	Long: `ragchat talks to a RAG chat backend: ask questions, inspect citations,
thought process and supporting content, and manage stored conversations.

Without a subcommand it starts the interactive chat.`,
	RunE:          runChat,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides BACKEND_BASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Write debug entries to the log file")
	registerChatFlags(rootCmd)
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = version
	return rootCmd.Execute()
}

func loadConfig() *config.Config {
	cfg := config.Load()
	if backendURL != "" {
		cfg.Backend.BaseURL = strings.TrimRight(backendURL, "/")
	}
	if debugMode {
		cfg.App.Debug = true
	}
	return cfg
}

// openContainer wires a chat session. The returned func releases it.
func openContainer() (*bootstrap.Container, func(), error) {
	cfg := loadConfig()
	shutdownTracer := tracer.InitTracer("ragchat-client")

	c, err := bootstrap.NewContainer(cfg)
	if err != nil {
		_ = shutdownTracer(context.Background())
		return nil, nil, fmt.Errorf("error starting client: %w", err)
	}
	return c, func() {
		c.Close()
		_ = shutdownTracer(context.Background())
	}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
