// Command chatbot runs the portfolio assistant: an HTTP chat API backed by
// a routed LLM workflow, plus commands for ingesting portfolio documents
// and inspecting the workflow graph.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zelalem61/personal-chat-bot/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Portfolio assistant chat service",
	Long: `chatbot serves a portfolio assistant over HTTP. Each incoming message runs
through a routed workflow that answers directly, retrieves portfolio
documents for grounding, or calls a contact tool, and every conversation
thread keeps its history across turns.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(cfg.ZapLevel())
	return zcfg.Build()
}
