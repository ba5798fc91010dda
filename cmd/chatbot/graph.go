package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zelalem61/personal-chat-bot/graph/tool"
	"github.com/zelalem61/personal-chat-bot/internal/chat"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the chat workflow as Graphviz DOT",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraph(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(w io.Writer) error {
	registry := tool.NewRegistry(chat.NewEmailTool("", ""), chat.NewCalendarTool("", ""))

	// The nodes are never run here; only the compiled topology matters.
	compiled, err := chat.BuildGraph(
		chat.NewRouter(nil, registry, nil),
		chat.NewRetriever(nil, nil, 0, nil),
		chat.NewToolExecutor(registry, nil),
		chat.NewResponder(nil, "", nil, nil),
	)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, compiled.DOT())
	return err
}
