package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zelalem61/personal-chat-bot/internal/config"
	"github.com/zelalem61/personal-chat-bot/internal/ingest"
	"github.com/zelalem61/personal-chat-bot/internal/llm"
	"github.com/zelalem61/personal-chat-bot/internal/vector"
)

var (
	ingestFile  string
	ingestClear bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk, embed, and store a portfolio document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context())
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "markdown or text file to ingest")
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "clear the collection before ingesting")
	ingestCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	client, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("openai client: %w", err)
	}

	docs := vector.NewChromaStore(vector.ChromaConfig{
		Host:       cfg.Chroma.Host,
		Port:       cfg.Chroma.Port,
		Collection: cfg.Chroma.Collection,
	}, logger.Named("chroma"))

	ing := ingest.NewIngestor(client, docs, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap, logger.Named("ingest"))
	report, err := ing.IngestFile(ctx, ingestFile, ingestClear)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %s: %d documents, %d chunks (collection now holds %d)\n",
		report.File, report.Documents, report.Chunks, report.Total)
	return nil
}
