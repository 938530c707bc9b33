package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docindex/internal/chunker"
	"docindex/internal/config"
	"docindex/internal/domain"
	"docindex/internal/embedding"
	"docindex/internal/embedding/gemini"
	"docindex/internal/extractor"
	"docindex/internal/pipeline"
	"docindex/internal/store/memory"
	"docindex/internal/store/sqlite"
	"docindex/internal/tui"
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docindex",
		Short:         "Index PDF and DOCX documents into a vector store",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("config", "", "path to YAML config file (default: ./config.yaml, then ~/.config/docindex/config.yaml)")
	root.AddCommand(indexCmd(), verifyCmd(), listCmd())
	return root
}

func indexCmd() *cobra.Command {
	var (
		file         string
		strategyName string
		verbose      bool
		plain        bool
		reindex      bool
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Extract, chunk, embed and store one document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if strategyName == "" {
				strategyName = cfg.Chunker.Strategy
			}
			strategy, err := chunker.ParseStrategy(strategyName)
			if err != nil {
				return err
			}
			params := chunker.Params{
				ChunkSize:    cfg.Chunker.ChunkSize,
				Overlap:      cfg.Chunker.Overlap,
				MaxChunkSize: cfg.Chunker.MaxChunkSize,
			}

			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			opts := pipeline.Options{Strategy: strategy, Params: params, Reindex: reindex}
			if plain {
				return runPlain(cfg, file, opts, store, verbose)
			}
			return runTUI(cfg, file, opts, store)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the document (PDF or DOCX)")
	cmd.Flags().StringVarP(&strategyName, "strategy", "s", "", "chunking strategy: fixed, sentence or paragraph")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log per-chunk embedding progress")
	cmd.Flags().BoolVar(&plain, "plain", false, "print log lines instead of the progress view")
	cmd.Flags().BoolVar(&reindex, "reindex", false, "delete previously stored chunks for this file first")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runPlain(cfg *config.AppConfig, file string, opts pipeline.Options, store domain.ChunkStore, verbose bool) error {
	embedder, err := buildEmbedder(cfg, func(done, total int) {
		if verbose {
			log.Printf("embedded %d/%d chunks", done, total)
		}
	})
	if err != nil {
		return err
	}
	opts.OnStage = func(s pipeline.Stage) {
		log.Printf("stage: %s", s)
	}

	indexer := pipeline.NewIndexer(extractor.New(), chunker.New(), embedder, store)
	report, err := indexer.Index(context.Background(), file, opts)
	printReport(report)
	return err
}

func runTUI(cfg *config.AppConfig, file string, opts pipeline.Options, store domain.ChunkStore) error {
	model := tui.New(filepath.Base(file))
	program := tea.NewProgram(model)

	embedder, err := buildEmbedder(cfg, func(done, total int) {
		program.Send(tui.ProgressMsg{Done: done, Total: total})
	})
	if err != nil {
		return err
	}
	opts.OnStage = func(s pipeline.Stage) {
		program.Send(tui.StageMsg(s))
	}

	indexer := pipeline.NewIndexer(extractor.New(), chunker.New(), embedder, store)

	var (
		report domain.Report
		runErr error
	)
	go func() {
		report, runErr = indexer.Index(context.Background(), file, opts)
		program.Send(tui.DoneMsg{Report: report, Err: runErr})
	}()

	if _, err := program.Run(); err != nil {
		return err
	}
	return runErr
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check embedding service and store connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Ping(ctx); err != nil {
				return fmt.Errorf("store check failed: %w", err)
			}
			fmt.Println("store: ok")

			embedder, err := buildGemini(cfg, nil)
			if err != nil {
				return err
			}
			if err := embedder.TestConnection(ctx); err != nil {
				return fmt.Errorf("embedding service check failed: %w", err)
			}
			fmt.Printf("embedding service: ok (dimension %d)\n", embedder.Dimension())
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indexed files and their chunk counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.Filenames(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("no documents indexed")
				return nil
			}
			for _, name := range names {
				count, err := store.CountByFile(ctx, name)
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%d chunks\n", name, count)
			}
			return nil
		},
	}
}

func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		cfg, _, err := config.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func buildEmbedder(cfg *config.AppConfig, onProgress embedding.ProgressFunc) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "gemini", "":
		return buildGemini(cfg, onProgress)
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func buildGemini(cfg *config.AppConfig, onProgress embedding.ProgressFunc) (*gemini.Client, error) {
	g := cfg.Embedder.Gemini
	if g == nil {
		return nil, fmt.Errorf("gemini embedder config missing")
	}
	key := os.Getenv(g.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", g.APIKeyEnv)
	}
	return gemini.NewClient(gemini.Config{
		APIKey:            key,
		BaseURL:           g.BaseURL,
		Model:             g.Model,
		Dimension:         g.Dimension,
		Timeout:           time.Duration(g.TimeoutSecs) * time.Second,
		RequestsPerSecond: g.RequestsPerSecond,
		Policy: embedding.Policy{
			MaxAttempts: g.MaxRetries,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
			Jitter:      true,
		},
		OnProgress: onProgress,
	})
}

func buildStore(cfg *config.AppConfig) (domain.ChunkStore, error) {
	switch cfg.Store.Type {
	case "sqlite", "":
		if cfg.Store.SQLite == nil {
			return nil, fmt.Errorf("sqlite store config missing")
		}
		return sqlite.Open(cfg.Store.SQLite.Path)
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store: %s", cfg.Store.Type)
	}
}

func printReport(report domain.Report) {
	fmt.Println()
	fmt.Printf("file:             %s\n", report.Filename)
	fmt.Printf("strategy:         %s\n", report.Strategy)
	fmt.Printf("characters:       %d\n", report.TextLength)
	fmt.Printf("chunks created:   %d\n", report.ChunksCreated)
	fmt.Printf("embedded ok:      %d\n", report.EmbeddedOK)
	fmt.Printf("embedded failed:  %d\n", report.EmbeddedFailed)
	fmt.Printf("chunks saved:     %d\n", report.ChunksSaved)
	fmt.Printf("status:           %s\n", report.Status)
}
