// Terminal chat client. Ingests the text files given on the command line,
// then opens an interactive session.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"rozgar/internal/app"
	"rozgar/internal/config"
	"rozgar/internal/tui"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml, then ~/.config/rozgar/config.yaml)")
	flag.Parse()

	var (
		cfg *config.AppConfig
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := zap.NewNop()
	assistant, err := app.Build(cfg, logger)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	summary := "No documents ingested. Pass .txt files as arguments to load a knowledge base."
	if files := flag.Args(); len(files) > 0 {
		result, err := assistant.IngestFiles(context.Background(), files, cfg.Language.Default)
		if err != nil {
			log.Fatalf("ingest: %v", err)
		}
		summary = fmt.Sprintf("Ingested %d document(s), %d chunk(s). %s",
			result.Documents, result.Chunks, result.Summary)
	}

	p := tea.NewProgram(tui.New(assistant, summary), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}
}
