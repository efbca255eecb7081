package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"orgopivy/internal/answerer"
	"orgopivy/internal/chunker"
	"orgopivy/internal/config"
	"orgopivy/internal/domain"
	"orgopivy/internal/index/memory"
	"orgopivy/internal/scorer"
	"orgopivy/internal/service"
	"orgopivy/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/orgopivy/config.yaml if not provided)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: orgopivy-cli [--config=config.yaml] notes1.txt [notes2.txt ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	svc := service.NewQAService(
		nil, // documents come from argv, not the upload store
		memory.NewStore(),
		chunker.NewWindowChunker(cfg.Chunker.MaxChars, cfg.Chunker.OverlapChars),
		scorer.NewTermScorer(),
		answerer.NewExtractiveAnswerer(),
		cfg.Answerer.MaxSentences,
		cfg.Answerer.QuantitativeThreshold,
	)

	docCount := 0
	chunkCount := 0
	for _, p := range inputs {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				log.Fatalf("failed to read %s: %v", m, err)
			}
			n, err := svc.IngestDocument(domain.Document{StoredName: filepath.Base(m), Text: string(data)})
			if err != nil {
				log.Fatalf("ingest failed for %s: %v", m, err)
			}
			docCount++
			chunkCount += n
		}
	}
	if docCount == 0 {
		log.Fatalf("no .txt documents found")
	}

	summary := fmt.Sprintf("Ingested %d documents (%d chunks)", docCount, chunkCount)
	m := tui.New(svc, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
