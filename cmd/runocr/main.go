package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/nutrition-extractor/internal/app"
	"github.com/joseph-ayodele/nutrition-extractor/internal/fallback"
)

// runocr prints the text a PDF yields, optionally after the pattern cleaner.
func main() {
	clean := flag.Bool("clean", false, "apply the pattern cleaner to the output")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: runocr [-clean] <file.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := app.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	doc, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	extractor, err := app.NewTextExtractor(cfg, logger)
	if err != nil {
		logger.Error("build extractor", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := extractor.Extract(ctx, doc)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"language", res.Language,
		"bytes", len(res.Text),
		"quality_ok", res.Quality.OK,
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)

	text := res.Text
	if *clean {
		text = fallback.CleanText(text)
	}
	fmt.Println(text)
}
