package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/joseph-ayodele/nutrition-extractor/internal/app"
	"github.com/joseph-ayodele/nutrition-extractor/internal/async"
	"github.com/joseph-ayodele/nutrition-extractor/internal/export"
	"github.com/joseph-ayodele/nutrition-extractor/internal/ingest"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory of PDF specification sheets (required)")
		out        = flag.String("out", "", "output XLSX path (defaults to <dir>/../nutrition.xlsx)")
		jsonOut    = flag.String("json", "", "optional path for the raw results as JSON lines")
		workers    = flag.Int("workers", 4, "parallel extractions")
		skipHidden = flag.Bool("skip-hidden", true, "ignore dot files and directories")
		watch      = flag.Bool("watch", false, "keep running and process PDFs as they appear")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "nutrition.xlsx")
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		printError("Error: config: %v\n", err)
		os.Exit(2)
	}
	logger := app.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	credential := os.Getenv("GEMINI_API_KEY")
	if credential == "" {
		logger.Warn("GEMINI_API_KEY not set; every document goes through the pattern fallback")
	}

	proc, err := app.NewProcessor(cfg, logger, nil)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	var (
		mu   sync.Mutex
		rows []export.Row
	)
	sink := func(r async.JobResult) {
		row := export.Row{Path: r.Job.Path, Result: r.Result}
		if r.Err != nil {
			row.Err = r.Err.Error()
		}
		mu.Lock()
		rows = append(rows, row)
		mu.Unlock()
	}
	queue := async.NewProcessorQueue(proc, sink, logger,
		async.WithWorkers(*workers),
		async.WithQueueSize(64),
		async.WithMaxFileSize(cfg.Server.MaxFileSize),
		async.WithProcessTimeout(3*time.Minute),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if *watch {
		err = runWatch(ctx, *dir, credential, queue, logger)
	} else {
		err = runOnce(ctx, *dir, *skipHidden, credential, queue, logger)
	}
	queue.Shutdown(context.Background())
	if err != nil {
		logger.Error("batch aborted", "error", err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })

	xlsx, xerr := export.NewService(logger).ResultsXLSX(rows)
	if xerr != nil {
		logger.Error("export failed", "error", xerr)
		os.Exit(1)
	}
	if werr := os.WriteFile(*out, xlsx, 0o644); werr != nil {
		logger.Error("write xlsx", "path", *out, "error", werr)
		os.Exit(1)
	}
	if *jsonOut != "" {
		if jerr := writeJSONLines(*jsonOut, rows); jerr != nil {
			logger.Error("write json", "path", *jsonOut, "error", jerr)
			os.Exit(1)
		}
	}

	succeeded := 0
	for _, r := range rows {
		if r.Err == "" && r.Result.Success {
			succeeded++
		}
	}
	logger.Info("batch complete",
		"documents", len(rows),
		"succeeded", succeeded,
		"xlsx", *out,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if err != nil {
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, dir string, skipHidden bool, credential string, q async.Queue, logger *slog.Logger) error {
	paths, stats, err := ingest.ScanDirectory(ctx, dir, skipHidden)
	if err != nil {
		return err
	}
	logger.Info("directory scanned", "root", dir, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	for _, p := range paths {
		if err := q.Enqueue(ctx, async.Job{Path: p, Credential: credential}); err != nil {
			return fmt.Errorf("enqueue %s: %w", p, err)
		}
	}
	return nil
}

func runWatch(ctx context.Context, dir, credential string, q async.Queue, logger *slog.Logger) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("watching for documents", "root", dir)
	for {
		select {
		case p, ok := <-events:
			if !ok {
				return nil
			}
			if err := q.Enqueue(ctx, async.Job{Path: p, Credential: credential}); err != nil {
				return fmt.Errorf("enqueue %s: %w", p, err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func writeJSONLines(path string, rows []export.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	for _, r := range rows {
		line := map[string]any{"path": r.Path, "result": r.Result}
		if r.Err != "" {
			line["job_error"] = r.Err
		}
		if err := enc.Encode(line); err != nil {
			_ = f.Close()
			return err
		}
	}
	return f.Close()
}
