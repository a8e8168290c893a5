package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/flashvocab/internal/bot"
	"github.com/example/flashvocab/internal/config"
	"github.com/example/flashvocab/internal/database"
	"github.com/example/flashvocab/internal/importer"
	"github.com/example/flashvocab/internal/review"
	"github.com/example/flashvocab/internal/server"
)

func main() {
	importPath := flag.String("import", "", "import vocabulary from an Excel or CSV file and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	words := database.NewWordRepository(db)
	progress := database.NewProgressRepository(db)
	stats := database.NewStatisticsRepository(db)

	if *importPath != "" {
		runImport(words, *importPath)
		return
	}

	selector := review.NewSelector(words)
	recorder := review.NewRecorder(progress, database.IsForeignKeyViolation, nil)
	aggregator := review.NewAggregator(stats, nil, cfg.Timezone)

	sessions := server.NewSessionManager(cfg.SessionTTL)
	sessions.Start()
	defer sessions.Stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	srv := server.New(selector, recorder, aggregator, sessions, cfg.JWTSecret, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken, selector, recorder, aggregator, sessions)
		if err != nil {
			log.Fatalf("Failed to create Telegram bot: %v", err)
		}
		go b.Start(ctx)
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.Start(cfg.HTTPAddr); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

func runImport(words *database.WordRepository, path string) {
	im := importer.New(words)
	result, err := im.ImportWords(context.Background(), importer.DefaultConfig(path))
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import finished: %d processed, %d created, %d skipped, %d errors",
		result.TotalProcessed, result.Created, result.Skipped, len(result.Errors))
	for _, e := range result.Errors {
		log.Printf("  %s", e)
	}
}
