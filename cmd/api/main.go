package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asharma-dev/statement-pipeline/internal/api/handlers"
	"github.com/asharma-dev/statement-pipeline/internal/api/middleware"
	"github.com/asharma-dev/statement-pipeline/internal/categorize"
	"github.com/asharma-dev/statement-pipeline/internal/config"
	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/gcsstore"
	"github.com/asharma-dev/statement-pipeline/internal/jobs"
	"github.com/asharma-dev/statement-pipeline/internal/jobs/inmemory"
	"github.com/asharma-dev/statement-pipeline/internal/ledger"
	"github.com/asharma-dev/statement-pipeline/internal/logger"
	"github.com/asharma-dev/statement-pipeline/internal/parser"
	"github.com/asharma-dev/statement-pipeline/internal/pipeline"
)

func main() {
	cfg := config.FromEnv()

	var (
		port    = flag.String("port", cfg.Port, "HTTP server port")
		bucket  = flag.String("bucket", cfg.GCSBucket, "GCS bucket for async statement parsing (or set GCS_BUCKET env)")
		lexicon = flag.String("lexicon", cfg.LexiconPath, "optional YAML file extending the category lexicon")
	)
	flag.Parse()
	cfg.Port = *port
	cfg.GCSBucket = *bucket
	cfg.LexiconPath = *lexicon

	log := logger.New()
	ctx := context.Background()

	// Categorizer, optionally extended from YAML.
	categorizer := categorize.New()
	if cfg.LexiconPath != "" {
		var err error
		categorizer, err = categorize.NewFromYAML(cfg.LexiconPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load category lexicon")
		}
	}

	// Parser chain.
	var ai parser.Parser
	if cfg.AIEnabled {
		ai = parser.NewAIExtractor(cfg.ModelName, cfg.AITimeout)
	} else {
		log.Warn().Msg("AI fallback disabled - pattern-free statements will degrade to the placeholder result")
	}
	chain := parser.NewChain(parser.NewRegistry(), ai)

	// Ledger: BigQuery when configured, in-memory otherwise.
	var led ledger.Ledger
	if cfg.BigQueryProject != "" {
		bq, err := ledger.NewBigQueryLedger(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, cfg.BigQueryTable)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery ledger")
		}
		led = bq
		log.Info().Str("project", cfg.BigQueryProject).Msg("Using BigQuery ledger")
	} else {
		led = ledger.NewMemoryLedger()
		log.Warn().Msg("No BigQuery project configured - using in-memory ledger")
	}
	defer led.Close()

	// GCS store for the async parse path.
	var gcs *gcsstore.Store
	if cfg.GCSBucket != "" {
		var err error
		gcs, err = gcsstore.New(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS store")
		}
		defer gcs.Close()
	} else {
		log.Warn().Msg("No GCS bucket configured - async parsing will be disabled")
	}

	// Job infrastructure.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueBuffer, cfg.Workers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		parseJob, ok := job.(*jobs.ParseStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}
		if gcs == nil {
			return fmt.Errorf("gcs store is not configured")
		}

		log.Info().
			Str("job_id", parseJob.JobID).
			Str("gcs_uri", parseJob.GCSURI).
			Str("account", parseJob.AccountID).
			Msg("Processing parse job")

		data, err := gcs.Fetch(ctx, parseJob.GCSURI)
		if err != nil {
			return err
		}

		jobCtx := domain.WithAccount(ctx, parseJob.AccountID)
		pipe := pipeline.NewStatementPipeline(cfg.MaxUploadBytes, chain, categorizer, led)
		result, err := pipe.Run(jobCtx, parseJob.Filename, data)
		if err != nil {
			return err
		}

		imported := ledger.ImportBatch(jobCtx, led, result.Transactions)
		parseJob.Imported = imported.Imported

		log.Info().
			Str("job_id", parseJob.JobID).
			Str("parser", result.ParserUsed).
			Bool("degraded", result.Degraded).
			Int("imported", imported.Imported).
			Int("errors", imported.ErrorCount).
			Msg("Parse job completed")
		return nil
	}

	go func() {
		log.Info().Int("workers", cfg.Workers).Msg("Starting job workers")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job workers stopped with error")
		}
	}()

	// HTTP surface.
	api := handlers.New(cfg, chain, categorizer, led, jobQueue, jobStore, gcs)
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(api.Router()),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // AI fallback calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
