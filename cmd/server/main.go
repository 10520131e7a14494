package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"baucheck/internal/compare"
	"baucheck/internal/completeness"
	"baucheck/internal/config"
	"baucheck/internal/email/noop"
	"baucheck/internal/email/ses"
	"baucheck/internal/extraction"
	"baucheck/internal/handler"
	"baucheck/internal/port"
	"baucheck/internal/rasterize"
	"baucheck/internal/reasoner/openai"
	"baucheck/internal/report"
	"baucheck/internal/repository/postgres"
	"baucheck/internal/router"
	"baucheck/internal/service"
	s3storage "baucheck/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	projectRepo := postgres.NewProjectRepo(db)
	planRepo := postgres.NewZoningPlanRepo(db)
	reviewRepo := postgres.NewReviewRepo(db)
	completenessRepo := postgres.NewCompletenessRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize the extraction pipeline. A missing API key is fatal at
	// startup, not at first request.
	reasonerClient, err := openai.NewClient(&cfg.Reasoner)
	if err != nil {
		return fmt.Errorf("failed to initialize reasoning client: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Pipeline.RatePerSec), cfg.Pipeline.MaxConcurrent)
	extractor := extraction.NewExtractor(reasonerClient, limiter, cfg.Pipeline.MaxConcurrent)
	reconciler := extraction.NewReconciler(reasonerClient)
	assembler := extraction.NewAssembler(extractor, reconciler)
	comparator := compare.NewComparator(reasonerClient)
	checker := completeness.NewChecker(extractor, reconciler)

	rasterClient := rasterize.NewClient(cfg.Rasterizer.Endpoint, time.Duration(cfg.Rasterizer.TimeoutSecs)*time.Second)
	builder := service.NewCorpusBuilder(rasterClient, cfg.Rasterizer.DPI)

	// Initialize report delivery
	var sender port.ReportSender
	switch cfg.Email.Provider {
	case "ses":
		sender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		sender = noop.NewNoopSender()
	}
	renderer := report.NewTextRenderer()

	// Initialize services
	projectSvc := service.NewProjectService(
		projectRepo, completenessRepo, s3Client, builder, assembler, checker,
		cfg.S3.Bucket, cfg.S3.MaxFileSizeMB, reasonerClient.Model(), cfg.Pipeline.BestEffort,
	)
	planSvc := service.NewPlanService(
		planRepo, s3Client, builder, assembler,
		cfg.S3.Bucket, cfg.S3.MaxFileSizeMB, reasonerClient.Model(), cfg.Pipeline.BestEffort,
		time.Duration(cfg.Pipeline.CacheTTLSecs)*time.Second,
	)
	reviewSvc := service.NewReviewService(
		reviewRepo, projectRepo, planSvc, comparator, renderer, sender, s3Client,
		cfg.S3.Bucket, cfg.S3.PresignExpiry,
	)

	// Initialize handlers
	projectH := handler.NewProjectHandler(projectSvc)
	planH := handler.NewPlanHandler(planSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg.CORS.AllowedOrigins, projectH, planH, reviewH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the retry queue worker
	worker := service.NewAnalysisQueueWorker(projectRepo, projectSvc, planRepo, planSvc, service.AnalysisQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-workerDone

	return nil
}
