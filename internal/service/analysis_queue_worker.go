package service

import (
	"context"
	"log"
	"sync"
	"time"

	"baucheck/internal/port"
)

// AnalysisQueueConfig holds settings for the analysis queue worker.
type AnalysisQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
}

// AnalysisQueueWorker polls for queued projects and zoning plans whose retry
// window has passed and dispatches them for re-analysis.
type AnalysisQueueWorker struct {
	projectRepo    port.ProjectRepository
	projectService ProjectService
	planRepo       port.ZoningPlanRepository
	planService    PlanService
	cfg            AnalysisQueueConfig
	wg             sync.WaitGroup
}

// NewAnalysisQueueWorker creates a new AnalysisQueueWorker.
func NewAnalysisQueueWorker(
	projectRepo port.ProjectRepository,
	projectService ProjectService,
	planRepo port.ZoningPlanRepository,
	planService PlanService,
	cfg AnalysisQueueConfig,
) *AnalysisQueueWorker {
	return &AnalysisQueueWorker{
		projectRepo:    projectRepo,
		projectService: projectService,
		planRepo:       planRepo,
		planService:    planService,
		cfg:            cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight analyses have finished.
func (w *AnalysisQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("analysisQueueWorker: started (poll=%s, concurrency=%d, maxRetries=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			log.Printf("analysisQueueWorker: shutting down, waiting for in-flight analyses...")
			w.wg.Wait()
			log.Printf("analysisQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}
			available -= w.dispatchProjects(ctx, sem, available)
			if available > 0 {
				w.dispatchPlans(ctx, sem, available)
			}
		}
	}
}

func (w *AnalysisQueueWorker) dispatchProjects(ctx context.Context, sem chan struct{}, limit int) int {
	projects, err := w.projectRepo.ClaimQueued(ctx, limit)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("analysisQueueWorker: ClaimQueued projects error: %v", err)
		}
		return 0
	}

	for i := range projects {
		project := projects[i] // copy for goroutine
		project.Attempts++

		sem <- struct{}{} // acquire
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }() // release

			// Use a fresh context independent of the poll context so in-flight
			// analyses complete even during shutdown.
			analysisCtx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
			defer cancel()

			log.Printf("analysisQueueWorker: dispatching project %s (attempt %d)", project.ID, project.Attempts)
			w.projectService.AnalyzeProject(analysisCtx, &project, w.cfg.MaxRetries)
		}()
	}
	return len(projects)
}

func (w *AnalysisQueueWorker) dispatchPlans(ctx context.Context, sem chan struct{}, limit int) int {
	plans, err := w.planRepo.ClaimQueued(ctx, limit)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("analysisQueueWorker: ClaimQueued plans error: %v", err)
		}
		return 0
	}

	for i := range plans {
		plan := plans[i] // copy for goroutine
		plan.Attempts++

		sem <- struct{}{} // acquire
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }() // release

			analysisCtx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
			defer cancel()

			log.Printf("analysisQueueWorker: dispatching plan %s (attempt %d)", plan.ID, plan.Attempts)
			w.planService.AnalyzePlan(analysisCtx, &plan, w.cfg.MaxRetries)
		}()
	}
	return len(plans)
}
