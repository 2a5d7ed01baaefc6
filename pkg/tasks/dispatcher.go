package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/logger"
	"github.com/fycapp/fyc-backend/pkg/metrics"
	"github.com/fycapp/fyc-backend/pkg/models"
)

// searchNamespace seeds deterministic search id derivation.
var searchNamespace = uuid.MustParse("7a8fbd5e-4c57-4b36-9c2e-3d1a52c7a9f1")

// DeriveSearchID maps a task id to its search id deterministically, so
// a redelivered job upserts into the same result set instead of
// minting a duplicate one.
func DeriveSearchID(taskID string) string {
	return uuid.NewSHA1(searchNamespace, []byte(taskID)).String()
}

type job struct {
	taskID   string
	taskType string
	params   map[string]string
}

// Config holds dispatcher tuning knobs.
type Config struct {
	Workers         int
	QueueSize       int
	JobTimeout      time.Duration // hard limit for a whole job
	AICallTimeout   time.Duration // soft limit, fires before JobTimeout
	LogoConcurrency int
}

// Dispatcher runs competitor searches on a fixed worker pool. Submit
// returns as soon as the tracker record is written; all AI latency is
// paid by a worker goroutine.
type Dispatcher struct {
	tracker *Tracker
	finder  domain.CompetitorFinder
	logos   domain.LogoResolver
	store   domain.SearchResultStore
	logger  logger.Logger
	metrics *metrics.Metrics
	cfg     Config

	jobs chan job
	wg   sync.WaitGroup
}

// NewDispatcher creates a new background job dispatcher
func NewDispatcher(tracker *Tracker, finder domain.CompetitorFinder, logos domain.LogoResolver,
	store domain.SearchResultStore, cfg Config, log logger.Logger) *Dispatcher {

	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}
	if cfg.AICallTimeout <= 0 || cfg.AICallTimeout > cfg.JobTimeout {
		cfg.AICallTimeout = cfg.JobTimeout * 3 / 4
	}
	if cfg.LogoConcurrency <= 0 {
		cfg.LogoConcurrency = 4
	}
	if log == nil {
		log = logger.Default()
	}

	return &Dispatcher{
		tracker: tracker,
		finder:  finder,
		logos:   logos,
		store:   store,
		logger:  log,
		cfg:     cfg,
		jobs:    make(chan job, cfg.QueueSize),
	}
}

// SetMetrics attaches a metrics instance. Must be called before Start.
func (d *Dispatcher) SetMetrics(m *metrics.Metrics) {
	d.metrics = m
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.run(j)
			}
		}()
	}
	d.logger.Info("dispatcher started", "workers", d.cfg.Workers, "queue", d.cfg.QueueSize)
}

// Stop drains the queue and waits for in-flight jobs.
func (d *Dispatcher) Stop() {
	close(d.jobs)
	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}

// Submit creates a pending tracker record and enqueues the job. It
// never waits for execution: submission cost is one store write.
func (d *Dispatcher) Submit(ctx context.Context, taskType string, params map[string]string) (string, error) {
	if taskType != TypeSearch && taskType != TypeLookup {
		return "", domain.NewValidationError(fmt.Sprintf("unknown task type %q", taskType))
	}

	task, err := d.tracker.Create(ctx, taskType, params)
	if err != nil {
		return "", err
	}

	select {
	case d.jobs <- job{taskID: task.ID, taskType: taskType, params: params}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	d.metrics.RecordJobSubmitted(taskType)

	return task.ID, nil
}

// run executes one job end to end. No error escapes: every failure is
// converted into a terminal failed status so clients only ever observe
// polling results.
func (d *Dispatcher) run(j job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.JobTimeout)
	defer cancel()

	log := d.logger.With("task_id", j.taskID, "type", j.taskType)

	if err := d.tracker.SetStatus(ctx, j.taskID, StatusProcessing, nil, ""); err != nil {
		log.Error("failed marking task processing", "error", err)
		return
	}

	searchID := DeriveSearchID(j.taskID)

	records, err := d.findCompetitors(ctx, j)
	if err != nil {
		log.Error("competitor search failed", "error", err)
		d.fail(j.taskID, err)
		d.metrics.RecordJobFinished(j.taskType, string(StatusFailed), time.Since(start))
		return
	}

	d.enrichLogos(ctx, records)

	total, err := d.store.UpsertBatch(ctx, records, searchID)
	if err != nil {
		log.Error("failed persisting search results", "error", err)
		d.fail(j.taskID, err)
		d.metrics.RecordJobFinished(j.taskType, string(StatusFailed), time.Since(start))
		return
	}

	result := &TaskResult{SearchID: searchID, Total: total}
	if err := d.tracker.SetStatus(ctx, j.taskID, StatusCompleted, result, ""); err != nil {
		log.Error("failed marking task completed", "error", err)
		return
	}

	d.metrics.RecordJobFinished(j.taskType, string(StatusCompleted), time.Since(start))
	log.Info("search job completed", "search_id", searchID, "total", total)
}

// findCompetitors runs the AI call under its own soft timeout so a
// slow model still leaves room to write the failed status gracefully.
func (d *Dispatcher) findCompetitors(ctx context.Context, j job) ([]models.Competitor, error) {
	aiCtx, cancel := context.WithTimeout(ctx, d.cfg.AICallTimeout)
	defer cancel()

	start := time.Now()
	defer func() { d.metrics.RecordAICall(time.Since(start)) }()

	switch j.taskType {
	case TypeLookup:
		return d.finder.FindByNameOrURL(aiCtx, j.params["name_or_url"])
	default:
		return d.finder.FindByDescription(aiCtx, j.params["business_description"], j.params["location"])
	}
}

// enrichLogos resolves logos with bounded fan-out. Records are
// independent, and the resolver downgrades failures to the placeholder,
// so enrichment can never abort the job.
func (d *Dispatcher) enrichLogos(ctx context.Context, records []models.Competitor) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.LogoConcurrency)

	for i := range records {
		g.Go(func() error {
			if records[i].Website == "" {
				records[i].Logo = models.PlaceholderLogo
				return nil
			}
			records[i].Logo = d.logos.Resolve(gCtx, records[i].Website)
			return nil
		})
	}

	_ = g.Wait()
}

// fail records a terminal failed status. The original error is reduced
// to a string summary; the client never sees the raw error chain.
func (d *Dispatcher) fail(taskID string, cause error) {
	// Fresh context: the job context may already be past its deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.tracker.SetStatus(ctx, taskID, StatusFailed, nil, cause.Error()); err != nil {
		d.logger.Error("failed writing terminal failed status", "task_id", taskID, "error", err)
	}
}
