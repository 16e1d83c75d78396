package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ajharbinger/annuity-review-api/internal/logger"
	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/repository"
	"github.com/ajharbinger/annuity-review-api/internal/scoring"
)

// Pipeline scopes
const (
	ScopePolicies    = "policies"
	ScopeAcquisition = "acquisition"
	ScopeAll         = "all"
)

// AlertRecorder receives alert counts and run durations
type AlertRecorder interface {
	RecordAlerts(alerts []models.Alert)
	ObserveAlertRun(scope string, d time.Duration)
}

// AlertPipeline recomputes the alert lists of every policy and position
// snapshot and stores them through the catalog
type AlertPipeline struct {
	catalog  repository.CatalogRepository
	engine   *scoring.Engine
	recorder AlertRecorder
	log      logger.Logger

	isRunning bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
}

// NewAlertPipeline creates a pipeline. recorder may be nil.
func NewAlertPipeline(catalog repository.CatalogRepository, engine *scoring.Engine, recorder AlertRecorder, log logger.Logger) *AlertPipeline {
	if log == nil {
		log = logger.NewNop()
	}
	return &AlertPipeline{
		catalog:  catalog,
		engine:   engine,
		recorder: recorder,
		log:      log.With("component", "alert-pipeline"),
	}
}

// PipelineConfig contains configuration for the alert pipeline
type PipelineConfig struct {
	Scope           string `json:"scope"`            // policies, acquisition or all
	BatchSize       int    `json:"batch_size"`       // records per worker batch
	MaxConcurrent   int    `json:"max_concurrent"`   // concurrent batches
	IntervalMinutes int    `json:"interval_minutes"` // cycle interval when started
}

// DefaultPipelineConfig returns the defaults used by the server and the batch CLI
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Scope:           ScopeAll,
		BatchSize:       25,
		MaxConcurrent:   4,
		IntervalMinutes: 60,
	}
}

func (c PipelineConfig) normalized() PipelineConfig {
	if c.Scope == "" {
		c.Scope = ScopeAll
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 1
	}
	return c
}

func (c PipelineConfig) includes(scope string) bool {
	return c.Scope == ScopeAll || c.Scope == scope
}

// Start runs a cycle immediately and then one every IntervalMinutes until Stop
func (p *AlertPipeline) Start(config PipelineConfig) error {
	config = config.normalized()
	if config.IntervalMinutes <= 0 {
		return fmt.Errorf("interval must be positive, got %d minutes", config.IntervalMinutes)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("pipeline is already running")
	}

	p.isRunning = true
	p.stopChan = make(chan struct{})

	p.wg.Add(1)
	go p.runPipeline(config, p.stopChan)

	p.log.Info("Alert pipeline started",
		"scope", config.Scope,
		"batch_size", config.BatchSize,
		"interval_minutes", config.IntervalMinutes,
		"max_concurrent", config.MaxConcurrent)
	return nil
}

// Stop gracefully stops the pipeline and waits for the running cycle
func (p *AlertPipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return fmt.Errorf("pipeline is not running")
	}

	close(p.stopChan)
	p.wg.Wait()
	p.isRunning = false

	p.log.Info("Alert pipeline stopped")
	return nil
}

// IsRunning returns whether the pipeline loop is active
func (p *AlertPipeline) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isRunning
}

// RunOnce executes a single cycle
func (p *AlertPipeline) RunOnce(ctx context.Context, config PipelineConfig) (*PipelineStats, error) {
	return p.executeCycle(ctx, config.normalized())
}

func (p *AlertPipeline) runPipeline(config PipelineConfig, stop <-chan struct{}) {
	defer p.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	ticker := time.NewTicker(time.Duration(config.IntervalMinutes) * time.Minute)
	defer ticker.Stop()

	p.logCycle(p.executeCycle(ctx, config))
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.logCycle(p.executeCycle(ctx, config))
		}
	}
}

func (p *AlertPipeline) logCycle(stats *PipelineStats, err error) {
	if err != nil {
		p.log.Error("Alert cycle failed", err)
		return
	}
	p.log.Info("Alert cycle completed", "summary", stats.Summary())
}

func (p *AlertPipeline) executeCycle(ctx context.Context, config PipelineConfig) (*PipelineStats, error) {
	stats := &PipelineStats{
		StartTime:    time.Now(),
		Scope:        config.Scope,
		AlertsByType: make(map[models.AlertType]int),
	}

	clients, err := p.clientIndex()
	if err != nil {
		return stats, fmt.Errorf("failed to load clients: %w", err)
	}

	if config.includes(ScopePolicies) {
		if err := p.processPolicies(ctx, config, clients, stats); err != nil {
			return stats, err
		}
	}
	if config.includes(ScopeAcquisition) {
		if err := p.processPositions(ctx, config, clients, stats); err != nil {
			return stats, err
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	if p.recorder != nil {
		p.recorder.ObserveAlertRun(config.Scope, stats.Duration)
	}
	return stats, ctx.Err()
}

func (p *AlertPipeline) clientIndex() (map[string]*models.Client, error) {
	clients, err := p.catalog.GetAllClients()
	if err != nil {
		return nil, err
	}
	index := make(map[string]*models.Client, len(clients))
	for i := range clients {
		index[clients[i].AccountNumber()] = &clients[i]
	}
	return index, nil
}

func (p *AlertPipeline) processPolicies(ctx context.Context, config PipelineConfig, clients map[string]*models.Client, stats *PipelineStats) error {
	policies, err := p.catalog.GetAllPolicies()
	if err != nil {
		return fmt.Errorf("failed to get policies: %w", err)
	}
	stats.Policies.Found = len(policies)

	runBatches(ctx, len(policies), config, func(i int) BatchStats {
		policy := &policies[i]
		client, ok := clients[policy.ClientAccountNumber]
		if !ok {
			p.log.Warn("Client not found for policy", "policy_id", policy.PolicyID, "client_account", policy.ClientAccountNumber)
			return BatchStats{Skipped: 1}
		}

		alerts := p.engine.EvaluatePolicy(policy, client)
		if _, err := p.catalog.ReplacePolicyAlerts(policy.PolicyID, alerts); err != nil {
			p.log.Error("Failed to store policy alerts", err, "policy_id", policy.PolicyID)
			return BatchStats{Processed: 1, Failed: 1}
		}
		p.log.Debug("Policy alerts refreshed", "policy_id", policy.PolicyID, "alerts", len(alerts))
		return p.succeeded(alerts)
	}, stats.Policies.merge(stats))
	return nil
}

func (p *AlertPipeline) processPositions(ctx context.Context, config PipelineConfig, clients map[string]*models.Client, stats *PipelineStats) error {
	positions, err := p.catalog.GetAllPositions()
	if err != nil {
		return fmt.Errorf("failed to get positions: %w", err)
	}
	stats.Positions.Found = len(positions)

	runBatches(ctx, len(positions), config, func(i int) BatchStats {
		position := &positions[i]
		client, ok := clients[position.ClientAccountNumber]
		if !ok {
			p.log.Warn("Client not found for positions", "client_account", position.ClientAccountNumber)
			return BatchStats{Skipped: 1}
		}

		alerts := p.engine.EvaluatePosition(position, client)
		if _, err := p.catalog.ReplacePositionAlerts(position.ClientAccountNumber, alerts); err != nil {
			p.log.Error("Failed to store acquisition alerts", err, "client_account", position.ClientAccountNumber)
			return BatchStats{Processed: 1, Failed: 1}
		}
		return p.succeeded(alerts)
	}, stats.Positions.merge(stats))
	return nil
}

func (p *AlertPipeline) succeeded(alerts []models.Alert) BatchStats {
	if p.recorder != nil {
		p.recorder.RecordAlerts(alerts)
	}
	b := BatchStats{Processed: 1, Succeeded: 1, Alerts: len(alerts), ByType: make(map[models.AlertType]int)}
	for _, a := range alerts {
		b.ByType[a.Type]++
	}
	return b
}

// runBatches splits [0, n) into batches processed under a semaphore. merge is
// called with each batch's totals while holding the stats lock.
func runBatches(ctx context.Context, n int, config PipelineConfig, process func(i int) BatchStats, merge func(BatchStats)) {
	semaphore := make(chan struct{}, config.MaxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for start := 0; start < n; start += config.BatchSize {
		end := start + config.BatchSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			batch := BatchStats{ByType: make(map[models.AlertType]int)}
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					break
				}
				batch.add(process(i))
			}

			mu.Lock()
			merge(batch)
			mu.Unlock()
		}(start, end)
	}

	wg.Wait()
}

// BatchStats totals one batch of records
type BatchStats struct {
	Processed int                      `json:"processed"`
	Succeeded int                      `json:"succeeded"`
	Failed    int                      `json:"failed"`
	Skipped   int                      `json:"skipped"`
	Alerts    int                      `json:"alerts"`
	ByType    map[models.AlertType]int `json:"-"`
}

func (b *BatchStats) add(o BatchStats) {
	b.Processed += o.Processed
	b.Succeeded += o.Succeeded
	b.Failed += o.Failed
	b.Skipped += o.Skipped
	b.Alerts += o.Alerts
	for k, v := range o.ByType {
		b.ByType[k] += v
	}
}

// ScopeStats totals one record kind across a cycle
type ScopeStats struct {
	Found int `json:"found"`
	BatchStats
}

// merge returns a callback folding batch totals into s and the cycle-wide type counts
func (s *ScopeStats) merge(stats *PipelineStats) func(BatchStats) {
	s.ByType = make(map[models.AlertType]int)
	return func(b BatchStats) {
		s.add(b)
		for k, v := range b.ByType {
			stats.AlertsByType[k] += v
		}
	}
}

// PipelineStats describes one completed cycle
type PipelineStats struct {
	StartTime    time.Time                `json:"start_time"`
	EndTime      time.Time                `json:"end_time"`
	Duration     time.Duration            `json:"duration"`
	Scope        string                   `json:"scope"`
	Policies     ScopeStats               `json:"policies"`
	Positions    ScopeStats               `json:"positions"`
	AlertsByType map[models.AlertType]int `json:"alerts_by_type"`
}

// TotalAlerts is the number of alerts produced across both scopes
func (s *PipelineStats) TotalAlerts() int {
	return s.Policies.Alerts + s.Positions.Alerts
}

func (s *PipelineStats) Summary() string {
	return fmt.Sprintf("policies=%d/%d (skipped=%d, failed=%d), positions=%d/%d (skipped=%d, failed=%d), alerts=%d, duration=%v",
		s.Policies.Succeeded, s.Policies.Found, s.Policies.Skipped, s.Policies.Failed,
		s.Positions.Succeeded, s.Positions.Found, s.Positions.Skipped, s.Positions.Failed,
		s.TotalAlerts(), s.Duration.Round(time.Millisecond))
}
