package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/apperrors"
	"github.com/genbi-ai/genbi-engine/pkg/catalog"
	"github.com/genbi-ai/genbi-engine/pkg/monitor"
)

// SystemStatus reports the health of every sub-component plus whether
// the catalog has been built.
type SystemStatus struct {
	Orchestrator        string     `json:"orchestrator"`
	Synthesizer         string     `json:"synthesizer"`
	Database            string     `json:"database"`
	SystemInitialized   bool       `json:"system_initialized"`
	CatalogBuilt        bool       `json:"catalog_built"`
	TableCount          int        `json:"table_count"`
	CatalogVersion      string     `json:"catalog_version"`
	CatalogLastUpdated  *time.Time `json:"catalog_last_updated,omitempty"`
	LastWorkflowSuccess bool       `json:"last_workflow_success"`
	ResultCache         CacheStats `json:"result_cache"`
	PromptCache         CacheStats `json:"prompt_cache"`
}

// CacheStats summarizes one cache's activity.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// InitializeSystem discovers the target schema and builds the catalog.
// Repeated calls against an already built catalog are no-ops.
func (o *Orchestrator) InitializeSystem(ctx context.Context) error {
	o.mu.Lock()
	alreadyBuilt := o.initialized
	o.mu.Unlock()
	if alreadyBuilt && o.store.Built() {
		o.logger.Info("system already initialized")
		return nil
	}
	return o.rebuildCatalog(ctx)
}

// RefreshSystem discards all session-scoped caches and rebuilds the
// catalog from scratch. In-flight runs keep the snapshot they started
// with; the swap is atomic.
func (o *Orchestrator) RefreshSystem(ctx context.Context) error {
	o.results.Clear()
	o.prompts.Clear()

	o.mu.Lock()
	o.sessionContexts = make(map[string]string)
	o.mu.Unlock()

	return o.rebuildCatalog(ctx)
}

func (o *Orchestrator) rebuildCatalog(ctx context.Context) error {
	cat, err := catalog.Discover(ctx, o.conn, o.cfg.Datasource.Database, o.logger)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	o.store.Swap(cat)

	if err := catalog.SaveSnapshot(o.cfg.CatalogPath, cat); err != nil {
		// Persistence failure is not fatal: the in-memory catalog is
		// complete and the snapshot is rewritten on the next refresh.
		o.logger.Warn("could not persist catalog snapshot",
			zap.String("path", o.cfg.CatalogPath), zap.Error(err))
	}

	o.mu.Lock()
	o.initialized = true
	o.mu.Unlock()

	o.logger.Info("catalog built",
		zap.Int("tables", cat.TableCount()),
		zap.Int("relationships", cat.Stats().RelationshipCount))
	return nil
}

// SystemStatus checks every sub-component and returns one report.
func (o *Orchestrator) SystemStatus(ctx context.Context) SystemStatus {
	database := "connected"
	if err := o.conn.Ping(ctx); err != nil {
		database = "disconnected"
	}

	o.mu.Lock()
	initialized := o.initialized
	lastSuccess := o.lastWorkflow != nil
	o.mu.Unlock()

	status := SystemStatus{
		Orchestrator:        "active",
		Synthesizer:         "active",
		Database:            database,
		SystemInitialized:   initialized,
		CatalogBuilt:        o.store.Built(),
		CatalogVersion:      o.store.Version(),
		LastWorkflowSuccess: lastSuccess,
		ResultCache:         cacheStats(o.results.Len(), o.results.Stats),
		PromptCache:         cacheStats(o.prompts.Len(), o.prompts.Stats),
	}
	if cat := o.store.Snapshot(); cat != nil {
		status.TableCount = cat.TableCount()
		updated := o.store.LastUpdated()
		status.CatalogLastUpdated = &updated
	}
	return status
}

func cacheStats(entries int, stats func() (hits, misses int64)) CacheStats {
	hits, misses := stats()
	return CacheStats{Entries: entries, Hits: hits, Misses: misses}
}

// PerformanceReport exposes the monitoring recorder's 24h summary.
func (o *Orchestrator) PerformanceReport() monitor.Report {
	return o.recorder.PerformanceReport()
}

// ValidateCatalog runs the advisory graph checks against the current
// snapshot.
func (o *Orchestrator) ValidateCatalog() (catalog.Findings, error) {
	cat := o.store.Snapshot()
	if cat == nil || cat.TableCount() == 0 {
		return catalog.Findings{}, apperrors.ErrCatalogNotBuilt
	}
	return catalog.Validate(cat), nil
}

// BusinessContext is the payload of an add_business_context task. All
// fields are optional; present entries are appended to the catalog.
type BusinessContext struct {
	Metrics    map[string]string `json:"metrics,omitempty"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
	Joins      map[string]string `json:"joins,omitempty"`
	Rules      []string          `json:"rules,omitempty"`
	Glossary   map[string]string `json:"glossary,omitempty"`
}

// AddBusinessContext appends business metadata to the live catalog and
// re-persists the snapshot. Appends are serialized by the store.
func (o *Orchestrator) AddBusinessContext(bc BusinessContext) error {
	if !o.store.Built() {
		return apperrors.ErrCatalogNotBuilt
	}

	for name, expr := range bc.Metrics {
		o.store.AddBusinessMetric(name, expr)
	}
	for name, ref := range bc.Dimensions {
		o.store.AddBusinessDimension(name, ref)
	}
	for name, join := range bc.Joins {
		o.store.AddCommonJoin(name, join)
	}
	for _, rule := range bc.Rules {
		o.store.AddBusinessRule(rule)
	}
	for term, def := range bc.Glossary {
		o.store.AddGlossaryTerm(term, def)
	}

	if err := catalog.SaveSnapshot(o.cfg.CatalogPath, o.store.Snapshot()); err != nil {
		o.logger.Warn("could not persist catalog snapshot", zap.Error(err))
	}
	return nil
}
