// Package jobs dispatches the pipeline's discrete batch jobs and records
// their runs.
//
// Every invocation writes a RUNNING job row first and exactly one terminal
// update (COMPLETED or FAILED) after. A process that dies in between leaves
// the row RUNNING; detecting and requeueing stuck runs is a deployment
// concern, not handled here.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/awynne/lookout/internal/alerts"
	"github.com/awynne/lookout/internal/brain"
	"github.com/awynne/lookout/internal/classify"
	"github.com/awynne/lookout/internal/cluster"
	"github.com/awynne/lookout/internal/config"
	"github.com/awynne/lookout/internal/fetch"
	"github.com/awynne/lookout/internal/logging"
	"github.com/awynne/lookout/internal/model"
	"github.com/awynne/lookout/internal/store"
)

// Job names accepted by Run.
const (
	JobFetchSources = "fetch_sources"
	JobNormalize    = "normalize"
	JobCluster      = "dedupe_and_cluster"
	JobAnalyze      = "summarize_and_analyze"
	JobAlerts       = "alerts"
	JobFullPipeline = "full_pipeline"
)

// pipelineOrder is the fixed stage order of full_pipeline.
var pipelineOrder = []string{JobFetchSources, JobNormalize, JobCluster, JobAnalyze, JobAlerts}

const maxErrorLen = 500

// Runner wires the pipeline stages over one store and config snapshot.
type Runner struct {
	store     *store.Store
	snap      *config.Snapshot
	fetcher   *fetch.Fetcher
	clusterer *cluster.Clusterer
	matcher   *alerts.Matcher
	analyzer  classify.Analyzer
	now       func() time.Time
}

// New builds a Runner. The analyzer strategy comes from the snapshot:
// "rules" is the deterministic default, "llm" wraps it with a provider that
// fails soft back to the rules.
func New(st *store.Store, snap *config.Snapshot) *Runner {
	var analyzer classify.Analyzer = classify.NewRuleAnalyzer()
	if snap.Analysis.Strategy == "llm" {
		provider := brain.New(snap.Analysis.Provider, snap.Analysis.Endpoint, snap.Analysis.APIKey, snap.Analysis.Model)
		if provider != nil {
			analyzer = classify.NewLLMAnalyzer(provider)
		} else {
			logging.Warn("Unknown LLM provider, using rule analyzer", "provider", snap.Analysis.Provider)
		}
	}

	return &Runner{
		store:     st,
		snap:      snap,
		fetcher:   fetch.New(snap.Fetch),
		clusterer: cluster.New(st),
		matcher:   alerts.New(st),
		analyzer:  analyzer,
		now:       time.Now,
	}
}

// Run executes the named job, records its run, and returns the processed
// item count. On failure the job row records FAILED with a truncated
// message and a zero count - partial counts are not persisted - and the
// error is returned to the caller.
func (r *Runner) Run(ctx context.Context, name string) (int, error) {
	if !knownJob(name) {
		return 0, fmt.Errorf("unknown job %q", name)
	}

	runID, err := r.store.StartJobRun(ctx, name, r.now())
	if err != nil {
		return 0, fmt.Errorf("record job start: %w", err)
	}

	logging.Info("Job started", "job", name)
	count, err := r.execute(ctx, name)
	if err != nil {
		if ferr := r.store.FinishJobRun(ctx, runID, model.JobFailed, 0, truncateError(err), r.now()); ferr != nil {
			logging.Error("Failed to record job failure", "job", name, "error", ferr)
		}
		logging.Error("Job failed", "job", name, "error", err)
		return 0, err
	}

	if err := r.store.FinishJobRun(ctx, runID, model.JobCompleted, count, "", r.now()); err != nil {
		return count, fmt.Errorf("record job finish: %w", err)
	}
	logging.Info("Job completed", "job", name, "items", count)
	return count, nil
}

func (r *Runner) execute(ctx context.Context, name string) (int, error) {
	switch name {
	case JobFetchSources:
		return r.fetchSources(ctx)
	case JobNormalize:
		return r.normalize(ctx)
	case JobCluster:
		res, err := r.clusterer.Run(ctx, r.snap)
		return res.ItemsProcessed, err
	case JobAnalyze:
		return r.analyze(ctx)
	case JobAlerts:
		return r.matcher.Run(ctx, r.snap.Fetch.BatchSize)
	case JobFullPipeline:
		return r.fullPipeline(ctx)
	}
	return 0, fmt.Errorf("unknown job %q", name)
}

// fullPipeline runs the five stages in their fixed order, aggregating
// counts. The first stage error fails the whole run.
func (r *Runner) fullPipeline(ctx context.Context) (int, error) {
	var total int
	for _, stage := range pipelineOrder {
		count, err := r.execute(ctx, stage)
		if err != nil {
			return 0, fmt.Errorf("stage %s: %w", stage, err)
		}
		total += count
	}
	return total, nil
}

func (r *Runner) fetchSources(ctx context.Context) (int, error) {
	if err := r.store.SyncSources(ctx, r.snap.ModelSources()); err != nil {
		return 0, fmt.Errorf("sync sources: %w", err)
	}

	items, err := r.fetcher.FetchAll(ctx, r.snap)
	if err != nil {
		return 0, fmt.Errorf("fetch sources: %w", err)
	}

	saved, err := r.store.SaveRawItems(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("save items: %w", err)
	}
	return saved, nil
}

func (r *Runner) normalize(ctx context.Context) (int, error) {
	items, err := r.store.ItemsNeedingChecksum(ctx, r.snap.Fetch.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("load items: %w", err)
	}

	var count int
	for _, item := range items {
		text := fetch.NormalizeText(item.Content)
		if err := r.store.UpdateNormalized(ctx, item.ID, text, fetch.Checksum(text)); err != nil {
			// Per-item failures don't abort the batch.
			logging.Warn("Normalize failed for item", "id", item.ID, "error", err)
			continue
		}
		count++
	}
	return count, nil
}

func (r *Runner) analyze(ctx context.Context) (int, error) {
	clusters, err := r.store.ClustersNeedingAnalysis(ctx, r.snap.Fetch.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("load clusters: %w", err)
	}

	var count int
	for _, cl := range clusters {
		items, err := r.store.ItemsForCluster(ctx, cl.ID)
		if err != nil {
			return count, fmt.Errorf("load items for cluster %s: %w", cl.ID, err)
		}
		// A cluster with no linked items is skipped, not an error.
		if len(items) == 0 {
			continue
		}

		result := r.analyzer.Analyze(ctx, items, r.snap)
		sum := &model.StorySummary{
			ClusterID:    cl.ID,
			Competitor:   result.Competitor,
			Vertical:     result.Vertical,
			Capabilities: result.Capabilities,
			Summary:      result.Summary,
			KeyPoints:    result.KeyPoints,
			WhyItMatters: result.WhyItMatters,
			Actions:      result.Actions,
			Priority:     result.Priority,
			Confidence:   result.Confidence,
			Verification: result.Verification,
			Citations:    result.Citations,
			CreatedAt:    r.now(),
		}
		if err := r.store.SaveSummary(ctx, sum); err != nil {
			return count, fmt.Errorf("save summary for cluster %s: %w", cl.ID, err)
		}
		count++
	}
	return count, nil
}

func knownJob(name string) bool {
	switch name {
	case JobFetchSources, JobNormalize, JobCluster, JobAnalyze, JobAlerts, JobFullPipeline:
		return true
	}
	return false
}

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > maxErrorLen {
		return msg[:maxErrorLen]
	}
	return msg
}
