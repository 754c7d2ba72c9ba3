package core

import (
	"fmt"
	"time"

	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/schema"
)

// runTracker records one command run in the history store. A tracker without
// a store or run ID does nothing.
type runTracker struct {
	store contract.HistoryStore
	runID string
}

// beginRun starts history tracking if a history store is configured.
func beginRun(mgr contract.CacheManager, command string, cfg *contract.Config) *runTracker {
	if mgr == nil {
		return &runTracker{}
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return &runTracker{}
	}

	configParams := map[string]any{
		"command":      command,
		"tfs_version":  cfg.TfsVersion.Effective().String(),
		"workers":      cfg.Workers,
		"source_paths": cfg.SourcePaths,
		"target_paths": cfg.TargetPaths,
		"input_path":   cfg.InputPath,
	}
	runID, err := store.BeginRun(time.Now(), configParams)
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return &runTracker{}
	}
	return &runTracker{store: store, runID: runID}
}

func (t *runTracker) record(teamProject string, result schema.ConfigurationComparisonResult) {
	if t.store == nil || t.runID == "" {
		return
	}
	if err := t.store.RecordItemResults(t.runID, teamProject, result); err != nil {
		contract.LogWarn(fmt.Sprintf("History tracking failed for %s", teamProject), err)
	}
}

func (t *runTracker) end(totalItems int, percentMatch float64) {
	if t.store == nil || t.runID == "" {
		return
	}
	if err := t.store.EndRun(t.runID, time.Now(), totalItems, percentMatch); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}
