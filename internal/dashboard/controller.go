// Package dashboard owns the current dashboard stats per directory and
// serializes analysis runs against them.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dsablic/klio/internal/analysis"
	"github.com/dsablic/klio/internal/model"
)

// ErrStale is returned when an analysis finished after its directory was
// invalidated. The result is discarded.
var ErrStale = errors.New("analysis result discarded: directory is no longer selected")

// Analyzer runs a server-side analysis.
type Analyzer interface {
	Analyze(ctx context.Context, dirID string) (model.RawAnalysis, error)
}

// Controller holds the last committed stats for each directory. Concurrent
// Analyze calls for one directory share a single backend request.
type Controller struct {
	analyzer Analyzer
	store    SnapshotStore
	logger   *zap.Logger
	now      func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	gens    map[string]uint64
	current map[string]model.Snapshot
}

// NewController creates a controller. store may be nil to skip caching.
func NewController(analyzer Analyzer, store SnapshotStore, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		analyzer: analyzer,
		store:    store,
		logger:   logger,
		now:      time.Now,
		gens:     make(map[string]uint64),
		current:  make(map[string]model.Snapshot),
	}
}

// Analyze runs an analysis of dirID, normalizes it and commits it as the
// directory's current stats. On failure the previous stats are kept. If
// Invalidate was called for dirID while the request was in flight the
// result is dropped and ErrStale returned.
//
// The backend request is shared by every caller for dirID and is not tied to
// any one caller's context; a caller whose ctx ends stops waiting without
// failing the others.
func (c *Controller) Analyze(ctx context.Context, dirID string) (model.DashboardStats, error) {
	gen := c.generation(dirID)

	ch := c.group.DoChan(dirID, func() (any, error) {
		raw, err := c.analyzer.Analyze(context.WithoutCancel(ctx), dirID)
		if err != nil {
			return nil, err
		}
		stats := analysis.Normalize(raw, c.now())
		c.checkTotals(dirID, raw, stats)
		return stats, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return model.DashboardStats{}, fmt.Errorf("analyze %s: %w", dirID, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return model.DashboardStats{}, fmt.Errorf("analyze %s: %w", dirID, res.Err)
	}
	stats := res.Val.(model.DashboardStats)
	if res.Shared {
		c.logger.Debug("joined in-flight analysis", zap.String("directory", dirID))
	}

	snap, ok := c.commit(dirID, gen, stats)
	if !ok {
		c.logger.Info("dropping stale analysis", zap.String("directory", dirID))
		return model.DashboardStats{}, ErrStale
	}

	if c.store != nil {
		if err := c.store.Save(ctx, snap); err != nil {
			c.logger.Warn("save snapshot", zap.String("directory", dirID), zap.Error(err))
		}
	}
	return stats, nil
}

// checkTotals logs when the backend's own counters disagree with the
// normalized ones. The normalized counters are what gets shown.
func (c *Controller) checkTotals(dirID string, raw model.RawAnalysis, stats model.DashboardStats) {
	if (raw.TotalFiles == 0 || raw.TotalFiles == stats.DocCount) &&
		(raw.TotalSensitive == 0 || raw.TotalSensitive == stats.SensitiveDocuments) {
		return
	}
	c.logger.Debug("backend totals differ from normalized stats",
		zap.String("directory", dirID),
		zap.Int("backend_files", raw.TotalFiles),
		zap.Int("doc_count", stats.DocCount),
		zap.Int("backend_sensitive", raw.TotalSensitive),
		zap.Int("sensitive_documents", stats.SensitiveDocuments))
}

// Invalidate marks every in-flight analysis of dirID as stale. Call it when
// the user leaves the directory.
func (c *Controller) Invalidate(dirID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[dirID]++
}

// Current returns the committed stats for dirID from this process.
func (c *Controller) Current(dirID string) (model.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.current[dirID]
	return snap, ok
}

// Snapshot returns the committed stats for dirID, falling back to the
// snapshot store.
func (c *Controller) Snapshot(ctx context.Context, dirID string) (model.Snapshot, error) {
	if snap, ok := c.Current(dirID); ok {
		return snap, nil
	}
	if c.store == nil {
		return model.Snapshot{}, ErrNoSnapshot
	}
	return c.store.Load(ctx, dirID)
}

func (c *Controller) generation(dirID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[dirID]
}

func (c *Controller) commit(dirID string, gen uint64, stats model.DashboardStats) (model.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[dirID] != gen {
		return model.Snapshot{}, false
	}
	snap := model.Snapshot{
		DirectoryID: dirID,
		GeneratedAt: c.now().UTC().Format(time.RFC3339),
		Stats:       stats,
	}
	c.current[dirID] = snap
	return snap, true
}
