package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"canestats/internal/aggregator"
	"canestats/internal/amqp"
	"canestats/internal/cache"
	"canestats/internal/core"
	"canestats/internal/dataset"
	"canestats/internal/log"
	"canestats/internal/metrics"
	"canestats/internal/storage"
)

var (
	// ErrNotReady is returned until a dataset has been loaded.
	ErrNotReady = errors.New("dataset not loaded")
	// ErrInvalidFilter wraps filter cascade violations.
	ErrInvalidFilter = errors.New("invalid filter")
)

// DatasetInfo describes the dataset currently served.
type DatasetInfo struct {
	SnapshotID string    `json:"snapshot_id,omitempty"`
	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loaded_at"`
	Divisions  int       `json:"divisions"`
	Districts  int       `json:"districts"`
	Records    int       `json:"records"`
}

type current struct {
	generation uint64
	ds         *core.Dataset
	info       DatasetInfo
}

// SnapshotReader resolves snapshot announcements to trees.
type SnapshotReader interface {
	Get(ctx context.Context, id string) (storage.Snapshot, []core.Division, error)
}

// ViewService serves derived dashboard views from the current dataset. The
// dataset is replaced atomically; views are memoized per dataset generation
// and filter key.
type ViewService struct {
	current    atomic.Pointer[current]
	generation atomic.Uint64

	loader    dataset.Loader
	snapshots SnapshotReader
	memo      *cache.Memo[aggregator.ViewData]
	lru       *cache.LRUCache[aggregator.ViewData]
	metrics   *metrics.Metrics
	logger    *log.StructuredLogger

	baseMonth, targetMonth string
}

type ViewServiceOptions struct {
	Loader    dataset.Loader
	Snapshots SnapshotReader
	Metrics   *metrics.Metrics
	// Logger defaults to the process-wide slog logger.
	Logger *log.Logger

	CacheSize int
	CacheTTL  time.Duration

	CompareBaseMonth   string
	CompareTargetMonth string
}

func NewViewService(opts ViewServiceOptions) *ViewService {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CompareBaseMonth == "" {
		opts.CompareBaseMonth = aggregator.DefaultBaseMonth
	}
	if opts.CompareTargetMonth == "" {
		opts.CompareTargetMonth = aggregator.DefaultTargetMonth
	}
	if opts.Logger == nil {
		opts.Logger = log.FromContext(context.Background()).WithComponent(log.ComponentDashboard)
	}
	lru := cache.NewLRUCache[aggregator.ViewData](opts.CacheSize, opts.CacheTTL)
	return &ViewService{
		loader:      opts.Loader,
		snapshots:   opts.Snapshots,
		memo:        cache.NewMemo[aggregator.ViewData](lru),
		lru:         lru,
		metrics:     opts.Metrics,
		logger:      log.NewStructuredLogger(opts.Logger),
		baseMonth:   opts.CompareBaseMonth,
		targetMonth: opts.CompareTargetMonth,
	}
}

// Cache exposes the view cache for periodic expiry sweeps.
func (s *ViewService) Cache() cache.Cleaner {
	return s.lru
}

// Swap makes divisions the current dataset.
func (s *ViewService) Swap(divisions []core.Division, info DatasetInfo) DatasetInfo {
	ds := core.NewDataset(divisions)
	info.Divisions = len(ds.Divisions())
	info.Districts = ds.DistrictCount()
	info.Records = len(ds.Records())
	if info.LoadedAt.IsZero() {
		info.LoadedAt = time.Now()
	}

	gen := s.generation.Add(1)
	s.current.Store(&current{generation: gen, ds: ds, info: info})
	// Entries of older generations can no longer be hit.
	s.memo.Purge()

	if s.metrics != nil {
		s.metrics.DatasetRecords.Set(float64(info.Records))
		s.metrics.DatasetDivisions.Set(float64(info.Divisions))
		s.metrics.DatasetLoaded.Set(float64(info.LoadedAt.Unix()))
	}
	return info
}

// Reload reads the configured loader and swaps the result in. On failure the
// previous dataset keeps serving.
func (s *ViewService) Reload(ctx context.Context) (DatasetInfo, error) {
	if s.loader == nil {
		return DatasetInfo{}, errors.New("no dataset loader configured")
	}
	divisions, err := s.loader.Load(ctx)
	if err != nil {
		return DatasetInfo{}, fmt.Errorf("reload %s dataset: %w", s.loader.Source(), err)
	}
	info := s.Swap(divisions, DatasetInfo{Source: s.loader.Source()})
	s.logger.LogSnapshotLoaded(ctx, info.SnapshotID, info.Source, info.Records)
	return info, nil
}

// HandleSnapshot swaps in the announced snapshot.
func (s *ViewService) HandleSnapshot(ctx context.Context, msg *amqp.SnapshotPublishedMessage) error {
	if s.snapshots == nil {
		return errors.New("no snapshot store configured")
	}
	if info, ok := s.Info(); ok && info.SnapshotID == msg.SnapshotID {
		return nil
	}
	snap, divisions, err := s.snapshots.Get(ctx, msg.SnapshotID)
	if err != nil {
		return fmt.Errorf("fetch snapshot %s: %w", msg.SnapshotID, err)
	}
	info := s.Swap(divisions, DatasetInfo{SnapshotID: snap.ID, Source: snap.Source})
	s.logger.LogSnapshotLoaded(ctx, info.SnapshotID, info.Source, info.Records)
	return nil
}

// Ready reports whether a dataset is being served.
func (s *ViewService) Ready() bool {
	return s.current.Load() != nil
}

// Info describes the dataset being served.
func (s *ViewService) Info() (DatasetInfo, bool) {
	cur := s.current.Load()
	if cur == nil {
		return DatasetInfo{}, false
	}
	return cur.info, true
}

func (s *ViewService) dataset(f core.FilterState) (*current, error) {
	if err := f.Validate(); err != nil {
		if s.metrics != nil {
			s.metrics.InvalidFilters.Inc()
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	cur := s.current.Load()
	if cur == nil {
		return nil, ErrNotReady
	}
	return cur, nil
}

// View derives every view for f, memoized per dataset generation.
func (s *ViewService) View(ctx context.Context, f core.FilterState) (aggregator.ViewData, error) {
	cur, err := s.dataset(f)
	if err != nil {
		return aggregator.ViewData{}, err
	}

	key := strconv.FormatUint(cur.generation, 10) + "|" + f.Key()
	view, hit := s.memo.Get(key, func() aggregator.ViewData {
		start := time.Now()
		v := aggregator.DeriveView(cur.ds, f)
		if s.metrics != nil {
			s.metrics.ViewDuration.Observe(time.Since(start).Seconds())
		}
		return v
	})
	if s.metrics != nil {
		result := "miss"
		if hit {
			result = "hit"
		}
		s.metrics.ViewCache.WithLabelValues(result).Inc()
	}
	s.logger.LogViewDerived(ctx, f.Division(), f.District(), f.Taluka(), f.Year(), f.Month(), view.Eligible, hit)
	return view, nil
}

// Options derives only the option lists for f.
func (s *ViewService) Options(ctx context.Context, f core.FilterState) (aggregator.Options, error) {
	cur, err := s.dataset(f)
	if err != nil {
		return aggregator.Options{}, err
	}
	return aggregator.OptionsFor(cur.ds, f), nil
}

// MetricSeries derives one seasonal metric series for f.
func (s *ViewService) MetricSeries(ctx context.Context, f core.FilterState, m aggregator.Metric) (aggregator.MetricSeries, error) {
	view, err := s.View(ctx, f)
	if err != nil {
		return aggregator.MetricSeries{}, err
	}
	for _, series := range view.Metrics {
		if series.Metric == m {
			return series, nil
		}
	}
	return aggregator.MetricSeries{}, fmt.Errorf("unknown metric %q", m)
}

// Compare contrasts two months for the hierarchical scope of f. Empty month
// names fall back to the configured defaults.
func (s *ViewService) Compare(ctx context.Context, f core.FilterState, baseMonth, targetMonth string) (aggregator.Comparison, error) {
	cur, err := s.dataset(f)
	if err != nil {
		return aggregator.Comparison{}, err
	}
	if baseMonth == "" {
		baseMonth = s.baseMonth
	}
	if targetMonth == "" {
		targetMonth = s.targetMonth
	}
	return aggregator.Compare(cur.ds, f, baseMonth, targetMonth), nil
}
