package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pushpulse/internal/analysis"
	"pushpulse/internal/dataset"
	"pushpulse/internal/infrastructure"
)

// DatasetInfo describes the currently loaded delivery report.
type DatasetInfo struct {
	Source   string         `json:"source"`
	Rows     int            `json:"rows"`
	LoadedAt time.Time      `json:"loaded_at"`
	Observed ObservedValues `json:"observed"`
}

// ObservedValues holds the distinct dimension values of the loaded
// report in first-seen order. The presentation layer uses them as the
// default (select-everything) filter state.
type ObservedValues struct {
	Days     []string `json:"days"`
	Entities []string `json:"entities"`
	Slots    []string `json:"slots"`
}

// AnalysisService owns the one shared dataset and runs the comparison
// pipeline synchronously per request. There is no caching of partial
// results: every call recomputes from the loaded rows.
type AnalysisService struct {
	loader   *dataset.Loader
	analyzer *analysis.Analyzer
	logger   *slog.Logger
	metrics  *infrastructure.Metrics

	mu       sync.RWMutex
	records  []dataset.RateRecord
	observed ObservedValues
	source   string
	loadedAt time.Time
}

// NewAnalysisService creates the analysis service. metrics may be nil in
// tests and CLI use.
func NewAnalysisService(loader *dataset.Loader, analyzer *analysis.Analyzer, logger *slog.Logger, metrics *infrastructure.Metrics) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		loader:   loader,
		analyzer: analyzer,
		logger:   logger.With(slog.String("component", "analysis_service")),
		metrics:  metrics,
	}
}

// LoadFromFile replaces the dataset with the report at path.
func (s *AnalysisService) LoadFromFile(ctx context.Context, path string) error {
	records, err := s.loader.LoadFile(path)
	if err != nil {
		return err
	}
	s.install(ctx, records, filepath.Base(path))
	return nil
}

// LoadFromReader replaces the dataset with an uploaded report stream.
// The filename decides the format: .xlsx parses as a workbook, anything
// else as delimited text.
func (s *AnalysisService) LoadFromReader(ctx context.Context, r io.Reader, filename string) error {
	var (
		records []dataset.Record
		err     error
	)
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		records, err = s.loader.LoadXLSXReader(r)
	} else {
		records, err = s.loader.LoadCSV(r)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", filename, err)
	}
	if len(records) == 0 {
		return ErrEmptyUpload
	}
	s.install(ctx, records, filename)
	return nil
}

func (s *AnalysisService) install(ctx context.Context, records []dataset.Record, source string) {
	rated := dataset.ComputeRates(records)
	observed := observeValues(rated)

	s.mu.Lock()
	s.records = rated
	s.observed = observed
	s.source = source
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.DatasetLoads.Inc()
		s.metrics.DatasetRows.Set(float64(len(rated)))
	}

	s.logger.InfoContext(ctx, "dataset installed",
		slog.String("source", source),
		slog.Int("rows", len(rated)),
		slog.Int("days", len(observed.Days)),
		slog.Int("entities", len(observed.Entities)),
		slog.Int("slots", len(observed.Slots)),
	)
}

// Info returns metadata about the loaded dataset.
func (s *AnalysisService) Info(ctx context.Context) (DatasetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.records == nil {
		return DatasetInfo{}, ErrNoDataset
	}
	return DatasetInfo{
		Source:   s.source,
		Rows:     len(s.records),
		LoadedAt: s.loadedAt,
		Observed: s.observed,
	}, nil
}

// Summaries computes the overview open-rate means per selected platform
// over the filtered rows.
func (s *AnalysisService) Summaries(ctx context.Context, filter analysis.Filter, platforms []dataset.Platform) ([]analysis.Summary, error) {
	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()
	if records == nil {
		return nil, ErrNoDataset
	}
	if len(platforms) == 0 {
		platforms = dataset.AllPlatforms
	}
	if err := validatePlatforms(platforms); err != nil {
		return nil, err
	}
	return analysis.Summarize(filter.Apply(records), platforms), nil
}

// Compare runs the variant comparison for the given request.
func (s *AnalysisService) Compare(ctx context.Context, req analysis.Request) (*analysis.Report, error) {
	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()
	if records == nil {
		return nil, ErrNoDataset
	}
	if len(req.Platforms) == 0 {
		req.Platforms = dataset.AllPlatforms
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	report := s.analyzer.Compare(ctx, records, req)
	if s.metrics != nil {
		s.metrics.Comparisons.Inc()
	}
	return report, nil
}

// validateRequest rejects grouping columns and platforms outside the
// report schema. The HTTP layer validates too, but other callers reach
// the service directly.
func validateRequest(req analysis.Request) error {
	for _, col := range req.GroupBy {
		if !col.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownGroupColumn, string(col))
		}
	}
	return validatePlatforms(req.Platforms)
}

func validatePlatforms(platforms []dataset.Platform) error {
	for _, p := range platforms {
		if !p.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownPlatform, string(p))
		}
	}
	return nil
}

// observeValues collects distinct dimension values in first-seen order.
func observeValues(records []dataset.RateRecord) ObservedValues {
	var obs ObservedValues
	seenDays := make(map[string]struct{})
	seenEntities := make(map[string]struct{})
	seenSlots := make(map[string]struct{})

	for _, r := range records {
		if _, ok := seenDays[r.Day]; !ok {
			seenDays[r.Day] = struct{}{}
			obs.Days = append(obs.Days, r.Day)
		}
		if _, ok := seenEntities[r.Entity]; !ok {
			seenEntities[r.Entity] = struct{}{}
			obs.Entities = append(obs.Entities, r.Entity)
		}
		if _, ok := seenSlots[r.Slot]; !ok {
			seenSlots[r.Slot] = struct{}{}
			obs.Slots = append(obs.Slots, r.Slot)
		}
	}
	return obs
}
