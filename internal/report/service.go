package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/logger"
	"asset-guardian/internal/metrics"
	"asset-guardian/internal/reportcache"
	"asset-guardian/internal/types"
)

// Service returns at most one generated report per symbol and calendar day.
// Two concurrent misses both generate; the later Put wins.
type Service struct {
	store     interfaces.ReportStore
	generator interfaces.ReportGenerator
	loc       *time.Location
	metrics   *metrics.Recorder
	now       func() time.Time
}

type Option func(*Service)

func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store interfaces.ReportStore, gen interfaces.ReportGenerator, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{store: store, generator: gen, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the report already stored for symbol on the current day,
// letting callers skip analysis entirely. Misses and read failures report false.
func (s *Service) Today(ctx context.Context, symbol string) (*types.Report, bool) {
	day := types.ReportDay(s.now(), s.loc)
	rep, err := s.store.Get(ctx, symbol, day)
	if err != nil {
		if !errors.Is(err, reportcache.ErrNotFound) {
			logger.Warn(ctx, "Report cache read failed", "symbol", symbol, "day", day, "error", err)
		}
		return nil, false
	}
	s.metrics.RecordReportCache("hit")
	logger.Debug(ctx, "Report cache hit", "symbol", symbol, "day", day)
	return rep, true
}

// GetOrCreate returns today's cached report for res.Symbol, generating and
// storing one on a miss. cached reports whether the report came from the store.
func (s *Service) GetOrCreate(ctx context.Context, res *types.AnalysisResult) (rep *types.Report, cached bool, err error) {
	asOf := res.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}
	day := types.ReportDay(asOf, s.loc)

	hit, err := s.store.Get(ctx, res.Symbol, day)
	switch {
	case err == nil:
		s.metrics.RecordReportCache("hit")
		logger.Debug(ctx, "Report cache hit", "symbol", res.Symbol, "day", day)
		return hit, true, nil
	case errors.Is(err, reportcache.ErrNotFound):
		s.metrics.RecordReportCache("miss")
	default:
		// Read failures fall through to regeneration.
		s.metrics.RecordReportCache("error")
		logger.Warn(ctx, "Report cache read failed", "symbol", res.Symbol, "day", day, "error", err)
	}

	payload := BuildPayload(res, res.Currency)
	content, err := s.generator.Generate(ctx, res.Symbol, payload)
	if err != nil {
		return nil, false, fmt.Errorf("generate report for %s: %w", res.Symbol, err)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false, fmt.Errorf("encode payload: %w", err)
	}

	rep = &types.Report{
		Symbol:    res.Symbol,
		Date:      day,
		RunID:     res.RunID,
		Provider:  s.generator.Name(),
		Content:   content,
		Payload:   raw,
		CreatedAt: s.now(),
	}
	if err := s.store.Put(ctx, rep); err != nil {
		logger.ErrorWithErr(ctx, "Failed to cache report", err, "symbol", res.Symbol, "day", day)
	}
	return rep, false, nil
}
