package evidence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/logger"
	"asset-guardian/internal/metrics"
	"asset-guardian/internal/snapshot"
	"asset-guardian/internal/trace"
	"asset-guardian/internal/types"
)

// Analyzer runs the three horizons over one snapshot.
type Analyzer struct {
	assembler *snapshot.Assembler
	mid       *MidHorizon
	metrics   *metrics.Recorder
	now       func() time.Time
}

var _ interfaces.EvidenceAnalyzer = (*Analyzer)(nil)

type options struct {
	markets  MarketSymbols
	peers    PeerTable
	inferrer SectorInferrer
	metrics  *metrics.Recorder
	now      func() time.Time
}

type Option func(*options)

func WithMarketSymbols(m MarketSymbols) Option {
	return func(o *options) { o.markets = m }
}

func WithPeerTable(t PeerTable) Option {
	return func(o *options) { o.peers = t }
}

// WithSectorInferrer replaces the keyword heuristic used for domestic symbols.
func WithSectorInferrer(s SectorInferrer) Option {
	return func(o *options) { o.inferrer = s }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func NewAnalyzer(fetch *snapshot.Fetcher, opts ...Option) *Analyzer {
	o := options{
		markets:  DefaultMarketSymbols,
		peers:    DefaultPeerTable,
		inferrer: DefaultKeywordInferrer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Analyzer{
		assembler: snapshot.NewAssembler(fetch),
		mid:       NewMidHorizon(fetch, o.markets, NewPeerSelector(fetch, o.peers, o.inferrer)),
		metrics:   o.metrics,
		now:       o.now,
	}
}

// Analyze assembles the snapshot and evaluates the horizons concurrently.
// Only snapshot assembly can fail the call; horizon failures land in the result.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (*types.AnalysisResult, error) {
	snap, err := a.assembler.Load(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return a.Evaluate(ctx, snap), nil
}

// Evaluate runs the horizons over an already assembled snapshot.
func (a *Analyzer) Evaluate(ctx context.Context, snap *types.TickerSnapshot) *types.AnalysisResult {
	res := &types.AnalysisResult{
		RunID:  uuid.NewString(),
		Symbol: snap.Symbol,
		AsOf:   a.now(),
	}
	if cur, ok := snap.Info.Text("currency"); ok {
		res.Currency = cur
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_, span := horizonSpan(ctx, snap.Symbol, types.HorizonLong)
		defer func() { trace.EndHorizon(span, string(res.Long.Outlook), res.Long.Error) }()
		defer recoverHorizon(ctx, types.HorizonLong, func(msg string) { res.Long = types.LongResult{Error: msg} })
		res.Long = AnalyzeLong(snap)
	}()
	go func() {
		defer wg.Done()
		hctx, span := horizonSpan(ctx, snap.Symbol, types.HorizonMid)
		defer func() { trace.EndHorizon(span, string(res.Mid.Outlook), res.Mid.Error) }()
		defer recoverHorizon(hctx, types.HorizonMid, func(msg string) { res.Mid = types.MidResult{Error: msg} })
		res.Mid = a.mid.Analyze(hctx, snap)
	}()
	go func() {
		defer wg.Done()
		_, span := horizonSpan(ctx, snap.Symbol, types.HorizonShort)
		defer func() { trace.EndHorizon(span, string(res.Short.Outlook), res.Short.Error) }()
		defer recoverHorizon(ctx, types.HorizonShort, func(msg string) { res.Short = types.ShortResult{Error: msg} })
		res.Short = AnalyzeShort(snap)
	}()
	wg.Wait()

	res.Summary = types.Summary{
		LongOutlook:  res.Long.Outlook,
		MidOutlook:   res.Mid.Outlook,
		ShortOutlook: res.Short.Outlook,
	}
	a.report(ctx, res)
	return res
}

func horizonSpan(ctx context.Context, symbol string, h types.Horizon) (context.Context, oteltrace.Span) {
	return trace.StartSymbolSpan(ctx, "evidence.horizon."+string(h), symbol, trace.HorizonKey.String(string(h)))
}

// recoverHorizon turns a panic inside one horizon into that horizon's error.
func recoverHorizon(ctx context.Context, h types.Horizon, set func(string)) {
	r := recover()
	if r == nil {
		return
	}
	err := insufficient(string(h), "internal error: %v", r)
	logger.ErrorWithErr(ctx, "Horizon panicked", err, "horizon", h)
	set(err.Error())
}

func (a *Analyzer) report(ctx context.Context, res *types.AnalysisResult) {
	for _, h := range []struct {
		horizon types.Horizon
		outlook types.Outlook
		err     string
	}{
		{types.HorizonLong, res.Long.Outlook, res.Long.Error},
		{types.HorizonMid, res.Mid.Outlook, res.Mid.Error},
		{types.HorizonShort, res.Short.Outlook, res.Short.Error},
	} {
		if h.err != "" {
			a.metrics.RecordHorizon(string(h.horizon), "error")
			logger.Warn(ctx, "Horizon unavailable", "symbol", res.Symbol, "horizon", h.horizon, "reason", h.err)
			continue
		}
		a.metrics.RecordHorizon(string(h.horizon), string(h.outlook))
		logger.Outlook(ctx, res.Symbol, string(h.horizon), string(h.outlook), "run_id", res.RunID)
	}
}
