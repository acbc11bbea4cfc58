package evidence

import (
	"context"
	"sync"

	"asset-guardian/internal/snapshot"
	"asset-guardian/internal/types"
)

const midFavorableScore = 2

// MidHorizon scores regime, analog events, peer strength and the technical band.
type MidHorizon struct {
	fetch   *snapshot.Fetcher
	markets MarketSymbols
	peers   *PeerSelector
}

func NewMidHorizon(fetch *snapshot.Fetcher, markets MarketSymbols, peers *PeerSelector) *MidHorizon {
	return &MidHorizon{fetch: fetch, markets: markets, peers: peers}
}

// Analyze fetches its auxiliary series concurrently and waits for all of them.
// A failed fetch only empties the sub-result that needed it.
func (m *MidHorizon) Analyze(ctx context.Context, snap *types.TickerSnapshot) types.MidResult {
	if snap == nil || snap.Prices.Empty() {
		return types.MidResult{Error: insufficient("mid", "no 2-year price history").Error()}
	}
	security := snap.Prices.Tail(types.Window2Y)

	ms := MarketSeries{BenchmarkSymbol: m.markets.Benchmark(snap.Symbol)}
	var peer types.PeerComparison

	var wg sync.WaitGroup
	get := func(dst *types.PriceSeries, symbol string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			*dst = m.fetch.Prices(ctx, symbol, types.Window2Y)
		}()
	}
	get(&ms.Benchmark, ms.BenchmarkSymbol)
	get(&ms.Volatility, m.markets.Volatility)
	get(&ms.Dollar, m.markets.Dollar)
	if types.IsDomestic(snap.Symbol) {
		get(&ms.FX, m.markets.DomesticFX)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		peer.Proxy = m.peers.Select(ctx, snap.Symbol, snap.Info)
		if peer.Proxy.Instrument == "" {
			peer.Relative = types.RelativePerformance{Reason: "no peer proxy"}
			return
		}
		peerPrices := m.fetch.Prices(ctx, peer.Proxy.Instrument, types.Window2Y)
		peer.Relative = CompareWithPeer(security, peerPrices, peer.Proxy.Instrument)
	}()
	wg.Wait()

	ev := &types.MidEvidence{
		Regime:     ScoreRegime(ms),
		EventStudy: StudyVolatilitySpikes(security, ms.Benchmark, ms.Volatility),
		Peer:       peer,
		Technical:  TechnicalRiskReward(security),
	}
	ev.Score = midScore(ev)
	return types.MidResult{Evidence: ev, Outlook: midOutlook(ev.Score)}
}

func midScore(ev *types.MidEvidence) int {
	score := 0
	switch ev.Regime.Label {
	case types.RegimeCalm:
		score++
	case types.RegimeStressed:
		score--
	}
	switch ev.EventStudy.Verdict {
	case types.EventStrong:
		score++
	case types.EventWeak:
		score--
	}
	if ev.Peer.Relative.Available {
		if ex := ev.Peer.Relative.SixMonth.Excess; ex != nil {
			switch {
			case *ex > 0:
				score++
			case *ex < 0:
				score--
			}
		}
	}
	switch ev.Technical.Verdict {
	case types.TechUpsideFavored:
		score++
	case types.TechDownsideRisk:
		score--
	}
	return score
}

func midOutlook(score int) types.Outlook {
	switch {
	case score >= midFavorableScore:
		return types.OutlookFavorable
	case score <= -midFavorableScore:
		return types.OutlookUnfavorable
	default:
		return types.OutlookMixed
	}
}
