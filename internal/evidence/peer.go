package evidence

import (
	"context"
	"sync"

	"asset-guardian/internal/snapshot"
	"asset-guardian/internal/ta"
	"asset-guardian/internal/types"
)

const (
	minAlignedBars = 60
	sixMonthBars   = 126
	oneYearBars    = 252
	twoYearBars    = 504
	unknownSector  = "UNKNOWN"
)

// PeerTable maps sector labels to candidate proxy instruments.
type PeerTable struct {
	Global           map[string][]string
	GlobalFallback   []string
	Domestic         map[string][]string
	DomesticFallback string
}

var DefaultPeerTable = PeerTable{
	Global: map[string][]string{
		"Technology":             {"XLK"},
		"Financial Services":     {"XLF"},
		"Financial":              {"XLF"},
		"Health Care":            {"XLV"},
		"Healthcare":             {"XLV"},
		"Consumer Cyclical":      {"XLY"},
		"Consumer Defensive":     {"XLP"},
		"Energy":                 {"XLE"},
		"Industrials":            {"XLI"},
		"Basic Materials":        {"XLB"},
		"Utilities":              {"XLU"},
		"Real Estate":            {"XLRE"},
		"Communication Services": {"XLC"},
	},
	GlobalFallback: []string{"SPY"},
	Domestic: map[string][]string{
		"IT":         {"363580.KS"},
		"HEALTHCARE": {"266420.KS"},
		"FINANCIAL":  {"091170.KS"},
		"BROAD":      {"069500.KS"},
	},
	DomesticFallback: "BROAD",
}

// PeerSelector picks the most liquid proxy for the symbol's sector.
type PeerSelector struct {
	fetch    *snapshot.Fetcher
	table    PeerTable
	domestic SectorInferrer
	global   SectorInferrer
}

func NewPeerSelector(fetch *snapshot.Fetcher, table PeerTable, domestic SectorInferrer) *PeerSelector {
	return &PeerSelector{fetch: fetch, table: table, domestic: domestic, global: IssuerSectorInferrer{}}
}

func (p *PeerSelector) candidates(symbol string, info types.IssuerInfo) (string, []string) {
	if types.IsDomestic(symbol) {
		label := p.domestic.Infer(info)
		c, ok := p.table.Domestic[label]
		if !ok {
			c = p.table.Domestic[p.table.DomesticFallback]
		}
		return label, append([]string(nil), c...)
	}
	sector := p.global.Infer(info)
	c, ok := p.table.Global[sector]
	if !ok {
		c = p.table.GlobalFallback
	}
	if sector == "" {
		sector = unknownSector
	}
	return sector, append([]string(nil), c...)
}

// Select resolves the label and candidate list, then picks by 3-month mean volume.
func (p *PeerSelector) Select(ctx context.Context, symbol string, info types.IssuerInfo) types.PeerProxy {
	label, cands := p.candidates(symbol, info)
	proxy := types.PeerProxy{Label: label, Candidates: cands}
	if len(cands) == 0 {
		return proxy
	}

	vols := make([]float64, len(cands))
	var wg sync.WaitGroup
	for i, c := range cands {
		wg.Add(1)
		go func(i int, c string) {
			defer wg.Done()
			vols[i] = meanVolume(p.fetch.Prices(ctx, c, types.Window3M))
		}(i, c)
	}
	wg.Wait()

	i := pickMostLiquid(vols)
	proxy.Instrument = cands[i]
	proxy.AvgVolume3M = vols[i]
	return proxy
}

// pickMostLiquid returns the index of the highest volume, the earliest on ties.
// When even the best is zero the first candidate wins.
func pickMostLiquid(vols []float64) int {
	best := 0
	for i, v := range vols {
		if v > vols[best] {
			best = i
		}
	}
	if vols[best] <= 0 {
		return 0
	}
	return best
}

func meanVolume(s types.PriceSeries) float64 {
	m := ta.Mean(s.Volumes())
	if types.OptFloat(m) == nil {
		return 0
	}
	return m
}

// CompareWithPeer aligns both close series on common dates and measures
// 6, 12 and 24 month returns and their excess.
func CompareWithPeer(security, peer types.PriceSeries, instrument string) types.RelativePerformance {
	rp := types.RelativePerformance{Instrument: instrument}
	if peer.Empty() {
		rp.Reason = "no peer price history"
		return rp
	}
	if len(security) < minAlignedBars || len(peer) < minAlignedBars {
		rp.Reason = "price history too short"
		return rp
	}

	peerByDate := make(map[int64]float64, len(peer))
	for _, b := range peer {
		peerByDate[b.Date.Unix()] = b.Close
	}
	var sec, pr []float64
	for _, b := range security {
		if c, ok := peerByDate[b.Date.Unix()]; ok {
			sec = append(sec, b.Close)
			pr = append(pr, c)
		}
	}
	if len(sec) < minAlignedBars {
		rp.Reason = "too few common dates"
		return rp
	}

	rp.Available = true
	rp.Aligned = len(sec)
	rp.SixMonth = periodReturn(sec, pr, sixMonthBars)
	rp.OneYear = periodReturn(sec, pr, oneYearBars)
	rp.TwoYear = periodReturn(sec, pr, twoYearBars)
	return rp
}

func periodReturn(sec, peer []float64, n int) types.PeriodReturn {
	if len(sec) <= n {
		return types.PeriodReturn{}
	}
	last := len(sec) - 1
	s := sec[last]/sec[last-n] - 1
	p := peer[last]/peer[last-n] - 1
	return types.PeriodReturn{
		Security: types.OptFloat(s),
		Peer:     types.OptFloat(p),
		Excess:   types.OptFloat(s - p),
	}
}
