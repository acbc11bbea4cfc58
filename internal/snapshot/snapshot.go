package snapshot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"asset-guardian/internal/types"
)

var ErrEmptySymbol = errors.New("empty ticker symbol")

// NormalizeTicker keeps exchange-qualified symbols as they are and maps bare
// six-digit Korea exchange codes to their .KS listing.
func NormalizeTicker(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ".") {
		return s
	}
	if len(s) == 6 && strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return s + ".KS"
	}
	return s
}

// Assembler builds the per-run TickerSnapshot.
type Assembler struct {
	fetch *Fetcher
}

func NewAssembler(fetch *Fetcher) *Assembler {
	return &Assembler{fetch: fetch}
}

// Load fetches price history, issuer info and the three statements concurrently.
// Missing pieces degrade to empty values; only an empty symbol is an error.
func (a *Assembler) Load(ctx context.Context, symbol string) (*types.TickerSnapshot, error) {
	sym := NormalizeTicker(symbol)
	if sym == "" {
		return nil, ErrEmptySymbol
	}

	snap := &types.TickerSnapshot{Symbol: sym}
	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		snap.Prices = a.fetch.Prices(ctx, sym, types.Window10Y)
		if snap.Prices.Empty() {
			snap.Prices = a.fetch.Prices(ctx, sym, types.Window2Y)
		}
	}()
	go func() {
		defer wg.Done()
		snap.Info = a.fetch.Info(ctx, sym)
	}()
	go func() {
		defer wg.Done()
		snap.Income = a.fetch.Statement(ctx, sym, types.IncomeStatement)
	}()
	go func() {
		defer wg.Done()
		snap.CashFlow = a.fetch.Statement(ctx, sym, types.CashFlowStatement)
	}()
	go func() {
		defer wg.Done()
		snap.Balance = a.fetch.Statement(ctx, sym, types.BalanceSheet)
	}()
	wg.Wait()

	return snap, nil
}
