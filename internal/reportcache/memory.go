package reportcache

import (
	"context"
	"sync"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/types"
)

// Memory keeps reports for the life of the process.
type Memory struct {
	mu      sync.RWMutex
	reports map[string]types.Report
}

var _ interfaces.ReportStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{reports: make(map[string]types.Report)}
}

func (m *Memory) Get(ctx context.Context, symbol, day string) (*types.Report, error) {
	m.mu.RLock()
	r, ok := m.reports[key(symbol, day)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) Put(ctx context.Context, report *types.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[key(report.Symbol, report.Date)] = *report
	return nil
}

func (m *Memory) Close() error { return nil }
