package reportcache

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"asset-guardian/internal/interfaces"
	"asset-guardian/internal/types"
)

// Badger is an embedded store for single-host deployments.
type Badger struct {
	store *badgerhold.Store
}

var _ interfaces.ReportStore = (*Badger)(nil)

func NewBadger(dir string) (*Badger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Badger{store: store}, nil
}

func (b *Badger) Get(ctx context.Context, symbol, day string) (*types.Report, error) {
	var r types.Report
	err := b.store.Get(key(symbol, day), &r)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &r, nil
}

func (b *Badger) Put(ctx context.Context, report *types.Report) error {
	if err := b.store.Upsert(key(report.Symbol, report.Date), report); err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}
	return nil
}

func (b *Badger) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
