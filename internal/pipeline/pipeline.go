// Package pipeline chains schema resolution, normalization, and aggregation
// over one uploaded database.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/verte-zerg/gamestat/internal/model"
	"github.com/verte-zerg/gamestat/internal/schema"
	"github.com/verte-zerg/gamestat/internal/stats"
	"github.com/verte-zerg/gamestat/internal/store"
)

// Process runs the full ingestion pipeline over raw database bytes. It either
// returns a complete StatsData or a single error; no partial result is ever
// produced. Each call yields a fresh, self-contained value.
func Process(ctx context.Context, data []byte, loc *time.Location) (model.StatsData, error) {
	st, err := store.OpenBytes(data)
	if err != nil {
		return model.StatsData{}, err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			warnf("failed to close database: %v\n", cerr)
		}
	}()
	return process(ctx, st, loc)
}

// ProcessFile runs the pipeline over a database file on disk.
func ProcessFile(ctx context.Context, path string, loc *time.Location) (model.StatsData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.StatsData{}, fmt.Errorf("failed to read database file: %w", err)
	}
	return Process(ctx, data, loc)
}

func process(ctx context.Context, st *store.Store, loc *time.Location) (model.StatsData, error) {
	desc, err := schema.Resolve(ctx, st)
	if err != nil {
		return model.StatsData{}, err
	}

	// The dictionary is optional; a read failure degrades to an empty map.
	names, err := st.ReadGameDict(ctx)
	if err != nil {
		warnf("found 'game_dict' but failed to query it: %v\n", err)
		names = map[int64]string{}
	}

	rows, err := st.FetchRows(ctx, desc)
	if err != nil {
		return model.StatsData{}, err
	}
	if len(rows) == 0 {
		return model.StatsData{}, fmt.Errorf("%w: %s", schema.ErrEmptySessionTable, desc.Table)
	}

	sessions := stats.Normalize(rows, loc)
	return stats.BuildStats(sessions, names), nil
}

func warnf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
