package schema

import (
	"context"
	"errors"
	"testing"
)

type fakeCatalog struct {
	tables  []string
	columns map[string][]string
}

func (f fakeCatalog) ListTables(context.Context) ([]string, error) {
	return f.tables, nil
}

func (f fakeCatalog) TableColumns(_ context.Context, table string) ([]string, error) {
	return f.columns[table], nil
}

func TestResolveEmptyDatabase(t *testing.T) {
	_, err := Resolve(context.Background(), fakeCatalog{})
	if !errors.Is(err, ErrEmptyDatabase) {
		t.Fatalf("expected ErrEmptyDatabase, got %v", err)
	}
}

func TestResolveExactMatch(t *testing.T) {
	catalog := fakeCatalog{
		tables: []string{"game_dict", "Play_Time"},
		columns: map[string][]string{
			"Play_Time": {"whatever"},
		},
	}
	desc, err := Resolve(context.Background(), catalog)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if desc.Table != "Play_Time" {
		t.Fatalf("expected case-insensitive exact match, got %q", desc.Table)
	}
	// Exact match assumes the canonical columns without inspection.
	if desc.IDColumn != "game_id" || desc.TimeColumn != "date_time" || desc.DurationColumn != "duration" {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}
}

func TestResolveSynonymFallback(t *testing.T) {
	catalog := fakeCatalog{
		tables: []string{"settings", "sessions_log"},
		columns: map[string][]string{
			"settings":     {"key", "value"},
			"sessions_log": {"appid", "timestamp", "minutes"},
		},
	}
	desc, err := Resolve(context.Background(), catalog)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if desc.Table != "sessions_log" {
		t.Fatalf("expected sessions_log, got %q", desc.Table)
	}
	if desc.IDColumn != "appid" || desc.TimeColumn != "timestamp" || desc.DurationColumn != "minutes" {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}
}

func TestResolveCaseInsensitiveColumns(t *testing.T) {
	catalog := fakeCatalog{
		tables: []string{"History"},
		columns: map[string][]string{
			"History": {"AppID", "Played_At"},
		},
	}
	desc, err := Resolve(context.Background(), catalog)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if desc.IDColumn != "AppID" || desc.TimeColumn != "Played_At" {
		t.Fatalf("expected original casing preserved, got %+v", desc)
	}
	if desc.DurationColumn != "" {
		t.Fatalf("expected empty duration column, got %q", desc.DurationColumn)
	}
}

func TestResolveRequiresIDPlusOne(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
	}{
		{name: "id only", columns: []string{"game_id"}},
		{name: "time only", columns: []string{"timestamp", "note"}},
		{name: "no synonyms", columns: []string{"foo", "bar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := fakeCatalog{
				tables:  []string{"data"},
				columns: map[string][]string{"data": tt.columns},
			}
			_, err := Resolve(context.Background(), catalog)
			if !errors.Is(err, ErrNoSessionTable) {
				t.Fatalf("expected ErrNoSessionTable, got %v", err)
			}
		})
	}
}

func TestResolveFirstQualifyingTableWins(t *testing.T) {
	catalog := fakeCatalog{
		tables: []string{"first", "second"},
		columns: map[string][]string{
			"first":  {"id", "date"},
			"second": {"game_id", "date_time", "duration"},
		},
	}
	desc, err := Resolve(context.Background(), catalog)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if desc.Table != "first" {
		t.Fatalf("expected first qualifying table in enumeration order, got %q", desc.Table)
	}
}
