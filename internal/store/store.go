// Package store handles read-only SQLite access for uploaded databases.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/gamestat/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Sentinel names treated as missing in the game dictionary.
const (
	sentinelUndefined = "undefined"
	sentinelNull      = "null"
)

const dictTable = "game_dict"

// Store wraps a read-only SQLite handle over an uploaded database file.
type Store struct {
	db       *sql.DB
	tempPath string
}

// Open opens an existing SQLite database file in read-only mode.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sql.Open defers real work; force the engine to initialize now so an
	// unreadable or corrupt file fails the whole operation up front.
	if err := db.Ping(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on init failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to initialize database engine: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenBytes materializes uploaded database bytes to a temporary file and opens
// it read-only. The temp copy is removed on Close.
func OpenBytes(data []byte) (*Store, error) {
	tmp, err := os.CreateTemp("", "gamestat-*.db")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp database: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to write temp database: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to close temp database: %w", err)
	}
	st, err := Open(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	st.tempPath = tmpPath
	return st, nil
}

// Close closes the underlying database and removes any temp copy.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.tempPath != "" {
		if rerr := os.Remove(s.tempPath); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

// ListTables returns all user tables in storage enumeration order, excluding
// SQLite internals.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// TableColumns returns the column names of a table in declaration order.
func (s *Store) TableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var columns []string
	for rows.Next() {
		var (
			cid        int
			name       string
			ctype      string
			notNull    int
			deflt      sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &deflt, &primaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	return columns, nil
}

// Descriptor identifies the session table and its relevant columns. A missing
// time or duration column is represented by an empty name.
type Descriptor struct {
	Table          string
	IDColumn       string
	TimeColumn     string
	DurationColumn string
}

// FetchRows reads session rows as (id, time-or-null, duration-or-zero),
// substituting NULL and 0 for whichever optional column is absent.
func (s *Store) FetchRows(ctx context.Context, desc Descriptor) ([]model.RawRow, error) {
	timeExpr := "NULL"
	if desc.TimeColumn != "" {
		timeExpr = quoteIdent(desc.TimeColumn)
	}
	durExpr := "0"
	if desc.DurationColumn != "" {
		durExpr = quoteIdent(desc.DurationColumn)
	}
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s`,
		quoteIdent(desc.IDColumn), timeExpr, durExpr, quoteIdent(desc.Table))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", desc.Table, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.RawRow
	for rows.Next() {
		var id, timeVal, durVal any
		if err := rows.Scan(&id, &timeVal, &durVal); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", desc.Table, err)
		}
		out = append(out, model.RawRow{
			ID:       rawValue(id),
			Time:     rawValue(timeVal),
			Duration: rawValue(durVal),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", desc.Table, err)
	}
	return out, nil
}

// HasTable reports whether a table with the exact given name exists.
func (s *Store) HasTable(ctx context.Context, name string) (bool, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range tables {
		if t == name {
			return true, nil
		}
	}
	return false, nil
}

// ReadGameDict builds the id-to-name identity map from the optional game_dict
// table. Rows with non-numeric ids or empty/sentinel names are skipped.
func (s *Store) ReadGameDict(ctx context.Context) (map[int64]string, error) {
	exists, err := s.HasTable(ctx, dictTable)
	if err != nil {
		return nil, err
	}
	names := map[int64]string{}
	if !exists {
		return names, nil
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT "game_id", "name" FROM %s`, quoteIdent(dictTable)))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", dictTable, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var idVal, nameVal any
		if err := rows.Scan(&idVal, &nameVal); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", dictTable, err)
		}
		id, ok := numericID(rawValue(idVal))
		if !ok {
			continue
		}
		name := rawValue(nameVal)
		if name.Kind != model.ValueText {
			continue
		}
		trimmed := strings.TrimSpace(name.Text)
		if trimmed == "" || trimmed == sentinelUndefined || trimmed == sentinelNull {
			continue
		}
		names[id] = trimmed
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", dictTable, err)
	}
	return names, nil
}

// rawValue converts a scanned SQLite cell into the tagged raw value union.
func rawValue(v any) model.RawValue {
	switch val := v.(type) {
	case nil:
		return model.Absent()
	case int64:
		return model.Number(float64(val))
	case float64:
		return model.Number(val)
	case []byte:
		return model.Text(string(val))
	case string:
		return model.Text(val)
	case bool:
		if val {
			return model.Number(1)
		}
		return model.Number(0)
	default:
		return model.Text(fmt.Sprint(val))
	}
}

func numericID(v model.RawValue) (int64, bool) {
	switch v.Kind {
	case model.ValueNumber:
		return int64(v.Number), true
	case model.ValueText:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return 0, false
		}
		return int64(parsed), true
	default:
		return 0, false
	}
}

// quoteIdent quotes an identifier coming from database metadata so table and
// column names with spaces or quotes stay intact.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
