// Package schema locates the session table and its columns in an uploaded
// database with unknown naming conventions.
package schema

import (
	"context"
	"errors"
	"strings"

	"github.com/verte-zerg/gamestat/internal/store"
)

// Fatal resolution failures surfaced verbatim to the caller.
var (
	ErrEmptyDatabase     = errors.New("the database appears to be empty or contains no tables")
	ErrNoSessionTable    = errors.New("could not find a gaming session table (expected 'play_time')")
	ErrEmptySessionTable = errors.New("session table exists but returned no data")
)

// Catalog exposes the table metadata the resolver needs. Implemented by
// store.Store.
type Catalog interface {
	ListTables(ctx context.Context) ([]string, error)
	TableColumns(ctx context.Context, table string) ([]string, error)
}

// exactTableName is matched case-insensitively before any heuristic runs; when
// it hits, the column names below are assumed without inspection.
const exactTableName = "play_time"

var exactDescriptor = store.Descriptor{
	IDColumn:       "game_id",
	TimeColumn:     "date_time",
	DurationColumn: "duration",
}

// columnRole identifies what a matched column is used for.
type columnRole int

const (
	roleID columnRole = iota
	roleTime
	roleDuration
)

// columnRule is one requirement of the ranked-rule evaluator: a synonym set
// for a role, and whether a table must satisfy it to qualify.
type columnRule struct {
	role     columnRole
	synonyms []string
	required bool
}

// Rules are evaluated in order against each table's column list. A table
// qualifies when every required rule matches and at least one optional rule
// matches; the first qualifying table in enumeration order wins.
var sessionRules = []columnRule{
	{role: roleID, synonyms: []string{"game_id", "appid", "app_id", "id", "steam_id"}, required: true},
	{role: roleTime, synonyms: []string{"date_time", "start_time", "timestamp", "date", "time", "played_at"}},
	{role: roleDuration, synonyms: []string{"duration", "playtime", "seconds", "minutes"}},
}

// Resolve determines the session table and its id/time/duration columns.
func Resolve(ctx context.Context, catalog Catalog) (store.Descriptor, error) {
	tables, err := catalog.ListTables(ctx)
	if err != nil {
		return store.Descriptor{}, err
	}
	if len(tables) == 0 {
		return store.Descriptor{}, ErrEmptyDatabase
	}

	for _, table := range tables {
		if strings.EqualFold(table, exactTableName) {
			desc := exactDescriptor
			desc.Table = table
			return desc, nil
		}
	}

	for _, table := range tables {
		columns, err := catalog.TableColumns(ctx, table)
		if err != nil {
			return store.Descriptor{}, err
		}
		if desc, ok := evaluateRules(table, columns); ok {
			return desc, nil
		}
	}
	return store.Descriptor{}, ErrNoSessionTable
}

// evaluateRules applies the ranked rules to one table's columns.
func evaluateRules(table string, columns []string) (store.Descriptor, bool) {
	desc := store.Descriptor{Table: table}
	optionalHit := false
	for _, rule := range sessionRules {
		matched := matchColumn(columns, rule.synonyms)
		if matched == "" {
			if rule.required {
				return store.Descriptor{}, false
			}
			continue
		}
		switch rule.role {
		case roleID:
			desc.IDColumn = matched
		case roleTime:
			desc.TimeColumn = matched
			optionalHit = true
		case roleDuration:
			desc.DurationColumn = matched
			optionalHit = true
		}
	}
	if !optionalHit {
		return store.Descriptor{}, false
	}
	return desc, true
}

// matchColumn returns the first column whose lowercased name is in the synonym
// set, preserving the column's original casing.
func matchColumn(columns, synonyms []string) string {
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, syn := range synonyms {
			if lower == syn {
				return col
			}
		}
	}
	return ""
}
