// Package sqlrows turns SQL query results into value trees so that query
// output can be compared with fixture documents.
package sqlrows

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AndreyAkinshin/treediff/internal/observability"
	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// DriverName is the database/sql driver used by Open.
const DriverName = "sqlite3"

// Open opens a SQLite database read-only.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := (&url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro"}).String()
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite serialises access; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Query runs query and returns one mapping per row, keyed by column name
// in select order.
func Query(ctx context.Context, db *sql.DB, query string, args ...any) (treediff.Sequence, error) {
	ctx, span := observability.StartQuerySpan(ctx, DriverName)
	defer span.End()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	seq, err := FromRows(rows)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.RecordRowCount(span, len(seq))
	return seq, nil
}

// FromRows reads all remaining rows. It does not close rows.
func FromRows(rows *sql.Rows) (treediff.Sequence, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	seq := treediff.Sequence{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(seq), err)
		}

		path := treediff.Root().Index(len(seq))
		pairs := make([]treediff.Pair, 0, len(cols))
		seen := make(map[string]bool, len(cols))
		for i, col := range cols {
			if seen[col] {
				return nil, &treediff.StructuralError{
					Path:   path.Key(col).String(),
					Reason: "duplicate mapping key",
				}
			}
			seen[col] = true
			pairs = append(pairs, treediff.P(col, Convert(values[i])))
		}
		seq = append(seq, treediff.NewMapping(pairs...))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return seq, nil
}

// Convert maps a driver value to a tree value.
func Convert(v any) treediff.Value {
	switch val := v.(type) {
	case nil:
		return treediff.Null{}
	case int64:
		return treediff.NewInt(val)
	case float64:
		return treediff.NewNumber(val)
	case bool:
		return treediff.Bool(val)
	case string:
		return treediff.String(val)
	case []byte:
		if utf8.Valid(val) {
			return treediff.String(val)
		}
		return treediff.NewOpaque(append([]byte(nil), val...))
	case time.Time:
		return treediff.String(val.UTC().Format(time.RFC3339Nano))
	}
	return treediff.NewOpaque(v)
}
