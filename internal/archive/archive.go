// Package archive mirrors saved ledgers into a SQLite database for
// cross-ledger reporting. The JSON files remain the source of truth;
// the mirror is rebuilt ledger by ledger whenever the worker sees a
// save, so every write replaces the ledger's rows wholesale.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"moneysaver/internal/core"

	_ "modernc.org/sqlite"
)

type Archive struct {
	db *sql.DB
}

// CategoryTotal is one row of the cross-ledger expenditure report. The
// summed amount is a float approximation; the authoritative per-ledger
// figures come from the aggregation engine.
type CategoryTotal struct {
	Category string
	Total    float64
}

func Open(dbPath string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// ReplaceLedger swaps the mirrored rows of one ledger in a single
// transaction: delete everything under the name, insert the current
// records in persisted (insertion) order.
func (a *Archive) ReplaceLedger(ctx context.Context, name string, records []core.Record) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE ledger = ?`, name); err != nil {
		return fmt.Errorf("delete ledger rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (ledger, idx, date, category, price, amount, flag)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	// Working order is newest first; mirror in insertion order.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		var amount any
		if r.Amount.Valid() {
			amount, _ = r.Amount.Decimal().Float64()
		}
		_, err := stmt.ExecContext(ctx,
			name,
			len(records)-1-i,
			r.Date.String(),
			r.Category,
			r.Amount.String(),
			amount,
			string(r.Flag),
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Ledger mirrored to archive", "ledger", name, "records", len(records))
	return nil
}

// LedgerNames returns the distinct ledger names present in the mirror.
func (a *Archive) LedgerNames(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT DISTINCT ledger FROM records ORDER BY ledger`)
	if err != nil {
		return nil, fmt.Errorf("query ledger names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan ledger name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CountRecords returns the number of mirrored rows for one ledger.
func (a *Archive) CountRecords(ctx context.Context, name string) (int64, error) {
	var n int64
	err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE ledger = ?`, name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// CategoryTotals sums expenditure amounts per category across every
// mirrored ledger. Rows whose price never coerced to a number carry a
// NULL amount and drop out of the sum.
func (a *Archive) CategoryTotals(ctx context.Context) ([]CategoryTotal, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM records
		WHERE flag = '0'
		GROUP BY category
		ORDER BY 2 DESC`)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
