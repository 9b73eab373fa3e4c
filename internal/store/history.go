package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/YesAndBack/TakeWaterBot/internal/domain"
)

// History keeps settled daily totals in an embedded SQLite database. It backs
// the weekly statistics view and doubles as a settlement sink, so totals stay
// queryable even when the workbook is unavailable.
type History struct{ db *sql.DB }

// DayTotal is one settled day for one user.
type DayTotal struct {
	Day   string // YYYY-MM-DD
	Total int
	Norm  int
}

// Open opens (or creates) the SQLite database at the given path, applies
// recommended PRAGMAs, runs SQL migrations, and returns the store.
func Open(ctx context.Context, path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &History{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (h *History) Close() error {
	return h.db.Close()
}

// Submit upserts one settled day. Resubmitting the same (user, date) replaces
// the earlier totals, which makes History a valid settlement sink.
func (h *History) Submit(ctx context.Context, sum domain.DaySummary) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO daily_totals (chat_id, day, total_ml, norm_ml, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chat_id, day) DO UPDATE SET
			total_ml   = excluded.total_ml,
			norm_ml    = excluded.norm_ml,
			updated_at = excluded.updated_at`,
		sum.ChatID, sum.Date, sum.Total, sum.Norm, time.Now().UTC().Unix(),
	)
	return err
}

// WeekTotals returns the user's settled days from the seven days before today
// up to and including today, oldest first.
func (h *History) WeekTotals(ctx context.Context, chatID int64, today time.Time) ([]DayTotal, error) {
	since := today.AddDate(0, 0, -7).Format("2006-01-02")
	until := today.Format("2006-01-02")

	rows, err := h.db.QueryContext(ctx, `
		SELECT day, total_ml, norm_ml
		FROM daily_totals
		WHERE chat_id = ? AND day >= ? AND day <= ?
		ORDER BY day ASC`,
		chatID, since, until,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []DayTotal
	for rows.Next() {
		var dt DayTotal
		if err := rows.Scan(&dt.Day, &dt.Total, &dt.Norm); err != nil {
			return nil, err
		}
		res = append(res, dt)
	}
	return res, rows.Err()
}
