package repository

import (
	"context"
	"database/sql"
	"fmt"
	"notdienst_bot/internal/entities"
	"time"
)

// SQLiteUsageRepository is UsageRepository for a single-file database
type SQLiteUsageRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteUsageRepository(db *sql.DB) *SQLiteUsageRepository {
	return &SQLiteUsageRepository{db: db, now: time.Now}
}

func (r *SQLiteUsageRepository) Record(ctx context.Context, outcome entities.LookupOutcome) error {
	today := r.now().Format(dateLayout)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lookup_usage (date, outcome, count)
		VALUES (?, ?, 1)
		ON CONFLICT (date, outcome)
		DO UPDATE SET count = lookup_usage.count + 1
	`, today, string(outcome))
	return err
}

func (r *SQLiteUsageRepository) Daily(ctx context.Context, days int) ([]entities.DailyUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, outcome, count
		FROM lookup_usage
		WHERE date >= ?
		ORDER BY date ASC
	`, startOfWindow(r.now(), days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counters []usageRow
	for rows.Next() {
		var date, outcome string
		var count int
		if err := rows.Scan(&date, &outcome, &count); err != nil {
			return nil, err
		}
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse usage date %q: %w", date, err)
		}
		counters = append(counters, usageRow{date: d, outcome: entities.LookupOutcome(outcome), count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupDaily(counters), nil
}

func (r *SQLiteUsageRepository) Close() error {
	return r.db.Close()
}

// NoopUsageRepository is used when no database is configured
type NoopUsageRepository struct{}

func (NoopUsageRepository) Record(context.Context, entities.LookupOutcome) error { return nil }

func (NoopUsageRepository) Daily(context.Context, int) ([]entities.DailyUsage, error) {
	return []entities.DailyUsage{}, nil
}

func (NoopUsageRepository) Close() error { return nil }
