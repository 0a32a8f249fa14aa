package repository

import (
	"context"
	"notdienst_bot/internal/entities"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dateLayout = "2006-01-02"

// UsageRepository stores daily search outcome counters in Postgres
type UsageRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db, now: time.Now}
}

// Record increments today's counter for outcome
func (r *UsageRepository) Record(ctx context.Context, outcome entities.LookupOutcome) error {
	today := r.now().Format(dateLayout)
	_, err := r.db.Exec(ctx, `
		INSERT INTO lookup_usage (date, outcome, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (date, outcome)
		DO UPDATE SET count = lookup_usage.count + 1
	`, today, string(outcome))
	return err
}

// Daily returns the last N days of counters, oldest first
func (r *UsageRepository) Daily(ctx context.Context, days int) ([]entities.DailyUsage, error) {
	startDate := startOfWindow(r.now(), days)
	rows, err := r.db.Query(ctx, `
		SELECT date, outcome, count
		FROM lookup_usage
		WHERE date >= $1
		ORDER BY date ASC
	`, startDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counters []usageRow
	for rows.Next() {
		var u usageRow
		var outcome string
		if err := rows.Scan(&u.date, &outcome, &u.count); err != nil {
			return nil, err
		}
		u.outcome = entities.LookupOutcome(outcome)
		counters = append(counters, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupDaily(counters), nil
}

func (r *UsageRepository) Close() error {
	r.db.Close()
	return nil
}

type usageRow struct {
	date    time.Time
	outcome entities.LookupOutcome
	count   int
}

// startOfWindow is the first date included in a window of days ending today
func startOfWindow(now time.Time, days int) string {
	if days < 1 {
		days = 1
	}
	return now.AddDate(0, 0, -(days - 1)).Format(dateLayout)
}

func groupDaily(counters []usageRow) []entities.DailyUsage {
	byDate := map[string]*entities.DailyUsage{}
	for _, c := range counters {
		key := c.date.Format(dateLayout)
		d, ok := byDate[key]
		if !ok {
			d = &entities.DailyUsage{Date: c.date, Outcomes: map[entities.LookupOutcome]int{}}
			byDate[key] = d
		}
		d.Outcomes[c.outcome] += c.count
		d.Total += c.count
	}

	usage := make([]entities.DailyUsage, 0, len(byDate))
	for _, d := range byDate {
		usage = append(usage, *d)
	}
	sort.Slice(usage, func(i, j int) bool {
		return usage[i].Date.Before(usage[j].Date)
	})
	return usage
}
