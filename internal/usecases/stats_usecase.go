package usecases

import (
	"context"
	"fmt"
	"notdienst_bot/internal/entities"
	"notdienst_bot/internal/interfaces"
)

const (
	DefaultStatsDays = 7
	MaxStatsDays     = 90
)

// StatsReport is the admin view of recent search outcomes
type StatsReport struct {
	Days   int                            `json:"days"`
	Daily  []entities.DailyUsage          `json:"daily"`
	Totals map[entities.LookupOutcome]int `json:"totals"`
	Total  int                            `json:"total"`
}

type StatsUsecase struct {
	store interfaces.UsageStore
}

func NewStatsUsecase(store interfaces.UsageStore) *StatsUsecase {
	return &StatsUsecase{store: store}
}

// Report aggregates the last days days, clamped to [1, MaxStatsDays]
func (uc *StatsUsecase) Report(ctx context.Context, days int) (*StatsReport, error) {
	if days < 1 {
		days = 1
	}
	if days > MaxStatsDays {
		days = MaxStatsDays
	}

	daily, err := uc.store.Daily(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("load daily usage: %w", err)
	}

	report := &StatsReport{
		Days:   days,
		Daily:  daily,
		Totals: make(map[entities.LookupOutcome]int, len(entities.AllOutcomes)),
	}
	if report.Daily == nil {
		report.Daily = []entities.DailyUsage{}
	}
	for _, o := range entities.AllOutcomes {
		report.Totals[o] = 0
	}
	for _, d := range daily {
		for o, n := range d.Outcomes {
			report.Totals[o] += n
		}
		report.Total += d.Total
	}
	return report, nil
}
