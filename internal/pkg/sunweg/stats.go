package sunweg

import (
	"context"
	"fmt"
	"strconv"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
)

// MonthStatsProduction returns the daily production of a plant, or of one of
// its inverters when inverter is not nil, for the given month.
func (s *service) MonthStatsProduction(ctx context.Context, year, month int, plant *model.Plant, inverter *model.Inverter) ([]model.ProductionStats, error) {
	var inverterID *int
	if inverter != nil {
		inverterID = &inverter.ID
	}
	return s.MonthStatsProductionByID(ctx, year, month, plant.ID, inverterID)
}

func (s *service) MonthStatsProductionByID(ctx context.Context, year, month, plantID int, inverterID *int) ([]model.ProductionStats, error) {
	stats, err := withRetry(ctx, s, "month_stats_production", func(ctx context.Context) ([]model.ProductionStats, error) {
		return s.monthStats(ctx, year, month, plantID, inverterID)
	})
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []model.ProductionStats{}
	}
	return stats, nil
}

func monthStatsQuery(year, month, plantID int, inverterID *int) string {
	inverter := ""
	if inverterID != nil {
		inverter = strconv.Itoa(*inverterID)
	}
	return fmt.Sprintf("%sidusina=%d&idinversor=%s&date=%02d/%d", monthStatsPath, plantID, inverter, month, year)
}

func (s *service) monthStats(ctx context.Context, year, month, plantID int, inverterID *int) ([]model.ProductionStats, error) {
	var res monthStatsResponse
	if err := s.get(ctx, monthStatsQuery(year, month, plantID, inverterID), &res); err != nil {
		return nil, err
	}

	stats := make([]model.ProductionStats, 0, len(res.Days))
	for _, day := range res.Days {
		raw, err := day.Date.text()
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, missingField("tempoatual")
		}
		date, err := parseDate(*raw)
		if err != nil {
			return nil, err
		}
		production, err := day.Production.float("energiapordia")
		if err != nil {
			return nil, err
		}
		prognostic, err := day.Prognostic.float("prognostico")
		if err != nil {
			return nil, err
		}
		stats = append(stats, model.ProductionStats{
			Date:       date,
			Production: production,
			Prognostic: prognostic,
		})
	}
	return stats, nil
}
