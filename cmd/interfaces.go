package cmd

import (
	"context"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
)

// SunwegClient is the subset of the sunweg client the commands depend on.
type SunwegClient interface {
	Authenticate(ctx context.Context) (bool, error)
	ListPlants(ctx context.Context) ([]*model.Plant, error)
	CompleteInverter(ctx context.Context, inv *model.Inverter) error
	MonthStatsProductionByID(ctx context.Context, year, month, plantID int, inverterID *int) ([]model.ProductionStats, error)
}
