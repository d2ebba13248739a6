package cmd

import (
	"context"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
)

// MockSunwegClient is a mock implementation of the SunwegClient interface.
type MockSunwegClient struct {
	AuthenticateFunc             func(ctx context.Context) (bool, error)
	ListPlantsFunc               func(ctx context.Context) ([]*model.Plant, error)
	CompleteInverterFunc         func(ctx context.Context, inv *model.Inverter) error
	MonthStatsProductionByIDFunc func(ctx context.Context, year, month, plantID int, inverterID *int) ([]model.ProductionStats, error)
}

func (m *MockSunwegClient) Authenticate(ctx context.Context) (bool, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx)
	}
	return true, nil
}

func (m *MockSunwegClient) ListPlants(ctx context.Context) ([]*model.Plant, error) {
	if m.ListPlantsFunc != nil {
		return m.ListPlantsFunc(ctx)
	}
	return nil, nil
}

func (m *MockSunwegClient) CompleteInverter(ctx context.Context, inv *model.Inverter) error {
	if m.CompleteInverterFunc != nil {
		return m.CompleteInverterFunc(ctx, inv)
	}
	return nil
}

func (m *MockSunwegClient) MonthStatsProductionByID(ctx context.Context, year, month, plantID int, inverterID *int) ([]model.ProductionStats, error) {
	if m.MonthStatsProductionByIDFunc != nil {
		return m.MonthStatsProductionByIDFunc(ctx, year, month, plantID, inverterID)
	}
	return nil, nil
}
