package sunweg

import (
	"context"
	"strconv"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ListPlants returns every plant visible to the account. Inverters are
// stubs, see CompleteInverter. Plants whose detail cannot be fetched with a
// valid token are left out.
func (s *service) ListPlants(ctx context.Context) ([]*model.Plant, error) {
	plants, err := withRetry(ctx, s, "list_plants", s.listPlants)
	if err != nil {
		return nil, err
	}
	if plants == nil {
		plants = []*model.Plant{}
	}
	return plants, nil
}

func (s *service) listPlants(ctx context.Context) ([]*model.Plant, error) {
	var res plantListResponse
	if err := s.get(ctx, plantListPath, &res); err != nil {
		return nil, err
	}

	refs := lo.Flatten([][]plantRef{
		res.NotCommissioned,
		res.Connected,
		res.Failures,
		res.Alerts,
		res.Attendance,
		res.Plants,
	})

	plants := make([]*model.Plant, 0, len(refs))
	for _, ref := range refs {
		id, err := ref.ID.int("id")
		if err != nil {
			return nil, err
		}
		plant, err := s.GetPlant(ctx, id)
		if err != nil {
			return nil, err
		}
		if plant == nil {
			s.logger.Warn("skipping plant", zap.Int("plant_id", id))
			continue
		}
		plants = append(plants, plant)
	}
	s.logger.Debug("listed plants", zap.Int("count", len(plants)))
	return plants, nil
}

// GetPlant returns the plant with its inverter stubs.
func (s *service) GetPlant(ctx context.Context, id int) (*model.Plant, error) {
	return withRetry(ctx, s, "get_plant", func(ctx context.Context) (*model.Plant, error) {
		return s.getPlant(ctx, id)
	})
}

func (s *service) getPlant(ctx context.Context, id int) (*model.Plant, error) {
	var res plantResponse
	if err := s.get(ctx, plantDetailPath+strconv.Itoa(id), &res); err != nil {
		return nil, err
	}
	return toPlant(id, &res)
}

func toPlant(id int, res *plantResponse) (*model.Plant, error) {
	plant := &model.Plant{
		ID:   id,
		Name: res.Plant.Name,
	}

	todayEnergy, err := res.TodayEnergy.text()
	if err != nil {
		return nil, err
	}
	if plant.TodayEnergy, plant.TodayEnergyMetric, err = SeparateValueMetric(todayEnergy, defaultEnergyMetric, false); err != nil {
		return nil, err
	}

	totalPower, err := res.TotalPower.text()
	if err != nil {
		return nil, err
	}
	if plant.TotalPower, _, err = SeparateValueMetric(totalPower, "", false); err != nil {
		return nil, err
	}

	saving, err := res.Saving.text()
	if err != nil {
		return nil, err
	}
	if plant.Saving, _, err = SeparateValueMetric(saving, "", true); err != nil {
		return nil, err
	}

	if plant.TotalEnergy, err = res.TotalEnergy.float("energiaacumuladanumber"); err != nil {
		return nil, err
	}
	if plant.TotalCarbonSaving, err = res.TotalCarbonSaving.float("reduz_carbono_total_number"); err != nil {
		return nil, err
	}

	lastUpdate, err := res.LastUpdate.text()
	if err != nil {
		return nil, err
	}
	if lastUpdate != nil {
		t, err := parseDateTime(*lastUpdate)
		if err != nil {
			return nil, err
		}
		plant.LastUpdate = &t
	}

	for _, stub := range res.Plant.Inverters {
		inv, err := toInverterStub(&stub)
		if err != nil {
			return nil, err
		}
		plant.Inverters = append(plant.Inverters, inv)
	}
	return plant, nil
}

func toInverterStub(stub *inverterStubResp) (*model.Inverter, error) {
	id, err := stub.ID.int("id")
	if err != nil {
		return nil, err
	}
	situation, err := stub.Situation.int("situacao")
	if err != nil {
		return nil, err
	}
	status, err := model.StatusFromOrdinal(situation)
	if err != nil {
		return nil, err
	}
	temperature, err := stub.Temperature.floatOrZero("temperatura")
	if err != nil {
		return nil, err
	}
	return &model.Inverter{
		ID:           id,
		Name:         stub.Name,
		SerialNumber: stub.SN,
		Status:       status,
		Temperature:  temperature,
	}, nil
}
