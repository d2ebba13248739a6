package sunweg

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
)

// GetInverter returns the inverter with its measurements, MPPTs and phases.
func (s *service) GetInverter(ctx context.Context, id int) (*model.Inverter, error) {
	return withRetry(ctx, s, "get_inverter", func(ctx context.Context) (*model.Inverter, error) {
		res, err := s.getInverter(ctx, id)
		if err != nil {
			return nil, err
		}
		inv := &model.Inverter{
			ID:           id,
			Name:         res.Inverter.Name,
			SerialNumber: res.Inverter.SN,
		}
		ordinal, err := res.Status.int("statusInversor")
		if err != nil {
			return nil, err
		}
		if inv.Status, err = model.StatusFromOrdinal(ordinal); err != nil {
			return nil, err
		}
		if inv.Temperature, err = res.Temperature.floatOrZero("temperatura"); err != nil {
			return nil, err
		}
		if err := fillInverter(inv, res); err != nil {
			return nil, err
		}
		return inv, nil
	})
}

// CompleteInverter fetches the detail of an inverter stub and fills in its
// measurements, MPPTs and phases in place. Identity, status and temperature
// are left untouched.
func (s *service) CompleteInverter(ctx context.Context, inv *model.Inverter) error {
	_, err := withRetry(ctx, s, "complete_inverter", func(ctx context.Context) (struct{}, error) {
		res, err := s.getInverter(ctx, inv.ID)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, fillInverter(inv, res)
	})
	return err
}

func (s *service) getInverter(ctx context.Context, id int) (*inverterResponse, error) {
	var res inverterResponse
	if err := s.get(ctx, inverterPath+strconv.Itoa(id), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func fillInverter(inv *model.Inverter, res *inverterResponse) error {
	var err error
	if inv.TotalEnergy, inv.TotalEnergyMetric, err = valueMetric(res.TotalEnergy, defaultEnergyMetric); err != nil {
		return err
	}
	if inv.TodayEnergy, inv.TodayEnergyMetric, err = valueMetric(res.TodayEnergy, defaultEnergyMetric); err != nil {
		return err
	}
	if inv.Power, inv.PowerMetric, err = valueMetric(res.Power, defaultPowerMetric); err != nil {
		return err
	}
	if inv.PowerFactor, err = res.PowerFactor.float("fatorpotencia"); err != nil {
		return err
	}
	if inv.Frequency, err = res.Frequency.float("frequencia"); err != nil {
		return err
	}
	return populateMPPT(inv, res)
}

func valueMetric(v scalar, defaultMetric string) (float64, string, error) {
	t, err := v.text()
	if err != nil {
		return 0, "", err
	}
	return SeparateValueMetric(t, defaultMetric, false)
}

func populateMPPT(inv *model.Inverter, res *inverterResponse) error {
	inv.MPPTs = nil
	inv.Phases = nil
	for _, group := range res.MPPTs {
		mppt := &model.MPPT{Name: group.Name}
		for _, str := range group.Strings {
			voltage, err := reading(res, str.VoltageKey)
			if err != nil {
				return err
			}
			amperage, err := reading(res, str.CurrentKey)
			if err != nil {
				return err
			}
			situation, err := str.Situation.int("situacao")
			if err != nil {
				return err
			}
			mppt.Strings = append(mppt.Strings, model.String{
				Name:     str.Name,
				Voltage:  voltage,
				Amperage: amperage,
				Status:   ConvertSituationStatus(situation),
			})
		}
		inv.MPPTs = append(inv.MPPTs, mppt)
	}

	for _, name := range res.CurrentAC.Keys() {
		if strings.HasSuffix(name, "status") {
			continue
		}
		phase := model.Phase{Name: name}
		var err error
		if phase.Voltage, err = phaseValue(res.VoltageAC, "tensaoca", name); err != nil {
			return err
		}
		if phase.Amperage, err = phaseValue(res.CurrentAC, "correnteCA", name); err != nil {
			return err
		}
		if phase.StatusVoltage, err = phaseStatus(res.VoltageAC, "tensaoca", name+"status"); err != nil {
			return err
		}
		if phase.StatusAmperage, err = phaseStatus(res.CurrentAC, "correnteCA", name+"status"); err != nil {
			return err
		}
		inv.Phases = append(inv.Phases, phase)
	}
	return nil
}

func reading(res *inverterResponse, key string) (float64, error) {
	v, ok := res.Inverter.Readings[key]
	if !ok {
		return 0, missingField("inversor.leitura." + key)
	}
	return v.float("inversor.leitura." + key)
}

func phaseValue(values orderedScalars, field, key string) (float64, error) {
	v, ok := values.get(key)
	if !ok {
		return 0, missingField(field + "." + key)
	}
	return v.float(field + "." + key)
}

func phaseStatus(values orderedScalars, field, key string) (model.Status, error) {
	v, ok := values.get(key)
	if !ok {
		return model.StatusOK, missingField(field + "." + key)
	}
	ordinal, err := v.int(field + "." + key)
	if err != nil {
		return model.StatusOK, err
	}
	status, err := model.StatusFromOrdinal(ordinal)
	if err != nil {
		return model.StatusOK, fmt.Errorf("%s.%s: %w", field, key, err)
	}
	return status, nil
}
