package poller

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
)

func sensorSlug(name string) string {
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}

func numeric(name string, value float64, unit string) model.DeviceStatus {
	v := strconv.FormatFloat(value, 'f', -1, 64)
	return model.DeviceStatus{
		Name:  name,
		Slug:  sensorSlug(name),
		Value: &v,
		Unit:  unit,
	}
}

func text(name string, value string) model.DeviceStatus {
	return model.DeviceStatus{
		Name:  name,
		Slug:  sensorSlug(name),
		Value: &value,
	}
}

func PlantDevice(p *model.Plant) model.Device {
	id := strconv.Itoa(p.ID)
	return model.Device{ID: "plant_" + id, Model: "plant", SerialNumber: id}
}

func InverterDevice(inv *model.Inverter) model.Device {
	serial := inv.SerialNumber
	if serial == "" {
		serial = strconv.Itoa(inv.ID)
	}
	return model.Device{ID: "inverter_" + strconv.Itoa(inv.ID), Model: "inverter", SerialNumber: serial}
}

// DeviceStatuses flattens plants into one device per plant and per inverter.
// Incomplete inverters only report status and temperature.
func DeviceStatuses(plants []*model.Plant) map[model.Device][]model.DeviceStatus {
	out := make(map[model.Device][]model.DeviceStatus)
	for _, p := range plants {
		out[PlantDevice(p)] = []model.DeviceStatus{
			numeric("Total Power", p.TotalPower, "kWp"),
			numeric("Today Energy", p.TodayEnergy, p.TodayEnergyMetric),
			numeric("Total Energy", p.TotalEnergy, "kWh"),
			numeric("Saving", p.Saving, "R$"),
			numeric("Total Carbon Saving", p.TotalCarbonSaving, "t"),
		}

		for _, inv := range p.Inverters {
			statuses := []model.DeviceStatus{
				text(model.InverterStatusTextSensor.String(), inv.Status.String()),
				numeric("Temperature", inv.Temperature, string(model.NumericUnitDegreeC)),
			}
			if inv.IsComplete() {
				statuses = append(statuses,
					numeric("Power", inv.Power, inv.PowerMetric),
					numeric("Today Energy", inv.TodayEnergy, inv.TodayEnergyMetric),
					numeric("Total Energy", inv.TotalEnergy, inv.TotalEnergyMetric),
					numeric("Power Factor", inv.PowerFactor, ""),
					numeric("Frequency", inv.Frequency, string(model.NumericUnitHertz)),
				)
			}
			for _, mppt := range inv.MPPTs {
				for _, s := range mppt.Strings {
					prefix := mppt.Name + " " + s.Name
					statuses = append(statuses,
						numeric(prefix+" Voltage", s.Voltage, string(model.NumericUnitVolt)),
						numeric(prefix+" Current", s.Amperage, string(model.NumericUnitAmp)),
						text(prefix+" String Status", s.Status.String()),
					)
				}
			}
			for _, ph := range inv.Phases {
				prefix := "Phase " + ph.Name
				statuses = append(statuses,
					numeric(prefix+" Voltage", ph.Voltage, string(model.NumericUnitVolt)),
					numeric(prefix+" Current", ph.Amperage, string(model.NumericUnitAmp)),
					text(prefix+" Voltage Status", ph.StatusVoltage.String()),
					text(prefix+" Amperage Status", ph.StatusAmperage.String()),
				)
			}
			out[InverterDevice(inv)] = statuses
		}
	}
	return out
}
