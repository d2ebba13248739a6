package model

import "fmt"

// Inverter as returned by a plant listing is a stub holding identity, status
// and temperature only. It becomes complete once its detail has been fetched.
type Inverter struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	SerialNumber      string  `json:"serial_number"`
	Status            Status  `json:"status"`
	Temperature       float64 `json:"temperature"`
	TotalEnergy       float64 `json:"total_energy"`
	TotalEnergyMetric string  `json:"total_energy_metric"`
	TodayEnergy       float64 `json:"today_energy"`
	TodayEnergyMetric string  `json:"today_energy_metric"`
	PowerFactor       float64 `json:"power_factor"`
	Frequency         float64 `json:"frequency"`
	Power             float64 `json:"power"`
	PowerMetric       string  `json:"power_metric"`
	Phases            []Phase `json:"phases"`
	MPPTs             []*MPPT `json:"mppts"`
}

// IsComplete reports whether any measurement has been filled in.
func (i *Inverter) IsComplete() bool {
	return i.TodayEnergy != 0 ||
		i.TotalEnergy != 0 ||
		i.PowerFactor != 0 ||
		i.Frequency != 0 ||
		i.Power != 0
}

// Strings flattens the strings of every MPPT.
func (i *Inverter) Strings() []String {
	var out []String
	for _, m := range i.MPPTs {
		out = append(out, m.Strings...)
	}
	return out
}

func (i *Inverter) String() string {
	return fmt.Sprintf("Inverter{id=%d name=%q sn=%q status=%s temperature=%g power=%g %s today=%g %s total=%g %s pf=%g freq=%g mppts=%d phases=%d}",
		i.ID, i.Name, i.SerialNumber, i.Status, i.Temperature, i.Power, i.PowerMetric,
		i.TodayEnergy, i.TodayEnergyMetric, i.TotalEnergy, i.TotalEnergyMetric,
		i.PowerFactor, i.Frequency, len(i.MPPTs), len(i.Phases))
}

// MPPT groups the strings tracked by one maximum power point tracker.
type MPPT struct {
	Name    string   `json:"name"`
	Strings []String `json:"strings"`
}

func (m *MPPT) String() string {
	return fmt.Sprintf("MPPT{name=%q strings=%d}", m.Name, len(m.Strings))
}

type String struct {
	Name     string  `json:"name"`
	Voltage  float64 `json:"voltage"`
	Amperage float64 `json:"amperage"`
	Status   Status  `json:"status"`
}

func (s String) String() string {
	return fmt.Sprintf("String{name=%q voltage=%g amperage=%g status=%s}", s.Name, s.Voltage, s.Amperage, s.Status)
}

// Phase is one AC output phase. Voltage and current carry separate statuses.
type Phase struct {
	Name           string  `json:"name"`
	Voltage        float64 `json:"voltage"`
	Amperage       float64 `json:"amperage"`
	StatusVoltage  Status  `json:"status_voltage"`
	StatusAmperage Status  `json:"status_amperage"`
}

func (p Phase) String() string {
	return fmt.Sprintf("Phase{name=%q voltage=%g amperage=%g status_voltage=%s status_amperage=%s}",
		p.Name, p.Voltage, p.Amperage, p.StatusVoltage, p.StatusAmperage)
}
