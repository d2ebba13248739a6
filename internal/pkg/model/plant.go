package model

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var deprecationOnce sync.Once

// Plant is a solar installation. ID is assigned when the plant is built from
// a vendor response and is never changed afterwards.
type Plant struct {
	ID                int         `json:"id"`
	Name              string      `json:"name"`
	TotalPower        float64     `json:"total_power"`
	Saving            float64     `json:"saving"`
	TodayEnergy       float64     `json:"today_energy"`
	TodayEnergyMetric string      `json:"today_energy_metric"`
	TotalEnergy       float64     `json:"total_energy"`
	TotalCarbonSaving float64     `json:"total_carbon_saving"`
	LastUpdate        *time.Time  `json:"last_update"`
	Inverters         []*Inverter `json:"inverters"`
}

// KWhPerKWp is no longer reported by SunWEG.
//
// Deprecated: always returns 0.
func (p *Plant) KWhPerKWp() float64 {
	warnDeprecated("kwh_per_kwp")
	return 0
}

// PerformanceRate is no longer reported by SunWEG.
//
// Deprecated: always returns 0.
func (p *Plant) PerformanceRate() float64 {
	warnDeprecated("performance_rate")
	return 0
}

func (p *Plant) String() string {
	lastUpdate := "never"
	if p.LastUpdate != nil {
		lastUpdate = p.LastUpdate.Format(time.RFC3339)
	}
	return fmt.Sprintf("Plant{id=%d name=%q total_power=%g today_energy=%g %s total_energy=%g saving=%g carbon=%g last_update=%s inverters=%d}",
		p.ID, p.Name, p.TotalPower, p.TodayEnergy, p.TodayEnergyMetric, p.TotalEnergy, p.Saving, p.TotalCarbonSaving, lastUpdate, len(p.Inverters))
}

func warnDeprecated(field string) {
	deprecationOnce.Do(func() {
		zap.L().Warn("deprecated plant field accessed, it always returns 0", zap.String("field", field))
	})
}
