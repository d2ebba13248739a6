package model

import (
	"fmt"
	"time"
)

// ProductionStats is the energy produced on a single day. Date is midnight UTC.
type ProductionStats struct {
	Date       time.Time `json:"date"`
	Production float64   `json:"production"`
	Prognostic float64   `json:"prognostic"`
}

func (p ProductionStats) String() string {
	return fmt.Sprintf("ProductionStats{date=%s production=%g prognostic=%g}", p.Date.Format(time.DateOnly), p.Production, p.Prognostic)
}

// StoredProductionStats is a ProductionStats row tied to its plant and
// optional inverter.
type StoredProductionStats struct {
	PlantID    int  `json:"plant_id"`
	InverterID *int `json:"inverter_id,omitempty"`
	ProductionStats
}
