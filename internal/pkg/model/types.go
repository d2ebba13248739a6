package model

import "strings"

type NumericUnit string

const (
	NumericUnitAmp          NumericUnit = "A"
	NumericUnitKiloWatt     NumericUnit = "kW"
	NumericUnitWatt         NumericUnit = "W"
	NumericUnitKiloWattHour NumericUnit = "kWh"
	NumericUnitMegaWattHour NumericUnit = "MWh"
	NumericUnitDegreeC      NumericUnit = "°C"
	NumericUnitVolt         NumericUnit = "V"
	NumericUnitHertz        NumericUnit = "Hz"
	NumericUnitTonne        NumericUnit = "t"
	NumericUnitNone         NumericUnit = ""
)

func (n NumericUnit) String() string {
	return string(n)
}

type (
	TextSensor  string
	TextSensorz []TextSensor
)

const (
	InverterStatusTextSensor TextSensor = "status"
	StringStatusTextSensor   TextSensor = "string_status"
	VoltageStatusTextSensor  TextSensor = "voltage_status"
	AmperageStatusTextSensor TextSensor = "amperage_status"
)

func (t TextSensor) String() string {
	return string(t)
}

// HasSlug reports whether slug ends with one of the text sensor names, so
// prefixed slugs like "string_1_string_status" match too.
func (ts TextSensorz) HasSlug(slug string) bool {
	for _, t := range ts {
		if t.String() == slug || strings.HasSuffix(slug, "_"+t.String()) {
			return true
		}
	}
	return false
}

var TextSensors TextSensorz = TextSensorz{
	InverterStatusTextSensor,
	StringStatusTextSensor,
	VoltageStatusTextSensor,
	AmperageStatusTextSensor,
}
