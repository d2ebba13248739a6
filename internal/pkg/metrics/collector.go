package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anicoll/sunweg-integration/internal/pkg/poller"
)

type snapshotSource interface {
	Latest() *poller.Snapshot
}

// Collector exposes the latest poll as Prometheus gauges. It never calls
// SunWEG itself.
type Collector struct {
	source snapshotSource

	plantTotalPower   *prometheus.Desc
	plantTodayEnergy  *prometheus.Desc
	plantTotalEnergy  *prometheus.Desc
	plantCarbonSaving *prometheus.Desc
	plantLastUpdate   *prometheus.Desc
	inverterPower     *prometheus.Desc
	inverterTemp      *prometheus.Desc
	inverterStatus    *prometheus.Desc
	inverterFrequency *prometheus.Desc
	stringVoltage     *prometheus.Desc
	stringCurrent     *prometheus.Desc
	phaseVoltage      *prometheus.Desc
	phaseCurrent      *prometheus.Desc
	lastPoll          *prometheus.Desc
}

func NewCollector(source snapshotSource) *Collector {
	plantLabels := []string{"plant_id", "plant_name"}
	inverterLabels := []string{"plant_id", "inverter_id", "inverter_name"}
	return &Collector{
		source:            source,
		plantTotalPower:   prometheus.NewDesc("sunweg_plant_total_power_kwp", "Installed plant power in kWp", plantLabels, nil),
		plantTodayEnergy:  prometheus.NewDesc("sunweg_plant_today_energy", "Energy produced today, unit in the metric label", append(plantLabels, "metric"), nil),
		plantTotalEnergy:  prometheus.NewDesc("sunweg_plant_total_energy_kwh", "Energy produced since commissioning in kWh", plantLabels, nil),
		plantCarbonSaving: prometheus.NewDesc("sunweg_plant_carbon_saving_total", "Total carbon saving reported by SunWEG", plantLabels, nil),
		plantLastUpdate:   prometheus.NewDesc("sunweg_plant_last_update_timestamp_seconds", "Time of the last reading SunWEG received from the plant", plantLabels, nil),
		inverterPower:     prometheus.NewDesc("sunweg_inverter_power", "Active power, unit in the metric label", append(inverterLabels, "metric"), nil),
		inverterTemp:      prometheus.NewDesc("sunweg_inverter_temperature_celsius", "Inverter temperature", inverterLabels, nil),
		inverterStatus:    prometheus.NewDesc("sunweg_inverter_status", "Inverter status (0 ok, 1 error, 2 warn)", inverterLabels, nil),
		inverterFrequency: prometheus.NewDesc("sunweg_inverter_frequency_hertz", "AC frequency", inverterLabels, nil),
		stringVoltage:     prometheus.NewDesc("sunweg_string_voltage_volts", "PV string voltage", append(inverterLabels, "mppt", "string"), nil),
		stringCurrent:     prometheus.NewDesc("sunweg_string_current_amperes", "PV string current", append(inverterLabels, "mppt", "string"), nil),
		phaseVoltage:      prometheus.NewDesc("sunweg_phase_voltage_volts", "AC phase voltage", append(inverterLabels, "phase"), nil),
		phaseCurrent:      prometheus.NewDesc("sunweg_phase_current_amperes", "AC phase current", append(inverterLabels, "phase"), nil),
		lastPoll:          prometheus.NewDesc("sunweg_last_poll_timestamp_seconds", "Time of the last successful poll", nil, nil),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.plantTotalPower
	ch <- c.plantTodayEnergy
	ch <- c.plantTotalEnergy
	ch <- c.plantCarbonSaving
	ch <- c.plantLastUpdate
	ch <- c.inverterPower
	ch <- c.inverterTemp
	ch <- c.inverterStatus
	ch <- c.inverterFrequency
	ch <- c.stringVoltage
	ch <- c.stringCurrent
	ch <- c.phaseVoltage
	ch <- c.phaseCurrent
	ch <- c.lastPoll
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Latest()
	if snap == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.lastPoll, prometheus.GaugeValue, float64(snap.Time.Unix()))

	for _, p := range snap.Plants {
		plantID := strconv.Itoa(p.ID)
		ch <- prometheus.MustNewConstMetric(c.plantTotalPower, prometheus.GaugeValue, p.TotalPower, plantID, p.Name)
		ch <- prometheus.MustNewConstMetric(c.plantTodayEnergy, prometheus.GaugeValue, p.TodayEnergy, plantID, p.Name, p.TodayEnergyMetric)
		ch <- prometheus.MustNewConstMetric(c.plantTotalEnergy, prometheus.CounterValue, p.TotalEnergy, plantID, p.Name)
		ch <- prometheus.MustNewConstMetric(c.plantCarbonSaving, prometheus.CounterValue, p.TotalCarbonSaving, plantID, p.Name)
		if p.LastUpdate != nil {
			ch <- prometheus.MustNewConstMetric(c.plantLastUpdate, prometheus.GaugeValue, float64(p.LastUpdate.Unix()), plantID, p.Name)
		}

		for _, inv := range p.Inverters {
			labels := []string{plantID, strconv.Itoa(inv.ID), inv.Name}
			ch <- prometheus.MustNewConstMetric(c.inverterTemp, prometheus.GaugeValue, inv.Temperature, labels...)
			ch <- prometheus.MustNewConstMetric(c.inverterStatus, prometheus.GaugeValue, float64(inv.Status), labels...)
			if !inv.IsComplete() {
				continue
			}
			ch <- prometheus.MustNewConstMetric(c.inverterPower, prometheus.GaugeValue, inv.Power, append(labels, inv.PowerMetric)...)
			ch <- prometheus.MustNewConstMetric(c.inverterFrequency, prometheus.GaugeValue, inv.Frequency, labels...)
			// Vendor names are not unique, a repeated label set would fail the
			// whole scrape. The first reading wins.
			seen := map[string]struct{}{}
			for _, mppt := range inv.MPPTs {
				for _, s := range mppt.Strings {
					if !firstSeen(seen, "string", mppt.Name, s.Name) {
						continue
					}
					ch <- prometheus.MustNewConstMetric(c.stringVoltage, prometheus.GaugeValue, s.Voltage, append(labels, mppt.Name, s.Name)...)
					ch <- prometheus.MustNewConstMetric(c.stringCurrent, prometheus.GaugeValue, s.Amperage, append(labels, mppt.Name, s.Name)...)
				}
			}
			for _, ph := range inv.Phases {
				if !firstSeen(seen, "phase", ph.Name) {
					continue
				}
				ch <- prometheus.MustNewConstMetric(c.phaseVoltage, prometheus.GaugeValue, ph.Voltage, append(labels, ph.Name)...)
				ch <- prometheus.MustNewConstMetric(c.phaseCurrent, prometheus.GaugeValue, ph.Amperage, append(labels, ph.Name)...)
			}
		}
	}
}

func firstSeen(seen map[string]struct{}, parts ...string) bool {
	key := strings.Join(parts, "\x00")
	if _, ok := seen[key]; ok {
		return false
	}
	seen[key] = struct{}{}
	return true
}
