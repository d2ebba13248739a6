package sunweg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
	"github.com/araddon/dateparse"
)

// SeparateValueMetric splits a vendor value such as "1,23 kWh" or "R$ 12,78"
// into its number and unit. A nil or empty value yields 0 and defaultMetric.
func SeparateValueMetric(value *string, defaultMetric string, metricBefore bool) (float64, string, error) {
	if value == nil || len(*value) == 0 {
		return 0, defaultMetric, nil
	}
	split := strings.Split(*value, " ")
	if len(split) < 2 {
		v, err := parseDecimal(split[0])
		return v, defaultMetric, err
	}
	valueIdx, metricIdx := 0, 1
	if metricBefore {
		valueIdx, metricIdx = 1, 0
	}
	v, err := parseDecimal(split[valueIdx])
	if err != nil {
		return 0, "", err
	}
	return v, split[metricIdx], nil
}

// ConvertSituationStatus maps a string situation code. Note this differs
// from model.StatusFromOrdinal: here 0 is an error and 1 is ok.
func ConvertSituationStatus(situation int) model.Status {
	switch situation {
	case 0:
		return model.StatusError
	case 1:
		return model.StatusOK
	}
	return model.StatusWarn
}

// parseDecimal parses a number that may use a comma as decimal separator.
func parseDecimal(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return v, nil
}

func parseDateTime(s string) (time.Time, error) {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := parseDateTime(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
