package publisher

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
	"go.uber.org/zap"
)

var errAlreadyRegistered = errors.New("publisher already registered")

var (
	mu                   sync.RWMutex
	registeredPublishers = make(map[string]publisher)
	sensors              sync.Map
)

type publisher interface {
	// Write stores or forwards the rows built by PublishData.
	Write(ctx context.Context, data []map[string]any) error
	RegisterDevice(device *model.Device) error
}

func RegisterPublisher(name string, publisher publisher) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registeredPublishers[name]; ok {
		return errAlreadyRegistered
	}
	registeredPublishers[name] = publisher
	return nil
}

func unregisterAll() {
	mu.Lock()
	defer mu.Unlock()
	registeredPublishers = make(map[string]publisher)
	sensors.Range(func(key, _ any) bool {
		sensors.Delete(key)
		return true
	})
}

// Identifier is the stable key of a device across publishers.
func Identifier(device model.Device) string {
	return fmt.Sprintf("%s_%s", strings.ReplaceAll(device.Model, ".", ""), device.SerialNumber)
}

func PublishData(ctx context.Context, deviceStatusMap map[model.Device][]model.DeviceStatus) error {
	count := 0
	data := make([]map[string]any, 0)
	now := time.Now()
	for device, statuses := range deviceStatusMap {
		identifier := Identifier(device)
		for _, status := range statuses {
			val, unit := normalise(status)
			if !shouldUpdate(identifier, status.Slug, val) {
				continue
			}
			count++
			data = append(data, map[string]any{
				"value":               val,
				"slug":                status.Slug,
				"timestamp":           now,
				"identifier":          identifier,
				"unit_of_measurement": unit,
			})
		}
	}
	if len(data) == 0 {
		return nil
	}

	mu.RLock()
	defer mu.RUnlock()
	var errs []error
	for name, publisher := range registeredPublishers {
		if err := publisher.Write(ctx, data); err != nil {
			zap.L().Error("failed to publish data", zap.Error(err), zap.String("publisher", name))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		zap.L().Debug("updated sensors", zap.Int("count", count), zap.String("publisher", name))
	}
	return errors.Join(errs...)
}

// normalise converts a status to the value and unit published downstream.
// Numeric values are rendered with four decimals, text sensors are passed
// through untouched.
func normalise(status model.DeviceStatus) (string, string) {
	if model.TextSensors.HasSlug(status.Slug) {
		if status.Value == nil {
			return "", status.Unit
		}
		return *status.Value, status.Unit
	}

	raw := "0.00"
	if status.Value != nil && *status.Value != "--" {
		raw = *status.Value
	}
	value, ok := new(big.Rat).SetString(raw)
	if !ok {
		value = new(big.Rat)
	}

	unit := status.Unit
	switch unit {
	case "kWp":
		unit = "kW"
	case "℃":
		unit = "°C"
	case "MWh":
		unit = "kWh"
		value = value.Mul(value, new(big.Rat).SetInt64(1000))
	case "GWh":
		unit = "kWh"
		value = value.Mul(value, new(big.Rat).SetInt64(1000000))
	case "MW":
		unit = "kW"
		value = value.Mul(value, new(big.Rat).SetInt64(1000))
	}
	return value.FloatString(4), unit
}

func RegisterDevice(device *model.Device) error {
	mu.RLock()
	defer mu.RUnlock()
	for name, publisher := range registeredPublishers {
		if err := publisher.RegisterDevice(device); err != nil {
			zap.L().Error("failed to register device", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("registered device", zap.String("device", device.SerialNumber), zap.String("publisher", name))
	}
	return nil
}

// Registry fans out to every publisher registered with RegisterPublisher.
type Registry struct{}

func (Registry) PublishData(ctx context.Context, deviceStatusMap map[model.Device][]model.DeviceStatus) error {
	return PublishData(ctx, deviceStatusMap)
}

func (Registry) RegisterDevice(device *model.Device) error {
	return RegisterDevice(device)
}

func shouldUpdate(identifier, slug, newValue string) bool {
	key := fmt.Sprintf("%s_%s", identifier, slug)
	oldValue, exists := sensors.Load(key)
	if exists && strings.EqualFold(newValue, oldValue.(string)) {
		return false
	}
	if !exists {
		zap.L().Info("configured sensor", zap.String("device", identifier), zap.String("sensor", slug), zap.String("value", newValue))
	} else {
		zap.L().Debug("sensor changed", zap.String("device", identifier), zap.String("sensor", slug), zap.String("value", newValue))
	}
	sensors.Store(key, newValue)
	return true
}
