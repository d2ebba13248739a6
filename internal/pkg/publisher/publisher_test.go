package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakePublisher struct {
	writes     [][]map[string]any
	registered []*model.Device
	err        error
}

func (f *fakePublisher) Write(ctx context.Context, data []map[string]any) error {
	f.writes = append(f.writes, data)
	return f.err
}

func (f *fakePublisher) RegisterDevice(device *model.Device) error {
	f.registered = append(f.registered, device)
	return f.err
}

func setup(t *testing.T) *fakePublisher {
	t.Helper()
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t)))
	unregisterAll()
	t.Cleanup(unregisterAll)

	fake := &fakePublisher{}
	require.NoError(t, RegisterPublisher("fake", fake))
	return fake
}

func value(s string) *string {
	return &s
}

func TestRegisterPublisher_Duplicate(t *testing.T) {
	setup(t)
	assert.ErrorIs(t, RegisterPublisher("fake", &fakePublisher{}), errAlreadyRegistered)
}

func TestPublishData(t *testing.T) {
	fake := setup(t)
	device := model.Device{ID: "inverter_21255", Model: "inverter", SerialNumber: "1234ABC"}

	err := Registry{}.PublishData(context.Background(), map[model.Device][]model.DeviceStatus{
		device: {
			{Name: "Power", Slug: "power", Value: value("1.5"), Unit: "kW"},
			{Name: "Total Energy", Slug: "total_energy", Value: value("2.5"), Unit: "MWh"},
			{Name: "Temperature", Slug: "temperature", Value: nil, Unit: "℃"},
			{Name: "Status", Slug: "status", Value: value("WARN")},
		},
	})
	require.NoError(t, err)
	require.Len(t, fake.writes, 1)

	rows := map[string]map[string]any{}
	for _, row := range fake.writes[0] {
		assert.Equal(t, "inverter_1234ABC", row["identifier"])
		rows[row["slug"].(string)] = row
	}
	assert.Equal(t, "1.5000", rows["power"]["value"])
	assert.Equal(t, "2500.0000", rows["total_energy"]["value"])
	assert.Equal(t, "kWh", rows["total_energy"]["unit_of_measurement"])
	assert.Equal(t, "0.0000", rows["temperature"]["value"])
	assert.Equal(t, "°C", rows["temperature"]["unit_of_measurement"])
	assert.Equal(t, "WARN", rows["status"]["value"])
}

func TestPublishData_SkipsUnchanged(t *testing.T) {
	fake := setup(t)
	device := model.Device{ID: "plant_1", Model: "plant", SerialNumber: "1"}
	statuses := map[model.Device][]model.DeviceStatus{
		device: {{Name: "Power", Slug: "power", Value: value("1"), Unit: "kW"}},
	}

	require.NoError(t, PublishData(context.Background(), statuses))
	require.NoError(t, PublishData(context.Background(), statuses))
	assert.Len(t, fake.writes, 1)

	statuses[device][0].Value = value("2")
	require.NoError(t, PublishData(context.Background(), statuses))
	assert.Len(t, fake.writes, 2)
}

func TestPublishData_ReportsFailures(t *testing.T) {
	fake := setup(t)
	fake.err = errors.New("boom")

	err := PublishData(context.Background(), map[model.Device][]model.DeviceStatus{
		{Model: "plant", SerialNumber: "1"}: {{Slug: "power", Value: value("1"), Unit: "kW"}},
	})
	assert.ErrorContains(t, err, "boom")
}

func TestRegisterDevice(t *testing.T) {
	fake := setup(t)
	device := &model.Device{ID: "plant_1", Model: "plant", SerialNumber: "1"}
	require.NoError(t, Registry{}.RegisterDevice(device))
	assert.Equal(t, []*model.Device{device}, fake.registered)
}
