package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
	"github.com/anicoll/sunweg-integration/internal/pkg/publisher"
)

const manufacturer = "WEG"

func (s *service) Write(ctx context.Context, data []map[string]any) error {
	for _, d := range data {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.PublishData(d); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) RegisterDevice(device *model.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.configuredDevices[device.ID]; exists {
		return nil
	}
	registerMessage := defaultRegisterMsg(device)
	topic := fmt.Sprintf("homeassistant/sensor/%s/config", publisher.Identifier(*device))

	payload, err := json.Marshal(registerMessage)
	if err != nil {
		return err
	}
	token := s.client.Publish(topic, 1, true, payload)
	if res := token.WaitTimeout(time.Second * 5); !res {
		return fmt.Errorf("timed out registering device %s", device.ID)
	}
	if err := token.Error(); err != nil {
		return err
	}
	s.configuredDevices[device.ID] = struct{}{}
	return nil
}

func (s *service) PublishData(data map[string]any) error {
	slug, _ := data["slug"].(string)
	identifier, _ := data["identifier"].(string)
	value, _ := data["value"].(string)
	topic := fmt.Sprintf("homeassistant/sensor/%s/%s/state", identifier, slug)

	payload := map[string]string{
		"value": value,
	}
	if !model.TextSensors.HasSlug(slug) {
		unit, _ := data["unit_of_measurement"].(string)
		payload["unit_of_measurement"] = unit
	}

	publishData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	token := s.client.Publish(topic, 0, false, publishData)
	if res := token.WaitTimeout(time.Second * 10); !res {
		return fmt.Errorf("timed out publishing %s", topic)
	}
	return token.Error()
}

func defaultRegisterMsg(device *model.Device) model.RegisterMessage {
	name := fmt.Sprintf("%s %s", device.Model, device.SerialNumber)
	slugIdentifier := publisher.Identifier(*device)

	return model.RegisterMessage{
		Tilda:      fmt.Sprintf("homeassistant/sensor/%s", slugIdentifier),
		Name:       name,
		ID:         strings.ToLower(slugIdentifier),
		StateTopic: "~/state",
		Device: model.RegisterDevice{
			Name:         name,
			Identifiers:  []string{slugIdentifier},
			Model:        device.Model,
			Manufacturer: manufacturer,
		},
	}
}
