package mqtt

import (
	"errors"
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/anicoll/sunweg-integration/internal/pkg/config"
)

type service struct {
	client            paho_mqtt.Client
	mu                sync.Mutex
	configuredDevices map[string]struct{}
}

func New(client paho_mqtt.Client) *service {
	return &service{
		client:            client,
		configuredDevices: make(map[string]struct{}),
	}
}

// NewClient builds a paho client for the configured broker.
func NewClient(cfg *config.MqttConfig) paho_mqtt.Client {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Host).
		SetClientID("sunweg-integration-" + uuid.NewString()[:8]).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	return paho_mqtt.NewClient(opts)
}

func (s *service) Connect() error {
	token := s.client.Connect()
	res := token.WaitTimeout(time.Second * 5)
	if err := token.Error(); err != nil {
		return err
	}
	if res {
		return nil
	}
	return errors.New("unable to connect in time")
}
