package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	SunwegCfg        *SunwegConfig `envPrefix:"SUNWEG_"`
	MqttCfg          *MqttConfig   `envPrefix:"MQTT_"`
	DatabaseURL      string        `env:"DATABASE_URL"`
	MigrationsFolder string        `env:"MIGRATIONS_FOLDER" envDefault:"migrations"`
	PollSchedule     string        `env:"POLL_SCHEDULE" envDefault:"*/5 * * * *"`
	CleanupSchedule  string        `env:"CLEANUP_SCHEDULE" envDefault:"0 3 * * *"`
	ListenAddr       string        `env:"LISTEN_ADDR" envDefault:"0.0.0.0:8000"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"INFO"`
}

type SunwegConfig struct {
	BaseURL  string        `env:"URL" envDefault:"https://api.sunweg.net/v2/"`
	Username string        `env:"USERNAME"`
	Password string        `env:"PASSWORD"`
	Token    string        `env:"TOKEN"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type MqttConfig struct {
	Host     string `env:"HOST"`
	Username string `env:"USER"`
	Password string `env:"PASS"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		SunwegCfg: &SunwegConfig{},
		MqttCfg:   &MqttConfig{},
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
