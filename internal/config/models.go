package config

import (
	"fmt"
	"time"

	"github.com/muurk/ookbridge/internal/decoder"
	"github.com/muurk/ookbridge/internal/publish"
	"github.com/muurk/ookbridge/internal/pulse"
)

// CurrentVersion is the config file format version.
const CurrentVersion = 1

// StdinInput selects standard input as the pulse source.
const StdinInput = "-"

// Config represents the entire bridge configuration file.
type Config struct {
	Version  int          `yaml:"version"`
	SourceID string       `yaml:"source_id,omitempty"` // Overrides the derived device identity
	Radio    RadioConfig  `yaml:"radio"`
	Topics   TopicsConfig `yaml:"topics"`
	MQTT     MQTTConfig   `yaml:"mqtt"`
	Redis    RedisConfig  `yaml:"redis"`
	Server   ServerConfig `yaml:"server"`
}

// RadioConfig describes the pulse source and decoder timing.
type RadioConfig struct {
	Input            string        `yaml:"input"`              // Serial device path, or "-" for stdin
	Baud             int           `yaml:"baud"`               // Serial line speed
	SearchTimeout    time.Duration `yaml:"search_timeout"`     // Per-pulse timeout while searching for sync
	FrameTimeout     time.Duration `yaml:"frame_timeout"`      // Per-pulse timeout while capturing a frame
	SearchAttempts   int           `yaml:"search_attempts"`    // Pulses examined per sync search
	RainGaugeHoldoff time.Duration `yaml:"rain_gauge_holdoff"` // Pause after an accepted rain gauge frame
}

// TopicsConfig holds the topic bases readings are published under.
type TopicsConfig struct {
	RainGauge string `yaml:"rain_gauge"` // e.g. exp/NX6331
	F007TP    string `yaml:"f007tp"`     // channel number is appended, e.g. exp/F007TP-
}

// MQTTConfig configures the MQTT publisher.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`             // e.g. tcp://192.168.99.99:1883
	ClientID string `yaml:"client_id"`          // MQTT client identifier
	Username string `yaml:"username,omitempty"` // Optional broker credentials
	Password string `yaml:"password,omitempty"`
	QoS      int    `yaml:"qos"`    // 0, 1 or 2
	Retain   bool   `yaml:"retain"` // Publish with the retain flag
}

// RedisConfig configures the Redis publisher.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"` // host:port
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

// ServerConfig configures the HTTP live feed and mDNS advertisement.
type ServerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Listen    string `yaml:"listen"`    // e.g. :9433
	Advertise bool   `yaml:"advertise"` // Register _ookbridge._tcp via mDNS
}

// Default returns a configuration with default values.
func Default() *Config {
	dec := decoder.DefaultConfig()
	return &Config{
		Version: CurrentVersion,
		Radio: RadioConfig{
			Input:            "/dev/ttyUSB0",
			Baud:             pulse.DefaultBaud,
			SearchTimeout:    dec.SearchTimeout,
			FrameTimeout:     dec.FrameTimeout,
			SearchAttempts:   dec.SearchAttempts,
			RainGaugeHoldoff: dec.RainGaugeHoldoff,
		},
		Topics: TopicsConfig{
			RainGauge: publish.DefaultRainGaugeBase,
			F007TP:    publish.DefaultF007TPBase,
		},
		MQTT: MQTTConfig{
			Enabled:  true,
			Broker:   "tcp://192.168.99.99:1883",
			ClientID: publish.DefaultMQTTClientID,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Server: ServerConfig{
			Listen:    ":9433",
			Advertise: true,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}

	if c.Radio.Input == "" {
		return fmt.Errorf("radio.input is required")
	}
	if c.Radio.Input != StdinInput && c.Radio.Baud <= 0 {
		return fmt.Errorf("radio.baud must be positive, got %d", c.Radio.Baud)
	}
	if err := c.DecoderConfig().Validate(); err != nil {
		return fmt.Errorf("radio: %w", err)
	}

	if c.Topics.RainGauge == "" || c.Topics.F007TP == "" {
		return fmt.Errorf("topics.rain_gauge and topics.f007tp are required")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}

	if c.Server.Enabled && c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required when the server is enabled")
	}

	return nil
}

// DecoderConfig returns the decoder timing settings.
func (c *Config) DecoderConfig() decoder.Config {
	return decoder.Config{
		SearchTimeout:    c.Radio.SearchTimeout,
		FrameTimeout:     c.Radio.FrameTimeout,
		SearchAttempts:   c.Radio.SearchAttempts,
		RainGaugeHoldoff: c.Radio.RainGaugeHoldoff,
	}
}

// PublishTopics returns the topic bases.
func (c *Config) PublishTopics() publish.Topics {
	return publish.Topics{RainGauge: c.Topics.RainGauge, F007TP: c.Topics.F007TP}
}

// MQTTOptions returns the MQTT publisher settings.
func (c *Config) MQTTOptions() publish.MQTTConfig {
	return publish.MQTTConfig{
		Broker:   c.MQTT.Broker,
		ClientID: c.MQTT.ClientID,
		Username: c.MQTT.Username,
		Password: c.MQTT.Password,
		QoS:      byte(c.MQTT.QoS),
		Retain:   c.MQTT.Retain,
	}
}

// RedisOptions returns the Redis publisher settings.
func (c *Config) RedisOptions() publish.RedisConfig {
	return publish.RedisConfig{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// redactedSecret replaces credentials in Redacted.
const redactedSecret = "********"

// Redacted returns a copy of the configuration with credentials masked, for
// display.
func (c *Config) Redacted() *Config {
	out := *c
	if out.MQTT.Password != "" {
		out.MQTT.Password = redactedSecret
	}
	if out.Redis.Password != "" {
		out.Redis.Password = redactedSecret
	}
	return &out
}
