// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DHL eCS
	DHLBaseURL      string `envconfig:"DHL_BASE_URL" default:"https://api.dhlecommerce.dhl.com"`
	DHLEKP          string `envconfig:"DHL_EKP"`
	DHLAPIToken     string `envconfig:"DHL_API_TOKEN"`
	DHLContactName  string `envconfig:"DHL_CONTACT_NAME"`
	DHLAWBCopyCount int    `envconfig:"DHL_AWB_COPY_COUNT" default:"1"`
	DHLUseMock      bool   `envconfig:"DHL_USE_MOCK" default:"false"`

	// Label storage
	LabelDir     string `envconfig:"LABEL_DIR" default:"/var/lib/dhlbridge/labels"`
	LabelBaseURL string `envconfig:"LABEL_BASE_URL" default:"http://localhost:8080/labels"`
	LabelFormat  string `envconfig:"LABEL_FORMAT" default:"pdf"`

	// Order state store
	StoreBackend string `envconfig:"STORE_BACKEND" default:"redis"` // "redis" or "memory"
	RedisURL     string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"dhlbridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("store.backend", c.StoreBackend),
		attribute.Bool("dhl.use_mock", c.DHLUseMock),
	}
}
