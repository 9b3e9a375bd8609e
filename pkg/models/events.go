package models

import (
	"fmt"
	"time"
)

// NATSConfig configures NATS connectivity.
type NATSConfig struct {
	URL    string `json:"url"`
	Domain string `json:"domain,omitempty"`
}

// Validate ensures the NATS configuration is valid.
func (c *NATSConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("nats url is required")
	}

	return nil
}

// EventsConfig configures the change-event publishing system.
type EventsConfig struct {
	Enabled    bool     `json:"enabled"`
	StreamName string   `json:"stream_name"`
	Subjects   []string `json:"subjects"`
}

// Validate ensures the events configuration is valid.
func (c *EventsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.StreamName == "" {
		c.StreamName = "events"
	}

	if len(c.Subjects) == 0 {
		c.Subjects = []string{"events.topology.*", "events.provision.*"}
	}

	return nil
}

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// TopologyRefreshEventData describes a completed inventory refresh.
type TopologyRefreshEventData struct {
	Timestamp   time.Time `json:"timestamp"`
	DeviceCount int       `json:"device_count"`
	FetchTimeMS int64     `json:"fetch_time_ms"`
}

// ProvisionEventData describes a planned or applied device provisioning run.
type ProvisionEventData struct {
	RunID         string    `json:"run_id"`
	DeviceName    string    `json:"device_name"`
	Timestamp     time.Time `json:"timestamp"`
	MutationCount int       `json:"mutation_count"`
	Applied       bool      `json:"applied"`
	Error         string    `json:"error,omitempty"`
}
