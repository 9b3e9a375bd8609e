/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/carverauto/netfabric/pkg/logger"
)

// Duration wraps time.Duration to accept both JSON duration strings
// ("30s") and numeric nanoseconds.
type Duration time.Duration

var errInvalidDuration = fmt.Errorf("invalid duration")

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

var (
	errNetboxURLRequired   = fmt.Errorf("netbox.url is required")
	errNetboxTokenRequired = fmt.Errorf("netbox.token is required")
	errListenAddrRequired  = fmt.Errorf("listen address is required")
)

const (
	defaultTopologyTTL   = 5 * time.Minute
	defaultNetboxTimeout = 30 * time.Second
	defaultRouterOSPort  = 8728
	defaultSNMPPort      = 161
	defaultAPIUser       = "admin"
)

// NetboxConfig points the inventory client at a NetBox instance.
type NetboxConfig struct {
	URL     string   `json:"url"`
	Token   string   `json:"token"`
	Timeout Duration `json:"timeout,omitempty"`
}

// CredentialProfile holds the API login for a group of devices. Profiles
// are referenced by label from the inventory's tenant custom fields.
type CredentialProfile struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// RouterOSConfig configures live-device API access.
type RouterOSConfig struct {
	Port    int      `json:"port,omitempty"`
	Timeout Duration `json:"timeout,omitempty"`
}

// SNMPProbeConfig configures the pre-provisioning identity probe.
type SNMPProbeConfig struct {
	Enabled   bool     `json:"enabled"`
	Community string   `json:"community,omitempty"`
	Port      uint16   `json:"port,omitempty"`
	Timeout   Duration `json:"timeout,omitempty"`
}

// PostgresConfig locates the provisioning audit database.
type PostgresConfig struct {
	Enabled bool   `json:"enabled"`
	DSN     string `json:"dsn"`
}

// CoreServiceConfig is the top-level configuration for the netfabric
// service binary.
type CoreServiceConfig struct {
	ListenAddr  string                       `json:"listen_addr"`
	APIKey      string                       `json:"api_key,omitempty"`
	CORS        CORSConfig                   `json:"cors,omitempty"`
	Netbox      NetboxConfig                 `json:"netbox"`
	Credentials map[string]CredentialProfile `json:"credentials,omitempty"`
	TopologyTTL Duration                     `json:"topology_ttl,omitempty"`
	RouterOS    *RouterOSConfig              `json:"routeros,omitempty"`
	SNMP        *SNMPProbeConfig             `json:"snmp,omitempty"`
	NATS        *NATSConfig                  `json:"nats,omitempty"`
	Database    *PostgresConfig              `json:"database,omitempty"`
	Events      *EventsConfig                `json:"events,omitempty"`
	Logging     *logger.Config               `json:"logging,omitempty"`
}

// Validate implements config.Validator.
func (c *CoreServiceConfig) Validate() error {
	if c.ListenAddr == "" {
		return errListenAddrRequired
	}

	if c.Netbox.URL == "" {
		return errNetboxURLRequired
	}

	if c.Netbox.Token == "" {
		return errNetboxTokenRequired
	}

	if time.Duration(c.Netbox.Timeout) == 0 {
		c.Netbox.Timeout = Duration(defaultNetboxTimeout)
	}

	if time.Duration(c.TopologyTTL) == 0 {
		c.TopologyTTL = Duration(defaultTopologyTTL)
	}

	if c.RouterOS == nil {
		c.RouterOS = &RouterOSConfig{}
	}

	if c.RouterOS.Port == 0 {
		c.RouterOS.Port = defaultRouterOSPort
	}

	if c.SNMP != nil && c.SNMP.Port == 0 {
		c.SNMP.Port = defaultSNMPPort
	}

	for label, profile := range c.Credentials {
		if profile.Username == "" {
			profile.Username = defaultAPIUser
			c.Credentials[label] = profile
		}
	}

	if c.NATS != nil {
		if err := c.NATS.Validate(); err != nil {
			return err
		}
	}

	if c.Events != nil {
		if err := c.Events.Validate(); err != nil {
			return err
		}
	}

	return nil
}
