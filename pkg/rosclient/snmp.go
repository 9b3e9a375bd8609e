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

package rosclient

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/models"
)

const (
	oidSysDescr = ".1.3.6.1.2.1.1.1.0"
	oidSysName  = ".1.3.6.1.2.1.1.5.0"

	defaultProbePort      = 161
	defaultProbeTimeout   = 5 * time.Second
	defaultProbeCommunity = "public"
)

// DeviceIdentity is what a device reports about itself over SNMP.
type DeviceIdentity struct {
	SysName  string
	SysDescr string
}

// Prober asks a device for its identity before provisioning touches it.
// A name mismatch means the inventory address points at the wrong box.
type Prober struct {
	cfg models.SNMPProbeConfig
	log logger.Logger
}

func NewProber(cfg models.SNMPProbeConfig, log logger.Logger) *Prober {
	if cfg.Port == 0 {
		cfg.Port = defaultProbePort
	}

	if time.Duration(cfg.Timeout) == 0 {
		cfg.Timeout = models.Duration(defaultProbeTimeout)
	}

	if cfg.Community == "" {
		cfg.Community = defaultProbeCommunity
	}

	return &Prober{cfg: cfg, log: log}
}

// Identify queries sysName and sysDescr from the device.
func (p *Prober) Identify(ctx context.Context, addr netip.Addr) (*DeviceIdentity, error) {
	client := p.clientFor(ctx, addr)

	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}

	defer func() {
		if err := client.Conn.Close(); err != nil {
			p.log.Warn().Err(err).Str("address", addr.String()).Msg("Failed to close SNMP connection")
		}
	}()

	result, err := client.Get([]string{oidSysDescr, oidSysName})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSNMPGetFailed, err)
	}

	if result.Error != gosnmp.NoError {
		return nil, fmt.Errorf("%w: %s", ErrSNMPStatus, result.Error)
	}

	identity := identityFromPDUs(result.Variables)
	if identity.SysName == "" && identity.SysDescr == "" {
		return nil, ErrNoSNMPData
	}

	return &identity, nil
}

func (p *Prober) clientFor(ctx context.Context, addr netip.Addr) *gosnmp.GoSNMP {
	return &gosnmp.GoSNMP{
		Target:    addr.String(),
		Port:      p.cfg.Port,
		Community: p.cfg.Community,
		Version:   gosnmp.Version2c,
		Timeout:   time.Duration(p.cfg.Timeout),
		Retries:   1,
		MaxOids:   gosnmp.MaxOids,
		Context:   ctx,
	}
}

func identityFromPDUs(variables []gosnmp.SnmpPDU) DeviceIdentity {
	var identity DeviceIdentity

	for _, v := range variables {
		if v.Type != gosnmp.OctetString {
			continue
		}

		value, ok := v.Value.([]byte)
		if !ok {
			continue
		}

		switch v.Name {
		case oidSysDescr:
			identity.SysDescr = string(value)
		case oidSysName:
			identity.SysName = string(value)
		}
	}

	return identity
}
