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
	"net/netip"
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"

	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/models"
)

func TestProberDefaults(t *testing.T) {
	prober := NewProber(models.SNMPProbeConfig{Enabled: true}, logger.NewTestLogger())

	client := prober.clientFor(context.Background(), netip.MustParseAddr("10.255.0.9"))
	assert.Equal(t, "10.255.0.9", client.Target)
	assert.Equal(t, uint16(161), client.Port)
	assert.Equal(t, "public", client.Community)
	assert.Equal(t, gosnmp.Version2c, client.Version)
	assert.Equal(t, 5*time.Second, client.Timeout)
}

func TestProberHonorsConfig(t *testing.T) {
	prober := NewProber(models.SNMPProbeConfig{
		Enabled:   true,
		Community: "netops",
		Port:      1161,
		Timeout:   models.Duration(2 * time.Second),
	}, logger.NewTestLogger())

	client := prober.clientFor(context.Background(), netip.MustParseAddr("192.0.2.1"))
	assert.Equal(t, "192.0.2.1", client.Target)
	assert.Equal(t, uint16(1161), client.Port)
	assert.Equal(t, "netops", client.Community)
	assert.Equal(t, 2*time.Second, client.Timeout)
}

func TestIdentityFromPDUs(t *testing.T) {
	identity := identityFromPDUs([]gosnmp.SnmpPDU{
		{Name: oidSysDescr, Type: gosnmp.OctetString, Value: []byte("RouterOS CRS326-24G-2S+")},
		{Name: oidSysName, Type: gosnmp.OctetString, Value: []byte("sw1")},
		{Name: ".1.3.6.1.2.1.1.3.0", Type: gosnmp.TimeTicks, Value: uint32(12345)},
	})

	assert.Equal(t, "sw1", identity.SysName)
	assert.Equal(t, "RouterOS CRS326-24G-2S+", identity.SysDescr)
}

func TestIdentityFromPDUsSkipsMissingObjects(t *testing.T) {
	identity := identityFromPDUs([]gosnmp.SnmpPDU{
		{Name: oidSysDescr, Type: gosnmp.NoSuchObject},
		{Name: oidSysName, Type: gosnmp.OctetString, Value: []byte("sw1")},
	})

	assert.Equal(t, "sw1", identity.SysName)
	assert.Empty(t, identity.SysDescr)
}
