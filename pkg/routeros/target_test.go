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

package routeros

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/topology"
)

func generate(t *testing.T, topo *topology.Topology, id topology.DeviceID, model string) *Resources {
	t.Helper()

	device, ok := topo.Device(id)
	require.True(t, ok)

	res, err := GenerateTarget(device, model, KeepNames{}, logger.NewTestLogger())
	require.NoError(t, err)

	return res
}

func bridgeVlansByID(res *Resources) map[uint16]*BridgeVlan {
	byID := make(map[uint16]*BridgeVlan)

	for _, bv := range res.BridgeVlans {
		byID[bv.VlanIDs[0].Start] = bv
	}

	return byID
}

func TestGenerateTargetPlainSwitch(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 1, Name: "sw-a"}).
		AddVlan(topology.Vlan{ID: 910, Name: "users", Tag: 10}).
		AddInterface(topology.Interface{ID: 100, Name: "bridge1", Device: 1}).
		AddInterface(topology.Interface{
			ID: 101, Name: "ether1", Device: 1, Bridge: 100, UntaggedVlan: 910,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		AddInterface(topology.Interface{
			ID: 102, Name: "ether2", Device: 1, Bridge: 100, UntaggedVlan: 910,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 2},
		}).
		AddInterface(topology.Interface{
			ID: 103, Name: "ether3", Device: 1, Bridge: 100, UntaggedVlan: 910,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 3},
		}).
		Build()
	require.NoError(t, err)

	res := generate(t, topo, 1, "RB750Gr3")

	assert.Equal(t, "sw-a", res.Identity.Name)
	assert.Len(t, res.Ethernet, 5)

	require.Len(t, res.Bridges, 1)
	assert.Equal(t, &Bridge{VlanFiltering: false, Protocol: ProtocolRSTP}, res.Bridges["switch"])

	require.Len(t, res.BridgePorts, 3)
	for _, name := range []string{"ether1", "ether2", "ether3"} {
		assert.Equal(t, &BridgePort{}, res.BridgePorts[BridgePortKey{Bridge: "switch", Interface: name}])
	}

	assert.Empty(t, res.BridgeVlans)
	assert.Empty(t, res.Vlans)
}

func TestGenerateTargetRoutedAccessPort(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 2, Name: "edge"}).
		AddVlan(topology.Vlan{ID: 911, Name: "uplink", Tag: 11}).
		AddVlan(topology.Vlan{ID: 912, Name: "lan", Tag: 12}).
		AddInterface(topology.Interface{
			ID: 201, Name: "ether1", Device: 2, UntaggedVlan: 911,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		AddInterface(topology.Interface{
			ID: 202, Name: "ether2", Device: 2, UntaggedVlan: 912,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 2},
		}).
		AddAddress(topology.IpAddress{ID: 601, Address: netip.MustParsePrefix("10.64.0.1/24"), Interface: 201}).
		Build()
	require.NoError(t, err)

	res := generate(t, topo, 2, "RB750Gr3")

	assert.Empty(t, res.Bridges)
	assert.Empty(t, res.BridgePorts)

	addr, ok := res.V4Addresses[netip.MustParsePrefix("10.64.0.1/24")]
	require.True(t, ok)
	assert.Equal(t, "ether1", addr.Interface)
}

func TestGenerateTargetSharedPortJoinsSwitch(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 3, Name: "hybrid"}).
		AddVlan(topology.Vlan{ID: 911, Name: "uplink", Tag: 11}).
		AddVlan(topology.Vlan{ID: 912, Name: "lan", Tag: 12}).
		AddInterface(topology.Interface{ID: 300, Name: "bridge1", Device: 3}).
		AddInterface(topology.Interface{
			ID: 301, Name: "ether1", Device: 3, Bridge: 300,
			UntaggedVlan: 911,
			TaggedVlans:  []topology.VlanID{912},
			External:     &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		Build()
	require.NoError(t, err)

	res := generate(t, topo, 3, "RB750Gr3")

	require.Len(t, res.Bridges, 1)
	assert.Equal(t, &Bridge{VlanFiltering: true, Protocol: ProtocolMSTP}, res.Bridges["switch"])

	port := res.BridgePorts[BridgePortKey{Bridge: "switch", Interface: "ether1"}]
	require.NotNil(t, port)
	assert.Equal(t, &BridgePort{IngressFiltering: true, FrameTypes: FrameTypesAll, PVID: 11}, port)

	byID := bridgeVlansByID(res)
	require.Len(t, byID, 2)
	assert.Equal(t, []string{"ether1"}, byID[11].Untagged)
	assert.Empty(t, byID[11].Tagged)
	assert.Equal(t, []string{"ether1"}, byID[12].Tagged)
	assert.Empty(t, byID[12].Untagged)
}

func TestGenerateTargetVlanSwitch(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 4, Name: "dist"}).
		AddVlan(topology.Vlan{ID: 910, Name: "users", Tag: 10}).
		AddVlan(topology.Vlan{ID: 920, Name: "voice", Tag: 20}).
		AddVlan(topology.Vlan{ID: 930, Name: "cameras", Tag: 30}).
		AddInterface(topology.Interface{ID: 100, Name: "bridge1", Device: 4}).
		AddInterface(topology.Interface{
			ID: 101, Name: "ether1", Device: 4, Bridge: 100,
			TaggedVlans: []topology.VlanID{910, 920, 930},
			External:    &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		AddInterface(topology.Interface{
			ID: 102, Name: "ether2", Device: 4, Bridge: 100, UntaggedVlan: 910,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 2},
		}).
		AddInterface(topology.Interface{
			ID: 103, Name: "ether3", Device: 4, Bridge: 100,
			UntaggedVlan: 920,
			TaggedVlans:  []topology.VlanID{930},
			External:     &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 3},
		}).
		AddInterface(topology.Interface{
			ID: 104, Name: "ether4", Device: 4, Bridge: 100, UntaggedVlan: 930,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 4},
		}).
		AddInterface(topology.Interface{ID: 105, Name: "vlan10", Device: 4, Bridge: 100, UntaggedVlan: 910}).
		AddAddress(topology.IpAddress{ID: 640, Address: netip.MustParsePrefix("10.0.10.1/24"), Interface: 105}).
		AddAddress(topology.IpAddress{ID: 641, Address: netip.MustParsePrefix("10.0.30.1/24"), Interface: 104}).
		Build()
	require.NoError(t, err)

	res := generate(t, topo, 4, "RB750Gr3")

	require.Len(t, res.Bridges, 1)
	assert.Equal(t, &Bridge{VlanFiltering: true, Protocol: ProtocolMSTP}, res.Bridges["switch"])

	require.Len(t, res.BridgePorts, 4)
	assert.Equal(t, &BridgePort{IngressFiltering: true, FrameTypes: FrameTypesTagged},
		res.BridgePorts[BridgePortKey{Bridge: "switch", Interface: "ether1"}])
	assert.Equal(t, &BridgePort{IngressFiltering: true, FrameTypes: FrameTypesUntagged, PVID: 10},
		res.BridgePorts[BridgePortKey{Bridge: "switch", Interface: "ether2"}])
	assert.Equal(t, &BridgePort{IngressFiltering: true, FrameTypes: FrameTypesAll, PVID: 20},
		res.BridgePorts[BridgePortKey{Bridge: "switch", Interface: "ether3"}])
	assert.Equal(t, &BridgePort{IngressFiltering: true, FrameTypes: FrameTypesUntagged, PVID: 30},
		res.BridgePorts[BridgePortKey{Bridge: "switch", Interface: "ether4"}])

	byID := bridgeVlansByID(res)
	require.Len(t, byID, 3)
	assert.Equal(t, []string{"ether1"}, byID[10].Tagged)
	assert.Equal(t, []string{"ether2"}, byID[10].Untagged)
	assert.Equal(t, []string{"ether1"}, byID[20].Tagged)
	assert.Equal(t, []string{"ether3"}, byID[20].Untagged)
	assert.Equal(t, []string{"ether1", "ether3"}, byID[30].Tagged)
	assert.Equal(t, []string{"ether4"}, byID[30].Untagged)

	require.Len(t, res.Vlans, 2)
	assert.Equal(t, &VlanInterface{Interface: "switch", VlanID: 10}, res.Vlans["vlan10"])
	assert.Equal(t, &VlanInterface{Interface: "switch", VlanID: 30}, res.Vlans["switch-vlan-30"])

	assert.Equal(t, "vlan10", res.V4Addresses[netip.MustParsePrefix("10.0.10.1/24")].Interface)
	assert.Equal(t, "switch-vlan-30", res.V4Addresses[netip.MustParsePrefix("10.0.30.1/24")].Interface)
}

func TestGenerateTargetLoopback(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 5, Name: "core1", LoopbackIP: 550}).
		AddInterface(topology.Interface{
			ID: 105, Name: "lo", Device: 5,
			External: &topology.ExternalPort{Kind: topology.ExternalPortLoopback},
		}).
		AddAddress(topology.IpAddress{ID: 550, Address: netip.MustParsePrefix("10.255.0.1/32"), Interface: 105}).
		Build()
	require.NoError(t, err)

	res := generate(t, topo, 5, "RB750Gr3")

	assert.Equal(t, "core1", res.Identity.Name)

	addr, ok := res.V4Addresses[netip.MustParsePrefix("10.255.0.1/32")]
	require.True(t, ok)
	assert.Equal(t, "lo", addr.Interface)

	assert.Empty(t, res.Bridges)
}

func TestGenerateTargetOSPF(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 6, Name: "core2", PrimaryIP: 551}).
		AddInterface(topology.Interface{
			ID: 161, Name: "ether1", Device: 6, UseOSPF: true,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		AddInterface(topology.Interface{
			ID: 162, Name: "ether2", Device: 6, Label: "uplink", UseOSPF: true,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 2},
		}).
		AddAddress(topology.IpAddress{ID: 551, Address: netip.MustParsePrefix("10.255.0.2/32")}).
		Build()
	require.NoError(t, err)

	res := generate(t, topo, 6, "RB750Gr3")

	require.Len(t, res.OSPFInstances, 2)
	assert.Equal(t, &OSPFInstance{
		Version:      2,
		RouterID:     netip.MustParseAddr("10.255.0.2"),
		Redistribute: []string{"connected", "static"},
	}, res.OSPFInstances["default-v2"])
	assert.Equal(t, &OSPFInstance{
		Version:      3,
		RouterID:     netip.MustParseAddr("10.255.0.2"),
		Redistribute: []string{"connected", "static"},
	}, res.OSPFInstances["default-v3"])

	require.Len(t, res.OSPFAreas, 2)
	assert.Equal(t, &OSPFArea{Instance: "default-v2"}, res.OSPFAreas["backbone-v2"])
	assert.Equal(t, &OSPFArea{Instance: "default-v3"}, res.OSPFAreas["backbone-v3"])

	require.Len(t, res.OSPFTemplates, 2)
	for _, area := range []string{"backbone-v2", "backbone-v3"} {
		template := res.OSPFTemplates[area]
		require.NotNil(t, template)
		assert.Equal(t, []string{"e01", "e02-uplink"}, template.Interfaces)
		assert.False(t, template.UseBFD)
	}
}

func TestGenerateTargetNoOSPFWithoutPrimaryIP(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 7, Name: "isolated"}).
		AddInterface(topology.Interface{
			ID: 171, Name: "ether1", Device: 7, UseOSPF: true,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		Build()
	require.NoError(t, err)

	res := generate(t, topo, 7, "RB750Gr3")

	assert.Empty(t, res.OSPFInstances)
	assert.Empty(t, res.OSPFAreas)
	assert.Empty(t, res.OSPFTemplates)
}

func TestGenerateTargetPoE(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 8, Name: "ap-sw"}).
		AddInterface(topology.Interface{
			ID: 181, Name: "ether1", Device: 8, EnablePoE: true,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		AddInterface(topology.Interface{
			ID: 182, Name: "ether2", Device: 8, EnablePoE: true,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 2},
		}).
		Build()
	require.NoError(t, err)

	res := generate(t, topo, 8, "C52iG-5HaxD2HaxD")

	assert.Equal(t, "auto-on", res.Ethernet["ether1"].PoEOut)
	assert.Empty(t, res.Ethernet["ether2"].PoEOut)
}

func TestGenerateTargetDHCPExplicitRange(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 9, Name: "gw"}).
		AddVlan(topology.Vlan{ID: 910, Name: "users", Tag: 10}).
		AddInterface(topology.Interface{ID: 600, Name: "bridge1", Device: 9}).
		AddInterface(topology.Interface{
			ID: 601, Name: "ether1", Device: 9, Bridge: 600,
			TaggedVlans: []topology.VlanID{910},
			External:    &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		AddInterface(topology.Interface{
			ID: 602, Name: "vlan10", Device: 9, Bridge: 600, UntaggedVlan: 910,
			EnableDHCPServer: true,
		}).
		AddPrefix(topology.IpPrefix{ID: 800, Net: netip.MustParsePrefix("10.0.10.0/24")}).
		AddRange(topology.IpRange{
			ID:     810,
			Start:  netip.MustParseAddr("10.0.10.100"),
			End:    netip.MustParseAddr("10.0.10.199"),
			Net:    netip.MustParsePrefix("10.0.10.0/24"),
			IsDHCP: true,
		}).
		AddAddress(topology.IpAddress{ID: 650, Address: netip.MustParsePrefix("10.0.10.1/24"), Interface: 602}).
		Build()
	require.NoError(t, err)

	res := generate(t, topo, 9, "RB750Gr3")

	assert.Equal(t, "vlan10", res.V4Addresses[netip.MustParsePrefix("10.0.10.1/24")].Interface)

	pool, ok := res.Pools["dhcp-vlan10"]
	require.True(t, ok)
	assert.Equal(t, []string{"10.0.10.100-10.0.10.199"}, pool.Ranges)

	server, ok := res.DHCPServers["vlan10"]
	require.True(t, ok)
	assert.Equal(t, &DHCPServer{Interface: "vlan10", Pool: "dhcp-vlan10"}, server)

	network, ok := res.DHCPNetworks[netip.MustParsePrefix("10.0.10.0/24")]
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddr("10.0.10.1"), network.Gateway)
}

func TestGenerateTargetDHCPCarvedPools(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 10, Name: "branch"}).
		AddVlan(topology.Vlan{ID: 911, Name: "lan", Tag: 11}).
		AddInterface(topology.Interface{
			ID: 701, Name: "ether1", Device: 10, UntaggedVlan: 911,
			EnableDHCPServer: true,
			External:         &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		AddPrefix(topology.IpPrefix{ID: 801, Net: netip.MustParsePrefix("10.0.20.0/24")}).
		AddAddress(topology.IpAddress{ID: 651, Address: netip.MustParsePrefix("10.0.20.1/24"), Interface: 701}).
		AddAddress(topology.IpAddress{ID: 652, Address: netip.MustParsePrefix("10.0.20.5/24")}).
		Build()
	require.NoError(t, err)

	res := generate(t, topo, 10, "RB750Gr3")

	pool, ok := res.Pools["dhcp-ether1"]
	require.True(t, ok)
	assert.Equal(t, []string{"10.0.20.2-10.0.20.3", "10.0.20.6-10.0.20.253"}, pool.Ranges)

	server, ok := res.DHCPServers["ether1"]
	require.True(t, ok)
	assert.Equal(t, &DHCPServer{Interface: "ether1", Pool: "dhcp-ether1"}, server)
}

func TestGenerateTargetDHCPServerWithoutAddress(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 11, Name: "broken"}).
		AddInterface(topology.Interface{
			ID: 711, Name: "ether1", Device: 11, EnableDHCPServer: true,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		Build()
	require.NoError(t, err)

	device, ok := topo.Device(11)
	require.True(t, ok)

	_, err = GenerateTarget(device, "RB750Gr3", KeepNames{}, logger.NewTestLogger())
	assert.ErrorIs(t, err, ErrMissingAddressOnPrefix)
}

func TestGenerateTargetDHCPServerWithoutPrefix(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 12, Name: "orphan"}).
		AddVlan(topology.Vlan{ID: 913, Name: "lan", Tag: 13}).
		AddInterface(topology.Interface{
			ID: 721, Name: "ether1", Device: 12, UntaggedVlan: 913,
			EnableDHCPServer: true,
			External:         &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		AddAddress(topology.IpAddress{ID: 653, Address: netip.MustParsePrefix("192.168.77.1/24"), Interface: 721}).
		Build()
	require.NoError(t, err)

	device, ok := topo.Device(12)
	require.True(t, ok)

	_, err = GenerateTarget(device, "RB750Gr3", KeepNames{}, logger.NewTestLogger())
	assert.ErrorIs(t, err, ErrMissingPrefixOnAddress)
}

func TestGenerateTargetDHCPClient(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 13, Name: "cpe"}).
		AddInterface(topology.Interface{
			ID: 731, Name: "ether1", Device: 13, EnableDHCPClient: true,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 1},
		}).
		AddInterface(topology.Interface{ID: 732, Name: "wan-bridge", Device: 13, EnableDHCPClient: true}).
		Build()
	require.NoError(t, err)

	res := generate(t, topo, 13, "RB750Gr3")

	require.Len(t, res.DHCPClients, 2)
	assert.Contains(t, res.DHCPClients, "ether1")
	assert.Contains(t, res.DHCPClients, "wan-bridge")
}

func buildWlanCampus(t *testing.T) *topology.Topology {
	t.Helper()

	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 1, Name: "gw1", PrimaryIP: 603}).
		AddDevice(topology.Device{ID: 2, Name: "ap1", PrimaryIP: 601, WlanAPOf: 700}).
		AddDevice(topology.Device{ID: 3, Name: "ap2", PrimaryIP: 602, WlanAPOf: 700}).
		AddDevice(topology.Device{ID: 4, Name: "ap3", WlanAPOf: 700}).
		AddInterface(topology.Interface{ID: 110, Name: "vtep0", Device: 1}).
		AddVxlan(topology.VxlanData{ID: 800, Name: "Office.Net", VNI: 100, Interfaces: []topology.InterfaceID{110}}).
		AddVxlan(topology.VxlanData{ID: 801, Name: "guest", VNI: 200}).
		AddVlan(topology.Vlan{ID: 940, Name: "ap-mgmt", Tag: 40, Vxlan: 800}).
		AddVlan(topology.Vlan{ID: 950, Name: "wifi-guest", Tag: 50, Vxlan: 801}).
		AddWlanGroup(topology.WlanGroup{ID: 700, Name: "campus-wifi", MgmtVlan: 940}).
		AddWlan(topology.Wlan{
			ID: 710, SSID: "guest-wifi", Group: 700, Vlan: 950,
			Auth: topology.WlanAuth{Mode: topology.WlanAuthWPAPersonal, Password: "hunter22"},
		}).
		AddAddress(topology.IpAddress{ID: 601, Address: netip.MustParsePrefix("10.255.0.1/32")}).
		AddAddress(topology.IpAddress{ID: 602, Address: netip.MustParsePrefix("10.255.0.2/32")}).
		AddAddress(topology.IpAddress{ID: 603, Address: netip.MustParsePrefix("10.255.0.10/32")}).
		Build()
	require.NoError(t, err)

	return topo
}

func TestGenerateTargetWlanTransport(t *testing.T) {
	topo := buildWlanCampus(t)

	res := generate(t, topo, 2, "C52iG-5HaxD2HaxD")

	require.Len(t, res.Bridges, 1)
	assert.Equal(t, &Bridge{VlanFiltering: true, Protocol: ProtocolMSTP}, res.Bridges["bridge-caps"])

	require.Len(t, res.Vxlans, 2)
	assert.Equal(t, uint32(100), res.Vxlans["vxlan-office-net"].VNI)
	assert.Equal(t, uint32(200), res.Vxlans["vxlan-guest"].VNI)

	assert.Contains(t, res.BridgePorts, BridgePortKey{Bridge: "bridge-caps", Interface: "vxlan-office-net"})
	assert.Contains(t, res.BridgePorts, BridgePortKey{Bridge: "bridge-caps", Interface: "vxlan-guest"})

	for _, bv := range res.BridgeVlans {
		assert.Equal(t, []VlanIDRange{{Start: 1, End: 4094}}, bv.VlanIDs)
		assert.Empty(t, bv.Untagged)
	}

	require.Len(t, res.VTEPs, 2)
	assert.Contains(t, res.VTEPs, VTEPKey{Interface: "vxlan-office-net", RemoteIP: netip.MustParseAddr("10.255.0.10")})
	assert.Contains(t, res.VTEPs, VTEPKey{Interface: "vxlan-guest", RemoteIP: netip.MustParseAddr("10.255.0.2")})
}

func TestGenerateTargetWlanTransportWithoutPrimaryIP(t *testing.T) {
	topo := buildWlanCampus(t)

	res := generate(t, topo, 4, "C52iG-5HaxD2HaxD")

	assert.Contains(t, res.Bridges, "bridge-caps")
	assert.Empty(t, res.Vxlans)
	assert.Empty(t, res.VTEPs)
}

func TestGenerateTargetUnknownModel(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 14, Name: "mystery"}).
		Build()
	require.NoError(t, err)

	device, ok := topo.Device(14)
	require.True(t, ok)

	_, err = GenerateTarget(device, "X3000", KeepNames{}, logger.NewTestLogger())
	assert.ErrorIs(t, err, ErrNoPortsFound)
}

func TestGenerateTargetUnknownPort(t *testing.T) {
	topo, err := topology.NewBuilder().
		AddDevice(topology.Device{ID: 15, Name: "overdrawn"}).
		AddVlan(topology.Vlan{ID: 910, Name: "users", Tag: 10}).
		AddInterface(topology.Interface{
			ID: 751, Name: "ether9", Device: 15, UntaggedVlan: 910,
			External: &topology.ExternalPort{Kind: topology.ExternalPortEthernet, Slot: 9},
		}).
		Build()
	require.NoError(t, err)

	device, ok := topo.Device(15)
	require.True(t, ok)

	_, err = GenerateTarget(device, "RB750Gr3", KeepNames{}, logger.NewTestLogger())
	assert.ErrorIs(t, err, ErrPortNotFound)
}

func TestSetupSingleSwitchWithoutVlanRejectsTagged(t *testing.T) {
	target, err := NewTarget("RB750Gr3", logger.NewTestLogger())
	require.NoError(t, err)

	err = target.setupSingleSwitchWithoutVlan(L2Plane{
		Ports: []L2Port{{Kind: L2PortTagged, Name: "trunk", DefaultName: "ether1"}},
	})
	assert.ErrorIs(t, err, ErrConfigContradiction)
}
