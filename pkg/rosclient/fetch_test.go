package rosclient

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	rosapi "github.com/go-routeros/routeros/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/routeros"
)

func TestCurrentStateReadsResourceFamilies(t *testing.T) {
	api := &fakeAPI{replies: map[string]*rosapi.Reply{
		"/system/identity/print": replyWith(map[string]string{"name": "gw1"}),
		"/interface/ethernet/print": replyWith(
			map[string]string{".id": "*1", "default-name": "ether1", "name": "e01-uplink", "advertise": "1G-baseT-full", "l2mtu": "1598"},
			map[string]string{".id": "*2", "default-name": "ether5", "name": "e05-ap", "l2mtu": "1598", "poe-out": "auto-on"},
		),
		"/interface/bridge/print": replyWith(
			map[string]string{".id": "*3", "name": "bridge-vlans", "vlan-filtering": "true", "protocol-mode": "rstp"},
		),
		"/interface/vlan/print": replyWith(
			map[string]string{".id": "*4", "name": "vlan-users", "interface": "bridge-vlans", "vlan-id": "10"},
		),
		"/interface/vxlan/print": replyWith(
			map[string]string{".id": "*5", "name": "vxlan-overlay", "vni": "100"},
		),
		"/interface/bridge/port/print": replyWith(
			map[string]string{".id": "*6", "bridge": "bridge-vlans", "interface": "e01-uplink", "ingress-filtering": "true", "frame-types": "admit-only-vlan-tagged", "pvid": "1"},
			map[string]string{".id": "*7", "bridge": "bridge-vlans", "interface": "dyn0", "dynamic": "true"},
		),
		"/interface/bridge/vlan/print": replyWith(
			map[string]string{".id": "*8", "bridge": "bridge-vlans", "vlan-ids": "10", "tagged": "e01-uplink,bridge-vlans"},
			map[string]string{".id": "*9", "bridge": "bridge-vlans", "vlan-ids": "20-24", "tagged": "bridge-vlans", "dynamic": "true"},
		),
		"/interface/vxlan/vteps/print": replyWith(
			map[string]string{".id": "*a", "interface": "vxlan-overlay", "remote-ip": "10.255.0.2"},
		),
		"/ip/address/print": replyWith(
			map[string]string{".id": "*b", "address": "10.0.10.1/24", "interface": "vlan-users"},
			map[string]string{".id": "*c", "address": "10.9.9.1/24", "interface": "e09", "dynamic": "true"},
		),
		"/ipv6/address/print": replyWith(
			map[string]string{".id": "*d", "address": "fd00::1/64", "interface": "vlan-users"},
		),
		"/ip/dhcp-client/print": replyWith(
			map[string]string{".id": "*e", "interface": "e01-uplink"},
		),
		"/ip/pool/print": replyWith(
			map[string]string{".id": "*f", "name": "dhcp-users", "ranges": "10.0.10.100-10.0.10.199"},
		),
		"/ip/dhcp-server/print": replyWith(
			map[string]string{".id": "*10", "name": "dhcp-users", "interface": "vlan-users", "address-pool": "dhcp-users"},
		),
		"/ip/dhcp-server/network/print": replyWith(
			map[string]string{".id": "*11", "address": "10.0.10.0/24", "gateway": "10.0.10.1"},
		),
		"/routing/ospf/instance/print": replyWith(
			map[string]string{".id": "*12", "name": "default", "version": "2", "router-id": "10.255.0.1", "redistribute": "connected,static"},
		),
		"/routing/ospf/area/print": replyWith(
			map[string]string{".id": "*13", "name": "backbone", "instance": "default"},
		),
		"/routing/ospf/interface-template/print": replyWith(
			map[string]string{".id": "*14", "area": "backbone", "interfaces": "vlan-transit", "use-bfd": "true"},
		),
	}}

	conn := &Conn{api: api, log: logger.NewTestLogger()}

	state, err := conn.CurrentState(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "gw1", state.Identity.Name)

	require.Contains(t, state.Ethernet, "ether1")
	assert.Equal(t, "e01-uplink", state.Ethernet["ether1"].Name)
	assert.Equal(t, 1598, state.Ethernet["ether1"].L2MTU)

	require.Contains(t, state.Ethernet, "ether5")
	assert.Equal(t, "auto-on", state.Ethernet["ether5"].PoEOut)

	require.Contains(t, state.Bridges, "bridge-vlans")
	assert.True(t, state.Bridges["bridge-vlans"].VlanFiltering)
	assert.Equal(t, routeros.ProtocolRSTP, state.Bridges["bridge-vlans"].Protocol)

	// Dynamic rows are runtime state, not configuration.
	require.Len(t, state.BridgePorts, 1)

	port := state.BridgePorts[routeros.BridgePortKey{Bridge: "bridge-vlans", Interface: "e01-uplink"}]
	require.NotNil(t, port)
	assert.True(t, port.IngressFiltering)
	assert.Equal(t, routeros.FrameTypesTagged, port.FrameTypes)
	assert.Equal(t, uint16(1), port.PVID)

	require.Len(t, state.BridgeVlans, 1)

	key := routeros.BridgeVlanKey{Bridge: "bridge-vlans", Tagged: "bridge-vlans,e01-uplink", VlanIDs: "10"}
	require.Contains(t, state.BridgeVlans, key)
	assert.Equal(t, []string{"bridge-vlans", "e01-uplink"}, state.BridgeVlans[key].Tagged)

	require.Contains(t, state.Vlans, "vlan-users")
	assert.Equal(t, uint16(10), state.Vlans["vlan-users"].VlanID)

	require.Contains(t, state.Vxlans, "vxlan-overlay")
	assert.Equal(t, uint32(100), state.Vxlans["vxlan-overlay"].VNI)
	assert.Contains(t, state.VTEPs, routeros.VTEPKey{Interface: "vxlan-overlay", RemoteIP: netip.MustParseAddr("10.255.0.2")})

	require.Len(t, state.V4Addresses, 1)
	assert.Contains(t, state.V4Addresses, netip.MustParsePrefix("10.0.10.1/24"))
	assert.Contains(t, state.V6Addresses, netip.MustParsePrefix("fd00::1/64"))

	assert.Contains(t, state.DHCPClients, "e01-uplink")

	require.Contains(t, state.Pools, "dhcp-users")
	assert.Equal(t, []string{"10.0.10.100-10.0.10.199"}, state.Pools["dhcp-users"].Ranges)

	require.Contains(t, state.DHCPServers, "dhcp-users")
	assert.Equal(t, "vlan-users", state.DHCPServers["dhcp-users"].Interface)
	assert.Equal(t, "dhcp-users", state.DHCPServers["dhcp-users"].Pool)

	network := state.DHCPNetworks[netip.MustParsePrefix("10.0.10.0/24")]
	require.NotNil(t, network)
	assert.Equal(t, netip.MustParseAddr("10.0.10.1"), network.Gateway)

	instance := state.OSPFInstances["default"]
	require.NotNil(t, instance)
	assert.Equal(t, 2, instance.Version)
	assert.Equal(t, netip.MustParseAddr("10.255.0.1"), instance.RouterID)
	assert.Equal(t, []string{"connected", "static"}, instance.Redistribute)

	require.Contains(t, state.OSPFAreas, "backbone")
	assert.Equal(t, "default", state.OSPFAreas["backbone"].Instance)

	template := state.OSPFTemplates["backbone"]
	require.NotNil(t, template)
	assert.Equal(t, []string{"vlan-transit"}, template.Interfaces)
	assert.True(t, template.UseBFD)
}

func TestCurrentStatePropagatesReadErrors(t *testing.T) {
	errTransport := errors.New("link down")

	api := &fakeAPI{errs: map[string]error{
		"/interface/bridge/print": errTransport,
	}}

	conn := &Conn{api: api, log: logger.NewTestLogger()}

	_, err := conn.CurrentState(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errTransport)
	assert.ErrorContains(t, err, "interface/bridge")
}

func TestCurrentStateRejectsUnreadableValues(t *testing.T) {
	api := &fakeAPI{replies: map[string]*rosapi.Reply{
		"/interface/vlan/print": replyWith(
			map[string]string{".id": "*1", "name": "vlan-users", "interface": "bridge-vlans", "vlan-id": "banana"},
		),
	}}

	conn := &Conn{api: api, log: logger.NewTestLogger()}

	_, err := conn.CurrentState(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadWireValue)
	assert.ErrorContains(t, err, "interface/vlan")
}

func TestCurrentStateHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := &fakeAPI{}
	conn := &Conn{api: api, log: logger.NewTestLogger()}

	_, err := conn.CurrentState(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, api.calls)
}
