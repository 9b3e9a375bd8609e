package rosclient

import (
	"context"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/carverauto/netfabric/pkg/routeros"
)

// stateReaders lists the print commands that together describe the
// managed slice of a device's configuration, with the loader turning
// each reply row into a resource entry.
var stateReaders = []struct {
	path string
	load func(*routeros.Resources, map[string]string) error
}{
	{"system/identity", loadIdentity},
	{"interface/ethernet", loadEthernet},
	{"interface/bridge", loadBridge},
	{"interface/vlan", loadVlanInterface},
	{"interface/vxlan", loadVxlan},
	{"interface/bridge/port", loadBridgePort},
	{"interface/bridge/vlan", loadBridgeVlan},
	{"interface/vxlan/vteps", loadVTEP},
	{"ip/address", loadAddress},
	{"ipv6/address", loadAddress},
	{"ip/dhcp-client", loadDHCPClient},
	{"ip/pool", loadPool},
	{"ip/dhcp-server", loadDHCPServer},
	{"ip/dhcp-server/network", loadDHCPNetwork},
	{"routing/ospf/instance", loadOSPFInstance},
	{"routing/ospf/area", loadOSPFArea},
	{"routing/ospf/interface-template", loadOSPFTemplate},
}

// CurrentState reads the device's static configuration into the
// modeled resource families. Dynamic rows describe runtime state, not
// configuration, and are skipped.
func (c *Conn) CurrentState(ctx context.Context) (*routeros.Resources, error) {
	res := routeros.NewResources()

	for _, reader := range stateReaders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		reply, err := c.api.RunArgs([]string{"/" + reader.path + "/print"})
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", reader.path, err)
		}

		for _, re := range reply.Re {
			if re.Map["dynamic"] == "true" {
				continue
			}

			if err := reader.load(res, re.Map); err != nil {
				return nil, fmt.Errorf("reading %s: %w", reader.path, err)
			}
		}
	}

	return res, nil
}

func loadIdentity(res *routeros.Resources, m map[string]string) error {
	if name, ok := m["name"]; ok {
		res.Identity.Name = name
	}

	return nil
}

// loadEthernet keys ports by their factory default name, matching the
// synthesized side. Rows without one are not physical ports.
func loadEthernet(res *routeros.Resources, m map[string]string) error {
	name := m["default-name"]
	if name == "" {
		return nil
	}

	l2mtu, err := wireInt(m, "l2mtu")
	if err != nil {
		return err
	}

	res.Ethernet[name] = &routeros.EthernetPort{
		DefaultName: name,
		Name:        m["name"],
		Advertise:   m["advertise"],
		L2MTU:       l2mtu,
		PoEOut:      m["poe-out"],
	}

	return nil
}

func loadBridge(res *routeros.Resources, m map[string]string) error {
	name := m["name"]
	if name == "" {
		return nil
	}

	res.Bridges[name] = &routeros.Bridge{
		VlanFiltering: m["vlan-filtering"] == "true",
		Protocol:      routeros.ProtocolMode(m["protocol-mode"]),
	}

	return nil
}

func loadBridgePort(res *routeros.Resources, m map[string]string) error {
	key := routeros.BridgePortKey{Bridge: m["bridge"], Interface: m["interface"]}
	if key.Bridge == "" || key.Interface == "" {
		return nil
	}

	pvid, err := wireUint16(m, "pvid")
	if err != nil {
		return err
	}

	res.BridgePorts[key] = &routeros.BridgePort{
		IngressFiltering: m["ingress-filtering"] == "true",
		FrameTypes:       routeros.FrameTypes(m["frame-types"]),
		PVID:             pvid,
	}

	return nil
}

func loadBridgeVlan(res *routeros.Resources, m map[string]string) error {
	ids, err := routeros.ParseVlanIDRanges(m["vlan-ids"])
	if err != nil {
		return err
	}

	key, vlan := routeros.NewBridgeVlanEntry(m["bridge"], splitList(m["tagged"]), splitList(m["untagged"]), ids)
	res.BridgeVlans[key] = vlan

	return nil
}

func loadVlanInterface(res *routeros.Resources, m map[string]string) error {
	name := m["name"]
	if name == "" {
		return nil
	}

	id, err := wireUint16(m, "vlan-id")
	if err != nil {
		return err
	}

	res.Vlans[name] = &routeros.VlanInterface{Interface: m["interface"], VlanID: id}

	return nil
}

func loadVxlan(res *routeros.Resources, m map[string]string) error {
	name := m["name"]
	if name == "" {
		return nil
	}

	vni, err := wireUint32(m, "vni")
	if err != nil {
		return err
	}

	res.Vxlans[name] = &routeros.VXLANInterface{VNI: vni}

	return nil
}

func loadVTEP(res *routeros.Resources, m map[string]string) error {
	remote, err := netip.ParseAddr(m["remote-ip"])
	if err != nil {
		return fmt.Errorf("%w: remote-ip=%q", ErrBadWireValue, m["remote-ip"])
	}

	res.VTEPs[routeros.VTEPKey{Interface: m["interface"], RemoteIP: remote}] = &routeros.VTEP{}

	return nil
}

// loadAddress sorts entries into the v4 or v6 family by the address
// itself, so both address paths share it.
func loadAddress(res *routeros.Resources, m map[string]string) error {
	prefix, err := netip.ParsePrefix(m["address"])
	if err != nil {
		return fmt.Errorf("%w: address=%q", ErrBadWireValue, m["address"])
	}

	entry := &routeros.IPAddress{Interface: m["interface"]}

	if prefix.Addr().Is6() {
		res.V6Addresses[prefix] = entry
	} else {
		res.V4Addresses[prefix] = entry
	}

	return nil
}

func loadDHCPClient(res *routeros.Resources, m map[string]string) error {
	iface := m["interface"]
	if iface == "" {
		return nil
	}

	res.DHCPClients[iface] = &routeros.DHCPClient{}

	return nil
}

func loadPool(res *routeros.Resources, m map[string]string) error {
	name := m["name"]
	if name == "" {
		return nil
	}

	res.Pools[name] = &routeros.AddressPool{Ranges: splitList(m["ranges"])}

	return nil
}

func loadDHCPServer(res *routeros.Resources, m map[string]string) error {
	name := m["name"]
	if name == "" {
		return nil
	}

	res.DHCPServers[name] = &routeros.DHCPServer{Interface: m["interface"], Pool: m["address-pool"]}

	return nil
}

func loadDHCPNetwork(res *routeros.Resources, m map[string]string) error {
	prefix, err := netip.ParsePrefix(m["address"])
	if err != nil {
		return fmt.Errorf("%w: address=%q", ErrBadWireValue, m["address"])
	}

	gateway, err := wireAddr(m, "gateway")
	if err != nil {
		return err
	}

	res.DHCPNetworks[prefix] = &routeros.DHCPNetwork{Gateway: gateway}

	return nil
}

func loadOSPFInstance(res *routeros.Resources, m map[string]string) error {
	name := m["name"]
	if name == "" {
		return nil
	}

	version, err := wireInt(m, "version")
	if err != nil {
		return err
	}

	routerID, err := wireAddr(m, "router-id")
	if err != nil {
		return err
	}

	res.OSPFInstances[name] = &routeros.OSPFInstance{
		Version:      version,
		RouterID:     routerID,
		Redistribute: splitList(m["redistribute"]),
	}

	return nil
}

func loadOSPFArea(res *routeros.Resources, m map[string]string) error {
	name := m["name"]
	if name == "" {
		return nil
	}

	res.OSPFAreas[name] = &routeros.OSPFArea{Instance: m["instance"]}

	return nil
}

// loadOSPFTemplate keys templates by area. The model carries one
// template per area; a later row for the same area wins.
func loadOSPFTemplate(res *routeros.Resources, m map[string]string) error {
	area := m["area"]
	if area == "" {
		return nil
	}

	res.OSPFTemplates[area] = &routeros.OSPFInterfaceTemplate{
		Interfaces: splitList(m["interfaces"]),
		UseBFD:     m["use-bfd"] == "true",
	}

	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, ",")
}

func wireInt(m map[string]string, prop string) (int, error) {
	s := m[prop]
	if s == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadWireValue, prop, s)
	}

	return v, nil
}

func wireUint16(m map[string]string, prop string) (uint16, error) {
	s := m[prop]
	if s == "" {
		return 0, nil
	}

	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadWireValue, prop, s)
	}

	return uint16(v), nil
}

func wireUint32(m map[string]string, prop string) (uint32, error) {
	s := m[prop]
	if s == "" {
		return 0, nil
	}

	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadWireValue, prop, s)
	}

	return uint32(v), nil
}

func wireAddr(m map[string]string, prop string) (netip.Addr, error) {
	s := m[prop]
	if s == "" {
		return netip.Addr{}, nil
	}

	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %s=%q", ErrBadWireValue, prop, s)
	}

	return addr, nil
}
