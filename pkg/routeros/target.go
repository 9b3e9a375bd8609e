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
	"fmt"
	"net/netip"
	"sort"

	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/topology"
)

const (
	capsBridgeName    = "bridge-caps"
	defaultBridgeName = "switch"
)

// Target synthesizes the desired resource state of one device. It is a
// pure in-memory computation; nothing here talks to a device.
type Target struct {
	res *Resources
	log logger.Logger
}

// NewTarget seeds a target with the factory port layout of the given
// hardware model.
func NewTarget(model string, log logger.Logger) (*Target, error) {
	res, err := FactoryResources(model)
	if err != nil {
		return nil, err
	}

	return &Target{res: res, log: log}, nil
}

// Resources exposes the synthesized state.
func (t *Target) Resources() *Resources {
	return t.res
}

func (t *Target) setIdentity(name string) {
	t.res.Identity.Name = name
}

func (t *Target) setEthernetName(defaultName, name string) error {
	port, ok := t.res.Ethernet[defaultName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPortNotFound, defaultName)
	}

	port.Name = name

	return nil
}

func (t *Target) setIPAddress(prefix netip.Prefix, iface string) {
	t.res.ensureAddress(prefix).Interface = iface
}

func (t *Target) setLoopbackIP(addr netip.Addr) {
	t.setIPAddress(netip.PrefixFrom(addr, addr.BitLen()), "lo")
}

// GenerateFrom wires everything derivable from the device record alone:
// identity, loopback and fixed addressing, PoE, OSPF and the WLAN
// transport. The layer 2 plan and DHCP wiring follow separately because
// they depend on the naming strategy.
func (t *Target) GenerateFrom(device topology.DeviceAccess) {
	t.setIdentity(device.Name())

	if addr, ok := device.LoopbackIP(); ok {
		t.setLoopbackIP(addr.Addr())
	}

	t.setFixedAddresses(device)
	t.setupPoE(device)
	t.setupOSPF(device)
	t.setupWlanAP(device)
}

// SetupL2 applies a layer 2 plan. A plane owning exactly one untagged
// port that no other plane shares is a routed access port: its
// addresses bind straight to the port. Everything else lands on one
// shared bridge, VLAN filtering unless a lone untagged plane is all
// there is.
func (t *Target) SetupL2(setup L2Setup) error {
	shared := make(map[string]int)

	for _, plane := range setup.Planes {
		for _, port := range plane.Ports {
			if port.Kind == L2PortTagged || port.Kind == L2PortUntagged {
				shared[port.DefaultName]++
			}
		}
	}

	var switchPlanes []L2Plane

	for _, plane := range setup.Planes {
		var (
			ports     []L2Port
			addresses []netip.Prefix
		)

		for _, port := range plane.Ports {
			switch port.Kind {
			case L2PortTagged, L2PortUntagged:
				if err := t.setEthernetName(port.DefaultName, port.Name); err != nil {
					return err
				}

				ports = append(ports, port)
			case L2PortVxlan, L2PortCaps:
				ports = append(ports, port)
			case L2PortL3:
				addresses = append(addresses, port.IP)
			}
		}

		if len(ports) == 1 && ports[0].Kind == L2PortUntagged && shared[ports[0].DefaultName] == 1 {
			for _, addr := range addresses {
				t.setIPAddress(addr, ports[0].Name)
			}

			continue
		}

		switchPlanes = append(switchPlanes, plane)
	}

	if len(switchPlanes) == 0 {
		return nil
	}

	plain := true

	for _, plane := range switchPlanes {
		for _, port := range plane.Ports {
			if port.Kind != L2PortUntagged && port.Kind != L2PortL3 {
				plain = false
			}
		}
	}

	if plain && len(switchPlanes) == 1 {
		return t.setupSingleSwitchWithoutVlan(switchPlanes[0])
	}

	t.setupVlanSwitch(switchPlanes)

	return nil
}

func (t *Target) setupSingleSwitchWithoutVlan(plane L2Plane) error {
	bridge := t.res.ensureBridge(defaultBridgeName)
	bridge.VlanFiltering = false
	bridge.Protocol = ProtocolRSTP

	for _, port := range plane.Ports {
		switch port.Kind {
		case L2PortUntagged:
			t.res.ensureBridgePort(defaultBridgeName, port.Name)
		case L2PortL3:
			t.setIPAddress(port.IP, defaultBridgeName)
		default:
			return fmt.Errorf("%w: tagged member on plain bridge", ErrConfigContradiction)
		}
	}

	return nil
}

func (t *Target) setupVlanSwitch(planes []L2Plane) {
	bridge := t.res.ensureBridge(defaultBridgeName)
	bridge.VlanFiltering = true
	bridge.Protocol = ProtocolMSTP

	type portTags struct {
		untagged uint16
		tagged   []uint16
	}

	type vlanPorts struct {
		untagged []string
		tagged   []string
	}

	tagsOfPort := make(map[string]*portTags)
	portsOfVlan := make(map[uint16]*vlanPorts)

	memberOf := func(name string) *portTags {
		tags, ok := tagsOfPort[name]
		if !ok {
			tags = &portTags{}
			tagsOfPort[name] = tags
		}

		return tags
	}

	vlanOf := func(id uint16) *vlanPorts {
		ports, ok := portsOfVlan[id]
		if !ok {
			ports = &vlanPorts{}
			portsOfVlan[id] = ports
		}

		return ports
	}

	for _, plane := range planes {
		for _, port := range plane.Ports {
			switch port.Kind {
			case L2PortTagged:
				member := memberOf(port.Name)
				member.tagged = append(member.tagged, plane.VlanID)

				vlan := vlanOf(plane.VlanID)
				vlan.tagged = append(vlan.tagged, port.Name)
			case L2PortUntagged:
				memberOf(port.Name).untagged = plane.VlanID

				vlan := vlanOf(plane.VlanID)
				vlan.untagged = append(vlan.untagged, port.Name)
			case L2PortVxlan, L2PortCaps:
				// Tunnel members carry no ethernet port to wire here;
				// the WLAN transport wiring owns them.
			case L2PortL3:
				name := port.IfName
				if name == "" {
					name = fmt.Sprintf("switch-vlan-%d", plane.VlanID)
				}

				t.setIPAddress(port.IP, name)

				vlan := t.res.ensureVlanInterface(name)
				vlan.Interface = defaultBridgeName
				vlan.VlanID = plane.VlanID
			}
		}
	}

	portNames := make([]string, 0, len(tagsOfPort))
	for name := range tagsOfPort {
		portNames = append(portNames, name)
	}

	sort.Strings(portNames)

	for _, name := range portNames {
		tags := tagsOfPort[name]

		port := t.res.ensureBridgePort(defaultBridgeName, name)
		port.IngressFiltering = true

		switch {
		case tags.untagged != 0 && len(tags.tagged) == 0:
			port.FrameTypes = FrameTypesUntagged
			port.PVID = tags.untagged
		case tags.untagged != 0:
			port.FrameTypes = FrameTypesAll
			port.PVID = tags.untagged
		default:
			port.FrameTypes = FrameTypesTagged
		}
	}

	vlanIDs := make([]int, 0, len(portsOfVlan))
	for id := range portsOfVlan {
		vlanIDs = append(vlanIDs, int(id))
	}

	sort.Ints(vlanIDs)

	for _, id := range vlanIDs {
		ports := portsOfVlan[uint16(id)]
		t.res.ensureBridgeVlan(defaultBridgeName, ports.tagged, ports.untagged, []VlanIDRange{{Start: uint16(id), End: uint16(id)}})
	}
}

func (t *Target) setFixedAddresses(device topology.DeviceAccess) {
	for _, iface := range device.Interfaces() {
		port, ok := iface.External()
		if !ok {
			continue
		}

		name, ok := iface.InterfaceName()
		if !ok {
			continue
		}

		for _, addr := range iface.Addresses() {
			t.setIPAddress(addr.Address(), name)
		}

		if !port.IsEthernet() {
			continue
		}

		if ethernet, ok := t.res.Ethernet[port.DefaultName()]; ok {
			ethernet.Name = name
		} else {
			t.log.Error().Str("port", port.DefaultName()).Msg("Ethernet port not defined")
		}
	}
}

func (t *Target) setupPoE(device topology.DeviceAccess) {
	for _, iface := range device.Interfaces() {
		if !iface.EnablePoE() {
			continue
		}

		port, ok := iface.External()
		if !ok || !port.IsEthernet() {
			continue
		}

		ethernet, ok := t.res.Ethernet[port.DefaultName()]
		if !ok {
			t.log.Error().Str("port", port.DefaultName()).Msg("Ethernet port not defined")
			continue
		}

		if !ethernet.HasPoE {
			t.log.Warn().Str("port", port.DefaultName()).Msg("PoE requested on a port without PoE hardware")
			continue
		}

		ethernet.PoEOut = "auto-on"
	}
}

func (t *Target) setupOSPF(device topology.DeviceAccess) {
	routerID, ok := device.PrimaryIPv4()
	if !ok {
		return
	}

	seen := make(map[string]struct{})

	var ports []string

	for _, iface := range device.Interfaces() {
		if !iface.UseOSPF() {
			continue
		}

		name, ok := iface.InterfaceName()
		if !ok {
			continue
		}

		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}
		ports = append(ports, name)
	}

	if len(ports) == 0 {
		return
	}

	sort.Strings(ports)

	for _, version := range []int{2, 3} {
		instance := fmt.Sprintf("default-v%d", version)
		area := fmt.Sprintf("backbone-v%d", version)

		inst := t.res.ensureOSPFInstance(instance)
		inst.Version = version
		inst.RouterID = routerID
		inst.Redistribute = []string{"connected", "static"}

		t.res.ensureOSPFArea(area).Instance = instance

		template := t.res.ensureOSPFTemplate(area)
		template.Interfaces = append([]string(nil), ports...)
		template.UseBFD = false
	}
}

// setupWlanAP wires the VXLAN transport of a WLAN access point: a
// dedicated bridge plus one tunnel per VXLAN backing a WLAN or
// management VLAN of the device's group.
func (t *Target) setupWlanAP(device topology.DeviceAccess) {
	group, ok := device.WlanAPOf()
	if !ok {
		return
	}

	caps := t.res.ensureBridge(capsBridgeName)
	caps.VlanFiltering = true
	caps.Protocol = ProtocolMSTP

	myIP, ok := device.PrimaryIPv4()
	if !ok {
		return
	}

	vlans := make(map[topology.VlanID]topology.VlanAccess)

	if vlan, ok := group.MgmtVlan(); ok {
		vlans[vlan.ID()] = vlan
	}

	for _, wlan := range group.Wlans() {
		if vlan, ok := wlan.Vlan(); ok {
			vlans[vlan.ID()] = vlan
		}
	}

	vxlans := make(map[topology.VxlanID]topology.VxlanAccess)

	for _, vlan := range vlans {
		if vxlan, ok := vlan.Vxlan(); ok {
			vxlans[vxlan.ID()] = vxlan
		}
	}

	ids := make([]topology.VxlanID, 0, len(vxlans))
	for id := range vxlans {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		t.setupVxlan(vxlans[id], myIP)
	}
}

func (t *Target) setupVxlan(vxlan topology.VxlanAccess, myIP netip.Addr) {
	name := vxlanInterfaceName(vxlan.Name())
	if name == "" || vxlan.VNI() == 0 {
		return
	}

	t.res.ensureBridgePort(capsBridgeName, name)
	t.res.ensureBridgeVlan(capsBridgeName, []string{name}, nil, []VlanIDRange{{Start: 1, End: 4094}})
	t.res.ensureVxlan(name).VNI = vxlan.VNI()

	for _, remote := range vxlan.VTEPs() {
		if remote != myIP {
			t.res.ensureVTEP(name, remote)
		}
	}
}

// setupDHCP wires DHCP clients and servers. It runs after SetupL2 so a
// server can bind to whichever interface ended up holding the gateway
// address. Lease pools come from ranges flagged for DHCP, or from the
// free space left in the prefix once the gateway, every known address,
// every range and every child prefix are reserved.
func (t *Target) setupDHCP(device topology.DeviceAccess, naming NameGenerator) error {
	for _, iface := range device.Interfaces() {
		addrs := iface.Addresses()

		if iface.EnableDHCPClient() && len(addrs) == 0 {
			t.res.ensureDHCPClient(t.serviceInterfaceName(iface, naming))
		}

		if !iface.EnableDHCPServer() {
			continue
		}

		addr, ok := firstIPv4(addrs)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingAddressOnPrefix, iface.Name())
		}

		prefix, ok := addr.Prefix()
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingPrefixOnAddress, addr.Address())
		}

		serverIface := t.boundInterface(addr.Address())
		if serverIface == "" {
			serverIface = t.serviceInterfaceName(iface, naming)
		}

		pools := dhcpPools(addr, prefix)
		if len(pools) == 0 {
			continue
		}

		poolName := "dhcp-" + serverIface
		t.res.ensurePool(poolName).Ranges = pools

		server := t.res.ensureDHCPServer(serverIface)
		server.Interface = serverIface
		server.Pool = poolName

		t.res.ensureDHCPNetwork(prefix.Net()).Gateway = addr.Addr()
	}

	return nil
}

// boundInterface reports which interface the synthesized state assigned
// an address to, empty when the address is not wired.
func (t *Target) boundInterface(prefix netip.Prefix) string {
	if addr, ok := t.res.V4Addresses[prefix]; ok {
		return addr.Interface
	}

	return ""
}

func (t *Target) serviceInterfaceName(iface topology.InterfaceAccess, naming NameGenerator) string {
	if iface.IsEthernetPort() {
		return naming.InterfaceName(iface)
	}

	return iface.Name()
}

func dhcpPools(addr topology.AddressAccess, prefix topology.PrefixAccess) []string {
	var explicit []string

	for _, r := range prefix.Ranges() {
		if r.IsDHCP() {
			explicit = append(explicit, fmt.Sprintf("%s-%s", r.Start(), r.End()))
		}
	}

	if len(explicit) > 0 {
		return explicit
	}

	finder := NewGapFinder()
	finder.ReserveAddr(addr.Addr())

	for _, known := range prefix.Addresses() {
		finder.ReserveAddr(known.Addr())
	}

	for _, r := range prefix.Ranges() {
		finder.Reserve(r.Start(), r.End())
	}

	for _, child := range prefix.Children() {
		finder.ReservePrefix(child.Net())
	}

	var pools []string

	for _, gap := range finder.FindGaps(prefix.Net()) {
		pools = append(pools, fmt.Sprintf("%s-%s", gap.Start, gap.End.Prev()))
	}

	return pools
}

func firstIPv4(addrs []topology.AddressAccess) (topology.AddressAccess, bool) {
	for _, addr := range addrs {
		if addr.Addr().Is4() {
			return addr, true
		}
	}

	return topology.AddressAccess{}, false
}

// GenerateTarget computes the complete desired state of a device:
// device wiring first, then the layer 2 plan, then DHCP on top of the
// final interface assignments.
func GenerateTarget(device topology.DeviceAccess, model string, naming NameGenerator, log logger.Logger) (*Resources, error) {
	target, err := NewTarget(model, log)
	if err != nil {
		return nil, err
	}

	target.GenerateFrom(device)

	if err := target.SetupL2(NewL2Setup(device, naming)); err != nil {
		return nil, err
	}

	if err := target.setupDHCP(device, naming); err != nil {
		return nil, err
	}

	return target.Resources(), nil
}
