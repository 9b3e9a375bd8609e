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

package netbox

import (
	"net/netip"

	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/topology"
)

const (
	routerosPlatformSlug  = "routeros"
	loopbackInterfaceName = "lo"
	virtualInterfaceType  = "virtual"
	poeModePSE            = "pse"
	l2vpnTypeVxlan        = "vxlan"
	wlanAuthTypeWPA       = "wpa-personal"
	wlanAuthTypeOpen      = "open"

	objectTypeInterface = "dcim.interface"
	objectTypeFrontPort = "dcim.frontport"
	objectTypeRearPort  = "dcim.rearport"
	objectTypeVlan      = "ipam.vlan"
)

// parsedAddress is one ip-address row after parsing. ifaceID is zero
// unless the address is assigned to a device interface.
type parsedAddress struct {
	id      int64
	prefix  netip.Prefix
	ifaceID int64
}

// loader turns one raw inventory pull into builder entities. All
// object ids NetBox enforces as foreign keys pass through untouched;
// operator-entered custom-field references are checked against the
// fetched collections so a stale id degrades one link instead of
// failing the snapshot.
type loader struct {
	inv *inventory
	log logger.Logger

	credsByTenant    map[int64]string
	tenantOfSite     map[int64]int64
	tenantOfLocation map[int64]int64

	deviceIDs    map[int64]bool
	vlanIDs      map[int64]bool
	wlanGroupIDs map[int64]bool
	addressIDs   map[int64]bool

	controllerOf map[int64]int64
	mgmtVlanOf   map[int64]int64

	vxlanOfVlan     map[int64]int64
	vxlanInterfaces map[int64][]topology.InterfaceID

	ifacesOfDevice map[int64][]*apiInterface
	addrsOfIface   map[int64][]parsedAddress
	addresses      []parsedAddress
}

func (c *Client) buildTopology(inv *inventory) (*topology.Topology, error) {
	b := topology.NewBuilder()
	newLoader(inv, c.log).load(b)

	return b.Build()
}

func newLoader(inv *inventory, log logger.Logger) *loader {
	l := &loader{
		inv: inv,
		log: log,

		credsByTenant:    make(map[int64]string),
		tenantOfSite:     make(map[int64]int64),
		tenantOfLocation: make(map[int64]int64),

		deviceIDs:    make(map[int64]bool, len(inv.devices)),
		vlanIDs:      make(map[int64]bool, len(inv.vlans)),
		wlanGroupIDs: make(map[int64]bool, len(inv.wlanGroups)),
		addressIDs:   make(map[int64]bool, len(inv.ipAddresses)),

		controllerOf: make(map[int64]int64),
		mgmtVlanOf:   make(map[int64]int64),

		vxlanOfVlan:     make(map[int64]int64),
		vxlanInterfaces: make(map[int64][]topology.InterfaceID),

		ifacesOfDevice: make(map[int64][]*apiInterface),
		addrsOfIface:   make(map[int64][]parsedAddress),
	}

	for _, tenant := range inv.tenants {
		if creds := tenant.CustomFields.MikrotikCredentials; creds != "" {
			l.credsByTenant[tenant.ID] = creds
		}
	}

	for _, site := range inv.sites {
		if site.Tenant.ID != 0 {
			l.tenantOfSite[site.ID] = site.Tenant.ID
		}
	}

	for _, location := range inv.locations {
		if location.Tenant.ID != 0 {
			l.tenantOfLocation[location.ID] = location.Tenant.ID
		}
	}

	for _, device := range inv.devices {
		l.deviceIDs[device.ID] = true
	}

	for _, vlan := range inv.vlans {
		l.vlanIDs[vlan.ID] = true
	}

	for _, group := range inv.wlanGroups {
		l.wlanGroupIDs[group.ID] = true
	}

	for i := range inv.interfaces {
		iface := &inv.interfaces[i]
		l.ifacesOfDevice[iface.Device.ID] = append(l.ifacesOfDevice[iface.Device.ID], iface)
	}

	l.indexAddresses()
	l.indexWlanGroups()
	l.indexL2VPNs()

	return l
}

func (l *loader) indexAddresses() {
	for _, addr := range l.inv.ipAddresses {
		prefix, err := netip.ParsePrefix(addr.Address)
		if err != nil {
			l.log.Warn().Str("address", addr.Address).Err(err).Msg("Skipping unparsable IP address")
			continue
		}

		var ifaceID int64
		if addr.AssignedObjectType == objectTypeInterface {
			ifaceID = addr.AssignedObjectID
		}

		parsed := parsedAddress{id: addr.ID, prefix: prefix, ifaceID: ifaceID}
		l.addresses = append(l.addresses, parsed)
		l.addressIDs[addr.ID] = true

		if ifaceID != 0 {
			l.addrsOfIface[ifaceID] = append(l.addrsOfIface[ifaceID], parsed)
		}
	}
}

func (l *loader) indexWlanGroups() {
	for _, group := range l.inv.wlanGroups {
		if controller := group.CustomFields.Controller; controller != 0 {
			if l.deviceIDs[controller] {
				l.controllerOf[controller] = group.ID
			} else {
				l.log.Warn().Int64("device", controller).Int64("group", group.ID).
					Msg("WLAN group controller does not match a known device")
			}
		}

		if vlan := group.CustomFields.MgmtVlan; vlan != 0 {
			if l.vlanIDs[vlan] {
				l.mgmtVlanOf[group.ID] = vlan
			} else {
				l.log.Warn().Int64("vlan", vlan).Int64("group", group.ID).
					Msg("WLAN group management VLAN does not match a known VLAN")
			}
		}
	}
}

func (l *loader) indexL2VPNs() {
	vxlans := make(map[int64]bool)

	for _, l2vpn := range l.inv.l2vpns {
		if l2vpn.Type.Value == l2vpnTypeVxlan && l2vpn.Identifier != 0 {
			vxlans[l2vpn.ID] = true
		}
	}

	for _, term := range l.inv.l2vpnTerminations {
		if !vxlans[term.L2VPN.ID] {
			continue
		}

		switch term.AssignedObjectType {
		case objectTypeInterface:
			l.vxlanInterfaces[term.L2VPN.ID] = append(l.vxlanInterfaces[term.L2VPN.ID],
				topology.InterfaceID(term.AssignedObjectID))
		case objectTypeVlan:
			l.vxlanOfVlan[term.AssignedObjectID] = term.L2VPN.ID
		}
	}
}

func (l *loader) load(b *topology.Builder) {
	l.addDevices(b)
	l.addInterfaces(b)
	l.addPorts(b)
	l.addCables(b)
	l.addVlans(b)
	l.addWlans(b)
	l.addVxlans(b)
	l.addIPAM(b)
}

func (l *loader) addDevices(b *topology.Builder) {
	for i := range l.inv.devices {
		device := &l.inv.devices[i]

		entity := topology.Device{
			ID:                topology.DeviceID(device.ID),
			Name:              device.Name,
			Serial:            device.Serial,
			Model:             device.DeviceType.Model,
			CredentialProfile: l.credentialsFor(device),
			HasRouterOS:       device.Platform.Slug == routerosPlatformSlug,
			PrimaryIP:         l.primaryAddress(device),
			LoopbackIP:        l.loopbackAddress(device.ID),
		}

		if group, ok := l.controllerOf[device.ID]; ok {
			entity.WlanControllerOf = topology.WlanGroupID(group)
		}

		if group := device.CustomFields.WlanGroup; group != 0 {
			if l.wlanGroupIDs[group] {
				entity.WlanAPOf = topology.WlanGroupID(group)

				if vlan, ok := l.mgmtVlanOf[group]; ok {
					entity.ExtraVlans = []topology.VlanID{topology.VlanID(vlan)}
				}
			} else {
				l.log.Warn().Int64("group", group).Str("device", device.Name).
					Msg("Device references an unknown WLAN group")
			}
		}

		b.AddDevice(entity)
	}
}

// credentialsFor resolves the credential profile through the tenant
// hierarchy: device tenant first, then location tenant, then site
// tenant.
func (l *loader) credentialsFor(device *apiDevice) string {
	if creds, ok := l.credsByTenant[device.Tenant.ID]; ok {
		return creds
	}

	if creds, ok := l.credsByTenant[l.tenantOfLocation[device.Location.ID]]; ok {
		return creds
	}

	if creds, ok := l.credsByTenant[l.tenantOfSite[device.Site.ID]]; ok {
		return creds
	}

	return ""
}

func (l *loader) primaryAddress(device *apiDevice) topology.AddressID {
	for _, r := range []ref{device.PrimaryIP4, device.PrimaryIP6} {
		if r.ID == 0 {
			continue
		}

		if !l.addressIDs[r.ID] {
			l.log.Warn().Int64("address", r.ID).Str("device", device.Name).
				Msg("Primary IP does not match a known address")
			continue
		}

		return topology.AddressID(r.ID)
	}

	return 0
}

// loopbackAddress finds the device loopback: a virtual interface
// named lo carrying a full-length address.
func (l *loader) loopbackAddress(deviceID int64) topology.AddressID {
	for _, iface := range l.ifacesOfDevice[deviceID] {
		if iface.Name != loopbackInterfaceName || iface.Type.Value != virtualInterfaceType {
			continue
		}

		for _, addr := range l.addrsOfIface[iface.ID] {
			if addr.prefix.IsSingleIP() {
				return topology.AddressID(addr.id)
			}
		}
	}

	return 0
}

func (l *loader) addInterfaces(b *topology.Builder) {
	for i := range l.inv.interfaces {
		iface := &l.inv.interfaces[i]

		entity := topology.Interface{
			ID:               topology.InterfaceID(iface.ID),
			Name:             iface.Name,
			Label:            iface.Label,
			Device:           topology.DeviceID(iface.Device.ID),
			UntaggedVlan:     topology.VlanID(iface.UntaggedVlan.ID),
			Bridge:           topology.InterfaceID(iface.Bridge.ID),
			UseOSPF:          iface.CustomFields.UseOSPF,
			EnableDHCPClient: iface.CustomFields.EnableDHCPClient,
			EnableDHCPServer: iface.CustomFields.EnableDHCPServer,
			EnablePoE:        iface.PoeMode.Value == poeModePSE,
		}

		if port, ok := topology.ParsePortName(iface.Name); ok {
			entity.External = &port
		}

		for _, vlan := range iface.TaggedVlans {
			entity.TaggedVlans = append(entity.TaggedVlans, topology.VlanID(vlan.ID))
		}

		b.AddInterface(entity)
	}
}

func (l *loader) addPorts(b *topology.Builder) {
	for _, port := range l.inv.frontPorts {
		b.AddFrontPort(topology.FrontPort{
			ID:       topology.FrontPortID(port.ID),
			Name:     port.Name,
			Device:   topology.DeviceID(port.Device.ID),
			RearPort: topology.RearPortID(port.RearPort.ID),
		})
	}

	for _, port := range l.inv.rearPorts {
		b.AddRearPort(topology.RearPort{
			ID:     topology.RearPortID(port.ID),
			Name:   port.Name,
			Device: topology.DeviceID(port.Device.ID),
		})
	}
}

func (l *loader) addCables(b *topology.Builder) {
	for _, cable := range l.inv.cables {
		entity := topology.Cable{
			ID:    topology.CableID(cable.ID),
			PortA: portRefs(cable.ATerminations),
			PortB: portRefs(cable.BTerminations),
		}

		if len(entity.PortA) == 0 && len(entity.PortB) == 0 {
			continue
		}

		b.AddCable(entity)
	}
}

// portRefs keeps the cable terminations the topology models. Power,
// console and circuit attachments are dropped.
func portRefs(terms []apiTermination) []topology.PortRef {
	var refs []topology.PortRef

	for _, term := range terms {
		switch term.ObjectType {
		case objectTypeInterface:
			refs = append(refs, topology.InterfacePortRef(topology.InterfaceID(term.ObjectID)))
		case objectTypeFrontPort:
			refs = append(refs, topology.FrontPortRef(topology.FrontPortID(term.ObjectID)))
		case objectTypeRearPort:
			refs = append(refs, topology.RearPortRef(topology.RearPortID(term.ObjectID)))
		}
	}

	return refs
}

func (l *loader) addVlans(b *topology.Builder) {
	for _, group := range l.inv.vlanGroups {
		b.AddVlanGroup(topology.VlanGroup{
			ID:   topology.VlanGroupID(group.ID),
			Name: group.Name,
		})
	}

	for _, vlan := range l.inv.vlans {
		entity := topology.Vlan{
			ID:    topology.VlanID(vlan.ID),
			Name:  vlan.Name,
			Tag:   uint16(vlan.VID),
			Group: topology.VlanGroupID(vlan.Group.ID),
		}

		if vxlan, ok := l.vxlanOfVlan[vlan.ID]; ok {
			entity.Vxlan = topology.VxlanID(vxlan)
		}

		b.AddVlan(entity)
	}
}

func (l *loader) addWlans(b *topology.Builder) {
	for _, group := range l.inv.wlanGroups {
		entity := topology.WlanGroup{
			ID:   topology.WlanGroupID(group.ID),
			Name: group.Name,
		}

		if vlan, ok := l.mgmtVlanOf[group.ID]; ok {
			entity.MgmtVlan = topology.VlanID(vlan)
		}

		b.AddWlanGroup(entity)
	}

	for _, wlan := range l.inv.wlans {
		auth, ok := wlanAuthFor(wlan.AuthType.Value, wlan.AuthPSK)
		if !ok {
			l.log.Warn().Str("ssid", wlan.SSID).Str("auth", wlan.AuthType.Value).
				Msg("Skipping WLAN with unsupported auth type")
			continue
		}

		if wlan.Vlan.ID == 0 {
			l.log.Warn().Str("ssid", wlan.SSID).Msg("Skipping WLAN without a VLAN")
			continue
		}

		b.AddWlan(topology.Wlan{
			ID:    topology.WlanID(wlan.ID),
			SSID:  wlan.SSID,
			Group: topology.WlanGroupID(wlan.Group.ID),
			Vlan:  topology.VlanID(wlan.Vlan.ID),
			Auth:  auth,
		})
	}
}

// wlanAuthFor maps the inventory auth type onto WLAN security
// settings. Unsupported schemes yield ok=false.
func wlanAuthFor(authType, psk string) (topology.WlanAuth, bool) {
	switch authType {
	case wlanAuthTypeWPA:
		return topology.WlanAuth{Mode: topology.WlanAuthWPAPersonal, Password: psk}, true
	case wlanAuthTypeOpen:
		return topology.WlanAuth{Mode: topology.WlanAuthOpen, UseOWE: true}, true
	default:
		return topology.WlanAuth{}, false
	}
}

func (l *loader) addVxlans(b *topology.Builder) {
	for _, l2vpn := range l.inv.l2vpns {
		if l2vpn.Type.Value != l2vpnTypeVxlan {
			continue
		}

		if l2vpn.Identifier == 0 {
			l.log.Warn().Str("l2vpn", l2vpn.Name).Msg("Skipping VXLAN without a VNI")
			continue
		}

		b.AddVxlan(topology.VxlanData{
			ID:         topology.VxlanID(l2vpn.ID),
			Name:       l2vpn.Name,
			VNI:        uint32(l2vpn.Identifier),
			Interfaces: l.vxlanInterfaces[l2vpn.ID],
		})
	}
}

func (l *loader) addIPAM(b *topology.Builder) {
	for _, prefix := range l.inv.prefixes {
		net, err := netip.ParsePrefix(prefix.Prefix)
		if err != nil {
			l.log.Warn().Str("prefix", prefix.Prefix).Err(err).Msg("Skipping unparsable prefix")
			continue
		}

		b.AddPrefix(topology.IpPrefix{
			ID:  topology.PrefixID(prefix.ID),
			Net: net,
		})
	}

	for _, r := range l.inv.ipRanges {
		start, err := netip.ParsePrefix(r.StartAddress)
		if err != nil {
			l.log.Warn().Str("start", r.StartAddress).Err(err).Msg("Skipping unparsable IP range")
			continue
		}

		end, err := netip.ParsePrefix(r.EndAddress)
		if err != nil {
			l.log.Warn().Str("end", r.EndAddress).Err(err).Msg("Skipping unparsable IP range")
			continue
		}

		b.AddRange(topology.IpRange{
			ID:     topology.RangeID(r.ID),
			Start:  start.Addr(),
			End:    end.Addr(),
			Net:    start.Masked(),
			IsDHCP: r.CustomFields.DHCPPool,
		})
	}

	for _, addr := range l.addresses {
		b.AddAddress(topology.IpAddress{
			ID:        topology.AddressID(addr.id),
			Address:   addr.prefix,
			Interface: topology.InterfaceID(addr.ifaceID),
		})
	}
}
