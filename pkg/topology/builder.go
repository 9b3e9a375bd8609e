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

package topology

import (
	"fmt"
	"net/netip"
	"sort"
	"time"
)

// Builder assembles an immutable snapshot from raw inventory
// entities. Callers add entities with forward references only (child
// to parent, member to group); Build validates them, derives every
// reverse link, and resolves the prefix tree. A Builder is single use.
type Builder struct {
	devices    []Device
	interfaces []Interface
	frontPorts []FrontPort
	rearPorts  []RearPort
	cables     []Cable
	vlanGroups []VlanGroup
	vlans      []Vlan
	wlanGroups []WlanGroup
	wlans      []Wlan
	vxlans     []VxlanData
	prefixes   []IpPrefix
	ranges     []IpRange
	addresses  []IpAddress
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) AddDevice(d Device) *Builder {
	b.devices = append(b.devices, d)
	return b
}

func (b *Builder) AddInterface(i Interface) *Builder {
	b.interfaces = append(b.interfaces, i)
	return b
}

func (b *Builder) AddFrontPort(p FrontPort) *Builder {
	b.frontPorts = append(b.frontPorts, p)
	return b
}

func (b *Builder) AddRearPort(p RearPort) *Builder {
	b.rearPorts = append(b.rearPorts, p)
	return b
}

func (b *Builder) AddCable(c Cable) *Builder {
	b.cables = append(b.cables, c)
	return b
}

func (b *Builder) AddVlanGroup(g VlanGroup) *Builder {
	b.vlanGroups = append(b.vlanGroups, g)
	return b
}

func (b *Builder) AddVlan(v Vlan) *Builder {
	b.vlans = append(b.vlans, v)
	return b
}

func (b *Builder) AddWlanGroup(g WlanGroup) *Builder {
	b.wlanGroups = append(b.wlanGroups, g)
	return b
}

func (b *Builder) AddWlan(w Wlan) *Builder {
	b.wlans = append(b.wlans, w)
	return b
}

func (b *Builder) AddVxlan(x VxlanData) *Builder {
	b.vxlans = append(b.vxlans, x)
	return b
}

func (b *Builder) AddPrefix(p IpPrefix) *Builder {
	b.prefixes = append(b.prefixes, p)
	return b
}

func (b *Builder) AddRange(r IpRange) *Builder {
	b.ranges = append(b.ranges, r)
	return b
}

func (b *Builder) AddAddress(a IpAddress) *Builder {
	b.addresses = append(b.addresses, a)
	return b
}

// Build indexes the added entities, wires all reverse references, and
// returns the finished snapshot. The first inconsistency aborts the
// build.
func (b *Builder) Build() (*Topology, error) {
	t := &Topology{fetchedAt: time.Now()}

	var err error

	if t.devices, err = indexEntities("device", b.devices, func(d *Device) DeviceID { return d.ID }); err != nil {
		return nil, err
	}

	if t.interfaces, err = indexEntities("interface", b.interfaces, func(i *Interface) InterfaceID { return i.ID }); err != nil {
		return nil, err
	}

	if t.frontPorts, err = indexEntities("front port", b.frontPorts, func(p *FrontPort) FrontPortID { return p.ID }); err != nil {
		return nil, err
	}

	if t.rearPorts, err = indexEntities("rear port", b.rearPorts, func(p *RearPort) RearPortID { return p.ID }); err != nil {
		return nil, err
	}

	if t.cables, err = indexEntities("cable", b.cables, func(c *Cable) CableID { return c.ID }); err != nil {
		return nil, err
	}

	if t.vlanGroups, err = indexEntities("vlan group", b.vlanGroups, func(g *VlanGroup) VlanGroupID { return g.ID }); err != nil {
		return nil, err
	}

	if t.vlans, err = indexEntities("vlan", b.vlans, func(v *Vlan) VlanID { return v.ID }); err != nil {
		return nil, err
	}

	if t.wlanGroups, err = indexEntities("wlan group", b.wlanGroups, func(g *WlanGroup) WlanGroupID { return g.ID }); err != nil {
		return nil, err
	}

	if t.wlans, err = indexEntities("wlan", b.wlans, func(w *Wlan) WlanID { return w.ID }); err != nil {
		return nil, err
	}

	if t.vxlans, err = indexEntities("vxlan", b.vxlans, func(x *VxlanData) VxlanID { return x.ID }); err != nil {
		return nil, err
	}

	if t.prefixes, err = indexEntities("prefix", b.prefixes, func(p *IpPrefix) PrefixID { return p.ID }); err != nil {
		return nil, err
	}

	if t.ranges, err = indexEntities("range", b.ranges, func(r *IpRange) RangeID { return r.ID }); err != nil {
		return nil, err
	}

	if t.addresses, err = indexEntities("address", b.addresses, func(a *IpAddress) AddressID { return a.ID }); err != nil {
		return nil, err
	}

	for _, wire := range []func(*Topology) error{
		wireDeviceChildren,
		wirePassthroughs,
		wireCables,
		wireVlans,
		wireWlans,
		wireAddresses,
		wirePrefixTree,
		wireDeviceRefs,
	} {
		if err := wire(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// indexEntities builds the id index for one entity kind, rejecting
// unset and duplicate ids. The map points into items, which must not
// be appended to afterwards.
func indexEntities[ID ~int64, E any](kind string, items []E, id func(*E) ID) (map[ID]*E, error) {
	index := make(map[ID]*E, len(items))

	for i := range items {
		entityID := id(&items[i])
		if entityID == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingID, kind)
		}

		if _, ok := index[entityID]; ok {
			return nil, fmt.Errorf("%w: %s %d", ErrDuplicateID, kind, entityID)
		}

		index[entityID] = &items[i]
	}

	return index, nil
}

func sortIDs[ID ~int64](ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func dedupIDs[ID ~int64](ids []ID) []ID {
	sortIDs(ids)

	out := ids[:0]

	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}

	return out
}

func wireDeviceChildren(t *Topology) error {
	for id, iface := range t.interfaces {
		device, ok := t.devices[iface.Device]
		if !ok {
			return fmt.Errorf("%w: interface %d device %d", ErrUnknownReference, id, iface.Device)
		}

		device.Interfaces = append(device.Interfaces, id)

		if iface.Bridge != 0 {
			if _, ok := t.interfaces[iface.Bridge]; !ok {
				return fmt.Errorf("%w: interface %d bridge %d", ErrUnknownReference, id, iface.Bridge)
			}
		}
	}

	for id, port := range t.frontPorts {
		device, ok := t.devices[port.Device]
		if !ok {
			return fmt.Errorf("%w: front port %d device %d", ErrUnknownReference, id, port.Device)
		}

		device.FrontPorts = append(device.FrontPorts, id)
	}

	for id, port := range t.rearPorts {
		device, ok := t.devices[port.Device]
		if !ok {
			return fmt.Errorf("%w: rear port %d device %d", ErrUnknownReference, id, port.Device)
		}

		device.RearPorts = append(device.RearPorts, id)
	}

	for _, device := range t.devices {
		sortIDs(device.Interfaces)
		sortIDs(device.FrontPorts)
		sortIDs(device.RearPorts)
	}

	return nil
}

// wirePassthroughs mirrors the front/rear pair links so either side
// can be walked from.
func wirePassthroughs(t *Topology) error {
	for id, front := range t.frontPorts {
		if front.RearPort == 0 {
			continue
		}

		rear, ok := t.rearPorts[front.RearPort]
		if !ok {
			return fmt.Errorf("%w: front port %d rear port %d", ErrUnknownReference, id, front.RearPort)
		}

		if rear.FrontPort != 0 && rear.FrontPort != id {
			return fmt.Errorf("%w: front port %d, rear port %d", ErrMismatchedPassthrough, id, front.RearPort)
		}

		rear.FrontPort = id
	}

	for id, rear := range t.rearPorts {
		if rear.FrontPort == 0 {
			continue
		}

		front, ok := t.frontPorts[rear.FrontPort]
		if !ok {
			return fmt.Errorf("%w: rear port %d front port %d", ErrUnknownReference, id, rear.FrontPort)
		}

		if front.RearPort != 0 && front.RearPort != id {
			return fmt.Errorf("%w: front port %d, rear port %d", ErrMismatchedPassthrough, rear.FrontPort, id)
		}

		front.RearPort = id
	}

	return nil
}

// wireCables attaches each cable to every termination on both sides.
func wireCables(t *Topology) error {
	ids := make([]CableID, 0, len(t.cables))
	for id := range t.cables {
		ids = append(ids, id)
	}

	sortIDs(ids)

	for _, id := range ids {
		cable := t.cables[id]

		for _, side := range [][]PortRef{cable.PortA, cable.PortB} {
			for _, ref := range side {
				if err := attachCable(t, ref, id); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func attachCable(t *Topology, ref PortRef, cable CableID) error {
	var current *CableID

	switch ref.Kind {
	case PortRefInterface:
		if iface, ok := t.interfaces[InterfaceID(ref.ID)]; ok {
			current = &iface.Cable
		}
	case PortRefFront:
		if front, ok := t.frontPorts[FrontPortID(ref.ID)]; ok {
			current = &front.Cable
		}
	case PortRefRear:
		if rear, ok := t.rearPorts[RearPortID(ref.ID)]; ok {
			current = &rear.Cable
		}
	}

	if current == nil {
		return fmt.Errorf("%w: cable %d termination kind %d id %d", ErrUnknownReference, cable, ref.Kind, ref.ID)
	}

	// A port carries at most one cable termination, even within a
	// single cable's fan-out.
	if *current != 0 {
		return fmt.Errorf("%w: kind %d id %d, cables %d and %d", ErrPortAlreadyCabled, ref.Kind, ref.ID, *current, cable)
	}

	*current = cable

	return nil
}

func wireVlans(t *Topology) error {
	for id, vlan := range t.vlans {
		if vlan.Group != 0 {
			group, ok := t.vlanGroups[vlan.Group]
			if !ok {
				return fmt.Errorf("%w: vlan %d group %d", ErrUnknownReference, id, vlan.Group)
			}

			group.Vlans = append(group.Vlans, id)
		}

		if vlan.Vxlan != 0 {
			vxlan, ok := t.vxlans[vlan.Vxlan]
			if !ok {
				return fmt.Errorf("%w: vlan %d vxlan %d", ErrUnknownReference, id, vlan.Vxlan)
			}

			vxlan.Vlans = append(vxlan.Vlans, id)
		}
	}

	// A VLAN's termination list covers tagged and untagged members
	// alike, each interface once.
	for id, iface := range t.interfaces {
		if iface.UntaggedVlan != 0 {
			vlan, ok := t.vlans[iface.UntaggedVlan]
			if !ok {
				return fmt.Errorf("%w: interface %d untagged vlan %d", ErrUnknownReference, id, iface.UntaggedVlan)
			}

			vlan.Interfaces = append(vlan.Interfaces, id)
		}

		for _, vlanID := range iface.TaggedVlans {
			vlan, ok := t.vlans[vlanID]
			if !ok {
				return fmt.Errorf("%w: interface %d tagged vlan %d", ErrUnknownReference, id, vlanID)
			}

			vlan.Interfaces = append(vlan.Interfaces, id)
		}

		sortIDs(iface.TaggedVlans)
	}

	for id, vxlan := range t.vxlans {
		for _, ifaceID := range vxlan.Interfaces {
			if _, ok := t.interfaces[ifaceID]; !ok {
				return fmt.Errorf("%w: vxlan %d interface %d", ErrUnknownReference, id, ifaceID)
			}
		}

		sortIDs(vxlan.Interfaces)
		sortIDs(vxlan.Vlans)
	}

	for _, vlan := range t.vlans {
		vlan.Interfaces = dedupIDs(vlan.Interfaces)
	}

	for _, group := range t.vlanGroups {
		sortIDs(group.Vlans)
	}

	return nil
}

func wireWlans(t *Topology) error {
	for id, wlan := range t.wlans {
		if wlan.Group != 0 {
			group, ok := t.wlanGroups[wlan.Group]
			if !ok {
				return fmt.Errorf("%w: wlan %d group %d", ErrUnknownReference, id, wlan.Group)
			}

			group.Wlans = append(group.Wlans, id)
		}

		if wlan.Vlan != 0 {
			vlan, ok := t.vlans[wlan.Vlan]
			if !ok {
				return fmt.Errorf("%w: wlan %d vlan %d", ErrUnknownReference, id, wlan.Vlan)
			}

			vlan.Wlans = append(vlan.Wlans, id)
		}
	}

	deviceIDs := make([]DeviceID, 0, len(t.devices))
	for id := range t.devices {
		deviceIDs = append(deviceIDs, id)
	}

	sortIDs(deviceIDs)

	for _, id := range deviceIDs {
		device := t.devices[id]

		if device.WlanControllerOf != 0 {
			group, ok := t.wlanGroups[device.WlanControllerOf]
			if !ok {
				return fmt.Errorf("%w: device %d wlan group %d", ErrUnknownReference, id, device.WlanControllerOf)
			}

			if group.Controller != 0 && group.Controller != id {
				return fmt.Errorf("%w: wlan group %d, devices %d and %d",
					ErrMultipleControllers, device.WlanControllerOf, group.Controller, id)
			}

			group.Controller = id
		}

		if device.WlanAPOf != 0 {
			group, ok := t.wlanGroups[device.WlanAPOf]
			if !ok {
				return fmt.Errorf("%w: device %d wlan group %d", ErrUnknownReference, id, device.WlanAPOf)
			}

			group.APs = append(group.APs, id)
		}
	}

	for id, group := range t.wlanGroups {
		if group.MgmtVlan != 0 {
			if _, ok := t.vlans[group.MgmtVlan]; !ok {
				return fmt.Errorf("%w: wlan group %d mgmt vlan %d", ErrUnknownReference, id, group.MgmtVlan)
			}
		}

		sortIDs(group.Wlans)
		sortIDs(group.APs)
	}

	for _, vlan := range t.vlans {
		sortIDs(vlan.Wlans)
	}

	return nil
}

func wireAddresses(t *Topology) error {
	for id, addr := range t.addresses {
		if addr.Interface == 0 {
			continue
		}

		iface, ok := t.interfaces[addr.Interface]
		if !ok {
			return fmt.Errorf("%w: address %d interface %d", ErrUnknownReference, id, addr.Interface)
		}

		iface.Addresses = append(iface.Addresses, id)
	}

	for _, iface := range t.interfaces {
		sortIDs(iface.Addresses)
	}

	return nil
}

// wirePrefixTree canonicalizes prefix networks, links each prefix to
// its tightest enclosing supernet, and binds addresses and ranges to
// the prefix whose network exactly matches theirs.
func wirePrefixTree(t *Topology) error {
	prefixIDs := make([]PrefixID, 0, len(t.prefixes))
	for id := range t.prefixes {
		prefixIDs = append(prefixIDs, id)
	}

	sortIDs(prefixIDs)

	t.prefixByNet = make(map[netip.Prefix]PrefixID, len(prefixIDs))

	for _, id := range prefixIDs {
		prefix := t.prefixes[id]
		prefix.Net = prefix.Net.Masked()

		if _, ok := t.prefixByNet[prefix.Net]; !ok {
			t.prefixByNet[prefix.Net] = id
		}
	}

	for _, id := range prefixIDs {
		prefix := t.prefixes[id]

		var (
			parent     PrefixID
			parentBits = -1
		)

		for _, otherID := range prefixIDs {
			if otherID == id {
				continue
			}

			other := t.prefixes[otherID].Net
			if other.Bits() >= prefix.Net.Bits() || !other.Contains(prefix.Net.Addr()) {
				continue
			}

			if other.Bits() > parentBits {
				parent = otherID
				parentBits = other.Bits()
			}
		}

		prefix.Parent = parent
		if parent != 0 {
			t.prefixes[parent].Children = append(t.prefixes[parent].Children, id)
		}
	}

	t.rangesByNet = make(map[netip.Prefix][]RangeID)

	for id, r := range t.ranges {
		net := r.Net.Masked()
		r.Net = net

		t.rangesByNet[net] = append(t.rangesByNet[net], id)

		if prefixID, ok := t.prefixByNet[net]; ok {
			r.Prefix = prefixID
			t.prefixes[prefixID].Ranges = append(t.prefixes[prefixID].Ranges, id)
		}
	}

	for id, addr := range t.addresses {
		if !addr.Address.IsValid() {
			continue
		}

		if prefixID, ok := t.prefixByNet[addr.Address.Masked()]; ok {
			addr.Prefix = prefixID
			t.prefixes[prefixID].Addresses = append(t.prefixes[prefixID].Addresses, id)
		}
	}

	for _, prefix := range t.prefixes {
		sortIDs(prefix.Children)
		sortIDs(prefix.Ranges)
		sortIDs(prefix.Addresses)
	}

	for _, ids := range t.rangesByNet {
		sortIDs(ids)
	}

	return nil
}

func wireDeviceRefs(t *Topology) error {
	deviceIDs := make([]DeviceID, 0, len(t.devices))
	for id := range t.devices {
		deviceIDs = append(deviceIDs, id)
	}

	sortIDs(deviceIDs)

	t.devicesByName = make(map[string]DeviceID, len(deviceIDs))

	for _, id := range deviceIDs {
		device := t.devices[id]

		if device.PrimaryIP != 0 {
			if _, ok := t.addresses[device.PrimaryIP]; !ok {
				return fmt.Errorf("%w: device %d primary ip %d", ErrUnknownReference, id, device.PrimaryIP)
			}
		}

		if device.LoopbackIP != 0 {
			if _, ok := t.addresses[device.LoopbackIP]; !ok {
				return fmt.Errorf("%w: device %d loopback ip %d", ErrUnknownReference, id, device.LoopbackIP)
			}
		}

		for _, vlanID := range device.ExtraVlans {
			if _, ok := t.vlans[vlanID]; !ok {
				return fmt.Errorf("%w: device %d extra vlan %d", ErrUnknownReference, id, vlanID)
			}
		}

		sortIDs(device.ExtraVlans)

		if _, ok := t.devicesByName[device.Name]; !ok && device.Name != "" {
			t.devicesByName[device.Name] = id
		}
	}

	return nil
}
