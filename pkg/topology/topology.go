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

// Package topology holds an immutable, point-in-time snapshot of the
// network inventory as flat id-indexed maps, navigated through cheap
// (snapshot, id) accessor handles. Snapshots are replaced wholesale on
// refresh and never mutated after publication, so any number of
// readers can traverse one concurrently without synchronization.
package topology

import (
	"net/netip"
	"sort"
	"time"
)

// Topology is one immutable inventory snapshot.
type Topology struct {
	fetchedAt time.Time

	devices    map[DeviceID]*Device
	interfaces map[InterfaceID]*Interface
	frontPorts map[FrontPortID]*FrontPort
	rearPorts  map[RearPortID]*RearPort
	cables     map[CableID]*Cable
	vlanGroups map[VlanGroupID]*VlanGroup
	vlans      map[VlanID]*Vlan
	wlanGroups map[WlanGroupID]*WlanGroup
	wlans      map[WlanID]*Wlan
	vxlans     map[VxlanID]*VxlanData
	prefixes   map[PrefixID]*IpPrefix
	ranges     map[RangeID]*IpRange
	addresses  map[AddressID]*IpAddress

	devicesByName map[string]DeviceID
	prefixByNet   map[netip.Prefix]PrefixID
	rangesByNet   map[netip.Prefix][]RangeID
}

// FetchedAt reports when this snapshot was built.
func (t *Topology) FetchedAt() time.Time {
	return t.fetchedAt
}

// Age reports how long ago this snapshot was built.
func (t *Topology) Age() time.Duration {
	return time.Since(t.fetchedAt)
}

// Devices lists all devices ordered by id.
func (t *Topology) Devices() []DeviceAccess {
	ids := make([]DeviceID, 0, len(t.devices))
	for id := range t.devices {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]DeviceAccess, len(ids))
	for i, id := range ids {
		result[i] = DeviceAccess{topology: t, id: id}
	}

	return result
}

// Device returns an accessor for the given id.
func (t *Topology) Device(id DeviceID) (DeviceAccess, bool) {
	if _, ok := t.devices[id]; !ok {
		return DeviceAccess{}, false
	}

	return DeviceAccess{topology: t, id: id}, true
}

// DeviceByName finds a device by its inventory name.
func (t *Topology) DeviceByName(name string) (DeviceAccess, bool) {
	id, ok := t.devicesByName[name]
	if !ok {
		return DeviceAccess{}, false
	}

	return DeviceAccess{topology: t, id: id}, true
}

// Interface returns an accessor for the given id.
func (t *Topology) Interface(id InterfaceID) (InterfaceAccess, bool) {
	if _, ok := t.interfaces[id]; !ok {
		return InterfaceAccess{}, false
	}

	return InterfaceAccess{topology: t, id: id}, true
}

// Vlan returns an accessor for the given id.
func (t *Topology) Vlan(id VlanID) (VlanAccess, bool) {
	if _, ok := t.vlans[id]; !ok {
		return VlanAccess{}, false
	}

	return VlanAccess{topology: t, id: id}, true
}

// Vlans lists all VLANs ordered by id.
func (t *Topology) Vlans() []VlanAccess {
	ids := make([]VlanID, 0, len(t.vlans))
	for id := range t.vlans {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]VlanAccess, len(ids))
	for i, id := range ids {
		result[i] = VlanAccess{topology: t, id: id}
	}

	return result
}

// VlanGroup returns an accessor for the given id.
func (t *Topology) VlanGroup(id VlanGroupID) (VlanGroupAccess, bool) {
	if _, ok := t.vlanGroups[id]; !ok {
		return VlanGroupAccess{}, false
	}

	return VlanGroupAccess{topology: t, id: id}, true
}

// Wlan returns an accessor for the given id.
func (t *Topology) Wlan(id WlanID) (WlanAccess, bool) {
	if _, ok := t.wlans[id]; !ok {
		return WlanAccess{}, false
	}

	return WlanAccess{topology: t, id: id}, true
}

// WlanGroup returns an accessor for the given id.
func (t *Topology) WlanGroup(id WlanGroupID) (WlanGroupAccess, bool) {
	if _, ok := t.wlanGroups[id]; !ok {
		return WlanGroupAccess{}, false
	}

	return WlanGroupAccess{topology: t, id: id}, true
}

// Vxlan returns an accessor for the given id.
func (t *Topology) Vxlan(id VxlanID) (VxlanAccess, bool) {
	if _, ok := t.vxlans[id]; !ok {
		return VxlanAccess{}, false
	}

	return VxlanAccess{topology: t, id: id}, true
}

// Vxlans lists all VXLANs ordered by id.
func (t *Topology) Vxlans() []VxlanAccess {
	ids := make([]VxlanID, 0, len(t.vxlans))
	for id := range t.vxlans {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]VxlanAccess, len(ids))
	for i, id := range ids {
		result[i] = VxlanAccess{topology: t, id: id}
	}

	return result
}

// Cable returns an accessor for the given id.
func (t *Topology) Cable(id CableID) (CableAccess, bool) {
	if _, ok := t.cables[id]; !ok {
		return CableAccess{}, false
	}

	return CableAccess{topology: t, id: id}, true
}

// Range returns an accessor for the given id.
func (t *Topology) Range(id RangeID) (RangeAccess, bool) {
	if _, ok := t.ranges[id]; !ok {
		return RangeAccess{}, false
	}

	return RangeAccess{topology: t, id: id}, true
}

// Prefixes lists all IP prefixes ordered by id.
func (t *Topology) Prefixes() []PrefixAccess {
	ids := make([]PrefixID, 0, len(t.prefixes))
	for id := range t.prefixes {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]PrefixAccess, len(ids))
	for i, id := range ids {
		result[i] = PrefixAccess{topology: t, id: id}
	}

	return result
}

// Prefix returns an accessor for the given id.
func (t *Topology) Prefix(id PrefixID) (PrefixAccess, bool) {
	if _, ok := t.prefixes[id]; !ok {
		return PrefixAccess{}, false
	}

	return PrefixAccess{topology: t, id: id}, true
}

// PrefixByNet finds the prefix entity matching a network exactly.
func (t *Topology) PrefixByNet(net netip.Prefix) (PrefixAccess, bool) {
	id, ok := t.prefixByNet[net.Masked()]
	if !ok {
		return PrefixAccess{}, false
	}

	return PrefixAccess{topology: t, id: id}, true
}

// RangesByNet lists the address ranges declared inside a network,
// ordered by id. Works whether or not a prefix entity exists for the
// network.
func (t *Topology) RangesByNet(net netip.Prefix) []RangeAccess {
	ids := t.rangesByNet[net.Masked()]

	result := make([]RangeAccess, 0, len(ids))
	for _, id := range ids {
		result = append(result, RangeAccess{topology: t, id: id})
	}

	return result
}

// Address returns an accessor for the given id.
func (t *Topology) Address(id AddressID) (AddressAccess, bool) {
	if _, ok := t.addresses[id]; !ok {
		return AddressAccess{}, false
	}

	return AddressAccess{topology: t, id: id}, true
}

// Port resolves a port reference into an accessor, if it exists in
// this snapshot.
func (t *Topology) Port(ref PortRef) (PortAccess, bool) {
	switch ref.Kind {
	case PortRefInterface:
		if _, ok := t.interfaces[InterfaceID(ref.ID)]; !ok {
			return PortAccess{}, false
		}
	case PortRefFront:
		if _, ok := t.frontPorts[FrontPortID(ref.ID)]; !ok {
			return PortAccess{}, false
		}
	case PortRefRear:
		if _, ok := t.rearPorts[RearPortID(ref.ID)]; !ok {
			return PortAccess{}, false
		}
	default:
		return PortAccess{}, false
	}

	return PortAccess{topology: t, ref: ref}, true
}
