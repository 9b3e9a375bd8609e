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

import "net/netip"

// DeviceAccess is a cheap (snapshot, id) handle onto one device.
type DeviceAccess struct {
	topology *Topology
	id       DeviceID
}

func (d DeviceAccess) data() *Device {
	return d.topology.devices[d.id]
}

func (d DeviceAccess) Topology() *Topology {
	return d.topology
}

func (d DeviceAccess) ID() DeviceID {
	return d.id
}

func (d DeviceAccess) Name() string {
	if data := d.data(); data != nil {
		return data.Name
	}

	return ""
}

func (d DeviceAccess) Serial() string {
	if data := d.data(); data != nil {
		return data.Serial
	}

	return ""
}

// Model returns the inventory hardware model name, e.g. "RB750Gr3".
func (d DeviceAccess) Model() string {
	if data := d.data(); data != nil {
		return data.Model
	}

	return ""
}

func (d DeviceAccess) HasRouterOS() bool {
	if data := d.data(); data != nil {
		return data.HasRouterOS
	}

	return false
}

// CredentialProfile returns the credential-profile label resolved from
// the inventory's tenant hierarchy, or "" when none applies.
func (d DeviceAccess) CredentialProfile() string {
	if data := d.data(); data != nil {
		return data.CredentialProfile
	}

	return ""
}

// PrimaryIP returns the device's primary address entity.
func (d DeviceAccess) PrimaryIP() (AddressAccess, bool) {
	data := d.data()
	if data == nil || data.PrimaryIP == 0 {
		return AddressAccess{}, false
	}

	return d.topology.Address(data.PrimaryIP)
}

// PrimaryIPv4 returns the primary address when it is an IPv4 address.
func (d DeviceAccess) PrimaryIPv4() (netip.Addr, bool) {
	addr, ok := d.PrimaryIP()
	if !ok {
		return netip.Addr{}, false
	}

	ip := addr.Addr()
	if !ip.Is4() {
		return netip.Addr{}, false
	}

	return ip, true
}

// LoopbackIP returns the device's loopback address entity.
func (d DeviceAccess) LoopbackIP() (AddressAccess, bool) {
	data := d.data()
	if data == nil || data.LoopbackIP == 0 {
		return AddressAccess{}, false
	}

	return d.topology.Address(data.LoopbackIP)
}

// Interfaces lists the device's logical interfaces in inventory order.
func (d DeviceAccess) Interfaces() []InterfaceAccess {
	data := d.data()
	if data == nil {
		return nil
	}

	result := make([]InterfaceAccess, 0, len(data.Interfaces))
	for _, id := range data.Interfaces {
		result = append(result, InterfaceAccess{topology: d.topology, id: id})
	}

	return result
}

// FrontPorts lists the device's front ports in inventory order.
func (d DeviceAccess) FrontPorts() []FrontPortAccess {
	data := d.data()
	if data == nil {
		return nil
	}

	result := make([]FrontPortAccess, 0, len(data.FrontPorts))
	for _, id := range data.FrontPorts {
		result = append(result, FrontPortAccess{topology: d.topology, id: id})
	}

	return result
}

// RearPorts lists the device's rear ports in inventory order.
func (d DeviceAccess) RearPorts() []RearPortAccess {
	data := d.data()
	if data == nil {
		return nil
	}

	result := make([]RearPortAccess, 0, len(data.RearPorts))
	for _, id := range data.RearPorts {
		result = append(result, RearPortAccess{topology: d.topology, id: id})
	}

	return result
}

// WlanControllerOf returns the WLAN group this device is the
// controller for.
func (d DeviceAccess) WlanControllerOf() (WlanGroupAccess, bool) {
	data := d.data()
	if data == nil || data.WlanControllerOf == 0 {
		return WlanGroupAccess{}, false
	}

	return WlanGroupAccess{topology: d.topology, id: data.WlanControllerOf}, true
}

// WlanAPOf returns the WLAN group this device broadcasts for.
func (d DeviceAccess) WlanAPOf() (WlanGroupAccess, bool) {
	data := d.data()
	if data == nil || data.WlanAPOf == 0 {
		return WlanGroupAccess{}, false
	}

	return WlanGroupAccess{topology: d.topology, id: data.WlanAPOf}, true
}

// Vlans lists the device's extra VLAN memberships, such as the AP
// management VLAN.
func (d DeviceAccess) Vlans() []VlanAccess {
	data := d.data()
	if data == nil {
		return nil
	}

	result := make([]VlanAccess, 0, len(data.ExtraVlans))
	for _, id := range data.ExtraVlans {
		result = append(result, VlanAccess{topology: d.topology, id: id})
	}

	return result
}

// Vxlans lists the distinct VXLANs backing the device's extra VLANs,
// ordered by id.
func (d DeviceAccess) Vxlans() []VxlanAccess {
	seen := make(map[VxlanID]bool)

	var result []VxlanAccess

	for _, vlan := range d.Vlans() {
		vxlan, ok := vlan.Vxlan()
		if !ok || seen[vxlan.ID()] {
			continue
		}

		seen[vxlan.ID()] = true

		result = append(result, vxlan)
	}

	return result
}
