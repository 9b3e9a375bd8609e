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
	"sort"

	"github.com/carverauto/netfabric/pkg/topology"
)

// L2PortKind distinguishes how a member participates in a layer 2 plane.
type L2PortKind int

const (
	L2PortTagged L2PortKind = iota + 1
	L2PortUntagged
	L2PortVxlan
	L2PortCaps
	L2PortL3
)

// L2Port is one member of a layer 2 plane. Name and DefaultName are set
// for ethernet members, IP and IfName for layer 3 members. IfName stays
// empty when the address came from a physical port rather than a named
// virtual interface.
type L2Port struct {
	Kind        L2PortKind
	Name        string
	DefaultName string
	IP          netip.Prefix
	IfName      string
}

// L2Plane is one forwarding domain on a device: the members that share
// it, the inventory VLAN behind it if any, and the tag used on the local
// bridge. Planes whose VLAN carries no inventory tag get a synthetic tag
// unique within the device, starting at 60000.
type L2Plane struct {
	Ports  []L2Port
	Vlan   *topology.VlanAccess
	VlanID uint16
}

// IPs lists the layer 3 member addresses of the plane.
func (p L2Plane) IPs() []netip.Prefix {
	var ips []netip.Prefix

	for _, port := range p.Ports {
		if port.Kind == L2PortL3 {
			ips = append(ips, port.IP)
		}
	}

	return ips
}

// L2Setup is the complete layer 2 plan for one device. Planes are
// ordered by VLAN with untagged traffic first, ties broken by the
// representative bridge interface.
type L2Setup struct {
	Planes []L2Plane
}

type planeKey struct {
	bridge topology.InterfaceID
	vlan   topology.VlanID
}

// NewL2Setup partitions the device's interfaces into forwarding planes
// keyed by (bridge, VLAN). An interface without a parent bridge
// represents its own domain. The loopback interface never joins a
// plane; its address is wired separately.
func NewL2Setup(device topology.DeviceAccess, naming NameGenerator) L2Setup {
	planes := make(map[planeKey][]L2Port)
	vlans := make(map[topology.VlanID]topology.VlanAccess)

	for _, iface := range device.Interfaces() {
		if isLoopback(iface) {
			continue
		}

		bridge := iface.ID()
		if parent, ok := iface.Bridge(); ok {
			bridge = parent.ID()
		}

		tagged := iface.TaggedVlans()

		if port, ok := iface.External(); ok && port.IsEthernet() {
			name := naming.InterfaceName(iface)
			defaultName := port.DefaultName()
			vlanAdded := false

			for _, vlan := range tagged {
				key := planeKey{bridge: bridge, vlan: vlan.ID()}
				planes[key] = append(planes[key], L2Port{Kind: L2PortTagged, Name: name, DefaultName: defaultName})
				vlans[vlan.ID()] = vlan
				vlanAdded = true
			}

			if vlan, ok := iface.UntaggedVlan(); ok {
				key := planeKey{bridge: bridge, vlan: vlan.ID()}
				planes[key] = append(planes[key], L2Port{Kind: L2PortUntagged, Name: name, DefaultName: defaultName})
				vlans[vlan.ID()] = vlan
				vlanAdded = true
			}

			if !vlanAdded {
				key := planeKey{bridge: bridge}
				planes[key] = append(planes[key], L2Port{Kind: L2PortUntagged, Name: name, DefaultName: defaultName})
			}
		}

		if len(tagged) > 0 {
			continue
		}

		addrs := iface.Addresses()
		if len(addrs) == 0 {
			continue
		}

		key := planeKey{bridge: bridge}
		if vlan, ok := iface.UntaggedVlan(); ok {
			key.vlan = vlan.ID()
			vlans[vlan.ID()] = vlan
		}

		ifName := ""
		if _, ok := iface.External(); !ok {
			ifName = iface.Name()
		}

		for _, addr := range addrs {
			planes[key] = append(planes[key], L2Port{Kind: L2PortL3, IP: addr.Address(), IfName: ifName})
		}
	}

	keys := make([]planeKey, 0, len(planes))
	for key := range planes {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].vlan != keys[j].vlan {
			return keys[i].vlan < keys[j].vlan
		}

		return keys[i].bridge < keys[j].bridge
	})

	used := make(map[uint16]struct{})

	for _, key := range keys {
		if vlan, ok := vlans[key.vlan]; ok {
			if tag, ok := vlan.Tag(); ok {
				used[tag] = struct{}{}
			}
		}
	}

	setup := L2Setup{Planes: make([]L2Plane, 0, len(keys))}

	for _, key := range keys {
		plane := L2Plane{Ports: planes[key]}

		if vlan, ok := vlans[key.vlan]; ok {
			v := vlan
			plane.Vlan = &v

			if tag, ok := vlan.Tag(); ok {
				plane.VlanID = tag
			}
		}

		if plane.VlanID == 0 {
			candidate := uint16(60000)
			for {
				if _, taken := used[candidate]; !taken {
					break
				}
				candidate++
			}

			used[candidate] = struct{}{}
			plane.VlanID = candidate
		}

		setup.Planes = append(setup.Planes, plane)
	}

	return setup
}

func isLoopback(iface topology.InterfaceAccess) bool {
	if port, ok := iface.External(); ok && port.Kind == topology.ExternalPortLoopback {
		return true
	}

	return iface.Name() == "lo"
}
