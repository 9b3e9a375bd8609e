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
	"strconv"
	"strings"
)

// ProtocolMode selects the spanning tree flavor of a bridge.
type ProtocolMode string

const (
	ProtocolRSTP ProtocolMode = "rstp"
	ProtocolMSTP ProtocolMode = "mstp"
)

// FrameTypes restricts which frames a bridge port admits.
type FrameTypes string

const (
	FrameTypesAll      FrameTypes = "admit-all"
	FrameTypesUntagged FrameTypes = "admit-only-untagged-and-priority-tagged"
	FrameTypesTagged   FrameTypes = "admit-only-vlan-tagged"
)

// Identity is the device name, a single resource without a key.
type Identity struct {
	Name string
}

// EthernetPort mirrors one interface/ethernet entry, keyed by its
// factory default name. HasPoE is a capability flag from the hardware
// facts, not a wire field.
type EthernetPort struct {
	DefaultName string
	Name        string
	Advertise   string
	L2MTU       int
	HasPoE      bool
	PoEOut      string
}

// WirelessPort mirrors one radio entry, keyed by its default name.
type WirelessPort struct {
	DefaultName string
	MTU         int
}

type Bridge struct {
	VlanFiltering bool
	Protocol      ProtocolMode
}

type BridgePortKey struct {
	Bridge    string
	Interface string
}

type BridgePort struct {
	IngressFiltering bool
	FrameTypes       FrameTypes
	PVID             uint16
}

// BridgeVlanKey is the canonical form of a bridge VLAN table entry:
// member lists sorted, deduplicated and comma joined. Any change to an
// entry therefore replaces it instead of updating it in place.
type BridgeVlanKey struct {
	Bridge   string
	Tagged   string
	Untagged string
	VlanIDs  string
}

type BridgeVlan struct {
	Bridge   string
	Tagged   []string
	Untagged []string
	VlanIDs  []VlanIDRange
}

// VlanIDRange is an inclusive VLAN tag range, a single tag when
// Start == End.
type VlanIDRange struct {
	Start uint16
	End   uint16
}

func (r VlanIDRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(int(r.Start))
	}

	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// ParseVlanIDRanges parses a comma separated vlan-ids list as a device
// prints it, single tags or inclusive ranges ("1,10-19").
func ParseVlanIDRanges(s string) ([]VlanIDRange, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]VlanIDRange, 0, len(parts))

	for _, part := range parts {
		first, last, isRange := strings.Cut(part, "-")

		start, err := parseVlanTag(first)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVlanIDs, part)
		}

		end := start

		if isRange {
			if end, err = parseVlanTag(last); err != nil || end < start {
				return nil, fmt.Errorf("%w: %q", ErrInvalidVlanIDs, part)
			}
		}

		ids = append(ids, VlanIDRange{Start: start, End: end})
	}

	return ids, nil
}

func parseVlanTag(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)

	return uint16(v), err
}

// VlanInterface is a tagged sub-interface on a bridge, keyed by name.
type VlanInterface struct {
	Interface string
	VlanID    uint16
}

// VXLANInterface is a tunnel interface, keyed by name.
type VXLANInterface struct {
	VNI uint32
}

type VTEPKey struct {
	Interface string
	RemoteIP  netip.Addr
}

// VTEP is a remote tunnel endpoint entry. All of its state lives in the
// key.
type VTEP struct{}

// IPAddress binds an address, keyed by its full prefix notation, to an
// interface.
type IPAddress struct {
	Interface string
}

// DHCPClient requests a dynamic address, keyed by interface name.
type DHCPClient struct{}

// AddressPool is a named list of lease ranges.
type AddressPool struct {
	Ranges []string
}

type DHCPServer struct {
	Interface string
	Pool      string
}

// DHCPNetwork carries the per-subnet lease options, keyed by the
// network prefix.
type DHCPNetwork struct {
	Gateway netip.Addr
}

type OSPFInstance struct {
	Version      int
	RouterID     netip.Addr
	Redistribute []string
}

type OSPFArea struct {
	Instance string
}

// OSPFInterfaceTemplate attaches interfaces to an area, keyed by the
// area name.
type OSPFInterfaceTemplate struct {
	Interfaces []string
	UseBFD     bool
}

// Resources is the complete modeled state of one device, either
// synthesized as a target or read back from the wire as current state.
type Resources struct {
	Identity      Identity
	Ethernet      map[string]*EthernetPort
	Wireless      map[string]*WirelessPort
	Bridges       map[string]*Bridge
	BridgePorts   map[BridgePortKey]*BridgePort
	BridgeVlans   map[BridgeVlanKey]*BridgeVlan
	Vlans         map[string]*VlanInterface
	Vxlans        map[string]*VXLANInterface
	VTEPs         map[VTEPKey]*VTEP
	V4Addresses   map[netip.Prefix]*IPAddress
	V6Addresses   map[netip.Prefix]*IPAddress
	DHCPClients   map[string]*DHCPClient
	Pools         map[string]*AddressPool
	DHCPServers   map[string]*DHCPServer
	DHCPNetworks  map[netip.Prefix]*DHCPNetwork
	OSPFInstances map[string]*OSPFInstance
	OSPFAreas     map[string]*OSPFArea
	OSPFTemplates map[string]*OSPFInterfaceTemplate
}

func NewResources() *Resources {
	return &Resources{
		Ethernet:      make(map[string]*EthernetPort),
		Wireless:      make(map[string]*WirelessPort),
		Bridges:       make(map[string]*Bridge),
		BridgePorts:   make(map[BridgePortKey]*BridgePort),
		BridgeVlans:   make(map[BridgeVlanKey]*BridgeVlan),
		Vlans:         make(map[string]*VlanInterface),
		Vxlans:        make(map[string]*VXLANInterface),
		VTEPs:         make(map[VTEPKey]*VTEP),
		V4Addresses:   make(map[netip.Prefix]*IPAddress),
		V6Addresses:   make(map[netip.Prefix]*IPAddress),
		DHCPClients:   make(map[string]*DHCPClient),
		Pools:         make(map[string]*AddressPool),
		DHCPServers:   make(map[string]*DHCPServer),
		DHCPNetworks:  make(map[netip.Prefix]*DHCPNetwork),
		OSPFInstances: make(map[string]*OSPFInstance),
		OSPFAreas:     make(map[string]*OSPFArea),
		OSPFTemplates: make(map[string]*OSPFInterfaceTemplate),
	}
}

func (r *Resources) ensureBridge(name string) *Bridge {
	bridge, ok := r.Bridges[name]
	if !ok {
		bridge = &Bridge{}
		r.Bridges[name] = bridge
	}

	return bridge
}

func (r *Resources) ensureBridgePort(bridge, iface string) *BridgePort {
	key := BridgePortKey{Bridge: bridge, Interface: iface}

	port, ok := r.BridgePorts[key]
	if !ok {
		port = &BridgePort{}
		r.BridgePorts[key] = port
	}

	return port
}

// NewBridgeVlanEntry canonicalizes one bridge VLAN table row into its
// key and value form: member lists sorted and deduplicated, ranges in
// stable order. Rows read back from a device go through this so they
// key identically to synthesized ones.
func NewBridgeVlanEntry(bridge string, tagged, untagged []string, ids []VlanIDRange) (BridgeVlanKey, *BridgeVlan) {
	tagged, taggedKey := canonicalNames(tagged)
	untagged, untaggedKey := canonicalNames(untagged)
	ids = canonicalRanges(ids)

	key := BridgeVlanKey{
		Bridge:   bridge,
		Tagged:   taggedKey,
		Untagged: untaggedKey,
		VlanIDs:  vlanIDsValue(ids),
	}

	return key, &BridgeVlan{Bridge: bridge, Tagged: tagged, Untagged: untagged, VlanIDs: ids}
}

func (r *Resources) ensureBridgeVlan(bridge string, tagged, untagged []string, ids []VlanIDRange) *BridgeVlan {
	key, value := NewBridgeVlanEntry(bridge, tagged, untagged, ids)

	vlan, ok := r.BridgeVlans[key]
	if !ok {
		vlan = value
		r.BridgeVlans[key] = vlan
	}

	return vlan
}

func (r *Resources) ensureVlanInterface(name string) *VlanInterface {
	vlan, ok := r.Vlans[name]
	if !ok {
		vlan = &VlanInterface{}
		r.Vlans[name] = vlan
	}

	return vlan
}

func (r *Resources) ensureVxlan(name string) *VXLANInterface {
	vxlan, ok := r.Vxlans[name]
	if !ok {
		vxlan = &VXLANInterface{}
		r.Vxlans[name] = vxlan
	}

	return vxlan
}

func (r *Resources) ensureVTEP(iface string, remote netip.Addr) {
	key := VTEPKey{Interface: iface, RemoteIP: remote}

	if _, ok := r.VTEPs[key]; !ok {
		r.VTEPs[key] = &VTEP{}
	}
}

func (r *Resources) ensureAddress(prefix netip.Prefix) *IPAddress {
	addresses := r.V4Addresses
	if prefix.Addr().Is6() {
		addresses = r.V6Addresses
	}

	addr, ok := addresses[prefix]
	if !ok {
		addr = &IPAddress{}
		addresses[prefix] = addr
	}

	return addr
}

func (r *Resources) ensureDHCPClient(iface string) {
	if _, ok := r.DHCPClients[iface]; !ok {
		r.DHCPClients[iface] = &DHCPClient{}
	}
}

func (r *Resources) ensurePool(name string) *AddressPool {
	pool, ok := r.Pools[name]
	if !ok {
		pool = &AddressPool{}
		r.Pools[name] = pool
	}

	return pool
}

func (r *Resources) ensureDHCPServer(name string) *DHCPServer {
	server, ok := r.DHCPServers[name]
	if !ok {
		server = &DHCPServer{}
		r.DHCPServers[name] = server
	}

	return server
}

func (r *Resources) ensureDHCPNetwork(prefix netip.Prefix) *DHCPNetwork {
	network, ok := r.DHCPNetworks[prefix]
	if !ok {
		network = &DHCPNetwork{}
		r.DHCPNetworks[prefix] = network
	}

	return network
}

func (r *Resources) ensureOSPFInstance(name string) *OSPFInstance {
	instance, ok := r.OSPFInstances[name]
	if !ok {
		instance = &OSPFInstance{}
		r.OSPFInstances[name] = instance
	}

	return instance
}

func (r *Resources) ensureOSPFArea(name string) *OSPFArea {
	area, ok := r.OSPFAreas[name]
	if !ok {
		area = &OSPFArea{}
		r.OSPFAreas[name] = area
	}

	return area
}

func (r *Resources) ensureOSPFTemplate(area string) *OSPFInterfaceTemplate {
	template, ok := r.OSPFTemplates[area]
	if !ok {
		template = &OSPFInterfaceTemplate{}
		r.OSPFTemplates[area] = template
	}

	return template
}

// Wire field encodings. Key fields are not repeated here; the mutation
// planner carries them separately.

func (i Identity) fields() map[string]string {
	return map[string]string{"name": i.Name}
}

func (e *EthernetPort) fields() map[string]string {
	fields := map[string]string{
		"name":      e.Name,
		"advertise": e.Advertise,
		"l2mtu":     strconv.Itoa(e.L2MTU),
	}

	if e.PoEOut != "" {
		fields["poe-out"] = e.PoEOut
	}

	return fields
}

func (b *Bridge) fields() map[string]string {
	return map[string]string{
		"vlan-filtering": yesNo(b.VlanFiltering),
		"protocol-mode":  string(b.Protocol),
	}
}

func (p *BridgePort) fields() map[string]string {
	fields := map[string]string{
		"ingress-filtering": yesNo(p.IngressFiltering),
		"frame-types":       string(p.FrameTypes),
	}

	if p.PVID != 0 {
		fields["pvid"] = strconv.Itoa(int(p.PVID))
	}

	return fields
}

func (v *BridgeVlan) fields() map[string]string {
	fields := map[string]string{
		"bridge":   v.Bridge,
		"vlan-ids": vlanIDsValue(v.VlanIDs),
	}

	if len(v.Tagged) > 0 {
		fields["tagged"] = strings.Join(v.Tagged, ",")
	}

	if len(v.Untagged) > 0 {
		fields["untagged"] = strings.Join(v.Untagged, ",")
	}

	return fields
}

func (v *VlanInterface) fields() map[string]string {
	return map[string]string{
		"interface": v.Interface,
		"vlan-id":   strconv.Itoa(int(v.VlanID)),
	}
}

func (x *VXLANInterface) fields() map[string]string {
	return map[string]string{"vni": strconv.FormatUint(uint64(x.VNI), 10)}
}

func (a *IPAddress) fields() map[string]string {
	return map[string]string{"interface": a.Interface}
}

func (p *AddressPool) fields() map[string]string {
	return map[string]string{"ranges": strings.Join(p.Ranges, ",")}
}

func (s *DHCPServer) fields() map[string]string {
	return map[string]string{
		"interface":    s.Interface,
		"address-pool": s.Pool,
	}
}

func (n *DHCPNetwork) fields() map[string]string {
	return map[string]string{"gateway": n.Gateway.String()}
}

func (o *OSPFInstance) fields() map[string]string {
	return map[string]string{
		"version":      strconv.Itoa(o.Version),
		"router-id":    o.RouterID.String(),
		"redistribute": strings.Join(o.Redistribute, ","),
	}
}

func (a *OSPFArea) fields() map[string]string {
	return map[string]string{"instance": a.Instance}
}

func (t *OSPFInterfaceTemplate) fields() map[string]string {
	return map[string]string{
		"interfaces": strings.Join(t.Interfaces, ","),
		"use-bfd":    yesNo(t.UseBFD),
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}

	return "no"
}

// canonicalNames sorts and deduplicates a member list and returns it
// with its comma joined key form.
func canonicalNames(names []string) ([]string, string) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var out []string

	for _, name := range sorted {
		if len(out) == 0 || out[len(out)-1] != name {
			out = append(out, name)
		}
	}

	return out, strings.Join(out, ",")
}

func canonicalRanges(ids []VlanIDRange) []VlanIDRange {
	sorted := append([]VlanIDRange(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}

		return sorted[i].End < sorted[j].End
	})

	var out []VlanIDRange

	for _, id := range sorted {
		if len(out) == 0 || out[len(out)-1] != id {
			out = append(out, id)
		}
	}

	return out
}

func vlanIDsValue(ids []VlanIDRange) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}

	return strings.Join(parts, ",")
}
