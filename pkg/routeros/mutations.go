package routeros

import (
	"fmt"
	"net/netip"
	"sort"
)

// MutationOp is the verb of a single configuration change.
type MutationOp int

const (
	OpAdd MutationOp = iota + 1
	OpUpdate
	OpRemove
)

func (op MutationOp) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "set"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// RefKind names a dependency namespace between configuration entries.
type RefKind string

const (
	RefInterface     RefKind = "interface"
	RefPool          RefKind = "pool"
	RefOSPFInstance  RefKind = "ospf-instance"
	RefOSPFArea      RefKind = "ospf-area"
	RefRoutingTable  RefKind = "routing-table"
	RefFirewallChain RefKind = "firewall-chain"
)

// Reference identifies an entity a mutation provides or requires.
type Reference struct {
	Kind RefKind
	Name string
}

// Mutation is one change to a device resource. Key identifies the
// entry, empty for single resources like the identity. Set carries the
// fields to write; on an add it includes the key fields.
type Mutation struct {
	Op        MutationOp
	Path      string
	Key       map[string]string
	Set       map[string]string
	Provides  []Reference
	DependsOn []Reference
}

// DefaultProvidedReferences lists what a factory device satisfies
// before any mutation runs: the built-in loopback interface, the main
// routing table and the default firewall chains.
func DefaultProvidedReferences() []Reference {
	return []Reference{
		{Kind: RefInterface, Name: "lo"},
		{Kind: RefRoutingTable, Name: "main"},
		{Kind: RefFirewallChain, Name: "input"},
		{Kind: RefFirewallChain, Name: "forward"},
		{Kind: RefFirewallChain, Name: "output"},
	}
}

// familyDiff compares one resource family between current and target
// state. Entries present only in the target become adds, entries whose
// fields differ become updates carrying just the changed fields, and
// entries present only in the current state become removals unless the
// family is update only.
type familyDiff[K comparable, V any] struct {
	path       string
	updateOnly bool
	orderKeys  func([]K)
	key        func(K) map[string]string
	fields     func(*V) map[string]string
	provides   func(op MutationOp, key K, value *V) []Reference
	dependsOn  func(key K, value *V) []Reference
}

func (f familyDiff[K, V]) diff(current, target map[K]*V) []Mutation {
	var out []Mutation

	keys := make([]K, 0, len(target))
	for key := range target {
		keys = append(keys, key)
	}

	f.orderKeys(keys)

	for _, key := range keys {
		want := target[key]
		wantFields := f.fields(want)

		have, exists := current[key]
		if !exists {
			if f.updateOnly {
				continue
			}

			set := make(map[string]string, len(wantFields))
			for name, value := range f.key(key) {
				set[name] = value
			}
			for name, value := range wantFields {
				set[name] = value
			}

			out = append(out, Mutation{
				Op:        OpAdd,
				Path:      f.path,
				Key:       f.key(key),
				Set:       set,
				Provides:  f.refs(f.provides, OpAdd, key, want),
				DependsOn: f.deps(key, want),
			})

			continue
		}

		haveFields := f.fields(have)
		changed := make(map[string]string)

		for name, value := range wantFields {
			if haveFields[name] != value {
				changed[name] = value
			}
		}

		if len(changed) == 0 {
			continue
		}

		out = append(out, Mutation{
			Op:        OpUpdate,
			Path:      f.path,
			Key:       f.key(key),
			Set:       changed,
			Provides:  f.refs(f.provides, OpUpdate, key, want),
			DependsOn: f.deps(key, want),
		})
	}

	if f.updateOnly {
		return out
	}

	var stale []K

	for key := range current {
		if _, keep := target[key]; !keep {
			stale = append(stale, key)
		}
	}

	f.orderKeys(stale)

	for _, key := range stale {
		have := current[key]

		out = append(out, Mutation{
			Op:        OpRemove,
			Path:      f.path,
			Key:       f.key(key),
			Provides:  f.refs(f.provides, OpRemove, key, have),
			DependsOn: f.deps(key, have),
		})
	}

	return out
}

func (f familyDiff[K, V]) refs(fn func(MutationOp, K, *V) []Reference, op MutationOp, key K, value *V) []Reference {
	if fn == nil {
		return nil
	}

	return fn(op, key, value)
}

func (f familyDiff[K, V]) deps(key K, value *V) []Reference {
	if f.dependsOn == nil {
		return nil
	}

	return f.dependsOn(key, value)
}

func sortStrings(keys []string) {
	sort.Strings(keys)
}

func sortPrefixes(keys []netip.Prefix) {
	sort.Slice(keys, func(i, j int) bool {
		if c := keys[i].Addr().Compare(keys[j].Addr()); c != 0 {
			return c < 0
		}

		return keys[i].Bits() < keys[j].Bits()
	})
}

var ethernetFamily = familyDiff[string, EthernetPort]{
	path:       "interface/ethernet",
	updateOnly: true,
	orderKeys:  sortStrings,
	key: func(k string) map[string]string {
		return map[string]string{"default-name": k}
	},
	fields: (*EthernetPort).fields,
	provides: func(_ MutationOp, _ string, v *EthernetPort) []Reference {
		return []Reference{{Kind: RefInterface, Name: v.Name}}
	},
}

var bridgeFamily = familyDiff[string, Bridge]{
	path:      "interface/bridge",
	orderKeys: sortStrings,
	key: func(k string) map[string]string {
		return map[string]string{"name": k}
	},
	fields: (*Bridge).fields,
	provides: func(_ MutationOp, k string, _ *Bridge) []Reference {
		return []Reference{{Kind: RefInterface, Name: k}}
	},
}

var vlanFamily = familyDiff[string, VlanInterface]{
	path:      "interface/vlan",
	orderKeys: sortStrings,
	key: func(k string) map[string]string {
		return map[string]string{"name": k}
	},
	fields: (*VlanInterface).fields,
	provides: func(_ MutationOp, k string, _ *VlanInterface) []Reference {
		return []Reference{{Kind: RefInterface, Name: k}}
	},
	dependsOn: func(_ string, v *VlanInterface) []Reference {
		return []Reference{{Kind: RefInterface, Name: v.Interface}}
	},
}

var vxlanFamily = familyDiff[string, VXLANInterface]{
	path:      "interface/vxlan",
	orderKeys: sortStrings,
	key: func(k string) map[string]string {
		return map[string]string{"name": k}
	},
	fields: (*VXLANInterface).fields,
	provides: func(_ MutationOp, k string, _ *VXLANInterface) []Reference {
		return []Reference{{Kind: RefInterface, Name: k}}
	},
}

var bridgePortFamily = familyDiff[BridgePortKey, BridgePort]{
	path: "interface/bridge/port",
	orderKeys: func(keys []BridgePortKey) {
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Bridge != keys[j].Bridge {
				return keys[i].Bridge < keys[j].Bridge
			}

			return keys[i].Interface < keys[j].Interface
		})
	},
	key: func(k BridgePortKey) map[string]string {
		return map[string]string{"bridge": k.Bridge, "interface": k.Interface}
	},
	fields: (*BridgePort).fields,
	dependsOn: func(k BridgePortKey, _ *BridgePort) []Reference {
		return []Reference{
			{Kind: RefInterface, Name: k.Bridge},
			{Kind: RefInterface, Name: k.Interface},
		}
	},
}

var bridgeVlanFamily = familyDiff[BridgeVlanKey, BridgeVlan]{
	path: "interface/bridge/vlan",
	orderKeys: func(keys []BridgeVlanKey) {
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Bridge != keys[j].Bridge {
				return keys[i].Bridge < keys[j].Bridge
			}
			if keys[i].VlanIDs != keys[j].VlanIDs {
				return keys[i].VlanIDs < keys[j].VlanIDs
			}
			if keys[i].Tagged != keys[j].Tagged {
				return keys[i].Tagged < keys[j].Tagged
			}

			return keys[i].Untagged < keys[j].Untagged
		})
	},
	key: func(k BridgeVlanKey) map[string]string {
		key := map[string]string{"bridge": k.Bridge, "vlan-ids": k.VlanIDs}

		if k.Tagged != "" {
			key["tagged"] = k.Tagged
		}

		if k.Untagged != "" {
			key["untagged"] = k.Untagged
		}

		return key
	},
	fields: (*BridgeVlan).fields,
	dependsOn: func(_ BridgeVlanKey, v *BridgeVlan) []Reference {
		refs := []Reference{{Kind: RefInterface, Name: v.Bridge}}

		for _, name := range v.Tagged {
			refs = append(refs, Reference{Kind: RefInterface, Name: name})
		}

		for _, name := range v.Untagged {
			refs = append(refs, Reference{Kind: RefInterface, Name: name})
		}

		return refs
	},
}

var vtepFamily = familyDiff[VTEPKey, VTEP]{
	path: "interface/vxlan/vteps",
	orderKeys: func(keys []VTEPKey) {
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Interface != keys[j].Interface {
				return keys[i].Interface < keys[j].Interface
			}

			return keys[i].RemoteIP.Less(keys[j].RemoteIP)
		})
	},
	key: func(k VTEPKey) map[string]string {
		return map[string]string{"interface": k.Interface, "remote-ip": k.RemoteIP.String()}
	},
	fields: func(*VTEP) map[string]string {
		return nil
	},
	dependsOn: func(k VTEPKey, _ *VTEP) []Reference {
		return []Reference{{Kind: RefInterface, Name: k.Interface}}
	},
}

func addressFamily(path string) familyDiff[netip.Prefix, IPAddress] {
	return familyDiff[netip.Prefix, IPAddress]{
		path:      path,
		orderKeys: sortPrefixes,
		key: func(k netip.Prefix) map[string]string {
			return map[string]string{"address": k.String()}
		},
		fields: (*IPAddress).fields,
		dependsOn: func(_ netip.Prefix, v *IPAddress) []Reference {
			return []Reference{{Kind: RefInterface, Name: v.Interface}}
		},
	}
}

var dhcpClientFamily = familyDiff[string, DHCPClient]{
	path:      "ip/dhcp-client",
	orderKeys: sortStrings,
	key: func(k string) map[string]string {
		return map[string]string{"interface": k}
	},
	fields: func(*DHCPClient) map[string]string {
		return nil
	},
	dependsOn: func(k string, _ *DHCPClient) []Reference {
		return []Reference{{Kind: RefInterface, Name: k}}
	},
}

var poolFamily = familyDiff[string, AddressPool]{
	path:      "ip/pool",
	orderKeys: sortStrings,
	key: func(k string) map[string]string {
		return map[string]string{"name": k}
	},
	fields: (*AddressPool).fields,
	provides: func(_ MutationOp, k string, _ *AddressPool) []Reference {
		return []Reference{{Kind: RefPool, Name: k}}
	},
}

var dhcpServerFamily = familyDiff[string, DHCPServer]{
	path:      "ip/dhcp-server",
	orderKeys: sortStrings,
	key: func(k string) map[string]string {
		return map[string]string{"name": k}
	},
	fields: (*DHCPServer).fields,
	dependsOn: func(_ string, v *DHCPServer) []Reference {
		return []Reference{
			{Kind: RefInterface, Name: v.Interface},
			{Kind: RefPool, Name: v.Pool},
		}
	},
}

var dhcpNetworkFamily = familyDiff[netip.Prefix, DHCPNetwork]{
	path:      "ip/dhcp-server/network",
	orderKeys: sortPrefixes,
	key: func(k netip.Prefix) map[string]string {
		return map[string]string{"address": k.String()}
	},
	fields: (*DHCPNetwork).fields,
}

var ospfInstanceFamily = familyDiff[string, OSPFInstance]{
	path:      "routing/ospf/instance",
	orderKeys: sortStrings,
	key: func(k string) map[string]string {
		return map[string]string{"name": k}
	},
	fields: (*OSPFInstance).fields,
	provides: func(_ MutationOp, k string, _ *OSPFInstance) []Reference {
		return []Reference{{Kind: RefOSPFInstance, Name: k}}
	},
	dependsOn: func(string, *OSPFInstance) []Reference {
		return []Reference{{Kind: RefRoutingTable, Name: "main"}}
	},
}

var ospfAreaFamily = familyDiff[string, OSPFArea]{
	path:      "routing/ospf/area",
	orderKeys: sortStrings,
	key: func(k string) map[string]string {
		return map[string]string{"name": k}
	},
	fields: (*OSPFArea).fields,
	provides: func(_ MutationOp, k string, _ *OSPFArea) []Reference {
		return []Reference{{Kind: RefOSPFArea, Name: k}}
	},
	dependsOn: func(_ string, v *OSPFArea) []Reference {
		return []Reference{{Kind: RefOSPFInstance, Name: v.Instance}}
	},
}

// The interface list of a template is deliberately not declared as a
// dependency: templates may name interfaces the plan does not manage.
var ospfTemplateFamily = familyDiff[string, OSPFInterfaceTemplate]{
	path:      "routing/ospf/interface-template",
	orderKeys: sortStrings,
	key: func(k string) map[string]string {
		return map[string]string{"area": k}
	},
	fields: (*OSPFInterfaceTemplate).fields,
	dependsOn: func(k string, _ *OSPFInterfaceTemplate) []Reference {
		return []Reference{{Kind: RefOSPFArea, Name: k}}
	},
}

// DiffResources computes the unordered mutation set turning the current
// state into the target state. Ethernet entries and the identity are
// fixed hardware, updated but never added or removed.
func DiffResources(current, target *Resources) []Mutation {
	var out []Mutation

	if target.Identity.Name != current.Identity.Name {
		out = append(out, Mutation{
			Op:   OpUpdate,
			Path: "system/identity",
			Set:  map[string]string{"name": target.Identity.Name},
		})
	}

	out = append(out, ethernetFamily.diff(current.Ethernet, target.Ethernet)...)
	out = append(out, bridgeFamily.diff(current.Bridges, target.Bridges)...)
	out = append(out, vlanFamily.diff(current.Vlans, target.Vlans)...)
	out = append(out, vxlanFamily.diff(current.Vxlans, target.Vxlans)...)
	out = append(out, bridgePortFamily.diff(current.BridgePorts, target.BridgePorts)...)
	out = append(out, bridgeVlanFamily.diff(current.BridgeVlans, target.BridgeVlans)...)
	out = append(out, vtepFamily.diff(current.VTEPs, target.VTEPs)...)
	out = append(out, addressFamily("ip/address").diff(current.V4Addresses, target.V4Addresses)...)
	out = append(out, addressFamily("ipv6/address").diff(current.V6Addresses, target.V6Addresses)...)
	out = append(out, poolFamily.diff(current.Pools, target.Pools)...)
	out = append(out, dhcpClientFamily.diff(current.DHCPClients, target.DHCPClients)...)
	out = append(out, dhcpServerFamily.diff(current.DHCPServers, target.DHCPServers)...)
	out = append(out, dhcpNetworkFamily.diff(current.DHCPNetworks, target.DHCPNetworks)...)
	out = append(out, ospfInstanceFamily.diff(current.OSPFInstances, target.OSPFInstances)...)
	out = append(out, ospfAreaFamily.diff(current.OSPFAreas, target.OSPFAreas)...)
	out = append(out, ospfTemplateFamily.diff(current.OSPFTemplates, target.OSPFTemplates)...)

	return out
}

// GenerateMutations diffs the target against the device's current
// state.
func (t *Target) GenerateMutations(current *Resources) ([]Mutation, error) {
	return PlanMutations(current, t.res)
}

// PlanMutations diffs the target against the current state and orders
// the result so every reference is satisfied when its consumer runs.
// References already present on the device count as satisfied unless
// this very plan removes them.
func PlanMutations(current, target *Resources) ([]Mutation, error) {
	mutations := DiffResources(current, target)

	removed := make(map[Reference]struct{})

	for _, m := range mutations {
		if m.Op != OpRemove {
			continue
		}

		for _, ref := range m.Provides {
			removed[ref] = struct{}{}
		}
	}

	provided := DefaultProvidedReferences()

	for _, ref := range currentReferences(current) {
		if _, gone := removed[ref]; !gone {
			provided = append(provided, ref)
		}
	}

	return SortMutations(mutations, provided)
}

// currentReferences lists every reference the device's current state
// already satisfies.
func currentReferences(current *Resources) []Reference {
	var refs []Reference

	for _, port := range current.Ethernet {
		refs = append(refs, Reference{Kind: RefInterface, Name: port.Name})
	}

	for name := range current.Wireless {
		refs = append(refs, Reference{Kind: RefInterface, Name: name})
	}

	for name := range current.Bridges {
		refs = append(refs, Reference{Kind: RefInterface, Name: name})
	}

	for name := range current.Vlans {
		refs = append(refs, Reference{Kind: RefInterface, Name: name})
	}

	for name := range current.Vxlans {
		refs = append(refs, Reference{Kind: RefInterface, Name: name})
	}

	for name := range current.Pools {
		refs = append(refs, Reference{Kind: RefPool, Name: name})
	}

	for name := range current.OSPFInstances {
		refs = append(refs, Reference{Kind: RefOSPFInstance, Name: name})
	}

	for name := range current.OSPFAreas {
		refs = append(refs, Reference{Kind: RefOSPFArea, Name: name})
	}

	return refs
}

// SortMutations orders a mutation set for execution. Removals run
// first, consumers before the entries they reference; adds and updates
// follow, providers before consumers. The relative emission order of
// independent mutations is preserved.
func SortMutations(mutations []Mutation, provided []Reference) ([]Mutation, error) {
	var removals, changes []Mutation

	for _, m := range mutations {
		if m.Op == OpRemove {
			removals = append(removals, m)
		} else {
			changes = append(changes, m)
		}
	}

	ordered, err := orderRemovals(removals)
	if err != nil {
		return nil, err
	}

	placed, err := orderChanges(changes, provided)
	if err != nil {
		return nil, err
	}

	return append(ordered, placed...), nil
}

func orderRemovals(removals []Mutation) ([]Mutation, error) {
	pendingConsumers := make(map[Reference]int)

	for _, m := range removals {
		for _, ref := range m.DependsOn {
			pendingConsumers[ref]++
		}
	}

	ordered := make([]Mutation, 0, len(removals))
	placed := make([]bool, len(removals))

	for len(ordered) < len(removals) {
		progress := false

		for i, m := range removals {
			if placed[i] {
				continue
			}

			blocked := false

			for _, ref := range m.Provides {
				if pendingConsumers[ref] > 0 {
					blocked = true
					break
				}
			}

			if blocked {
				continue
			}

			placed[i] = true
			ordered = append(ordered, m)

			for _, ref := range m.DependsOn {
				pendingConsumers[ref]--
			}

			progress = true
		}

		if !progress {
			return nil, fmt.Errorf("%w: %d removals blocked", ErrMutationCycle, len(removals)-len(ordered))
		}
	}

	return ordered, nil
}

func orderChanges(changes []Mutation, provided []Reference) ([]Mutation, error) {
	satisfied := make(map[Reference]struct{}, len(provided))
	for _, ref := range provided {
		satisfied[ref] = struct{}{}
	}

	providers := make(map[Reference]int)

	for _, m := range changes {
		for _, ref := range m.Provides {
			providers[ref]++
		}
	}

	for _, m := range changes {
		for _, ref := range m.DependsOn {
			if _, ok := satisfied[ref]; ok {
				continue
			}

			if providers[ref] == 0 {
				return nil, fmt.Errorf("%w: %s %q", ErrUnresolvedReference, ref.Kind, ref.Name)
			}
		}
	}

	ordered := make([]Mutation, 0, len(changes))
	placed := make([]bool, len(changes))

	for len(ordered) < len(changes) {
		progress := false

		for i, m := range changes {
			if placed[i] {
				continue
			}

			ready := true

			for _, ref := range m.DependsOn {
				if _, ok := satisfied[ref]; !ok {
					ready = false
					break
				}
			}

			if !ready {
				continue
			}

			placed[i] = true
			ordered = append(ordered, m)

			for _, ref := range m.Provides {
				satisfied[ref] = struct{}{}
			}

			progress = true
		}

		if !progress {
			return nil, fmt.Errorf("%w: %d mutations blocked", ErrMutationCycle, len(changes)-len(ordered))
		}
	}

	return ordered, nil
}
