package topology

import "net/netip"

// PrefixAccess is a handle onto one node of the prefix tree.
type PrefixAccess struct {
	topology *Topology
	id       PrefixID
}

func (p PrefixAccess) data() *IpPrefix {
	return p.topology.prefixes[p.id]
}

func (p PrefixAccess) ID() PrefixID {
	return p.id
}

// Net returns the prefix in masked canonical form.
func (p PrefixAccess) Net() netip.Prefix {
	if data := p.data(); data != nil {
		return data.Net
	}

	return netip.Prefix{}
}

// Parent returns the tightest enclosing known prefix.
func (p PrefixAccess) Parent() (PrefixAccess, bool) {
	data := p.data()
	if data == nil || data.Parent == 0 {
		return PrefixAccess{}, false
	}

	return p.topology.Prefix(data.Parent)
}

// Children lists the prefixes directly nested under this one, ordered
// by id.
func (p PrefixAccess) Children() []PrefixAccess {
	data := p.data()
	if data == nil {
		return nil
	}

	result := make([]PrefixAccess, 0, len(data.Children))

	for _, id := range data.Children {
		if child, ok := p.topology.Prefix(id); ok {
			result = append(result, child)
		}
	}

	return result
}

// Ranges lists the address ranges carved out of this prefix, ordered
// by id.
func (p PrefixAccess) Ranges() []RangeAccess {
	data := p.data()
	if data == nil {
		return nil
	}

	result := make([]RangeAccess, 0, len(data.Ranges))

	for _, id := range data.Ranges {
		if r, ok := p.topology.Range(id); ok {
			result = append(result, r)
		}
	}

	return result
}

// Addresses lists the addresses whose network matches this prefix,
// ordered by id.
func (p PrefixAccess) Addresses() []AddressAccess {
	data := p.data()
	if data == nil {
		return nil
	}

	result := make([]AddressAccess, 0, len(data.Addresses))

	for _, id := range data.Addresses {
		if addr, ok := p.topology.Address(id); ok {
			result = append(result, addr)
		}
	}

	return result
}

// RangeAccess is a handle onto one inclusive address range.
type RangeAccess struct {
	topology *Topology
	id       RangeID
}

func (r RangeAccess) data() *IpRange {
	return r.topology.ranges[r.id]
}

func (r RangeAccess) ID() RangeID {
	return r.id
}

func (r RangeAccess) Start() netip.Addr {
	if data := r.data(); data != nil {
		return data.Start
	}

	return netip.Addr{}
}

func (r RangeAccess) End() netip.Addr {
	if data := r.data(); data != nil {
		return data.End
	}

	return netip.Addr{}
}

// Net returns the network the range was declared in.
func (r RangeAccess) Net() netip.Prefix {
	if data := r.data(); data != nil {
		return data.Net
	}

	return netip.Prefix{}
}

// Prefix returns the prefix entity the range belongs to.
func (r RangeAccess) Prefix() (PrefixAccess, bool) {
	data := r.data()
	if data == nil || data.Prefix == 0 {
		return PrefixAccess{}, false
	}

	return r.topology.Prefix(data.Prefix)
}

// IsDHCP reports whether the range is reserved for DHCP leases.
func (r RangeAccess) IsDHCP() bool {
	if data := r.data(); data != nil {
		return data.IsDHCP
	}

	return false
}

// Contains reports whether addr falls inside the inclusive range.
func (r RangeAccess) Contains(addr netip.Addr) bool {
	data := r.data()
	if data == nil {
		return false
	}

	return data.Start.Compare(addr) <= 0 && addr.Compare(data.End) <= 0
}

// AddressAccess is a handle onto one configured address.
type AddressAccess struct {
	topology *Topology
	id       AddressID
}

func (a AddressAccess) data() *IpAddress {
	return a.topology.addresses[a.id]
}

func (a AddressAccess) ID() AddressID {
	return a.id
}

// Address returns the address with its configured mask length.
func (a AddressAccess) Address() netip.Prefix {
	if data := a.data(); data != nil {
		return data.Address
	}

	return netip.Prefix{}
}

// Addr returns the bare address without the mask.
func (a AddressAccess) Addr() netip.Addr {
	if data := a.data(); data != nil {
		return data.Address.Addr()
	}

	return netip.Addr{}
}

// Interface returns the interface the address is assigned to.
func (a AddressAccess) Interface() (InterfaceAccess, bool) {
	data := a.data()
	if data == nil || data.Interface == 0 {
		return InterfaceAccess{}, false
	}

	return a.topology.Interface(data.Interface)
}

// Prefix returns the prefix entity whose network matches this address.
func (a AddressAccess) Prefix() (PrefixAccess, bool) {
	data := a.data()
	if data == nil || data.Prefix == 0 {
		return PrefixAccess{}, false
	}

	return a.topology.Prefix(data.Prefix)
}
