package routeros

import (
	"net/netip"
	"sort"
)

// AddrRange is a half-open address interval [Start, End).
type AddrRange struct {
	Start netip.Addr
	End   netip.Addr
}

// GapFinder accumulates reserved address intervals and computes the
// maximal free ranges left inside a bounding prefix. Reservations are
// stored as depth deltas on interval boundaries, so overlapping or
// duplicate reservations stay excluded without ever double-freeing.
type GapFinder struct {
	deltas map[netip.Addr]int
}

func NewGapFinder() *GapFinder {
	return &GapFinder{deltas: make(map[netip.Addr]int)}
}

// Reserve marks the inclusive range [start, end] as occupied, together
// with the address immediately below it.
func (f *GapFinder) Reserve(start, end netip.Addr) {
	lo := start.Prev()
	if !lo.IsValid() {
		lo = start
	}

	f.deltas[lo]++

	// An invalid successor means the reservation saturates at the top
	// of the address space and is never released.
	if hi := end.Next(); hi.IsValid() {
		f.deltas[hi]--
	}
}

// ReserveAddr reserves a single address.
func (f *GapFinder) ReserveAddr(addr netip.Addr) {
	f.Reserve(addr, addr)
}

// ReservePrefix reserves a whole subnet, network and broadcast
// addresses included.
func (f *GapFinder) ReservePrefix(prefix netip.Prefix) {
	f.Reserve(prefix.Masked().Addr(), lastAddr(prefix))
}

// FindGaps returns the free ranges within the prefix's usable span,
// ascending and pairwise disjoint. The span begins one past the network
// address and ends one short of the last address of the prefix.
func (f *GapFinder) FindGaps(window netip.Prefix) []AddrRange {
	start := window.Masked().Addr().Next()
	end := lastAddr(window).Prev()

	if !start.IsValid() || !end.IsValid() || !start.Less(end) {
		return nil
	}

	boundaries := make([]netip.Addr, 0, len(f.deltas))
	for addr := range f.deltas {
		boundaries = append(boundaries, addr)
	}

	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Less(boundaries[j]) })

	var gaps []AddrRange

	emit := func(lo, hi netip.Addr) {
		if lo.Less(start) {
			lo = start
		}

		if end.Less(hi) {
			hi = end
		}

		if lo.Less(hi) {
			gaps = append(gaps, AddrRange{Start: lo, End: hi})
		}
	}

	depth := 0
	segStart := start

	for _, b := range boundaries {
		if depth <= 0 {
			emit(segStart, b)
		}

		depth += f.deltas[b]
		segStart = b
	}

	if depth <= 0 {
		emit(segStart, end)
	}

	return gaps
}

// lastAddr is the highest address of a prefix, the broadcast address
// for IPv4.
func lastAddr(prefix netip.Prefix) netip.Addr {
	raw := prefix.Masked().Addr().AsSlice()

	host := len(raw)*8 - prefix.Bits()

	for i := len(raw) - 1; i >= 0 && host > 0; i-- {
		width := host
		if width > 8 {
			width = 8
		}

		raw[i] |= byte(0xff >> (8 - width))

		host -= width
	}

	addr, _ := netip.AddrFromSlice(raw)

	return addr
}
