package routeros

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gap(start, end string) AddrRange {
	return AddrRange{Start: netip.MustParseAddr(start), End: netip.MustParseAddr(end)}
}

func TestGapFinderFindGaps(t *testing.T) {
	window24 := netip.MustParsePrefix("172.16.1.0/24")
	window12 := netip.MustParsePrefix("172.16.0.0/12")

	tests := []struct {
		name    string
		window  netip.Prefix
		reserve func(*GapFinder)
		want    []AddrRange
	}{
		{
			name:    "no reservations",
			window:  window24,
			reserve: func(*GapFinder) {},
			want:    []AddrRange{gap("172.16.1.1", "172.16.1.254")},
		},
		{
			name:   "single address",
			window: window24,
			reserve: func(f *GapFinder) {
				f.ReserveAddr(netip.MustParseAddr("172.16.1.1"))
			},
			want: []AddrRange{gap("172.16.1.2", "172.16.1.254")},
		},
		{
			name:   "two addresses",
			window: window24,
			reserve: func(f *GapFinder) {
				f.ReserveAddr(netip.MustParseAddr("172.16.1.1"))
				f.ReserveAddr(netip.MustParseAddr("172.16.1.10"))
			},
			want: []AddrRange{
				gap("172.16.1.2", "172.16.1.9"),
				gap("172.16.1.11", "172.16.1.254"),
			},
		},
		{
			name:   "address inside reserved range",
			window: window24,
			reserve: func(f *GapFinder) {
				f.ReserveAddr(netip.MustParseAddr("172.16.1.1"))
				f.ReserveAddr(netip.MustParseAddr("172.16.1.15"))
				f.Reserve(netip.MustParseAddr("172.16.1.10"), netip.MustParseAddr("172.16.1.20"))
			},
			want: []AddrRange{
				gap("172.16.1.2", "172.16.1.9"),
				gap("172.16.1.21", "172.16.1.254"),
			},
		},
		{
			name:   "child subnet in wide window",
			window: window12,
			reserve: func(f *GapFinder) {
				f.ReserveAddr(netip.MustParseAddr("172.16.1.1"))
				f.ReserveAddr(netip.MustParseAddr("172.16.1.15"))
				f.Reserve(netip.MustParseAddr("172.16.1.10"), netip.MustParseAddr("172.16.1.20"))
				f.ReservePrefix(netip.MustParsePrefix("172.16.3.0/24"))
			},
			want: []AddrRange{
				gap("172.16.0.1", "172.16.1.0"),
				gap("172.16.1.2", "172.16.1.9"),
				gap("172.16.1.21", "172.16.2.255"),
				gap("172.16.4.0", "172.31.255.254"),
			},
		},
		{
			name:   "window fully reserved",
			window: window24,
			reserve: func(f *GapFinder) {
				f.ReservePrefix(netip.MustParsePrefix("172.16.1.0/24"))
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := NewGapFinder()
			tt.reserve(finder)

			assert.Equal(t, tt.want, finder.FindGaps(tt.window))
		})
	}
}

func TestGapFinderGapsAreOrderedAndDisjoint(t *testing.T) {
	finder := NewGapFinder()
	finder.Reserve(netip.MustParseAddr("172.16.1.40"), netip.MustParseAddr("172.16.1.50"))
	finder.ReserveAddr(netip.MustParseAddr("172.16.1.10"))
	finder.Reserve(netip.MustParseAddr("172.16.1.45"), netip.MustParseAddr("172.16.1.60"))
	finder.ReservePrefix(netip.MustParsePrefix("172.16.1.128/26"))

	gaps := finder.FindGaps(netip.MustParsePrefix("172.16.1.0/24"))
	require.NotEmpty(t, gaps)

	for i, g := range gaps {
		assert.True(t, g.Start.Less(g.End), "gap %d is empty", i)

		if i > 0 {
			assert.True(t, gaps[i-1].End.Less(g.Start) || gaps[i-1].End == g.Start,
				"gap %d overlaps its predecessor", i)
		}
	}

	for _, reserved := range []string{"172.16.1.10", "172.16.1.40", "172.16.1.55", "172.16.1.150"} {
		addr := netip.MustParseAddr(reserved)

		for _, g := range gaps {
			inside := !addr.Less(g.Start) && addr.Less(g.End)
			assert.False(t, inside, "reserved %s inside gap %s-%s", addr, g.Start, g.End)
		}
	}
}

func TestGapFinderIdempotentReservations(t *testing.T) {
	window := netip.MustParsePrefix("10.0.0.0/24")

	once := NewGapFinder()
	once.Reserve(netip.MustParseAddr("10.0.0.10"), netip.MustParseAddr("10.0.0.20"))
	once.ReserveAddr(netip.MustParseAddr("10.0.0.30"))

	twice := NewGapFinder()
	twice.Reserve(netip.MustParseAddr("10.0.0.10"), netip.MustParseAddr("10.0.0.20"))
	twice.Reserve(netip.MustParseAddr("10.0.0.10"), netip.MustParseAddr("10.0.0.20"))
	twice.ReserveAddr(netip.MustParseAddr("10.0.0.30"))
	twice.ReserveAddr(netip.MustParseAddr("10.0.0.30"))

	assert.Equal(t, once.FindGaps(window), twice.FindGaps(window))
}

func TestGapFinderInsertionOrderIndependent(t *testing.T) {
	window := netip.MustParsePrefix("10.0.0.0/24")

	forward := NewGapFinder()
	forward.ReserveAddr(netip.MustParseAddr("10.0.0.1"))
	forward.Reserve(netip.MustParseAddr("10.0.0.100"), netip.MustParseAddr("10.0.0.120"))
	forward.ReservePrefix(netip.MustParsePrefix("10.0.0.64/27"))

	backward := NewGapFinder()
	backward.ReservePrefix(netip.MustParsePrefix("10.0.0.64/27"))
	backward.Reserve(netip.MustParseAddr("10.0.0.100"), netip.MustParseAddr("10.0.0.120"))
	backward.ReserveAddr(netip.MustParseAddr("10.0.0.1"))

	assert.Equal(t, forward.FindGaps(window), backward.FindGaps(window))
}

func TestLastAddr(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"192.168.1.0/24", "192.168.1.255"},
		{"172.16.0.0/12", "172.31.255.255"},
		{"10.0.0.4/30", "10.0.0.7"},
		{"10.1.2.3/32", "10.1.2.3"},
		{"fd00::/64", "fd00::ffff:ffff:ffff:ffff"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, netip.MustParseAddr(tt.want), lastAddr(netip.MustParsePrefix(tt.prefix)))
		})
	}
}
