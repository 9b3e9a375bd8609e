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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDirectLink is two routers joined by one cable.
func buildDirectLink(t *testing.T) *Topology {
	t.Helper()

	topo, err := NewBuilder().
		AddDevice(Device{ID: 1, Name: "r1"}).
		AddDevice(Device{ID: 2, Name: "r2"}).
		AddInterface(Interface{ID: 11, Name: "ether1", Device: 1}).
		AddInterface(Interface{ID: 21, Name: "ether1", Device: 2}).
		AddCable(Cable{ID: 100, PortA: []PortRef{InterfacePortRef(11)}, PortB: []PortRef{InterfacePortRef(21)}}).
		Build()
	require.NoError(t, err)

	return topo
}

// buildPatchedLink is two routers joined through a patch panel
// front/rear pair.
func buildPatchedLink(t *testing.T) *Topology {
	t.Helper()

	topo, err := NewBuilder().
		AddDevice(Device{ID: 1, Name: "r1"}).
		AddDevice(Device{ID: 2, Name: "panel"}).
		AddDevice(Device{ID: 3, Name: "r2"}).
		AddInterface(Interface{ID: 11, Name: "ether1", Device: 1}).
		AddInterface(Interface{ID: 31, Name: "ether1", Device: 3}).
		AddFrontPort(FrontPort{ID: 21, Name: "1", Device: 2, RearPort: 22}).
		AddRearPort(RearPort{ID: 22, Name: "1", Device: 2}).
		AddCable(Cable{ID: 101, PortA: []PortRef{InterfacePortRef(11)}, PortB: []PortRef{FrontPortRef(21)}}).
		AddCable(Cable{ID: 102, PortA: []PortRef{RearPortRef(22)}, PortB: []PortRef{InterfacePortRef(31)}}).
		Build()
	require.NoError(t, err)

	return topo
}

// buildFanOut is one router port cabled to two switch ports over a
// single cable with two far terminations.
func buildFanOut(t *testing.T) *Topology {
	t.Helper()

	topo, err := NewBuilder().
		AddDevice(Device{ID: 1, Name: "r1"}).
		AddDevice(Device{ID: 2, Name: "sw1"}).
		AddInterface(Interface{ID: 11, Name: "ether1", Device: 1}).
		AddInterface(Interface{ID: 21, Name: "ether1", Device: 2}).
		AddInterface(Interface{ID: 22, Name: "ether2", Device: 2}).
		AddCable(Cable{
			ID:    103,
			PortA: []PortRef{InterfacePortRef(11)},
			PortB: []PortRef{InterfacePortRef(21), InterfacePortRef(22)},
		}).
		Build()
	require.NoError(t, err)

	return topo
}

// buildCabledLoop wires two patch panels into a loop. Every port
// terminates exactly one cable; the loop closes through the shared
// far termination of the first cable.
func buildCabledLoop(t *testing.T) *Topology {
	t.Helper()

	topo, err := NewBuilder().
		AddDevice(Device{ID: 1, Name: "r1"}).
		AddDevice(Device{ID: 2, Name: "panel1"}).
		AddDevice(Device{ID: 3, Name: "panel2"}).
		AddInterface(Interface{ID: 11, Name: "ether1", Device: 1}).
		AddFrontPort(FrontPort{ID: 21, Name: "1", Device: 2, RearPort: 22}).
		AddRearPort(RearPort{ID: 22, Name: "1", Device: 2}).
		AddFrontPort(FrontPort{ID: 31, Name: "1", Device: 3, RearPort: 32}).
		AddRearPort(RearPort{ID: 32, Name: "1", Device: 3}).
		AddCable(Cable{
			ID:    201,
			PortA: []PortRef{InterfacePortRef(11), RearPortRef(32)},
			PortB: []PortRef{FrontPortRef(21)},
		}).
		AddCable(Cable{
			ID:    202,
			PortA: []PortRef{RearPortRef(22)},
			PortB: []PortRef{FrontPortRef(31)},
		}).
		Build()
	require.NoError(t, err)

	return topo
}

// buildDeadEnds has one cable into an unpaired front port and one into
// a paired front port whose rear side is left uncabled.
func buildDeadEnds(t *testing.T) *Topology {
	t.Helper()

	topo, err := NewBuilder().
		AddDevice(Device{ID: 1, Name: "r1"}).
		AddDevice(Device{ID: 2, Name: "panel"}).
		AddInterface(Interface{ID: 11, Name: "ether1", Device: 1}).
		AddInterface(Interface{ID: 12, Name: "ether2", Device: 1}).
		AddInterface(Interface{ID: 13, Name: "ether3", Device: 1}).
		AddFrontPort(FrontPort{ID: 21, Name: "1", Device: 2}).
		AddFrontPort(FrontPort{ID: 23, Name: "2", Device: 2, RearPort: 24}).
		AddRearPort(RearPort{ID: 24, Name: "2", Device: 2}).
		AddCable(Cable{ID: 301, PortA: []PortRef{InterfacePortRef(11)}, PortB: []PortRef{FrontPortRef(21)}}).
		AddCable(Cable{ID: 302, PortA: []PortRef{InterfacePortRef(12)}, PortB: []PortRef{FrontPortRef(23)}}).
		Build()
	require.NoError(t, err)

	return topo
}

func TestWalkCable(t *testing.T) {
	type wantPath struct {
		segments int
		far      PortRef
	}

	tests := []struct {
		name    string
		build   func(*testing.T) *Topology
		start   PortRef
		want    []wantPath
		wantErr error
	}{
		{
			name:  "direct link",
			build: buildDirectLink,
			start: InterfacePortRef(11),
			want:  []wantPath{{segments: 1, far: InterfacePortRef(21)}},
		},
		{
			name:  "direct link walked backwards",
			build: buildDirectLink,
			start: InterfacePortRef(21),
			want:  []wantPath{{segments: 1, far: InterfacePortRef(11)}},
		},
		{
			name:  "through patch panel",
			build: buildPatchedLink,
			start: InterfacePortRef(11),
			want:  []wantPath{{segments: 2, far: InterfacePortRef(31)}},
		},
		{
			name:  "through patch panel from far side",
			build: buildPatchedLink,
			start: InterfacePortRef(31),
			want:  []wantPath{{segments: 2, far: InterfacePortRef(11)}},
		},
		{
			name:  "fan out in termination order",
			build: buildFanOut,
			start: InterfacePortRef(11),
			want: []wantPath{
				{segments: 1, far: InterfacePortRef(21)},
				{segments: 1, far: InterfacePortRef(22)},
			},
		},
		{
			name:  "uncabled start has no paths",
			build: buildDeadEnds,
			start: InterfacePortRef(13),
			want:  nil,
		},
		{
			name:  "ends at unpaired front port",
			build: buildDeadEnds,
			start: InterfacePortRef(11),
			want:  []wantPath{{segments: 1, far: FrontPortRef(21)}},
		},
		{
			name:  "ends at uncabled rear port",
			build: buildDeadEnds,
			start: InterfacePortRef(12),
			want:  []wantPath{{segments: 1, far: RearPortRef(24)}},
		},
		{
			name:    "loop through panels",
			build:   buildCabledLoop,
			start:   InterfacePortRef(11),
			wantErr: ErrCyclicCabling,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo := tt.build(t)

			start, ok := topo.Port(tt.start)
			require.True(t, ok)

			paths, err := start.CollectCables()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, paths, len(tt.want))

			for i, want := range tt.want {
				assert.Equal(t, tt.start, paths[i].Start.Ref())
				assert.Len(t, paths[i].Segments, want.segments)
				assert.Equal(t, want.far, paths[i].FarPort().Ref())
			}
		})
	}
}

func TestWalkCableSegmentEndpoints(t *testing.T) {
	topo := buildPatchedLink(t)

	start, ok := topo.Port(InterfacePortRef(11))
	require.True(t, ok)

	paths, err := start.CollectCables()
	require.NoError(t, err)
	require.Len(t, paths, 1)

	segments := paths[0].Segments
	require.Len(t, segments, 2)

	assert.Equal(t, InterfacePortRef(11), segments[0].Near.Ref())
	assert.Equal(t, FrontPortRef(21), segments[0].Far.Ref())
	assert.Equal(t, CableID(101), segments[0].Cable.ID())

	assert.Equal(t, RearPortRef(22), segments[1].Near.Ref())
	assert.Equal(t, InterfacePortRef(31), segments[1].Far.Ref())
	assert.Equal(t, CableID(102), segments[1].Cable.ID())
}

func TestConnectedInterfaces(t *testing.T) {
	tests := []struct {
		name      string
		build     func(*testing.T) *Topology
		iface     InterfaceID
		wantPeers []InterfaceID
	}{
		{
			name:      "across patch panel",
			build:     buildPatchedLink,
			iface:     11,
			wantPeers: []InterfaceID{31},
		},
		{
			name:      "fan out reaches both",
			build:     buildFanOut,
			iface:     11,
			wantPeers: []InterfaceID{21, 22},
		},
		{
			name:      "dead end reaches nothing",
			build:     buildDeadEnds,
			iface:     11,
			wantPeers: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo := tt.build(t)

			iface, ok := topo.Interface(tt.iface)
			require.True(t, ok)

			peers, err := iface.ConnectedInterfaces()
			require.NoError(t, err)

			var ids []InterfaceID
			for _, peer := range peers {
				ids = append(ids, peer.ID())
			}

			assert.Equal(t, tt.wantPeers, ids)
		})
	}
}
