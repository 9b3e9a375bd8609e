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

// CableAccess is a handle onto one cable.
type CableAccess struct {
	topology *Topology
	id       CableID
}

func (c CableAccess) data() *Cable {
	return c.topology.cables[c.id]
}

func (c CableAccess) ID() CableID {
	return c.id
}

// PortsA lists the terminations on the A side.
func (c CableAccess) PortsA() []PortAccess {
	data := c.data()
	if data == nil {
		return nil
	}

	return c.wrapPorts(data.PortA)
}

// PortsB lists the terminations on the B side.
func (c CableAccess) PortsB() []PortAccess {
	data := c.data()
	if data == nil {
		return nil
	}

	return c.wrapPorts(data.PortB)
}

func (c CableAccess) wrapPorts(refs []PortRef) []PortAccess {
	ports := make([]PortAccess, 0, len(refs))

	for _, ref := range refs {
		ports = append(ports, PortAccess{topology: c.topology, ref: ref})
	}

	return ports
}

// connectionsFrom resolves the far terminations reachable from near
// over this cable. A termination on side A connects to every
// termination on side B and vice versa, in termination order.
func (c CableAccess) connectionsFrom(near PortRef) []CableConnection {
	data := c.data()
	if data == nil {
		return nil
	}

	var conns []CableConnection

	appendFars := func(fars []PortRef) {
		for _, far := range fars {
			conns = append(conns, CableConnection{
				Near:  PortAccess{topology: c.topology, ref: near},
				Far:   PortAccess{topology: c.topology, ref: far},
				Cable: c,
			})
		}
	}

	if containsPortRef(data.PortA, near) {
		appendFars(data.PortB)
	}

	if containsPortRef(data.PortB, near) {
		appendFars(data.PortA)
	}

	return conns
}

func containsPortRef(refs []PortRef, want PortRef) bool {
	for _, ref := range refs {
		if ref == want {
			return true
		}
	}

	return false
}

// CableConnection is one hop of a cable path: the near termination the
// walk arrived on, the far termination it leaves through, and the
// cable joining them.
type CableConnection struct {
	Near  PortAccess
	Far   PortAccess
	Cable CableAccess
}

// CablePath is one fully resolved run of cable from a start port,
// crossing patch panels on front/rear pairs, up to a port the walk
// cannot continue past.
type CablePath struct {
	Start    PortAccess
	Segments []CableConnection

	// endPort is set when the walk stopped at a cable-less port
	// rather than at the far termination of the last segment.
	endPort *PortAccess
}

// FarPort returns the port the path ends at.
func (cp CablePath) FarPort() PortAccess {
	if cp.endPort != nil {
		return *cp.endPort
	}

	if n := len(cp.Segments); n > 0 {
		return cp.Segments[n-1].Far
	}

	return cp.Start
}

// cableWalkItem is one unit of pending walk work. With conn unset the
// item expands a port into its cable connections; with conn set it
// appends that segment and either crosses a passthrough or ends the
// path.
type cableWalkItem struct {
	port    PortAccess
	conn    *CableConnection
	chain   []CableConnection
	visited map[PortRef]struct{}
}

// WalkCable resolves every cable path leaving this port and calls
// visit once per path, depth first in termination order. Cabling that
// loops back onto a port the path already crossed aborts the walk with
// ErrCyclicCabling.
func (p PortAccess) WalkCable(visit func(CablePath)) error {
	stack := []cableWalkItem{{
		port:    p,
		visited: map[PortRef]struct{}{p.ref: {}},
	}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.conn != nil {
			conn := *item.conn

			next, ok := conn.Far.NextDevicePort()
			if !ok {
				visit(CablePath{Start: p, Segments: append(item.chain, conn)})
				continue
			}

			if _, seen := item.visited[next.ref]; seen {
				return ErrCyclicCabling
			}

			item.visited[next.ref] = struct{}{}

			stack = append(stack, cableWalkItem{
				port:    next,
				chain:   append(item.chain, conn),
				visited: item.visited,
			})

			continue
		}

		conns := item.port.cableConnections()
		if len(conns) == 0 {
			if item.port.ref != p.ref {
				end := item.port
				visit(CablePath{Start: p, Segments: item.chain, endPort: &end})
			}

			continue
		}

		// Branches are pushed in reverse so the stack pops them
		// in termination order. Each branch owns its own chain
		// and visited set.
		for idx := len(conns) - 1; idx >= 0; idx-- {
			conn := conns[idx]

			stack = append(stack, cableWalkItem{
				conn:    &conn,
				chain:   cloneSegments(item.chain),
				visited: cloneVisited(item.visited),
			})
		}
	}

	return nil
}

func (p PortAccess) cableConnections() []CableConnection {
	cable, ok := p.Cable()
	if !ok {
		return nil
	}

	return cable.connectionsFrom(p.ref)
}

// CollectCables resolves every cable path leaving this port.
func (p PortAccess) CollectCables() ([]CablePath, error) {
	var paths []CablePath

	err := p.WalkCable(func(path CablePath) {
		paths = append(paths, path)
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func cloneSegments(segments []CableConnection) []CableConnection {
	if segments == nil {
		return nil
	}

	return append([]CableConnection(nil), segments...)
}

func cloneVisited(visited map[PortRef]struct{}) map[PortRef]struct{} {
	clone := make(map[PortRef]struct{}, len(visited))

	for ref := range visited {
		clone[ref] = struct{}{}
	}

	return clone
}
