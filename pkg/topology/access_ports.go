package topology

// FrontPortAccess is a handle onto one patch-panel front port.
type FrontPortAccess struct {
	topology *Topology
	id       FrontPortID
}

func (f FrontPortAccess) data() *FrontPort {
	return f.topology.frontPorts[f.id]
}

func (f FrontPortAccess) ID() FrontPortID {
	return f.id
}

func (f FrontPortAccess) Name() string {
	if data := f.data(); data != nil {
		return data.Name
	}

	return ""
}

func (f FrontPortAccess) Device() DeviceAccess {
	data := f.data()
	if data == nil {
		return DeviceAccess{}
	}

	return DeviceAccess{topology: f.topology, id: data.Device}
}

// RearPort returns the linked rear port of the passthrough pair.
func (f FrontPortAccess) RearPort() (RearPortAccess, bool) {
	data := f.data()
	if data == nil || data.RearPort == 0 {
		return RearPortAccess{}, false
	}

	return RearPortAccess{topology: f.topology, id: data.RearPort}, true
}

// Cable returns the cable attached to this front port.
func (f FrontPortAccess) Cable() (CableAccess, bool) {
	data := f.data()
	if data == nil || data.Cable == 0 {
		return CableAccess{}, false
	}

	return CableAccess{topology: f.topology, id: data.Cable}, true
}

// CablePort wraps the front port as a walkable port reference.
func (f FrontPortAccess) CablePort() PortAccess {
	return PortAccess{topology: f.topology, ref: FrontPortRef(f.id)}
}

// RearPortAccess is a handle onto one patch-panel rear port.
type RearPortAccess struct {
	topology *Topology
	id       RearPortID
}

func (r RearPortAccess) data() *RearPort {
	return r.topology.rearPorts[r.id]
}

func (r RearPortAccess) ID() RearPortID {
	return r.id
}

func (r RearPortAccess) Name() string {
	if data := r.data(); data != nil {
		return data.Name
	}

	return ""
}

func (r RearPortAccess) Device() DeviceAccess {
	data := r.data()
	if data == nil {
		return DeviceAccess{}
	}

	return DeviceAccess{topology: r.topology, id: data.Device}
}

// FrontPort returns the linked front port of the passthrough pair.
func (r RearPortAccess) FrontPort() (FrontPortAccess, bool) {
	data := r.data()
	if data == nil || data.FrontPort == 0 {
		return FrontPortAccess{}, false
	}

	return FrontPortAccess{topology: r.topology, id: data.FrontPort}, true
}

// Cable returns the cable attached to this rear port.
func (r RearPortAccess) Cable() (CableAccess, bool) {
	data := r.data()
	if data == nil || data.Cable == 0 {
		return CableAccess{}, false
	}

	return CableAccess{topology: r.topology, id: data.Cable}, true
}

// CablePort wraps the rear port as a walkable port reference.
func (r RearPortAccess) CablePort() PortAccess {
	return PortAccess{topology: r.topology, ref: RearPortRef(r.id)}
}

// PortAccess is the union handle over the three cable-attachable port
// kinds, used by the cable-path resolver.
type PortAccess struct {
	topology *Topology
	ref      PortRef
}

func (p PortAccess) Ref() PortRef {
	return p.ref
}

// Name returns the port's inventory name.
func (p PortAccess) Name() string {
	switch p.ref.Kind {
	case PortRefInterface:
		if iface, ok := p.Interface(); ok {
			return iface.Name()
		}
	case PortRefFront:
		if front, ok := p.Front(); ok {
			return front.Name()
		}
	case PortRefRear:
		if rear, ok := p.Rear(); ok {
			return rear.Name()
		}
	}

	return ""
}

// Device returns the device owning this port.
func (p PortAccess) Device() (DeviceAccess, bool) {
	switch p.ref.Kind {
	case PortRefInterface:
		if iface, ok := p.Interface(); ok {
			return iface.Device(), true
		}
	case PortRefFront:
		if front, ok := p.Front(); ok {
			return front.Device(), true
		}
	case PortRefRear:
		if rear, ok := p.Rear(); ok {
			return rear.Device(), true
		}
	}

	return DeviceAccess{}, false
}

// Interface unwraps the handle when it references an interface.
func (p PortAccess) Interface() (InterfaceAccess, bool) {
	if p.ref.Kind != PortRefInterface {
		return InterfaceAccess{}, false
	}

	return p.topology.Interface(InterfaceID(p.ref.ID))
}

// Front unwraps the handle when it references a front port.
func (p PortAccess) Front() (FrontPortAccess, bool) {
	if p.ref.Kind != PortRefFront {
		return FrontPortAccess{}, false
	}

	if _, ok := p.topology.frontPorts[FrontPortID(p.ref.ID)]; !ok {
		return FrontPortAccess{}, false
	}

	return FrontPortAccess{topology: p.topology, id: FrontPortID(p.ref.ID)}, true
}

// Rear unwraps the handle when it references a rear port.
func (p PortAccess) Rear() (RearPortAccess, bool) {
	if p.ref.Kind != PortRefRear {
		return RearPortAccess{}, false
	}

	if _, ok := p.topology.rearPorts[RearPortID(p.ref.ID)]; !ok {
		return RearPortAccess{}, false
	}

	return RearPortAccess{topology: p.topology, id: RearPortID(p.ref.ID)}, true
}

// Cable returns the cable attached to this port.
func (p PortAccess) Cable() (CableAccess, bool) {
	switch p.ref.Kind {
	case PortRefInterface:
		if iface, ok := p.Interface(); ok {
			return iface.Cable()
		}
	case PortRefFront:
		if front, ok := p.Front(); ok {
			return front.Cable()
		}
	case PortRefRear:
		if rear, ok := p.Rear(); ok {
			return rear.Cable()
		}
	}

	return CableAccess{}, false
}

// NextDevicePort crosses a passthrough pair: a front port continues at
// its linked rear port and vice versa. Interfaces are endpoints and
// never continue.
func (p PortAccess) NextDevicePort() (PortAccess, bool) {
	switch p.ref.Kind {
	case PortRefFront:
		front, ok := p.Front()
		if !ok {
			return PortAccess{}, false
		}

		rear, ok := front.RearPort()
		if !ok {
			return PortAccess{}, false
		}

		return rear.CablePort(), true
	case PortRefRear:
		rear, ok := p.Rear()
		if !ok {
			return PortAccess{}, false
		}

		front, ok := rear.FrontPort()
		if !ok {
			return PortAccess{}, false
		}

		return front.CablePort(), true
	default:
		return PortAccess{}, false
	}
}
