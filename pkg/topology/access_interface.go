package topology

import "strings"

// InterfaceAccess is a cheap (snapshot, id) handle onto one interface.
type InterfaceAccess struct {
	topology *Topology
	id       InterfaceID
}

func (i InterfaceAccess) data() *Interface {
	return i.topology.interfaces[i.id]
}

func (i InterfaceAccess) ID() InterfaceID {
	return i.id
}

func (i InterfaceAccess) Name() string {
	if data := i.data(); data != nil {
		return data.Name
	}

	return ""
}

// Label returns the inventory label, or ok=false when empty.
func (i InterfaceAccess) Label() (string, bool) {
	data := i.data()
	if data == nil || data.Label == "" {
		return "", false
	}

	return data.Label, true
}

func (i InterfaceAccess) Device() DeviceAccess {
	data := i.data()
	if data == nil {
		return DeviceAccess{}
	}

	return DeviceAccess{topology: i.topology, id: data.Device}
}

// External returns the physical port backing this interface.
func (i InterfaceAccess) External() (ExternalPort, bool) {
	data := i.data()
	if data == nil || data.External == nil {
		return ExternalPort{}, false
	}

	return *data.External, true
}

// IsEthernetPort reports whether the backing physical port is wired.
func (i InterfaceAccess) IsEthernetPort() bool {
	port, ok := i.External()
	return ok && port.IsEthernet()
}

func (i InterfaceAccess) UseOSPF() bool {
	if data := i.data(); data != nil {
		return data.UseOSPF
	}

	return false
}

func (i InterfaceAccess) EnableDHCPClient() bool {
	if data := i.data(); data != nil {
		return data.EnableDHCPClient
	}

	return false
}

func (i InterfaceAccess) EnableDHCPServer() bool {
	if data := i.data(); data != nil {
		return data.EnableDHCPServer
	}

	return false
}

func (i InterfaceAccess) EnablePoE() bool {
	if data := i.data(); data != nil {
		return data.EnablePoE
	}

	return false
}

// UntaggedVlan returns the access VLAN of this interface.
func (i InterfaceAccess) UntaggedVlan() (VlanAccess, bool) {
	data := i.data()
	if data == nil || data.UntaggedVlan == 0 {
		return VlanAccess{}, false
	}

	return i.topology.Vlan(data.UntaggedVlan)
}

// TaggedVlans lists the trunked VLANs of this interface.
func (i InterfaceAccess) TaggedVlans() []VlanAccess {
	data := i.data()
	if data == nil {
		return nil
	}

	result := make([]VlanAccess, 0, len(data.TaggedVlans))

	for _, id := range data.TaggedVlans {
		if vlan, ok := i.topology.Vlan(id); ok {
			result = append(result, vlan)
		}
	}

	return result
}

// Bridge returns the parent bridge interface when this interface is a
// bridge member.
func (i InterfaceAccess) Bridge() (InterfaceAccess, bool) {
	data := i.data()
	if data == nil || data.Bridge == 0 {
		return InterfaceAccess{}, false
	}

	return i.topology.Interface(data.Bridge)
}

// Addresses lists the IP addresses assigned to this interface.
func (i InterfaceAccess) Addresses() []AddressAccess {
	data := i.data()
	if data == nil {
		return nil
	}

	result := make([]AddressAccess, 0, len(data.Addresses))

	for _, id := range data.Addresses {
		if addr, ok := i.topology.Address(id); ok {
			result = append(result, addr)
		}
	}

	return result
}

// CablePort wraps the interface as a walkable port reference.
func (i InterfaceAccess) CablePort() PortAccess {
	return PortAccess{topology: i.topology, ref: InterfacePortRef(i.id)}
}

// Cable returns the cable attached to this interface.
func (i InterfaceAccess) Cable() (CableAccess, bool) {
	data := i.data()
	if data == nil || data.Cable == 0 {
		return CableAccess{}, false
	}

	return CableAccess{topology: i.topology, id: data.Cable}, true
}

// ConnectedInterfaces lists the far-end interfaces reachable from this
// interface across cables and passthroughs.
func (i InterfaceAccess) ConnectedInterfaces() ([]InterfaceAccess, error) {
	var result []InterfaceAccess

	err := i.CablePort().WalkCable(func(path CablePath) {
		far := path.FarPort()
		if far.Ref().Kind == PortRefInterface {
			if iface, ok := far.Interface(); ok {
				result = append(result, iface)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// InterfaceName derives the plane-facing name from the physical port's
// short name and the sanitized inventory label. There is no name
// without a physical port.
func (i InterfaceAccess) InterfaceName() (string, bool) {
	port, ok := i.External()
	if !ok {
		return "", false
	}

	label, ok := i.Label()
	if !ok {
		return port.ShortName(), true
	}

	var b strings.Builder

	b.WriteString(port.ShortName())
	b.WriteByte('-')

	for _, r := range label {
		switch {
		case r < 128 && (r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r == '-' || r == '.':
			b.WriteByte('-')
		case r == 'ä':
			b.WriteString("ae")
		case r == 'ö':
			b.WriteString("oe")
		case r == 'ü':
			b.WriteString("ue")
		}
	}

	return b.String(), true
}
