package routeros

import (
	"strings"

	"github.com/carverauto/netfabric/pkg/topology"
)

// NameGenerator chooses the logical name a forwarding plane uses for a
// physical port.
type NameGenerator interface {
	InterfaceName(iface topology.InterfaceAccess) string
}

// KeepNames keeps the inventory interface name unchanged.
type KeepNames struct{}

func (KeepNames) InterfaceName(iface topology.InterfaceAccess) string {
	return iface.Name()
}

// EndpointNames names a port after the cable's far end: the far device
// name plus the far port's short name. When the cable fans out to more
// than one device, or reaches no device at all, the port's own short
// name is used instead.
type EndpointNames struct{}

func (EndpointNames) InterfaceName(iface topology.InterfaceAccess) string {
	peers, err := iface.ConnectedInterfaces()
	if err != nil || len(peers) == 0 {
		return ownPortName(iface)
	}

	far := peers[0]
	farDevice := far.Device()

	for _, peer := range peers[1:] {
		if peer.Device().ID() != farDevice.ID() {
			return ownPortName(iface)
		}
	}

	port, ok := far.External()
	if !ok {
		return ownPortName(iface)
	}

	return farDevice.Name() + "-" + port.ShortName()
}

func ownPortName(iface topology.InterfaceAccess) string {
	if port, ok := iface.External(); ok {
		return port.ShortName()
	}

	return iface.Name()
}

// vxlanInterfaceName builds the overlay's interface name: "vxlan-" plus
// the inventory name with separator characters flattened, kebab-cased.
// Overlays without a name yield "".
func vxlanInterfaceName(name string) string {
	if name == "" {
		return ""
	}

	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '.', '/', '+', ':':
			return '_'
		default:
			return r
		}
	}, name)

	return kebabCase("vxlan-" + cleaned)
}

func kebabCase(s string) string {
	var b strings.Builder

	prevLower := false

	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			if prevLower {
				b.WriteByte('-')
			}

			b.WriteRune(r - 'A' + 'a')

			prevLower = false
		case r == '_' || r == ' ':
			b.WriteByte('-')

			prevLower = false
		default:
			b.WriteRune(r)

			prevLower = r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
		}
	}

	return b.String()
}
