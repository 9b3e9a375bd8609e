package topology

import "net/netip"

// Entity ids are opaque integers scoped to their kind, taken verbatim
// from the inventory service. Zero means "not set".
type (
	DeviceID    int64
	InterfaceID int64
	FrontPortID int64
	RearPortID  int64
	CableID     int64
	VlanGroupID int64
	VlanID      int64
	WlanGroupID int64
	WlanID      int64
	VxlanID     int64
	PrefixID    int64
	RangeID     int64
	AddressID   int64
)

// ExternalPortKind identifies the hardware family of a physical port.
type ExternalPortKind uint8

const (
	ExternalPortEthernet ExternalPortKind = iota + 1
	ExternalPortSfpSfpPlus
	ExternalPortWifi
	ExternalPortWlan
	ExternalPortLoopback
)

// ExternalPort ties a logical interface to a physical port on the
// device hardware, by family and 1-based slot.
type ExternalPort struct {
	Kind ExternalPortKind
	Slot int
}

// Device is one managed or passive inventory device. Devices are
// created wholesale per refresh and never mutated in place.
type Device struct {
	ID                DeviceID
	Name              string
	Serial            string
	Model             string
	CredentialProfile string
	HasRouterOS       bool
	Interfaces        []InterfaceID
	FrontPorts        []FrontPortID
	RearPorts         []RearPortID
	PrimaryIP         AddressID
	LoopbackIP        AddressID
	WlanControllerOf  WlanGroupID
	WlanAPOf          WlanGroupID
	ExtraVlans        []VlanID
}

// Interface is a logical interface on a device.
type Interface struct {
	ID               InterfaceID
	Name             string
	Label            string
	Device           DeviceID
	External         *ExternalPort
	UntaggedVlan     VlanID
	TaggedVlans      []VlanID
	Addresses        []AddressID
	UseOSPF          bool
	EnableDHCPClient bool
	EnableDHCPServer bool
	EnablePoE        bool
	Bridge           InterfaceID
	Cable            CableID
}

// FrontPort is the faceplate side of a patch-panel passthrough.
type FrontPort struct {
	ID       FrontPortID
	Name     string
	Device   DeviceID
	RearPort RearPortID
	Cable    CableID
}

// RearPort is the back side of a patch-panel passthrough.
type RearPort struct {
	ID        RearPortID
	Name      string
	Device    DeviceID
	FrontPort FrontPortID
	Cable     CableID
}

// PortRefKind discriminates the union of cable-attachable port kinds.
type PortRefKind uint8

const (
	PortRefInterface PortRefKind = iota + 1
	PortRefFront
	PortRefRear
)

// PortRef identifies any port a cable termination can reference.
// It is comparable and usable as a map key.
type PortRef struct {
	Kind PortRefKind
	ID   int64
}

func InterfacePortRef(id InterfaceID) PortRef {
	return PortRef{Kind: PortRefInterface, ID: int64(id)}
}

func FrontPortRef(id FrontPortID) PortRef {
	return PortRef{Kind: PortRefFront, ID: int64(id)}
}

func RearPortRef(id RearPortID) PortRef {
	return PortRef{Kind: PortRefRear, ID: int64(id)}
}

// Cable connects two sets of ports. Each side may fan out to several
// terminations.
type Cable struct {
	ID    CableID
	PortA []PortRef
	PortB []PortRef
}

// VlanGroup scopes a set of VLANs.
type VlanGroup struct {
	ID    VlanGroupID
	Name  string
	Vlans []VlanID
}

// Vlan carries an optional inventory tag (zero means untagged in the
// inventory; synthesis assigns one later) and its terminations.
type Vlan struct {
	ID         VlanID
	Name       string
	Tag        uint16
	Group      VlanGroupID
	Interfaces []InterfaceID
	Wlans      []WlanID
	Vxlan      VxlanID
}

// WlanAuthMode selects the WLAN authentication scheme.
type WlanAuthMode uint8

const (
	WlanAuthWPAPersonal WlanAuthMode = iota + 1
	WlanAuthOpen
)

// WlanAuth holds the authentication settings of a WLAN.
type WlanAuth struct {
	Mode     WlanAuthMode
	Password string
	UseOWE   bool
}

// WlanGroup ties WLANs to the devices broadcasting them.
type WlanGroup struct {
	ID         WlanGroupID
	Name       string
	MgmtVlan   VlanID
	Wlans      []WlanID
	Controller DeviceID
	APs        []DeviceID
}

// Wlan is one SSID definition.
type Wlan struct {
	ID    WlanID
	SSID  string
	Group WlanGroupID
	Vlan  VlanID
	Auth  WlanAuth
}

// VxlanData backs VLANs with a VXLAN overlay.
type VxlanData struct {
	ID         VxlanID
	Name       string
	VNI        uint32
	Interfaces []InterfaceID
	Vlans      []VlanID
}

// IpPrefix is a node of the prefix tree. Parent is the tightest
// enclosing known prefix.
type IpPrefix struct {
	ID        PrefixID
	Net       netip.Prefix
	Parent    PrefixID
	Children  []PrefixID
	Ranges    []RangeID
	Addresses []AddressID
}

// IpRange is an inclusive address range inside one prefix.
type IpRange struct {
	ID     RangeID
	Start  netip.Addr
	End    netip.Addr
	Net    netip.Prefix
	Prefix PrefixID
	IsDHCP bool
}

// IpAddress is one configured address, optionally bound to an
// interface and to the prefix matching its network.
type IpAddress struct {
	ID        AddressID
	Address   netip.Prefix
	Interface InterfaceID
	Prefix    PrefixID
}
