package topology

import (
	"net/netip"
	"sort"
)

// VlanAccess is a handle onto one VLAN.
type VlanAccess struct {
	topology *Topology
	id       VlanID
}

func (v VlanAccess) data() *Vlan {
	return v.topology.vlans[v.id]
}

func (v VlanAccess) ID() VlanID {
	return v.id
}

func (v VlanAccess) Name() string {
	if data := v.data(); data != nil {
		return data.Name
	}

	return ""
}

// Tag returns the inventory-assigned 802.1Q tag, or ok=false when the
// inventory left the VLAN untagged.
func (v VlanAccess) Tag() (uint16, bool) {
	data := v.data()
	if data == nil || data.Tag == 0 {
		return 0, false
	}

	return data.Tag, true
}

// Group returns the VLAN group scoping this VLAN.
func (v VlanAccess) Group() (VlanGroupAccess, bool) {
	data := v.data()
	if data == nil || data.Group == 0 {
		return VlanGroupAccess{}, false
	}

	return v.topology.VlanGroup(data.Group)
}

// Interfaces lists the interfaces terminating this VLAN, tagged or
// untagged, ordered by id.
func (v VlanAccess) Interfaces() []InterfaceAccess {
	data := v.data()
	if data == nil {
		return nil
	}

	result := make([]InterfaceAccess, 0, len(data.Interfaces))

	for _, id := range data.Interfaces {
		if iface, ok := v.topology.Interface(id); ok {
			result = append(result, iface)
		}
	}

	return result
}

// Wlans lists the WLANs bridged into this VLAN, ordered by id.
func (v VlanAccess) Wlans() []WlanAccess {
	data := v.data()
	if data == nil {
		return nil
	}

	result := make([]WlanAccess, 0, len(data.Wlans))

	for _, id := range data.Wlans {
		if wlan, ok := v.topology.Wlan(id); ok {
			result = append(result, wlan)
		}
	}

	return result
}

// Vxlan returns the VXLAN overlay backing this VLAN.
func (v VlanAccess) Vxlan() (VxlanAccess, bool) {
	data := v.data()
	if data == nil || data.Vxlan == 0 {
		return VxlanAccess{}, false
	}

	return v.topology.Vxlan(data.Vxlan)
}

// VlanGroupAccess is a handle onto one VLAN group.
type VlanGroupAccess struct {
	topology *Topology
	id       VlanGroupID
}

func (g VlanGroupAccess) data() *VlanGroup {
	return g.topology.vlanGroups[g.id]
}

func (g VlanGroupAccess) ID() VlanGroupID {
	return g.id
}

func (g VlanGroupAccess) Name() string {
	if data := g.data(); data != nil {
		return data.Name
	}

	return ""
}

// Vlans lists the VLANs in this group, ordered by id.
func (g VlanGroupAccess) Vlans() []VlanAccess {
	data := g.data()
	if data == nil {
		return nil
	}

	result := make([]VlanAccess, 0, len(data.Vlans))

	for _, id := range data.Vlans {
		if vlan, ok := g.topology.Vlan(id); ok {
			result = append(result, vlan)
		}
	}

	return result
}

// WlanAccess is a handle onto one WLAN.
type WlanAccess struct {
	topology *Topology
	id       WlanID
}

func (w WlanAccess) data() *Wlan {
	return w.topology.wlans[w.id]
}

func (w WlanAccess) ID() WlanID {
	return w.id
}

func (w WlanAccess) SSID() string {
	if data := w.data(); data != nil {
		return data.SSID
	}

	return ""
}

// Group returns the WLAN group broadcasting this SSID.
func (w WlanAccess) Group() (WlanGroupAccess, bool) {
	data := w.data()
	if data == nil || data.Group == 0 {
		return WlanGroupAccess{}, false
	}

	return w.topology.WlanGroup(data.Group)
}

// Vlan returns the VLAN this SSID bridges into.
func (w WlanAccess) Vlan() (VlanAccess, bool) {
	data := w.data()
	if data == nil || data.Vlan == 0 {
		return VlanAccess{}, false
	}

	return w.topology.Vlan(data.Vlan)
}

func (w WlanAccess) Auth() WlanAuth {
	if data := w.data(); data != nil {
		return data.Auth
	}

	return WlanAuth{}
}

// WlanGroupAccess is a handle onto one WLAN group.
type WlanGroupAccess struct {
	topology *Topology
	id       WlanGroupID
}

func (g WlanGroupAccess) data() *WlanGroup {
	return g.topology.wlanGroups[g.id]
}

func (g WlanGroupAccess) ID() WlanGroupID {
	return g.id
}

func (g WlanGroupAccess) Name() string {
	if data := g.data(); data != nil {
		return data.Name
	}

	return ""
}

// MgmtVlan returns the VLAN carrying CAPsMAN management traffic
// between the controller and its access points.
func (g WlanGroupAccess) MgmtVlan() (VlanAccess, bool) {
	data := g.data()
	if data == nil || data.MgmtVlan == 0 {
		return VlanAccess{}, false
	}

	return g.topology.Vlan(data.MgmtVlan)
}

// Wlans lists the SSIDs of this group, ordered by id.
func (g WlanGroupAccess) Wlans() []WlanAccess {
	data := g.data()
	if data == nil {
		return nil
	}

	result := make([]WlanAccess, 0, len(data.Wlans))

	for _, id := range data.Wlans {
		if wlan, ok := g.topology.Wlan(id); ok {
			result = append(result, wlan)
		}
	}

	return result
}

// Controller returns the CAPsMAN controller managing this group.
func (g WlanGroupAccess) Controller() (DeviceAccess, bool) {
	data := g.data()
	if data == nil || data.Controller == 0 {
		return DeviceAccess{}, false
	}

	return g.topology.Device(data.Controller)
}

// APs lists the access points broadcasting this group, ordered by id.
func (g WlanGroupAccess) APs() []DeviceAccess {
	data := g.data()
	if data == nil {
		return nil
	}

	result := make([]DeviceAccess, 0, len(data.APs))

	for _, id := range data.APs {
		if device, ok := g.topology.Device(id); ok {
			result = append(result, device)
		}
	}

	return result
}

// VxlanAccess is a handle onto one VXLAN overlay.
type VxlanAccess struct {
	topology *Topology
	id       VxlanID
}

func (x VxlanAccess) data() *VxlanData {
	return x.topology.vxlans[x.id]
}

func (x VxlanAccess) ID() VxlanID {
	return x.id
}

func (x VxlanAccess) Name() string {
	if data := x.data(); data != nil {
		return data.Name
	}

	return ""
}

// VNI returns the VXLAN network identifier.
func (x VxlanAccess) VNI() uint32 {
	if data := x.data(); data != nil {
		return data.VNI
	}

	return 0
}

// Interfaces lists the interfaces terminating this overlay directly,
// ordered by id.
func (x VxlanAccess) Interfaces() []InterfaceAccess {
	data := x.data()
	if data == nil {
		return nil
	}

	result := make([]InterfaceAccess, 0, len(data.Interfaces))

	for _, id := range data.Interfaces {
		if iface, ok := x.topology.Interface(id); ok {
			result = append(result, iface)
		}
	}

	return result
}

// Vlans lists the VLANs backed by this overlay, ordered by id.
func (x VxlanAccess) Vlans() []VlanAccess {
	data := x.data()
	if data == nil {
		return nil
	}

	result := make([]VlanAccess, 0, len(data.Vlans))

	for _, id := range data.Vlans {
		if vlan, ok := x.topology.Vlan(id); ok {
			result = append(result, vlan)
		}
	}

	return result
}

// VTEPs lists the tunnel endpoint addresses of every device
// participating in the overlay: devices terminating it directly plus
// the access points and controllers of WLAN groups whose SSIDs bridge
// into an overlay-backed VLAN. Devices without a primary IPv4 are
// skipped. The result is sorted and free of duplicates.
func (x VxlanAccess) VTEPs() []netip.Addr {
	seen := make(map[netip.Addr]struct{})

	collect := func(device DeviceAccess) {
		if addr, ok := device.PrimaryIPv4(); ok {
			seen[addr] = struct{}{}
		}
	}

	for _, iface := range x.Interfaces() {
		collect(iface.Device())
	}

	for _, vlan := range x.Vlans() {
		for _, wlan := range vlan.Wlans() {
			group, ok := wlan.Group()
			if !ok {
				continue
			}

			for _, ap := range group.APs() {
				collect(ap)
			}

			if controller, ok := group.Controller(); ok {
				collect(controller)
			}
		}
	}

	addrs := make([]netip.Addr, 0, len(seen))
	for addr := range seen {
		addrs = append(addrs, addr)
	}

	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })

	return addrs
}
