package netbox

// page is one page of a NetBox list endpoint. Next carries the
// absolute URL of the following page, or null on the last one.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// ref is the brief nested form NetBox uses for related objects.
// A JSON null leaves the id zero.
type ref struct {
	ID int64 `json:"id"`
}

// choice is the {value, label} form of NetBox choice fields.
type choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type apiTenant struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CustomFields struct {
		MikrotikCredentials string `json:"mikrotik_credentials"`
	} `json:"custom_fields"`
}

type apiSite struct {
	ID     int64 `json:"id"`
	Tenant ref   `json:"tenant"`
}

type apiLocation struct {
	ID     int64 `json:"id"`
	Tenant ref   `json:"tenant"`
}

type apiDevice struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Serial     string `json:"serial"`
	DeviceType struct {
		Model string `json:"model"`
	} `json:"device_type"`
	Platform struct {
		Slug string `json:"slug"`
	} `json:"platform"`
	Site         ref `json:"site"`
	Location     ref `json:"location"`
	Tenant       ref `json:"tenant"`
	PrimaryIP4   ref `json:"primary_ip4"`
	PrimaryIP6   ref `json:"primary_ip6"`
	CustomFields struct {
		WlanGroup int64 `json:"wlan_group"`
	} `json:"custom_fields"`
}

type apiInterface struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Label        string `json:"label"`
	Device       ref    `json:"device"`
	Type         choice `json:"type"`
	Bridge       ref    `json:"bridge"`
	UntaggedVlan ref    `json:"untagged_vlan"`
	TaggedVlans  []ref  `json:"tagged_vlans"`
	PoeMode      choice `json:"poe_mode"`
	CustomFields struct {
		UseOSPF          bool `json:"use_ospf"`
		EnableDHCPClient bool `json:"enable_dhcp_client"`
		EnableDHCPServer bool `json:"enable_dhcp_server"`
	} `json:"custom_fields"`
}

type apiFrontPort struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Device   ref    `json:"device"`
	RearPort ref    `json:"rear_port"`
}

type apiRearPort struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Device ref    `json:"device"`
}

// apiTermination is one cable termination. ObjectType discriminates
// the referenced model, e.g. "dcim.interface" or "dcim.frontport".
type apiTermination struct {
	ObjectType string `json:"object_type"`
	ObjectID   int64  `json:"object_id"`
}

type apiCable struct {
	ID            int64            `json:"id"`
	ATerminations []apiTermination `json:"a_terminations"`
	BTerminations []apiTermination `json:"b_terminations"`
}

type apiVlanGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type apiVlan struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	VID   int    `json:"vid"`
	Group ref    `json:"group"`
}

type apiWlanGroup struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CustomFields struct {
		Controller int64 `json:"controller"`
		MgmtVlan   int64 `json:"mgmt_vlan"`
	} `json:"custom_fields"`
}

type apiWlan struct {
	ID       int64  `json:"id"`
	SSID     string `json:"ssid"`
	Group    ref    `json:"group"`
	Vlan     ref    `json:"vlan"`
	AuthType choice `json:"auth_type"`
	AuthPSK  string `json:"auth_psk"`
}

type apiL2VPN struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Type       choice `json:"type"`
	Identifier int64  `json:"identifier"`
}

type apiL2VPNTermination struct {
	ID                 int64  `json:"id"`
	L2VPN              ref    `json:"l2vpn"`
	AssignedObjectType string `json:"assigned_object_type"`
	AssignedObjectID   int64  `json:"assigned_object_id"`
}

type apiPrefix struct {
	ID     int64  `json:"id"`
	Prefix string `json:"prefix"`
}

type apiIPRange struct {
	ID           int64  `json:"id"`
	StartAddress string `json:"start_address"`
	EndAddress   string `json:"end_address"`
	CustomFields struct {
		DHCPPool bool `json:"dhcp_pool"`
	} `json:"custom_fields"`
}

type apiIPAddress struct {
	ID                 int64  `json:"id"`
	Address            string `json:"address"`
	AssignedObjectType string `json:"assigned_object_type"`
	AssignedObjectID   int64  `json:"assigned_object_id"`
}

// inventory is the raw pull of every NetBox collection one snapshot is
// built from.
type inventory struct {
	tenants           []apiTenant
	sites             []apiSite
	locations         []apiLocation
	devices           []apiDevice
	interfaces        []apiInterface
	frontPorts        []apiFrontPort
	rearPorts         []apiRearPort
	cables            []apiCable
	vlanGroups        []apiVlanGroup
	vlans             []apiVlan
	wlanGroups        []apiWlanGroup
	wlans             []apiWlan
	l2vpns            []apiL2VPN
	l2vpnTerminations []apiL2VPNTermination
	prefixes          []apiPrefix
	ipRanges          []apiIPRange
	ipAddresses       []apiIPAddress
}
