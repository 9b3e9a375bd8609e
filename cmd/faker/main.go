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

// cmd/faker serves a fake NetBox REST API populated with a generated
// branch-office inventory, so netfabric can be developed and demoed
// without a real NetBox instance.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultListenAddress = ":8002"
	defaultToken         = "netfabric-dev"
	defaultSites         = 3
	defaultPageSize      = 50

	// Site numbers become IP octets, so the count is capped.
	maxSites = 200

	readTimeout  = 10 * time.Second
	writeTimeout = 30 * time.Second
	idleTimeout  = 60 * time.Second
)

// List endpoint paths, matching the NetBox v4 REST API.
const (
	tenantsPath           = "/api/tenancy/tenants/"
	sitesPath             = "/api/dcim/sites/"
	locationsPath         = "/api/dcim/locations/"
	devicesPath           = "/api/dcim/devices/"
	interfacesPath        = "/api/dcim/interfaces/"
	frontPortsPath        = "/api/dcim/front-ports/"
	rearPortsPath         = "/api/dcim/rear-ports/"
	cablesPath            = "/api/dcim/cables/"
	vlanGroupsPath        = "/api/ipam/vlan-groups/"
	vlansPath             = "/api/ipam/vlans/"
	prefixesPath          = "/api/ipam/prefixes/"
	ipRangesPath          = "/api/ipam/ip-ranges/"
	ipAddressesPath       = "/api/ipam/ip-addresses/"
	wlanGroupsPath        = "/api/wireless/wireless-lan-groups/"
	wlansPath             = "/api/wireless/wireless-lans/"
	l2vpnsPath            = "/api/vpn/l2vpns/"
	l2vpnTerminationsPath = "/api/vpn/l2vpn-terminations/"
)

const (
	objectTypeInterface = "dcim.interface"
	objectTypeFrontPort = "dcim.frontport"
	objectTypeRearPort  = "dcim.rearport"
	objectTypeVlan      = "ipam.vlan"
)

// Entity ids are laid out per site: site N owns the range N*1000 to
// N*1000+999 across every collection.
const (
	siteIDStride = 1000

	overlayL2VPNID = 9001
	overlayVNI     = 4210
)

// Config holds the faker settings, populated from flags.
type Config struct {
	ListenAddress string
	Token         string
	Sites         int
	PageSize      int
}

func (c *Config) applyDefaults() {
	if c.ListenAddress == "" {
		c.ListenAddress = defaultListenAddress
	}

	if c.Token == "" {
		c.Token = defaultToken
	}

	if c.Sites <= 0 {
		c.Sites = defaultSites
	}

	if c.Sites > maxSites {
		c.Sites = maxSites
	}

	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
}

// Wire types mirror the NetBox response shapes netfabric consumes.
// Only the fields the netfabric client reads are populated.

// page is the NetBox list envelope.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// ref is the brief nested form of a related object.
type ref struct {
	ID int64 `json:"id"`
}

// choice is the {value, label} form of NetBox choice fields.
type choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type platform struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type deviceType struct {
	Model string `json:"model"`
}

type tenantFields struct {
	MikrotikCredentials string `json:"mikrotik_credentials"`
}

type tenant struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	CustomFields tenantFields `json:"custom_fields"`
}

type site struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Tenant *ref   `json:"tenant"`
}

type location struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Tenant *ref   `json:"tenant"`
}

type deviceFields struct {
	WlanGroup int64 `json:"wlan_group,omitempty"`
}

type device struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Serial       string       `json:"serial"`
	DeviceType   deviceType   `json:"device_type"`
	Platform     *platform    `json:"platform"`
	Site         *ref         `json:"site"`
	Location     *ref         `json:"location"`
	Tenant       *ref         `json:"tenant"`
	PrimaryIP4   *ref         `json:"primary_ip4"`
	PrimaryIP6   *ref         `json:"primary_ip6"`
	CustomFields deviceFields `json:"custom_fields"`
}

type interfaceFields struct {
	UseOSPF          bool `json:"use_ospf"`
	EnableDHCPClient bool `json:"enable_dhcp_client"`
	EnableDHCPServer bool `json:"enable_dhcp_server"`
}

type deviceInterface struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Label        string          `json:"label"`
	Device       ref             `json:"device"`
	Type         choice          `json:"type"`
	Bridge       *ref            `json:"bridge"`
	UntaggedVlan *ref            `json:"untagged_vlan"`
	TaggedVlans  []ref           `json:"tagged_vlans"`
	PoeMode      *choice         `json:"poe_mode"`
	CustomFields interfaceFields `json:"custom_fields"`
}

type frontPort struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Device   ref    `json:"device"`
	RearPort ref    `json:"rear_port"`
}

type rearPort struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Device ref    `json:"device"`
}

type cableTermination struct {
	ObjectType string `json:"object_type"`
	ObjectID   int64  `json:"object_id"`
}

type cable struct {
	ID            int64              `json:"id"`
	ATerminations []cableTermination `json:"a_terminations"`
	BTerminations []cableTermination `json:"b_terminations"`
}

type vlanGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type vlan struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	VID   int    `json:"vid"`
	Group *ref   `json:"group"`
}

type wlanGroupFields struct {
	Controller int64 `json:"controller,omitempty"`
	MgmtVlan   int64 `json:"mgmt_vlan,omitempty"`
}

type wlanGroup struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	CustomFields wlanGroupFields `json:"custom_fields"`
}

type wlan struct {
	ID       int64  `json:"id"`
	SSID     string `json:"ssid"`
	Group    *ref   `json:"group"`
	Vlan     *ref   `json:"vlan"`
	AuthType choice `json:"auth_type"`
	AuthPSK  string `json:"auth_psk"`
}

type l2vpn struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Type       choice `json:"type"`
	Identifier int64  `json:"identifier"`
}

type l2vpnTermination struct {
	ID                 int64  `json:"id"`
	L2VPN              ref    `json:"l2vpn"`
	AssignedObjectType string `json:"assigned_object_type"`
	AssignedObjectID   int64  `json:"assigned_object_id"`
}

type prefix struct {
	ID     int64  `json:"id"`
	Prefix string `json:"prefix"`
}

type ipRangeFields struct {
	DHCPPool bool `json:"dhcp_pool"`
}

type ipRange struct {
	ID           int64         `json:"id"`
	StartAddress string        `json:"start_address"`
	EndAddress   string        `json:"end_address"`
	CustomFields ipRangeFields `json:"custom_fields"`
}

type ipAddress struct {
	ID                 int64  `json:"id"`
	Address            string `json:"address"`
	AssignedObjectType string `json:"assigned_object_type"`
	AssignedObjectID   int64  `json:"assigned_object_id"`
}

// inventory is the complete generated dataset, one slice per list
// endpoint.
type inventory struct {
	tenants           []tenant
	sites             []site
	locations         []location
	devices           []device
	interfaces        []deviceInterface
	frontPorts        []frontPort
	rearPorts         []rearPort
	cables            []cable
	vlanGroups        []vlanGroup
	vlans             []vlan
	wlanGroups        []wlanGroup
	wlans             []wlan
	l2vpns            []l2vpn
	l2vpnTerminations []l2vpnTermination
	prefixes          []prefix
	ipRanges          []ipRange
	ipAddresses       []ipAddress
}

//nolint:gochecknoglobals // fixed choice values shared by every generated row
var (
	platformRouterOS = platform{Slug: "routeros", Name: "MikroTik RouterOS"}
	typeEthernet     = choice{Value: "1000base-t", Label: "1000BASE-T (1GE)"}
	typeVirtual      = choice{Value: "virtual", Label: "Virtual"}
	typeVxlan        = choice{Value: "vxlan", Label: "VXLAN"}
	authWPAPersonal  = choice{Value: "wpa-personal", Label: "WPA Personal"}
	authOpen         = choice{Value: "open", Label: "Open"}
)

func refTo(id int64) *ref {
	return &ref{ID: id}
}

// generateInventory builds a deterministic lab inventory: one tenant
// holding the credential profile, N branch sites with a gateway, an
// access switch, a wireless AP and a patch panel each, and a VXLAN
// overlay stretching the users VLAN across branches. Ids are stable
// across runs so scripts and demos can hardcode them.
func generateInventory(sites int) *inventory {
	inv := &inventory{}

	inv.tenants = append(inv.tenants, tenant{
		ID:           1,
		Name:         "network-ops",
		CustomFields: tenantFields{MikrotikCredentials: "lab-admin"},
	})

	inv.l2vpns = append(inv.l2vpns, l2vpn{
		ID:         overlayL2VPNID,
		Name:       "lab-overlay",
		Type:       typeVxlan,
		Identifier: overlayVNI,
	})

	for s := 1; s <= sites; s++ {
		inv.addBranch(s)
	}

	return inv
}

// addBranch appends one branch site. The wiring runs the gateway trunk
// through the patch panel and hangs the AP off a switch access port:
//
//	gw ether2 -- pp front1 | rear1 -- sw ether1
//	sw ether2 -- ap ether1
func (inv *inventory) addBranch(s int) {
	base := int64(s) * siteIDStride

	gwID := base + 1
	swID := base + 2
	apID := base + 3
	ppID := base + 4

	mgmtVlan := base + 61
	usersVlan := base + 62
	guestVlan := base + 63
	wifiGroup := base + 70

	inv.sites = append(inv.sites, site{
		ID:     int64(s),
		Name:   fmt.Sprintf("branch%d", s),
		Tenant: refTo(1),
	})

	inv.devices = append(inv.devices,
		device{
			ID:         gwID,
			Name:       fmt.Sprintf("gw%d", s),
			Serial:     fmt.Sprintf("HEX%05d", gwID),
			DeviceType: deviceType{Model: "RB750Gr3"},
			Platform:   &platformRouterOS,
			Site:       refTo(int64(s)),
			PrimaryIP4: refTo(base + 91),
		},
		device{
			ID:         swID,
			Name:       fmt.Sprintf("sw%d", s),
			Serial:     fmt.Sprintf("HEX%05d", swID),
			DeviceType: deviceType{Model: "CRS318-16P-2S+"},
			Platform:   &platformRouterOS,
			Site:       refTo(int64(s)),
			PrimaryIP4: refTo(base + 92),
		},
		device{
			ID:           apID,
			Name:         fmt.Sprintf("ap%d", s),
			Serial:       fmt.Sprintf("HEX%05d", apID),
			DeviceType:   deviceType{Model: "C52iG-5HaxD2HaxD"},
			Platform:     &platformRouterOS,
			Site:         refTo(int64(s)),
			PrimaryIP4:   refTo(base + 93),
			CustomFields: deviceFields{WlanGroup: wifiGroup},
		},
		device{
			ID:         ppID,
			Name:       fmt.Sprintf("pp%d", s),
			Serial:     fmt.Sprintf("HEX%05d", ppID),
			DeviceType: deviceType{Model: "FHD-12P"},
			Site:       refTo(int64(s)),
		},
	)

	trunkVlans := []ref{{ID: usersVlan}, {ID: guestVlan}}

	inv.interfaces = append(inv.interfaces,
		deviceInterface{
			ID: base + 11, Name: "ether1", Label: "wan", Device: ref{ID: gwID}, Type: typeEthernet,
			CustomFields: interfaceFields{EnableDHCPClient: true},
		},
		deviceInterface{
			ID: base + 12, Name: "ether2", Device: ref{ID: gwID}, Type: typeEthernet,
			UntaggedVlan: refTo(mgmtVlan), TaggedVlans: trunkVlans,
			CustomFields: interfaceFields{EnableDHCPServer: true},
		},
		deviceInterface{
			ID: base + 16, Name: "lo", Device: ref{ID: gwID}, Type: typeVirtual,
		},
		deviceInterface{
			ID: base + 21, Name: "ether1", Device: ref{ID: swID}, Type: typeEthernet,
			UntaggedVlan: refTo(mgmtVlan), TaggedVlans: trunkVlans,
		},
		deviceInterface{
			ID: base + 22, Name: "ether2", Device: ref{ID: swID}, Type: typeEthernet,
			UntaggedVlan: refTo(mgmtVlan), TaggedVlans: trunkVlans,
		},
		deviceInterface{
			ID: base + 23, Name: "ether3", Device: ref{ID: swID}, Type: typeEthernet,
			UntaggedVlan: refTo(usersVlan),
		},
		deviceInterface{
			ID: base + 24, Name: "ether4", Device: ref{ID: swID}, Type: typeEthernet,
			UntaggedVlan: refTo(guestVlan),
		},
		deviceInterface{
			ID: base + 31, Name: "ether1", Device: ref{ID: apID}, Type: typeEthernet,
			UntaggedVlan: refTo(mgmtVlan), TaggedVlans: trunkVlans,
		},
	)

	inv.frontPorts = append(inv.frontPorts, frontPort{
		ID: base + 41, Name: "front1", Device: ref{ID: ppID}, RearPort: ref{ID: base + 45},
	})

	inv.rearPorts = append(inv.rearPorts, rearPort{
		ID: base + 45, Name: "rear1", Device: ref{ID: ppID},
	})

	inv.cables = append(inv.cables,
		cable{
			ID:            base + 51,
			ATerminations: []cableTermination{{ObjectType: objectTypeInterface, ObjectID: base + 12}},
			BTerminations: []cableTermination{{ObjectType: objectTypeFrontPort, ObjectID: base + 41}},
		},
		cable{
			ID:            base + 52,
			ATerminations: []cableTermination{{ObjectType: objectTypeRearPort, ObjectID: base + 45}},
			BTerminations: []cableTermination{{ObjectType: objectTypeInterface, ObjectID: base + 21}},
		},
		cable{
			ID:            base + 53,
			ATerminations: []cableTermination{{ObjectType: objectTypeInterface, ObjectID: base + 22}},
			BTerminations: []cableTermination{{ObjectType: objectTypeInterface, ObjectID: base + 31}},
		},
	)

	inv.vlanGroups = append(inv.vlanGroups, vlanGroup{
		ID: base + 60, Name: fmt.Sprintf("branch%d", s),
	})

	inv.vlans = append(inv.vlans,
		vlan{ID: mgmtVlan, Name: "mgmt", VID: 100, Group: refTo(base + 60)},
		vlan{ID: usersVlan, Name: "users", VID: 200, Group: refTo(base + 60)},
		vlan{ID: guestVlan, Name: "guest", VID: 210, Group: refTo(base + 60)},
	)

	inv.wlanGroups = append(inv.wlanGroups, wlanGroup{
		ID:           wifiGroup,
		Name:         fmt.Sprintf("branch%d-wifi", s),
		CustomFields: wlanGroupFields{Controller: gwID, MgmtVlan: mgmtVlan},
	})

	inv.wlans = append(inv.wlans,
		wlan{
			ID:       base + 71,
			SSID:     fmt.Sprintf("branch%d-corp", s),
			Group:    refTo(wifiGroup),
			Vlan:     refTo(usersVlan),
			AuthType: authWPAPersonal,
			AuthPSK:  fmt.Sprintf("corp-psk-%02d", s),
		},
		wlan{
			ID:       base + 72,
			SSID:     fmt.Sprintf("branch%d-guest", s),
			Group:    refTo(wifiGroup),
			Vlan:     refTo(guestVlan),
			AuthType: authOpen,
		},
	)

	inv.l2vpnTerminations = append(inv.l2vpnTerminations, l2vpnTermination{
		ID:                 base + 99,
		L2VPN:              ref{ID: overlayL2VPNID},
		AssignedObjectType: objectTypeVlan,
		AssignedObjectID:   usersVlan,
	})

	inv.prefixes = append(inv.prefixes,
		prefix{ID: base + 81, Prefix: fmt.Sprintf("10.%d.0.0/24", s)},
		prefix{ID: base + 82, Prefix: fmt.Sprintf("10.%d.10.0/24", s)},
		prefix{ID: base + 83, Prefix: fmt.Sprintf("10.%d.20.0/24", s)},
	)

	inv.ipRanges = append(inv.ipRanges, ipRange{
		ID:           base + 85,
		StartAddress: fmt.Sprintf("10.%d.0.100/24", s),
		EndAddress:   fmt.Sprintf("10.%d.0.199/24", s),
		CustomFields: ipRangeFields{DHCPPool: true},
	})

	inv.ipAddresses = append(inv.ipAddresses,
		ipAddress{
			ID: base + 91, Address: fmt.Sprintf("10.%d.0.1/24", s),
			AssignedObjectType: objectTypeInterface, AssignedObjectID: base + 12,
		},
		ipAddress{
			ID: base + 92, Address: fmt.Sprintf("10.%d.0.2/24", s),
			AssignedObjectType: objectTypeInterface, AssignedObjectID: base + 21,
		},
		ipAddress{
			ID: base + 93, Address: fmt.Sprintf("10.%d.0.3/24", s),
			AssignedObjectType: objectTypeInterface, AssignedObjectID: base + 31,
		},
		ipAddress{
			ID: base + 94, Address: fmt.Sprintf("10.255.0.%d/32", s),
			AssignedObjectType: objectTypeInterface, AssignedObjectID: base + 16,
		},
	)
}

// fakeNetBox serves the generated inventory over the NetBox list
// endpoints netfabric pulls from.
type fakeNetBox struct {
	cfg Config
	inv *inventory
}

func (f *fakeNetBox) routes() *http.ServeMux {
	mux := http.NewServeMux()

	handle(mux, f, tenantsPath, func(inv *inventory) []tenant { return inv.tenants })
	handle(mux, f, sitesPath, func(inv *inventory) []site { return inv.sites })
	handle(mux, f, locationsPath, func(inv *inventory) []location { return inv.locations })
	handle(mux, f, devicesPath, func(inv *inventory) []device { return inv.devices })
	handle(mux, f, interfacesPath, func(inv *inventory) []deviceInterface { return inv.interfaces })
	handle(mux, f, frontPortsPath, func(inv *inventory) []frontPort { return inv.frontPorts })
	handle(mux, f, rearPortsPath, func(inv *inventory) []rearPort { return inv.rearPorts })
	handle(mux, f, cablesPath, func(inv *inventory) []cable { return inv.cables })
	handle(mux, f, vlanGroupsPath, func(inv *inventory) []vlanGroup { return inv.vlanGroups })
	handle(mux, f, vlansPath, func(inv *inventory) []vlan { return inv.vlans })
	handle(mux, f, prefixesPath, func(inv *inventory) []prefix { return inv.prefixes })
	handle(mux, f, ipRangesPath, func(inv *inventory) []ipRange { return inv.ipRanges })
	handle(mux, f, ipAddressesPath, func(inv *inventory) []ipAddress { return inv.ipAddresses })
	handle(mux, f, wlanGroupsPath, func(inv *inventory) []wlanGroup { return inv.wlanGroups })
	handle(mux, f, wlansPath, func(inv *inventory) []wlan { return inv.wlans })
	handle(mux, f, l2vpnsPath, func(inv *inventory) []l2vpn { return inv.l2vpns })
	handle(mux, f, l2vpnTerminationsPath, func(inv *inventory) []l2vpnTermination { return inv.l2vpnTerminations })

	return mux
}

// handle registers one paginated list endpoint guarded by token auth.
func handle[T any](mux *http.ServeMux, f *fakeNetBox, path string, items func(*inventory) []T) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if r.Header.Get("Authorization") != "Token "+f.cfg.Token {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"detail": "Invalid token."}`)

			return
		}

		writePage(w, r, items(f.inv), f.cfg.PageSize)
	})
}

// writePage serves one page of a collection. The limit query param
// overrides the configured page size, and the next link carries both
// so a client keeps its window while walking.
func writePage[T any](w http.ResponseWriter, r *http.Request, items []T, pageSize int) {
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		pageSize = v
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	if offset > len(items) {
		offset = len(items)
	}

	end := offset + pageSize
	if end > len(items) {
		end = len(items)
	}

	out := page[T]{
		Count:   len(items),
		Results: make([]T, 0, end-offset),
	}
	out.Results = append(out.Results, items[offset:end]...)

	if end < len(items) {
		next := fmt.Sprintf("http://%s%s?limit=%d&offset=%d", r.Host, r.URL.Path, pageSize, end)
		out.Next = &next
	}

	if offset > 0 {
		prevOffset := offset - pageSize
		if prevOffset < 0 {
			prevOffset = 0
		}

		prev := fmt.Sprintf("http://%s%s?limit=%d&offset=%d", r.Host, r.URL.Path, pageSize, prevOffset)
		out.Previous = &prev
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("Error encoding response for %s: %v", r.URL.Path, err)
	}
}

func main() {
	var cfg Config

	flag.StringVar(&cfg.ListenAddress, "listen", defaultListenAddress, "Address to serve the fake NetBox API on")
	flag.StringVar(&cfg.Token, "token", defaultToken, "API token the fake instance accepts")
	flag.IntVar(&cfg.Sites, "sites", defaultSites, "Number of branch sites to generate")
	flag.IntVar(&cfg.PageSize, "page-size", defaultPageSize, "Default list endpoint page size")
	flag.Parse()

	cfg.applyDefaults()

	inv := generateInventory(cfg.Sites)

	log.Printf("Generated %d devices across %d branch sites", len(inv.devices), cfg.Sites)
	log.Printf("Fake NetBox API starting on %s", cfg.ListenAddress)
	log.Printf("Accepting API token %q", cfg.Token)

	f := &fakeNetBox{cfg: cfg, inv: inv}

	server := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      f.routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
