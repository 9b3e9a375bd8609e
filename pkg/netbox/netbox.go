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

// Package netbox pulls the network inventory out of a NetBox instance
// and assembles it into a topology snapshot.
package netbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/models"
	"github.com/carverauto/netfabric/pkg/topology"
)

var errUnexpectedStatusCode = errors.New("unexpected status code")

const defaultRequestTimeout = 30 * time.Second

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

// Client talks to the NetBox REST API with token authentication. It
// implements topology.Fetcher.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        logger.Logger
}

func NewClient(cfg models.NetboxConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// FetchTopology pulls every inventory collection and builds one
// immutable snapshot from it.
func (c *Client) FetchTopology(ctx context.Context) (*topology.Topology, error) {
	start := time.Now()

	inv, err := c.fetchInventory(ctx)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Int("devices", len(inv.devices)).
		Int("interfaces", len(inv.interfaces)).
		Int("cables", len(inv.cables)).
		Int("addresses", len(inv.ipAddresses)).
		Dur("took", time.Since(start)).
		Msg("Fetched inventory from NetBox")

	return c.buildTopology(inv)
}

func (c *Client) fetchInventory(ctx context.Context) (*inventory, error) {
	inv := &inventory{}

	var err error

	if inv.tenants, err = collect[apiTenant](ctx, c, tenantsPath); err != nil {
		return nil, err
	}

	if inv.sites, err = collect[apiSite](ctx, c, sitesPath); err != nil {
		return nil, err
	}

	if inv.locations, err = collect[apiLocation](ctx, c, locationsPath); err != nil {
		return nil, err
	}

	if inv.devices, err = collect[apiDevice](ctx, c, devicesPath); err != nil {
		return nil, err
	}

	if inv.interfaces, err = collect[apiInterface](ctx, c, interfacesPath); err != nil {
		return nil, err
	}

	if inv.frontPorts, err = collect[apiFrontPort](ctx, c, frontPortsPath); err != nil {
		return nil, err
	}

	if inv.rearPorts, err = collect[apiRearPort](ctx, c, rearPortsPath); err != nil {
		return nil, err
	}

	if inv.cables, err = collect[apiCable](ctx, c, cablesPath); err != nil {
		return nil, err
	}

	if inv.vlanGroups, err = collect[apiVlanGroup](ctx, c, vlanGroupsPath); err != nil {
		return nil, err
	}

	if inv.vlans, err = collect[apiVlan](ctx, c, vlansPath); err != nil {
		return nil, err
	}

	if inv.wlanGroups, err = collect[apiWlanGroup](ctx, c, wlanGroupsPath); err != nil {
		return nil, err
	}

	if inv.wlans, err = collect[apiWlan](ctx, c, wlansPath); err != nil {
		return nil, err
	}

	if inv.l2vpns, err = collect[apiL2VPN](ctx, c, l2vpnsPath); err != nil {
		return nil, err
	}

	if inv.l2vpnTerminations, err = collect[apiL2VPNTermination](ctx, c, l2vpnTerminationsPath); err != nil {
		return nil, err
	}

	if inv.prefixes, err = collect[apiPrefix](ctx, c, prefixesPath); err != nil {
		return nil, err
	}

	if inv.ipRanges, err = collect[apiIPRange](ctx, c, ipRangesPath); err != nil {
		return nil, err
	}

	if inv.ipAddresses, err = collect[apiIPAddress](ctx, c, ipAddressesPath); err != nil {
		return nil, err
	}

	return inv, nil
}

// collect drains one list endpoint, following next links until the
// last page.
func collect[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T

	url := c.baseURL + path
	for url != "" {
		var p page[T]
		if err := c.getJSON(ctx, url, &p); err != nil {
			return nil, fmt.Errorf("fetching %s: %w", path, err)
		}

		out = append(out, p.Results...)

		url = ""
		if p.Next != nil {
			url = *p.Next
		}
	}

	return out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", errUnexpectedStatusCode, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
