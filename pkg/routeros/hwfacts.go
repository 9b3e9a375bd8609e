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

package routeros

import "fmt"

// FactoryResources is the resource state of a factory-fresh device of
// the given model: ports under their default names, nothing else
// configured. Unknown models yield ErrNoPortsFound.
func FactoryResources(model string) (*Resources, error) {
	ports := buildEthernetPorts(model)
	if len(ports) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPortsFound, model)
	}

	res := NewResources()

	for _, port := range ports {
		res.Ethernet[port.DefaultName] = port
	}

	for _, port := range buildWirelessPorts(model) {
		res.Wireless[port.DefaultName] = port
	}

	return res, nil
}

// Speed advertisement sets per port family.
const (
	advertise100M   = "10M-half,10M-full,100M-half,100M-full"
	advertise1G     = advertise100M + ",1G-half,1G-full"
	advertise1GFull = "10M-full,100M-full,1G-full"
	advertise1GSFP  = "1G-full"
	advertise10G    = "1G-full,10G-full"
)

// buildEthernetPorts returns the factory ethernet port table of a
// hardware model, in the order the device enumerates them. Unknown
// models yield nil.
func buildEthernetPorts(model string) []*EthernetPort {
	switch model {
	case "RB750Gr3":
		return portRuns(
			portRun{"ether", 1, 5, advertise1G, 1596, false},
		)
	case "CRS326-24G-2S+":
		return portRuns(
			portRun{"ether", 1, 24, advertise1G, 1592, false},
			portRun{"sfp-sfpplus", 1, 2, advertise10G, 1592, false},
		)
	case "CRS318-16P-2S+":
		return portRuns(
			portRun{"ether", 1, 16, advertise1G, 1592, false},
			portRun{"sfp-sfpplus", 1, 2, advertise10G, 1592, false},
		)
	case "C52iG-5HaxD2HaxD":
		return portRuns(
			portRun{"ether", 1, 1, advertise1G, 1568, true},
			portRun{"ether", 2, 5, advertise1G, 1568, false},
		)
	case "CCR1009-7G-1C-1S+":
		return portRuns(
			portRun{"ether", 1, 7, advertise1GFull, 1580, false},
			portRun{"combo", 1, 1, advertise1GFull, 1580, false},
			portRun{"sfp-sfpplus", 1, 1, advertise10G, 1580, false},
		)
	case "CRS354-48G-4S+2Q+":
		return portRuns(
			portRun{"ether", 1, 48, advertise1G, 1592, false},
			portRun{"ether", 49, 49, advertise100M, 1592, false},
			portRun{"sfp-sfpplus", 1, 4, advertise10G, 1592, false},
			portRun{"qsfpplus", 1, 8, advertise10G, 1592, false},
		)
	case "CRS109-8G-1S-2HnD":
		return portRuns(
			portRun{"ether", 1, 8, advertise1G, 1588, false},
			portRun{"sfp", 1, 1, advertise1GSFP, 1588, false},
		)
	}

	return nil
}

// buildWirelessPorts returns the factory radio table of a hardware
// model. Radios are never renamed or re-addressed by synthesis, the
// table only anchors the current-vs-target diff.
func buildWirelessPorts(model string) []*WirelessPort {
	switch model {
	case "C52iG-5HaxD2HaxD":
		return []*WirelessPort{
			{DefaultName: "wifi1", MTU: 1560},
			{DefaultName: "wifi2", MTU: 1560},
		}
	case "CRS109-8G-1S-2HnD":
		return []*WirelessPort{
			{DefaultName: "wlan1", MTU: 1600},
		}
	}

	return nil
}

// portRun is a consecutive slot range sharing one port family.
type portRun struct {
	pattern   string
	first     int
	last      int
	advertise string
	l2mtu     int
	poe       bool
}

func portRuns(runs ...portRun) []*EthernetPort {
	var ports []*EthernetPort

	for _, run := range runs {
		for slot := run.first; slot <= run.last; slot++ {
			name := fmt.Sprintf("%s%d", run.pattern, slot)
			ports = append(ports, &EthernetPort{
				DefaultName: name,
				Name:        name,
				Advertise:   run.advertise,
				L2MTU:       run.l2mtu,
				HasPoE:      run.poe,
			})
		}
	}

	return ports
}
