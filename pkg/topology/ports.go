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

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	etherPortPattern   = regexp.MustCompile(`ether([0-9]+)`)
	sfpPlusPortPattern = regexp.MustCompile(`sfp-sfpplus([0-9]+)`)
	wifiPortPattern    = regexp.MustCompile(`wifi([0-9]+)`)
	wlanPortPattern    = regexp.MustCompile(`wlan([0-9]+)`)
)

// ParsePortName maps an inventory port name onto a physical port.
// Names that do not follow a known hardware pattern yield ok=false.
func ParsePortName(name string) (ExternalPort, bool) {
	if name == "lo" {
		return ExternalPort{Kind: ExternalPortLoopback}, true
	}

	patterns := []struct {
		re   *regexp.Regexp
		kind ExternalPortKind
	}{
		{etherPortPattern, ExternalPortEthernet},
		{sfpPlusPortPattern, ExternalPortSfpSfpPlus},
		{wifiPortPattern, ExternalPortWifi},
		{wlanPortPattern, ExternalPortWlan},
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		slot, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		return ExternalPort{Kind: p.kind, Slot: slot}, true
	}

	return ExternalPort{}, false
}

// ShortName is the two-digit port abbreviation used as the stem of
// synthesized interface names.
func (p ExternalPort) ShortName() string {
	switch p.Kind {
	case ExternalPortEthernet:
		return fmt.Sprintf("e%02d", p.Slot)
	case ExternalPortSfpSfpPlus:
		return fmt.Sprintf("s%02d", p.Slot)
	case ExternalPortWifi, ExternalPortWlan:
		return fmt.Sprintf("w%02d", p.Slot)
	case ExternalPortLoopback:
		return "lo"
	default:
		return ""
	}
}

// DefaultName is the factory port name on the device.
func (p ExternalPort) DefaultName() string {
	switch p.Kind {
	case ExternalPortEthernet:
		return fmt.Sprintf("ether%d", p.Slot)
	case ExternalPortSfpSfpPlus:
		return fmt.Sprintf("sfp-sfpplus%d", p.Slot)
	case ExternalPortWifi:
		return fmt.Sprintf("wifi%d", p.Slot)
	case ExternalPortWlan:
		return fmt.Sprintf("wlan%d", p.Slot)
	case ExternalPortLoopback:
		return "lo"
	default:
		return ""
	}
}

// IsEthernet reports whether the port is a wired ethernet or SFP port.
func (p ExternalPort) IsEthernet() bool {
	return p.Kind == ExternalPortEthernet || p.Kind == ExternalPortSfpSfpPlus
}

// IsWireless reports whether the port is a radio.
func (p ExternalPort) IsWireless() bool {
	return p.Kind == ExternalPortWifi || p.Kind == ExternalPortWlan
}

// Less orders physical ports by kind then slot.
func (p ExternalPort) Less(other ExternalPort) bool {
	if p.Kind != other.Kind {
		return p.Kind < other.Kind
	}

	return p.Slot < other.Slot
}
