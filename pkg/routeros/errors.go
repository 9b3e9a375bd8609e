package routeros

import "errors"

var (
	// Model detection.
	ErrNoPortsFound          = errors.New("no ports found for device model")
	ErrRouterboardNotDefined = errors.New("device is not a routerboard")

	// Target synthesis.
	ErrPortNotFound        = errors.New("declared port not found on device")
	ErrConfigContradiction = errors.New("contradicting layer 2 configuration")

	// DHCP wiring.
	ErrMissingAddressOnPrefix = errors.New("dhcp server requested on interface without address")
	ErrMissingPrefixOnAddress = errors.New("ip address has no known prefix")

	// Mutation planning.
	ErrUnresolvedReference = errors.New("mutation depends on unresolved reference")
	ErrMutationCycle       = errors.New("mutation dependencies form a cycle")

	// Wire values.
	ErrInvalidVlanIDs = errors.New("invalid vlan-ids value")
)
