package provisioner

import "errors"

var (
	// ErrDeviceNotFound reports a name absent from the topology.
	ErrDeviceNotFound = errors.New("device not found in topology")

	// ErrNotManaged reports a device that does not run RouterOS.
	ErrNotManaged = errors.New("device does not run RouterOS")

	// ErrNoPrimaryIP reports a device with no address to dial.
	ErrNoPrimaryIP = errors.New("device has no primary IPv4 address")

	// ErrIdentityMismatch reports an address occupied by a different
	// managed device than the inventory claims.
	ErrIdentityMismatch = errors.New("device identity does not match inventory")
)
