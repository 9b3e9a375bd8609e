package audit

import "errors"

var (
	// ErrAuditDisabled marks reads against a store that was never configured.
	ErrAuditDisabled = errors.New("audit store is not configured")

	// ErrRunNotFound reports a run id with no recorded run.
	ErrRunNotFound = errors.New("provisioning run not found")
)
