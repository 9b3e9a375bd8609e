package models

import "time"

// RunStatus tracks a provisioning run through its lifecycle.
type RunStatus string

const (
	RunStatusPlanned RunStatus = "planned"
	RunStatusApplied RunStatus = "applied"
	RunStatusFailed  RunStatus = "failed"
)

// ProvisionRun is one planned or applied configuration change for a device.
type ProvisionRun struct {
	RunID         string    `json:"run_id"`
	DeviceName    string    `json:"device_name"`
	Status        RunStatus `json:"status"`
	MutationCount int       `json:"mutation_count"`
	Script        string    `json:"script,omitempty"`
	Error         string    `json:"error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at,omitempty"`
}
