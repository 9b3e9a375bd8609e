package api

import (
	"context"

	"github.com/carverauto/netfabric/pkg/models"
	"github.com/carverauto/netfabric/pkg/provisioner"
	"github.com/carverauto/netfabric/pkg/topology"
)

// Provisioner plans and applies device configuration on behalf of the
// API. *provisioner.Provisioner satisfies it.
type Provisioner interface {
	Refresh(ctx context.Context) (*topology.Topology, error)
	TargetScript(ctx context.Context, deviceName string) (*provisioner.TargetConfig, error)
	Plan(ctx context.Context, deviceName string) (*provisioner.Plan, error)
	Apply(ctx context.Context, deviceName string) (*provisioner.Plan, error)
}

// RunStore serves provisioning run history. *audit.Store satisfies it.
type RunStore interface {
	GetRun(ctx context.Context, runID string) (*models.ProvisionRun, error)
	ListRuns(ctx context.Context, deviceName string, limit int) ([]models.ProvisionRun, error)
}
