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

// Package provisioner drives the path from inventory snapshot to device
// configuration: synthesize the target, diff it against the live
// device, and optionally apply the result.
package provisioner

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/netfabric/pkg/audit"
	"github.com/carverauto/netfabric/pkg/events"
	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/models"
	"github.com/carverauto/netfabric/pkg/rosclient"
	"github.com/carverauto/netfabric/pkg/routeros"
	"github.com/carverauto/netfabric/pkg/topology"
)

// deviceSession is the slice of a live RouterOS session the
// provisioner uses.
type deviceSession interface {
	CurrentState(ctx context.Context) (*routeros.Resources, error)
	Apply(ctx context.Context, mutations []routeros.Mutation) error
}

type connectFunc func(ctx context.Context, addr netip.Addr, profile string) (deviceSession, error)

// identityProber answers who is living at an address.
type identityProber interface {
	Identify(ctx context.Context, addr netip.Addr) (*rosclient.DeviceIdentity, error)
}

// Provisioner plans and applies per-device configuration runs.
type Provisioner struct {
	store   *topology.Store
	connect connectFunc
	discard func(addr netip.Addr, profile string)
	naming  routeros.NameGenerator
	prober  identityProber
	events  *events.Publisher
	audit   *audit.Store
	log     logger.Logger
}

// Option tweaks a Provisioner.
type Option func(*Provisioner)

// WithProber guards applies with an identity probe of the target
// address.
func WithProber(prober identityProber) Option {
	return func(p *Provisioner) { p.prober = prober }
}

// WithEvents publishes run lifecycle events.
func WithEvents(pub *events.Publisher) Option {
	return func(p *Provisioner) { p.events = pub }
}

// WithAudit records runs in the audit store.
func WithAudit(store *audit.Store) Option {
	return func(p *Provisioner) { p.audit = store }
}

// WithNaming overrides the port naming policy.
func WithNaming(naming routeros.NameGenerator) Option {
	return func(p *Provisioner) { p.naming = naming }
}

// New wires a provisioner over the snapshot store and the session
// manager. Ports are named after their cable far end unless WithNaming
// says otherwise.
func New(store *topology.Store, sessions *rosclient.Manager, log logger.Logger, opts ...Option) *Provisioner {
	p := &Provisioner{
		store:  store,
		naming: routeros.EndpointNames{},
		log:    log,
		connect: func(ctx context.Context, addr netip.Addr, profile string) (deviceSession, error) {
			return sessions.Connect(ctx, addr, profile)
		},
		discard: sessions.Discard,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Plan is the outcome of planning or applying one run. The mutation
// list stays internal; the script is its rendered form.
type Plan struct {
	RunID         string              `json:"run_id"`
	DeviceName    string              `json:"device_name"`
	Status        models.RunStatus    `json:"status"`
	MutationCount int                 `json:"mutation_count"`
	Mutations     []routeros.Mutation `json:"-"`
	Script        string              `json:"script"`
	StartedAt     time.Time           `json:"started_at"`
	CompletedAt   time.Time           `json:"completed_at,omitempty"`
}

// Refresh forces a fresh inventory snapshot and announces it.
func (p *Provisioner) Refresh(ctx context.Context) (*topology.Topology, error) {
	start := time.Now()

	topo, err := p.store.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	err = p.events.PublishTopologyRefreshed(ctx, models.TopologyRefreshEventData{
		Timestamp:   time.Now().UTC(),
		DeviceCount: len(topo.Devices()),
		FetchTimeMS: time.Since(start).Milliseconds(),
	})
	if err != nil {
		p.log.Warn().Err(err).Msg("Failed to publish topology event")
	}

	return topo, nil
}

// Target computes the desired configuration of a device without
// contacting it.
func (p *Provisioner) Target(ctx context.Context, deviceName string) (*routeros.Resources, error) {
	device, err := p.device(ctx, deviceName)
	if err != nil {
		return nil, err
	}

	return routeros.GenerateTarget(device, device.Model(), p.naming, p.log)
}

// TargetConfig is a device's full desired configuration rendered as
// the script a factory-fresh unit would receive.
type TargetConfig struct {
	DeviceName    string `json:"device_name"`
	MutationCount int    `json:"mutation_count"`
	Script        string `json:"script"`
}

// TargetScript renders the complete desired configuration of a device,
// diffed against the factory state of its hardware model.
func (p *Provisioner) TargetScript(ctx context.Context, deviceName string) (*TargetConfig, error) {
	device, err := p.device(ctx, deviceName)
	if err != nil {
		return nil, err
	}

	target, err := routeros.GenerateTarget(device, device.Model(), p.naming, p.log)
	if err != nil {
		return nil, fmt.Errorf("generating target for %s: %w", deviceName, err)
	}

	factory, err := routeros.FactoryResources(device.Model())
	if err != nil {
		return nil, err
	}

	mutations, err := routeros.PlanMutations(factory, target)
	if err != nil {
		return nil, fmt.Errorf("planning %s: %w", deviceName, err)
	}

	return &TargetConfig{
		DeviceName:    deviceName,
		MutationCount: len(mutations),
		Script:        routeros.RenderScript(mutations),
	}, nil
}

// Plan computes the ordered mutations bringing a device to its desired
// state. The device is only read, never written.
func (p *Provisioner) Plan(ctx context.Context, deviceName string) (*Plan, error) {
	return p.run(ctx, deviceName, false)
}

// Apply plans a device and pushes the result onto it.
func (p *Provisioner) Apply(ctx context.Context, deviceName string) (*Plan, error) {
	return p.run(ctx, deviceName, true)
}

func (p *Provisioner) run(ctx context.Context, deviceName string, apply bool) (*Plan, error) {
	device, err := p.device(ctx, deviceName)
	if err != nil {
		return nil, err
	}

	addr, ok := device.PrimaryIPv4()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimaryIP, deviceName)
	}

	target, err := routeros.GenerateTarget(device, device.Model(), p.naming, p.log)
	if err != nil {
		return nil, fmt.Errorf("generating target for %s: %w", deviceName, err)
	}

	if apply {
		if err := p.checkIdentity(ctx, device, addr); err != nil {
			return nil, err
		}
	}

	profile := device.CredentialProfile()

	session, err := p.connect(ctx, addr, profile)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", deviceName, err)
	}

	current, err := session.CurrentState(ctx)
	if err != nil {
		p.discard(addr, profile)

		return nil, fmt.Errorf("reading state of %s: %w", deviceName, err)
	}

	mutations, err := routeros.PlanMutations(current, target)
	if err != nil {
		return nil, fmt.Errorf("planning %s: %w", deviceName, err)
	}

	plan := &Plan{
		RunID:         uuid.New().String(),
		DeviceName:    deviceName,
		Status:        models.RunStatusPlanned,
		MutationCount: len(mutations),
		Mutations:     mutations,
		Script:        routeros.RenderScript(mutations),
		StartedAt:     time.Now().UTC(),
	}

	p.recordPlanned(ctx, plan)

	p.log.Info().
		Str("device", deviceName).
		Str("run_id", plan.RunID).
		Int("mutations", plan.MutationCount).
		Bool("apply", apply).
		Msg("Planned device configuration")

	if !apply {
		return plan, nil
	}

	if err := session.Apply(ctx, plan.Mutations); err != nil {
		p.discard(addr, profile)
		p.settle(ctx, plan, models.RunStatusFailed, err.Error())

		return nil, fmt.Errorf("applying to %s: %w", deviceName, err)
	}

	p.settle(ctx, plan, models.RunStatusApplied, "")

	return plan, nil
}

func (p *Provisioner) device(ctx context.Context, name string) (topology.DeviceAccess, error) {
	topo, err := p.store.Topology(ctx)
	if err != nil {
		return topology.DeviceAccess{}, err
	}

	device, ok := topo.DeviceByName(name)
	if !ok {
		return topology.DeviceAccess{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
	}

	if !device.HasRouterOS() {
		return topology.DeviceAccess{}, fmt.Errorf("%w: %s", ErrNotManaged, name)
	}

	return device, nil
}

// checkIdentity refuses an apply when the address answers with the
// name of a different managed device. Probe failures and unknown names
// only log: a factory-fresh device cannot identify itself yet.
func (p *Provisioner) checkIdentity(ctx context.Context, device topology.DeviceAccess, addr netip.Addr) error {
	if p.prober == nil {
		return nil
	}

	identity, err := p.prober.Identify(ctx, addr)
	if err != nil {
		p.log.Warn().
			Err(err).
			Str("device", device.Name()).
			Msg("Identity probe failed, applying anyway")

		return nil
	}

	if identity.SysName == "" || identity.SysName == device.Name() {
		return nil
	}

	other, ok := device.Topology().DeviceByName(identity.SysName)
	if ok && other.ID() != device.ID() {
		return fmt.Errorf("%w: %s reports identity %q", ErrIdentityMismatch, addr, identity.SysName)
	}

	return nil
}

func (p *Provisioner) recordPlanned(ctx context.Context, plan *Plan) {
	err := p.audit.Record(ctx, &models.ProvisionRun{
		RunID:         plan.RunID,
		DeviceName:    plan.DeviceName,
		Status:        models.RunStatusPlanned,
		MutationCount: plan.MutationCount,
		Script:        plan.Script,
		StartedAt:     plan.StartedAt,
	})
	if err != nil {
		p.log.Warn().Err(err).Str("run_id", plan.RunID).Msg("Failed to record provisioning run")
	}

	err = p.events.PublishProvisionPlanned(ctx, models.ProvisionEventData{
		RunID:         plan.RunID,
		DeviceName:    plan.DeviceName,
		Timestamp:     plan.StartedAt,
		MutationCount: plan.MutationCount,
	})
	if err != nil {
		p.log.Warn().Err(err).Str("run_id", plan.RunID).Msg("Failed to publish provision event")
	}
}

func (p *Provisioner) settle(ctx context.Context, plan *Plan, status models.RunStatus, message string) {
	plan.Status = status
	plan.CompletedAt = time.Now().UTC()

	if err := p.audit.Complete(ctx, plan.RunID, status, message, plan.CompletedAt); err != nil {
		p.log.Warn().Err(err).Str("run_id", plan.RunID).Msg("Failed to settle provisioning run")
	}

	data := models.ProvisionEventData{
		RunID:         plan.RunID,
		DeviceName:    plan.DeviceName,
		Timestamp:     plan.CompletedAt,
		MutationCount: plan.MutationCount,
		Applied:       status == models.RunStatusApplied,
		Error:         message,
	}

	var err error
	if status == models.RunStatusApplied {
		err = p.events.PublishProvisionApplied(ctx, data)
	} else {
		err = p.events.PublishProvisionFailed(ctx, data)
	}

	if err != nil {
		p.log.Warn().Err(err).Str("run_id", plan.RunID).Msg("Failed to publish provision event")
	}
}
