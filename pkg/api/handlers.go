package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/netfabric/pkg/topology"
	"github.com/carverauto/netfabric/pkg/version"
)

// HealthStatus is the body served on /health. Snapshot is nil until
// the first inventory fetch succeeds.
type HealthStatus struct {
	Status   string          `json:"status"`
	Version  string          `json:"version"`
	Snapshot *SnapshotStatus `json:"snapshot,omitempty"`
}

// SnapshotStatus describes the cached inventory snapshot.
type SnapshotStatus struct {
	Devices    int       `json:"devices"`
	FetchedAt  time.Time `json:"fetched_at"`
	AgeSeconds float64   `json:"age_seconds"`
}

// DeviceSummary is one inventory device as served on /api/devices.
type DeviceSummary struct {
	Name              string `json:"name"`
	Model             string `json:"model,omitempty"`
	Serial            string `json:"serial,omitempty"`
	HasRouterOS       bool   `json:"has_routeros"`
	CredentialProfile string `json:"credential_profile,omitempty"`
	PrimaryIP         string `json:"primary_ip,omitempty"`
	Interfaces        int    `json:"interfaces"`
}

// RefreshResponse reports the snapshot produced by a forced refresh.
type RefreshResponse struct {
	Devices   int       `json:"devices"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	health := HealthStatus{Status: "ok", Version: version.Version}

	if topo, ok := s.store.Current(); ok {
		health.Snapshot = &SnapshotStatus{
			Devices:    len(topo.Devices()),
			FetchedAt:  topo.FetchedAt(),
			AgeSeconds: topo.Age().Seconds(),
		}
	}

	if err := s.encodeJSONResponse(w, health); err != nil {
		s.logger.Error().Err(err).Msg("Error encoding health response")
	}
}

func (s *Server) getDevices(w http.ResponseWriter, r *http.Request) {
	topo, err := s.store.Topology(r.Context())
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	devices := topo.Devices()
	summaries := make([]DeviceSummary, 0, len(devices))

	for _, device := range devices {
		summary := DeviceSummary{
			Name:              device.Name(),
			Model:             device.Model(),
			Serial:            device.Serial(),
			HasRouterOS:       device.HasRouterOS(),
			CredentialProfile: device.CredentialProfile(),
			Interfaces:        len(device.Interfaces()),
		}

		if addr, ok := device.PrimaryIPv4(); ok {
			summary.PrimaryIP = addr.String()
		}

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	if err := s.encodeJSONResponse(w, summaries); err != nil {
		s.logger.Error().Err(err).Msg("Error encoding devices response")
	}
}

func (s *Server) getDeviceTarget(w http.ResponseWriter, r *http.Request) {
	if s.provisioner == nil {
		writeError(w, "provisioning is not configured", http.StatusServiceUnavailable)

		return
	}

	name := mux.Vars(r)["name"]

	target, err := s.provisioner.TargetScript(r.Context(), name)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	if err := s.encodeJSONResponse(w, target); err != nil {
		s.logger.Error().Err(err).Str("device", name).Msg("Error encoding target response")
	}
}

func (s *Server) postDevicePlan(w http.ResponseWriter, r *http.Request) {
	if s.provisioner == nil {
		writeError(w, "provisioning is not configured", http.StatusServiceUnavailable)

		return
	}

	name := mux.Vars(r)["name"]

	plan, err := s.provisioner.Plan(r.Context(), name)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	if err := s.encodeJSONResponse(w, plan); err != nil {
		s.logger.Error().Err(err).Str("device", name).Msg("Error encoding plan response")
	}
}

func (s *Server) postDeviceApply(w http.ResponseWriter, r *http.Request) {
	if s.provisioner == nil {
		writeError(w, "provisioning is not configured", http.StatusServiceUnavailable)

		return
	}

	name := mux.Vars(r)["name"]

	plan, err := s.provisioner.Apply(r.Context(), name)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	if err := s.encodeJSONResponse(w, plan); err != nil {
		s.logger.Error().Err(err).Str("device", name).Msg("Error encoding apply response")
	}
}

func (s *Server) postTopologyRefresh(w http.ResponseWriter, r *http.Request) {
	refreshed, err := s.refreshTopology(r.Context())
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	resp := RefreshResponse{
		Devices:   len(refreshed.Devices()),
		FetchedAt: refreshed.FetchedAt(),
	}

	if err := s.encodeJSONResponse(w, resp); err != nil {
		s.logger.Error().Err(err).Msg("Error encoding refresh response")
	}
}

// refreshTopology goes through the provisioner when one is configured
// so the refresh event is published alongside the new snapshot.
func (s *Server) refreshTopology(ctx context.Context) (*topology.Topology, error) {
	if s.provisioner != nil {
		return s.provisioner.Refresh(ctx)
	}

	return s.store.Refresh(ctx)
}

func (s *Server) getRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, "run history is not configured", http.StatusServiceUnavailable)

		return
	}

	query := r.URL.Query()
	device := query.Get("device")

	limit := 0

	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)

			return
		}

		limit = parsed
	}

	runs, err := s.runs.ListRuns(r.Context(), device, limit)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	if err := s.encodeJSONResponse(w, runs); err != nil {
		s.logger.Error().Err(err).Msg("Error encoding runs response")
	}
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, "run history is not configured", http.StatusServiceUnavailable)

		return
	}

	runID := mux.Vars(r)["id"]

	run, err := s.runs.GetRun(r.Context(), runID)
	if err != nil {
		s.writeServiceError(w, err)

		return
	}

	if err := s.encodeJSONResponse(w, run); err != nil {
		s.logger.Error().Err(err).Str("run_id", runID).Msg("Error encoding run response")
	}
}
