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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/netfabric/pkg/api"
	"github.com/carverauto/netfabric/pkg/audit"
	"github.com/carverauto/netfabric/pkg/config"
	"github.com/carverauto/netfabric/pkg/events"
	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/models"
	"github.com/carverauto/netfabric/pkg/netbox"
	"github.com/carverauto/netfabric/pkg/provisioner"
	"github.com/carverauto/netfabric/pkg/rosclient"
	"github.com/carverauto/netfabric/pkg/topology"
	"github.com/carverauto/netfabric/pkg/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/netfabric/core.json", "Path to netfabric config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	var cfg models.CoreServiceConfig

	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("loading config %s: %w", *configPath, err)
	}

	mainLogger, err := logger.NewComponentLogger("netfabric", cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	mainLogger.Info().Str("version", version.Full()).Msg("netfabric core starting")

	store := topology.NewStore(netbox.NewClient(cfg.Netbox, mainLogger), time.Duration(cfg.TopologyTTL), mainLogger)
	sessions := rosclient.NewManager(*cfg.RouterOS, cfg.Credentials, mainLogger)

	provOpts := make([]provisioner.Option, 0, 3)

	if cfg.SNMP != nil && cfg.SNMP.Enabled {
		provOpts = append(provOpts, provisioner.WithProber(rosclient.NewProber(*cfg.SNMP, mainLogger)))
	}

	if cfg.NATS != nil && cfg.Events != nil && cfg.Events.Enabled {
		publisher, nc, err := events.Connect(ctx, *cfg.NATS, *cfg.Events, mainLogger)
		if err != nil {
			return fmt.Errorf("connecting event publisher: %w", err)
		}
		defer nc.Close()

		provOpts = append(provOpts, provisioner.WithEvents(publisher))
	}

	apiOpts := make([]func(*api.Server), 0, 2)

	if cfg.Database != nil && cfg.Database.Enabled {
		auditStore, err := audit.NewStore(ctx, *cfg.Database, mainLogger)
		if err != nil {
			return fmt.Errorf("opening audit store: %w", err)
		}
		defer auditStore.Close()

		provOpts = append(provOpts, provisioner.WithAudit(auditStore))
		apiOpts = append(apiOpts, api.WithRunStore(auditStore))
	}

	prov := provisioner.New(store, sessions, mainLogger, provOpts...)
	apiOpts = append(apiOpts,
		api.WithProvisioner(prov),
		api.WithAPIKey(cfg.APIKey),
		api.WithCORS(cfg.CORS),
	)

	apiServer := api.NewServer(store, mainLogger, apiOpts...)

	// Prime the inventory cache. The service still starts when NetBox
	// is unreachable; the first request retries the fetch.
	if topo, err := store.Refresh(ctx); err != nil {
		mainLogger.Warn().Err(err).Msg("Initial inventory fetch failed")
	} else {
		mainLogger.Info().Int("devices", len(topo.Devices())).Msg("Inventory loaded")
	}

	errCh := make(chan error, 1)

	go func() {
		mainLogger.Info().Str("addr", cfg.ListenAddr).Msg("Starting API server")
		errCh <- apiServer.Start(cfg.ListenAddr)
	}()

	select {
	case <-ctx.Done():
		mainLogger.Info().Msg("Shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down API server: %w", err)
		}

		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server: %w", err)
		}

		return nil
	}
}
