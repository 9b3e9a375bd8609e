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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/netfabric/pkg/logger"
)

const defaultSnapshotTTL = 5 * time.Minute

var errNilSnapshot = errors.New("fetcher returned nil snapshot")

// Fetcher produces a fresh snapshot from the inventory source of
// truth.
type Fetcher interface {
	FetchTopology(ctx context.Context) (*Topology, error)
}

// Store caches the latest snapshot and refreshes it lazily once it is
// older than the TTL. The store lock is held across a refresh, so
// concurrent callers wait for one fetch instead of stampeding the
// inventory service.
type Store struct {
	mu      sync.Mutex
	fetcher Fetcher
	ttl     time.Duration
	log     logger.Logger
	current *Topology
}

func NewStore(fetcher Fetcher, ttl time.Duration, log logger.Logger) *Store {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}

	return &Store{
		fetcher: fetcher,
		ttl:     ttl,
		log:     log,
	}
}

// Topology returns the cached snapshot, refreshing it first when it is
// missing or stale.
func (s *Store) Topology(ctx context.Context) (*Topology, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.Age() < s.ttl {
		return s.current, nil
	}

	return s.refreshLocked(ctx)
}

// Refresh fetches a fresh snapshot unconditionally.
func (s *Store) Refresh(ctx context.Context) (*Topology, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refreshLocked(ctx)
}

func (s *Store) refreshLocked(ctx context.Context) (*Topology, error) {
	start := time.Now()

	topo, err := s.fetcher.FetchTopology(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch topology: %w", err)
	}

	if topo == nil {
		return nil, errNilSnapshot
	}

	s.current = topo

	s.log.Info().
		Int("devices", len(topo.devices)).
		Int("interfaces", len(topo.interfaces)).
		Int("prefixes", len(topo.prefixes)).
		Dur("took", time.Since(start)).
		Msg("Refreshed topology snapshot")

	return topo, nil
}

// Invalidate drops the cached snapshot so the next read refreshes.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
}

// Current returns the cached snapshot without refreshing, stale or
// not.
func (s *Store) Current() (*Topology, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current, s.current != nil
}
