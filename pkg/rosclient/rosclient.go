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

// Package rosclient talks to live RouterOS devices: it reads their
// configuration back into resource form over the API protocol, applies
// planned mutations, and checks device identity over SNMP before any
// change is pushed.
package rosclient

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"sync"
	"time"

	rosapi "github.com/go-routeros/routeros/v3"

	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/models"
)

const defaultAPIPort = 8728

// apiConn is the slice of the RouterOS API client the package uses.
type apiConn interface {
	RunArgs(sentence []string) (*rosapi.Reply, error)
}

type dialFunc func(ctx context.Context, address, username, password string) (apiConn, func(), error)

// Conn is one authenticated API session with a device.
type Conn struct {
	addr    string
	api     apiConn
	closeFn func()
	log     logger.Logger
}

// Addr returns the host:port the session is connected to.
func (c *Conn) Addr() string {
	return c.addr
}

// Close terminates the session.
func (c *Conn) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

type connKey struct {
	addr    string
	profile string
}

// Manager hands out API sessions, one per device address and credential
// profile. Sessions are cached so the plan and the apply that follows
// it reuse the same login.
type Manager struct {
	cfg   models.RouterOSConfig
	creds map[string]models.CredentialProfile
	log   logger.Logger
	dial  dialFunc

	mu    sync.Mutex
	conns map[connKey]*Conn
}

// NewManager returns a session manager resolving credential profile
// labels through creds.
func NewManager(cfg models.RouterOSConfig, creds map[string]models.CredentialProfile, log logger.Logger) *Manager {
	if cfg.Port == 0 {
		cfg.Port = defaultAPIPort
	}

	return &Manager{
		cfg:   cfg,
		creds: creds,
		log:   log,
		dial:  dialAPI,
		conns: make(map[connKey]*Conn),
	}
}

// Connect returns the cached session for the device, dialing and
// logging in on first use.
func (m *Manager) Connect(ctx context.Context, addr netip.Addr, profile string) (*Conn, error) {
	creds, ok := m.creds[profile]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}

	key := connKey{addr: addr.String(), profile: profile}

	m.mu.Lock()
	defer m.mu.Unlock()

	if conn, ok := m.conns[key]; ok {
		return conn, nil
	}

	if timeout := time.Duration(m.cfg.Timeout); timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	address := net.JoinHostPort(addr.String(), strconv.Itoa(m.cfg.Port))

	api, closeFn, err := m.dial(ctx, address, creds.Username, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", address, err)
	}

	m.log.Debug().
		Str("address", address).
		Str("profile", profile).
		Msg("Opened RouterOS API session")

	conn := &Conn{addr: address, api: api, closeFn: closeFn, log: m.log}
	m.conns[key] = conn

	return conn, nil
}

// Discard drops and closes the cached session for the device, forcing
// the next Connect to dial fresh. Callers discard a session after a
// transport failure.
func (m *Manager) Discard(addr netip.Addr, profile string) {
	key := connKey{addr: addr.String(), profile: profile}

	m.mu.Lock()
	defer m.mu.Unlock()

	if conn, ok := m.conns[key]; ok {
		delete(m.conns, key)
		conn.Close()
	}
}

// Close closes every cached session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, conn := range m.conns {
		delete(m.conns, key)
		conn.Close()
	}
}

func dialAPI(ctx context.Context, address, username, password string) (apiConn, func(), error) {
	client, err := rosapi.DialContext(ctx, address, username, password)
	if err != nil {
		return nil, nil, err
	}

	return client, func() { client.Close() }, nil
}
