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

package rosclient

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"testing"

	rosapi "github.com/go-routeros/routeros/v3"
	"github.com/go-routeros/routeros/v3/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/models"
)

// fakeAPI answers RunArgs by the command word, recording every
// sentence it was given.
type fakeAPI struct {
	mu      sync.Mutex
	replies map[string]*rosapi.Reply
	errs    map[string]error
	calls   [][]string
}

func (f *fakeAPI) RunArgs(sentence []string) (*rosapi.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string(nil), sentence...))

	command := sentence[0]

	if err, ok := f.errs[command]; ok {
		return nil, err
	}

	if reply, ok := f.replies[command]; ok {
		return reply, nil
	}

	return &rosapi.Reply{}, nil
}

func replyWith(rows ...map[string]string) *rosapi.Reply {
	reply := &rosapi.Reply{}
	for _, row := range rows {
		reply.Re = append(reply.Re, &proto.Sentence{Word: "!re", Map: row})
	}

	return reply
}

func testManager(dial dialFunc) *Manager {
	manager := NewManager(models.RouterOSConfig{}, map[string]models.CredentialProfile{
		"core-admin": {Username: "admin", Password: "secret"},
	}, logger.NewTestLogger())
	manager.dial = dial

	return manager
}

func TestManagerCachesSessionsPerAddressAndProfile(t *testing.T) {
	var dials []string

	manager := testManager(func(_ context.Context, address, username, _ string) (apiConn, func(), error) {
		dials = append(dials, address+" as "+username)

		return &fakeAPI{}, func() {}, nil
	})

	addr := netip.MustParseAddr("10.255.0.1")

	first, err := manager.Connect(context.Background(), addr, "core-admin")
	require.NoError(t, err)
	assert.Equal(t, "10.255.0.1:8728", first.Addr())

	second, err := manager.Connect(context.Background(), addr, "core-admin")
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.Len(t, dials, 1)
	assert.Equal(t, "10.255.0.1:8728 as admin", dials[0])

	_, err = manager.Connect(context.Background(), netip.MustParseAddr("10.255.0.2"), "core-admin")
	require.NoError(t, err)
	assert.Len(t, dials, 2)
}

func TestManagerRejectsUnknownProfile(t *testing.T) {
	manager := testManager(func(context.Context, string, string, string) (apiConn, func(), error) {
		t.Fatal("dial must not run for an unknown profile")

		return nil, nil, nil
	})

	_, err := manager.Connect(context.Background(), netip.MustParseAddr("10.255.0.1"), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestManagerDiscardForcesRedial(t *testing.T) {
	var dials, closed int

	manager := testManager(func(context.Context, string, string, string) (apiConn, func(), error) {
		dials++

		return &fakeAPI{}, func() { closed++ }, nil
	})

	addr := netip.MustParseAddr("10.255.0.1")

	_, err := manager.Connect(context.Background(), addr, "core-admin")
	require.NoError(t, err)

	manager.Discard(addr, "core-admin")
	assert.Equal(t, 1, closed)

	_, err = manager.Connect(context.Background(), addr, "core-admin")
	require.NoError(t, err)
	assert.Equal(t, 2, dials)
}

func TestManagerCloseClosesAllSessions(t *testing.T) {
	var closed int

	manager := testManager(func(context.Context, string, string, string) (apiConn, func(), error) {
		return &fakeAPI{}, func() { closed++ }, nil
	})

	_, err := manager.Connect(context.Background(), netip.MustParseAddr("10.255.0.1"), "core-admin")
	require.NoError(t, err)

	_, err = manager.Connect(context.Background(), netip.MustParseAddr("10.255.0.2"), "core-admin")
	require.NoError(t, err)

	manager.Close()
	assert.Equal(t, 2, closed)

	// A closed manager dials fresh on the next use.
	_, err = manager.Connect(context.Background(), netip.MustParseAddr("10.255.0.1"), "core-admin")
	require.NoError(t, err)
}

func TestManagerDialFailureIsNotCached(t *testing.T) {
	errDial := errors.New("connection refused")

	var attempts int

	manager := testManager(func(context.Context, string, string, string) (apiConn, func(), error) {
		attempts++
		if attempts == 1 {
			return nil, nil, errDial
		}

		return &fakeAPI{}, func() {}, nil
	})

	addr := netip.MustParseAddr("10.255.0.1")

	_, err := manager.Connect(context.Background(), addr, "core-admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, errDial)

	_, err = manager.Connect(context.Background(), addr, "core-admin")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
