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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/netfabric/pkg/logger"
)

var errMissingURL = errors.New("url is required")

type testServiceConfig struct {
	URL      string        `json:"url"`
	Token    string        `json:"token"`
	Interval time.Duration `json:"interval"`
	Tags     []string      `json:"tags"`
}

func (c *testServiceConfig) Validate() error {
	if c.URL == "" {
		return errMissingURL
	}

	if c.Interval == 0 {
		c.Interval = time.Minute
	}

	return nil
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "service.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectError bool
		check       func(t *testing.T, cfg *testServiceConfig)
	}{
		{
			name:    "valid config",
			content: `{"url": "https://netbox.example.com", "token": "abc", "tags": ["edge"]}`,
			check: func(t *testing.T, cfg *testServiceConfig) {
				t.Helper()
				assert.Equal(t, "https://netbox.example.com", cfg.URL)
				assert.Equal(t, []string{"edge"}, cfg.Tags)
				assert.Equal(t, time.Minute, cfg.Interval, "Validate should default the interval")
			},
		},
		{
			name:        "invalid json",
			content:     `{"url": `,
			expectError: true,
		},
		{
			name:        "validator rejects",
			content:     `{"token": "abc"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, tt.content)

			var cfg testServiceConfig

			err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg)

			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, &cfg)
			}
		})
	}
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	var cfg testServiceConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "/nonexistent/service.json", &cfg)
	require.Error(t, err)
}

func TestLoadAndValidateInvalidSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "carrier-pigeon")

	var cfg testServiceConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "ignored.json", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestLoadAndValidateFromEnv(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("NETFABRIC_URL", "https://netbox.example.com")
	t.Setenv("NETFABRIC_TOKEN", "s3cret")
	t.Setenv("NETFABRIC_INTERVAL", "30s")
	t.Setenv("NETFABRIC_TAGS", "edge, core")

	var cfg testServiceConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg)
	require.NoError(t, err)

	assert.Equal(t, "https://netbox.example.com", cfg.URL)
	assert.Equal(t, "s3cret", cfg.Token)
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, []string{"edge", "core"}, cfg.Tags)
}

func TestLoadAndValidateFromEnvJSON(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("NETFABRIC_CONFIG_JSON", `{"url": "https://inv.example.com", "interval": 60000000000}`)

	var cfg testServiceConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg)
	require.NoError(t, err)

	assert.Equal(t, "https://inv.example.com", cfg.URL)
	assert.Equal(t, time.Minute, cfg.Interval)
}
