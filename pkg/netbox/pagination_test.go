package netbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFollowsPagination(t *testing.T) {
	var (
		server    *httptest.Server
		mu        sync.Mutex
		requested = make(map[string]bool)
	)

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token "+testToken {
			http.Error(w, "missing/invalid auth", http.StatusUnauthorized)
			return
		}

		if r.URL.Path != devicesPath {
			http.NotFound(w, r)
			return
		}

		offset := r.URL.Query().Get("offset")
		if offset == "" {
			offset = "0"
		}

		mu.Lock()
		requested[offset] = true
		mu.Unlock()

		switch offset {
		case "0":
			writePage(t, w, deviceResults(1, 50), fmt.Sprintf("%s%s?limit=50&offset=50", server.URL, devicesPath))
		case "50":
			writePage(t, w, deviceResults(51, 75), "")
		default:
			http.Error(w, "unexpected offset", http.StatusBadRequest)
		}
	}))
	t.Cleanup(server.Close)

	devices, err := collect[apiDevice](context.Background(), newTestClient(server.URL), devicesPath)
	require.NoError(t, err)
	require.Len(t, devices, 75)
	assert.Equal(t, "device-1", devices[0].Name)
	assert.Equal(t, "device-75", devices[74].Name)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, requested["0"], "first page was never requested")
	assert.True(t, requested["50"], "second page was never requested")
}

func TestCollectPropagatesMidPageFailure(t *testing.T) {
	var server *httptest.Server

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "" {
			writePage(t, w, deviceResults(1, 50), fmt.Sprintf("%s%s?limit=50&offset=50", server.URL, devicesPath))
			return
		}

		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	_, err := collect[apiDevice](context.Background(), newTestClient(server.URL), devicesPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnexpectedStatusCode)
	assert.Contains(t, err.Error(), devicesPath)
}

func TestCollectEmptyCollection(t *testing.T) {
	server := newFixtureServer(t, nil)

	devices, err := collect[apiDevice](context.Background(), newTestClient(server.URL), devicesPath)
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func writePage(t *testing.T, w http.ResponseWriter, results []any, next string) {
	t.Helper()

	page := map[string]any{
		"count":    len(results),
		"next":     nil,
		"previous": nil,
		"results":  results,
	}
	if next != "" {
		page["next"] = next
	}

	require.NoError(t, json.NewEncoder(w).Encode(page))
}

func deviceResults(first, last int) []any {
	results := make([]any, 0, last-first+1)
	for id := first; id <= last; id++ {
		results = append(results, map[string]any{
			"id":   id,
			"name": fmt.Sprintf("device-%d", id),
		})
	}

	return results
}
