//go:build !js
// +build !js

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gopxl/beep/wav"
	"github.com/simukka/soundscape/audio"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	srv := httptest.NewServer(NewServer(audio.DefaultConfig, logger).Routes(t.TempDir()))
	t.Cleanup(srv.Close)
	return srv, hook
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServer_Index(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, indexHTML, body)

	resp, body = get(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))
}

func TestServer_Profiles(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/api/profiles")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Profiles []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Profiles, len(audio.SoundProfiles))
	assert.Equal(t, "birds", payload.Profiles[0].ID)
	assert.Equal(t, "Birdsong", payload.Profiles[0].Name)
}

func TestServer_Bands(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := get(t, srv.URL+"/api/bands")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Bands []struct {
			ID      string  `json:"id"`
			Min     float64 `json:"min"`
			Max     float64 `json:"max"`
			Default float64 `json:"default"`
		} `json:"bands"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Bands, 5)
	assert.Equal(t, "theta", payload.Bands[1].ID)
	assert.Equal(t, 4.0, payload.Bands[1].Min)
	assert.Equal(t, 8.0, payload.Bands[1].Max)
	assert.Equal(t, 6.0, payload.Bands[1].Default)
}

// TestServer_Render tests that rendered soundscapes come back as decodable WAV
func TestServer_Render(t *testing.T) {
	srv, hook := newTestServer(t)

	for _, query := range []string{
		"sound=ocean&seconds=0.5&seed=3",
		"sound=thunder&seconds=0.5&volume=0.8",
		"band=theta&beat=100&seconds=0.5",
	} {
		t.Run(query, func(t *testing.T) {
			resp, body := get(t, srv.URL+"/api/render?"+query)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			assert.Equal(t, "audio/wav", resp.Header.Get("Content-Type"))

			streamer, format, err := wav.Decode(bytes.NewReader(body))
			require.NoError(t, err)
			defer streamer.Close()
			assert.Equal(t, 2, format.NumChannels)
			assert.Equal(t, 22050, streamer.Len())
		})
	}

	var rendered int
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Rendered" {
			rendered++
		}
	}
	assert.Equal(t, 3, rendered)
}

func TestServer_Render_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		query  string
		status int
		msg    string
	}{
		{"", http.StatusBadRequest, "required"},
		{"sound=ocean&seconds=0", http.StatusBadRequest, "seconds"},
		{"sound=ocean&seconds=301", http.StatusBadRequest, "seconds"},
		{"sound=ocean&seconds=NaN", http.StatusBadRequest, "seconds"},
		{"sound=ocean&seconds=Inf", http.StatusBadRequest, "seconds"},
		{"sound=ocean&volume=loud", http.StatusBadRequest, "volume"},
		{"sound=ocean&seed=-4", http.StatusBadRequest, "seed"},
		{"sound=volcano&seconds=1", http.StatusNotFound, "unknown sound profile"},
		{"band=epsilon&seconds=1", http.StatusNotFound, "unknown binaural band"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := get(t, srv.URL+"/api/render?"+tt.query)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.True(t, strings.Contains(string(body), tt.msg), "body %q", body)
		})
	}

	resp, err := http.Post(srv.URL+"/api/render?sound=ocean", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
