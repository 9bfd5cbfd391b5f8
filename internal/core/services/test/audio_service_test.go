// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package services_test contains unit tests for the application services.
// This file tests the audio library service against a local HTTP server
// standing in for the track CDN.
package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aisocialninja/anime-studio-server/internal/cloud"
	"github.com/aisocialninja/anime-studio-server/internal/core/services"
	"github.com/stretchr/testify/assert"
)

// TestAudioServiceListTracks verifies the catalog listing returns a copy
// in configured order.
func TestAudioServiceListTracks(t *testing.T) {
	library := []cloud.AudioTrack{
		{Name: "Cinematic Epic", URL: "https://example.com/epic.mp3"},
		{Name: "Peaceful Morning", URL: "https://example.com/morning.mp3"},
	}
	service := services.NewAudioService(library, 0)

	tracks := service.ListTracks()
	assert.Equal(t, library, tracks)

	// Mutating the returned slice must not touch the service's library.
	tracks[0].Name = "changed"
	assert.Equal(t, "Cinematic Epic", service.ListTracks()[0].Name)
}

// TestAudioServiceFetchTrack verifies a successful download keyed by the
// track's display name.
func TestAudioServiceFetchTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	service := services.NewAudioService([]cloud.AudioTrack{{Name: "Synthwave Drive", URL: server.URL}}, 0)

	audio, err := service.FetchTrack(context.Background(), "Synthwave Drive")
	assert.NoError(t, err)
	assert.Equal(t, "Synthwave Drive", audio.Name)
	assert.Equal(t, []byte("mp3-bytes"), audio.Data)
}

// TestAudioServiceFetchTrackErrors verifies the failure modes: an unknown
// name, a failing upstream, and a track that exceeds the size cap.
func TestAudioServiceFetchTrackErrors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	big := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer big.Close()

	service := services.NewAudioService([]cloud.AudioTrack{
		{Name: "Broken", URL: failing.URL},
		{Name: "Huge", URL: big.URL},
	}, 16)

	_, err := service.FetchTrack(context.Background(), "No Such Track")
	assert.Error(t, err)

	_, err = service.FetchTrack(context.Background(), "Broken")
	assert.Error(t, err)

	_, err = service.FetchTrack(context.Background(), "Huge")
	assert.ErrorContains(t, err, "exceeds")
}
