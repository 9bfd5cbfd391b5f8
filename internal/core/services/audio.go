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

// Package services contains the business logic sitting between the HTTP
// handlers and the stores. This file defines the AudioService, which owns
// the built-in background audio library: listing the tracks and fetching a
// track's content from its hosted URL when a generation selects it.
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aisocialninja/anime-studio-server/internal/cloud"
	"github.com/aisocialninja/anime-studio-server/internal/core/model"
)

// AudioService serves the configured background audio library.
type AudioService struct {
	library  []cloud.AudioTrack
	maxBytes int64
	client   *http.Client
}

// NewAudioService is the constructor for the AudioService.
//
// Inputs:
//   - library: The configured audio tracks.
//   - maxBytes: The cap on a fetched track's size. Zero means no cap.
//
// Outputs:
//   - *AudioService: A pointer to the newly created service.
func NewAudioService(library []cloud.AudioTrack, maxBytes int64) *AudioService {
	return &AudioService{
		library:  library,
		maxBytes: maxBytes,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// ListTracks returns the library entries in configured order.
func (s *AudioService) ListTracks() []cloud.AudioTrack {
	out := make([]cloud.AudioTrack, len(s.library))
	copy(out, s.library)
	return out
}

// FetchTrack downloads a library track by name for use in a generation.
//
// Inputs:
//   - ctx: The context for the request.
//   - name: The track's display name as listed by ListTracks.
//
// Outputs:
//   - *model.AudioSelection: The track name and its audio content.
//   - error: An error when the name is unknown or the download fails.
func (s *AudioService) FetchTrack(ctx context.Context, name string) (*model.AudioSelection, error) {
	var track *cloud.AudioTrack
	for i := range s.library {
		if s.library[i].Name == name {
			track = &s.library[i]
			break
		}
	}
	if track == nil {
		return nil, fmt.Errorf("unknown audio track %q", name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for audio track %q: %w", name, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching audio track %q: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching audio track %q: unexpected status %s", name, resp.Status)
	}

	reader := io.Reader(resp.Body)
	if s.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, s.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading audio track %q: %w", name, err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("audio track %q exceeds the %d byte limit", name, s.maxBytes)
	}
	return &model.AudioSelection{Name: track.Name, Data: data}, nil
}
