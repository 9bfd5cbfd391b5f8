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

// Package model defines the core data structures for the application.
// This file contains the persistent history record that describes one
// generated video. The record is intentionally small: the video content
// itself lives in the blob store under the same id, and the two are
// created and deleted together by the history service.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VideoQuality is the resolution tier requested for a generation. Only the
// two tiers supported by the video model are valid.
type VideoQuality string

const (
	Quality720p  VideoQuality = "720p"
	Quality1080p VideoQuality = "1080p"
)

// ParseVideoQuality validates a user-supplied quality string and returns the
// typed value, defaulting to 720p for an empty input.
func ParseVideoQuality(in string) (VideoQuality, error) {
	switch VideoQuality(in) {
	case Quality720p, "":
		return Quality720p, nil
	case Quality1080p:
		return Quality1080p, nil
	}
	return "", fmt.Errorf("unknown video quality %q", in)
}

// Resolution returns the natural-language resolution phrase used when
// prompting the video model for this tier.
func (q VideoQuality) Resolution() string {
	if q == Quality1080p {
		return "high-definition (1080p)"
	}
	return "standard-definition (720p)"
}

// HistoryMetadata is one record per generated video. Every field except
// IsSaved is immutable after creation; IsSaved flips to true exactly once,
// when the user explicitly saves (downloads) the item. The Id doubles as the
// key of the paired video blob in the blob store.
type HistoryMetadata struct {
	Id                       string       `json:"id"`
	Prompt                   string       `json:"prompt"`
	Timestamp                int64        `json:"timestamp"` // Creation time in Unix milliseconds.
	Quality                  VideoQuality `json:"quality"`
	VisualReferenceThumbnail string       `json:"visualReferenceThumbnail,omitempty"` // Data URL of the thumbnail preview.
	AudioName                string       `json:"audioName,omitempty"`
	IsSaved                  bool         `json:"isSaved"`
}

// NewHistoryMetadata creates a history record for a just-generated video.
// The id is derived from the creation timestamp with a short random suffix
// so that two generations finishing in the same millisecond cannot collide.
func NewHistoryMetadata(prompt string, quality VideoQuality, thumbnail string, audioName string) *HistoryMetadata {
	now := time.Now()
	return &HistoryMetadata{
		Id:                       fmt.Sprintf("vid_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
		Prompt:                   prompt,
		Timestamp:                now.UnixMilli(),
		Quality:                  quality,
		VisualReferenceThumbnail: thumbnail,
		AudioName:                audioName,
		IsSaved:                  false,
	}
}
