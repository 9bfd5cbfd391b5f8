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

// Package model_test contains unit tests for the data models defined in the
// model package. This file tests the constructor and initial state of the
// persistent history record.
package model_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aisocialninja/anime-studio-server/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestNewHistoryMetadata tests the constructor for the HistoryMetadata struct.
// It verifies the id shape, the creation timestamp, and that a fresh record
// always starts out unsaved.
func TestNewHistoryMetadata(t *testing.T) {
	record := model.NewHistoryMetadata("a dragon over a neon city", model.Quality1080p, "data:image/jpeg;base64,xxxx", "Cinematic Epic")

	// The id carries the creation timestamp plus a random suffix.
	assert.True(t, strings.HasPrefix(record.Id, "vid_"))
	// The timestamp is in Unix milliseconds and very recent.
	assert.WithinDuration(t, time.Now(), time.UnixMilli(record.Timestamp), time.Second)

	assert.Equal(t, "a dragon over a neon city", record.Prompt)
	assert.Equal(t, model.Quality1080p, record.Quality)
	assert.Equal(t, "data:image/jpeg;base64,xxxx", record.VisualReferenceThumbnail)
	assert.Equal(t, "Cinematic Epic", record.AudioName)
	assert.False(t, record.IsSaved)
}

// TestNewHistoryMetadataIdsAreUnique ensures two records created back to
// back cannot collide, even within the same millisecond.
func TestNewHistoryMetadataIdsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		record := model.NewHistoryMetadata("p", model.Quality720p, "", "")
		assert.False(t, seen[record.Id])
		seen[record.Id] = true
	}
}
