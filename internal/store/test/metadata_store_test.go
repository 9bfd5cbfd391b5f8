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

// Package store_test contains unit tests for the local persistence layer.
// This file tests the history metadata store: ordering, durability across
// reopen, and the saved-prompt queries that feed the suggestion engine.
package store_test

import (
	"path/filepath"
	"testing"

	"github.com/aisocialninja/anime-studio-server/internal/core/model"
	"github.com/aisocialninja/anime-studio-server/internal/store"
	"github.com/stretchr/testify/assert"
)

// newRecord builds a history record with a fixed id so tests can refer to
// it without relying on the generated value.
func newRecord(id string, prompt string) *model.HistoryMetadata {
	record := model.NewHistoryMetadata(prompt, model.Quality720p, "", "")
	record.Id = id
	return record
}

// TestMetadataStoreListsNewestFirst verifies insertion order: new records
// are prepended so List always returns newest first.
func TestMetadataStoreListsNewestFirst(t *testing.T) {
	metadata := store.NewMetadataStore(filepath.Join(t.TempDir(), "history.json"))

	assert.NoError(t, metadata.Upsert(newRecord("vid_1", "first")))
	assert.NoError(t, metadata.Upsert(newRecord("vid_2", "second")))
	assert.NoError(t, metadata.Upsert(newRecord("vid_3", "third")))

	records, err := metadata.List()
	assert.NoError(t, err)
	assert.Equal(t, 3, len(records))
	assert.Equal(t, "vid_3", records[0].Id)
	assert.Equal(t, "vid_1", records[2].Id)
}

// TestMetadataStoreUpsertReplacesInPlace verifies that writing an existing
// id updates the record without changing its position.
func TestMetadataStoreUpsertReplacesInPlace(t *testing.T) {
	metadata := store.NewMetadataStore(filepath.Join(t.TempDir(), "history.json"))

	assert.NoError(t, metadata.Upsert(newRecord("vid_1", "first")))
	assert.NoError(t, metadata.Upsert(newRecord("vid_2", "second")))

	updated := newRecord("vid_1", "first, revised")
	assert.NoError(t, metadata.Upsert(updated))

	records, err := metadata.List()
	assert.NoError(t, err)
	assert.Equal(t, 2, len(records))
	assert.Equal(t, "vid_2", records[0].Id)
	assert.Equal(t, "first, revised", records[1].Prompt)
}

// TestMetadataStoreSurvivesReopen verifies durability: a second store
// instance pointed at the same file sees everything the first wrote.
func TestMetadataStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	first := store.NewMetadataStore(path)
	assert.NoError(t, first.Upsert(newRecord("vid_1", "persisted")))

	second := store.NewMetadataStore(path)
	record, found, err := second.Get("vid_1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "persisted", record.Prompt)
}

// TestMetadataStoreMissingFileIsEmpty verifies that a store pointed at a
// file that does not exist yet starts out empty instead of failing.
func TestMetadataStoreMissingFileIsEmpty(t *testing.T) {
	metadata := store.NewMetadataStore(filepath.Join(t.TempDir(), "nope", "history.json"))

	records, err := metadata.List()
	assert.NoError(t, err)
	assert.Equal(t, 0, len(records))
}

// TestMetadataStoreRemoveAndClear verifies removal semantics, including
// the no-op removal of an unknown id.
func TestMetadataStoreRemoveAndClear(t *testing.T) {
	metadata := store.NewMetadataStore(filepath.Join(t.TempDir(), "history.json"))

	assert.NoError(t, metadata.Upsert(newRecord("vid_1", "one")))
	assert.NoError(t, metadata.Upsert(newRecord("vid_2", "two")))

	assert.NoError(t, metadata.Remove("vid_1"))
	assert.NoError(t, metadata.Remove("vid_unknown"))

	records, err := metadata.List()
	assert.NoError(t, err)
	assert.Equal(t, 1, len(records))

	assert.NoError(t, metadata.Clear())
	records, err = metadata.List()
	assert.NoError(t, err)
	assert.Equal(t, 0, len(records))
}

// TestMetadataStoreReturnsDetachedRecords verifies that records handed out
// by List and Get are copies: a caller serializing a listing must not
// observe a concurrent MarkSaved, and scribbling on a returned record must
// not corrupt the store.
func TestMetadataStoreReturnsDetachedRecords(t *testing.T) {
	metadata := store.NewMetadataStore(filepath.Join(t.TempDir(), "history.json"))
	assert.NoError(t, metadata.Upsert(newRecord("vid_1", "a lighthouse storm")))

	listed, err := metadata.List()
	assert.NoError(t, err)
	fetched, found, err := metadata.Get("vid_1")
	assert.NoError(t, err)
	assert.True(t, found)

	_, found, err = metadata.MarkSaved("vid_1")
	assert.NoError(t, err)
	assert.True(t, found)

	assert.False(t, listed[0].IsSaved)
	assert.False(t, fetched.IsSaved)

	// Mutating a returned record leaves the stored one untouched.
	fetched.Prompt = "scribbled over"
	stored, found, err := metadata.Get("vid_1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a lighthouse storm", stored.Prompt)
	assert.True(t, stored.IsSaved)
}

// TestMetadataStoreMarkSaved verifies the one-way saved flag, its
// idempotency, and the saved-prompt queries built on top of it.
func TestMetadataStoreMarkSaved(t *testing.T) {
	metadata := store.NewMetadataStore(filepath.Join(t.TempDir(), "history.json"))

	assert.NoError(t, metadata.Upsert(newRecord("vid_1", "a shrine fox at dusk")))
	assert.NoError(t, metadata.Upsert(newRecord("vid_2", "mecha in the rain")))

	record, found, err := metadata.MarkSaved("vid_1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.True(t, record.IsSaved)

	// Saving again is a no-op, not an error.
	record, found, err = metadata.MarkSaved("vid_1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.True(t, record.IsSaved)

	// An unknown id reports not-found without an error.
	_, found, err = metadata.MarkSaved("vid_unknown")
	assert.NoError(t, err)
	assert.False(t, found)

	count, err := metadata.SavedCount()
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.NoError(t, metadata.Upsert(func() *model.HistoryMetadata {
		r := newRecord("vid_3", "a whale made of stars")
		r.IsSaved = true
		return r
	}()))

	prompts, err := metadata.SavedPrompts()
	assert.NoError(t, err)
	assert.Equal(t, 2, len(prompts))
	assert.Contains(t, prompts, "a shrine fox at dusk")
	assert.Contains(t, prompts, "a whale made of stars")
}
