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
// This file tests the video blob store against a throwaway directory.
package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aisocialninja/anime-studio-server/internal/store"
	"github.com/stretchr/testify/assert"
)

// TestBlobStoreRoundTrip verifies that a saved blob can be read back intact
// and that the store reports a missing key without an error.
func TestBlobStoreRoundTrip(t *testing.T) {
	blobs := store.NewBlobStore(filepath.Join(t.TempDir(), "videos"))

	payload := []byte("not really an mp4, but the store does not care")
	assert.NoError(t, blobs.Save("vid_1", payload))

	data, found, err := blobs.Get("vid_1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload, data)

	// A missing key is not an error condition.
	data, found, err = blobs.Get("vid_missing")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

// TestBlobStoreOverwrite verifies that saving under an existing key
// replaces the previous content.
func TestBlobStoreOverwrite(t *testing.T) {
	blobs := store.NewBlobStore(t.TempDir())

	assert.NoError(t, blobs.Save("vid_1", []byte("first")))
	assert.NoError(t, blobs.Save("vid_1", []byte("second")))

	data, found, err := blobs.Get("vid_1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("second"), data)
}

// TestBlobStoreDelete verifies removal, including the no-op delete of a
// key that was never stored.
func TestBlobStoreDelete(t *testing.T) {
	blobs := store.NewBlobStore(t.TempDir())

	assert.NoError(t, blobs.Save("vid_1", []byte("content")))
	assert.NoError(t, blobs.Delete("vid_1"))

	_, found, err := blobs.Get("vid_1")
	assert.NoError(t, err)
	assert.False(t, found)

	// Deleting again must not fail.
	assert.NoError(t, blobs.Delete("vid_1"))
}

// TestBlobStoreClear verifies that clearing removes every stored blob but
// leaves the directory usable for new writes.
func TestBlobStoreClear(t *testing.T) {
	dir := t.TempDir()
	blobs := store.NewBlobStore(dir)

	assert.NoError(t, blobs.Save("vid_1", []byte("one")))
	assert.NoError(t, blobs.Save("vid_2", []byte("two")))
	assert.NoError(t, blobs.Clear())

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(entries))

	// The store keeps working after a clear.
	assert.NoError(t, blobs.Save("vid_3", []byte("three")))
	_, found, err := blobs.Get("vid_3")
	assert.NoError(t, err)
	assert.True(t, found)
}

// TestBlobStoreRejectsPathTraversal ensures ids cannot escape the blob
// directory.
func TestBlobStoreRejectsPathTraversal(t *testing.T) {
	blobs := store.NewBlobStore(t.TempDir())

	assert.Error(t, blobs.Save("../escape", []byte("nope")))
	assert.Error(t, blobs.Save("a/b", []byte("nope")))

	_, _, err := blobs.Get("..")
	assert.Error(t, err)
}
