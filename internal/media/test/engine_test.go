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

// Package media_test contains unit tests for the media package. This file
// tests the engine's scratch-space lifecycle without a real ffmpeg binary:
// /bin/false stands in for the tools, so every invocation takes the error
// path. Scratch files must be reclaimed per call, not held until Close.
package media_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/aisocialninja/anime-studio-server/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newScratchRootedEngine builds an engine whose scratch directory lives
// under a test-owned temp root, so the test can inspect what the engine
// leaves behind.
func newScratchRootedEngine(t *testing.T) (*media.Engine, string) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("TMPDIR", root)
	engine, err := media.NewEngine("/bin/false", "/bin/false")
	require.NoError(t, err)
	return engine, root
}

// countRegularFiles walks root and counts regular files, ignoring
// directories.
func countRegularFiles(t *testing.T, root string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestEngineReclaimsScratchAfterFailedCalls(t *testing.T) {
	engine, root := newScratchRootedEngine(t)
	defer func() { assert.NoError(t, engine.Close()) }()
	ctx := context.Background()
	clip := []byte("not a real clip")

	for i := 0; i < 3; i++ {
		_, err := engine.Stitch(ctx, [][]byte{clip, clip, clip})
		assert.Error(t, err)
	}
	_, err := engine.MergeAudio(ctx, clip, []byte("not real audio"))
	assert.Error(t, err)
	_, err = engine.Duration(ctx, clip)
	assert.Error(t, err)
	_, err = engine.ExtractFrame(ctx, clip, media.ReferenceFrameFraction)
	assert.Error(t, err)

	assert.Equal(t, 0, countRegularFiles(t, root),
		"engine calls must remove their scratch files before returning")
}

func TestEngineCloseRemovesScratchDir(t *testing.T) {
	engine, root := newScratchRootedEngine(t)

	_, err := engine.Stitch(context.Background(), [][]byte{[]byte("clip")})
	assert.Error(t, err)

	require.NoError(t, engine.Close())
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
