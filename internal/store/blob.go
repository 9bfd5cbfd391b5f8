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

// Package store provides the durable local persistence layer for generated
// videos. This file implements the blob side: one MP4 file per history id
// under a dedicated directory. Initialization is lazy and idempotent — the
// first operation creates the directory, and an initialization failure is
// cached and returned by every subsequent operation rather than retried.
//
// Writes go through a temp-file-plus-rename so a crash mid-write can never
// leave a half-written video under a live key. That gives per-key atomicity;
// the pairing of a blob with its metadata record is coordinated one level
// up, by the history writer and the history service.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const blobExtension = ".mp4"

// BlobStore stores generated video content on the local filesystem, one
// file per id. All methods are safe for concurrent use; concurrent writers
// to the same id rely on rename atomicity, last writer wins.
type BlobStore struct {
	dir string

	initOnce sync.Once
	initErr  error
}

// NewBlobStore creates a blob store rooted at dir. No filesystem work
// happens until the first operation.
func NewBlobStore(dir string) *BlobStore {
	return &BlobStore{dir: dir}
}

// ensure performs the one-time directory setup. The result is cached so
// repeat callers observe the same outcome as the first.
func (s *BlobStore) ensure() error {
	s.initOnce.Do(func() {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			s.initErr = &StorageError{Op: "init", Err: err}
		}
	})
	return s.initErr
}

// path maps an id to its backing file, rejecting ids that could escape the
// store directory.
func (s *BlobStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", &StorageError{Op: "resolve", Key: id, Err: errors.New("invalid blob id")}
	}
	return filepath.Join(s.dir, id+blobExtension), nil
}

// Save stores data under id, overwriting any existing blob for that id.
func (s *BlobStore) Save(id string, data []byte) error {
	if err := s.ensure(); err != nil {
		return err
	}
	dst, err := s.path(id)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "blob-*")
	if err != nil {
		return &StorageError{Op: "save", Key: id, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return &StorageError{Op: "save", Key: id, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return &StorageError{Op: "save", Key: id, Err: err}
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return &StorageError{Op: "save", Key: id, Err: err}
	}
	return nil
}

// Get returns the blob stored under id. A missing key is not an error: the
// found flag is false and err is nil.
func (s *BlobStore) Get(id string) (data []byte, found bool, err error) {
	if err := s.ensure(); err != nil {
		return nil, false, err
	}
	p, err := s.path(id)
	if err != nil {
		return nil, false, err
	}
	data, readErr := os.ReadFile(p)
	if readErr != nil {
		if errors.Is(readErr, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &StorageError{Op: "get", Key: id, Err: readErr}
	}
	return data, true, nil
}

// Delete removes the blob stored under id. Deleting a missing key is a
// no-op, not an error.
func (s *BlobStore) Delete(id string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "delete", Key: id, Err: err}
	}
	return nil
}

// Clear removes every blob in the store.
func (s *BlobStore) Clear() error {
	if err := s.ensure(); err != nil {
		return err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), blobExtension) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return &StorageError{Op: "clear", Err: fmt.Errorf("removing %s: %w", entry.Name(), err)}
		}
	}
	return nil
}
