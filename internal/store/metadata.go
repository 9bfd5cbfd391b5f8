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

package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/aisocialninja/anime-studio-server/internal/core/model"
)

// MetadataStore keeps the generation history records in a single JSON file,
// ordered newest first. The full record set is held in memory behind a
// mutex; every mutation rewrites the file through a temp-file-plus-rename.
// Load happens lazily on first use and a load failure is cached. The store
// owns its records: reads and writes exchange copies, so callers can hold
// a returned record while other goroutines mutate the store.
type MetadataStore struct {
	path string

	mu       sync.Mutex
	loadOnce sync.Once
	loadErr  error
	records  []*model.HistoryMetadata
}

// NewMetadataStore creates a metadata store backed by the JSON file at path.
func NewMetadataStore(path string) *MetadataStore {
	return &MetadataStore{path: path}
}

func (s *MetadataStore) ensure() error {
	s.loadOnce.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				s.records = nil
				return
			}
			s.loadErr = &StorageError{Op: "load", Err: err}
			return
		}
		var records []*model.HistoryMetadata
		if err := json.Unmarshal(data, &records); err != nil {
			s.loadErr = &StorageError{Op: "load", Err: err}
			return
		}
		s.records = records
	})
	return s.loadErr
}

// persist writes the in-memory record set to disk. Callers must hold s.mu.
func (s *MetadataStore) persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return &StorageError{Op: "persist", Err: err}
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Op: "persist", Err: err}
	}
	tmp, err := os.CreateTemp(dir, "history-*")
	if err != nil {
		return &StorageError{Op: "persist", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return &StorageError{Op: "persist", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return &StorageError{Op: "persist", Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return &StorageError{Op: "persist", Err: err}
	}
	return nil
}

// clone returns a detached copy of a record.
func clone(record *model.HistoryMetadata) *model.HistoryMetadata {
	out := *record
	return &out
}

// List returns detached copies of all history records, newest first.
func (s *MetadataStore) List() ([]*model.HistoryMetadata, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.HistoryMetadata, len(s.records))
	for i, record := range s.records {
		out[i] = clone(record)
	}
	return out, nil
}

// Get returns a detached copy of the record with the given id. A missing
// id is reported via the found flag, not an error.
func (s *MetadataStore) Get(id string) (*model.HistoryMetadata, bool, error) {
	if err := s.ensure(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.Id == id {
			return clone(record), true, nil
		}
	}
	return nil, false, nil
}

// Upsert inserts record at the head of the history, or replaces the
// existing record with the same id in place.
func (s *MetadataStore) Upsert(record *model.HistoryMetadata) error {
	if err := s.ensure(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := clone(record)
	replaced := false
	for i, existing := range s.records {
		if existing.Id == stored.Id {
			s.records[i] = stored
			replaced = true
			break
		}
	}
	if !replaced {
		s.records = append([]*model.HistoryMetadata{stored}, s.records...)
	}
	return s.persist()
}

// Remove deletes the record with the given id. Removing a missing id is a
// no-op.
func (s *MetadataStore) Remove(id string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, record := range s.records {
		if record.Id == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return s.persist()
		}
	}
	return nil
}

// Clear deletes every record.
func (s *MetadataStore) Clear() error {
	if err := s.ensure(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return nil
	}
	s.records = nil
	return s.persist()
}

// MarkSaved flags the record with the given id as saved and returns a
// detached copy. The operation is idempotent; marking an already-saved
// record persists nothing. The found flag reports whether the id exists.
func (s *MetadataStore) MarkSaved(id string) (*model.HistoryMetadata, bool, error) {
	if err := s.ensure(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.Id == id {
			if record.IsSaved {
				return clone(record), true, nil
			}
			record.IsSaved = true
			if err := s.persist(); err != nil {
				record.IsSaved = false
				return nil, false, err
			}
			return clone(record), true, nil
		}
	}
	return nil, false, nil
}

// SavedCount returns the number of records flagged as saved. The suggestion
// engine keys its cache on this count.
func (s *MetadataStore) SavedCount() (int, error) {
	if err := s.ensure(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, record := range s.records {
		if record.IsSaved {
			count++
		}
	}
	return count, nil
}

// SavedPrompts returns the prompts of saved records, newest first.
func (s *MetadataStore) SavedPrompts() ([]string, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var prompts []string
	for _, record := range s.records {
		if record.IsSaved {
			prompts = append(prompts, record.Prompt)
		}
	}
	return prompts, nil
}
