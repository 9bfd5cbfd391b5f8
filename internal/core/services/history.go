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
// handlers and the stores. This file defines the HistoryService, which
// owns the paired lifecycle of video blobs and their metadata records: the
// two stores are always mutated together so no record ever points at a
// missing video.
package services

import (
	"context"
	"log/slog"

	"github.com/aisocialninja/anime-studio-server/internal/cloud"
	"github.com/aisocialninja/anime-studio-server/internal/core/model"
	"github.com/aisocialninja/anime-studio-server/internal/store"
)

// HistoryService exposes the read and mutation operations over the
// generation history. The write path of a new generation goes through the
// pipeline's history writer; everything after that lives here.
type HistoryService struct {
	Blobs    *store.BlobStore     // The video blob store.
	Metadata *store.MetadataStore // The history metadata store.
	Archiver *cloud.Archiver      // Optional GCS archiver for saved videos. Nil disables archiving.
}

// List returns the full history, newest first.
func (s *HistoryService) List(_ context.Context) ([]*model.HistoryMetadata, error) {
	return s.Metadata.List()
}

// GetVideo returns the stored video for a history item. The found flag is
// false when the id has no record or no blob.
func (s *HistoryService) GetVideo(_ context.Context, id string) ([]byte, bool, error) {
	if _, found, err := s.Metadata.Get(id); err != nil || !found {
		return nil, false, err
	}
	return s.Blobs.Get(id)
}

// Delete removes a history item and its video. The metadata record goes
// first: once it is gone no reader can reach the blob, so a failed blob
// delete leaves only an unreferenced file behind.
func (s *HistoryService) Delete(_ context.Context, id string) error {
	if err := s.Metadata.Remove(id); err != nil {
		return err
	}
	return s.Blobs.Delete(id)
}

// Clear removes the entire history and every stored video.
func (s *HistoryService) Clear(_ context.Context) error {
	if err := s.Metadata.Clear(); err != nil {
		return err
	}
	return s.Blobs.Clear()
}

// Save flags a history item as saved, protecting it from casual clearing
// and feeding the suggestion engine. When an archive bucket is configured
// the video is also copied to it, best effort: an archive failure is
// logged but never fails the save, since the local copy is authoritative.
//
// Outputs:
//   - *model.HistoryMetadata: The updated record.
//   - bool: False when the id does not exist.
//   - error: A storage error from the local metadata write.
func (s *HistoryService) Save(ctx context.Context, id string) (*model.HistoryMetadata, bool, error) {
	record, found, err := s.Metadata.MarkSaved(id)
	if err != nil || !found {
		return nil, found, err
	}

	if s.Archiver.Enabled() {
		video, blobFound, blobErr := s.Blobs.Get(id)
		if blobErr != nil || !blobFound {
			slog.Warn("skipping archive of saved video, blob unavailable", "id", id, "error", blobErr)
			return record, true, nil
		}
		if archiveErr := s.Archiver.Archive(ctx, id+".mp4", "video/mp4", video); archiveErr != nil {
			slog.Warn("failed to archive saved video", "id", id, "error", archiveErr)
		}
	}
	return record, true, nil
}
