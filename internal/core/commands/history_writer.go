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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// final persistence step of the pipeline. The blob is written before the
// metadata record, and a metadata failure rolls the blob back, so the
// store never holds a history entry pointing at a missing video.
package commands

import (
	"github.com/aisocialninja/anime-studio-server/internal/core/cor"
	"github.com/aisocialninja/anime-studio-server/internal/core/model"
	"github.com/aisocialninja/anime-studio-server/internal/store"
)

// HistoryWriter is a command that persists the finished video and its
// metadata record to the local store.
type HistoryWriter struct {
	cor.BaseCommand
	blobs              *store.BlobStore
	metadata           *store.MetadataStore
	requestParamName   string
	thumbnailParamName string
}

// NewHistoryWriter is the constructor for the HistoryWriter command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - videoParamName: The context key holding the final video bytes.
//   - requestParamName: The context key holding the *model.GenerationRequest.
//   - thumbnailParamName: The context key holding the optional thumbnail data URL.
//   - outputParamName: The context key to store the new history record under.
//   - blobs: The video blob store.
//   - metadata: The history metadata store.
//
// Outputs:
//   - *HistoryWriter: A pointer to the newly instantiated command.
func NewHistoryWriter(
	name string,
	videoParamName string,
	requestParamName string,
	thumbnailParamName string,
	outputParamName string,
	blobs *store.BlobStore,
	metadata *store.MetadataStore) *HistoryWriter {

	out := &HistoryWriter{
		BaseCommand:        *cor.NewBaseCommand(name),
		blobs:              blobs,
		metadata:           metadata,
		requestParamName:   requestParamName,
		thumbnailParamName: thumbnailParamName,
	}
	out.InputParamName = videoParamName
	out.OutputParamName = outputParamName
	return out
}

// Execute writes the video blob, then the metadata record, rolling back
// the blob if the record cannot be written.
func (t *HistoryWriter) Execute(context cor.Context) {
	video := context.Get(t.GetInputParam()).([]byte)
	request := context.Get(t.requestParamName).(*model.GenerationRequest)

	thumbnail, _ := context.Get(t.thumbnailParamName).(string)
	audioName := ""
	if request.Audio != nil {
		audioName = request.Audio.Name
	}

	ReportProgress(context, "Finalizing... Your masterpiece is almost ready!")

	record := model.NewHistoryMetadata(request.Prompt, request.Quality, thumbnail, audioName)

	if err := t.blobs.Save(record.Id, video); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), model.NewStorageError("failed to persist generated video", err))
		return
	}
	if err := t.metadata.Upsert(record); err != nil {
		// The record write failed; remove the orphaned blob so the two
		// stores stay in lockstep.
		_ = t.blobs.Delete(record.Id)
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), model.NewStorageError("failed to persist history record", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), record)
}
