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
// command that produces the thumbnail recorded on the history item. The
// conditioning frame from the visual reference is preferred; without one,
// a frame is pulled from the generated video itself. A thumbnail failure
// never fails the run: the video has already been generated at this point,
// and a history record without a thumbnail beats losing the video.
package commands

import (
	"github.com/aisocialninja/anime-studio-server/internal/core/cor"
	"github.com/aisocialninja/anime-studio-server/internal/media"
)

// ThumbnailCreator is a command that derives a small preview image for the
// history record as a base64 data URL.
type ThumbnailCreator struct {
	cor.BaseCommand
	transcoder         Transcoder
	referenceParamName string
}

// NewThumbnailCreator is the constructor for the ThumbnailCreator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - videoParamName: The context key holding the final video bytes.
//   - referenceParamName: The context key holding the optional conditioning *media.Frame.
//   - outputParamName: The context key to store the thumbnail data URL under.
//   - transcoder: The media engine used for frame extraction.
//
// Outputs:
//   - *ThumbnailCreator: A pointer to the newly instantiated command.
func NewThumbnailCreator(name string, videoParamName string, referenceParamName string, outputParamName string, transcoder Transcoder) *ThumbnailCreator {
	out := &ThumbnailCreator{
		BaseCommand:        *cor.NewBaseCommand(name),
		transcoder:         transcoder,
		referenceParamName: referenceParamName,
	}
	out.InputParamName = videoParamName
	out.OutputParamName = outputParamName
	return out
}

// Execute creates the thumbnail from the reference frame when present, and
// from the generated video otherwise.
func (t *ThumbnailCreator) Execute(context cor.Context) {
	if frame, ok := context.Get(t.referenceParamName).(*media.Frame); ok && frame != nil {
		t.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(t.GetOutputParam(), frame.DataURL())
		return
	}

	video := context.Get(t.GetInputParam()).([]byte)
	frame, err := t.transcoder.ExtractFrame(context.GetContext(), video, media.ReferenceFrameFraction)
	if err != nil {
		// Non-fatal: the record simply ships without a preview.
		t.GetErrorCounter().Add(context.GetContext(), 1)
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), frame.DataURL())
}
