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
// command that concatenates the per-scene clips into the final continuous
// video using the media engine's stream-copy stitch.
package commands

import (
	"github.com/aisocialninja/anime-studio-server/internal/core/cor"
	"github.com/aisocialninja/anime-studio-server/internal/core/model"
)

// ClipStitcher is a command that joins the ordered scene clips into one
// video.
type ClipStitcher struct {
	cor.BaseCommand
	transcoder Transcoder
}

// NewClipStitcher is the constructor for the ClipStitcher command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - clipsParamName: The context key holding the ordered [][]byte clips.
//   - outputParamName: The context key to store the stitched video under.
//   - transcoder: The media engine.
//
// Outputs:
//   - *ClipStitcher: A pointer to the newly instantiated command.
func NewClipStitcher(name string, clipsParamName string, outputParamName string, transcoder Transcoder) *ClipStitcher {
	out := &ClipStitcher{
		BaseCommand: *cor.NewBaseCommand(name),
		transcoder:  transcoder,
	}
	out.InputParamName = clipsParamName
	out.OutputParamName = outputParamName
	return out
}

// Execute stitches the clips in storyboard order.
func (t *ClipStitcher) Execute(context cor.Context) {
	clips := context.Get(t.GetInputParam()).([][]byte)

	ReportProgress(context, "Compositing anime-style effects...")

	video, err := t.transcoder.Stitch(context.GetContext(), clips)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), model.NewStitchError("failed to join scene clips", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), video)
}
