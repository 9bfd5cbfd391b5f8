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
// command that overlays the selected audio track onto the stitched video.
// When the request carries no audio, the video passes through untouched.
package commands

import (
	"github.com/aisocialninja/anime-studio-server/internal/core/cor"
	"github.com/aisocialninja/anime-studio-server/internal/core/model"
)

// AudioMerger is a command that muxes the chosen audio track onto the
// stitched video, trimming to the shorter of the two.
type AudioMerger struct {
	cor.BaseCommand
	transcoder       Transcoder
	requestParamName string
}

// NewAudioMerger is the constructor for the AudioMerger command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - videoParamName: The context key holding the stitched video bytes.
//   - requestParamName: The context key holding the *model.GenerationRequest.
//   - outputParamName: The context key to store the final video under.
//   - transcoder: The media engine.
//
// Outputs:
//   - *AudioMerger: A pointer to the newly instantiated command.
func NewAudioMerger(name string, videoParamName string, requestParamName string, outputParamName string, transcoder Transcoder) *AudioMerger {
	out := &AudioMerger{
		BaseCommand:      *cor.NewBaseCommand(name),
		transcoder:       transcoder,
		requestParamName: requestParamName,
	}
	out.InputParamName = videoParamName
	out.OutputParamName = outputParamName
	return out
}

// Execute merges the audio track, or passes the video through when the
// request has none.
func (t *AudioMerger) Execute(context cor.Context) {
	video := context.Get(t.GetInputParam()).([]byte)
	request := context.Get(t.requestParamName).(*model.GenerationRequest)

	if request.Audio == nil || len(request.Audio.Data) == 0 {
		t.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(t.GetOutputParam(), video)
		return
	}

	ReportProgress(context, "Encoding final video file...")

	merged, err := t.transcoder.MergeAudio(context.GetContext(), video, request.Audio.Data)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), model.NewAudioMergeError("failed to merge audio track", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), merged)
}
