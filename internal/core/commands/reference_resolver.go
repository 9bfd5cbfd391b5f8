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
// command that resolves the user's optional visual reference into a still
// image the video model can condition on. An uploaded image passes through
// unchanged; an uploaded video contributes a single representative frame.
// The detected content type is authoritative; the client's declared MIME
// type is ignored.
package commands

import (
	"errors"

	"github.com/aisocialninja/anime-studio-server/internal/core/cor"
	"github.com/aisocialninja/anime-studio-server/internal/core/model"
	"github.com/aisocialninja/anime-studio-server/internal/media"
)

// ReferenceResolver is a command that turns the request's visual reference
// into a media.Frame stored in the context. When the request carries no
// reference, the command is a silent pass-through.
type ReferenceResolver struct {
	cor.BaseCommand
	transcoder Transcoder
}

// NewReferenceResolver is the constructor for the ReferenceResolver command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - requestParamName: The context key holding the *model.GenerationRequest.
//   - outputParamName: The context key to store the resolved *media.Frame under.
//   - transcoder: The media engine used for frame extraction from video references.
//
// Outputs:
//   - *ReferenceResolver: A pointer to the newly instantiated command.
func NewReferenceResolver(name string, requestParamName string, outputParamName string, transcoder Transcoder) *ReferenceResolver {
	out := &ReferenceResolver{
		BaseCommand: *cor.NewBaseCommand(name),
		transcoder:  transcoder,
	}
	out.InputParamName = requestParamName
	out.OutputParamName = outputParamName
	return out
}

// Execute resolves the reference, if any, into a conditioning frame.
func (t *ReferenceResolver) Execute(context cor.Context) {
	request := context.Get(t.GetInputParam()).(*model.GenerationRequest)
	if request.Reference == nil {
		t.GetSuccessCounter().Add(context.GetContext(), 1)
		return
	}

	ReportProgress(context, "Analyzing your prompt and visual reference...")

	frame, err := media.ReferenceFrame(context.GetContext(), t.transcoder, request.Reference.Data)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		var unsupported *media.UnsupportedTypeError
		if errors.As(err, &unsupported) {
			context.AddError(t.GetName(), model.NewMediaDecodeError("reference file is neither an image nor a video", err))
			return
		}
		context.AddError(t.GetName(), model.NewMediaDecodeError("could not extract a frame from the reference video", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), frame)
}
