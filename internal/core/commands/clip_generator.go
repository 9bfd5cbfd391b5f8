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
// art department stage of the pipeline: generating one video clip per
// storyboard scene.
//
// Logic Flow:
//  1. Read the validated storyboard, the generation request, and the
//     optional conditioning frame from the context.
//  2. For each scene, in storyboard order, render the clip prompt with the
//     scene's description, camera movement, duration, the art style, and
//     the resolution phrase for the selected quality.
//  3. Submit the clip to the video model. Only the first scene receives
//     the conditioning frame; later scenes inherit visual continuity from
//     the storyboard text alone.
//  4. Store the ordered clips in the context for the stitcher.
//
// Scenes are generated sequentially rather than in parallel. Video model
// quotas make parallel submission counterproductive, and sequential order
// keeps a failing scene's number exact in the error message.
package commands

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/aisocialninja/anime-studio-server/internal/core/cor"
	"github.com/aisocialninja/anime-studio-server/internal/core/model"
	"github.com/aisocialninja/anime-studio-server/internal/media"
	"google.golang.org/genai"
)

// ClipGenerator is a command that turns each storyboard scene into a video
// clip using the video generation model.
type ClipGenerator struct {
	cor.BaseCommand
	videoModel         VideoGenerator
	template           *template.Template
	requestParamName   string
	referenceParamName string
}

// NewClipGenerator is the constructor for the ClipGenerator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - storyboardParamName: The context key holding the validated *model.Storyboard.
//   - requestParamName: The context key holding the *model.GenerationRequest.
//   - referenceParamName: The context key holding the optional conditioning *media.Frame.
//   - outputParamName: The context key to store the ordered clips under.
//   - videoModel: The rate-limited video generation model.
//   - template: A parsed Go template for the per-scene clip prompt.
//
// Outputs:
//   - *ClipGenerator: A pointer to the newly instantiated command.
func NewClipGenerator(
	name string,
	storyboardParamName string,
	requestParamName string,
	referenceParamName string,
	outputParamName string,
	videoModel VideoGenerator,
	template *template.Template) *ClipGenerator {

	out := &ClipGenerator{
		BaseCommand:        *cor.NewBaseCommand(name),
		videoModel:         videoModel,
		template:           template,
		requestParamName:   requestParamName,
		referenceParamName: referenceParamName,
	}
	out.InputParamName = storyboardParamName
	out.OutputParamName = outputParamName
	return out
}

// GenerateParams creates the template data for one scene's clip prompt.
func (t *ClipGenerator) GenerateParams(scene *model.Scene, request *model.GenerationRequest) map[string]interface{} {
	params := make(map[string]interface{})
	params["DURATION"] = scene.Duration
	params["RESOLUTION"] = request.Quality.Resolution()
	params["STYLE"] = string(request.Style)
	params["SCENE"] = scene.Description
	params["CAMERA"] = scene.Camera
	return params
}

// Execute generates the clips for every storyboard scene in order.
func (t *ClipGenerator) Execute(context cor.Context) {
	storyboard := context.Get(t.GetInputParam()).(*model.Storyboard)
	request := context.Get(t.requestParamName).(*model.GenerationRequest)

	// The conditioning frame is optional; only the first scene uses it.
	var referenceImage *genai.Image
	if frame, ok := context.Get(t.referenceParamName).(*media.Frame); ok && frame != nil {
		referenceImage = &genai.Image{ImageBytes: frame.Bytes, MIMEType: frame.MIMEType}
	}

	ReportProgress(context, "Generating primary motion vectors...")

	clips := make([][]byte, 0, len(storyboard.Scenes))
	for i, scene := range storyboard.Scenes {
		var buffer bytes.Buffer
		if err := t.template.Execute(&buffer, t.GenerateParams(scene, request)); err != nil {
			t.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(t.GetName(), model.NewClipGenerationError(
				fmt.Sprintf("failed to build prompt for scene %d", scene.SceneNumber), err))
			return
		}

		var conditioning *genai.Image
		if i == 0 {
			conditioning = referenceImage
		}

		ReportProgress(context, fmt.Sprintf("Rendering scene %d of %d...", scene.SceneNumber, len(storyboard.Scenes)))

		clip, err := t.videoModel.GenerateVideo(context.GetContext(), buffer.String(), conditioning)
		if err != nil {
			t.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(t.GetName(), model.NewClipGenerationError(
				fmt.Sprintf("video model failed on scene %d", scene.SceneNumber), err))
			return
		}
		clips = append(clips, clip)
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), clips)
}
