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
// director stage of the pipeline: asking a text model to break the user's
// prompt into a fixed three-scene storyboard.
//
// Logic Flow:
//  1. Read the generation request from the context.
//  2. Render the storyboard prompt template with the user's prompt, the
//     selected art style, and a well-formed example of the expected JSON
//     (few-shot prompting keeps the model's output structure reliable).
//  3. Send the prompt to the text model.
//  4. Place the raw JSON response into the context for the parsing command.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/aisocialninja/anime-studio-server/internal/cloud"
	"github.com/aisocialninja/anime-studio-server/internal/core/cor"
	"github.com/aisocialninja/anime-studio-server/internal/core/model"
)

// StoryboardCreator is a command that uses a text model to turn the user's
// prompt into a raw storyboard JSON document.
type StoryboardCreator struct {
	cor.BaseCommand
	generativeAIModel        cloud.ContentGenerator
	template                 *template.Template
	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
}

// NewStoryboardCreator is the constructor for the StoryboardCreator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - requestParamName: The context key holding the *model.GenerationRequest.
//   - generativeAIModel: The rate-limited text model.
//   - template: A parsed Go template for the storyboard prompt.
//
// Outputs:
//   - *StoryboardCreator: A pointer to the newly instantiated command.
func NewStoryboardCreator(
	name string,
	requestParamName string,
	generativeAIModel cloud.ContentGenerator,
	template *template.Template) *StoryboardCreator {

	out := &StoryboardCreator{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: generativeAIModel,
		template:          template,
	}
	out.InputParamName = requestParamName

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))

	return out
}

// GenerateParams creates the map of dynamic data injected into the prompt
// template.
func (t *StoryboardCreator) GenerateParams(request *model.GenerationRequest) map[string]interface{} {
	params := make(map[string]interface{})
	params["PROMPT"] = request.Prompt
	params["STYLE"] = string(request.Style)
	params["SCENE_COUNT"] = model.StoryboardSceneCount
	params["SCENE_SECONDS"] = model.SceneDurationSeconds
	params["VIDEO_SECONDS"] = model.TargetVideoSeconds

	// A complete example of the expected output keeps the model honest
	// about the JSON structure.
	exampleStoryboard, _ := json.Marshal(model.GetExampleStoryboard())
	params["EXAMPLE_JSON"] = string(exampleStoryboard)
	return params
}

// Execute renders the storyboard prompt and sends it to the text model.
func (t *StoryboardCreator) Execute(context cor.Context) {
	request := context.Get(t.GetInputParam()).(*model.GenerationRequest)

	ReportProgress(context, "Storyboarding the main scenes...")

	var buffer bytes.Buffer
	err := t.template.Execute(&buffer, t.GenerateParams(request))
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), model.NewStoryboardError("failed to execute storyboard prompt template", err))
		return
	}

	out, err := cloud.GenerateTextResponse(
		context.GetContext(),
		t.geminiInputTokenCounter,
		t.geminiOutputTokenCounter,
		t.generativeAIModel,
		buffer.String())
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), model.NewStoryboardError("director model request failed", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), out)
}
