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
// command that parses the director model's raw JSON into a validated
// Storyboard struct. Parsing and validation are one step: a storyboard
// that is syntactically valid JSON but violates the three-scene contract
// is rejected the same way as malformed JSON.
package commands

import (
	"encoding/json"

	"github.com/aisocialninja/anime-studio-server/internal/core/cor"
	"github.com/aisocialninja/anime-studio-server/internal/core/model"
)

// StoryboardJsonToStruct is a command that converts the raw JSON response
// from the director model into a *model.Storyboard and validates it.
type StoryboardJsonToStruct struct {
	cor.BaseCommand
}

// NewStoryboardJsonToStruct is the constructor for the command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - outputParamName: The context key to store the parsed storyboard under.
//
// Outputs:
//   - *StoryboardJsonToStruct: A pointer to the newly instantiated command.
func NewStoryboardJsonToStruct(name string, outputParamName string) *StoryboardJsonToStruct {
	out := &StoryboardJsonToStruct{BaseCommand: *cor.NewBaseCommand(name)}
	out.OutputParamName = outputParamName
	return out
}

// Execute parses and validates the storyboard JSON from the previous
// command.
func (t *StoryboardJsonToStruct) Execute(context cor.Context) {
	raw := context.Get(t.GetInputParam()).(string)

	storyboard := &model.Storyboard{}
	if err := json.Unmarshal([]byte(raw), storyboard); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), model.NewStoryboardError("director response is not valid storyboard JSON", err))
		return
	}
	if err := storyboard.Validate(); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), model.NewStoryboardError("director produced an invalid storyboard", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), storyboard)
}
