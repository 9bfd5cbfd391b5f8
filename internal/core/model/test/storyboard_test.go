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

// Package model_test contains unit tests for the data models defined in the
// model package. This file tests the storyboard invariants and the style
// and quality parsers that guard user input.
package model_test

import (
	"testing"

	"github.com/aisocialninja/anime-studio-server/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// validStoryboard builds a minimal storyboard that satisfies every
// structural invariant, as a starting point for the failure cases.
func validStoryboard() *model.Storyboard {
	return &model.Storyboard{
		Scenes: []*model.Scene{
			{SceneNumber: 1, Description: "A girl wakes up in a floating shrine.", Camera: "pan left", Duration: 5},
			{SceneNumber: 2, Description: "She runs across a bridge of light.", Camera: "tracking shot", Duration: 5},
			{SceneNumber: 3, Description: "She reaches out and touches the moon.", Camera: "crane shot up", Duration: 5},
		},
	}
}

// TestStoryboardValidate verifies the three-scene contract: exactly three
// scenes, numbered sequentially, each with a description.
func TestStoryboardValidate(t *testing.T) {
	assert.NoError(t, validStoryboard().Validate())

	// Too few scenes.
	short := validStoryboard()
	short.Scenes = short.Scenes[:2]
	assert.Error(t, short.Validate())

	// Too many scenes.
	long := validStoryboard()
	long.Scenes = append(long.Scenes, &model.Scene{SceneNumber: 4, Description: "extra", Duration: 5})
	assert.Error(t, long.Validate())

	// Out-of-order numbering.
	misnumbered := validStoryboard()
	misnumbered.Scenes[1].SceneNumber = 3
	assert.Error(t, misnumbered.Validate())

	// A blank description.
	blank := validStoryboard()
	blank.Scenes[2].Description = "   "
	assert.Error(t, blank.Validate())

	// A missing scene entry.
	hole := validStoryboard()
	hole.Scenes[0] = nil
	assert.Error(t, hole.Validate())
}

// TestStoryboardTotalDuration verifies the duration sum used to describe
// the target video length.
func TestStoryboardTotalDuration(t *testing.T) {
	storyboard := validStoryboard()
	assert.Equal(t, model.TargetVideoSeconds, storyboard.TotalDuration())

	storyboard.Scenes[0].Duration = 4
	assert.Equal(t, model.TargetVideoSeconds-1, storyboard.TotalDuration())
}

// TestGetExampleStoryboard ensures the canned example embedded into the
// director prompt passes the same validation the model's output must pass.
func TestGetExampleStoryboard(t *testing.T) {
	example := model.GetExampleStoryboard()
	assert.NoError(t, example.Validate())
	assert.Equal(t, model.StoryboardSceneCount, len(example.Scenes))
}

// TestParseVideoStyle verifies catalog lookups, the empty-input default,
// and rejection of unknown styles.
func TestParseVideoStyle(t *testing.T) {
	style, err := model.ParseVideoStyle("")
	assert.NoError(t, err)
	assert.Equal(t, model.VideoStyle("Default"), style)

	for _, opt := range model.StyleCatalog {
		parsed, err := model.ParseVideoStyle(string(opt.Id))
		assert.NoError(t, err)
		assert.Equal(t, opt.Id, parsed)
	}

	_, err = model.ParseVideoStyle("watercolor")
	assert.Error(t, err)
}

// TestParseVideoQuality verifies the two supported tiers, the default,
// and the resolution phrases injected into clip prompts.
func TestParseVideoQuality(t *testing.T) {
	quality, err := model.ParseVideoQuality("")
	assert.NoError(t, err)
	assert.Equal(t, model.Quality720p, quality)

	quality, err = model.ParseVideoQuality("1080p")
	assert.NoError(t, err)
	assert.Equal(t, model.Quality1080p, quality)

	_, err = model.ParseVideoQuality("4k")
	assert.Error(t, err)

	assert.Equal(t, "standard-definition (720p)", model.Quality720p.Resolution())
	assert.Equal(t, "high-definition (1080p)", model.Quality1080p.Resolution())
}

// TestGenerationRequestValidate verifies the request-level checks applied
// before a pipeline run starts.
func TestGenerationRequestValidate(t *testing.T) {
	var empty *model.GenerationRequest
	assert.Error(t, empty.Validate())

	assert.Error(t, (&model.GenerationRequest{}).Validate())
	assert.NoError(t, (&model.GenerationRequest{Prompt: "a cat samurai"}).Validate())
}

// TestVisualReferenceKind verifies the MIME-type classification helpers.
func TestVisualReferenceKind(t *testing.T) {
	image := &model.VisualReference{MIMEType: "image/png"}
	assert.True(t, image.IsImage())
	assert.False(t, image.IsVideo())

	video := &model.VisualReference{MIMEType: "video/mp4"}
	assert.True(t, video.IsVideo())
	assert.False(t, video.IsImage())
}
