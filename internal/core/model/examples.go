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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides factory functions for creating hardcoded, example
// instances of the data models.
//
// These example objects are crucial for "few-shot" prompting with the
// generative AI models. By providing a concrete example of the desired JSON
// output structure within the prompt itself, we guide the AI to return data
// that is consistent, correctly formatted, and easily parsable.
package model

// GetExampleStoryboard creates a sample Storyboard object. Its JSON form is
// embedded in the director prompt so the model sees the exact structure it
// must return: three numbered scenes of five seconds each, with a visual
// description and a camera instruction per scene.
//
// Outputs:
//   - *Storyboard: A pointer to a hardcoded Storyboard object.
func GetExampleStoryboard() *Storyboard {
	return &Storyboard{
		Scenes: []*Scene{
			{
				SceneNumber: 1,
				Description: "A lone samurai stands on a cliff at dawn, cherry blossoms drifting past as the first light catches the edge of the blade.",
				Camera:      "slow crane shot up",
				Duration:    SceneDurationSeconds,
			},
			{
				SceneNumber: 2,
				Description: "The samurai sprints down the hillside through a sea of tall grass, blossoms swirling in the wake of each stride.",
				Camera:      "tracking shot, low angle",
				Duration:    SceneDurationSeconds,
			},
			{
				SceneNumber: 3,
				Description: "At the valley floor the samurai stops and sheathes the blade, the sun finally breaking over the ridge behind.",
				Camera:      "dolly zoom on the face",
				Duration:    SceneDurationSeconds,
			},
		},
	}
}
