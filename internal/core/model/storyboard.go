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

// Package model defines the core data structures for the application.
// This file contains the transient structures produced and consumed inside a
// single generation workflow run: the storyboard the director model writes,
// and the wrappers around user-supplied reference and audio inputs. None of
// these are persisted; they live only for the duration of one request.
package model

import (
	"fmt"
	"strings"
)

// Storyboard geometry. The director model is asked for exactly three scenes
// of roughly five seconds each, producing a fifteen-second video.
const (
	StoryboardSceneCount = 3
	SceneDurationSeconds = 5
	TargetVideoSeconds   = StoryboardSceneCount * SceneDurationSeconds
)

// Scene is one segment of the storyboard: what happens, how the camera
// moves, and how long the segment runs.
type Scene struct {
	SceneNumber int    `json:"sceneNumber"` // 1-based, matches the scene's position in the storyboard.
	Description string `json:"description"`
	Camera      string `json:"camera"`
	Duration    int    `json:"duration"` // Seconds. The director is instructed to use 5.
}

// Storyboard is the director model's plan for the whole video: an ordered
// sequence of exactly StoryboardSceneCount scenes.
type Storyboard struct {
	Scenes []*Scene `json:"scenes"`
}

// Validate checks the structural invariants the rest of the pipeline relies
// on: exactly three scenes, numbered 1..3 in order. A storyboard that fails
// validation is rejected outright; the model is never asked to patch it.
func (s *Storyboard) Validate() error {
	if len(s.Scenes) != StoryboardSceneCount {
		return fmt.Errorf("storyboard has %d scenes, want exactly %d", len(s.Scenes), StoryboardSceneCount)
	}
	for i, scene := range s.Scenes {
		if scene == nil {
			return fmt.Errorf("storyboard scene %d is empty", i+1)
		}
		if scene.SceneNumber != i+1 {
			return fmt.Errorf("storyboard scene at position %d is numbered %d", i+1, scene.SceneNumber)
		}
		if len(strings.TrimSpace(scene.Description)) == 0 {
			return fmt.Errorf("storyboard scene %d has no description", scene.SceneNumber)
		}
	}
	return nil
}

// TotalDuration returns the sum of the scene durations in seconds.
func (s *Storyboard) TotalDuration() int {
	total := 0
	for _, scene := range s.Scenes {
		if scene != nil {
			total += scene.Duration
		}
	}
	return total
}

// VideoStyle identifies one of the curated anime art styles the director
// and video models are steered toward.
type VideoStyle string

// StyleOption describes a selectable art style for catalog listings.
type StyleOption struct {
	Id          VideoStyle `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

// StyleCatalog is the fixed set of art styles offered to users. The Id is
// the exact token embedded in prompts; the name and description are for
// display only.
var StyleCatalog = []StyleOption{
	{Id: "Default", Name: "Default", Description: "A balanced, general-purpose anime style."},
	{Id: "Studio-Ghibli-like", Name: "Ghibli-like", Description: "Lush, painted backgrounds and whimsical fantasy."},
	{Id: "Studio-Sunset-like", Name: "Sunset-like", Description: "Vibrant colors, dramatic lighting, and emotional scenes."},
	{Id: "Studio-Toei-Animation-like", Name: "Toei-like", Description: "Classic dynamic action, iconic transformations, and energetic pacing."},
	{Id: "Wit-Studio", Name: "Wit-like", Description: "High-octane action sequences, detailed character art, and cinematic flair."},
	{Id: "Studio Pierrot-like", Name: "Pierrot-like", Description: "Iconic long-running series style with dramatic flair and intense battles."},
	{Id: "Studio-MadHouse", Name: "MadHouse-like", Description: "Dark, psychological themes with high-quality, fluid animation."},
}

// ParseVideoStyle validates a user-supplied style id against the catalog,
// defaulting to "Default" for an empty input.
func ParseVideoStyle(in string) (VideoStyle, error) {
	if in == "" {
		return "Default", nil
	}
	for _, opt := range StyleCatalog {
		if opt.Id == VideoStyle(in) {
			return opt.Id, nil
		}
	}
	return "", fmt.Errorf("unknown video style %q", in)
}

// VisualReference wraps a user-uploaded image or video used to seed the
// first scene of a generation. It is scoped to a single request and never
// persisted; only the derived thumbnail survives, on the history record.
type VisualReference struct {
	Name     string
	MIMEType string
	Data     []byte
}

// IsImage reports whether the reference is an image by declared MIME type.
func (v *VisualReference) IsImage() bool { return strings.HasPrefix(v.MIMEType, "image/") }

// IsVideo reports whether the reference is a video by declared MIME type.
func (v *VisualReference) IsVideo() bool { return strings.HasPrefix(v.MIMEType, "video/") }

// AudioSelection wraps the audio track chosen for the final merge, either
// an uploaded file or a library track already fetched by the server. Name
// is the human-readable label recorded on the history item.
type AudioSelection struct {
	Name string
	Data []byte
}
