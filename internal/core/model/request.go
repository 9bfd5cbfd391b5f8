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

package model

import "errors"

// GenerationRequest carries everything one video generation run needs: the
// user's prompt, the selected art style and quality, and the optional
// visual reference and audio track.
type GenerationRequest struct {
	Prompt    string
	Style     VideoStyle
	Quality   VideoQuality
	Reference *VisualReference
	Audio     *AudioSelection
}

// Validate checks the request is complete enough to start a run.
func (r *GenerationRequest) Validate() error {
	if r == nil {
		return errors.New("generation request is nil")
	}
	if r.Prompt == "" {
		return errors.New("prompt must not be empty")
	}
	return nil
}
