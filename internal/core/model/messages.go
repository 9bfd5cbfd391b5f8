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

// LoadingMessages is the ordered set of status messages a client can rotate
// through while a generation run is in flight. Order matters: earlier
// messages correspond to earlier pipeline stages.
var LoadingMessages = []string{
	"Initializing AI model...",
	"Analyzing your prompt and visual reference...",
	"Storyboarding the main scenes...",
	"Generating primary motion vectors...",
	"Applying Studio Ghibli art style...",
	"Rendering keyframes in high definition...",
	"Compositing anime-style effects...",
	"Encoding final video file...",
	"This is taking a bit longer than expected, but we are still working on it...",
	"Finalizing... Your masterpiece is almost ready!",
}
