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

// Package test provides utility functions and sample data to support the
// application's test suite: loading the test configuration once per run,
// and canned model responses for the pipeline tests.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/aisocialninja/anime-studio-server/internal/cloud"
)

// StateManager caches the application configuration during test runs so
// the TOML files are loaded only once per run.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is not nil. Convenience to reduce
// boilerplate in tests.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestStoryboardJSON returns a well-formed director model response with
// exactly three scenes, used to drive the pipeline without a live model.
//
// Returns:
//   - A string containing the storyboard JSON payload.
func GetTestStoryboardJSON() string {
	return `{
  "scenes": [
    {
      "sceneNumber": 1,
      "description": "A lone swordswoman stands at the edge of a cliff overlooking a sea of clouds at dawn, her cloak billowing in the wind.",
      "camera": "slow crane shot up",
      "duration": 5
    },
    {
      "sceneNumber": 2,
      "description": "She leaps from the cliff, gliding between floating islands covered in cherry blossoms, petals streaming behind her.",
      "camera": "tracking shot from the side",
      "duration": 5
    },
    {
      "sceneNumber": 3,
      "description": "She lands on the largest island and draws her blade as the rising sun flares across the screen.",
      "camera": "dolly zoom toward her eyes",
      "duration": 5
    }
  ]
}`
}

// GetTestSuggestionsJSON returns a canned suggestion model response: a
// JSON array of exactly three prompt strings.
//
// Returns:
//   - A string containing the suggestions JSON payload.
func GetTestSuggestionsJSON() string {
	return `[
  "A fox spirit guiding a lost child through a lantern-lit forest at night",
  "A mecha pilot watching the sunrise from the shoulder of a ruined giant robot",
  "A ramen chef performing an elaborate midnight cooking battle in the rain"
]`
}

// SetupOS points the configuration loader at the test configuration files
// under configs/ (.env.toml plus the .env.test.toml overrides).
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration. The
// configuration is loaded from the TOML files once and cached for
// subsequent calls.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}
