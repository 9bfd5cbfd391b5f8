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

// Package main contains the setup and initialization logic for the application's state.
// This file is responsible for creating and managing a centralized state manager
// that holds all shared dependencies: configuration, Google Cloud service clients,
// the local stores, the ffmpeg engine, the generation pipeline, and the
// application-level services for history, suggestions, and the audio library.
//
// Functions:
//   - SetupOS: Configures necessary environment variables for the application,
//     pointing to the correct configuration files.
//   - GetConfig: A singleton function that loads the application's configuration
//     from TOML files. It ensures the configuration is loaded only once.
//   - InitState: The core initialization function that creates all service
//     clients, the stores and the media engine, wires the generation pipeline
//     behind its single-flight runner, and instantiates the services.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aisocialninja/anime-studio-server/internal/cloud"
	"github.com/aisocialninja/anime-studio-server/internal/core/services"
	"github.com/aisocialninja/anime-studio-server/internal/core/workflow"
	"github.com/aisocialninja/anime-studio-server/internal/media"
	"github.com/aisocialninja/anime-studio-server/internal/store"
)

// Logical model names the configuration must provide under [agent_models]
// and [video_models].
const (
	storyboardModelName  = "storyboard"
	suggestionsModelName = "suggestions"
	clipModelName        = "clip"
)

// StateManager holds all the shared dependencies for the application, acting as a
// centralized container for service clients and configurations. This avoids the
// need for global variables and makes dependency management cleaner.
type StateManager struct {
	config            *cloud.Config
	cloud             *cloud.ServiceClients
	engine            *media.Engine
	runner            *workflow.Runner
	historyService    *services.HistoryService
	suggestionService *services.SuggestionService
	audioService      *services.AudioService
}

// state is a package-level variable that holds the single instance of StateManager.
var state = &StateManager{}

// SetupOS sets the necessary environment variables that the configuration loader
// uses to find the correct TOML files.
//
// This function sets the prefix for the configuration directory and specifies
// the runtime environment (e.g., "local", "test", "prod"), allowing for
// environment-specific overrides of the base configuration.
//
// Outputs:
//   - error: An error if setting any of the environment variables fails.
func SetupOS() (err error) {
	// Set the directory where configuration files are located.
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// Set the current runtime environment to "local". The config loader will
	// look for a ".env.local.toml" file to override base settings.
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration.
// It ensures that the configuration is loaded from the file system only once.
// On the first call, it sets up the OS environment and loads the configuration
// from the TOML files. Subsequent calls return the cached configuration.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded application configuration struct.
func GetConfig() *cloud.Config {
	// If the config has not been loaded yet...
	if state.config == nil {
		// Set up the environment variables required for config loading.
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		// Create a new, empty config struct.
		config := cloud.NewConfig()
		// Load the configuration from the .toml files into the struct.
		cloud.LoadConfig(config)
		// Store the loaded config in the state manager.
		state.config = config
	}
	// Return the cached config.
	return state.config
}

// InitState initializes the entire application state.
// It orchestrates the creation of all necessary services and clients based on the
// application configuration and wires them together.
//
// Inputs:
//   - ctx: The root context.Context for the application, used for managing
//     the lifecycle of client connections.
//
// This function performs the following steps:
//  1. Loads the application configuration.
//  2. Initializes the Google Cloud service clients (Storage, GenAI).
//  3. Creates the local blob and metadata stores and the ffmpeg engine.
//  4. Builds the generation pipeline and wraps it in the single-flight runner.
//  5. Instantiates the application services (history, suggestions, audio).
func InitState(ctx context.Context) {
	// Get the application configuration.
	config := GetConfig()

	// Initialize all the base Google Cloud service clients.
	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	// Look up the configured models by their logical names. The server
	// cannot run without them, so a missing entry is fatal.
	storyboardModel, ok := cloudClients.AgentModels[storyboardModelName]
	if !ok {
		log.Fatalf("missing agent model configuration: %s\n", storyboardModelName)
	}
	suggestionModel, ok := cloudClients.AgentModels[suggestionsModelName]
	if !ok {
		log.Fatalf("missing agent model configuration: %s\n", suggestionsModelName)
	}
	clipModel, ok := cloudClients.VideoModels[clipModelName]
	if !ok {
		log.Fatalf("missing video model configuration: %s\n", clipModelName)
	}

	// Create the ffmpeg engine used for stitching, audio merging, and
	// thumbnail extraction.
	engine, err := media.NewEngine(config.FFmpeg.FfmpegPath, config.FFmpeg.FfprobePath)
	if err != nil {
		panic(err)
	}
	state.engine = engine

	// Create the local stores. The blob store holds the generated videos,
	// the metadata store holds the paired history records.
	blobs := store.NewBlobStore(config.Storage.VideoPath())
	metadata := store.NewMetadataStore(config.Storage.HistoryPath())

	// Build the generation pipeline and wrap it in the single-flight runner
	// so that only one generation can be in flight at a time.
	pipeline := workflow.NewGenerationWorkflow(config, storyboardModel, clipModel, engine, blobs, metadata)
	state.runner = workflow.NewRunner(pipeline)

	// Initialize the application services.
	state.historyService = &services.HistoryService{
		Blobs:    blobs,
		Metadata: metadata,
		Archiver: cloudClients.Archiver,
	}
	state.suggestionService = services.NewSuggestionService(metadata, suggestionModel, config.PromptTemplates.Suggestions)
	state.audioService = services.NewAudioService(config.AudioLibrary, config.Uploads.MaxAudioBytes)
}
