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

// Package cloud provides components for interacting with Google Cloud services.
// This file initializes and holds all the client objects the application
// needs to talk to Google Cloud. It acts as a dependency injection
// container: `NewCloudServiceClients` is called once at startup, reads the
// configuration, and bundles every client and model wrapper into a single
// `ServiceClients` struct that is passed through the rest of the
// application.
//
// Structs:
//   - ServiceClients: A container holding the initialized clients and
//     configured model wrappers.
//
// Functions:
//   - Close: Gracefully shuts down the client connections.
//   - NewCloudServiceClients: Creates and configures all clients from the
//     application configuration.
package cloud

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
	"google.golang.org/genai"
)

// ServiceClients is a central container for all clients that interact with
// external Google Cloud services, shared across the application.
type ServiceClients struct {
	StorageClient *storage.Client                         // Client for Google Cloud Storage, used by the archiver.
	GenAIClient   *genai.Client                           // Client for Generative AI services (Vertex AI).
	Archiver      *Archiver                               // Saved-video archiver. Nil when no archive bucket is configured.
	AgentModels   map[string]*QuotaAwareGenerativeAIModel // Configured text models, keyed by a logical name.
	VideoModels   map[string]*VideoGenerationModel        // Configured video models, keyed by a logical name.
}

// Close releases the client connections. Useful in tests and for controlled
// shutdowns; in the server the root context normally manages lifetimes.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	// The genai client has no close function in the current library.
}

// NewCloudServiceClients initializes all required Google Cloud service
// clients based on the provided configuration.
//
// Inputs:
//   - ctx: The root context for the application.
//   - config: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The fully initialized container.
//   - error: An error if any client fails to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	var clientOptions []option.ClientOption
	if config.Application.CredentialsFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(config.Application.CredentialsFile))
	}

	sc, err := storage.NewClient(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	// Build the text model wrappers, applying each model's generation
	// settings and wrapping it with the rate limiter.
	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey, values := range config.AgentModels {
		model := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		agentModels[amKey] = NewQuotaAwareModel(model, values.Model, gc.Models, values.RateLimit)
	}

	// Build the video model wrappers with their polling parameters.
	videoModels := make(map[string]*VideoGenerationModel)
	for vmKey, values := range config.VideoModels {
		videoModels[vmKey] = NewVideoGenerationModel(gc, values)
	}

	return &ServiceClients{
		StorageClient: sc,
		GenAIClient:   gc,
		Archiver:      NewArchiver(sc, config.Storage.ArchiveBucket),
		AgentModels:   agentModels,
		VideoModels:   videoModels,
	}, nil
}
