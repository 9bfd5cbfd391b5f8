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
// This file implements the Decorator-pattern wrappers around the GenAI
// client. Each wrapper adds rate limiting and retry behavior to a model so
// callers never have to think about quota.
//
//   - QuotaAwareGenerativeAIModel wraps text generation.
//   - VideoGenerationModel wraps the long-running video generation
//     operation, hiding the submit/poll/download cycle behind a single
//     blocking call.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// maxGenerateAttempts bounds how many times a failed model call is retried
// before the error is surfaced to the caller.
const maxGenerateAttempts = 3

// QuotaAwareGenerativeAIModel wraps a configured text model with a rate
// limiter and retries. It holds the generation config, the model name, and
// the shared model handle from the GenAI client.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig
	ModelName               string
	ModelHandle             *genai.Models
	RateLimit               *rate.Limiter
}

// NewQuotaAwareModel creates a new QuotaAwareGenerativeAIModel.
//
// Inputs:
//   - config: The generation config applied to every request.
//   - name: The Vertex AI model name.
//   - handle: The shared model handle from the GenAI client.
//   - requestsPerSecond: The maximum number of API calls allowed per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(config *genai.GenerateContentConfig, name string, handle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: config,
		ModelName:               name,
		ModelHandle:             handle,
		RateLimit:               rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
	}
}

// GenerateContent calls the underlying model, blocking on the rate limiter
// until a request slot is available and retrying transient failures with a
// short backoff.
//
// Inputs:
//   - ctx: The context for the request. Cancelling it aborts both the
//     limiter wait and the retries.
//   - content: The multi-modal prompt content.
//
// Outputs:
//   - *genai.GenerateContentResponse: The response from the model.
//   - error: The last error if every attempt fails.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	var lastErr error
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		if err := q.RateLimit.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err := q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 2 * time.Second):
		}
	}
	return nil, fmt.Errorf("failed generation on max retries: %w", lastErr)
}

// VideoGenerationModel wraps a Vertex AI video model. Video generation is a
// long-running operation: the request returns an operation handle that must
// be polled until it completes, then the generated file downloaded. This
// wrapper collapses the whole cycle into one blocking call with a deadline.
type VideoGenerationModel struct {
	Client       *genai.Client
	ModelName    string
	AspectRatio  string
	RateLimit    *rate.Limiter
	PollInterval time.Duration
	Timeout      time.Duration
}

// NewVideoGenerationModel creates a video model wrapper from its
// configuration.
//
// Inputs:
//   - client: The shared GenAI client.
//   - cfg: The video model configuration (name, polling cadence, limits).
//
// Outputs:
//   - *VideoGenerationModel: A pointer to the newly created wrapper.
func NewVideoGenerationModel(client *genai.Client, cfg VertexAiVideoModel) *VideoGenerationModel {
	requestsPerSecond := cfg.RateLimit
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	pollInterval := time.Duration(cfg.PollIntervalSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &VideoGenerationModel{
		Client:       client,
		ModelName:    cfg.Model,
		AspectRatio:  cfg.AspectRatio,
		RateLimit:    rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
		PollInterval: pollInterval,
		Timeout:      timeout,
	}
}

// GenerateVideo submits a single-clip generation request, polls the
// operation until it finishes, and returns the raw video bytes. The
// optional reference image conditions the generation; pass nil for a
// text-only prompt.
//
// Inputs:
//   - ctx: The context for the request.
//   - prompt: The full clip prompt text.
//   - reference: An optional still image to condition on, or nil.
//
// Outputs:
//   - []byte: The MP4 content of the generated clip.
//   - error: An error if submission, polling, or download fails.
func (v *VideoGenerationModel) GenerateVideo(ctx context.Context, prompt string, reference *genai.Image) ([]byte, error) {
	if err := v.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}

	config := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
	}
	if v.AspectRatio != "" {
		config.AspectRatio = v.AspectRatio
	}

	operation, err := v.Client.Models.GenerateVideos(ctx, v.ModelName, prompt, reference, config)
	if err != nil {
		return nil, fmt.Errorf("submitting video generation: %w", err)
	}

	deadline := time.Now().Add(v.Timeout)
	for !operation.Done {
		if time.Now().After(deadline) {
			return nil, errors.New("video generation timed out")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(v.PollInterval):
		}
		operation, err = v.Client.Operations.GetVideosOperation(ctx, operation, nil)
		if err != nil {
			return nil, fmt.Errorf("polling video generation: %w", err)
		}
	}

	if operation.Response == nil || len(operation.Response.GeneratedVideos) == 0 {
		return nil, errors.New("video generation completed with no output")
	}
	video := operation.Response.GeneratedVideos[0]
	if video.Video == nil {
		return nil, errors.New("video generation completed with no output")
	}
	if _, err := v.Client.Files.Download(ctx, video.Video, nil); err != nil {
		return nil, fmt.Errorf("downloading generated video: %w", err)
	}
	if len(video.Video.VideoBytes) == 0 {
		return nil, errors.New("generated video has no content")
	}
	return video.Video.VideoBytes, nil
}
