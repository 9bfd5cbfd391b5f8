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
// Responsibility (COR) pattern's Command interface for the video generation
// pipeline. This file defines the collaborator interfaces the commands
// depend on. The cloud and media packages provide the production
// implementations; tests substitute fakes.
package commands

import (
	"context"

	"github.com/aisocialninja/anime-studio-server/internal/media"
	"google.golang.org/genai"
)

// VideoGenerator produces one video clip from a prompt and an optional
// conditioning image. cloud.VideoGenerationModel is the production
// implementation.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, prompt string, reference *genai.Image) ([]byte, error)
}

// Transcoder is the slice of the media engine the pipeline commands use.
// *media.Engine is the production implementation.
type Transcoder interface {
	Stitch(ctx context.Context, clips [][]byte) ([]byte, error)
	MergeAudio(ctx context.Context, video []byte, audio []byte) ([]byte, error)
	ExtractFrame(ctx context.Context, video []byte, fraction float64) (*media.Frame, error)
}
