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

// Package workflow_test contains integration-style tests for the video
// generation pipeline. This file provides the shared fakes that stand in
// for the generative models and the ffmpeg engine, plus a configuration
// builder, so the full chain can run hermetically.
package workflow_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/aisocialninja/anime-studio-server/internal/cloud"
	"github.com/aisocialninja/anime-studio-server/internal/core/workflow"
	"github.com/aisocialninja/anime-studio-server/internal/media"
	"github.com/aisocialninja/anime-studio-server/internal/store"
	test "github.com/aisocialninja/anime-studio-server/internal/testutil"
	"google.golang.org/genai"
)

// pngBytes carries the PNG magic number so reference sniffing sees an image.
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

// fakeTextModel returns scripted responses in order, one per call.
type fakeTextModel struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeTextModel) GenerateContent(_ context.Context, _ []*genai.Content) (*genai.GenerateContentResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	text := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}, nil
}

// fakeVideoModel fabricates one clip per call and records the prompts and
// conditioning images it was given. An optional gate channel lets a test
// hold the first clip open to exercise the single-flight runner.
type fakeVideoModel struct {
	err     error
	prompts []string
	images  []*genai.Image
	started chan struct{}
	release chan struct{}
}

func (f *fakeVideoModel) GenerateVideo(_ context.Context, prompt string, reference *genai.Image) ([]byte, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	f.prompts = append(f.prompts, prompt)
	f.images = append(f.images, reference)
	return []byte(fmt.Sprintf("clip-%d;", len(f.prompts))), nil
}

// fakeTranscoder is an in-memory stand-in for the ffmpeg engine. Stitching
// concatenates the clip payloads, merging tags the audio on, and frame
// extraction returns a fixed JPEG marker.
type fakeTranscoder struct {
	stitchErr  error
	mergeErr   error
	extractErr error
	extracted  int
}

func (f *fakeTranscoder) Stitch(_ context.Context, clips [][]byte) ([]byte, error) {
	if f.stitchErr != nil {
		return nil, f.stitchErr
	}
	return bytes.Join(clips, nil), nil
}

func (f *fakeTranscoder) MergeAudio(_ context.Context, video []byte, audio []byte) ([]byte, error) {
	if f.mergeErr != nil {
		return nil, f.mergeErr
	}
	out := append([]byte{}, video...)
	return append(out, audio...), nil
}

func (f *fakeTranscoder) ExtractFrame(_ context.Context, _ []byte, _ float64) (*media.Frame, error) {
	f.extracted++
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return &media.Frame{Bytes: []byte("frame"), MIMEType: "image/jpeg"}, nil
}

// newTestConfig builds a configuration with the same template parameters
// the shipped TOML files use, without touching the filesystem.
func newTestConfig() *cloud.Config {
	config := cloud.NewConfig()
	config.PromptTemplates = cloud.PromptTemplates{
		Storyboard: `Storyboard {{.SCENE_COUNT}} scenes of {{.SCENE_SECONDS}}s for "{{.PROMPT}}" in style {{.STYLE}}. Example: {{.EXAMPLE_JSON}}`,
		Clip:       `Create a {{.DURATION}}-second, {{.RESOLUTION}} clip. Style: {{.STYLE}}. Scene: {{.SCENE}}. Camera: {{.CAMERA}}.`,
	}
	return config
}

// newTestWorkflow assembles a pipeline over the fakes and fresh stores.
func newTestWorkflow(t *testing.T, textModel *fakeTextModel, videoModel *fakeVideoModel, transcoder *fakeTranscoder) (*workflow.GenerationWorkflow, *store.BlobStore, *store.MetadataStore) {
	dir := t.TempDir()
	blobs := store.NewBlobStore(filepath.Join(dir, "videos"))
	metadata := store.NewMetadataStore(filepath.Join(dir, "history.json"))
	pipeline := workflow.NewGenerationWorkflow(newTestConfig(), textModel, videoModel, transcoder, blobs, metadata)
	return pipeline, blobs, metadata
}

// storyboardJSON is the canned three-scene director response shared by the
// pipeline tests.
var storyboardJSON = test.GetTestStoryboardJSON()
