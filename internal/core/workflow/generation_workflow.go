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

// Package workflow defines the high-level business logic orchestrations,
// combining commands into coherent pipelines. This file implements the
// video generation workflow: prompt in, persisted history record out.
package workflow

import (
	"context"
	"text/template"

	"github.com/aisocialninja/anime-studio-server/internal/cloud"
	"github.com/aisocialninja/anime-studio-server/internal/core/commands"
	"github.com/aisocialninja/anime-studio-server/internal/core/cor"
	"github.com/aisocialninja/anime-studio-server/internal/core/model"
	"github.com/aisocialninja/anime-studio-server/internal/store"
)

// Context parameter names shared by the commands in the generation chain.
const (
	RequestParamName        = "__generation_request__"
	StoryboardParamName     = "__storyboard__"
	ReferenceFrameParamName = "__reference_frame__"
	ClipsParamName          = "__clips__"
	StitchedVideoParamName  = "__stitched_video__"
	FinalVideoParamName     = "__final_video__"
	ThumbnailParamName      = "__thumbnail__"
	HistoryRecordParamName  = "__history_record__"
)

// GenerationWorkflow orchestrates the full text-to-video pipeline. It is
// structured as a Chain of Responsibility (cor.Chain) executing a sequence
// of commands: storyboard the prompt, parse and validate the storyboard,
// resolve the visual reference, generate one clip per scene, stitch the
// clips, merge audio, build a thumbnail, and persist the result.
type GenerationWorkflow struct {
	cor.BaseCommand
	config             *cloud.Config
	textModel          cloud.ContentGenerator
	videoModel         commands.VideoGenerator
	transcoder         commands.Transcoder
	blobs              *store.BlobStore
	metadata           *store.MetadataStore
	storyboardTemplate *template.Template
	clipTemplate       *template.Template
	chain              cor.Chain
}

// Execute runs the entire generation workflow by invoking the underlying
// chain.
func (w *GenerationWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run is the blocking entry point for one generation. It builds a fresh
// chain context around the request, executes the pipeline, and returns the
// persisted history record.
//
// Inputs:
//   - ctx: The Go context governing cancellation for the whole run.
//   - request: The validated generation request.
//   - progress: An optional callback receiving status messages. May be nil.
//
// Outputs:
//   - *model.HistoryMetadata: The persisted record for the new video.
//   - error: The stage error that aborted the pipeline, if any.
func (w *GenerationWorkflow) Run(ctx context.Context, request *model.GenerationRequest, progress commands.ProgressFunc) (*model.HistoryMetadata, error) {
	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(RequestParamName, request)
	if progress != nil {
		chainCtx.Add(commands.ProgressParamName, progress)
	}

	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for _, err := range chainCtx.GetErrors() {
			return nil, err
		}
	}
	record, _ := chainCtx.Get(HistoryRecordParamName).(*model.HistoryMetadata)
	return record, nil
}

// initializeChain builds the sequence of commands that make up the
// pipeline. Called by the constructor.
func (w *GenerationWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Ask the director model for a storyboard. The raw JSON lands
	// in the default output slot and is piped to the next command.
	out.AddCommand(commands.NewStoryboardCreator(
		"create-storyboard", RequestParamName, w.textModel, w.storyboardTemplate))

	// Step 2: Parse and validate the storyboard JSON into a struct.
	out.AddCommand(commands.NewStoryboardJsonToStruct(
		"convert-storyboard", StoryboardParamName))

	// Step 3: Resolve the optional visual reference into a conditioning
	// frame. Passes through silently when no reference was uploaded.
	out.AddCommand(commands.NewReferenceResolver(
		"resolve-visual-reference", RequestParamName, ReferenceFrameParamName, w.transcoder))

	// Step 4: Generate one clip per scene, in order. Only the first scene
	// is conditioned on the reference frame.
	out.AddCommand(commands.NewClipGenerator(
		"generate-scene-clips",
		StoryboardParamName, RequestParamName, ReferenceFrameParamName, ClipsParamName,
		w.videoModel, w.clipTemplate))

	// Step 5: Stitch the clips into one continuous video.
	out.AddCommand(commands.NewClipStitcher(
		"stitch-clips", ClipsParamName, StitchedVideoParamName, w.transcoder))

	// Step 6: Merge the audio track, when the request has one.
	out.AddCommand(commands.NewAudioMerger(
		"merge-audio", StitchedVideoParamName, RequestParamName, FinalVideoParamName, w.transcoder))

	// Step 7: Derive the history thumbnail. Never fails the run.
	out.AddCommand(commands.NewThumbnailCreator(
		"create-thumbnail", FinalVideoParamName, ReferenceFrameParamName, ThumbnailParamName, w.transcoder))

	// Step 8: Persist the video blob and its metadata record, blob first,
	// with rollback on a metadata failure.
	out.AddCommand(commands.NewHistoryWriter(
		"write-history",
		FinalVideoParamName, RequestParamName, ThumbnailParamName, HistoryRecordParamName,
		w.blobs, w.metadata))

	w.chain = out
}

// NewGenerationWorkflow is the constructor for the GenerationWorkflow. It
// compiles the prompt templates and assembles the command chain.
//
// Inputs:
//   - config: The application's overall configuration.
//   - textModel: The director text model.
//   - videoModel: The clip generation model.
//   - transcoder: The media engine.
//   - blobs: The video blob store.
//   - metadata: The history metadata store.
//
// Returns:
//   - A pointer to a newly created and fully initialized GenerationWorkflow.
func NewGenerationWorkflow(
	config *cloud.Config,
	textModel cloud.ContentGenerator,
	videoModel commands.VideoGenerator,
	transcoder commands.Transcoder,
	blobs *store.BlobStore,
	metadata *store.MetadataStore) *GenerationWorkflow {

	storyboardTemplate, err := template.New("storyboard-template").Parse(config.PromptTemplates.Storyboard)
	if err != nil {
		panic(err) // The app cannot run without valid templates.
	}
	clipTemplate, err := template.New("clip-template").Parse(config.PromptTemplates.Clip)
	if err != nil {
		panic(err)
	}

	pipeline := &GenerationWorkflow{
		BaseCommand:        *cor.NewBaseCommand("generation-pipeline"),
		config:             config,
		textModel:          textModel,
		videoModel:         videoModel,
		transcoder:         transcoder,
		blobs:              blobs,
		metadata:           metadata,
		storyboardTemplate: storyboardTemplate,
		clipTemplate:       clipTemplate,
	}
	pipeline.initializeChain()
	return pipeline
}
