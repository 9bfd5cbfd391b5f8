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

package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/aisocialninja/anime-studio-server/internal/core/commands"
	"github.com/aisocialninja/anime-studio-server/internal/core/model"
)

// ErrGenerationInProgress is returned when a generation is requested while
// another run holds the pipeline.
var ErrGenerationInProgress = errors.New("a video generation is already in progress")

// Runner serializes access to the generation workflow. Generation is
// expensive and quota-bound, so only one run may be in flight at a time;
// a second request is rejected immediately rather than queued.
type Runner struct {
	workflow *GenerationWorkflow
	mu       sync.Mutex
}

// NewRunner wraps a workflow in a single-flight runner.
func NewRunner(workflow *GenerationWorkflow) *Runner {
	return &Runner{workflow: workflow}
}

// Run executes one generation, failing fast with ErrGenerationInProgress
// when another run is active.
func (r *Runner) Run(ctx context.Context, request *model.GenerationRequest, progress commands.ProgressFunc) (*model.HistoryMetadata, error) {
	if !r.mu.TryLock() {
		return nil, ErrGenerationInProgress
	}
	defer r.mu.Unlock()
	return r.workflow.Run(ctx, request, progress)
}

// Busy reports whether a run is currently in flight.
func (r *Runner) Busy() bool {
	if r.mu.TryLock() {
		r.mu.Unlock()
		return false
	}
	return true
}
