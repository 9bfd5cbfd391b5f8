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

// Package services contains the business logic sitting between the HTTP
// handlers and the stores. This file defines the SuggestionService, which
// studies the user's saved prompts and proposes new ones in the same vein.
//
// The service is deliberately forgiving: suggestions are a nicety, so any
// failure — too few saved prompts, a model error, malformed output —
// produces an empty list rather than an error. Results are cached in
// memory keyed on the number of saved prompts; saving or deleting a video
// changes the count and invalidates the cache.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/aisocialninja/anime-studio-server/internal/cloud"
	"github.com/aisocialninja/anime-studio-server/internal/store"
)

// SuggestionCount is how many prompt ideas one request yields.
const SuggestionCount = 3

// MinSavedPrompts is how many saved prompts the engine needs before it has
// enough signal to suggest anything.
const MinSavedPrompts = 2

// SuggestionService generates prompt ideas from the user's saved history.
type SuggestionService struct {
	metadata           *store.MetadataStore
	textModel          cloud.ContentGenerator
	template           *template.Template
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter

	mu          sync.Mutex
	cachedCount int
	cached      []string
}

// NewSuggestionService is the constructor for the SuggestionService.
//
// Inputs:
//   - metadata: The history metadata store the saved prompts are read from.
//   - textModel: The rate-limited text model.
//   - promptTemplate: The suggestions prompt template text.
//
// Outputs:
//   - *SuggestionService: A pointer to the newly created service.
func NewSuggestionService(metadata *store.MetadataStore, textModel cloud.ContentGenerator, promptTemplate string) *SuggestionService {
	tmpl, err := template.New("suggestions-template").Parse(promptTemplate)
	if err != nil {
		panic(err)
	}
	out := &SuggestionService{
		metadata:  metadata,
		textModel: textModel,
		template:  tmpl,
	}
	meter := otel.Meter("github.com/aisocialninja/anime-studio-server")
	out.inputTokenCounter, _ = meter.Int64Counter("suggestion-service.gemini.token.input")
	out.outputTokenCounter, _ = meter.Int64Counter("suggestion-service.gemini.token.output")
	return out
}

// GetSuggestions returns up to SuggestionCount new prompt ideas, or an
// empty slice when there is not enough saved history or generation fails.
func (s *SuggestionService) GetSuggestions(ctx context.Context) []string {
	prompts, err := s.metadata.SavedPrompts()
	if err != nil {
		slog.Warn("failed to read saved prompts for suggestions", "error", err)
		return []string{}
	}
	if len(prompts) < MinSavedPrompts {
		return []string{}
	}

	s.mu.Lock()
	if s.cachedCount == len(prompts) && len(s.cached) > 0 {
		cached := s.cached
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	suggestions := s.generate(ctx, prompts)
	if len(suggestions) > 0 {
		s.mu.Lock()
		s.cachedCount = len(prompts)
		s.cached = suggestions
		s.mu.Unlock()
	}
	return suggestions
}

// generate renders the prompt and asks the model for a JSON array of
// exactly SuggestionCount strings. Anything else comes back empty.
func (s *SuggestionService) generate(ctx context.Context, prompts []string) []string {
	params := map[string]interface{}{
		"PROMPTS": prompts,
		"COUNT":   SuggestionCount,
	}
	var buffer bytes.Buffer
	if err := s.template.Execute(&buffer, params); err != nil {
		slog.Warn("failed to build suggestions prompt", "error", err)
		return []string{}
	}

	out, err := cloud.GenerateTextResponse(ctx, s.inputTokenCounter, s.outputTokenCounter, s.textModel, buffer.String())
	if err != nil {
		slog.Warn("suggestion model request failed", "error", err)
		return []string{}
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(out), &suggestions); err != nil {
		slog.Warn("suggestion model returned malformed output", "error", err)
		return []string{}
	}
	if len(suggestions) > SuggestionCount {
		suggestions = suggestions[:SuggestionCount]
	}
	for _, suggestion := range suggestions {
		if suggestion == "" {
			slog.Warn(fmt.Sprintf("suggestion model returned an empty entry among %d", len(suggestions)))
			return []string{}
		}
	}
	return suggestions
}
