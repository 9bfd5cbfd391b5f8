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

// Package model defines the core data structures for the application.
// This file defines the error taxonomy for the generation pipeline. Every
// stage failure is wrapped in a StageError carrying the stage that failed
// and a single human-readable message, so the API layer can categorize the
// failure without inspecting stage internals.
package model

import (
	"errors"
	"fmt"
)

// Stage identifies which pipeline stage produced an error.
type Stage string

const (
	StageStoryboard     Stage = "storyboard"
	StageClipGeneration Stage = "clip-generation"
	StageMediaDecode    Stage = "media-decode"
	StageStitch         Stage = "stitch"
	StageAudioMerge     Stage = "audio-merge"
	StageStorage        Stage = "storage"
)

// StageError is a categorized pipeline failure. A failing stage aborts the
// whole run; the single StageError that reaches the caller is the only
// error surfaced for the request.
type StageError struct {
	Stage   Stage
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStoryboardError reports a failure to obtain a valid storyboard: the
// director model's response was not parseable JSON, or it violated the
// three-scene contract.
func NewStoryboardError(message string, err error) *StageError {
	return &StageError{Stage: StageStoryboard, Message: message, Err: err}
}

// NewClipGenerationError reports a video model failure for one scene.
func NewClipGenerationError(message string, err error) *StageError {
	return &StageError{Stage: StageClipGeneration, Message: message, Err: err}
}

// NewMediaDecodeError reports a reference video that could not be decoded.
// It is deliberately distinct from a clip-generation failure so the caller
// can tell the user to replace the uploaded file.
func NewMediaDecodeError(message string, err error) *StageError {
	return &StageError{Stage: StageMediaDecode, Message: message, Err: err}
}

// NewStitchError reports a failed concatenation of the generated clips.
func NewStitchError(message string, err error) *StageError {
	return &StageError{Stage: StageStitch, Message: message, Err: err}
}

// NewAudioMergeError reports a failed audio overlay on the stitched video.
func NewAudioMergeError(message string, err error) *StageError {
	return &StageError{Stage: StageAudioMerge, Message: message, Err: err}
}

// NewStorageError reports a local store failure while persisting or removing
// the generated video or its history record.
func NewStorageError(message string, err error) *StageError {
	return &StageError{Stage: StageStorage, Message: message, Err: err}
}

// StageOf extracts the stage from an error chain, or an empty Stage when
// the error did not originate in a pipeline stage.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
