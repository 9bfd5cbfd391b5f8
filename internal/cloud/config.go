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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, along with the clients and model wrappers for
// talking to Vertex AI and Google Cloud Storage.
//
// This file centralizes all configuration-related structs.
//
// Structs:
//   - PromptTemplates: Text templates for the prompts sent to GenAI models.
//   - VertexAiLLMModel: Configuration for a Vertex AI text model.
//   - VertexAiVideoModel: Configuration for a Vertex AI video generation model.
//   - Storage: Local data directory layout plus the optional archive bucket.
//   - FFmpeg: Paths to the ffmpeg and ffprobe executables.
//   - Uploads: Size caps for client-supplied reference media and audio.
//   - AudioTrack: One entry of the built-in background audio library.
//   - Config: The top-level struct aggregating everything above.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for
// GenAI models. These settings are non-restrictive, allowing all content
// categories through without being blocked, which suits a controlled
// creative tool where the input prompts are the user's own.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// PromptTemplates holds the templates for the different prompt types. Each
// template is rendered with Go's text/template before being sent to the
// model.
type PromptTemplates struct {
	Storyboard  string `toml:"storyboard"`  // The template for breaking a prompt into scenes.
	Clip        string `toml:"clip"`        // The template for turning one scene into a video prompt.
	Suggestions string `toml:"suggestions"` // The template for generating new prompt ideas.
}

// VertexAiLLMModel represents the configuration for a Vertex AI text model.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Vertex AI model.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the model.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter.
	TopP               float32 `toml:"top_p"`               // The top_p parameter.
	TopK               float32 `toml:"top_k"`               // The top_k parameter.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of output tokens.
	OutputFormat       string  `toml:"output_format"`       // The desired output MIME type (e.g. "application/json").
	RateLimit          int     `toml:"rate_limit"`          // The rate limit in requests per second.
}

// VertexAiVideoModel represents the configuration for a Vertex AI video
// generation model. Video generation is a long-running operation, so it
// carries polling parameters alongside the model name.
type VertexAiVideoModel struct {
	Model               string `toml:"model"`                 // The name of the video model (e.g. "veo-2.0-generate-001").
	AspectRatio         string `toml:"aspect_ratio"`          // The requested aspect ratio (e.g. "16:9").
	RateLimit           int    `toml:"rate_limit"`            // The rate limit in requests per second.
	PollIntervalSeconds int    `toml:"poll_interval_seconds"` // How often to poll the long-running operation.
	TimeoutSeconds      int    `toml:"timeout_seconds"`       // How long to wait for one clip before giving up.
}

// Storage describes the local data layout and the optional cloud archive.
type Storage struct {
	DataDir       string `toml:"data_dir"`       // Root directory for all persisted state.
	VideoDir      string `toml:"video_dir"`      // Directory for generated video blobs, relative to DataDir if not absolute.
	HistoryFile   string `toml:"history_file"`   // Path of the history metadata file, relative to DataDir if not absolute.
	ArchiveBucket string `toml:"archive_bucket"` // Optional GCS bucket that saved videos are copied into. Empty disables archiving.
}

// FFmpeg holds the executable paths for the media tools. Empty values fall
// back to PATH lookup.
type FFmpeg struct {
	FfmpegPath  string `toml:"ffmpeg_path"`
	FfprobePath string `toml:"ffprobe_path"`
}

// Uploads caps the size of client-supplied media.
type Uploads struct {
	MaxMediaBytes int64 `toml:"max_media_bytes"` // Cap for visual reference uploads.
	MaxAudioBytes int64 `toml:"max_audio_bytes"` // Cap for audio track uploads.
}

// AudioTrack is one selectable entry in the built-in background audio
// library. The URL points at a hosted audio file the server fetches on
// demand.
type AudioTrack struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Config represents the overall configuration for the application, loaded
// from TOML files. It acts as the root container for all other
// configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
		CredentialsFile string `toml:"credentials_file"`  // Optional service account key file. Empty uses ADC.
	} `toml:"application"`
	Storage         Storage                       `toml:"storage"`          // Local storage layout.
	FFmpeg          FFmpeg                        `toml:"ffmpeg"`           // Media tool paths.
	Uploads         Uploads                       `toml:"uploads"`          // Upload size caps.
	PromptTemplates PromptTemplates               `toml:"prompt_templates"` // Prompt templates.
	AgentModels     map[string]VertexAiLLMModel   `toml:"agent_models"`     // Text models, keyed by a logical name (e.g. "storyboard").
	VideoModels     map[string]VertexAiVideoModel `toml:"video_models"`     // Video models, keyed by a logical name (e.g. "clip").
	AudioLibrary    []AudioTrack                  `toml:"audio_library"`    // The built-in background audio tracks.
}

// VideoPath returns the blob directory, resolving a relative VideoDir
// against DataDir.
func (s *Storage) VideoPath() string {
	return resolveUnder(s.DataDir, s.VideoDir)
}

// HistoryPath returns the metadata file path, resolving a relative
// HistoryFile against DataDir.
func (s *Storage) HistoryPath() string {
	return resolveUnder(s.DataDir, s.HistoryFile)
}

// NewConfig creates a new, initialized Config instance. The maps must be
// initialized up front so the TOML decoder can populate them.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		AgentModels: make(map[string]VertexAiLLMModel),
		VideoModels: make(map[string]VertexAiVideoModel),
	}
}
