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

// Package cloud_test contains unit tests for the cloud package. This file
// loads the shipped TOML configuration through the hierarchical loader and
// checks that everything the server expects at startup is actually there:
// the model entries, the prompt templates, and the audio library.
package cloud_test

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"text/template"

	"github.com/aisocialninja/anime-studio-server/internal/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadTestConfig points the loader at the repository's configs directory,
// relative to this test package, and loads the test runtime.
func loadTestConfig(t *testing.T) *cloud.Config {
	t.Setenv(cloud.EnvConfigFilePrefix, "../../../configs")
	t.Setenv(cloud.EnvConfigRuntime, "test")

	config := cloud.NewConfig()
	cloud.LoadConfig(config)
	return config
}

// TestLoadConfigHierarchy verifies base values load and the test runtime
// file overrides them.
func TestLoadConfigHierarchy(t *testing.T) {
	config := loadTestConfig(t)

	// Overridden by .env.test.toml.
	assert.Equal(t, "anime-studio-server-test", config.Application.Name)
	assert.Equal(t, "test-project", config.Application.GoogleProjectId)
	assert.Equal(t, "/tmp/anime-studio-test", config.Storage.DataDir)

	// Inherited from the base file.
	assert.Equal(t, "us-central1", config.Application.GoogleLocation)
	assert.Equal(t, "ffmpeg", config.FFmpeg.FfmpegPath)
}

// TestConfigModelEntries verifies the logical model names the server looks
// up at startup are present with sane parameters.
func TestConfigModelEntries(t *testing.T) {
	config := loadTestConfig(t)

	storyboard, ok := config.AgentModels["storyboard"]
	require.True(t, ok)
	assert.Equal(t, "gemini-2.5-flash", storyboard.Model)
	assert.Equal(t, "application/json", storyboard.OutputFormat)
	assert.InDelta(t, 0.7, storyboard.Temperature, 0.001)

	suggestions, ok := config.AgentModels["suggestions"]
	require.True(t, ok)
	assert.InDelta(t, 0.85, suggestions.Temperature, 0.001)
	assert.InDelta(t, 0.9, suggestions.TopP, 0.001)

	clip, ok := config.VideoModels["clip"]
	require.True(t, ok)
	assert.Equal(t, "veo-2.0-generate-001", clip.Model)
	assert.True(t, clip.PollIntervalSeconds > 0)
	assert.True(t, clip.TimeoutSeconds > 0)
}

// TestConfigPromptTemplates verifies the shipped templates compile and
// render with the parameter names the pipeline injects.
func TestConfigPromptTemplates(t *testing.T) {
	config := loadTestConfig(t)

	storyboard, err := template.New("storyboard").Parse(config.PromptTemplates.Storyboard)
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, storyboard.Execute(&out, map[string]interface{}{
		"PROMPT":        "a paper crane comes to life",
		"STYLE":         "Default",
		"SCENE_COUNT":   3,
		"SCENE_SECONDS": 5,
		"VIDEO_SECONDS": 15,
		"EXAMPLE_JSON":  `{"scenes": []}`,
	}))
	assert.Contains(t, out.String(), "a paper crane comes to life")
	assert.Contains(t, out.String(), "exactly 3 scenes")

	clip, err := template.New("clip").Parse(config.PromptTemplates.Clip)
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, clip.Execute(&out, map[string]interface{}{
		"DURATION":   5,
		"RESOLUTION": "standard-definition (720p)",
		"STYLE":      "Default",
		"SCENE":      "the crane unfolds",
		"CAMERA":     "pan left",
	}))
	assert.Contains(t, out.String(), "5-second")
	assert.Contains(t, out.String(), "the crane unfolds")

	suggestions, err := template.New("suggestions").Parse(config.PromptTemplates.Suggestions)
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, suggestions.Execute(&out, map[string]interface{}{
		"COUNT":   3,
		"PROMPTS": []string{"first prompt", "second prompt"},
	}))
	assert.Contains(t, out.String(), `- "first prompt"`)
	assert.Contains(t, out.String(), `- "second prompt"`)
}

// TestConfigAudioLibrary verifies the built-in track list.
func TestConfigAudioLibrary(t *testing.T) {
	config := loadTestConfig(t)

	require.Equal(t, 4, len(config.AudioLibrary))
	names := make([]string, 0, len(config.AudioLibrary))
	for _, track := range config.AudioLibrary {
		assert.True(t, strings.HasPrefix(track.URL, "https://"))
		names = append(names, track.Name)
	}
	assert.Contains(t, names, "Cinematic Epic")
	assert.Contains(t, names, "Rainy City Ambience")
}

// TestStripCodeFences verifies fence stripping on the shapes models
// actually produce.
func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cloud.StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cloud.StripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cloud.StripCodeFences(`{"a":1}`))
	assert.Equal(t, "plain text", cloud.StripCodeFences("  plain text\n"))
}

// TestStoragePathResolution verifies relative paths resolve under the data
// directory while absolute paths pass through.
func TestStoragePathResolution(t *testing.T) {
	storage := cloud.Storage{DataDir: "/data", VideoDir: "videos", HistoryFile: "history.json"}
	assert.Equal(t, "/data/videos", storage.VideoPath())
	assert.Equal(t, "/data/history.json", storage.HistoryPath())

	storage.VideoDir = string(os.PathSeparator) + "abs-videos"
	assert.Equal(t, "/abs-videos", storage.VideoPath())
}
