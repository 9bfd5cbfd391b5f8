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

// Package media wraps the FFmpeg and FFprobe command-line tools behind a
// small Engine type. The engine owns a scratch directory for intermediate
// files and exposes the three transformations the video pipeline needs:
// concatenating clips, muxing an audio track, and extracting a single frame.
//
// All operations work on in-memory byte slices at the API boundary. Each
// call materializes its inputs into a private subdirectory of the scratch
// directory, runs the tool, reads the result back, and removes the
// subdirectory before returning, on success and failure alike. Scratch
// usage is therefore bounded by the calls in flight, not by process
// lifetime. This keeps callers free of path bookkeeping and makes the
// engine trivially replaceable by a fake in tests.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
)

// Format strings for the FFmpeg invocations. Arguments never contain
// spaces (the engine controls every path), so splitting on spaces is safe.
const (
	// concatArgs stitches clips listed in a concat-demuxer manifest into a
	// single file without re-encoding.
	// -f concat -safe 0: read the manifest even with absolute paths.
	// -c copy: stream copy, no transcode.
	concatArgs = "-y -hide_banner -f concat -safe 0 -i %s -c copy %s"

	// mergeAudioArgs muxes an audio track onto a video.
	// -c:v copy: keep the video stream untouched.
	// -c:a aac: encode the audio to AAC for MP4 compatibility.
	// -shortest: trim the output to the shorter of the two inputs.
	mergeAudioArgs = "-y -hide_banner -i %s -i %s -c:v copy -c:a aac -shortest %s"

	// extractFrameArgs grabs a single frame at the given timestamp.
	// -ss before -i for fast seek; -frames:v 1 stops after one frame;
	// -q:v 2 keeps JPEG quality high.
	extractFrameArgs = "-y -hide_banner -ss %s -i %s -frames:v 1 -q:v 2 %s"

	// probeDurationArgs asks FFprobe for the container duration in seconds,
	// printed as a bare number.
	probeDurationArgs = "-v error -show_entries format=duration -of default=noprint_wrappers=1:nokey=1 %s"

	commandSeparator = " "
)

// Frame is a single still image extracted from a video.
type Frame struct {
	Bytes    []byte
	MIMEType string
}

// DataURL renders the frame as a base64 data URL suitable for embedding in
// a metadata record.
func (f *Frame) DataURL() string {
	return EncodeDataURL(f.MIMEType, f.Bytes)
}

// Engine executes FFmpeg and FFprobe against a private scratch directory.
// Construct it with NewEngine and release the scratch space with Close.
// The engine is safe for concurrent use; each call works in its own
// subdirectory, sequenced with an atomic counter, and reclaims it before
// returning.
type Engine struct {
	ffmpegPath  string
	ffprobePath string
	workDir     string
	seq         atomic.Uint64
}

// NewEngine creates an engine using the given executable paths. An empty
// path falls back to looking the tool up on PATH. The scratch directory is
// created immediately so a misconfigured environment fails fast.
func NewEngine(ffmpegPath string, ffprobePath string) (*Engine, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	workDir, err := os.MkdirTemp("", "media-engine-")
	if err != nil {
		return nil, fmt.Errorf("creating media scratch dir: %w", err)
	}
	return &Engine{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		workDir:     workDir,
	}, nil
}

// Close removes the engine's scratch directory and everything in it.
func (e *Engine) Close() error {
	return os.RemoveAll(e.workDir)
}

// callDir creates a fresh subdirectory for a single engine call. The caller
// removes it before returning so intermediate files never outlive the call
// that produced them.
func (e *Engine) callDir() (string, error) {
	dir := filepath.Join(e.workDir, fmt.Sprintf("call-%d", e.seq.Add(1)))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating call scratch dir: %w", err)
	}
	return dir, nil
}

// run executes the tool at path with the expanded format-string args,
// capturing stderr for the error message.
func run(ctx context.Context, path string, args string) error {
	cmd := exec.CommandContext(ctx, path, strings.Split(args, commandSeparator)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", filepath.Base(path), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Stitch concatenates the given MP4 clips, in order, into a single MP4
// using the concat demuxer with stream copy. All clips must share encoding
// parameters, which holds for clips produced by a single generation run.
func (e *Engine) Stitch(ctx context.Context, clips [][]byte) ([]byte, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("stitch requires at least one clip")
	}
	dir, err := e.callDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	var manifest strings.Builder
	for i, clip := range clips {
		clipPath := filepath.Join(dir, fmt.Sprintf("clip-%d.mp4", i+1))
		if err := os.WriteFile(clipPath, clip, 0o644); err != nil {
			return nil, fmt.Errorf("writing clip %d: %w", i+1, err)
		}
		fmt.Fprintf(&manifest, "file '%s'\n", clipPath)
	}
	manifestPath := filepath.Join(dir, "concat.txt")
	if err := os.WriteFile(manifestPath, []byte(manifest.String()), 0o644); err != nil {
		return nil, fmt.Errorf("writing concat manifest: %w", err)
	}
	outPath := filepath.Join(dir, "stitched.mp4")
	args := fmt.Sprintf(concatArgs, manifestPath, outPath)
	if err := run(ctx, e.ffmpegPath, args); err != nil {
		return nil, err
	}
	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading stitched output: %w", err)
	}
	return out, nil
}

// MergeAudio muxes the audio track onto the video, trimming the result to
// the shorter input. The video stream is copied unchanged.
func (e *Engine) MergeAudio(ctx context.Context, video []byte, audio []byte) ([]byte, error) {
	dir, err := e.callDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	videoPath := filepath.Join(dir, "merge-video.mp4")
	if err := os.WriteFile(videoPath, video, 0o644); err != nil {
		return nil, fmt.Errorf("writing merge video input: %w", err)
	}
	audioPath := filepath.Join(dir, "merge-audio.audio")
	if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
		return nil, fmt.Errorf("writing merge audio input: %w", err)
	}
	outPath := filepath.Join(dir, "merged.mp4")
	args := fmt.Sprintf(mergeAudioArgs, videoPath, audioPath, outPath)
	if err := run(ctx, e.ffmpegPath, args); err != nil {
		return nil, err
	}
	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading merged output: %w", err)
	}
	return out, nil
}

// Duration reports the container duration of the video in seconds.
func (e *Engine) Duration(ctx context.Context, video []byte) (float64, error) {
	dir, err := e.callDir()
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)
	videoPath := filepath.Join(dir, "probe.mp4")
	if err := os.WriteFile(videoPath, video, 0o644); err != nil {
		return 0, fmt.Errorf("writing probe input: %w", err)
	}
	args := fmt.Sprintf(probeDurationArgs, videoPath)
	cmd := exec.CommandContext(ctx, e.ffprobePath, strings.Split(args, commandSeparator)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ffprobe duration %q: %w", stdout.String(), err)
	}
	return duration, nil
}

// ExtractFrame pulls a single JPEG frame from the video at the given
// fraction of its duration (0.25 means a quarter of the way in). The
// fraction is clamped to [0, 1).
func (e *Engine) ExtractFrame(ctx context.Context, video []byte, fraction float64) (*Frame, error) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction >= 1 {
		fraction = 0.99
	}
	duration, err := e.Duration(ctx, video)
	if err != nil {
		return nil, err
	}
	timestamp := strconv.FormatFloat(duration*fraction, 'f', 3, 64)
	dir, err := e.callDir()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	videoPath := filepath.Join(dir, "frame-src.mp4")
	if err := os.WriteFile(videoPath, video, 0o644); err != nil {
		return nil, fmt.Errorf("writing frame input: %w", err)
	}
	outPath := filepath.Join(dir, "frame.jpg")
	args := fmt.Sprintf(extractFrameArgs, timestamp, videoPath, outPath)
	if err := run(ctx, e.ffmpegPath, args); err != nil {
		return nil, err
	}
	frameBytes, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading extracted frame: %w", err)
	}
	return &Frame{Bytes: frameBytes, MIMEType: "image/jpeg"}, nil
}
