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

package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
)

// ReferenceFrameFraction is where in a video reference the representative
// frame is sampled: a quarter of the way through, past any fade-in but
// early enough to show the establishing shot.
const ReferenceFrameFraction = 0.25

// UnsupportedTypeError reports media content whose detected type is neither
// a supported image nor a supported video.
type UnsupportedTypeError struct {
	Detected string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Detected == "" {
		return "media: unrecognized content type"
	}
	return fmt.Sprintf("media: unsupported content type %q", e.Detected)
}

// EncodeDataURL renders content as a base64 data URL.
func EncodeDataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// SniffMIMEType detects the MIME type of raw media content. It ignores any
// client-declared type; only the magic bytes count.
func SniffMIMEType(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("media: sniffing content type: %w", err)
	}
	if kind == filetype.Unknown {
		return "", &UnsupportedTypeError{}
	}
	return kind.MIME.Value, nil
}

// FrameExtractor is the slice of the engine that reference resolution
// needs. *Engine satisfies it; tests substitute a fake.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, video []byte, fraction float64) (*Frame, error)
}

// ReferenceFrame resolves raw reference media into a single still image a
// generation model can condition on. Image content passes through with its
// detected MIME type; video content yields the frame a quarter of the way
// through. Anything else is an UnsupportedTypeError.
func ReferenceFrame(ctx context.Context, extractor FrameExtractor, data []byte) (*Frame, error) {
	mimeType, err := SniffMIMEType(data)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return &Frame{Bytes: data, MIMEType: mimeType}, nil
	case strings.HasPrefix(mimeType, "video/"):
		return extractor.ExtractFrame(ctx, data, ReferenceFrameFraction)
	default:
		return nil, &UnsupportedTypeError{Detected: mimeType}
	}
}
