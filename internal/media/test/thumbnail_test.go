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

// Package media_test contains unit tests for the media package. This file
// tests the pure pieces that need no ffmpeg binary: MIME sniffing, data URL
// encoding, and reference frame resolution against a fake extractor.
package media_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aisocialninja/anime-studio-server/internal/media"
	"github.com/stretchr/testify/assert"
)

// pngBytes is a minimal payload carrying the PNG magic number, enough for
// content sniffing.
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

// mp4Bytes carries an "ftyp" box header, enough to be sniffed as video/mp4.
var mp4Bytes = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
	'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
	'i', 's', 'o', 'm', 'i', 's', 'o', '2',
}

// fakeExtractor records the frame extraction call and returns a canned frame.
type fakeExtractor struct {
	called   bool
	fraction float64
	frame    *media.Frame
	err      error
}

func (f *fakeExtractor) ExtractFrame(_ context.Context, _ []byte, fraction float64) (*media.Frame, error) {
	f.called = true
	f.fraction = fraction
	return f.frame, f.err
}

// TestSniffMIMEType verifies that detection works off magic bytes and that
// unrecognizable content yields an UnsupportedTypeError.
func TestSniffMIMEType(t *testing.T) {
	mimeType, err := media.SniffMIMEType(pngBytes)
	assert.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	mimeType, err = media.SniffMIMEType(mp4Bytes)
	assert.NoError(t, err)
	assert.Equal(t, "video/mp4", mimeType)

	_, err = media.SniffMIMEType([]byte("just some text"))
	var unsupported *media.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
}

// TestEncodeDataURL verifies the data URL shape used for history thumbnails.
func TestEncodeDataURL(t *testing.T) {
	url := media.EncodeDataURL("image/jpeg", []byte{0x01, 0x02})
	assert.Equal(t, "data:image/jpeg;base64,AQI=", url)

	frame := &media.Frame{Bytes: []byte{0x01, 0x02}, MIMEType: "image/jpeg"}
	assert.Equal(t, url, frame.DataURL())
}

// TestReferenceFrameFromImage verifies that image content passes through
// untouched; no frame extraction happens.
func TestReferenceFrameFromImage(t *testing.T) {
	extractor := &fakeExtractor{}
	frame, err := media.ReferenceFrame(context.Background(), extractor, pngBytes)

	assert.NoError(t, err)
	assert.False(t, extractor.called)
	assert.Equal(t, "image/png", frame.MIMEType)
	assert.Equal(t, pngBytes, frame.Bytes)
}

// TestReferenceFrameFromVideo verifies that video content is resolved by
// sampling a frame a quarter of the way through.
func TestReferenceFrameFromVideo(t *testing.T) {
	want := &media.Frame{Bytes: []byte("jpeg"), MIMEType: "image/jpeg"}
	extractor := &fakeExtractor{frame: want}

	frame, err := media.ReferenceFrame(context.Background(), extractor, mp4Bytes)
	assert.NoError(t, err)
	assert.True(t, extractor.called)
	assert.Equal(t, media.ReferenceFrameFraction, extractor.fraction)
	assert.Equal(t, want, frame)
}

// TestReferenceFrameExtractionFailure verifies that an extractor failure
// propagates to the caller.
func TestReferenceFrameExtractionFailure(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("corrupt container")}

	_, err := media.ReferenceFrame(context.Background(), extractor, mp4Bytes)
	assert.Error(t, err)
}

// TestReferenceFrameRejectsOtherTypes verifies that recognizable but
// unusable media (e.g. audio) is rejected with its detected type.
func TestReferenceFrameRejectsOtherTypes(t *testing.T) {
	// An MP3 frame sync header plus ID3 tag marker sniffs as audio.
	mp3 := append([]byte("ID3"), make([]byte, 16)...)

	_, err := media.ReferenceFrame(context.Background(), &fakeExtractor{}, mp3)
	var unsupported *media.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "audio/mpeg", unsupported.Detected)
}
