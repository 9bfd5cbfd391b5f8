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

// Package cloud provides components for interacting with Google Cloud services.
// This file implements the archive writer that copies saved videos into a
// Google Cloud Storage bucket. Archiving is best-effort durability on top
// of the local store: a save succeeds or fails on the local write, and the
// archive copy happens afterwards.
package cloud

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// Archiver copies saved video blobs into a GCS bucket. A nil *Archiver is
// valid and means archiving is disabled; every method on it is a no-op.
type Archiver struct {
	client *storage.Client
	bucket string
}

// NewArchiver creates an archiver writing into the given bucket. Returns
// nil when the bucket name is empty, which disables archiving.
//
// Inputs:
//   - client: The shared GCS client.
//   - bucket: The destination bucket name, or "" to disable.
//
// Outputs:
//   - *Archiver: The archiver, or nil when disabled.
func NewArchiver(client *storage.Client, bucket string) *Archiver {
	if bucket == "" || client == nil {
		return nil
	}
	return &Archiver{client: client, bucket: bucket}
}

// Enabled reports whether this archiver will actually write anywhere.
func (a *Archiver) Enabled() bool {
	return a != nil
}

// Archive writes data to the configured bucket under objectName with the
// given content type. Calling Archive on a nil archiver is a no-op.
//
// Inputs:
//   - ctx: The context for the upload.
//   - objectName: The destination object name (e.g. "vid_123.mp4").
//   - contentType: The MIME type recorded on the object.
//   - data: The blob content.
//
// Outputs:
//   - error: An error if the upload fails.
func (a *Archiver) Archive(ctx context.Context, objectName string, contentType string, data []byte) error {
	if a == nil {
		return nil
	}
	writer := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("archiving %s to bucket %s: %w", objectName, a.bucket, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("archiving %s to bucket %s: %w", objectName, a.bucket, err)
	}
	return nil
}
