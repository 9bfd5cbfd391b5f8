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

// Package store provides the durable local persistence layer for generated
// videos: a binary blob store keyed by history id, and a metadata store
// holding the matching history records. This file defines the error type
// shared by both stores.
package store

import "fmt"

// StorageError is the single failure type both stores surface. It covers
// backend unavailability (the data directory cannot be created or read) and
// write failures such as a full disk. A missing key is never a StorageError:
// Get reports absence through its found flag and Delete is a no-op.
type StorageError struct {
	Op  string // The store operation that failed, e.g. "save" or "init".
	Key string // The record key involved, empty for store-wide operations.
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
