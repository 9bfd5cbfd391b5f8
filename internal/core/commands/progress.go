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

package commands

import "github.com/aisocialninja/anime-studio-server/internal/core/cor"

// ProgressParamName is the context key under which the workflow runner may
// place a ProgressFunc. Commands report coarse status through it so a
// caller can surface pipeline progress; when absent, reporting is a no-op.
const ProgressParamName = "__progress__"

// ProgressFunc receives human-readable status messages as the pipeline
// advances. Implementations must be safe to call from the workflow
// goroutine.
type ProgressFunc func(message string)

// ReportProgress invokes the context's progress callback, if one is set.
func ReportProgress(context cor.Context, message string) {
	if fn, ok := context.Get(ProgressParamName).(ProgressFunc); ok && fn != nil {
		fn(message)
	}
}
