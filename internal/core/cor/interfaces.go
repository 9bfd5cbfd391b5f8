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

// Package cor implements a Chain of Responsibility workflow engine. A
// workflow is a Chain of Commands executed in order against a shared
// Context that carries data, errors, and temp-file bookkeeping between
// steps. The generation pipeline is assembled from these pieces.
//
// This file defines the interfaces. Everything else in the package is the
// default implementation of them.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys the chain uses to pipe data between
// consecutive commands.
const (
	// CtxIn is the default key a command reads its primary input from. The
	// chain populates it with the previous command's output.
	CtxIn = "__IN__"
	// CtxOut is the default key a command writes its primary output to. The
	// chain moves the value to CtxIn before the next command runs.
	CtxOut = "__OUT__"
)

// Context is the shared state object passed through a chain of commands: a
// property bag for one workflow execution, carrying data, errors, and
// cleanup state between commands.
type Context interface {
	// SetContext sets the standard Go context.Context, used for
	// cancellation and trace propagation.
	SetContext(context context.Context)

	// GetContext retrieves the standard Go context.Context.
	GetContext() context.Context

	// Add stores a key-value pair. Returns the Context for fluent chaining.
	Add(key string, value interface{}) Context

	// AddError records an error produced by a command, keyed by the
	// command's name.
	AddError(key string, err error)

	// GetErrors returns every error collected during the workflow.
	GetErrors() map[string]error

	// Get retrieves a value by key, or nil when absent.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// HasErrors reports whether any command has recorded an error.
	HasErrors() bool

	// AddTempFile tracks a temporary file created during the workflow so
	// Close can remove it.
	AddTempFile(file string)

	// GetTempFiles returns the tracked temporary file paths.
	GetTempFiles() []string

	// Close removes all tracked temporary files. Defer it at the start of
	// a workflow run.
	Close()
}

// Executable is anything with core execution logic over a Context.
type Executable interface {
	// Execute runs the business logic, reading inputs from and writing
	// outputs to the Context.
	Execute(context Context)
}

// Command is an atomic, testable unit of work, the building block of a
// workflow.
type Command interface {
	Executable

	// GetName returns the command's name, used for logging and telemetry.
	GetName() string

	// GetInputParam returns the Context key this command reads its primary
	// input from.
	GetInputParam() string

	// GetOutputParam returns the Context key this command writes its
	// primary output to.
	GetOutputParam() string

	// IsExecutable is the precondition check run before Execute.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetMeter returns the OpenTelemetry meter for creating metrics.
	GetMeter() metric.Meter

	// GetSuccessCounter returns a metric counter for successful executions.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns a metric counter for failed executions.
	GetErrorCounter() metric.Int64Counter
}

// Chain is a sequence of commands. A Chain is itself a Command, so chains
// can be nested.
type Chain interface {
	Command

	// ContinueOnFailure controls whether the chain keeps executing after a
	// command records an error. The default is to stop.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
