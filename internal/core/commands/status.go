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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface for the photo-to-video
// generation pipeline. This file defines the shared status reporting
// mechanism: commands publish progress by calling a sink function stored
// in the chain context, and whoever started the chain (the generation
// service) decides what to do with the updates.
package commands

import (
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
)

// StatusSink receives progress updates from commands as the pipeline runs.
type StatusSink func(status model.Status)

// GetStatusSinkParameterName returns the well-known context key under
// which the status sink is stored for the duration of a chain execution.
func GetStatusSinkParameterName() string {
	return "__STATUS_SINK__"
}

// GetSourceImageParameterName returns the well-known context key under
// which the uploaded reference photo is stored. The photo is needed by
// more than one step (prompt analysis and the video job itself), so it
// rides alongside the chain's in/out piping instead of through it.
func GetSourceImageParameterName() string {
	return "__SOURCE_IMAGE__"
}

// GetGenerationIDParameterName returns the well-known context key for the
// identifier of the generation the chain is running on behalf of.
func GetGenerationIDParameterName() string {
	return "__GENERATION_ID__"
}

// reportStatus invokes the sink stored in the context, if one is present.
// Commands run fine without a sink attached, which keeps them easy to
// exercise in isolation.
func reportStatus(context cor.Context, status model.Status) {
	value := context.Get(GetStatusSinkParameterName())
	if value == nil {
		return
	}
	if sink, ok := value.(StatusSink); ok {
		sink(status)
	}
}
