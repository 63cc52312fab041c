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
// Responsibility (COR) pattern's Command interface. This file defines the
// command that records a finished generation in the BigQuery history
// table. History is best-effort: a write failure is logged but never fails
// the generation, since the user already has their video by this point.
package commands

import (
	"log"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
)

// GenerationHistoryRecorder is a command that streams a HistoryRow into
// BigQuery for each completed generation.
type GenerationHistoryRecorder struct {
	cor.BaseCommand
	client  *bigquery.Client // The client for interacting with the BigQuery service.
	dataset string           // The name of the BigQuery dataset. Empty disables history.
	table   string           // The name of the target table within the dataset.
}

// NewGenerationHistoryRecorder is the constructor for the
// GenerationHistoryRecorder command.
func NewGenerationHistoryRecorder(name string, client *bigquery.Client, dataset string, table string) *GenerationHistoryRecorder {
	return &GenerationHistoryRecorder{BaseCommand: *cor.NewBaseCommand(name), client: client, dataset: dataset, table: table}
}

// Execute streams the history row into the configured table. When no
// dataset is configured the command passes the result straight through,
// keeping the chain's piping intact.
func (s *GenerationHistoryRecorder) Execute(context cor.Context) {
	result := context.Get(s.GetInputParam()).(*model.Result)
	generationID := context.Get(GetGenerationIDParameterName()).(string)

	if s.dataset == "" {
		context.Add(cor.CtxOut, result)
		return
	}

	row := &model.HistoryRow{
		ID:             generationID,
		State:          string(model.StateCompleted),
		DirectorPrompt: result.DirectorPrompt,
		VideoObject:    result.ObjectName,
		FinishedAt:     time.Now(),
	}

	i := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := i.Put(context.GetContext(), row); err != nil {
		// Best-effort sink: count and log the failure, but keep the
		// result flowing so the generation still completes.
		log.Printf("failed to write generation history for %s: %v", generationID, err)
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.Add(cor.CtxOut, result)
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, result)
}
