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

// Package workflow assembles commands into the pipelines the application
// runs. This file defines the photo-to-video generation pipeline.
package workflow

import (
	"text/template"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/commands"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
)

// GenerationWorkflow orchestrates the full journey from reference photo
// to archived video. It is structured as a Chain of Responsibility
// (cor.Chain): the director prompt step feeds the video job step, which
// feeds the archive and history steps.
//
// The workflow is started by the generation service when a photo arrives,
// either through the REST API or a storage upload notification.
type GenerationWorkflow struct {
	cor.BaseCommand
	config           *cloud.Config
	bigqueryClient   *bigquery.Client
	storageClient    *storage.Client
	textModel        cloud.ContentGenerator
	videoOperator    cloud.VideoOperator
	videoModel       cloud.VideoModel
	directorTemplate *template.Template
	chain            cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the generation workflow by invoking the underlying chain.
func (m *GenerationWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this
// workflow. The output of each command becomes the input of the next.
func (m *GenerationWorkflow) initializeChain() {
	out := cor.NewBaseChain(m.GetName())

	// Step 1: Ask the multimodal text model to write a cinematography
	// brief for the uploaded photo. Falls back to the configured default
	// brief when the model has nothing to say.
	out.AddCommand(commands.NewDirectorPromptCreator("create-director-prompt", m.config, m.textModel, m.directorTemplate))

	// Step 2: Submit the video job and poll it to completion at a fixed
	// cadence, then download the finished clip.
	out.AddCommand(commands.NewVideoGenerator("generate-video", m.config, m.videoOperator, m.videoModel))

	// Step 3: Archive the clip to the long-term bucket so it can be
	// served by signed URL after the in-memory record is gone.
	out.AddCommand(commands.NewVideoArchiver("archive-video", m.storageClient, m.config.Storage.ArchiveBucket))

	// Step 4: Record the finished generation in the optional BigQuery
	// history table. Skipped when no dataset is configured.
	out.AddCommand(commands.NewGenerationHistoryRecorder(
		"record-generation-history",
		m.bigqueryClient,
		m.config.History.DatasetName,
		m.config.History.HistoryTable))

	m.chain = out
}

// NewGenerationPipeline is the constructor for the GenerationWorkflow. It
// compiles the director prompt template and wires the chain with the
// configured model clients.
func NewGenerationPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	textModelName string,
	videoModelName string) *GenerationWorkflow {

	directorTemplate, err := template.New("director-template").Parse(config.PromptTemplates.Director)
	if err != nil {
		panic(err) // The app cannot run without a valid prompt template.
	}

	pipeline := &GenerationWorkflow{
		BaseCommand:      *cor.NewBaseCommand("generation-pipeline"),
		config:           config,
		bigqueryClient:   serviceClients.BigQueryClient,
		storageClient:    serviceClients.StorageClient,
		textModel:        serviceClients.TextModels[textModelName],
		videoOperator:    serviceClients.VideoOperators[videoModelName],
		videoModel:       config.VideoModels[videoModelName],
		directorTemplate: directorTemplate,
	}
	pipeline.initializeChain()
	return pipeline
}
