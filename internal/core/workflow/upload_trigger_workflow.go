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
// runs. This file defines the small pipeline that reacts to storage
// upload notifications: parse the notification, fetch the photo, start a
// generation.
package workflow

import (
	"cloud.google.com/go/storage"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/commands"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
)

// UploadTriggerWorkflow turns a GCS Pub/Sub upload notification into a
// running generation. It is attached to the upload subscription's
// listener at startup.
type UploadTriggerWorkflow struct {
	cor.BaseCommand
	storageClient *storage.Client
	starter       commands.GenerationStarter
	chain         cor.Chain
}

// Execute runs the trigger workflow by invoking the underlying chain.
func (m *UploadTriggerWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

func (m *UploadTriggerWorkflow) initializeChain() {
	out := cor.NewBaseChain(m.GetName())

	// Step 1: Parse the raw notification JSON into a GCSObject.
	out.AddCommand(commands.NewUploadTriggerToGCSObject("upload-trigger-to-gcs-object"))

	// Step 2: Fetch the photo bytes, validate them, and start a
	// generation through the service.
	out.AddCommand(commands.NewGenerationTrigger("start-generation", m.storageClient, m.starter))

	m.chain = out
}

// NewUploadTriggerPipeline is the constructor for the
// UploadTriggerWorkflow.
func NewUploadTriggerPipeline(storageClient *storage.Client, starter commands.GenerationStarter) *UploadTriggerWorkflow {
	pipeline := &UploadTriggerWorkflow{
		BaseCommand:   *cor.NewBaseCommand("upload-trigger-pipeline"),
		storageClient: storageClient,
		starter:       starter,
	}
	pipeline.initializeChain()
	return pipeline
}
