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

// Package main contains the logic for setting up and starting the
// Pub/Sub message listeners. The upload listener lets generations start
// from a plain GCS upload, without going through the REST API.
//
// Functions:
//   - SetupListeners: Attaches the upload trigger pipeline to its
//     subscription and starts listening.
package main

import (
	"context"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/workflow"
)

// SetupListeners configures and starts the background Pub/Sub listeners.
// The subscription set is config-driven; a deployment without the
// "PhotoUploads" subscription simply runs API-only.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, ctx context.Context) {
	listener, ok := cloudClients.PubSubListeners["PhotoUploads"]
	if !ok {
		return
	}

	uploadTrigger := workflow.NewUploadTriggerPipeline(cloudClients.StorageClient, state.generationService)
	listener.SetCommand(uploadTrigger)
	listener.Listen(ctx)
}
