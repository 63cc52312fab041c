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

// Package main contains the setup and initialization logic for the
// application's state. This file creates the centralized state manager
// that holds shared dependencies: configuration, cloud service clients,
// and the generation and archive services.
//
// Functions:
//   - SetupOS: Points the configuration loader at the right TOML files.
//   - GetConfig: Singleton loader for the application configuration.
//   - InitState: Creates all service clients, wires the generation
//     pipeline, and starts the Pub/Sub listeners.
package main

import (
	"context"
	"log"
	"os"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/services"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/workflow"
)

// StateManager holds the shared dependencies for the application, acting
// as a centralized container for service clients and configuration.
type StateManager struct {
	config            *cloud.Config
	cloud             *cloud.ServiceClients
	generationService *services.GenerationService
	archiveService    *services.ArchiveService
	historyService    *services.HistoryService
}

// state is the single package-level instance of StateManager.
var state = &StateManager{}

// SetupOS sets the environment variables the configuration loader uses to
// find the TOML files. The runtime suffix selects the environment-specific
// override file, e.g. ".env.local.toml".
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application
// configuration, loading it from the file system on first use.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState initializes the application state: cloud clients, the
// generation pipeline, the services the API layer calls, and the
// background listeners.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	// The generation pipeline: director prompt, video job, archive,
	// history. The "director" text model writes the brief; the "default"
	// video model renders it.
	pipeline := workflow.NewGenerationPipeline(config, cloudClients, "director", "default")
	state.generationService = services.NewGenerationService(ctx, pipeline)

	state.archiveService = services.NewArchiveService(
		cloudClients.StorageClient,
		cloudClients.IAMClient,
		config.Application.SignerServiceAccountEmail,
		config.Storage.ArchiveBucket)

	state.historyService = services.NewHistoryService(
		cloudClients.BigQueryClient,
		config.History.DatasetName,
		config.History.HistoryTable)

	SetupListeners(config, cloudClients, ctx)
}
