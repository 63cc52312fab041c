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

// Package cloud provides components for interacting with Google Cloud
// services. This file initializes and holds every client the application
// needs: it is the dependency injection container assembled once at
// startup and shared by the API layer and the workflows.
//
// Logic Flow:
//  1. NewCloudServiceClients is called at startup with the loaded Config.
//  2. Clients for Storage, Pub/Sub, GenAI, and BigQuery are created.
//  3. The configured text models are wrapped in quota-aware decorators and
//     the configured video models in job operators.
//  4. Everything is bundled into one ServiceClients struct.
//
// Structs:
//   - ServiceClients: Container for all initialized clients and wrappers.
//
// Functions:
//   - Close: Gracefully shuts down client connections.
//   - NewCloudServiceClients: Factory that builds the container from Config.
package cloud

import (
	"context"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/genai"
)

// ServiceClients is the central container for every external service
// client the application uses.
type ServiceClients struct {
	StorageClient   *storage.Client                         // Google Cloud Storage client.
	PubsubClient    *pubsub.Client                          // Pub/Sub client.
	GenAIClient     *genai.Client                           // GenAI client for the hosted models.
	BigQueryClient  *bigquery.Client                        // BigQuery client for the history sink.
	IAMClient       *credentials.IamCredentialsClient       // IAM client for signing archive URLs.
	PubSubListeners map[string]*PubSubListener              // Active listeners, keyed by logical name from config.
	TextModels      map[string]*QuotaAwareGenerativeAIModel // Quota-aware text models, keyed by logical name.
	VideoOperators  map[string]VideoOperator                // Video job operators, keyed by logical name.
}

// Close releases all client connections. Useful for tests and controlled
// shutdowns; the GenAI client manages its own transport and needs no close.
func (c *ServiceClients) Close() {
	_ = c.StorageClient.Close()
	_ = c.PubsubClient.Close()
	_ = c.BigQueryClient.Close()
	_ = c.IAMClient.Close()
}

// NewCloudServiceClients builds the container from the configuration. The
// GenAI client authenticates with the explicit API key when one is
// configured; otherwise it falls back to the Vertex AI backend using the
// project's ambient credentials.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	}
	if config.Application.GeminiAPIKey != "" {
		clientConfig = &genai.ClientConfig{
			APIKey:  config.Application.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		}
	}
	gc, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, err
	}

	bc, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	ic, err := credentials.NewIamCredentialsClient(ctx)
	if err != nil {
		return nil, err
	}

	// Listeners start without a command; the workflow is attached once it is
	// assembled at startup.
	subscriptions := make(map[string]*PubSubListener)
	for subKey := range config.TopicSubscriptions {
		values := config.TopicSubscriptions[subKey]
		actual, err := NewPubSubListener(pc, values.Name, nil)
		if err != nil {
			return nil, err
		}
		subscriptions[subKey] = actual
	}

	textModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for tmKey := range config.TextModels {
		values := config.TextModels[tmKey]
		generateConfig := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		textModels[tmKey] = NewQuotaAwareModel(generateConfig, values.Model, gc.Models, values.RateLimit)
	}

	videoOperators := make(map[string]VideoOperator)
	for vmKey := range config.VideoModels {
		videoOperators[vmKey] = NewGenAIVideoOperator(gc, config.VideoModels[vmKey])
	}

	cloud = &ServiceClients{
		StorageClient:   sc,
		PubsubClient:    pc,
		GenAIClient:     gc,
		BigQueryClient:  bc,
		IAMClient:       ic,
		PubSubListeners: subscriptions,
		TextModels:      textModels,
		VideoOperators:  videoOperators,
	}

	return cloud, err
}
