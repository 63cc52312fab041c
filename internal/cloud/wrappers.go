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

// Package cloud provides components for interacting with the hosted GenAI
// services. This file defines the narrow interfaces the pipeline commands
// depend on, plus the production implementations that wrap the GenAI SDK:
// a rate-limited text model (Decorator over genai.Models) and a video job
// operator covering submission, polling, and download.
//
// The interfaces exist so commands can be exercised in tests with fakes;
// nothing in the pipeline touches the SDK client directly.
package cloud

import (
	"context"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ContentGenerator issues one multi-modal generate-content request. The
// production implementation is QuotaAwareGenerativeAIModel.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error)
}

// VideoOperator covers the lifecycle of one asynchronous video job:
// submission returns an operation handle, polling refreshes it, and
// download retrieves the finished video bytes. The production
// implementation is GenAIVideoOperator.
type VideoOperator interface {
	// SubmitVideoJob starts an asynchronous video-generation job for the
	// prompt and first-frame image.
	SubmitVideoJob(ctx context.Context, prompt string, image *genai.Image) (*genai.GenerateVideosOperation, error)

	// PollVideoJob fetches the latest state of a previously submitted job.
	PollVideoJob(ctx context.Context, operation *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)

	// DownloadVideo retrieves the bytes of a generated video. The service
	// requires the API credential appended to the video locator; the SDK
	// download call handles that signing.
	DownloadVideo(ctx context.Context, video *genai.Video) ([]byte, error)
}

// QuotaAwareGenerativeAIModel wraps the base generate-content call with a
// token-bucket rate limiter so the application stays inside the model's
// per-minute quota.
type QuotaAwareGenerativeAIModel struct {
	GenerateConfig *genai.GenerateContentConfig // The sampling and safety configuration for every request.
	ModelName      string                       // The hosted model to call.
	ModelHandle    *genai.Models                // The SDK model surface.
	Limiter        *rate.Limiter                // Request-per-second limiter.
}

// NewQuotaAwareModel wraps the given model configuration with a limiter
// allowing requestsPerSecond calls per second.
func NewQuotaAwareModel(
	config *genai.GenerateContentConfig,
	name string,
	handle *genai.Models,
	requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerateConfig: config,
		ModelName:      name,
		ModelHandle:    handle,
		Limiter:        rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// GenerateContent blocks until the rate limiter admits the request, then
// calls the underlying model. Errors propagate to the caller unmodified;
// retry policy lives in GenerateText.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return q.ModelHandle.GenerateContent(ctx, q.ModelName, contents, q.GenerateConfig)
}

// GenAIVideoOperator is the production VideoOperator on top of the GenAI
// SDK client.
type GenAIVideoOperator struct {
	client *genai.Client
	model  string
	config *genai.GenerateVideosConfig
}

// NewGenAIVideoOperator builds a VideoOperator for the configured video
// model. The output configuration is fixed per deployment: one vertical
// video per request at the configured resolution tier.
func NewGenAIVideoOperator(client *genai.Client, cfg VideoModel) *GenAIVideoOperator {
	return &GenAIVideoOperator{
		client: client,
		model:  cfg.Model,
		config: &genai.GenerateVideosConfig{
			AspectRatio:      cfg.AspectRatio,
			Resolution:       cfg.Resolution,
			PersonGeneration: cfg.PersonGeneration,
			NumberOfVideos:   1,
		},
	}
}

// SubmitVideoJob starts the asynchronous generation job with the image as
// the first frame.
func (o *GenAIVideoOperator) SubmitVideoJob(ctx context.Context, prompt string, image *genai.Image) (*genai.GenerateVideosOperation, error) {
	return o.client.Models.GenerateVideos(ctx, o.model, prompt, image, o.config)
}

// PollVideoJob refreshes the operation handle from the service.
func (o *GenAIVideoOperator) PollVideoJob(ctx context.Context, operation *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return o.client.Operations.GetVideosOperation(ctx, operation, nil)
}

// DownloadVideo fetches the generated video bytes through the SDK, which
// appends the API credential to the locator before the request.
func (o *GenAIVideoOperator) DownloadVideo(ctx context.Context, video *genai.Video) ([]byte, error) {
	uri := genai.NewDownloadURIFromVideo(video)
	return o.client.Files.Download(ctx, uri, nil)
}
