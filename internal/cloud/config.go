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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It centralizes the settings for the hosted GenAI
// models, storage buckets, Pub/Sub subscriptions, prompt templates, and the
// video job polling policy.
//
// Structs:
//   - PromptTemplates: Text templates for the director prompt request.
//   - TextModel: Configuration for the text/vision model that writes the
//     director prompt.
//   - VideoModel: Configuration for the video-generation model, including
//     output shape and the poll-loop policy.
//   - TopicSubscription: Configuration for a Pub/Sub subscription.
//   - Storage: Upload and archive bucket names.
//   - HistoryDataSource: Optional BigQuery sink for finished generations.
//   - Config: The top-level aggregate.
//
// Functions:
//   - NewConfig: Constructor that initializes the map fields.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings holds the content safety thresholds applied to the
// director prompt request. The input is a user-supplied reference photo in
// a controlled product surface, so every category passes through unblocked.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// PromptTemplates holds the text templates used to build model prompts.
type PromptTemplates struct {
	Director         string `toml:"director"`          // The cinematography rule template for the director prompt request.
	DirectorFallback string `toml:"director_fallback"` // The fixed prompt substituted when the model returns no usable text.
}

// TextModel represents the configuration for the hosted text/vision model
// that produces the director prompt. Sampling leans deterministic: the
// temperature, top-p, and top-k values are fixed in configuration rather
// than exposed to users.
type TextModel struct {
	Model              string  `toml:"model"`               // The model name, e.g. "gemini-2.5-flash".
	SystemInstructions string  `toml:"system_instructions"` // System instructions for the model.
	Temperature        float32 `toml:"temperature"`         // Sampling temperature.
	TopP               float32 `toml:"top_p"`               // Nucleus sampling parameter.
	TopK               float32 `toml:"top_k"`               // Top-k sampling parameter.
	MaxTokens          int32   `toml:"max_tokens"`          // Maximum output tokens.
	OutputFormat       string  `toml:"output_format"`       // Response MIME type, e.g. "text/plain".
	RateLimit          int     `toml:"rate_limit"`          // Requests per second allowed against the model.
}

// VideoModel represents the configuration for the hosted video-generation
// model. The output shape (vertical aspect ratio, resolution tier, duration
// target, one video per request) is fixed product configuration, not a
// user-exposed parameter.
type VideoModel struct {
	Model               string `toml:"model"`                 // The model name, e.g. "veo-3.1-generate-preview".
	AspectRatio         string `toml:"aspect_ratio"`          // Output aspect ratio, e.g. "9:16".
	Resolution          string `toml:"resolution"`            // Output resolution tier, e.g. "720p".
	DurationSeconds     int    `toml:"duration_seconds"`      // Target clip length, folded into the director prompt.
	PersonGeneration    string `toml:"person_generation"`     // Person-generation policy, e.g. "allow_adult".
	PollIntervalSeconds int    `toml:"poll_interval_seconds"` // Fixed delay between operation polls.
	MaxPollAttempts     int    `toml:"max_poll_attempts"`     // Poll attempts before the job is abandoned as timed out.
}

// TopicSubscription represents the configuration for a Pub/Sub topic
// subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The subscription name.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The subscription timeout in seconds.
}

// Storage represents the configuration for storage buckets.
type Storage struct {
	UploadBucket  string `toml:"upload_bucket"`  // Bucket watched for directly uploaded reference photos.
	ArchiveBucket string `toml:"archive_bucket"` // Bucket that receives finished video objects.
}

// HistoryDataSource configures the optional BigQuery sink that records a
// row per finished generation. History is disabled when the dataset name is
// empty.
type HistoryDataSource struct {
	DatasetName  string `toml:"dataset"`       // The BigQuery dataset name.
	HistoryTable string `toml:"history_table"` // The table receiving generation history rows.
}

// Config represents the overall application configuration, loaded from
// TOML files.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name                      string `toml:"name"`                         // The application name, used as the telemetry service name.
		GoogleProjectId           string `toml:"google_project_id"`            // The Google Cloud project ID.
		GoogleLocation            string `toml:"location"`                     // The Google Cloud location.
		GeminiAPIKey              string `toml:"gemini_api_key"`               // Explicit API credential for the hosted models. May expire independently of this service.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // Service account used for signing archive URLs.
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`             // Bucket configuration.
	History            HistoryDataSource            `toml:"history"`             // Optional generation-history sink.
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`    // Prompt template configuration.
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Pub/Sub subscriptions, keyed by a logical name (e.g. "UploadTopic").
	TextModels         map[string]TextModel         `toml:"text_models"`         // Text/vision models, keyed by a logical name (e.g. "director").
	VideoModels        map[string]VideoModel        `toml:"video_models"`        // Video-generation models, keyed by a logical name (e.g. "capture").
	StatusMessages     []string                     `toml:"status_messages"`     // Cosmetic poll-loop status strings shown while a job runs.
}

// NewConfig creates a Config with its map fields initialized so the TOML
// loader can populate them without nil map panics.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		TextModels:         make(map[string]TextModel),
		VideoModels:        make(map[string]VideoModel),
	}
}
