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

// Package test provides utility functions and mock data to support the
// application's test suite: a self-contained test configuration, a sample
// reference photo, and a simulated GCS upload notification.
package test

import (
	"testing"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
)

// HandleErr fails the test when err is not nil. Convenience helper to
// reduce boilerplate in tests.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// NewTestConfig builds a complete configuration in code so tests never
// depend on configuration files or environment variables.
func NewTestConfig() *cloud.Config {
	config := cloud.NewConfig()
	config.Application.Name = "photo-motion-studio-test"
	config.Application.GoogleProjectId = "test-project"
	config.Application.GoogleLocation = "us-central1"

	config.Storage.UploadBucket = "studio_photo_uploads"
	config.Storage.ArchiveBucket = "studio_video_archive"

	config.PromptTemplates.Director = "Describe a {{.DURATION_SECONDS}} second cinematic portrait video in {{.ASPECT_RATIO}} for the attached photo."
	config.PromptTemplates.DirectorFallback = "Slow push-in on the subject, soft key light, shallow depth of field."

	config.TextModels["director"] = cloud.TextModel{
		Model:       "gemini-2.0-flash",
		Temperature: 1.0,
		TopP:        0.95,
		TopK:        40,
		MaxTokens:   2048,
		RateLimit:   100,
	}

	config.VideoModels["default"] = cloud.VideoModel{
		Model:               "veo-2.0-generate-001",
		AspectRatio:         "9:16",
		Resolution:          "720p",
		DurationSeconds:     8,
		PersonGeneration:    "allow_adult",
		PollIntervalSeconds: 0, // no artificial waiting in tests
		MaxPollAttempts:     5,
	}

	config.StatusMessages = []string{
		"Setting up the lights",
		"Rolling camera",
		"Directing your scene",
	}

	return config
}

// GetSamplePhoto returns a minimal but valid JPEG payload. The bytes
// carry a real JPEG signature so content sniffing treats them as an
// image.
func GetSamplePhoto() []byte {
	return []byte{
		0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00,
		0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
		0xFF, 0xD9,
	}
}

// GetTestUploadMessageText returns a JSON string simulating a Pub/Sub
// notification from GCS for a photo finalized in the upload bucket.
func GetTestUploadMessageText() string {
	return `{
  "kind": "storage#object",
  "id": "studio_photo_uploads/portrait-001.jpg/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/studio_photo_uploads/o/portrait-001.jpg",
  "name": "portrait-001.jpg",
  "bucket": "studio_photo_uploads",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "image/jpeg",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "timeStorageClassUpdated": "2024-10-11T03:04:08.672Z",
  "size": "2593480",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "mediaLink": "https://storage.googleapis.com/download/storage/v1/b/studio_photo_uploads/o/portrait-001.jpg?generation=1728615848664286&alt=media",
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`
}
