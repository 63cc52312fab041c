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
// command that archives a finished clip to Cloud Storage so it outlives
// the in-memory generation record and can be served via signed URLs.
package commands

import (
	"fmt"
	"log"

	"cloud.google.com/go/storage"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
)

// VideoArchiver is a command that writes the generated clip to the
// archive bucket and produces the final Result for the generation.
type VideoArchiver struct {
	cor.BaseCommand
	client *storage.Client // An initialized client for communicating with GCS.
	bucket string          // The name of the archive bucket.
}

// NewVideoArchiver is the constructor for the VideoArchiver command.
func NewVideoArchiver(name string, client *storage.Client, bucket string) *VideoArchiver {
	return &VideoArchiver{BaseCommand: *cor.NewBaseCommand(name), client: client, bucket: bucket}
}

// Execute streams the clip bytes to the archive bucket. The object is
// named after the generation so lookups never need a separate index.
func (c *VideoArchiver) Execute(context cor.Context) {
	clip := context.Get(c.GetInputParam()).(*model.GeneratedClip)
	generationID := context.Get(GetGenerationIDParameterName()).(string)

	objectName := fmt.Sprintf("generations/%s.mp4", generationID)
	obj := c.client.Bucket(c.bucket).Object(objectName)

	writer := obj.NewWriter(context.GetContext())
	writer.ContentType = clip.MIMEType

	if _, err := writer.Write(clip.Bytes); err != nil {
		_ = writer.Close()
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to write clip to gs://%s/%s: %w", c.bucket, objectName, err))
		return
	}

	// Closing the writer finalizes the upload; an incomplete close means
	// the object was never created.
	if err := writer.Close(); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to close GCS writer: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	log.Printf("archived clip to gs://%s/%s", c.bucket, objectName)

	context.Add(c.GetOutputParam(), &model.Result{
		VideoURL:       fmt.Sprintf("gs://%s/%s", c.bucket, objectName),
		ObjectName:     objectName,
		DirectorPrompt: clip.DirectorPrompt,
	})
}
