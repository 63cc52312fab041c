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
// command that turns an uploaded photo object into a running generation:
// it fetches the photo bytes from the upload bucket, checks that they are
// actually an image, and hands them to the generation starter.
package commands

import (
	"context"
	"fmt"
	"io"
	"log"

	"cloud.google.com/go/storage"
	"github.com/h2non/filetype"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
)

// GenerationStarter starts a generation for a validated reference photo.
// The generation service implements this; the interface keeps the trigger
// command independent of the service package.
type GenerationStarter interface {
	StartFromImage(ctx context.Context, image *model.ImageRef) (string, error)
}

// GenerationTrigger is a command that reads an uploaded photo from GCS
// and starts the generation pipeline for it.
type GenerationTrigger struct {
	cor.BaseCommand
	client  *storage.Client   // An initialized client for communicating with GCS.
	starter GenerationStarter // The service that owns generation life-cycles.
}

// NewGenerationTrigger is the constructor for the GenerationTrigger command.
func NewGenerationTrigger(name string, client *storage.Client, starter GenerationStarter) *GenerationTrigger {
	return &GenerationTrigger{BaseCommand: *cor.NewBaseCommand(name), client: client, starter: starter}
}

// Execute downloads the photo bytes and starts a generation. Objects that
// are not images are dropped before any model is invoked.
func (c *GenerationTrigger) Execute(context cor.Context) {
	msg := context.Get(c.GetInputParam()).(*cloud.GCSObject)

	obj := c.client.Bucket(msg.Bucket).Object(msg.Name)
	reader, err := obj.NewReader(context.GetContext())
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create GCS reader for gs://%s/%s: %w", msg.Bucket, msg.Name, err))
		return
	}
	defer func(reader *storage.Reader) {
		if err := reader.Close(); err != nil {
			log.Printf("failed to close GCS reader: %v\n", err)
		}
	}(reader)

	data, err := io.ReadAll(reader)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to read gs://%s/%s: %w", msg.Bucket, msg.Name, err))
		return
	}

	// Content sniffing trumps the notification's content type: buckets
	// accept anything, the pipeline does not.
	if !filetype.IsImage(data) {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("object gs://%s/%s is not an image", msg.Bucket, msg.Name))
		return
	}

	image := &model.ImageRef{Bytes: data, MIMEType: msg.MIMEType}
	id, err := c.starter.StartFromImage(context.GetContext(), image)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to start generation for gs://%s/%s: %w", msg.Bucket, msg.Name, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), id)
}
