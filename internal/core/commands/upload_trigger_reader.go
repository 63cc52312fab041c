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
// command that parses a GCS Pub/Sub upload notification and extracts the
// uploaded photo's location into a simplified GCSObject.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
)

// UploadTriggerToGCSObject is a command that parses a GCS Pub/Sub
// notification into the essential object coordinates.
type UploadTriggerToGCSObject struct {
	cor.BaseCommand
}

// NewUploadTriggerToGCSObject is the constructor for the
// UploadTriggerToGCSObject command.
func NewUploadTriggerToGCSObject(name string) *UploadTriggerToGCSObject {
	return &UploadTriggerToGCSObject{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the raw notification JSON that the listener put in the
// context and publishes the resulting GCSObject both under its well-known
// key and as the next command's input.
func (c *UploadTriggerToGCSObject) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)

	var out cloud.GCSPubSubNotification
	err := json.Unmarshal([]byte(in), &out)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)

	msg := &cloud.GCSObject{Bucket: out.Bucket, Name: out.Name, MIMEType: out.ContentType}
	context.Add(cloud.GetUploadObjectParameterName(), msg)
	context.Add(c.GetOutputParam(), msg)
}
