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
// services. This file defines the models for Google Cloud Storage events:
// the Pub/Sub notification payload published when a reference photo lands
// in the upload bucket, and the simplified object reference the pipeline
// works with.
package cloud

// GetUploadObjectParameterName returns the context key under which pipeline
// commands store and retrieve the GCS object reference being processed.
func GetUploadObjectParameterName() string {
	return "__UPLOAD_OBJ__"
}

// GCSPubSubNotification maps the JSON payload of a Google Cloud Storage
// event notification. GCS publishes a message with this structure when an
// object is created in a monitored bucket.
type GCSPubSubNotification struct {
	Kind                    string                 `json:"kind"`                    // Object kind, typically "storage#object".
	ID                      string                 `json:"id"`                      // Full object ID including bucket and generation.
	SelfLink                string                 `json:"selfLink"`                // URI for the object resource.
	Name                    string                 `json:"name"`                    // Object name within the bucket.
	Bucket                  string                 `json:"bucket"`                  // Bucket containing the object.
	Generation              string                 `json:"generation"`              // Content generation number.
	MetaGeneration          string                 `json:"metageneration"`          // Metadata generation number.
	ContentType             string                 `json:"contentType"`             // MIME type of the object content.
	TimeCreated             string                 `json:"timeCreated"`             // Creation time.
	Updated                 string                 `json:"updated"`                 // Last modification time.
	StorageClass            string                 `json:"storageClass"`            // Storage class.
	TimeStorageClassUpdated string                 `json:"timeStorageClassUpdated"` // Last storage class change time.
	Size                    string                 `json:"size"`                    // Size in bytes, as a string.
	MD5Hash                 string                 `json:"md5Hash"`                 // MD5 hash of the content.
	MediaLink               string                 `json:"mediaLink"`               // Download link for the content.
	MetaData                map[string]interface{} `json:"metadata"`                // User-provided metadata, if any.
	Crc32c                  string                 `json:"crc32c"`                  // CRC32C checksum.
	ETag                    string                 `json:"etag"`                    // HTTP ETag.
}

// GCSObject is the lightweight internal representation of a storage object:
// just enough for the pipeline to locate and type the uploaded photo.
type GCSObject struct {
	Bucket   string // The bucket name.
	Name     string // The object name.
	MIMEType string // The object's media type, e.g. "image/jpeg".
}
