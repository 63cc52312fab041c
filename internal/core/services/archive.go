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

// Package services contains the application-facing service layer. This
// file defines the ArchiveService, which turns archive object names into
// time-limited playback URLs.
package services

import (
	"context"
	"fmt"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
)

// ArchiveService provides read access to archived clips. Clips live in a
// private bucket; clients stream them through signed URLs so the bucket
// never needs public ACLs.
type ArchiveService struct {
	StorageClient *storage.Client                   // Client for interacting with GCS.
	IAMClient     *credentials.IamCredentialsClient // Client for IAM, used for signing URLs.
	SignerEmail   string                            // The service account that performs the signing.
	ArchiveBucket string                            // The bucket holding archived clips.
}

// NewArchiveService is the constructor for the ArchiveService.
func NewArchiveService(
	storageClient *storage.Client,
	iamClient *credentials.IamCredentialsClient,
	signerEmail string,
	archiveBucket string) *ArchiveService {
	return &ArchiveService{
		StorageClient: storageClient,
		IAMClient:     iamClient,
		SignerEmail:   signerEmail,
		ArchiveBucket: archiveBucket,
	}
}

// GenerateSignedURL creates a time-limited, secure URL for a clip in the
// archive bucket. Signing goes through the IAM Credentials API, which
// works on GCP infrastructure without local service account keys.
func (s *ArchiveService) GenerateSignedURL(ctx context.Context, objectName string, expires time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(expires),
		GoogleAccessID: s.SignerEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			req := &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			}
			resp, err := s.IAMClient.SignBlob(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		},
	}

	u, err := s.StorageClient.Bucket(s.ArchiveBucket).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).SignedURL(%q): %w", s.ArchiveBucket, objectName, err)
	}
	return u, nil
}
