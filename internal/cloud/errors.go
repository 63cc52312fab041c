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
// services. This file defines the structured error kinds the generation
// workflow distinguishes, and the classifier that maps raw service errors
// onto them. Classification prefers the SDK's typed APIError codes; the
// "Requested entity was not found" substring match is only the fallback
// for transports that lose the typed error.
package cloud

import (
	"errors"
	"strings"

	"google.golang.org/genai"
)

var (
	// ErrCredentialExpired means the hosted service rejected the API
	// credential. Callers surface this distinctly so the user can
	// re-authenticate instead of seeing a generic failure.
	ErrCredentialExpired = errors.New("api credential invalid or expired")

	// ErrCaptureFailed means the video job completed without producing a
	// video locator.
	ErrCaptureFailed = errors.New("capture failed: job completed without a video")

	// ErrPollTimeout means the video job did not complete within the
	// configured poll budget. Distinct from a generic service failure so the
	// UI can suggest retrying.
	ErrPollTimeout = errors.New("video job polling exceeded the configured attempt budget")
)

// credentialNotFoundFragment is the message fragment the hosted service
// returns for requests signed with a revoked or expired key.
const credentialNotFoundFragment = "Requested entity was not found"

// ClassifySubmissionError translates a raw submission error into one of the
// structured kinds above. Credential failures wrap ErrCredentialExpired so
// errors.Is works on the result; every other error is returned unmodified.
func ClassifySubmissionError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 401 || apiErr.Code == 403 || apiErr.Code == 404 {
			return errors.Join(ErrCredentialExpired, err)
		}
	}
	if strings.Contains(err.Error(), credentialNotFoundFragment) {
		return errors.Join(ErrCredentialExpired, err)
	}
	return err
}
