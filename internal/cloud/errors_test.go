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

package cloud

import (
	"errors"
	"fmt"
	"testing"

	"github.com/zeebo/assert"
	"google.golang.org/genai"
)

func TestClassifySubmissionErrorNil(t *testing.T) {
	assert.Nil(t, ClassifySubmissionError(nil))
}

func TestClassifySubmissionErrorTypedCodes(t *testing.T) {
	for _, code := range []int{401, 403, 404} {
		err := genai.APIError{Code: code, Message: "denied"}
		out := ClassifySubmissionError(err)
		assert.True(t, errors.Is(out, ErrCredentialExpired))
	}
}

func TestClassifySubmissionErrorTypedCodeTakesPrecedence(t *testing.T) {
	// A 500 with a misleading message stays a plain error: the typed
	// code wins over text.
	err := genai.APIError{Code: 500, Message: "internal"}
	out := ClassifySubmissionError(err)
	assert.False(t, errors.Is(out, ErrCredentialExpired))
}

func TestClassifySubmissionErrorSubstringFallback(t *testing.T) {
	err := fmt.Errorf("rpc failed: %s", "Requested entity was not found.")
	out := ClassifySubmissionError(err)
	assert.True(t, errors.Is(out, ErrCredentialExpired))
}

func TestClassifySubmissionErrorPassThrough(t *testing.T) {
	err := errors.New("connection reset by peer")
	out := ClassifySubmissionError(err)
	assert.False(t, errors.Is(out, ErrCredentialExpired))
	assert.Equal(t, err, out)
}
