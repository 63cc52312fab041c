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

package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	test "github.com/athirakr044-cloud/photo-motion-studio/internal/testutil"
)

func TestUploadTriggerToGCSObject(t *testing.T) {
	cmd := NewUploadTriggerToGCSObject("upload-trigger-to-gcs-object")
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, test.GetTestUploadMessageText())

	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	obj, ok := chainCtx.Get(cloud.GetUploadObjectParameterName()).(*cloud.GCSObject)
	require.True(t, ok)
	assert.Equal(t, "studio_photo_uploads", obj.Bucket)
	assert.Equal(t, "portrait-001.jpg", obj.Name)
	assert.Equal(t, "image/jpeg", obj.MIMEType)
	assert.Same(t, obj, chainCtx.Get(cmd.GetOutputParam()))
}

func TestUploadTriggerToGCSObjectRejectsMalformedPayload(t *testing.T) {
	cmd := NewUploadTriggerToGCSObject("upload-trigger-to-gcs-object")
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, "not a notification")

	cmd.Execute(chainCtx)

	require.True(t, chainCtx.HasErrors())
	assert.Error(t, chainCtx.GetErrors()[cmd.GetName()])
}
