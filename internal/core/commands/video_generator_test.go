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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
	test "github.com/athirakr044-cloud/photo-motion-studio/internal/testutil"
)

func newVideoContext(prompt string) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, prompt)
	ctx.Add(GetSourceImageParameterName(), &model.ImageRef{Bytes: test.GetSamplePhoto(), MIMEType: "image/jpeg"})
	return ctx
}

func TestVideoGeneratorDownloadsFinishedClip(t *testing.T) {
	config := test.NewTestConfig()
	operator := &test.FakeVideoOperator{
		PollsUntilDone: 3,
		FinalOp:        test.NewDoneOperation("files/video-1"),
		VideoBytes:     []byte("mp4-bytes"),
	}

	cmd := NewVideoGenerator("generate-video", config, operator, config.VideoModels["default"])
	chainCtx := newVideoContext("slow push-in")
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	clip, ok := chainCtx.Get(cmd.GetOutputParam()).(*model.GeneratedClip)
	require.True(t, ok)
	assert.Equal(t, []byte("mp4-bytes"), clip.Bytes)
	assert.Equal(t, "slow push-in", clip.DirectorPrompt)
	assert.Equal(t, 3, operator.PollCalls)
	assert.Equal(t, 1, operator.DownloadCalls)
}

func TestVideoGeneratorStatusRotationIsDeterministic(t *testing.T) {
	config := test.NewTestConfig()
	config.StatusMessages = []string{"one", "two"}
	operator := &test.FakeVideoOperator{
		PollsUntilDone: 4,
		FinalOp:        test.NewDoneOperation("files/video-1"),
		VideoBytes:     []byte("x"),
	}

	var polling []string
	cmd := NewVideoGenerator("generate-video", config, operator, config.VideoModels["default"])
	chainCtx := newVideoContext("prompt")
	chainCtx.Add(GetStatusSinkParameterName(), StatusSink(func(s model.Status) {
		if s.State == model.StatePolling {
			polling = append(polling, s.Message)
		}
	}))
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	// Attempt N always yields pool[N % len(pool)].
	assert.Equal(t, []string{"one", "two", "one", "two"}, polling)
}

func TestVideoGeneratorHonorsContextCancellation(t *testing.T) {
	config := test.NewTestConfig()
	// A real interval keeps the poll-wait arm of the select from racing
	// the cancellation arm.
	vm := config.VideoModels["default"]
	vm.PollIntervalSeconds = 5
	operator := &test.FakeVideoOperator{
		PollsUntilDone: 100, // never finishes on its own
		FinalOp:        test.NewDoneOperation("files/video-1"),
	}

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewVideoGenerator("generate-video", config, operator, vm)
	chainCtx := newVideoContext("prompt")
	chainCtx.SetContext(canceled)
	cmd.Execute(chainCtx)

	require.True(t, chainCtx.HasErrors())
	assert.True(t, errors.Is(chainCtx.GetErrors()[cmd.GetName()], context.Canceled))
	assert.Equal(t, 0, operator.PollCalls)
	assert.Equal(t, 0, operator.DownloadCalls)
}

func TestVideoGeneratorEmptyStatusPoolUsesDefaultLine(t *testing.T) {
	config := test.NewTestConfig()
	config.StatusMessages = nil
	operator := &test.FakeVideoOperator{
		PollsUntilDone: 2,
		FinalOp:        test.NewDoneOperation("files/video-1"),
		VideoBytes:     []byte("x"),
	}

	var polling []string
	cmd := NewVideoGenerator("generate-video", config, operator, config.VideoModels["default"])
	chainCtx := newVideoContext("prompt")
	chainCtx.Add(GetStatusSinkParameterName(), StatusSink(func(s model.Status) {
		if s.State == model.StatePolling {
			polling = append(polling, s.Message)
		}
	}))
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	assert.Equal(t, []string{"Rendering your video", "Rendering your video"}, polling)
}

func TestVideoGeneratorTimesOutAfterAttemptBudget(t *testing.T) {
	config := test.NewTestConfig()
	vm := config.VideoModels["default"]
	vm.MaxPollAttempts = 3
	operator := &test.FakeVideoOperator{
		PollsUntilDone: 100, // never finishes within budget
		FinalOp:        test.NewDoneOperation("files/video-1"),
	}

	cmd := NewVideoGenerator("generate-video", config, operator, vm)
	chainCtx := newVideoContext("prompt")
	cmd.Execute(chainCtx)

	require.True(t, chainCtx.HasErrors())
	var joined []error
	for _, e := range chainCtx.GetErrors() {
		joined = append(joined, e)
	}
	assert.True(t, errors.Is(errors.Join(joined...), cloud.ErrPollTimeout))
	assert.Equal(t, 3, operator.PollCalls)
	assert.Equal(t, 0, operator.DownloadCalls)
}

func TestVideoGeneratorTranslatesCredentialExpiry(t *testing.T) {
	config := test.NewTestConfig()

	t.Run("on submit", func(t *testing.T) {
		operator := &test.FakeVideoOperator{
			SubmitErr: genai.APIError{Code: 404, Message: "Requested entity was not found."},
		}
		cmd := NewVideoGenerator("generate-video", config, operator, config.VideoModels["default"])
		chainCtx := newVideoContext("prompt")
		cmd.Execute(chainCtx)

		require.True(t, chainCtx.HasErrors())
		assert.True(t, errors.Is(chainCtx.GetErrors()[cmd.GetName()], cloud.ErrCredentialExpired))
	})

	t.Run("mid poll", func(t *testing.T) {
		operator := &test.FakeVideoOperator{
			PollsUntilDone: 5,
			PollErr:        genai.APIError{Code: 404, Message: "Requested entity was not found."},
		}
		cmd := NewVideoGenerator("generate-video", config, operator, config.VideoModels["default"])
		chainCtx := newVideoContext("prompt")
		cmd.Execute(chainCtx)

		require.True(t, chainCtx.HasErrors())
		assert.True(t, errors.Is(chainCtx.GetErrors()[cmd.GetName()], cloud.ErrCredentialExpired))
	})
}

func TestVideoGeneratorCaptureFailedSkipsDownload(t *testing.T) {
	config := test.NewTestConfig()
	operator := &test.FakeVideoOperator{
		PollsUntilDone: 1,
		FinalOp:        test.NewEmptyDoneOperation(),
	}

	cmd := NewVideoGenerator("generate-video", config, operator, config.VideoModels["default"])
	chainCtx := newVideoContext("prompt")
	cmd.Execute(chainCtx)

	require.True(t, chainCtx.HasErrors())
	assert.True(t, errors.Is(chainCtx.GetErrors()[cmd.GetName()], cloud.ErrCaptureFailed))
	assert.Equal(t, 0, operator.DownloadCalls)
}
