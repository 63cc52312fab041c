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
// command that drives the hosted video model: it submits the generation
// job and babysits it until the footage is ready.
//
// Logic Flow:
// Video generation is a long-running operation on the provider side, so
// this command is built around a bounded polling loop rather than a single
// request.
//
//  1. It receives the director prompt from the previous command and the
//     reference photo from the shared context.
//  2. It submits the video job to the hosted model.
//  3. It polls the operation at a fixed interval, publishing a rotating
//     set of human-friendly status messages while the user waits. The
//     rotation is a pure function of the attempt number so repeated runs
//     tell the same story.
//  4. When the operation completes it downloads the video bytes and hands
//     them to the next command as a GeneratedClip.
//
// Two failure modes get dedicated treatment: an expired credential is
// translated to ErrCredentialExpired wherever the provider reports it, and
// a job that finishes without producing a video locator becomes
// ErrCaptureFailed with no download attempted.
package commands

import (
	"fmt"
	"time"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
	"google.golang.org/genai"
)

// VideoGenerator is a command that submits a video job to the hosted
// model and polls it to completion.
type VideoGenerator struct {
	cor.BaseCommand
	config   *cloud.Config       // Application configuration, used for the status message pool.
	operator cloud.VideoOperator // The video job client.
	model    cloud.VideoModel    // Settings for the job, including the polling cadence.
}

// NewVideoGenerator is the constructor for the VideoGenerator command.
// The operator is accepted as an interface so tests can script the job
// life-cycle without a live backend.
func NewVideoGenerator(
	name string,
	config *cloud.Config,
	operator cloud.VideoOperator,
	videoModel cloud.VideoModel) *VideoGenerator {
	return &VideoGenerator{
		BaseCommand: *cor.NewBaseCommand(name),
		config:      config,
		operator:    operator,
		model:       videoModel,
	}
}

// pollMessage selects the cosmetic status line for a given poll attempt.
// Selection is deterministic: attempt N always yields the same message,
// cycling through the configured pool.
func (t *VideoGenerator) pollMessage(attempt int) string {
	pool := t.config.StatusMessages
	if len(pool) == 0 {
		return "Rendering your video"
	}
	return pool[attempt%len(pool)]
}

// Execute submits the video job and polls it until it is done, the
// attempt budget runs out, or the context is canceled.
func (t *VideoGenerator) Execute(context cor.Context) {
	directorPrompt := context.Get(t.GetInputParam()).(string)
	image := context.Get(GetSourceImageParameterName()).(*model.ImageRef)

	reportStatus(context, model.Status{State: model.StateGenerating, Message: "Sending your scene to the studio"})

	operation, err := t.operator.SubmitVideoJob(context.GetContext(), directorPrompt, &genai.Image{
		ImageBytes: image.Bytes,
		MIMEType:   image.MIMEType,
	})
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), cloud.ClassifySubmissionError(err))
		return
	}

	interval := time.Duration(t.model.PollIntervalSeconds) * time.Second
	attempt := 0
	for !operation.Done {
		if attempt >= t.model.MaxPollAttempts {
			t.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(t.GetName(), fmt.Errorf("video job still pending after %d polls: %w", attempt, cloud.ErrPollTimeout))
			return
		}

		select {
		case <-context.GetContext().Done():
			t.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(t.GetName(), context.GetContext().Err())
			return
		case <-time.After(interval):
		}

		reportStatus(context, model.Status{State: model.StatePolling, Message: t.pollMessage(attempt)})

		operation, err = t.operator.PollVideoJob(context.GetContext(), operation)
		if err != nil {
			// Credentials can expire mid-flight, so poll errors get the
			// same classification as submission errors.
			t.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(t.GetName(), cloud.ClassifySubmissionError(err))
			return
		}
		attempt++
	}

	if operation.Error != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("video job failed: %v", operation.Error))
		return
	}

	video := extractVideo(operation)
	if video == nil {
		// The job reported done but gave us nothing to fetch. Surface the
		// capture failure without attempting a download.
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), cloud.ErrCaptureFailed)
		return
	}

	data, err := t.operator.DownloadVideo(context.GetContext(), video)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to download video: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), &model.GeneratedClip{
		Bytes:          data,
		MIMEType:       "video/mp4",
		DirectorPrompt: directorPrompt,
	})
}

// extractVideo digs the video locator out of a completed operation,
// returning nil when any link in the chain is missing.
func extractVideo(operation *genai.GenerateVideosOperation) *genai.Video {
	if operation.Response == nil || len(operation.Response.GeneratedVideos) == 0 {
		return nil
	}
	return operation.Response.GeneratedVideos[0].Video
}
