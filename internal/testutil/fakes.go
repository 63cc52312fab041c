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

// Package test provides utility functions and mock data to support the
// application's test suite. This file holds scripted fakes for the model
// clients, so pipeline behavior can be exercised without a live backend.
package test

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// FakeContentGenerator returns scripted responses in order. After the
// script is exhausted it keeps returning the last entry.
type FakeContentGenerator struct {
	Responses []*genai.GenerateContentResponse
	Errs      []error
	Calls     int
}

// NewTextResponse builds a single-candidate response carrying the given
// text, shaped the way the real model returns it.
func NewTextResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 20,
		},
	}
}

func (f *FakeContentGenerator) GenerateContent(_ context.Context, _ []*genai.Content) (*genai.GenerateContentResponse, error) {
	i := f.Calls
	f.Calls++
	if i < len(f.Errs) && f.Errs[i] != nil {
		return nil, f.Errs[i]
	}
	if len(f.Responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	if i >= len(f.Responses) {
		// Replay the last scripted entry once the script runs out.
		i = len(f.Responses) - 1
		if i < len(f.Errs) && f.Errs[i] != nil {
			return nil, f.Errs[i]
		}
	}
	return f.Responses[i], nil
}

// FakeVideoOperator scripts the life-cycle of a video job: how many polls
// until done, what the finished operation looks like, and what the
// download returns.
type FakeVideoOperator struct {
	SubmitErr      error
	PollErr        error
	PollsUntilDone int
	FinalOp        *genai.GenerateVideosOperation
	VideoBytes     []byte
	DownloadErr    error

	SubmitCalls   int
	PollCalls     int
	DownloadCalls int
}

// NewDoneOperation builds a completed operation holding one video with
// the given URI. An empty URI still produces a valid locator; use
// NewEmptyDoneOperation for a job that finished with nothing.
func NewDoneOperation(uri string) *genai.GenerateVideosOperation {
	return &genai.GenerateVideosOperation{
		Done: true,
		Response: &genai.GenerateVideosResponse{
			GeneratedVideos: []*genai.GeneratedVideo{
				{Video: &genai.Video{URI: uri, MIMEType: "video/mp4"}},
			},
		},
	}
}

// NewEmptyDoneOperation builds a completed operation with no generated
// videos, simulating a capture failure on the provider side.
func NewEmptyDoneOperation() *genai.GenerateVideosOperation {
	return &genai.GenerateVideosOperation{
		Done:     true,
		Response: &genai.GenerateVideosResponse{},
	}
}

func (f *FakeVideoOperator) SubmitVideoJob(_ context.Context, _ string, _ *genai.Image) (*genai.GenerateVideosOperation, error) {
	f.SubmitCalls++
	if f.SubmitErr != nil {
		return nil, f.SubmitErr
	}
	if f.PollsUntilDone <= 0 {
		return f.FinalOp, nil
	}
	return &genai.GenerateVideosOperation{Done: false}, nil
}

func (f *FakeVideoOperator) PollVideoJob(_ context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	f.PollCalls++
	if f.PollErr != nil {
		return nil, f.PollErr
	}
	if f.PollCalls >= f.PollsUntilDone {
		return f.FinalOp, nil
	}
	return op, nil
}

func (f *FakeVideoOperator) DownloadVideo(_ context.Context, _ *genai.Video) ([]byte, error) {
	f.DownloadCalls++
	if f.DownloadErr != nil {
		return nil, f.DownloadErr
	}
	return f.VideoBytes, nil
}
