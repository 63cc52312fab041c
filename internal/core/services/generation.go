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

// Package services contains the application-facing service layer: the
// glue between HTTP handlers (or Pub/Sub triggers) and the pipelines.
// This file defines the GenerationService, which owns the life-cycle of
// generation requests.
//
// Logic Flow:
//  1. StartFromImage creates a generation record and launches the
//     pipeline in a background goroutine. Only one generation runs at a
//     time; a second request while one is active is rejected.
//  2. The pipeline publishes progress through a status sink, which the
//     service applies to the record under its forward-only transition
//     rule and fans out to any subscribers (the SSE feed).
//  3. When the pipeline finishes, the service writes the terminal status:
//     a completed result, or an error message picked by failure kind.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/commands"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
)

// ErrGenerationInProgress is returned when a new generation is requested
// while another one is still running. The API maps it to HTTP 409.
var ErrGenerationInProgress = errors.New("a generation is already in progress")

// ErrGenerationNotFound is returned when no record exists for the
// requested generation ID.
var ErrGenerationNotFound = errors.New("generation not found")

// Terminal user-facing messages, selected by failure kind when the
// pipeline ends in error.
const (
	msgCompleted         = "Your video is ready"
	msgCredentialExpired = "Your session with the studio has expired. Please reconnect and try again."
	msgPollTimeout       = "The studio is taking longer than expected. Please try again."
	msgCaptureFailed     = "The capture failed. Please try again with a different photo."
	msgGenericFailure    = "Production was interrupted. Please try again."
)

// GenerationService owns every generation record and enforces the
// single-active-generation rule. All state lives in memory; the archive
// bucket and the history table are the only durable artifacts.
type GenerationService struct {
	mu          sync.Mutex
	generations map[string]*model.Generation
	subscribers map[string][]chan model.Status
	active      string      // ID of the running generation, empty when idle.
	pipeline    cor.Command // The generation workflow to execute.
	baseCtx     context.Context
}

// NewGenerationService creates the service. The base context bounds the
// background pipeline runs: canceling it during shutdown stops any
// in-flight generation.
func NewGenerationService(baseCtx context.Context, pipeline cor.Command) *GenerationService {
	return &GenerationService{
		generations: make(map[string]*model.Generation),
		subscribers: make(map[string][]chan model.Status),
		pipeline:    pipeline,
		baseCtx:     baseCtx,
	}
}

// StartFromImage registers a new generation for the photo and launches
// the pipeline in the background. It returns the generation ID
// immediately; progress is observed through Get and Subscribe.
func (s *GenerationService) StartFromImage(_ context.Context, image *model.ImageRef) (string, error) {
	s.mu.Lock()
	if s.active != "" {
		s.mu.Unlock()
		return "", ErrGenerationInProgress
	}

	id := uuid.New().String()
	gen := model.NewGeneration(id, image)
	s.generations[id] = gen
	s.active = id
	s.mu.Unlock()

	slog.Info("starting generation", "generation_id", id)
	go s.run(id, image)

	return id, nil
}

// Get returns a copy of the generation record for the given ID.
func (s *GenerationService) Get(id string) (model.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen, ok := s.generations[id]
	if !ok {
		return model.Generation{}, ErrGenerationNotFound
	}
	out := *gen
	out.Image = nil // callers never need the raw photo bytes back
	return out, nil
}

// Subscribe returns a channel of status updates for the generation and a
// cancel function the caller must invoke when done. The channel closes
// when the generation reaches a terminal state.
func (s *GenerationService) Subscribe(id string) (<-chan model.Status, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen, ok := s.generations[id]
	if !ok {
		return nil, nil, ErrGenerationNotFound
	}

	ch := make(chan model.Status, 16)
	// Prime the channel so a late subscriber sees the current state
	// immediately instead of waiting for the next poll tick.
	ch <- gen.Status
	if gen.Status.State.Terminal() {
		close(ch)
		return ch, func() {}, nil
	}

	s.subscribers[id] = append(s.subscribers[id], ch)
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subscribers[id]
		for i, sub := range subs {
			if sub == ch {
				s.subscribers[id] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	return ch, cancel, nil
}

// run executes the pipeline for one generation and applies the terminal
// status when it finishes. It always clears the active slot.
func (s *GenerationService) run(id string, image *model.ImageRef) {
	defer func() {
		s.mu.Lock()
		s.active = ""
		s.mu.Unlock()
	}()

	sink := commands.StatusSink(func(status model.Status) {
		s.applyStatus(id, status)
	})

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(s.baseCtx)
	chainCtx.Add(cor.CtxIn, image)
	chainCtx.Add(commands.GetSourceImageParameterName(), image)
	chainCtx.Add(commands.GetGenerationIDParameterName(), id)
	chainCtx.Add(commands.GetStatusSinkParameterName(), sink)

	s.pipeline.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for _, e := range chainCtx.GetErrors() {
			slog.Error("generation failed", "generation_id", id, "error", e)
		}
		s.applyStatus(id, model.Status{State: model.StateError, Message: terminalMessage(chainCtx.GetErrors())})
		return
	}

	// The chain pipes each command's output into the next input slot, so
	// the final result is found under CtxIn once execution ends.
	result, ok := chainCtx.Get(cor.CtxIn).(*model.Result)
	if !ok || result == nil {
		slog.Error("generation produced no result", "generation_id", id)
		s.applyStatus(id, model.Status{State: model.StateError, Message: msgGenericFailure})
		return
	}

	s.mu.Lock()
	if gen, found := s.generations[id]; found {
		gen.Result = result
	}
	s.mu.Unlock()

	s.applyStatus(id, model.Status{State: model.StateCompleted, Message: msgCompleted})
	slog.Info("generation completed", "generation_id", id, "video", result.ObjectName)
}

// applyStatus updates the record under the forward-only transition rule
// and fans the update out to subscribers. Updates the rule rejects are
// dropped without notification.
func (s *GenerationService) applyStatus(id string, status model.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen, ok := s.generations[id]
	if !ok || !gen.Transition(status) {
		return
	}

	for _, ch := range s.subscribers[id] {
		select {
		case ch <- status:
		default: // slow subscriber, drop rather than stall the pipeline
		}
	}

	if status.State.Terminal() {
		for _, ch := range s.subscribers[id] {
			close(ch)
		}
		delete(s.subscribers, id)
	}
}

// terminalMessage picks the user-facing failure message. Matching is on
// structured error kinds, never on provider message text.
func terminalMessage(errs map[string]error) string {
	all := make([]error, 0, len(errs))
	for _, e := range errs {
		all = append(all, e)
	}
	joined := errors.Join(all...)
	switch {
	case errors.Is(joined, cloud.ErrCredentialExpired):
		return msgCredentialExpired
	case errors.Is(joined, cloud.ErrPollTimeout):
		return msgPollTimeout
	case errors.Is(joined, cloud.ErrCaptureFailed):
		return msgCaptureFailed
	default:
		return msgGenericFailure
	}
}

// String implements fmt.Stringer for debug logging.
func (s *GenerationService) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("GenerationService{generations: %d, active: %q}", len(s.generations), s.active)
}
