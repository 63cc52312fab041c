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

// Package model defines the core data structures for the application.
// This file holds the generation request model: the source image reference,
// the status enumeration the UI consumes, and the result record produced by
// a successful run. These objects live in memory for the duration of a
// single generation; only the history sink persists any of them.
package model

import (
	"time"
)

// State enumerates the phases of a generation request as shown to the UI.
type State string

const (
	// StateIdle means no request is active.
	StateIdle State = "idle"
	// StateAnalyzing means the director prompt request is in flight.
	StateAnalyzing State = "analyzing"
	// StateGenerating means the video job has been submitted.
	StateGenerating State = "generating"
	// StatePolling means the video job is being polled for completion.
	StatePolling State = "polling"
	// StateCompleted is terminal; the generation produced a result.
	StateCompleted State = "completed"
	// StateError is terminal; the generation failed with a user-facing message.
	StateError State = "error"
)

// stateRank orders the states for the forward-only transition rule.
var stateRank = map[State]int{
	StateIdle:       0,
	StateAnalyzing:  1,
	StateGenerating: 2,
	StatePolling:    3,
	StateCompleted:  4,
	StateError:      4,
}

// Terminal reports whether the state ends a generation. Terminal states
// hold until a new generation resets the record.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

// CanTransition reports whether moving from s to next honors the
// forward-only rule: ranks never decrease, terminal states never change,
// and the two rank-4 states are unreachable from each other.
func (s State) CanTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	from, ok := stateRank[s]
	if !ok {
		return false
	}
	to, ok := stateRank[next]
	if !ok {
		return false
	}
	return to > from || (to == from && s == next)
}

// Status is the UI-facing progress record for a generation: the current
// state, a human-readable message, and an optional numeric progress value.
// Poll-loop messages are presentation sugar with no semantic content; tests
// and callers must not interpret the text, only the cadence.
type Status struct {
	State    State    `json:"state"`              // The current phase of the generation.
	Message  string   `json:"message"`            // Human-readable description of the phase.
	Progress *float64 `json:"progress,omitempty"` // Optional progress fraction in [0, 1].
}

// ImageRef is the user-supplied reference photo: raw bytes plus media type.
// It is immutable once captured from the upload and owned by the workflow
// for the duration of one generation request.
type ImageRef struct {
	Bytes    []byte `json:"-"`         // The raw image bytes.
	MIMEType string `json:"mime_type"` // The media type, e.g. "image/jpeg".
}

// Result pairs the playable video locator with the director prompt that
// produced it. Created once on workflow success and discarded when a new
// generation starts.
type Result struct {
	VideoURL       string `json:"video_url"`       // Playable URL for the generated video.
	ObjectName     string `json:"object_name"`     // Archive object holding the video bytes.
	DirectorPrompt string `json:"director_prompt"` // The prompt the video model was given.
}

// Generation is the in-memory record for one request: identity, the source
// image, the rolling status, and the final result when completed.
type Generation struct {
	ID          string     `json:"id"`
	Image       *ImageRef  `json:"image,omitempty"`
	Status      Status     `json:"status"`
	Result      *Result    `json:"result,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewGeneration creates a generation record in the idle state for the
// given image.
func NewGeneration(id string, image *ImageRef) *Generation {
	return &Generation{
		ID:        id,
		Image:     image,
		Status:    Status{State: StateIdle},
		CreatedAt: time.Now(),
	}
}

// Transition applies a status update if the forward-only rule allows it and
// reports whether the update took effect. Stale or out-of-order updates
// (for example a poll message arriving after completion) are dropped.
func (g *Generation) Transition(next Status) bool {
	if !g.Status.State.CanTransition(next.State) {
		return false
	}
	g.Status = next
	if next.State.Terminal() {
		now := time.Now()
		g.CompletedAt = &now
	}
	return true
}

// HistoryRow is the persisted trace of a finished generation, written to
// the optional BigQuery history table.
type HistoryRow struct {
	ID             string    `json:"id" bigquery:"id"`
	State          string    `json:"state" bigquery:"state"`
	DirectorPrompt string    `json:"director_prompt" bigquery:"director_prompt"`
	VideoObject    string    `json:"video_object" bigquery:"video_object"`
	ErrorMessage   string    `json:"error_message,omitempty" bigquery:"error_message"`
	CreatedAt      time.Time `json:"created_at" bigquery:"created_at"`
	FinishedAt     time.Time `json:"finished_at" bigquery:"finished_at"`
}
