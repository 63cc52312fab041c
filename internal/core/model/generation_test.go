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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTransitionsMoveForwardOnly(t *testing.T) {
	assert.True(t, StateIdle.CanTransition(StateAnalyzing))
	assert.True(t, StateAnalyzing.CanTransition(StateGenerating))
	assert.True(t, StateGenerating.CanTransition(StatePolling))
	assert.True(t, StatePolling.CanTransition(StateCompleted))

	// Any forward jump is allowed; skipping phases is legal.
	assert.True(t, StateIdle.CanTransition(StateError))
	assert.True(t, StateAnalyzing.CanTransition(StateCompleted))

	// Backward moves are not.
	assert.False(t, StatePolling.CanTransition(StateAnalyzing))
	assert.False(t, StateGenerating.CanTransition(StateIdle))
}

func TestSameStateUpdatesAllowedForMessageRefresh(t *testing.T) {
	// Poll ticks refresh the message without changing the state.
	assert.True(t, StatePolling.CanTransition(StatePolling))
	assert.True(t, StateIdle.CanTransition(StateIdle))

	// The two rank-equal terminal states are unreachable from each other.
	assert.False(t, StateCompleted.CanTransition(StateError))
	assert.False(t, StateError.CanTransition(StateCompleted))
}

func TestTerminalStatesHold(t *testing.T) {
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateError.Terminal())
	assert.False(t, StatePolling.Terminal())

	assert.False(t, StateCompleted.CanTransition(StateCompleted))
	assert.False(t, StateError.CanTransition(StatePolling))
}

func TestGenerationTransitionAppliesStatus(t *testing.T) {
	gen := NewGeneration("g-1", &ImageRef{MIMEType: "image/jpeg"})
	require.Equal(t, StateIdle, gen.Status.State)
	require.Nil(t, gen.CompletedAt)

	assert.True(t, gen.Transition(Status{State: StateAnalyzing, Message: "Studying your photo"}))
	assert.Equal(t, StateAnalyzing, gen.Status.State)

	assert.True(t, gen.Transition(Status{State: StatePolling, Message: "Rolling camera"}))
	assert.True(t, gen.Transition(Status{State: StatePolling, Message: "Framing the shot"}))
	assert.Equal(t, "Framing the shot", gen.Status.Message)

	assert.True(t, gen.Transition(Status{State: StateCompleted, Message: "Your video is ready"}))
	require.NotNil(t, gen.CompletedAt)

	// A stale poll message arriving after completion is dropped.
	assert.False(t, gen.Transition(Status{State: StatePolling, Message: "late"}))
	assert.Equal(t, StateCompleted, gen.Status.State)
}

func TestUnknownStateNeverTransitions(t *testing.T) {
	assert.False(t, State("bogus").CanTransition(StateCompleted))
	assert.False(t, StateIdle.CanTransition(State("bogus")))
}
