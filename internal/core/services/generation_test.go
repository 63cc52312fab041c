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

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/commands"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
)

// scriptedPipeline stands in for the generation workflow: it replays a
// status sequence through the sink, then either produces a result or an
// error. The release channel lets tests hold the pipeline open to
// exercise the single-active-generation rule.
type scriptedPipeline struct {
	cor.BaseCommand
	statuses []model.Status
	result   *model.Result
	err      error
	release  chan struct{}
}

func newScriptedPipeline(p *scriptedPipeline) *scriptedPipeline {
	p.BaseCommand = *cor.NewBaseCommand("scripted-pipeline")
	return p
}

func (p *scriptedPipeline) Execute(context cor.Context) {
	if p.release != nil {
		<-p.release
	}
	sink, _ := context.Get(commands.GetStatusSinkParameterName()).(commands.StatusSink)
	for _, s := range p.statuses {
		if sink != nil {
			sink(s)
		}
	}
	if p.err != nil {
		context.AddError(p.GetName(), p.err)
		return
	}
	// Mirror the chain contract: the final output lands in the input slot.
	context.Remove(cor.CtxIn)
	context.Add(cor.CtxIn, p.result)
}

func waitForTerminal(t *testing.T, svc *GenerationService, id string) model.Generation {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		gen, err := svc.Get(id)
		require.NoError(t, err)
		if gen.Status.State.Terminal() {
			return gen
		}
		select {
		case <-deadline:
			t.Fatalf("generation %s never reached a terminal state", id)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func samplePhoto() *model.ImageRef {
	return &model.ImageRef{Bytes: []byte{0xFF, 0xD8, 0xFF, 0xD9}, MIMEType: "image/jpeg"}
}

func TestGenerationCompletesThroughFullStateSequence(t *testing.T) {
	pipeline := newScriptedPipeline(&scriptedPipeline{
		statuses: []model.Status{
			{State: model.StateAnalyzing, Message: "Studying your photo"},
			{State: model.StateGenerating, Message: "Sending your scene to the studio"},
			{State: model.StatePolling, Message: "Rolling camera"},
		},
		result: &model.Result{VideoURL: "gs://archive/generations/x.mp4", ObjectName: "generations/x.mp4", DirectorPrompt: "brief"},
	})
	svc := NewGenerationService(context.Background(), pipeline)

	id, err := svc.StartFromImage(context.Background(), samplePhoto())
	require.NoError(t, err)

	gen := waitForTerminal(t, svc, id)
	assert.Equal(t, model.StateCompleted, gen.Status.State)
	require.NotNil(t, gen.Result)
	assert.Equal(t, "generations/x.mp4", gen.Result.ObjectName)
	require.NotNil(t, gen.CompletedAt)
}

func TestSecondGenerationRejectedWhileActive(t *testing.T) {
	release := make(chan struct{})
	pipeline := newScriptedPipeline(&scriptedPipeline{result: &model.Result{}, release: release})
	svc := NewGenerationService(context.Background(), pipeline)

	first, err := svc.StartFromImage(context.Background(), samplePhoto())
	require.NoError(t, err)

	_, err = svc.StartFromImage(context.Background(), samplePhoto())
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	close(release)
	waitForTerminal(t, svc, first)

	// Once the first run finishes, new generations are accepted again.
	_, err = svc.StartFromImage(context.Background(), samplePhoto())
	assert.NoError(t, err)
}

func TestTerminalMessageByFailureKind(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		message string
	}{
		{"credential expired", errors.Join(cloud.ErrCredentialExpired, errors.New("404")), msgCredentialExpired},
		{"poll timeout", cloud.ErrPollTimeout, msgPollTimeout},
		{"capture failed", cloud.ErrCaptureFailed, msgCaptureFailed},
		{"anything else", errors.New("connection reset"), msgGenericFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pipeline := newScriptedPipeline(&scriptedPipeline{err: tc.err})
			svc := NewGenerationService(context.Background(), pipeline)

			id, err := svc.StartFromImage(context.Background(), samplePhoto())
			require.NoError(t, err)

			gen := waitForTerminal(t, svc, id)
			assert.Equal(t, model.StateError, gen.Status.State)
			assert.Equal(t, tc.message, gen.Status.Message)
			assert.Nil(t, gen.Result)
		})
	}
}

func TestSubscribeStreamsUpdatesAndCloses(t *testing.T) {
	release := make(chan struct{})
	pipeline := newScriptedPipeline(&scriptedPipeline{
		statuses: []model.Status{
			{State: model.StateAnalyzing, Message: "Studying your photo"},
			{State: model.StatePolling, Message: "Rolling camera"},
		},
		result:  &model.Result{ObjectName: "generations/y.mp4"},
		release: release,
	})
	svc := NewGenerationService(context.Background(), pipeline)

	id, err := svc.StartFromImage(context.Background(), samplePhoto())
	require.NoError(t, err)

	updates, cancel, err := svc.Subscribe(id)
	require.NoError(t, err)
	defer cancel()

	close(release)

	var states []model.State
	for status := range updates {
		states = append(states, status.State)
	}

	// First entry is the primed current status; the stream ends at the
	// terminal state.
	assert.Equal(t, model.StateIdle, states[0])
	assert.Equal(t, model.StateCompleted, states[len(states)-1])
}

func TestSubscribeUnknownGeneration(t *testing.T) {
	svc := NewGenerationService(context.Background(), newScriptedPipeline(&scriptedPipeline{result: &model.Result{}}))
	_, _, err := svc.Subscribe("nope")
	assert.ErrorIs(t, err, ErrGenerationNotFound)

	_, err = svc.Get("nope")
	assert.ErrorIs(t, err, ErrGenerationNotFound)
}

func TestGetStripsImageBytes(t *testing.T) {
	release := make(chan struct{})
	svc := NewGenerationService(context.Background(), newScriptedPipeline(&scriptedPipeline{result: &model.Result{}, release: release}))
	id, err := svc.StartFromImage(context.Background(), samplePhoto())
	require.NoError(t, err)

	gen, err := svc.Get(id)
	require.NoError(t, err)
	assert.Nil(t, gen.Image)

	close(release)
	waitForTerminal(t, svc, id)
}
