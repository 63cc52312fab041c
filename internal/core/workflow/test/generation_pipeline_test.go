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

package workflow_test

import (
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/commands"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
	test "github.com/athirakr044-cloud/photo-motion-studio/internal/testutil"
)

// newGenerationChain assembles the analysis and capture steps of the
// generation pipeline against scripted fakes, the same shape
// NewGenerationPipeline builds in production.
func newGenerationChain(generator cloud.ContentGenerator, operator cloud.VideoOperator) cor.Chain {
	tmpl := template.Must(template.New("director-template").Parse(config.PromptTemplates.Director))
	chain := cor.NewBaseChain("generation-pipeline")
	chain.AddCommand(commands.NewDirectorPromptCreator("create-director-prompt", config, generator, tmpl))
	chain.AddCommand(commands.NewVideoGenerator("generate-video", config, operator, config.VideoModels["default"]))
	return chain
}

func newChainContext(image *model.ImageRef, sink commands.StatusSink) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, image)
	chainCtx.Add(commands.GetSourceImageParameterName(), image)
	chainCtx.Add(commands.GetGenerationIDParameterName(), "test-generation")
	if sink != nil {
		chainCtx.Add(commands.GetStatusSinkParameterName(), sink)
	}
	return chainCtx
}

func TestGenerationChainProducesClipFromPhoto(t *testing.T) {
	generator := &test.FakeContentGenerator{}
	generator.Responses = append(generator.Responses, test.NewTextResponse("Slow push-in, soft light."))
	operator := &test.FakeVideoOperator{
		PollsUntilDone: 2,
		FinalOp:        test.NewDoneOperation("files/clip-1"),
		VideoBytes:     []byte("clip-bytes"),
	}

	var states []model.State
	chain := newGenerationChain(generator, operator)
	chainCtx := newChainContext(
		&model.ImageRef{Bytes: test.GetSamplePhoto(), MIMEType: "image/jpeg"},
		func(s model.Status) { states = append(states, s.State) })
	chain.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())

	// The chain leaves the last command's output in the input slot.
	clip, ok := chainCtx.Get(cor.CtxIn).(*model.GeneratedClip)
	require.True(t, ok)
	assert.Equal(t, []byte("clip-bytes"), clip.Bytes)
	assert.Equal(t, "Slow push-in, soft light.", clip.DirectorPrompt)

	// The pipeline walks forward through the phases, polling twice.
	assert.Equal(t, []model.State{
		model.StateAnalyzing,
		model.StateGenerating,
		model.StatePolling,
		model.StatePolling,
	}, states)
}

func TestGenerationChainStopsOnCredentialExpiry(t *testing.T) {
	generator := &test.FakeContentGenerator{}
	generator.Responses = append(generator.Responses, test.NewTextResponse("brief"))
	operator := &test.FakeVideoOperator{
		SubmitErr: genai.APIError{Code: 404, Message: "Requested entity was not found."},
	}

	chain := newGenerationChain(generator, operator)
	chainCtx := newChainContext(&model.ImageRef{Bytes: test.GetSamplePhoto(), MIMEType: "image/jpeg"}, nil)
	chain.Execute(chainCtx)

	require.True(t, chainCtx.HasErrors())
	assert.Equal(t, 0, operator.DownloadCalls)
}

func TestGenerationChainFallbackPromptStillCaptures(t *testing.T) {
	generator := &test.FakeContentGenerator{}
	generator.Responses = append(generator.Responses, test.NewTextResponse(""))
	operator := &test.FakeVideoOperator{
		PollsUntilDone: 1,
		FinalOp:        test.NewDoneOperation("files/clip-2"),
		VideoBytes:     []byte("clip"),
	}

	chain := newGenerationChain(generator, operator)
	chainCtx := newChainContext(&model.ImageRef{Bytes: test.GetSamplePhoto(), MIMEType: "image/jpeg"}, nil)
	chain.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	clip := chainCtx.Get(cor.CtxIn).(*model.GeneratedClip)
	assert.Equal(t, config.PromptTemplates.DirectorFallback, clip.DirectorPrompt)
}
