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
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
	test "github.com/athirakr044-cloud/photo-motion-studio/internal/testutil"
)

func newDirectorContext(image *model.ImageRef) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, image)
	return ctx
}

func TestDirectorPromptCreatorUsesModelAnswer(t *testing.T) {
	config := test.NewTestConfig()
	generator := &test.FakeContentGenerator{}
	generator.Responses = append(generator.Responses, test.NewTextResponse("Slow orbit around the subject."))
	tmpl := template.Must(template.New("t").Parse(config.PromptTemplates.Director))

	cmd := NewDirectorPromptCreator("create-director-prompt", config, generator, tmpl)
	chainCtx := newDirectorContext(&model.ImageRef{Bytes: test.GetSamplePhoto(), MIMEType: "image/jpeg"})
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	assert.Equal(t, "Slow orbit around the subject.", chainCtx.Get(cmd.GetOutputParam()))
}

func TestDirectorPromptCreatorFallsBackOnEmptyAnswer(t *testing.T) {
	config := test.NewTestConfig()
	generator := &test.FakeContentGenerator{}
	generator.Responses = append(generator.Responses, test.NewTextResponse("   \n\t "))
	tmpl := template.Must(template.New("t").Parse(config.PromptTemplates.Director))

	cmd := NewDirectorPromptCreator("create-director-prompt", config, generator, tmpl)
	chainCtx := newDirectorContext(&model.ImageRef{Bytes: test.GetSamplePhoto(), MIMEType: "image/jpeg"})
	cmd.Execute(chainCtx)

	// The fallback is silent: no error surfaces, the configured default
	// brief is used instead.
	require.False(t, chainCtx.HasErrors())
	assert.Equal(t, config.PromptTemplates.DirectorFallback, chainCtx.Get(cmd.GetOutputParam()))
}

func TestDirectorPromptCreatorReportsAnalyzing(t *testing.T) {
	config := test.NewTestConfig()
	generator := &test.FakeContentGenerator{}
	generator.Responses = append(generator.Responses, test.NewTextResponse("brief"))
	tmpl := template.Must(template.New("t").Parse(config.PromptTemplates.Director))

	var seen []model.Status
	cmd := NewDirectorPromptCreator("create-director-prompt", config, generator, tmpl)
	chainCtx := newDirectorContext(&model.ImageRef{Bytes: test.GetSamplePhoto(), MIMEType: "image/jpeg"})
	chainCtx.Add(GetStatusSinkParameterName(), StatusSink(func(s model.Status) { seen = append(seen, s) }))
	cmd.Execute(chainCtx)

	require.Len(t, seen, 1)
	assert.Equal(t, model.StateAnalyzing, seen[0].State)
}

func TestDirectorPromptCreatorPropagatesModelError(t *testing.T) {
	config := test.NewTestConfig()
	generator := &test.FakeContentGenerator{Errs: []error{errors.New("backend unavailable")}}
	generator.Responses = append(generator.Responses, nil)
	tmpl := template.Must(template.New("t").Parse(config.PromptTemplates.Director))

	cmd := NewDirectorPromptCreator("create-director-prompt", config, generator, tmpl)
	chainCtx := newDirectorContext(&model.ImageRef{Bytes: test.GetSamplePhoto(), MIMEType: "image/jpeg"})
	cmd.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Nil(t, chainCtx.Get(cmd.GetOutputParam()))
}
