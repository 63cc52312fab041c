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
// command that turns a reference photo into a cinematography brief, the
// "director prompt" that steers the downstream video model.
//
// Logic Flow:
// This command is the first step of the generation pipeline. It sends the
// uploaded photo to a multimodal text model together with a set of
// cinematography rules rendered from a Go template, and captures the
// model's answer: a shot-by-shot description of camera movement, lighting,
// and subject treatment for a short portrait video.
//
//  1. It receives a `*model.ImageRef` (the uploaded photo) from the context.
//  2. It renders the director prompt template with the configured rules.
//  3. It sends the rules and the inline photo bytes to the text model in a
//     multimodal request.
//  4. If the model returns usable text, that becomes the director prompt.
//  5. If the model returns an empty or whitespace-only answer, the command
//     quietly falls back to the configured default brief so the pipeline
//     always proceeds with a valid prompt.
//  6. The director prompt string is placed in the context for the video
//     generation command.
package commands

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/cor"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
	"google.golang.org/genai"
)

// DirectorPromptCreator is a command that uses a multimodal text model to
// write a cinematography brief for the uploaded photo.
type DirectorPromptCreator struct {
	cor.BaseCommand
	config                   *cloud.Config          // Application configuration, used for the fallback brief.
	generator                cloud.ContentGenerator // The rate-limited text model client.
	template                 *template.Template     // The Go template for building the rules prompt.
	geminiInputTokenCounter  metric.Int64Counter    // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter    // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter    // OTel counter for retries.
}

// NewDirectorPromptCreator is the constructor for the DirectorPromptCreator
// command. The generator is accepted as an interface so tests can supply a
// scripted model.
func NewDirectorPromptCreator(
	name string,
	config *cloud.Config,
	generator cloud.ContentGenerator,
	template *template.Template) *DirectorPromptCreator {

	out := &DirectorPromptCreator{
		BaseCommand: *cor.NewBaseCommand(name),
		config:      config,
		generator:   generator,
		template:    template}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.retry", out.GetName()))

	return out
}

// GenerateParams creates the map of dynamic data injected into the rules
// template. The video model settings are exposed so the rules can name the
// aspect ratio and target duration the footage must fit.
func (t *DirectorPromptCreator) GenerateParams(_ cor.Context) map[string]interface{} {
	params := make(map[string]interface{})
	for key, vm := range t.config.VideoModels {
		if key == "default" {
			params["ASPECT_RATIO"] = vm.AspectRatio
			params["DURATION_SECONDS"] = vm.DurationSeconds
		}
	}
	return params
}

// Execute sends the photo and the rules to the text model and captures the
// director prompt. An empty answer is not an error: the configured default
// brief is substituted without surfacing anything to the caller, so a
// reticent model degrades the output rather than failing the run.
func (t *DirectorPromptCreator) Execute(context cor.Context) {
	image := context.Get(t.GetInputParam()).(*model.ImageRef)

	reportStatus(context, model.Status{State: model.StateAnalyzing, Message: "Studying your photo"})

	var buffer bytes.Buffer
	err := t.template.Execute(&buffer, t.GenerateParams(context))
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	contents := []*genai.Content{
		{Parts: []*genai.Part{
			{Text: buffer.String()},
			{InlineData: &genai.Blob{
				Data:     image.Bytes,
				MIMEType: image.MIMEType,
			}},
		},
			Role: "user"},
	}

	out, err := cloud.GenerateText(context.GetContext(), t.geminiInputTokenCounter, t.geminiOutputTokenCounter, t.geminiRetryCounter, 0, t.generator, contents)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("gemini request failed: %w", err))
		return
	}

	directorPrompt := strings.TrimSpace(out)
	if directorPrompt == "" {
		directorPrompt = t.config.PromptTemplates.DirectorFallback
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), directorPrompt)
}
