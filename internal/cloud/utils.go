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

// Package cloud provides components for interacting with the hosted GenAI
// services. This file contains general-purpose helpers: the hierarchical
// TOML configuration loader and the resilient text-generation call used by
// the director prompt command.
//
// Functions:
//   - LoadConfig: Reads a base configuration file, then overlays an
//     environment-specific file (.env.local.toml, .env.test.toml) selected
//     by an environment variable.
//   - GenerateText: Wraps a ContentGenerator call with retries and OTel
//     token counters, returning the concatenated candidate text.
package cloud

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// Configuration loading constants.
const (
	ConfigFileBaseName  = ".env"                 // Base name for configuration files.
	ConfigFileExtension = ".toml"                // Extension for configuration files.
	ConfigSeparator     = "."                    // Separator in override file names (.env.local.toml).
	EnvConfigFilePrefix = "STUDIO_CONFIG_PREFIX" // Env var naming the config directory.
	EnvConfigRuntime    = "STUDIO_RUNTIME"       // Env var naming the runtime ("local", "test", "prod").
	MaxRetries          = 3                      // Max attempts for a failed text-generation call.
)

// fileExists reports whether a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig populates baseConfig from TOML files: first the base file,
// then an environment-specific override selected by EnvConfigRuntime. The
// override wins on conflicting keys. Missing files are skipped; a file
// that exists but fails to parse is fatal.
func LoadConfig(baseConfig interface{}) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	if fileExists(baseConfigFileName) {
		_, err := toml.DecodeFile(baseConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	if fileExists(envConfigFileName) {
		_, err := toml.DecodeFile(envConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}
}

// GenerateText executes a multi-modal request against the given generator
// with up to MaxRetries additional attempts on failure, recording token
// usage and retry counts on the provided counters. The response candidates
// are concatenated into a single string; surrounding markdown code fences
// are stripped.
func GenerateText(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	tryCount int,
	generator ContentGenerator,
	contents []*genai.Content) (value string, err error) {
	resp, err := generator.GenerateContent(ctx, contents)
	if err != nil {
		if tryCount < MaxRetries {
			retryCounter.Add(ctx, 1)
			return GenerateText(ctx, inputTokenCounter, outputTokenCounter, retryCounter, tryCount+1, generator, contents)
		}
		return "", err
	}

	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				builder.WriteString(part.Text)
			}
		}
	}
	value = builder.String()
	value = strings.TrimPrefix(value, "```")
	value = strings.TrimSuffix(value, "```")
	return value, nil
}
