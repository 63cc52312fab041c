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

// Package workflow_test contains tests for the core application
// workflows. This file provides the shared setup for the package: the
// test configuration and a root context, initialized once in TestMain and
// used by every test in the suite. The pipelines under test run entirely
// against scripted model fakes, so the suite needs no live backend.
package workflow_test

import (
	"context"
	"os"
	"testing"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/cloud"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/telemetry"
	test "github.com/athirakr044-cloud/photo-motion-studio/internal/testutil"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

// Shared resources for the suite, initialized once in TestMain.
var (
	ctx    context.Context
	config *cloud.Config
)

const tName = "photo-motion-studio/tests/workflow"

var (
	tracer = otel.Tracer(tName)
	logger = otelslog.NewLogger(tName)
)

func TestMain(m *testing.M) {
	var cancel context.CancelFunc
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	config = test.NewTestConfig()

	telemetry.SetupLogging()

	logger.Info("completed test setup")

	exitCode := m.Run()

	os.Exit(exitCode)
}
