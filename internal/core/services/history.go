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

// Package services contains the application-facing service layer. This
// file defines the HistoryService, which reads the generation history
// table back out of BigQuery for the API's listing endpoint. It is the
// read side of the sink the pipeline's history recorder writes to.
package services

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
)

// qryRecentHistory selects the most recent finished generations. The
// table name and the row limit are injected at query-build time.
const qryRecentHistory = `
SELECT id, state, director_prompt, video_object, error_message, created_at, finished_at
FROM %s
ORDER BY finished_at DESC
LIMIT %d`

// HistoryService reads finished generations from the BigQuery history
// table. Like the recorder, it is inert when no dataset is configured.
type HistoryService struct {
	BigqueryClient *bigquery.Client // Client for interacting with Google BigQuery.
	DatasetName    string           // The BigQuery dataset name. Empty disables history.
	HistoryTable   string           // The table holding generation history rows.
}

// NewHistoryService is the constructor for the HistoryService.
func NewHistoryService(client *bigquery.Client, dataset string, table string) *HistoryService {
	return &HistoryService{
		BigqueryClient: client,
		DatasetName:    dataset,
		HistoryTable:   table,
	}
}

// Enabled reports whether a history dataset is configured.
func (s *HistoryService) Enabled() bool {
	return s.DatasetName != ""
}

// ListRecent returns up to maxResults finished generations, newest first.
func (s *HistoryService) ListRecent(ctx context.Context, maxResults int) (out []*model.HistoryRow, err error) {
	out = make([]*model.HistoryRow, 0)
	if maxResults <= 0 {
		maxResults = 20
	}

	// BigQuery SQL wants `project.dataset.table`, the client API returns
	// `project:dataset.table`.
	fqTable := strings.Replace(
		s.BigqueryClient.Dataset(s.DatasetName).Table(s.HistoryTable).FullyQualifiedName(), ":", ".", -1)

	q := s.BigqueryClient.Query(fmt.Sprintf(qryRecentHistory, fmt.Sprintf("`%s`", fqTable), maxResults))
	itr, err := q.Read(ctx)
	if err != nil {
		return out, fmt.Errorf("failed to read from BigQuery: %w", err)
	}

	for {
		var r = &model.HistoryRow{}
		err := itr.Next(r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to iterate results: %w", err)
		}
		out = append(out, r)
	}

	return out, nil
}
