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

// Package main contains the API route definitions for the server. This
// file defines the generation endpoints:
//
//   - POST /generations: Upload a reference photo and start a generation.
//   - GET /generations/:id: Fetch the current status and result.
//   - GET /generations/:id/events: Stream status updates over SSE.
//   - GET /generations/:id/video: Fetch a signed playback URL.
//   - GET /history: List recent finished generations from the history table.
package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/model"
	"github.com/athirakr044-cloud/photo-motion-studio/internal/core/services"
)

// maxPhotoBytes caps uploads; reference photos have no business being
// larger than this.
const maxPhotoBytes = 20 << 20

// GenerationRouter sets up the API routes for generation-related actions.
func GenerationRouter(r *gin.RouterGroup) {
	generations := r.Group("/generations")
	{
		// Handler for POST /generations
		// Accepts multipart/form-data with the reference photo under the
		// "photo" field. Only one generation runs at a time; a request
		// arriving while one is active gets a 409.
		generations.POST("", func(c *gin.Context) {
			header, err := c.FormFile("photo")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing photo field"})
				return
			}
			if header.Size > maxPhotoBytes {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo too large"})
				return
			}

			file, err := header.Open()
			if err != nil {
				log.Printf("failed to open upload: %v", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			defer func() { _ = file.Close() }()

			data, err := io.ReadAll(file)
			if err != nil {
				log.Printf("failed to read upload: %v", err)
				c.Status(http.StatusInternalServerError)
				return
			}

			// Sniff the content instead of trusting the client's
			// Content-Type header.
			kind, err := filetype.Match(data)
			if err != nil || !filetype.IsImage(data) {
				c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "photo must be an image"})
				return
			}

			image := &model.ImageRef{Bytes: data, MIMEType: kind.MIME.Value}
			id, err := state.generationService.StartFromImage(c, image)
			if err != nil {
				if errors.Is(err, services.ErrGenerationInProgress) {
					c.JSON(http.StatusConflict, gin.H{"error": "a generation is already in progress"})
					return
				}
				log.Printf("failed to start generation: %v", err)
				c.Status(http.StatusInternalServerError)
				return
			}

			c.JSON(http.StatusAccepted, gin.H{"id": id})
		})

		// Handler for GET /generations/:id
		generations.GET("/:id", func(c *gin.Context) {
			id := c.Param("id")
			gen, err := state.generationService.Get(id)
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, gen)
		})

		// Handler for GET /generations/:id/events
		// Streams status updates as Server-Sent Events until the
		// generation reaches a terminal state or the client leaves.
		generations.GET("/:id/events", func(c *gin.Context) {
			id := c.Param("id")
			updates, cancel, err := state.generationService.Subscribe(id)
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			defer cancel()

			c.Writer.Header().Set("Content-Type", "text/event-stream")
			c.Writer.Header().Set("Cache-Control", "no-cache")
			c.Writer.Header().Set("Connection", "keep-alive")

			c.Stream(func(w io.Writer) bool {
				select {
				case status, open := <-updates:
					if !open {
						return false
					}
					c.SSEvent("status", status)
					return true
				case <-c.Request.Context().Done():
					return false
				}
			})
		})

		// Handler for GET /generations/:id/video
		// Returns a time-limited signed URL for the archived clip.
		generations.GET("/:id/video", func(c *gin.Context) {
			id := c.Param("id")
			gen, err := state.generationService.Get(id)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Generation not found"})
				return
			}
			if gen.Result == nil {
				c.JSON(http.StatusConflict, gin.H{"error": "Video not ready"})
				return
			}

			signedURL, err := state.archiveService.GenerateSignedURL(c, gen.Result.ObjectName, 15*time.Minute)
			if err != nil {
				log.Printf("Error generating signed URL: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate playback URL"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": signedURL})
		})
	}

	// Handler for GET /history
	// Lists recent finished generations. Only available when a BigQuery
	// history dataset is configured.
	r.GET("/history", func(c *gin.Context) {
		if !state.historyService.Enabled() {
			c.JSON(http.StatusNotFound, gin.H{"error": "history is not configured"})
			return
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 1 || limit > 100 {
			limit = 20
		}

		rows, err := state.historyService.ListRecent(c, limit)
		if err != nil {
			log.Printf("failed to list generation history: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read history"})
			return
		}
		c.JSON(http.StatusOK, rows)
	})
}
