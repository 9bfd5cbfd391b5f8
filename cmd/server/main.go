// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// *****************************************************************************************************//
// Package main is the entry point for the anime studio backend server.
//
// This application sets up and runs a web server using the Gin framework. It provides a REST API
// for generating anime videos from text prompts, browsing and managing the generation history,
// and fetching prompt suggestions. The server is instrumented with OpenTelemetry for logging,
// tracing, and metrics, providing observability into the application's performance.
//
// The main function initializes the application's configuration, sets up logging and telemetry,
// and initializes the application state, including clients for Google Cloud services. It defines
// API routes for starting a generation, streaming stored videos, saving and deleting history
// items, and serving the style and audio catalogs.
//
// Functions:
//   - main: The main entry point of the application. It sets up the server, configures routes,
//     initializes services, and handles graceful shutdown.
//   - GenerationRouter: Sets up the API route that runs the full prompt-to-video pipeline
//     from a multipart form submission.
//   - HistoryRouter: Sets up the API routes for listing, streaming, saving, and deleting
//     items in the generation history.
//   - SuggestionRouter: Sets up the API route serving prompt suggestions derived from
//     the user's saved videos.
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/aisocialninja/anime-studio-server/internal/core/model"
	"github.com/aisocialninja/anime-studio-server/internal/core/workflow"
	"github.com/aisocialninja/anime-studio-server/internal/media"
	"github.com/aisocialninja/anime-studio-server/internal/telemetry"
)

// main is the primary entry point for the application.
// It orchestrates the setup of logging, telemetry, configuration, cloud services,
// the web server, and the API routes. It also handles graceful shutdown of the
// server upon receiving an interrupt signal.
func main() {
	// Initialize structured logging for the application.
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	// Create a new context that can be cancelled. This is the root context for the application.
	ctx, cancel := context.WithCancel(context.Background())
	// Defer the cancel function to be called when main exits, ensuring all child contexts are cancelled.
	defer cancel()

	// Load application configuration from TOML files.
	config := GetConfig()

	// Initialize OpenTelemetry for distributed tracing and metrics.
	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	// Initialize the application's state, including all necessary service clients.
	InitState(ctx)
	// Release the ffmpeg scratch directory on exit.
	defer func() { _ = state.engine.Close() }()
	slog.Info("Initialized State")

	// Set up the Gin web server with default middleware.
	r := gin.Default()

	// Add OpenTelemetry middleware to the Gin router to trace incoming requests.
	// This will automatically create spans for each request.
	r.Use(otelgin.Middleware(config.Application.Name))

	// Configure Cross-Origin Resource Sharing (CORS) middleware.
	// Using cors.Default() provides a permissive configuration suitable for development,
	// allowing requests from any origin.
	r.Use(cors.Default())

	// Group routes under the "/api/v1" prefix.
	apiV1 := r.Group("/api/v1")
	{
		// Register the routes for video generation, history management,
		// suggestions, and the static catalogs within the API group.
		GenerationRouter(apiV1)
		HistoryRouter(apiV1)
		SuggestionRouter(apiV1)
		CatalogRouter(apiV1)
	}

	// Configure the HTTP server with the address and handler. Generation
	// requests run the whole pipeline synchronously, so the write timeout
	// has to cover several minutes of model polling.
	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 30 * time.Minute,
	}

	// Start the HTTP server in a separate goroutine so it doesn't block the main thread.
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	// Set up a channel to listen for OS interrupt signals (e.g., Ctrl+C).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	// Block until a signal is received on the quit channel.
	<-quit
	slog.Info("Shutdown Server ...")

	// Create a context with a timeout for the graceful shutdown.
	// This gives active requests 5 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Attempt to gracefully shut down the server.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// GenerationRouter sets up the API route that runs the video generation pipeline.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the generation route will be added.
//
// Outputs:
//   - This function does not return any values. It registers a POST route on the
//     provided router group.
//
// This function configures a POST endpoint at "/generate" that accepts
// multipart/form-data with the fields:
//   - prompt: The text prompt (required).
//   - style: One of the catalog style ids (optional, defaults to "Default").
//   - quality: "720p" or "1080p" (optional, defaults to "720p").
//   - reference: An optional image or video file that seeds the first scene.
//   - audio: An optional uploaded audio file merged onto the final video.
//   - audio_track: The name of a library track, used when no audio file is uploaded.
//
// The pipeline runs synchronously and the new history record is returned on
// success. Only one generation may be in flight at a time; a concurrent
// request is rejected with 409 Conflict.
func GenerationRouter(r *gin.RouterGroup) {
	r.POST("/generate", func(c *gin.Context) {
		request, ok := buildGenerationRequest(c)
		if !ok {
			return
		}

		// Progress messages are surfaced through the server log; the stages
		// advance in a fixed order so the log reads like a narration of the run.
		record, err := state.runner.Run(c.Request.Context(), request, func(message string) {
			slog.Info("generation progress", "message", message)
		})
		if err != nil {
			if errors.Is(err, workflow.ErrGenerationInProgress) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			slog.Error("generation failed", "error", err)
			status := http.StatusInternalServerError
			if model.StageOf(err) == model.StageMediaDecode {
				// A bad reference upload is the client's to fix.
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error(), "stage": string(model.StageOf(err))})
			return
		}
		c.JSON(http.StatusOK, record)
	})
}

// buildGenerationRequest assembles a model.GenerationRequest from the
// multipart form of the current request. On any validation failure it writes
// the error response itself and returns ok=false.
func buildGenerationRequest(c *gin.Context) (*model.GenerationRequest, bool) {
	prompt := c.PostForm("prompt")
	if len(prompt) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return nil, false
	}

	style, err := model.ParseVideoStyle(c.PostForm("style"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	quality, err := model.ParseVideoQuality(c.PostForm("quality"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	request := &model.GenerationRequest{
		Prompt:  prompt,
		Style:   style,
		Quality: quality,
	}

	// Optional visual reference. The declared content type is ignored; the
	// bytes are sniffed so a mislabeled upload cannot slip through.
	if file, err := c.FormFile("reference"); err == nil {
		if file.Size > state.config.Uploads.MaxMediaBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "reference file is too large"})
			return nil, false
		}
		data, err := readFormFile(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read reference file"})
			return nil, false
		}
		mimeType, err := media.SniffMIMEType(data)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reference file is not a recognized image or video"})
			return nil, false
		}
		request.Reference = &model.VisualReference{
			Name:     file.Filename,
			MIMEType: mimeType,
			Data:     data,
		}
	}

	// Optional audio: an uploaded file wins over a library track name.
	if file, err := c.FormFile("audio"); err == nil {
		if file.Size > state.config.Uploads.MaxAudioBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "audio file is too large"})
			return nil, false
		}
		data, err := readFormFile(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read audio file"})
			return nil, false
		}
		request.Audio = &model.AudioSelection{Name: file.Filename, Data: data}
	} else if trackName := c.PostForm("audio_track"); len(trackName) > 0 {
		audio, err := state.audioService.FetchTrack(c.Request.Context(), trackName)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		request.Audio = audio
	}

	return request, true
}

// readFormFile reads the full content of one uploaded multipart file.
func readFormFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// HistoryRouter sets up the API routes for the generation history.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the history routes will be added.
//
// Outputs:
//   - This function does not return any values. It modifies the provided *gin.RouterGroup
//     by adding new route handlers.
//
// This function defines the following endpoints:
//   - GET /history: Lists the history metadata, newest first.
//   - GET /history/:id/video: Streams the stored MP4 for one history item.
//   - POST /history/:id/save: Marks an item as saved and archives it when configured.
//   - DELETE /history/:id: Removes one item, metadata and blob together.
//   - DELETE /history: Clears the entire history.
func HistoryRouter(r *gin.RouterGroup) {
	// Group all history-related routes under the "/history" path.
	history := r.Group("/history")
	{
		// Handler for GET /history
		history.GET("", func(c *gin.Context) {
			records, err := state.historyService.List(c.Request.Context())
			if err != nil {
				slog.Error("failed to list history", "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, records)
		})

		// Handler for GET /history/:id/video
		// Streams the stored video so the client can play it back directly.
		history.GET("/:id/video", func(c *gin.Context) {
			id := c.Param("id")
			data, found, err := state.historyService.GetVideo(c.Request.Context(), id)
			if err != nil {
				slog.Error("failed to read video", "id", id, "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			if !found {
				c.Status(http.StatusNotFound)
				return
			}
			c.Data(http.StatusOK, "video/mp4", data)
		})

		// Handler for POST /history/:id/save
		// Saving is idempotent; repeating the call returns the same record.
		history.POST("/:id/save", func(c *gin.Context) {
			id := c.Param("id")
			record, found, err := state.historyService.Save(c.Request.Context(), id)
			if err != nil {
				slog.Error("failed to save history item", "id", id, "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			if !found {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, record)
		})

		// Handler for DELETE /history/:id
		history.DELETE("/:id", func(c *gin.Context) {
			id := c.Param("id")
			if err := state.historyService.Delete(c.Request.Context(), id); err != nil {
				slog.Error("failed to delete history item", "id", id, "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.Status(http.StatusNoContent)
		})

		// Handler for DELETE /history
		history.DELETE("", func(c *gin.Context) {
			if err := state.historyService.Clear(c.Request.Context()); err != nil {
				slog.Error("failed to clear history", "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}

// SuggestionRouter sets up the API route for prompt suggestions.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the suggestions route will be added.
//
// Outputs:
//   - This function does not return any values. It registers a GET route on the
//     provided router group.
//
// The endpoint never fails: when too few prompts have been saved, or the
// model misbehaves, the response is an empty array.
func SuggestionRouter(r *gin.RouterGroup) {
	r.GET("/suggestions", func(c *gin.Context) {
		suggestions := state.suggestionService.GetSuggestions(c.Request.Context())
		if suggestions == nil {
			suggestions = []string{}
		}
		c.JSON(http.StatusOK, suggestions)
	})
}
