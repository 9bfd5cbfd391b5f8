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

// Package main contains the API route definitions for the server. This file
// defines the static catalog endpoints: the curated art styles and the
// built-in background audio library the client presents as pickers.
//
// Functions:
//   - CatalogRouter: Sets up the routes serving the style catalog and the
//     audio library.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aisocialninja/anime-studio-server/internal/core/model"
)

// CatalogRouter configures the API routes for the static catalogs.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the catalog routes will be added.
//
// Outputs:
//   - This function does not return any value. It modifies the provided
//     *gin.RouterGroup by adding new route handlers.
//
// This function defines the following endpoints:
//   - GET /styles: The fixed list of selectable art styles.
//   - GET /messages: The ordered loading messages a client can rotate
//     through while a generation is in flight.
//   - GET /library/audio: The configured background audio tracks (name + URL).
func CatalogRouter(r *gin.RouterGroup) {
	// Handler for GET /styles
	r.GET("/styles", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.StyleCatalog)
	})

	// Handler for GET /messages
	r.GET("/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.LoadingMessages)
	})

	// Group the audio library under "/library" so future catalogs
	// (e.g. reference galleries) have a natural home.
	library := r.Group("/library")
	{
		// Handler for GET /library/audio
		library.GET("/audio", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.audioService.ListTracks())
		})
	}
}
