// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package api

import (
	"net/http"

	"github.com/tomtom215/videoparty/internal/metrics"
	"github.com/tomtom215/videoparty/internal/models"
)

// AnalyzeVideo classifies a video URL.
//
// @Summary Analyze a video URL
// @Description Returns the platform, embed URL, thumbnail and sync capabilities of a URL. Unrecognized URLs are treated as direct media links.
// @Tags Video
// @Accept json
// @Produce json
// @Param request body AnalyzeVideoRequest true "URL to analyze"
// @Success 200 {object} models.APIResponse{data=models.AnalyzedVideo} "Video descriptor"
// @Failure 400 {object} models.APIResponse "Missing or empty URL"
// @Router /video/analyze [post]
func (h *Handler) AnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeVideoRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	descriptor := h.classifier.Classify(req.URL)
	metrics.RecordClassification(string(descriptor.Platform))

	respondData(w, r, http.StatusOK, models.AnalyzedVideo{
		Descriptor:  descriptor,
		OriginalURL: req.URL,
	})
}
