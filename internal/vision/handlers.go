package vision

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/NutriVision/NV-Backend/internal/history"
	"github.com/NutriVision/NV-Backend/internal/utils"
)

// maxUploadBytes caps food photo uploads at 10MB.
const maxUploadBytes = 10 << 20

// Recorder persists an analysis to the caller's history.
type Recorder interface {
	Save(rec *history.Record)
}

type Handlers struct {
	Client  *Client
	Records Recorder
}

// AnalyzeHandler forwards an uploaded food photo to the detection server and
// returns its results. The analysis is also saved to the caller's history;
// that write is best-effort.
func (h *Handlers) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Upload too large or malformed", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		http.Error(w, "File must be an image", http.StatusBadRequest)
		return
	}

	analysis, err := h.Client.Analyze(r.Context(), header.Filename, file)
	if err != nil {
		http.Error(w, "Image analysis failed", http.StatusBadGateway)
		return
	}

	h.Records.Save(&history.Record{
		UserID:         userID,
		Type:           history.TypeImageAnalysis,
		Filename:       header.Filename,
		Results:        toResultItems(analysis.Results),
		TotalCalories:  analysis.TotalCalories,
		AnnotatedImage: analysis.AnnotatedImage,
		ThumbDetected:  analysis.ThumbDetected,
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(analysis); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// HealthHandler probes the detection server so deploys can verify the model
// is reachable before routing traffic.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Client.HealthCheck(r.Context()); err != nil {
		http.Error(w, "Analysis server unavailable", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// toResultItems parses the server's stringly-typed fields into the numeric
// history shape. Unparseable values degrade to zero rather than failing the
// whole record.
func toResultItems(results []DetectionResult) []history.ResultItem {
	out := make([]history.ResultItem, 0, len(results))
	for _, res := range results {
		out = append(out, history.ResultItem{
			Label:      res.Label,
			Calories:   parseFloat(res.EnergyKcal),
			Mass:       parseFloat(res.MassG),
			Confidence: parseFloat(res.Confidence),
		})
	}
	return out
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
