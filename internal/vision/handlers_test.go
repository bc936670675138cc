package vision_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/NutriVision/NV-Backend/internal/history"
	"github.com/NutriVision/NV-Backend/internal/utils"
	"github.com/NutriVision/NV-Backend/internal/vision"
)

// fakeRecorder captures history writes in memory.
type fakeRecorder struct {
	saved []*history.Record
}

func (f *fakeRecorder) Save(rec *history.Record) {
	f.saved = append(f.saved, rec)
}

// uploadRequest builds a signed-in multipart POST with one image part named
// "file", matching what a browser form submit would send.
func uploadRequest(t *testing.T, filename, contentType, userID string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write([]byte("fake-jpeg-bytes"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if userID != "" {
		ctx := context.WithValue(req.Context(), utils.ContextUserIDKey, userID)
		req = req.WithContext(ctx)
	}
	return req
}

// TestAnalyzeHandler verifies the success path: the detection payload is
// echoed to the caller and an image_analysis history record is saved with the
// stringly-typed fields parsed into numbers.
func TestAnalyzeHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{"Label": "pizza", "Confidence": "0.91", "Mass (g)": "250", "Energy (kcal)": "662.5"}
			],
			"total_calories": 662.5,
			"annotated_image": "data:image/jpeg;base64,xxxx",
			"thumb_detected": true
		}`))
	}))
	defer srv.Close()

	recorder := &fakeRecorder{}
	h := &vision.Handlers{Client: vision.NewClient(srv.URL), Records: recorder}

	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, uploadRequest(t, "lunch.jpg", "image/jpeg", "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}

	var analysis vision.Analysis
	if err := json.Unmarshal(rec.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("invalid JSON body: %s", rec.Body.String())
	}
	if len(analysis.Results) != 1 || analysis.Results[0].Label != "pizza" {
		t.Errorf("expected the detection echoed back, got %+v", analysis.Results)
	}
	if analysis.TotalCalories != 662.5 {
		t.Errorf("expected total 662.5, got %v", analysis.TotalCalories)
	}

	if len(recorder.saved) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(recorder.saved))
	}
	saved := recorder.saved[0]
	if saved.UserID != "user-1" {
		t.Errorf("expected record for user-1, got %q", saved.UserID)
	}
	if saved.Type != history.TypeImageAnalysis {
		t.Errorf("expected type %q, got %q", history.TypeImageAnalysis, saved.Type)
	}
	if saved.Filename != "lunch.jpg" {
		t.Errorf("expected filename lunch.jpg, got %q", saved.Filename)
	}
	if saved.TotalCalories != 662.5 {
		t.Errorf("expected total_calories 662.5, got %v", saved.TotalCalories)
	}
	if !saved.ThumbDetected {
		t.Error("expected thumb_detected to carry through")
	}
	if len(saved.Results) != 1 {
		t.Fatalf("expected 1 result item, got %d", len(saved.Results))
	}
	item := saved.Results[0]
	if item.Calories != 662.5 || item.Mass != 250 || item.Confidence != 0.91 {
		t.Errorf("expected parsed numeric fields, got %+v", item)
	}
}

// TestAnalyzeHandler_Unauthorized verifies the 401 when no user is in context.
func TestAnalyzeHandler_Unauthorized(t *testing.T) {
	h := &vision.Handlers{Client: vision.NewClient("http://unused"), Records: &fakeRecorder{}}

	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, uploadRequest(t, "lunch.jpg", "image/jpeg", ""))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// TestAnalyzeHandler_NotAnImage verifies the 400 on a non-image upload.
func TestAnalyzeHandler_NotAnImage(t *testing.T) {
	recorder := &fakeRecorder{}
	h := &vision.Handlers{Client: vision.NewClient("http://unused"), Records: recorder}

	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, uploadRequest(t, "notes.txt", "text/plain", "user-1"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(recorder.saved) != 0 {
		t.Errorf("expected no history writes, got %d", len(recorder.saved))
	}
}

// TestAnalyzeHandler_UpstreamDown verifies the 502 when the detection server
// fails, with nothing persisted.
func TestAnalyzeHandler_UpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	recorder := &fakeRecorder{}
	h := &vision.Handlers{Client: vision.NewClient(srv.URL), Records: recorder}

	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, uploadRequest(t, "lunch.jpg", "image/jpeg", "user-1"))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
	if len(recorder.saved) != 0 {
		t.Errorf("expected no history writes, got %d", len(recorder.saved))
	}
}

// TestHealthHandler covers the passthrough probe in both directions.
func TestHealthHandler(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	h := &vision.Handlers{Client: vision.NewClient(healthy.URL)}
	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	h = &vision.Handlers{Client: vision.NewClient(down.URL)}
	rec = httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}
