package audio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakePresigner struct {
	url     string
	err     error
	lastKey string
}

func (f *fakePresigner) PresignedURL(ctx context.Context, key string) (string, error) {
	f.lastKey = key
	return f.url, f.err
}

func request(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleFetch_Redirects(t *testing.T) {
	presigner := &fakePresigner{url: "https://bucket.example.com/signed"}
	h := NewHandler(presigner, nil)

	rec := request(t, h, "/audio/sess-1/clip.mp3")

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://bucket.example.com/signed" {
		t.Errorf("unexpected redirect target %q", loc)
	}
	if presigner.lastKey != "audio-files/sess-1/clip.mp3" {
		t.Errorf("unexpected key %q", presigner.lastKey)
	}
}

func TestHandleFetch_PresignFailure(t *testing.T) {
	h := NewHandler(&fakePresigner{err: errors.New("no such key")}, nil)

	rec := request(t, h, "/audio/sess-1/clip.mp3")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var body struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if body.Code != "not_found" {
		t.Errorf("unexpected code %q", body.Code)
	}
	if body.Details["file"] != "clip.mp3" {
		t.Errorf("expected file detail, got %v", body.Details)
	}
}

func TestHandleFetch_RejectsPathSeparators(t *testing.T) {
	presigner := &fakePresigner{url: "https://bucket.example.com/signed"}
	h := NewHandler(presigner, nil)

	rec := request(t, h, "/audio/sess-1/..%5Csecrets")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if presigner.lastKey != "" {
		t.Error("presigner must not be called for rejected paths")
	}
}
