package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Synthesize(t *testing.T) {
	var gotReq synthesizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/synthesize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3bytes"))
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL, Voice: "joanna"})
	audio, err := client.Synthesize(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "mp3bytes" {
		t.Errorf("unexpected audio %q", audio)
	}
	if gotReq.Text != "hello there" {
		t.Errorf("expected text to pass through, got %q", gotReq.Text)
	}
	if gotReq.Voice != "joanna" {
		t.Errorf("expected voice joanna, got %q", gotReq.Voice)
	}
}

func TestClient_SynthesizeEmptyText(t *testing.T) {
	client := NewClient(Config{URL: "http://localhost:1"})
	if _, err := client.Synthesize(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestClient_SynthesizeEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL})
	if _, err := client.Synthesize(context.Background(), "hi"); err == nil {
		t.Error("expected error for empty audio body")
	}
}

type fakeBlobStore struct {
	uploaded    map[string][]byte
	uploadErr   error
	presignErr  error
	presignBase string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{uploaded: make(map[string][]byte), presignBase: "https://blobs.test/"}
}

func (f *fakeBlobStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploaded[key] = data
	return nil
}

func (f *fakeBlobStore) PresignedURL(_ context.Context, key string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return f.presignBase + key, nil
}

func TestSpeaker_SynthesizeAndStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio"))
	}))
	defer srv.Close()

	store := newFakeBlobStore()
	speaker := NewSpeaker(NewClient(Config{URL: srv.URL}), store, nil)

	url, err := speaker.SynthesizeAndStore(context.Background(), "hello", "audio-files/s1/a.mp3")
	if err != nil {
		t.Fatalf("SynthesizeAndStore failed: %v", err)
	}
	if url != "https://blobs.test/audio-files/s1/a.mp3" {
		t.Errorf("unexpected url %q", url)
	}
	if string(store.uploaded["audio-files/s1/a.mp3"]) != "audio" {
		t.Error("expected audio to be uploaded")
	}
}

func TestSpeaker_UploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio"))
	}))
	defer srv.Close()

	store := newFakeBlobStore()
	store.uploadErr = errors.New("bucket gone")
	speaker := NewSpeaker(NewClient(Config{URL: srv.URL}), store, nil)

	if _, err := speaker.SynthesizeAndStore(context.Background(), "hello", "k"); err == nil {
		t.Error("expected error when upload fails")
	}
}
