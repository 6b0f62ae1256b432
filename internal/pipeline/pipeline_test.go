package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/seehear/assist-backend/internal/chat"
	"github.com/seehear/assist-backend/internal/vision"
)

type fakeDescriber struct {
	scene string
	err   error
}

func (f *fakeDescriber) Describe(context.Context, *vision.Frame) (string, error) {
	return f.scene, f.err
}

type fakeGenerator struct {
	answer   string
	err      error
	messages []chat.Message
}

func (f *fakeGenerator) Generate(_ context.Context, messages []chat.Message) (string, error) {
	f.messages = messages
	return f.answer, f.err
}

type fakeSynthesizer struct {
	url  string
	err  error
	key  string
	text string
}

func (f *fakeSynthesizer) SynthesizeAndStore(_ context.Context, text, key string) (string, error) {
	f.text = text
	f.key = key
	return f.url, f.err
}

type captureAppender struct {
	mu    sync.Mutex
	types []string
}

func (a *captureAppender) Append(_ context.Context, _, eventType string, _ map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.types = append(a.types, eventType)
}

func (a *captureAppender) has(eventType string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range a.types {
		if t == eventType {
			return true
		}
	}
	return false
}

func TestAnswer_AllStagesSucceed(t *testing.T) {
	describer := &fakeDescriber{scene: "a table with a mug"}
	generator := &fakeGenerator{answer: "There is a mug on the table."}
	synthesizer := &fakeSynthesizer{url: "https://blobs.test/a.mp3"}
	events := &captureAppender{}

	p := New(describer, generator, synthesizer, events, nil)
	result := p.Answer(context.Background(), "sess-1", "what is on the table", &vision.Frame{Data: []byte("img")})

	if result.Answer != "There is a mug on the table." {
		t.Errorf("unexpected answer %q", result.Answer)
	}
	if result.SceneDescription != "a table with a mug" {
		t.Errorf("unexpected scene %q", result.SceneDescription)
	}
	if result.AudioURL == nil || *result.AudioURL != "https://blobs.test/a.mp3" {
		t.Errorf("unexpected audio url %v", result.AudioURL)
	}
	if !events.has("vision_analysis") || !events.has("qa_interaction") {
		t.Errorf("expected vision_analysis and qa_interaction events, got %v", events.types)
	}
	if !strings.HasPrefix(synthesizer.key, "audio-files/sess-1/") || !strings.HasSuffix(synthesizer.key, ".mp3") {
		t.Errorf("unexpected audio key %q", synthesizer.key)
	}
	if synthesizer.text != result.Answer {
		t.Error("synthesis must speak the final answer")
	}
}

func TestAnswer_NoFrame(t *testing.T) {
	generator := &fakeGenerator{answer: "I cannot see anything right now."}
	p := New(&fakeDescriber{}, generator, &fakeSynthesizer{url: "u"}, &captureAppender{}, nil)

	result := p.Answer(context.Background(), "sess-1", "what do you see", nil)

	if result.SceneDescription != NoFrameDescription {
		t.Errorf("expected sentinel scene, got %q", result.SceneDescription)
	}
	if result.Answer == "" {
		t.Error("expected an answer despite missing frame")
	}
}

func TestAnswer_VisionFailureFallsBack(t *testing.T) {
	describer := &fakeDescriber{err: errors.New("model offline")}
	generator := &fakeGenerator{answer: "Something is in front of you."}
	events := &captureAppender{}
	p := New(describer, generator, &fakeSynthesizer{url: "u"}, events, nil)

	result := p.Answer(context.Background(), "sess-1", "what is this", &vision.Frame{Data: []byte("img")})

	if !strings.HasPrefix(result.SceneDescription, "Error analyzing video frame") {
		t.Errorf("expected error sentinel, got %q", result.SceneDescription)
	}
	if result.Answer == "" {
		t.Error("expected a non-empty answer despite vision failure")
	}
	if events.has("vision_analysis") {
		t.Error("a failed analysis must not log a vision_analysis event")
	}
	if !events.has("qa_interaction") {
		t.Error("qa_interaction must be logged even when vision fails")
	}
}

func TestAnswer_GeneratorFailureFallsBackToScene(t *testing.T) {
	describer := &fakeDescriber{scene: "a sunny street"}
	generator := &fakeGenerator{err: errors.New("quota exceeded")}
	p := New(describer, generator, &fakeSynthesizer{url: "u"}, &captureAppender{}, nil)

	result := p.Answer(context.Background(), "sess-1", "where am i", &vision.Frame{Data: []byte("img")})

	if !strings.Contains(result.Answer, "a sunny street") {
		t.Errorf("fallback answer must carry the scene description, got %q", result.Answer)
	}
}

func TestAnswer_EmptyGenerationFallsBackToScene(t *testing.T) {
	describer := &fakeDescriber{scene: "a hallway"}
	generator := &fakeGenerator{answer: "   \n"}
	p := New(describer, generator, &fakeSynthesizer{url: "u"}, &captureAppender{}, nil)

	result := p.Answer(context.Background(), "sess-1", "what is ahead", &vision.Frame{Data: []byte("img")})

	if !strings.Contains(result.Answer, "a hallway") {
		t.Errorf("fallback answer must carry the scene description, got %q", result.Answer)
	}
}

func TestAnswer_SynthesisFailureYieldsTextOnly(t *testing.T) {
	describer := &fakeDescriber{scene: "a desk"}
	generator := &fakeGenerator{answer: "A desk is in front of you."}
	synthesizer := &fakeSynthesizer{err: errors.New("tts down")}
	p := New(describer, generator, synthesizer, &captureAppender{}, nil)

	result := p.Answer(context.Background(), "sess-1", "what is in front of me", &vision.Frame{Data: []byte("img")})

	if result.AudioURL != nil {
		t.Error("expected nil audio url when synthesis fails")
	}
	if result.Answer != "A desk is in front of you." {
		t.Errorf("text answer must survive synthesis failure, got %q", result.Answer)
	}
}

func TestAnswer_SystemPromptAndSceneReachGenerator(t *testing.T) {
	describer := &fakeDescriber{scene: "a park bench"}
	generator := &fakeGenerator{answer: "ok"}
	p := New(describer, generator, &fakeSynthesizer{url: "u"}, &captureAppender{}, nil)

	p.Answer(context.Background(), "sess-1", "describe the scene", &vision.Frame{Data: []byte("img")})

	if len(generator.messages) != 2 {
		t.Fatalf("expected system + user message, got %d", len(generator.messages))
	}
	if generator.messages[0].Role != "system" {
		t.Errorf("first message must be the system prompt, got role %q", generator.messages[0].Role)
	}
	if !strings.Contains(generator.messages[1].Content, "a park bench") {
		t.Error("user message must include the scene description")
	}
	if !strings.Contains(generator.messages[1].Content, "describe the scene") {
		t.Error("user message must include the question")
	}
}
