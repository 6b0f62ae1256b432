package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seehear/assist-backend/internal/chat"
	"github.com/seehear/assist-backend/internal/eventlog"
	"github.com/seehear/assist-backend/internal/shared"
	"github.com/seehear/assist-backend/internal/vision"
)

// StageTimeout bounds each external call so a slow collaborator degrades into
// the same fallback path as a failed one.
const StageTimeout = 10 * time.Second

// NoFrameDescription is the scene sentinel when no frame has been cached.
const NoFrameDescription = "No video frame available"

const systemPrompt = "You are a friendly assistant helping vision-impaired users understand their surroundings. " +
	"You have access to a description of what's currently visible in their video feed. " +
	"Use this visual information to answer their questions accurately and helpfully. " +
	"Be conversational, warm, and specific in your responses."

// Describer captions a frame.
type Describer interface {
	Describe(ctx context.Context, frame *vision.Frame) (string, error)
}

// Generator produces an answer from a chat exchange.
type Generator interface {
	Generate(ctx context.Context, messages []chat.Message) (string, error)
}

// Synthesizer turns text into stored audio and returns its URL.
type Synthesizer interface {
	SynthesizeAndStore(ctx context.Context, text, key string) (string, error)
}

// Result is the outcome of one question. Every field except AudioURL is
// always populated; a failed stage contributes its fallback instead.
type Result struct {
	Question         string
	Answer           string
	SceneDescription string
	AudioURL         *string
}

// Pipeline answers a question in three fixed stages: scene description,
// answer generation, speech synthesis. Each stage falls back independently so
// one failing collaborator degrades the response instead of aborting it.
type Pipeline struct {
	describer   Describer
	generator   Generator
	synthesizer Synthesizer
	events      eventlog.Appender
	logger      *slog.Logger
}

func New(describer Describer, generator Generator, synthesizer Synthesizer, events eventlog.Appender, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		describer:   describer,
		generator:   generator,
		synthesizer: synthesizer,
		events:      events,
		logger:      logger.With("component", "pipeline"),
	}
}

// Answer runs the three stages for one question. It never fails; the worst
// case is a fully degraded Result.
func (p *Pipeline) Answer(ctx context.Context, sessionID, question string, frame *vision.Frame) *Result {
	scene := p.describeScene(ctx, sessionID, frame)
	answer := p.generateAnswer(ctx, question, scene)

	p.events.Append(ctx, sessionID, eventlog.EventQAInteraction, map[string]any{
		"question":          question,
		"answer":            answer,
		"scene_description": scene,
	})

	return &Result{
		Question:         question,
		Answer:           answer,
		SceneDescription: scene,
		AudioURL:         p.synthesize(ctx, sessionID, answer),
	}
}

func (p *Pipeline) describeScene(ctx context.Context, sessionID string, frame *vision.Frame) string {
	if frame == nil {
		return NoFrameDescription
	}

	stageCtx, cancel := context.WithTimeout(ctx, StageTimeout)
	defer cancel()

	scene, err := p.describer.Describe(stageCtx, frame)
	if err != nil {
		p.logger.Error("vision analysis failed", "session_id", sessionID, "error", err)
		return fmt.Sprintf("Error analyzing video frame: %v", err)
	}

	p.events.Append(ctx, sessionID, eventlog.EventVisionAnalysis, map[string]any{
		"analysis": scene,
	})
	return scene
}

func (p *Pipeline) generateAnswer(ctx context.Context, question, scene string) string {
	stageCtx, cancel := context.WithTimeout(ctx, StageTimeout)
	defer cancel()

	answer, err := p.generator.Generate(stageCtx, []chat.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("Question: %s\n\nWhat I can see in the video: %s", question, scene)},
	})
	if err != nil {
		p.logger.Error("answer generation failed", "error", err)
		return fmt.Sprintf("Based on what I can see: %s. I'm having some technical difficulties right now.", scene)
	}
	if strings.TrimSpace(answer) == "" {
		return fmt.Sprintf("I can see: %s. But I'm having trouble generating a specific response to your question.", scene)
	}

	return answer
}

func (p *Pipeline) synthesize(ctx context.Context, sessionID, answer string) *string {
	stageCtx, cancel := context.WithTimeout(ctx, StageTimeout)
	defer cancel()

	key := fmt.Sprintf("audio-files/%s/%s.mp3", sessionID, shared.NewID(""))
	url, err := p.synthesizer.SynthesizeAndStore(stageCtx, answer, key)
	if err != nil {
		// Text-only responses are still useful; audio is best-effort.
		p.logger.Error("speech synthesis failed", "session_id", sessionID, "error", err)
		return nil
	}

	return &url
}
