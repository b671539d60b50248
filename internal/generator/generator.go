// Package generator runs one generation request: it streams fragments from
// the model, redraws the accumulated text through a Sink after every
// fragment and records the finished exchange in the history log.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"minecraft-codegen/internal/history"
	"minecraft-codegen/internal/llm"
	"minecraft-codegen/internal/logger"
)

// DefaultSystemPrompt keeps the model on Minecraft code.
const DefaultSystemPrompt = "Ты эксперт по Minecraft. Генерируй только код и инструкции для модов, скриптов (на Java, Python с MCreator или datapacks) или миров. Не добавляй лишний текст, только полезный код с комментариями."

const (
	DefaultTemperature float32 = 0.7
	DefaultTypingDelay         = 20 * time.Millisecond
)

var (
	ErrBlankInput   = errors.New("prompt is blank")
	ErrNoCredential = errors.New("llm credential is not configured")
	ErrPersist      = errors.New("failed to persist exchange")
)

// StreamError is a generation that failed after it started. Partial holds
// whatever text had arrived; nothing is recorded in history.
type StreamError struct {
	Partial string
	Err     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("generation failed after %d chars: %v", len(e.Partial), e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// Sink displays the accumulated response. Render always receives the whole
// text so far, never a delta.
type Sink interface {
	Render(text string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(text string) error

func (f SinkFunc) Render(text string) error { return f(text) }

// Discard is a Sink that ignores every redraw.
var Discard Sink = SinkFunc(func(string) error { return nil })

// Result describes a finished request, successful or not.
type Result struct {
	RequestID string
	State     State
	Exchange  history.Exchange
	Fragments int
}

type Options struct {
	SystemPrompt string
	// Temperature defaults to DefaultTemperature when nil; zero is a valid setting.
	Temperature *float32
	TypingDelay time.Duration
	// Sleep replaces time.Sleep, tests pass a no-op.
	Sleep func(time.Duration)
}

type Generator struct {
	client       llm.Client
	log          *history.Log
	systemPrompt string
	temperature  float32
	delay        time.Duration
	sleep        func(time.Duration)
}

// New builds a Generator. A nil client means no credential is configured and
// every Generate call is blocked.
func New(client llm.Client, log *history.Log, opts Options) *Generator {
	g := &Generator{
		client:       client,
		log:          log,
		systemPrompt: opts.SystemPrompt,
		temperature:  DefaultTemperature,
		delay:        opts.TypingDelay,
		sleep:        opts.Sleep,
	}
	if g.systemPrompt == "" {
		g.systemPrompt = DefaultSystemPrompt
	}
	if opts.Temperature != nil {
		g.temperature = *opts.Temperature
	}
	if g.sleep == nil {
		g.sleep = time.Sleep
	}
	return g
}

// Ready reports whether generation is possible at all.
func (g *Generator) Ready() bool { return g.client != nil }

func (g *Generator) History() *history.Log { return g.log }

// ComposePrompt joins the fixed instruction and the user text into the single
// message sent to the model.
func ComposePrompt(systemPrompt, userText string) string {
	return systemPrompt + "\n\n" + userText
}

// Validate classifies input before any request is made.
func (g *Generator) Validate(userText string) (State, error) {
	if g.client == nil {
		return StateBlocked, ErrNoCredential
	}
	if strings.TrimSpace(userText) == "" {
		return StateRejected, ErrBlankInput
	}
	return StateAwaitingInput, nil
}

// Generate runs one request to completion. There is no cancellation once the
// stream starts; callers that must outlive a client disconnect should pass a
// detached context.
func (g *Generator) Generate(ctx context.Context, userText string, sink Sink) (Result, error) {
	res := Result{RequestID: uuid.NewString(), State: StateIdle}
	entry := logger.WithComponent("generator").WithField("request_id", res.RequestID)

	state, err := g.Validate(userText)
	res.State = state
	if err != nil {
		entry.WithField("state", state).Warn(err.Error())
		return res, err
	}
	if sink == nil {
		sink = Discard
	}

	res.State = StateStreaming
	started := time.Now()
	stream, err := g.client.Stream(ctx, llm.Request{
		Prompt:      ComposePrompt(g.systemPrompt, userText),
		Temperature: g.temperature,
	})
	if err != nil {
		res.State = StateFailed
		entry.WithError(err).Error("failed to start generation")
		return res, &StreamError{Err: err}
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			entry.WithError(cerr).Debug("failed to close stream")
		}
	}()

	var acc strings.Builder
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.State = StateFailed
			res.Exchange = history.Exchange{User: userText, AI: acc.String()}
			entry.WithError(err).WithField("fragments", res.Fragments).Error("generation stream failed")
			return res, &StreamError{Partial: acc.String(), Err: err}
		}
		if fragment == "" {
			continue
		}
		acc.WriteString(fragment)
		res.Fragments++
		if err := sink.Render(acc.String()); err != nil {
			entry.WithError(err).Debug("sink render failed")
		}
		if g.delay > 0 {
			g.sleep(g.delay)
		}
	}

	res.State = StateCompleted
	res.Exchange = history.Exchange{User: userText, AI: acc.String()}
	entry.WithFields(logger.Fields{
		"model":     g.client.Model(),
		"fragments": res.Fragments,
		"chars":     acc.Len(),
		"elapsed":   time.Since(started).Round(time.Millisecond).String(),
	}).Info("generation completed")

	if g.log != nil {
		if err := g.log.Append(res.Exchange); err != nil {
			entry.WithError(err).Error("failed to persist exchange")
			return res, fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}
	return res, nil
}
