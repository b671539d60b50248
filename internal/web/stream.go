package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"minecraft-codegen/internal/generator"
	"minecraft-codegen/internal/history"
	"minecraft-codegen/internal/render"
)

// Server-Sent Events emitted by /api/generate.
const (
	eventRender  = "render"
	eventWarning = "warning"
	eventError   = "error"
	eventDone    = "done"
)

type renderEvent struct {
	HTML string `json:"html"`
	Text string `json:"text"`
}

type messageEvent struct {
	Message     string `json:"message"`
	PartialHTML string `json:"partial_html,omitempty"`
}

type doneEvent struct {
	Exchange  history.Exchange `json:"exchange"`
	EntryHTML string           `json:"entry_html"`
	Total     int              `json:"total"`
}

// eventWriter writes SSE frames and flushes after each one.
type eventWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (e *eventWriter) send(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return e.rc.Flush()
}

func readPrompt(w http.ResponseWriter, r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
			return "", err
		}
		return body.Prompt, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostForm.Get("prompt"), nil
}

// handleGenerate streams one generation as Server-Sent Events. Every render
// event carries the whole response so far.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	prompt, err := readPrompt(w, r)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	rc := http.NewResponseController(w)
	// generation may outlast the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ev := &eventWriter{w: w, rc: rc}
	sink := generator.SinkFunc(func(text string) error {
		return ev.send(eventRender, renderEvent{HTML: string(render.AIBox(text)), Text: text})
	})

	// a closed tab must not lose a finished exchange
	res, err := s.gen.Generate(context.WithoutCancel(r.Context()), prompt, sink)
	if serr := s.finishStream(ev, res, err); serr != nil {
		s.log.WithError(serr).WithField("request_id", res.RequestID).Debug("client left before the stream ended")
	}
}

func (s *Server) finishStream(ev *eventWriter, res generator.Result, err error) error {
	msg := generator.Describe(err, s.opts.CredentialVar)
	switch {
	case err == nil:
		return s.sendDone(ev, res)
	case errors.Is(err, generator.ErrBlankInput):
		return ev.send(eventWarning, messageEvent{Message: msg})
	case errors.Is(err, generator.ErrPersist):
		if werr := ev.send(eventWarning, messageEvent{Message: msg}); werr != nil {
			return werr
		}
		return s.sendDone(ev, res)
	}

	out := messageEvent{Message: msg}
	var se *generator.StreamError
	if errors.As(err, &se) && se.Partial != "" {
		out.PartialHTML = string(render.AIBox(se.Partial))
	}
	return ev.send(eventError, out)
}

func (s *Server) sendDone(ev *eventWriter, res generator.Result) error {
	entry, err := renderEntry(res.Exchange.User, res.Exchange.AI)
	if err != nil {
		s.log.WithError(err).Error("failed to render history entry")
	}
	return ev.send(eventDone, doneEvent{
		Exchange:  res.Exchange,
		EntryHTML: entry,
		Total:     s.gen.History().Len(),
	})
}
