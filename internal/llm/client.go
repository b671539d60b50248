package llm

import (
	"context"
	"errors"
	"io"
)

// Request is one independent generation: no prior turns are ever sent.
type Request struct {
	Prompt      string
	Temperature float32
}

// Stream is a lazy, finite, non-restartable sequence of text fragments.
// Recv returns io.EOF after the last fragment.
type Stream interface {
	Recv() (string, error)
	Close() error
}

type Client interface {
	Stream(ctx context.Context, req Request) (Stream, error)
	Model() string
}

// ErrMissingCredential is returned when a provider is built without its secret.
var ErrMissingCredential = errors.New("llm credential is not configured")

// SliceStream replays a fixed set of fragments, optionally failing after them.
type SliceStream struct {
	fragments []string
	err       error
	pos       int
	closed    bool
}

// NewSliceStream returns a stream yielding fragments and then io.EOF.
func NewSliceStream(fragments ...string) *SliceStream {
	return &SliceStream{fragments: fragments}
}

// NewFailingStream returns a stream yielding fragments and then err.
func NewFailingStream(err error, fragments ...string) *SliceStream {
	return &SliceStream{fragments: fragments, err: err}
}

func (s *SliceStream) Recv() (string, error) {
	if s.closed {
		return "", io.EOF
	}
	if s.pos < len(s.fragments) {
		f := s.fragments[s.pos]
		s.pos++
		return f, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *SliceStream) Closed() bool { return s.closed }
