package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"google.golang.org/api/googleapi"

	"minecraft-codegen/internal/config"
)

func drain(t *testing.T, s Stream) ([]string, error) {
	t.Helper()
	var out []string
	for {
		f, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
}

func TestSliceStream(t *testing.T) {
	s := NewSliceStream("a", "b")
	got, err := drain(t, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	// exhausted streams keep reporting EOF
	_, err = s.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFailingStream(t *testing.T) {
	boom := errors.New("boom")
	got, err := drain(t, NewFailingStream(boom, "partial"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"partial"}, got)
}

func TestOpenAIClientStreamsFragments(t *testing.T) {
	var captured openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"role":"assistant"}}]}`,
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"// farm "}}]}`,
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"script"}}]}`,
			`{"id":"1","object":"chat.completion.chunk","choices":[]}`,
		}
		for _, c := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", c)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c, err := NewOpenAI("secret", srv.URL, "gemini-test")
	require.NoError(t, err)
	assert.Equal(t, "gemini-test", c.Model())

	s, err := c.Stream(context.Background(), Request{Prompt: "sys\n\nuser", Temperature: 0.7})
	require.NoError(t, err)
	defer s.Close()

	got, err := drain(t, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"// farm ", "script"}, got)

	assert.Equal(t, "gemini-test", captured.Model)
	assert.True(t, captured.Stream)
	assert.InDelta(t, 0.7, float64(captured.Temperature), 1e-6)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, captured.Messages[0].Role)
	assert.Equal(t, "sys\n\nuser", captured.Messages[0].Content)
}

func TestGoogleClientStreamsFragments(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:streamGenerateContent", r.URL.Path)
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))
		body, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":\"public \"}]}}]}\n\n")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"class \"},{\"text\":\"Sword\"}]},\"finishReason\":\"STOP\"}]}\n\n")
	}))
	defer srv.Close()

	c, err := NewGoogle("k", srv.URL, "models/gemini-1.5-flash")
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-flash", c.Model())

	s, err := c.Stream(context.Background(), Request{Prompt: "sys\n\nuser", Temperature: 0.7})
	require.NoError(t, err)
	defer s.Close()
	got, err := drain(t, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"public ", "class Sword"}, got)

	assert.InDelta(t, 0.7, gjson.GetBytes(body, "generationConfig.temperature").Float(), 1e-6)
	assert.Equal(t, "sys\n\nuser", gjson.GetBytes(body, "contents.0.parts.0.text").String())
	assert.Equal(t, "user", gjson.GetBytes(body, "contents.0.role").String())
}

func TestGoogleClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	}))
	defer srv.Close()

	c, err := NewGoogle("bad", srv.URL, "gemini-1.5-flash")
	require.NoError(t, err)
	_, err = c.Stream(context.Background(), Request{Prompt: "p"})
	var gErr *googleapi.Error
	require.ErrorAs(t, err, &gErr)
	assert.Equal(t, http.StatusForbidden, gErr.Code)
	assert.Equal(t, "access denied - your API key may not have the required permissions", Describe(err))
}

func TestGoogleClientMidStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"partial\"}]}}]}\n\n")
		fmt.Fprint(w, "data: {\"error\":{\"code\":503,\"message\":\"overloaded\"}}\n\n")
	}))
	defer srv.Close()

	c, err := NewGoogle("k", srv.URL, "gemini-1.5-flash")
	require.NoError(t, err)
	s, err := c.Stream(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	got, err := drain(t, s)
	assert.Equal(t, []string{"partial"}, got)
	assert.Equal(t, "provider service temporarily unavailable", Describe(err))
}

func TestGoogleClientRequiresKey(t *testing.T) {
	_, err := NewGoogle("", "", "m")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAI("", "", "m")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestFactoryCreateClient(t *testing.T) {
	f := NewFactory(&config.Config{GeminiAPIKey: "k", GeminiModel: "gemini-1.5-flash"})

	c, err := f.CreateClient(context.Background(), "openai")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = f.CreateClient(context.Background(), "google")
	require.NoError(t, err)
	assert.IsType(t, &GoogleClient{}, c)

	c, err = f.CreateClient(context.Background(), "yandex")
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Nil(t, c)

	_, err = f.CreateClient(context.Background(), "claude")
	assert.EqualError(t, err, "unknown llm provider: claude")
}

func TestEffectiveTemperature(t *testing.T) {
	assert.Equal(t, float32(0.7), EffectiveTemperature(config.ProviderOpenAI, 0.7))
	assert.Equal(t, float32(0), EffectiveTemperature(config.ProviderGoogle, 0))
	assert.Equal(t, YandexTemperature, EffectiveTemperature(config.ProviderYandex, 0.7))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	assert.Equal(t, "API key is not configured", Describe(ErrMissingCredential))
	assert.Equal(t, "rate limited - too many requests, please wait",
		Describe(fmt.Errorf("wrap: %w", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"})))
	assert.Equal(t, "authentication failed - check your API key",
		Describe(&googleapi.Error{Code: 401}))
	assert.Equal(t, "connection closed unexpectedly", Describe(io.ErrUnexpectedEOF))
	assert.Equal(t, "odd failure", Describe(errors.New("odd failure")))
}
