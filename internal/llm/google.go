package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/api/googleapi"
)

const DefaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GoogleClient streams from the native Gemini streamGenerateContent method.
type GoogleClient struct {
	http    *http.Client
	apiKey  string
	baseURL string
	model   string
}

func NewGoogle(apiKey, baseURL, model string) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}
	return &GoogleClient{
		http:    &http.Client{},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   strings.TrimPrefix(model, "models/"),
	}, nil
}

func (c *GoogleClient) Model() string { return c.model }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float32 `json:"temperature"`
	} `json:"generationConfig"`
}

func (c *GoogleClient) Stream(ctx context.Context, req Request) (Stream, error) {
	body := geminiRequest{Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}}}
	body.GenerationConfig.Temperature = req.Temperature
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini streamGenerateContent failed: %w", err)
	}
	if err := googleapi.CheckResponse(resp); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("gemini streamGenerateContent failed: %w", err)
	}
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &googleStream{body: resp.Body, scanner: scanner}, nil
}

type googleStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// Recv returns the text of the next data event that carries any.
func (s *googleStream) Recv() (string, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if !gjson.Valid(data) {
			return "", fmt.Errorf("gemini sent a malformed event: %.80s", data)
		}
		if msg := gjson.Get(data, "error.message"); msg.Exists() {
			return "", &googleapi.Error{Code: int(gjson.Get(data, "error.code").Int()), Message: msg.String()}
		}
		var b strings.Builder
		for _, part := range gjson.Get(data, "candidates.0.content.parts.#.text").Array() {
			b.WriteString(part.String())
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *googleStream) Close() error { return s.body.Close() }
