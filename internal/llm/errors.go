package llm

import (
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

// Describe turns a provider failure into a short message fit for the page.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrMissingCredential) {
		return "API key is not configured"
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var gErr *googleapi.Error
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	case errors.As(err, &gErr):
		status = gErr.Code
	}
	if msg := describeStatus(status); msg != "" {
		return msg
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "connection refused (is the service running?)"
	case strings.Contains(msg, "no such host"):
		return "host not found (check the base URL)"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "connection timed out"
	case strings.Contains(msg, "EOF"):
		return "connection closed unexpectedly"
	}
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

func describeStatus(code int) string {
	switch code {
	case 400:
		return "the provider rejected the request"
	case 401:
		return "authentication failed - check your API key"
	case 403:
		return "access denied - your API key may not have the required permissions"
	case 404:
		return "model or endpoint not found"
	case 429:
		return "rate limited - too many requests, please wait"
	case 500:
		return "internal server error on the provider side"
	case 502, 503, 504:
		return "provider service temporarily unavailable"
	}
	return ""
}
