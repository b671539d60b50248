package llm

import (
	"context"
	"fmt"

	"github.com/Morwran/yagpt"
)

// YandexTemperature is the sampling temperature yagpt sends on every
// completion. The library does not let callers override it.
const YandexTemperature float32 = 0.6

// YandexClient answers with YandexGPT. The completion API is not streaming,
// so the whole reply is one fragment.
type YandexClient struct {
	ya       yagpt.YaGPTFace
	iamToken string
}

func NewYandex(oauthToken, folderID string) (*YandexClient, error) {
	if oauthToken == "" || folderID == "" {
		return nil, ErrMissingCredential
	}
	// Create IAM token from OAuth token
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init yandex iam: %w", err)
	}
	resp, err := iam.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create iam token: %w", err)
	}

	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to init yagpt: %w", err)
	}

	return &YandexClient{
		ya:       ya,
		iamToken: resp.IamToken,
	}, nil
}

func (c *YandexClient) Model() string { return yagpt.YaModelLite }

// Stream ignores req.Temperature, see YandexTemperature.
func (c *YandexClient) Stream(ctx context.Context, req Request) (Stream, error) {
	messages := []yagpt.Message{{Role: "user", Content: req.Prompt}}

	resp, err := c.ya.CompletionWithCtx(ctx, c.iamToken, messages)
	if err != nil {
		return nil, fmt.Errorf("yagpt completion failed: %w", err)
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		return nil, fmt.Errorf("yagpt returned empty response")
	}
	return NewSliceStream(resp.Alternatives[0].Message.Content), nil
}
