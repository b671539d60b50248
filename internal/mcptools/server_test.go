package mcptools

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minecraft-codegen/internal/generator"
	"minecraft-codegen/internal/history"
	"minecraft-codegen/internal/llm"
	"minecraft-codegen/internal/storage"
)

type stubClient struct{ stream llm.Stream }

func (s *stubClient) Stream(context.Context, llm.Request) (llm.Stream, error) { return s.stream, nil }
func (s *stubClient) Model() string { return "stub" }

func newTools(t *testing.T, client llm.Client) (*Tools, *history.Log) {
	t.Helper()
	fs, err := storage.NewFileStore(filepath.Join(t.TempDir(), "chat_history.json"))
	require.NoError(t, err)
	log, err := history.Open(fs)
	require.NoError(t, err)
	gen := generator.New(client, log, generator.Options{Sleep: func(_ time.Duration) {}})
	return NewTools(gen, 2, "GEMINI_API_KEY"), log
}

func text(t *testing.T, res *mcp.CallToolResultFor[any]) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestGenerateTool(t *testing.T) {
	tools, log := newTools(t, &stubClient{stream: llm.NewSliceStream("class ", "Sword {}")})

	res, err := tools.Generate(context.Background(), nil, &mcp.CallToolParamsFor[GenerateParams]{
		Arguments: GenerateParams{Description: "меч"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "class Sword {}", text(t, res))
	assert.Equal(t, 1, log.Len())
}

func TestGenerateToolBlank(t *testing.T) {
	tools, log := newTools(t, &stubClient{stream: llm.NewSliceStream("x")})

	res, err := tools.Generate(context.Background(), nil, &mcp.CallToolParamsFor[GenerateParams]{
		Arguments: GenerateParams{Description: "  "},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "Введите описание!")
	assert.Equal(t, 0, log.Len())
}

func TestGenerateToolNoCredential(t *testing.T) {
	tools, _ := newTools(t, nil)

	res, err := tools.Generate(context.Background(), nil, &mcp.CallToolParamsFor[GenerateParams]{
		Arguments: GenerateParams{Description: "меч"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "GEMINI_API_KEY")
}

func TestGenerateToolStreamFailure(t *testing.T) {
	stream := llm.NewFailingStream(errors.New("connection reset by peer"), "partial ")
	tools, log := newTools(t, &stubClient{stream: stream})

	res, err := tools.Generate(context.Background(), nil, &mcp.CallToolParamsFor[GenerateParams]{
		Arguments: GenerateParams{Description: "меч"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "Генерация не удалась")
	assert.Contains(t, text(t, res), "partial ")
	assert.Equal(t, 0, log.Len())
}

func TestRecentTool(t *testing.T) {
	tools, log := newTools(t, nil)

	res, err := tools.Recent(context.Background(), nil, &mcp.CallToolParamsFor[RecentParams]{})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "История пуста")

	for _, u := range []string{"one", "two", "three"} {
		require.NoError(t, log.Append(history.Exchange{User: u, AI: "code-" + u}))
	}

	res, err = tools.Recent(context.Background(), nil, &mcp.CallToolParamsFor[RecentParams]{})
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "2 of 3")
	assert.Contains(t, out, "1. Запрос: three")
	assert.Contains(t, out, "2. Запрос: two")
	assert.NotContains(t, out, "Запрос: one")

	res, err = tools.Recent(context.Background(), nil, &mcp.CallToolParamsFor[RecentParams]{
		Arguments: RecentParams{Limit: 10},
	})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "3 of 3")
}

func TestHandlerBuilds(t *testing.T) {
	tools, _ := newTools(t, nil)
	assert.NotNil(t, Handler(tools))
}
