// Package mcptools exposes the generator to MCP clients.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"minecraft-codegen/internal/generator"
	"minecraft-codegen/internal/history"
	"minecraft-codegen/internal/logger"
)

const (
	ServerName    = "minecraft-codegen-mcp"
	ServerVersion = "1.0.0"

	maxRecent = 100
)

// GenerateParams параметры для генерации кода
type GenerateParams struct {
	Description string `json:"description" mcp:"what Minecraft code to generate (e.g. 'a mod adding a new sword')"`
}

// RecentParams параметры для получения истории
type RecentParams struct {
	Limit int `json:"limit,omitempty" mcp:"number of exchanges to return, newest first (default: 20, max: 100)"`
}

// Tools implements the MCP tool handlers on top of a Generator.
type Tools struct {
	gen           *generator.Generator
	displayLimit  int
	credentialVar string
}

func NewTools(gen *generator.Generator, displayLimit int, credentialVar string) *Tools {
	if displayLimit <= 0 {
		displayLimit = history.DefaultDisplayLimit
	}
	return &Tools{gen: gen, displayLimit: displayLimit, credentialVar: credentialVar}
}

// NewServer creates an MCP server with every tool registered.
func NewServer(tools *Tools) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_minecraft_code",
		Description: "Generates Minecraft mod, script, datapack or world code from a description and records it in the history",
	}, tools.Generate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recent_generations",
		Description: "Returns the most recent generations, newest first",
	}, tools.Recent)

	logger.WithComponent("mcp").Info("📋 Registered MCP tools: generate_minecraft_code, recent_generations")
	return server
}

// Handler serves the MCP server over SSE.
func Handler(tools *Tools) http.Handler {
	server := NewServer(tools)
	return mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return server })
}

func textResult(text string, isError bool) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: isError,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// Generate runs one generation and returns the full response.
func (t *Tools) Generate(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[GenerateParams]) (*mcp.CallToolResultFor[any], error) {
	description := params.Arguments.Description
	logger.WithComponent("mcp").WithField("chars", len(description)).Info("🛠️ generate_minecraft_code called")

	res, err := t.gen.Generate(context.WithoutCancel(ctx), description, generator.Discard)
	if err == nil {
		return textResult(res.Exchange.AI, false), nil
	}
	msg := "❌ " + generator.Describe(err, t.credentialVar)
	if errors.Is(err, generator.ErrPersist) {
		// the code was produced, only saving it failed
		return textResult(res.Exchange.AI+"\n\n⚠️ "+generator.MsgPersistFailed, false), nil
	}
	var se *generator.StreamError
	if errors.As(err, &se) && se.Partial != "" {
		msg += "\n\nЧастичный ответ:\n" + se.Partial
	}
	return textResult(msg, true), nil
}

// Recent lists recorded exchanges, newest first.
func (t *Tools) Recent(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[RecentParams]) (*mcp.CallToolResultFor[any], error) {
	limit := params.Arguments.Limit
	if limit <= 0 {
		limit = t.displayLimit
	}
	if limit > maxRecent {
		limit = maxRecent
	}

	log := t.gen.History()
	if log == nil {
		return textResult("💬 История пуста", false), nil
	}
	recent := log.Recent(limit)
	if len(recent) == 0 {
		return textResult("💬 История пуста", false), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💬 %d of %d generations\n", len(recent), log.Len())
	for i, ex := range recent {
		fmt.Fprintf(&b, "\n%d. Запрос: %s\nКод от AI:\n%s\n", i+1, ex.User, ex.AI)
	}
	return textResult(b.String(), false), nil
}
