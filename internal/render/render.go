// Package render turns exchanges into the HTML fragments shown on the page.
// Model output is Markdown with raw HTML passed through unchanged.
package render

import (
	"bytes"
	"html"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldhtml.WithHardWraps(),
		goldhtml.WithUnsafe(),
	),
)

// Markdown converts model output to HTML. On a conversion failure the text
// is shown escaped inside a <pre> block.
func Markdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML("<pre>" + html.EscapeString(text) + "</pre>")
	}
	return template.HTML(buf.String())
}

// AIBox wraps rendered model output the way the live output region shows it.
func AIBox(text string) template.HTML {
	return template.HTML("<div class='chat-box ai-box'>" + string(Markdown(text)) + "</div>")
}

// Entry is one history row ready for the page template.
type Entry struct {
	User template.HTML
	AI   template.HTML
}

// HistoryEntry renders a stored prompt and reply. The prompt is Markdown too,
// matching the reply.
func HistoryEntry(user, ai string) Entry {
	return Entry{User: Markdown(user), AI: Markdown(ai)}
}
