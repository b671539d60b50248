package web

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"

	"minecraft-codegen/internal/generator"
	"minecraft-codegen/internal/render"
	"minecraft-codegen/internal/theme"
)

// pageData представляет данные главной страницы
type pageData struct {
	Theme        theme.Theme
	Presets      []theme.Preset
	FontMin      int
	FontMax      int
	StyleURL     template.URL
	ActionURL    template.URL
	DisplayLimit int

	Ready             bool
	CredentialMessage string
	InProgress        string

	Prompt  string
	Output  template.HTML
	Warning string
	Error   string

	History []render.Entry
}

var pageTmpl = template.Must(template.New("page").Parse(getHTMLTemplate()))

func (s *Server) newPageData(th theme.Theme) *pageData {
	query := th.Query()
	return &pageData{
		Theme:             th,
		Presets:           theme.Presets(),
		FontMin:           theme.MinFontSize,
		FontMax:           theme.MaxFontSize,
		StyleURL:          template.URL("/static/style.css?" + query),
		ActionURL:         template.URL("/?" + query),
		DisplayLimit:      s.opts.DisplayLimit,
		Ready:             s.gen.Ready(),
		CredentialMessage: generator.MissingCredentialMessage(s.opts.CredentialVar),
		InProgress:        generator.MsgInProgress,
	}
}

// handleIndex отдаёт страницу; POST выполняет генерацию без JavaScript
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := s.newPageData(theme.FromValues(r.URL.Query()))

	switch r.Method {
	case http.MethodGet, http.MethodHead:
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		data.Prompt = r.PostForm.Get("prompt")
		res, err := s.gen.Generate(context.WithoutCancel(r.Context()), data.Prompt, generator.Discard)
		s.applyResult(data, res, err)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	for _, ex := range s.gen.History().Recent(s.opts.DisplayLimit) {
		data.History = append(data.History, render.HistoryEntry(ex.User, ex.AI))
	}
	s.renderPage(w, data)
}

// applyResult переносит итог генерации на страницу
func (s *Server) applyResult(data *pageData, res generator.Result, err error) {
	switch {
	case err == nil:
		data.Output = render.AIBox(res.Exchange.AI)
	case errors.Is(err, generator.ErrNoCredential):
		// the page already replaces the form with the credential message
	case errors.Is(err, generator.ErrBlankInput):
		data.Warning = generator.Describe(err, s.opts.CredentialVar)
	case errors.Is(err, generator.ErrPersist):
		data.Output = render.AIBox(res.Exchange.AI)
		data.Warning = generator.Describe(err, s.opts.CredentialVar)
	default:
		data.Error = generator.Describe(err, s.opts.CredentialVar)
		var se *generator.StreamError
		if errors.As(err, &se) && se.Partial != "" {
			data.Output = render.AIBox(se.Partial)
		}
	}
}

// renderPage рендерит HTML страницу
func (s *Server) renderPage(w http.ResponseWriter, data *pageData) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		s.log.WithError(err).Error("Error rendering template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// renderEntry renders one history row for insertion by the client script.
func renderEntry(user, ai string) (string, error) {
	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, "entry", render.HistoryEntry(user, ai)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// getHTMLTemplate возвращает HTML шаблон
func getHTMLTemplate() string {
	return `<!DOCTYPE html>
<html lang="ru">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>✨ Minecraft Code Generator</title>
    <link rel="stylesheet" href="{{.StyleURL}}">
</head>
<body>
    <div class="layout">
        <aside class="sidebar">
            <h2>⚙️ Настройки интерфейса</h2>
            <form method="get" action="/" class="settings">
                <label>Тема
                    <select name="theme">
                        {{- range .Presets}}
                        <option value="{{.Name}}"{{if eq .Name $.Theme.Preset.Name}} selected{{end}}>{{.Label}}</option>
                        {{- end}}
                    </select>
                </label>
                <label>Размер шрифта: <output id="font-size-value">{{.Theme.FontSize}}</output>
                    <input type="range" name="font_size" min="{{.FontMin}}" max="{{.FontMax}}" value="{{.Theme.FontSize}}">
                </label>
                <label>Цвет фона чата <input type="color" name="chat_bg" value="{{.Theme.ChatBg}}"></label>
                <label>Цвет фона сообщений пользователя <input type="color" name="user_bg" value="{{.Theme.UserBg}}"></label>
                <label>Цвет фона сообщений AI <input type="color" name="ai_bg" value="{{.Theme.AIBg}}"></label>
                <label>Цвет кнопки <input type="color" name="button" value="{{.Theme.Button}}"></label>
                <button type="submit">Применить</button>
            </form>
        </aside>
        <main class="content">
            <h1>🛡️ Minecraft Code Generator</h1>
            <h3 class="subtitle">Генерируй код для модов, скриптов и миров Minecraft с помощью AI</h3>
            {{- if .Ready}}
            <form class="prompt" id="prompt-form" method="post" action="{{.ActionURL}}">
                <label for="prompt">Опишите, какой код Minecraft вам нужен (например, 'мод на новый меч' или 'скрипт для автоматической фермы'):</label>
                <textarea id="prompt" name="prompt" rows="7">{{.Prompt}}</textarea>
                <button type="submit">Генерировать код</button>
            </form>
            {{- else}}
            <div class="alert alert-error">{{.CredentialMessage}}</div>
            {{- end}}
            <div id="status" class="status" hidden>{{.InProgress}}</div>
            <div id="alert">
                {{- if .Warning}}<div class="alert alert-warning">{{.Warning}}</div>{{end -}}
                {{- if .Error}}<div class="alert alert-error">{{.Error}}</div>{{end -}}
            </div>
            <div id="output">{{.Output}}</div>
            <h3>💬 История генераций</h3>
            <div id="history" data-limit="{{.DisplayLimit}}">
                {{- range .History}}{{template "entry" .}}{{end -}}
            </div>
        </main>
    </div>
    <script src="/static/app.js"></script>
</body>
</html>
{{define "entry"}}<div class="history-entry"><div class="chat-box user-box"><b>Запрос:</b> {{.User}}</div><div class="chat-box ai-box"><b>Код от AI:</b> {{.AI}}</div></div>{{end}}`
}
