// Package theme holds the page appearance chosen in the sidebar. A Theme is a
// plain value: it is built once per request and never modified afterwards.
package theme

import (
	"bytes"
	_ "embed"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const (
	MinFontSize     = 12
	MaxFontSize     = 24
	DefaultFontSize = 16

	DefaultChatBg   = "#f0f0f5"
	DefaultUserBg   = "#d1e7dd"
	DefaultAIBg     = "#f8d7da"
	DefaultButton   = "#6a11cb"
	DefaultPresetID = "light"
)

//go:embed themes.yaml
var presetsYAML []byte

// Preset is the fixed part of a theme.
type Preset struct {
	Name               string `yaml:"name"`
	Label              string `yaml:"label"`
	BodyBg             string `yaml:"body_bg"`
	BodyColor          string `yaml:"body_color"`
	TextareaBg         string `yaml:"textarea_bg"`
	TextareaUsesChatBg bool   `yaml:"textarea_uses_chat_bg"`
	TextareaColor      string `yaml:"textarea_color"`
	BoxBorder          string `yaml:"box_border"`
	UserColor          string `yaml:"user_color"`
	AIColor            string `yaml:"ai_color"`
}

// Theme is a preset plus the user-selected font size and colors.
type Theme struct {
	Preset   Preset
	FontSize int
	ChatBg   string
	UserBg   string
	AIBg     string
	Button   string
}

var presets = mustLoadPresets(presetsYAML)

func mustLoadPresets(data []byte) []Preset {
	ps, err := ParsePresets(data)
	if err != nil {
		panic(fmt.Sprintf("theme: %v", err))
	}
	return ps
}

// ParsePresets decodes a preset table. Names must be unique and non-empty.
func ParsePresets(data []byte) ([]Preset, error) {
	var ps []Preset
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("parse presets: no presets defined")
	}
	seen := make(map[string]bool, len(ps))
	for _, p := range ps {
		if p.Name == "" {
			return nil, fmt.Errorf("parse presets: preset without name")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("parse presets: duplicate preset %q", p.Name)
		}
		seen[p.Name] = true
	}
	return ps, nil
}

// Presets lists the available presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

func lookup(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

func Default() Theme {
	p, _ := lookup(DefaultPresetID)
	return Theme{
		Preset:   p,
		FontSize: DefaultFontSize,
		ChatBg:   DefaultChatBg,
		UserBg:   DefaultUserBg,
		AIBg:     DefaultAIBg,
		Button:   DefaultButton,
	}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func color(v, fallback string) string {
	v = strings.TrimSpace(v)
	if hexColor.MatchString(v) {
		return strings.ToLower(v)
	}
	return fallback
}

// FromValues reads the sidebar selection from query or form values. Missing
// or invalid values keep their defaults.
func FromValues(v url.Values) Theme {
	t := Default()
	if p, ok := lookup(v.Get("theme")); ok {
		t.Preset = p
	}
	if n, err := strconv.Atoi(v.Get("font_size")); err == nil {
		t.FontSize = min(max(n, MinFontSize), MaxFontSize)
	}
	t.ChatBg = color(v.Get("chat_bg"), t.ChatBg)
	t.UserBg = color(v.Get("user_bg"), t.UserBg)
	t.AIBg = color(v.Get("ai_bg"), t.AIBg)
	t.Button = color(v.Get("button"), t.Button)
	return t
}

// Values is the inverse of FromValues.
func (t Theme) Values() url.Values {
	v := url.Values{}
	v.Set("theme", t.Preset.Name)
	v.Set("font_size", strconv.Itoa(t.FontSize))
	v.Set("chat_bg", t.ChatBg)
	v.Set("user_bg", t.UserBg)
	v.Set("ai_bg", t.AIBg)
	v.Set("button", t.Button)
	return v
}

// Query is the encoded selection, used to keep the theme across links.
func (t Theme) Query() string { return t.Values().Encode() }

// TextareaBg resolves the prompt box background for the preset.
func (t Theme) TextareaBg() string {
	if t.Preset.TextareaUsesChatBg {
		return t.ChatBg
	}
	return t.Preset.TextareaBg
}

var cssTmpl = template.Must(template.New("css").Parse(`
{{- if .Preset.BodyBg}}body {background-color: {{.Preset.BodyBg}}; color: {{.Preset.BodyColor}};}
{{end -}}
.prompt textarea {background-color: {{.TextareaBg}}; color: {{.Preset.TextareaColor}}; font-size: {{.FontSize}}px;}
.prompt button {background-color: {{.Button}}; color: white; font-weight: bold;}
.chat-box {padding: 10px; border-radius: 10px; margin-bottom: 10px;{{if .Preset.BoxBorder}} border: {{.Preset.BoxBorder}};{{end}}}
.user-box {background-color: {{.UserBg}}; color: {{.Preset.UserColor}};}
.ai-box {background-color: {{.AIBg}}; color: {{.Preset.AIColor}};}
`))

// CSS renders the stylesheet for the theme. Only validated values reach it.
func (t Theme) CSS() string {
	var buf bytes.Buffer
	if err := cssTmpl.Execute(&buf, t); err != nil {
		return ""
	}
	return buf.String()
}
