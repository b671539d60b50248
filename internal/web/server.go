// Package web serves the generator page, its streaming endpoint and a small
// JSON API.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"minecraft-codegen/internal/generator"
	"minecraft-codegen/internal/history"
	"minecraft-codegen/internal/logger"
)

// Options настраивает веб-сервер
type Options struct {
	Port          int
	DisplayLimit  int
	CredentialVar string
	// MCP is mounted under /mcp when set.
	MCP http.Handler
}

// Server представляет HTTP сервер генератора
type Server struct {
	gen       *generator.Generator
	opts      Options
	server    *http.Server
	startTime time.Time
	log       *logger.Entry
}

// NewServer создает новый веб-сервер
func NewServer(gen *generator.Generator, opts Options) *Server {
	if opts.DisplayLimit <= 0 {
		opts.DisplayLimit = history.DefaultDisplayLimit
	}
	if opts.CredentialVar == "" {
		opts.CredentialVar = "GEMINI_API_KEY"
	}
	s := &Server{
		gen:       gen,
		opts:      opts,
		startTime: time.Now(),
		log:       logger.WithComponent("web"),
	}
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", opts.Port),
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// streaming responses clear their own write deadline
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/static/", s.handleStatic)        // CSS темы и клиентский скрипт
	mux.HandleFunc("/api/status", s.handleStatus)     // Health check endpoint
	mux.HandleFunc("/api/generate", s.handleGenerate) // Потоковая генерация (SSE)
	mux.HandleFunc("/api/history", s.handleHistory)   // Последние генерации
	mux.HandleFunc("/api/stats", s.handleStats)       // Статистика истории
	if s.opts.MCP != nil {
		mcp := withoutWriteDeadline(s.opts.MCP)
		mux.Handle("/mcp", mcp)
		mux.Handle("/mcp/", mcp)
	}
	mux.HandleFunc("/", s.handleIndex) // Главная страница (должен быть последним)

	return mux
}

// withoutWriteDeadline lifts the server WriteTimeout for long-lived streams
// such as MCP SSE sessions. The original writer is passed on so the handler
// can still flush.
func withoutWriteDeadline(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
		}
		h.ServeHTTP(w, r)
	})
}

// Start запускает веб-сервер и блокируется до его остановки
func (s *Server) Start() error {
	s.log.Infof("🌐 Starting Minecraft Code Generator on http://localhost:%d", s.opts.Port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop останавливает веб-сервер
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
