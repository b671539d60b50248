package web

import (
	"net/http"
	"strconv"
	"time"

	"minecraft-codegen/internal/analytics"
	"minecraft-codegen/internal/history"
)

// handleStatus обрабатывает health check запросы
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"service":    "minecraft-codegen",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"uptime":     time.Since(s.startTime).String(),
		"generation": s.gen.Ready(),
	})
}

type historyResponse struct {
	Exchanges []history.Exchange `json:"exchanges"`
	Total     int                `json:"total"`
}

// handleHistory отдаёт последние генерации, новые первыми
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := s.opts.DisplayLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	log := s.gen.History()
	writeJSON(w, http.StatusOK, historyResponse{
		Exchanges: log.Recent(limit),
		Total:     log.Len(),
	})
}

// handleStats отдаёт статистику по всей истории
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Analyze(s.gen.History().All()))
}
