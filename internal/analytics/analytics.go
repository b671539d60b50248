package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"minecraft-codegen/internal/storage"
)

// Stats summarises the stored generation history
type Stats struct {
	TotalExchanges    int     `json:"total_exchanges"`
	EmptyResponses    int     `json:"empty_responses"`
	AvgPromptChars    float64 `json:"avg_prompt_chars"`
	AvgResponseChars  float64 `json:"avg_response_chars"`
	LongestResponse   int     `json:"longest_response_chars"`
	CodeBlocks        int     `json:"code_blocks"`
	ResponsesWithCode int     `json:"responses_with_code"`
}

// Analyze walks the whole sequence; lengths are counted in runes.
func Analyze(exchanges []storage.Exchange) *Stats {
	stats := &Stats{TotalExchanges: len(exchanges)}
	if len(exchanges) == 0 {
		return stats
	}

	var promptChars, responseChars int
	for _, ex := range exchanges {
		p := utf8.RuneCountInString(ex.User)
		r := utf8.RuneCountInString(ex.AI)
		promptChars += p
		responseChars += r
		if strings.TrimSpace(ex.AI) == "" {
			stats.EmptyResponses++
		}
		if r > stats.LongestResponse {
			stats.LongestResponse = r
		}
		if blocks := countCodeBlocks(ex.AI); blocks > 0 {
			stats.CodeBlocks += blocks
			stats.ResponsesWithCode++
		}
	}
	n := float64(len(exchanges))
	stats.AvgPromptChars = float64(promptChars) / n
	stats.AvgResponseChars = float64(responseChars) / n
	return stats
}

// countCodeBlocks counts closed ``` fences.
func countCodeBlocks(text string) int {
	fences := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fences++
		}
	}
	return fences / 2
}

// Summary is a short human-readable report
func (s *Stats) Summary() string {
	return fmt.Sprintf(`Статистика генераций:
- Всего запросов: %d
- Пустых ответов: %d
- Ответов с кодом: %d (блоков кода: %d)
- Средняя длина запроса: %.1f символов
- Средняя длина ответа: %.1f символов
- Самый длинный ответ: %d символов`,
		s.TotalExchanges, s.EmptyResponses, s.ResponsesWithCode, s.CodeBlocks,
		s.AvgPromptChars, s.AvgResponseChars, s.LongestResponse)
}

// ToJSON сериализует статистику в JSON
func (s *Stats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
