package analytics

import (
	"encoding/json"
	"strings"
	"testing"

	"minecraft-codegen/internal/storage"
)

func TestAnalyzeEmpty(t *testing.T) {
	stats := Analyze(nil)
	if stats.TotalExchanges != 0 || stats.AvgPromptChars != 0 || stats.LongestResponse != 0 {
		t.Fatalf("unexpected stats for empty history: %+v", stats)
	}
}

func TestAnalyze(t *testing.T) {
	exchanges := []storage.Exchange{
		{User: "меч", AI: "```java\nclass Sword {}\n```\n\n```json\n{}\n```"},
		{User: "ферма", AI: ""},
		{User: "ab", AI: "plain text"},
	}
	stats := Analyze(exchanges)

	if stats.TotalExchanges != 3 {
		t.Errorf("Expected 3 exchanges, got %d", stats.TotalExchanges)
	}
	if stats.EmptyResponses != 1 {
		t.Errorf("Expected 1 empty response, got %d", stats.EmptyResponses)
	}
	if stats.CodeBlocks != 2 {
		t.Errorf("Expected 2 code blocks, got %d", stats.CodeBlocks)
	}
	if stats.ResponsesWithCode != 1 {
		t.Errorf("Expected 1 response with code, got %d", stats.ResponsesWithCode)
	}
	// prompts: 3 + 5 + 2 runes
	if stats.AvgPromptChars != 10.0/3.0 {
		t.Errorf("Expected avg prompt %.3f, got %.3f", 10.0/3.0, stats.AvgPromptChars)
	}
	if stats.LongestResponse != len([]rune(exchanges[0].AI)) {
		t.Errorf("Expected longest %d, got %d", len([]rune(exchanges[0].AI)), stats.LongestResponse)
	}
}

func TestUnclosedFenceIsNotABlock(t *testing.T) {
	stats := Analyze([]storage.Exchange{{User: "x", AI: "```java\nclass A {}"}})
	if stats.CodeBlocks != 0 || stats.ResponsesWithCode != 0 {
		t.Fatalf("unclosed fence counted: %+v", stats)
	}
}

func TestSummaryAndJSON(t *testing.T) {
	stats := Analyze([]storage.Exchange{{User: "a", AI: "b"}})

	summary := stats.Summary()
	if !strings.Contains(summary, "Всего запросов: 1") {
		t.Errorf("summary missing total: %s", summary)
	}

	data, err := stats.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["total_exchanges"] != float64(1) {
		t.Errorf("Expected total_exchanges 1, got %v", decoded["total_exchanges"])
	}
}
