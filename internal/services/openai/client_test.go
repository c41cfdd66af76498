package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"inkwit/internal/services/openai"
	"inkwit/internal/testsupport"
)

func newFakeAPI(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return openai.NewClient(openai.Config{
		APIKey:         "test",
		BaseURL:        server.URL + "/v1",
		Model:          "gpt-4o",
		EmbeddingModel: "text-embedding-3-small",
	})
}

func TestGenerateNarrativeSendsImageAndPrompt(t *testing.T) {
	client := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string          `json:"role"`
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o" || len(req.Messages) != 2 {
			t.Fatalf("unexpected request: %+v", req)
		}
		userContent := string(req.Messages[1].Content)
		if !strings.Contains(userContent, "그림을 분석") {
			t.Fatalf("prompt missing from content: %s", userContent)
		}
		if !strings.Contains(userContent, "data:image/jpeg;base64,") {
			t.Fatalf("image data url missing: %s", userContent)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  집이 안정적으로 보입니다.  "}},
			},
		})
	})

	imagePath := filepath.Join(t.TempDir(), "house.jpg")
	testsupport.WriteImage(t, imagePath)

	narrative, err := client.GenerateNarrative(context.Background(), imagePath, "그림을 분석해 주세요")
	if err != nil {
		t.Fatalf("GenerateNarrative failed: %v", err)
	}
	if narrative != "집이 안정적으로 보입니다." {
		t.Fatalf("narrative = %q", narrative)
	}
}

func TestGenerateNarrativeRejectsEmptyChoices(t *testing.T) {
	client := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	imagePath := filepath.Join(t.TempDir(), "house.jpg")
	testsupport.WriteImage(t, imagePath)

	_, err := client.GenerateNarrative(context.Background(), imagePath, "prompt")
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("expected no-choices error, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	client := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "안정 지향"}},
			},
		})
	})

	summary, err := client.Summarize(context.Background(), "요약해 주세요")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "안정 지향" {
		t.Fatalf("summary = %q", summary)
	}
}

func TestEmbed(t *testing.T) {
	client := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}, "index": 0},
			},
		})
	})

	vector, err := client.Embed(context.Background(), "안정")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vector) != 3 || vector[0] != 0.1 {
		t.Fatalf("vector = %v", vector)
	}
}

func TestEmbedRejectsEmptyData(t *testing.T) {
	client := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})

	_, err := client.Embed(context.Background(), "안정")
	if err == nil || !strings.Contains(err.Error(), "no data") {
		t.Fatalf("expected no-data error, got %v", err)
	}
}
