package kobert_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwit/internal/knowledge"
	"inkwit/internal/services/kobert"
)

func TestPredictReturnsParsedPersona(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Text != "안정적이고 따뜻한 분위기의 집" {
			t.Fatalf("unexpected text %q", req.Text)
		}
		json.NewEncoder(w).Encode(map[string]string{"persona": "stable"})
	}))
	defer server.Close()

	persona, err := kobert.NewClient(server.URL).Predict(context.Background(), "  안정적이고 따뜻한 분위기의 집  ")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if persona != knowledge.PersonaStable {
		t.Fatalf("expected stable, got %s", persona)
	}
}

func TestPredictRejectsEmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty text")
	}))
	defer server.Close()

	persona, err := kobert.NewClient(server.URL).Predict(context.Background(), "   ")
	if err == nil {
		t.Fatal("expected error for empty text")
	}
	if persona != knowledge.PersonaUndetermined {
		t.Fatalf("expected undetermined, got %s", persona)
	}
}

func TestPredictUnrecognizedPersona(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"persona": "chaotic"})
	}))
	defer server.Close()

	persona, err := kobert.NewClient(server.URL).Predict(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), `unrecognized persona "chaotic"`) {
		t.Fatalf("expected unrecognized persona error, got %v", err)
	}
	if persona != knowledge.PersonaUndetermined {
		t.Fatalf("expected undetermined, got %s", persona)
	}
}

func TestPredictServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "tokenizer unavailable"})
	}))
	defer server.Close()

	_, err := kobert.NewClient(server.URL).Predict(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "tokenizer unavailable") {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestPredictHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := kobert.NewClient(server.URL).Predict(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "http 502") {
		t.Fatalf("expected http error, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	statuses := map[int]bool{
		http.StatusOK:                 true,
		http.StatusServiceUnavailable: false,
	}
	for status, wantOK := range statuses {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			w.WriteHeader(status)
		}))
		err := kobert.NewClient(server.URL).Health(context.Background())
		server.Close()
		if wantOK && err != nil {
			t.Fatalf("status %d: unexpected error %v", status, err)
		}
		if !wantOK && err == nil {
			t.Fatalf("status %d: expected error", status)
		}
	}
}
