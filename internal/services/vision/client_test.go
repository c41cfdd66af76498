package vision_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inkwit/internal/services/vision"
	"inkwit/internal/testsupport"
)

func TestDetectUploadsImageAndDecodesDetections(t *testing.T) {
	annotated := base64.StdEncoding.EncodeToString([]byte("annotated-bytes"))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file field: %v", err)
		}
		defer file.Close()
		if header.Filename != "house.jpg" {
			t.Fatalf("unexpected upload name %q", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"detections": []map[string]any{
				{"label": "집", "confidence": 0.91, "box": []float64{1, 2, 3, 4}},
			},
			"annotated_image": annotated,
		})
	}))
	defer server.Close()

	imagePath := filepath.Join(t.TempDir(), "house.jpg")
	testsupport.WriteImage(t, imagePath)

	client := vision.NewClient(server.URL)
	result, err := client.Detect(context.Background(), imagePath)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(result.Detections) != 1 || result.Detections[0].Label != "집" {
		t.Fatalf("unexpected detections: %#v", result.Detections)
	}
	if result.Detections[0].Box != [4]float64{1, 2, 3, 4} {
		t.Fatalf("unexpected box: %v", result.Detections[0].Box)
	}

	wantAnnotated := strings.TrimSuffix(imagePath, ".jpg") + "_annotated.jpg"
	if result.AnnotatedPath != wantAnnotated {
		t.Fatalf("unexpected annotated path %q", result.AnnotatedPath)
	}
	data, err := os.ReadFile(result.AnnotatedPath)
	if err != nil {
		t.Fatalf("read annotated image: %v", err)
	}
	if string(data) != "annotated-bytes" {
		t.Fatalf("unexpected annotated content %q", data)
	}
}

func TestDetectWithoutAnnotation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"detections": []map[string]any{}})
	}))
	defer server.Close()

	imagePath := filepath.Join(t.TempDir(), "tree.png")
	testsupport.WriteImage(t, imagePath)

	result, err := vision.NewClient(server.URL).Detect(context.Background(), imagePath)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if result.AnnotatedPath != "" {
		t.Fatalf("expected no annotated path, got %q", result.AnnotatedPath)
	}
}

func TestDetectServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "model not loaded"})
	}))
	defer server.Close()

	imagePath := filepath.Join(t.TempDir(), "house.jpg")
	testsupport.WriteImage(t, imagePath)

	_, err := vision.NewClient(server.URL).Detect(context.Background(), imagePath)
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestDetectHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	imagePath := filepath.Join(t.TempDir(), "house.jpg")
	testsupport.WriteImage(t, imagePath)

	_, err := vision.NewClient(server.URL).Detect(context.Background(), imagePath)
	if err == nil || !strings.Contains(err.Error(), "http 500") {
		t.Fatalf("expected http error, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := vision.NewClient(server.URL).Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
}

func TestHealthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if err := vision.NewClient(server.URL).Health(context.Background()); err == nil {
		t.Fatal("expected health error")
	}
}
