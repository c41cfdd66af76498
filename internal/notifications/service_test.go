package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"inkwit/internal/config"
	"inkwit/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T) (*httptest.Server, func() []captured) {
	t.Helper()
	var mu sync.Mutex
	var requests []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
	}))
	t.Cleanup(server.Close)
	return server, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), requests...)
	}
}

func ntfyConfig(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return &cfg
}

func TestNotifyRunCompleted(t *testing.T) {
	server, requests := newNtfyServer(t)
	svc := notifications.NewService(ntfyConfig(server.URL))

	err := svc.NotifyRunCompleted(context.Background(), "0123456789abcdef", "stable", 0.8)
	if err != nil {
		t.Fatalf("NotifyRunCompleted failed: %v", err)
	}

	got := requests()
	if len(got) != 1 {
		t.Fatalf("requests = %d", len(got))
	}
	if !strings.Contains(got[0].body, "01234567") || !strings.Contains(got[0].body, "stable") {
		t.Fatalf("body = %q", got[0].body)
	}
	if !strings.Contains(got[0].body, "80%") {
		t.Fatalf("confidence missing from body %q", got[0].body)
	}
	if got[0].tags != "inkwit,run,completed" {
		t.Fatalf("tags = %q", got[0].tags)
	}
}

func TestNotifyRunFailedUsesHighPriority(t *testing.T) {
	server, requests := newNtfyServer(t)
	svc := notifications.NewService(ntfyConfig(server.URL))

	err := svc.NotifyRunFailed(context.Background(), "run-1", "analyzing", "api unreachable")
	if err != nil {
		t.Fatalf("NotifyRunFailed failed: %v", err)
	}

	got := requests()
	if len(got) != 1 {
		t.Fatalf("requests = %d", len(got))
	}
	if got[0].priority != "high" {
		t.Fatalf("priority = %q", got[0].priority)
	}
	if !strings.Contains(got[0].body, "analyzing") || !strings.Contains(got[0].body, "api unreachable") {
		t.Fatalf("body = %q", got[0].body)
	}
}

func TestDisabledCategoriesSendNothing(t *testing.T) {
	server, requests := newNtfyServer(t)
	cfg := ntfyConfig(server.URL)
	cfg.Notifications.Completed = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(cfg)

	if err := svc.NotifyRunCompleted(context.Background(), "run-1", "stable", 1); err != nil {
		t.Fatalf("NotifyRunCompleted failed: %v", err)
	}
	if err := svc.NotifyRunFailed(context.Background(), "run-1", "detecting", "boom"); err != nil {
		t.Fatalf("NotifyRunFailed failed: %v", err)
	}
	if got := requests(); len(got) != 0 {
		t.Fatalf("requests = %d", len(got))
	}
}

func TestNoopServiceWithoutTopic(t *testing.T) {
	svc := notifications.NewService(ntfyConfig(""))
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop TestNotification failed: %v", err)
	}
}

func TestSendReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := notifications.NewService(ntfyConfig(server.URL))
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected ntfy error, got %v", err)
	}
}
