package pagerduty

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/target/report-relay/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when routing key missing")
	}
}

func TestBuildEventDefaults(t *testing.T) {
	client, err := NewClient(Config{RoutingKey: "key", Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	event := client.buildEvent(notify.RunFailurePayload{
		RunID:      "run-1",
		Job:        "settlements",
		ItemID:     "123",
		Stage:      "fetch",
		Error:      "boom",
		ErrorClass: "fetch",
		Metadata:   map[string]string{"job": "ignored", "target": "nas"},
	})

	payloadSection, ok := event["payload"].(map[string]any)
	if !ok {
		t.Fatalf("expected payload section")
	}
	if payloadSection["severity"] != notify.SeverityCritical {
		t.Fatalf("expected default severity, got %v", payloadSection["severity"])
	}
	if payloadSection["source"] != "report-relay" {
		t.Fatalf("expected default source, got %v", payloadSection["source"])
	}
	if payloadSection["summary"] != "Report relay job settlements failed at fetch" {
		t.Fatalf("unexpected summary %v", payloadSection["summary"])
	}

	custom, ok := payloadSection["custom_details"].(map[string]any)
	if !ok {
		t.Fatalf("expected custom details")
	}
	for _, key := range []string{"run_id", "job", "item_id", "stage", "error", "error_class", "target"} {
		if _, exists := custom[key]; !exists {
			t.Fatalf("expected key %s in custom details", key)
		}
	}
	if custom["job"] != "settlements" {
		t.Fatalf("metadata must not override payload fields, got %v", custom["job"])
	}

	if event["dedup_key"] != "settlements:123" {
		t.Fatalf("unexpected dedup key %v", event["dedup_key"])
	}
}

func TestSendRunFailurePostsEvent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(Config{RoutingKey: "key", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.SendRunFailure(context.Background(), notify.RunFailurePayload{Job: "daily-nas"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["routing_key"] != "key" || got["event_action"] != "trigger" {
		t.Fatalf("unexpected event %v", got)
	}
}

func TestSendRunFailureReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid routing key", http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewClient(Config{RoutingKey: "key", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = client.SendRunFailure(context.Background(), notify.RunFailurePayload{Job: "daily-nas"})
	if err == nil || !strings.Contains(err.Error(), "invalid routing key") {
		t.Fatalf("expected api error, got %v", err)
	}
}
