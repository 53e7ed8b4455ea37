package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "up", "down"} {
		s, err := ParseStatus(raw)
		if err != nil || string(s) != raw {
			t.Fatalf("ParseStatus(%q) = %q, %v", raw, s, err)
		}
	}
	if _, err := ParseStatus("UP"); err == nil {
		t.Fatalf("want error for unknown status")
	}
}

func TestMonitor_JSONShape(t *testing.T) {
	checked := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	m := Monitor{
		ID:              MonitorID("M1"),
		Name:            "api",
		URL:             "https://example.com",
		IntervalSeconds: 60,
		Status:          StatusDown,
		LastCheckedAt:   &checked,
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["status"] != "down" || got["interval_seconds"].(float64) != 60 {
		t.Fatalf("unexpected json: %s", b)
	}
	if got["last_checked_at"] != "2025-08-18T12:00:00Z" {
		t.Fatalf("unexpected last_checked_at: %v", got["last_checked_at"])
	}

	m.LastCheckedAt = nil
	b, _ = json.Marshal(m)
	_ = json.Unmarshal(b, &got)
	if got["last_checked_at"] != nil {
		t.Fatalf("want null last_checked_at, got %v", got["last_checked_at"])
	}
}
