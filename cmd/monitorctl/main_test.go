package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

func TestRenderMonitors(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	now := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	checked := now.Add(-3 * time.Minute)
	var buf bytes.Buffer
	renderMonitors(&buf, []domain.Monitor{
		{ID: "a", Name: "api", URL: "https://api", Status: domain.StatusUp, LastCheckedAt: &checked},
		{ID: "b", Name: "web", URL: "https://web", Status: domain.StatusPending},
	}, now)

	out := buf.String()
	assert.Contains(t, out, "3 minutes ago")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "https://api")
}

func TestRun_ListAddRemove(t *testing.T) {
	var gotKey string
	var created map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/monitors":
			_ = json.NewEncoder(w).Encode([]domain.Monitor{{ID: "a", Name: "api", URL: "https://api", Status: domain.StatusDown}})
		case r.Method == http.MethodPost && r.URL.Path == "/monitors":
			_ = json.NewDecoder(r.Body).Decode(&created)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(domain.Monitor{ID: "new", URL: created["url"].(string)})
		case r.Method == http.MethodDelete && r.URL.Path == "/monitors/a":
			_, _ = w.Write([]byte(`{"deleted":true}`))
		default:
			http.Error(w, `{"error":"monitor not found"}`, http.StatusNotFound)
		}
	}))
	defer ts.Close()

	var out, errOut bytes.Buffer
	code := run([]string{"--api", ts.URL, "-k", "adm", "list"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "api")
	assert.Equal(t, "adm", gotKey)

	out.Reset()
	code = run([]string{"--api", ts.URL, "--interval", "30", "add", "web", "example.com"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Equal(t, "https://example.com", created["url"])
	assert.EqualValues(t, 30, created["interval_seconds"])
	assert.Contains(t, out.String(), "added new")

	out.Reset()
	require.Equal(t, 0, run([]string{"--api", ts.URL, "rm", "a"}, &out, &errOut))
	assert.Contains(t, out.String(), "deleted a")

	errOut.Reset()
	assert.Equal(t, 1, run([]string{"--api", ts.URL, "rm", "zzz"}, &out, &errOut))
	assert.True(t, strings.Contains(errOut.String(), "404"), errOut.String())
}

func TestRun_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run(nil, &out, &errOut))
	assert.Equal(t, 2, run([]string{"bogus"}, &out, &errOut))
	assert.Equal(t, 2, run([]string{"add", "only-name"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "Usage: monitorctl")
}

func TestRun_Probe(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer up.Close()
	moved := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, up.URL, http.StatusMovedPermanently)
	}))
	defer moved.Close()

	var out, errOut bytes.Buffer
	assert.Equal(t, 0, run([]string{"probe", up.URL}, &out, &errOut))
	assert.Contains(t, out.String(), " up ")

	out.Reset()
	assert.Equal(t, 1, run([]string{"probe", moved.URL}, &out, &errOut))
	assert.Contains(t, out.String(), " down ")
}

func TestRun_RemoveEscapesID(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"--api", ts.URL, "rm", "a/b?c"}, &out, &errOut), errOut.String())
	assert.Equal(t, "/monitors/a%2Fb%3Fc", gotPath)
}
