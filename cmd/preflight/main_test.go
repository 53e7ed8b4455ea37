package main

import (
	"bytes"
	"strings"
	"testing"
)

func setEnv(t *testing.T, m map[string]string) {
	t.Helper()
	for _, k := range []string{"ADMIN_API_KEYS", "PUBLIC_API_KEYS", "DATABASE_URL", "SMTP_HOST", "SMTP_FROM", "NOTIFY_RECIPIENT", "SLACK_WEBHOOK_URL"} {
		t.Setenv(k, m[k])
	}
}

func TestCheck_Passes(t *testing.T) {
	setEnv(t, map[string]string{
		"ADMIN_API_KEYS":   "adm",
		"PUBLIC_API_KEYS":  "pub",
		"SMTP_HOST":        "mail.example.com",
		"SMTP_FROM":        "monitor@example.com",
		"NOTIFY_RECIPIENT": "ops@example.com",
	})
	var out, errOut bytes.Buffer
	if code := check(&out, &errOut); code != 0 {
		t.Fatalf("want pass, got %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "preflight passed") {
		t.Fatalf("missing pass line: %s", out.String())
	}
}

func TestCheck_FailsWithoutAdminKeysOrRecipient(t *testing.T) {
	setEnv(t, map[string]string{
		"SMTP_HOST": "mail.example.com",
		"SMTP_FROM": "monitor@example.com",
	})
	var out, errOut bytes.Buffer
	if code := check(&out, &errOut); code != 1 {
		t.Fatalf("want failure, got %d", code)
	}
	for _, want := range []string{"ADMIN_API_KEYS", "NOTIFY_RECIPIENT"} {
		if !strings.Contains(errOut.String(), want) {
			t.Fatalf("want %s in output: %s", want, errOut.String())
		}
	}
}

func TestCheck_InvalidConfig(t *testing.T) {
	setEnv(t, map[string]string{
		"ADMIN_API_KEYS":   "adm",
		"SMTP_HOST":        "mail.example.com", // no SMTP_FROM
		"NOTIFY_RECIPIENT": "ops@example.com",
	})
	var out, errOut bytes.Buffer
	if code := check(&out, &errOut); code != 1 {
		t.Fatalf("want failure, got %d", code)
	}
	if !strings.Contains(errOut.String(), "invalid config") {
		t.Fatalf("want validation error: %s", errOut.String())
	}
}
