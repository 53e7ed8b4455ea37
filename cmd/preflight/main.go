// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hamed0406/uptimemonitor/internal/config"
)

func main() {
	os.Exit(check(os.Stdout, os.Stderr))
}

// check inspects the deployment environment and returns the exit code.
func check(stdout, stderr io.Writer) int {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }
	env := func(name string) string { return strings.TrimSpace(os.Getenv(name)) }

	admin := env("ADMIN_API_KEYS")
	pub := env("PUBLIC_API_KEYS")

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (monitor writes would be open to anyone).")
	}
	if pub == "" {
		warn("PUBLIC_API_KEYS is empty; only admin keys can read /monitors.")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if env("DATABASE_URL") == "" {
		warn("DATABASE_URL empty — monitors live in memory and vanish on restart.")
	} else {
		ok("DATABASE_URL present")
	}

	smtpHost := env("SMTP_HOST")
	slack := env("SLACK_WEBHOOK_URL")
	switch {
	case smtpHost == "" && slack == "":
		warn("no SMTP_HOST or SLACK_WEBHOOK_URL — transitions are only logged.")
	case smtpHost != "" && env("NOTIFY_RECIPIENT") == "":
		fail("SMTP_HOST set but NOTIFY_RECIPIENT is empty.")
	case smtpHost != "":
		ok("SMTP_HOST=" + smtpHost + " → " + env("NOTIFY_RECIPIENT"))
	}
	if slack != "" {
		ok("SLACK_WEBHOOK_URL present")
	}

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		fail(err.Error())
	} else {
		ok(fmt.Sprintf("check every %s, timeout %s, %d concurrent", cfg.CheckInterval, cfg.HTTPTimeout, cfg.MaxConcurrentChecks))
	}

	if failed {
		return 1
	}
	ok("preflight passed")
	return 0
}
