package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/pflag"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/probe"
)

const usage = `Usage: monitorctl [flags] <command> [args]

Commands:
  list                       show all monitors
  add <name> <url>           register a monitor
  rm <id>                    delete a monitor
  probe <url>                run one check locally and print the result

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("monitorctl", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	api := flags.String("api", envOr("API_BASE", "http://localhost:8080"), "API base URL")
	key := flags.StringP("key", "k", os.Getenv("API_KEY"), "API key sent as X-API-Key")
	interval := flags.Int("interval", 60, "interval_seconds for add")
	timeout := flags.Duration("timeout", 10*time.Second, "request / probe timeout")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return 2
	}

	c := &client{base: strings.TrimRight(*api, "/"), key: *key, http: &http.Client{Timeout: *timeout}}
	var err error
	switch rest[0] {
	case "list":
		err = c.list(stdout)
	case "add":
		if len(rest) != 3 {
			flags.Usage()
			return 2
		}
		err = c.add(stdout, rest[1], rest[2], *interval)
	case "rm":
		if len(rest) != 2 {
			flags.Usage()
			return 2
		}
		err = c.remove(stdout, rest[1])
	case "probe":
		if len(rest) != 2 {
			flags.Usage()
			return 2
		}
		return probeOnce(stdout, rest[1], *timeout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		flags.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

type client struct {
	base string
	key  string
	http *http.Client
}

func (c *client) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contacting API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("API returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) list(w io.Writer) error {
	var ms []domain.Monitor
	if err := c.do(http.MethodGet, "/monitors", nil, &ms); err != nil {
		return err
	}
	renderMonitors(w, ms, time.Now())
	return nil
}

func (c *client) add(w io.Writer, name, url string, interval int) error {
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}
	var m domain.Monitor
	payload := map[string]any{"name": name, "url": url, "interval_seconds": interval}
	if err := c.do(http.MethodPost, "/monitors", payload, &m); err != nil {
		return err
	}
	fmt.Fprintf(w, "added %s (%s)\n", m.ID, m.URL)
	return nil
}

func (c *client) remove(w io.Writer, id string) error {
	if err := c.do(http.MethodDelete, "/monitors/"+neturl.PathEscape(id), nil, nil); err != nil {
		return err
	}
	fmt.Fprintf(w, "deleted %s\n", id)
	return nil
}

func renderMonitors(w io.Writer, ms []domain.Monitor, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "URL", "Status", "Last checked"})
	for _, m := range ms {
		last := "never"
		if m.LastCheckedAt != nil {
			last = humanize.RelTime(*m.LastCheckedAt, now, "ago", "from now")
		}
		t.AppendRow(table.Row{m.ID, m.Name, m.URL, colorStatus(m.Status), last})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(ms)})
	t.Render()
}

func colorStatus(s domain.Status) string {
	switch s {
	case domain.StatusUp:
		return text.FgGreen.Sprint(string(s))
	case domain.StatusDown:
		return text.FgRed.Sprint(string(s))
	}
	return text.FgYellow.Sprint(string(s))
}

func probeOnce(w io.Writer, url string, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	out := probe.NewHTTPChecker(timeout).Check(ctx, url)
	fmt.Fprintf(w, "%s %s (%.0f ms) %s\n", url, out.Status, out.LatencyMS, out.Message)
	if !out.Up() {
		return 1
	}
	return 0
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
