package httpapi

import "testing"

func TestValidateHTTPProtocol(t *testing.T) {
	v := newPayloadValidator()
	cases := []struct {
		in   string
		want bool
	}{
		{"https://example.com", true},
		{"http://EXAMPLE.com:8080/health?x=1", true},
		{"ftp://x", false},
		{"", false},
		{"https://", false},
		{"example.com", false},
	}
	for _, c := range cases {
		p := monitorPayload{Name: "n", URL: c.in}
		got := v.check(p) == nil
		if got != c.want {
			t.Fatalf("url %q valid=%v want %v (%v)", c.in, got, c.want, v.check(p))
		}
	}
}

func TestPayload_DefaultsInterval(t *testing.T) {
	m := monitorPayload{Name: "n", URL: "https://x"}.monitor()
	if m.IntervalSeconds != defaultIntervalSeconds {
		t.Fatalf("want default interval, got %d", m.IntervalSeconds)
	}
	five := 5
	if got := (monitorPayload{IntervalSeconds: &five}).monitor().IntervalSeconds; got != 5 {
		t.Fatalf("want 5, got %d", got)
	}
}
