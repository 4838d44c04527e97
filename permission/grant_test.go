package permission

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGrantJSONHasEightNamedBooleans(t *testing.T) {
	data, err := json.Marshal(GrantOf(CapConcert, CapVIP))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]bool
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(fields) != 8 {
		t.Fatalf("expected 8 fields, got %d: %s", len(fields), data)
	}
	if !fields["concert"] || !fields["vip"] || fields["backstage"] {
		t.Fatalf("unexpected encoding: %s", data)
	}
}

func TestGrantUnmarshalRestoresInvariant(t *testing.T) {
	var g Grant
	if err := json.Unmarshal([]byte(`{"fullAccess":true}`), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !g.Concert() || !g.Premium() || !g.VIP() || !g.Backstage() || !g.StadiumArena() {
		t.Fatalf("full access decoded without implied capabilities: %s", g)
	}
}

func TestGrantWithIgnoresOutOfRange(t *testing.T) {
	g := GrantOf(CapConcert).With(Capability(40))
	if g != GrantOf(CapConcert) {
		t.Fatalf("out of range capability changed grant: %s", g)
	}
	if g.Has(Capability(40)) {
		t.Fatal("out of range capability reported as held")
	}
}

func TestGrantString(t *testing.T) {
	if got := Grant(0).String(); got != "none" {
		t.Fatalf("got %q", got)
	}
	got := GrantOf(CapPremium, CapConcert).String()
	if got != "concert+premium" {
		t.Fatalf("got %q", got)
	}
}

func TestParseCapability(t *testing.T) {
	for _, c := range AllCapabilities() {
		parsed, err := ParseCapability(c.String())
		if err != nil || parsed != c {
			t.Fatalf("ParseCapability(%q) = %v, %v", c.String(), parsed, err)
		}
	}
	if _, err := ParseCapability("lounge"); err == nil || !strings.Contains(err.Error(), "unknown") {
		t.Fatalf("expected unknown capability error, got %v", err)
	}
}
