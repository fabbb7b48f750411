package planapi

import "testing"

func TestResolveBaseOrigin(t *testing.T) {
	rule := DefaultOriginRule()
	tests := []struct {
		host string
		want string
	}{
		{"localhost", "http://localhost:8000"},
		{"127.0.0.1", "http://localhost:8000"},
		{"::1", "http://localhost:8000"},
		{"abc.trycloudflare.com", "https://cook-boc-bbs-david.trycloudflare.com"},
		{"10.0.0.5", "http://10.0.0.5:8000"},
		{"planner.example.com", "http://planner.example.com:8000"},
		{"fe80::1", "http://[fe80::1]:8000"},
	}
	for _, tt := range tests {
		if got := ResolveBaseOrigin(tt.host, rule); got != tt.want {
			t.Errorf("ResolveBaseOrigin(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestResolveBaseOriginCustomRule(t *testing.T) {
	rule := OriginRule{Port: 9000, LocalPort: 3000}
	if got := ResolveBaseOrigin("localhost", rule); got != "http://localhost:3000" {
		t.Errorf("loopback = %q", got)
	}
	// No tunnel configured: tunnel hosts fall through to host:port.
	if got := ResolveBaseOrigin("x.trycloudflare.com", rule); got != "http://x.trycloudflare.com:9000" {
		t.Errorf("tunnel host = %q", got)
	}
}
