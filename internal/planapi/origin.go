package planapi

import (
	"net"
	"strconv"
	"strings"
)

// OriginRule describes the host-to-backend mapping used when no explicit
// base URL is configured.
type OriginRule struct {
	Port         int    // port appended to an arbitrary host
	LocalPort    int    // port used for loopback hosts
	TunnelDomain string // substring identifying a tunnel host
	TunnelOrigin string // fixed origin used for tunnel hosts
}

// DefaultOriginRule matches the deployment the web client shipped with.
func DefaultOriginRule() OriginRule {
	return OriginRule{
		Port:         8000,
		LocalPort:    8000,
		TunnelDomain: "trycloudflare.com",
		TunnelOrigin: "https://cook-boc-bbs-david.trycloudflare.com",
	}
}

// ResolveBaseOrigin maps a host name to a backend origin. It is a pure
// string transform with no lookups.
func ResolveBaseOrigin(host string, rule OriginRule) string {
	host = strings.TrimSpace(host)
	if isLoopback(host) {
		return "http://localhost:" + strconv.Itoa(rule.LocalPort)
	}
	if rule.TunnelDomain != "" && rule.TunnelOrigin != "" && strings.Contains(host, rule.TunnelDomain) {
		return strings.TrimRight(rule.TunnelOrigin, "/")
	}
	return "http://" + net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(rule.Port))
}

func isLoopback(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1", "[::1]":
		return true
	}
	return false
}
