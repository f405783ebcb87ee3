// Package privacy keeps raw client addresses out of operational logs.
package privacy

import (
	"net/netip"
)

// AnonymizeIP truncates an address to its network: /24 for IPv4 and /48
// for IPv6. "192.168.1.47" becomes "192.168.1.0", "2001:db8:85a3::7334"
// becomes "2001:db8:85a3::".
//
// Returns "unknown" for empty input and "invalid" for anything unparseable.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.WithZone("").Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
