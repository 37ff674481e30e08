package spooler

import (
	"net"
	"net/url"
	"strings"
)

// serverPath normalises a server name to the \\server form EnumPrinters expects
func serverPath(server string) string {
	server = strings.TrimSpace(server)
	if server == "" {
		return ""
	}
	return `\\` + serverHost(server)
}

// serverHost strips UNC prefixes, leaving the bare host name
func serverHost(server string) string {
	return strings.TrimLeft(strings.TrimSpace(server), `\/`)
}

// networkSchemes are CUPS device URI schemes that address a host
var networkSchemes = map[string]bool{
	"ipp":    true,
	"ipps":   true,
	"http":   true,
	"https":  true,
	"socket": true,
	"lpd":    true,
	"smb":    true,
	"dnssd":  false, // host is a service instance name, not resolvable
}

// portFromDeviceURI returns the port identifier for a CUPS device URI: the
// host of a network URI, or the URI itself for local and virtual devices.
func portFromDeviceURI(uri string) string {
	uri = strings.TrimSpace(uri)
	u, err := url.Parse(uri)
	if err != nil || !networkSchemes[strings.ToLower(u.Scheme)] {
		return uri
	}

	host := u.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "" {
		return uri
	}
	return host
}
