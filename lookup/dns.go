package lookup

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	mdnsIPv4Addr = "224.0.0.251:5353"

	defaultDNSTimeout  = 2 * time.Second
	defaultMDNSTimeout = 500 * time.Millisecond
)

// dnsResolver queries one name server directly instead of going through the
// host's resolver configuration
type dnsResolver struct {
	server string
	client *dns.Client
}

// NewDNSResolver returns a resolver that sends A and AAAA queries to server
// ("host" or "host:port", port 53 by default).
func NewDNSResolver(server string, timeout time.Duration) AddressResolver {
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(strings.Trim(server, "[]"), "53")
	}
	return &dnsResolver{
		server: server,
		client: &dns.Client{Net: "udp", Timeout: timeout},
	}
}

func (r *dnsResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{ip.String()}, nil
	}
	if host == "" {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return exchangeHost(ctx, r.client, r.server, host)
}

// mdnsResolver answers .local names with a one-shot multicast DNS query and
// hands every other name to next
type mdnsResolver struct {
	next    AddressResolver
	timeout time.Duration
	group   string
}

// NewMDNSResolver wraps next so that names under .local are resolved over
// multicast DNS.
func NewMDNSResolver(next AddressResolver, timeout time.Duration) AddressResolver {
	if timeout <= 0 {
		timeout = defaultMDNSTimeout
	}
	return &mdnsResolver{
		next:    next,
		timeout: timeout,
		group:   mdnsIPv4Addr,
	}
}

func (r *mdnsResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if !isLocalName(host) {
		return r.next.LookupHost(ctx, host)
	}
	return r.query(ctx, host)
}

// query multicasts A and AAAA questions for host and collects the answers.
// The socket is left unconnected: responders reply from their own unicast
// address, which a socket connected to the group would drop.
func (r *mdnsResolver) query(ctx context.Context, host string) ([]string, error) {
	group, err := net.ResolveUDPAddr("udp4", r.group)
	if err != nil {
		return nil, fmt.Errorf("mdns group %s: %w", r.group, err)
	}
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("mdns listen: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(r.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	fqdn := dns.Fqdn(host)
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := &dns.Msg{}
		msg.SetQuestion(fqdn, qtype)
		msg.RecursionDesired = false
		// Ask for a unicast reply (QU bit)
		msg.Question[0].Qclass |= 1 << 15
		packed, err := msg.Pack()
		if err != nil {
			return nil, fmt.Errorf("mdns pack: %w", err)
		}
		if _, err := conn.WriteTo(packed, group); err != nil {
			return nil, fmt.Errorf("mdns send to %s: %w", r.group, err)
		}
	}

	var v4, v6 []string
	answered := map[uint16]bool{}
	buf := make([]byte, 9000)
	for !answered[dns.TypeA] || !answered[dns.TypeAAAA] {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			break
		}
		resp := &dns.Msg{}
		if resp.Unpack(buf[:n]) != nil || !resp.Response {
			continue
		}
		for _, q := range resp.Question {
			if strings.EqualFold(q.Name, fqdn) {
				answered[q.Qtype] = true
			}
		}
		for _, answer := range resp.Answer {
			if !strings.EqualFold(answer.Header().Name, fqdn) {
				continue
			}
			switch rr := answer.(type) {
			case *dns.A:
				v4 = appendUnique(v4, rr.A.String())
				answered[dns.TypeA] = true
			case *dns.AAAA:
				v6 = appendUnique(v6, rr.AAAA.String())
				answered[dns.TypeAAAA] = true
			}
		}
	}

	if addrs := append(v4, v6...); len(addrs) > 0 {
		return addrs, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, &net.DNSError{Err: "no mdns response", Name: host, Server: r.group, IsNotFound: true, IsTimeout: true}
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func isLocalName(host string) bool {
	return strings.HasSuffix(strings.ToLower(dns.Fqdn(host)), ".local.")
}

// exchangeHost asks server for the A and AAAA records of host
func exchangeHost(ctx context.Context, client *dns.Client, server, host string) ([]string, error) {
	fqdn := dns.Fqdn(host)

	var addrs []string
	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := &dns.Msg{}
		msg.SetQuestion(fqdn, qtype)

		resp, _, err := client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = fmt.Errorf("dns exchange with %s: %w", server, err)
			continue
		}
		if resp == nil {
			lastErr = fmt.Errorf("dns: empty response from %s", server)
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = &net.DNSError{
				Err:        strings.ToLower(dns.RcodeToString[resp.Rcode]),
				Name:       host,
				Server:     server,
				IsNotFound: resp.Rcode == dns.RcodeNameError,
			}
			continue
		}

		for _, answer := range resp.Answer {
			switch rr := answer.(type) {
			case *dns.A:
				addrs = append(addrs, rr.A.String())
			case *dns.AAAA:
				addrs = append(addrs, rr.AAAA.String())
			}
		}
	}

	if len(addrs) > 0 {
		return addrs, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &net.DNSError{Err: "no such host", Name: host, Server: server, IsNotFound: true}
}
