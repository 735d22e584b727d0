// Package netcheck answers one question: is this machine on the internet?
// DNS is deliberately avoided; a kiosk behind a broken resolver still counts
// as online for upgrade purposes.
package netcheck

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Prober reports internet reachability. Injected into the maintenance run so
// offline scenarios are testable.
type Prober interface {
	Online(ctx context.Context) bool
}

// HTTPProber probes a well-known anycast address with a HEAD request.
type HTTPProber struct {
	URL     string
	Timeout time.Duration
}

func NewProber() *HTTPProber {
	return &HTTPProber{URL: "https://8.8.8.8/", Timeout: 5 * time.Second}
}

func (p *HTTPProber) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false
	}
	// The probe hits an IP directly; certificate validation is skipped
	// because any response at all proves connectivity.
	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// LanIP returns the first non-loopback IPv4 address, or "(unknown)". Shown
// during first boot so the operator can SSH in without access to the router.
func LanIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "(unknown)"
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return "(unknown)"
}
