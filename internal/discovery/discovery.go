// Package discovery implements the tiny UDP protocol used to find kiosks on
// the LAN. A kiosk answers the broadcast probe with its hostname and the
// operator's comment, which is often the only way to locate a machine that
// got its address from someone else's DHCP server.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// Command is the probe payload; replies start with "Command: ".
	Command = "KIOSKFORGE?"

	// Port is the UDP port responders listen on.
	Port = 17788
)

// Kiosk is one discovered machine.
type Kiosk struct {
	Address  string
	Hostname string
	Comment  string
}

// Responder answers discovery probes with the kiosk's identity.
type Responder struct {
	Log      *zap.Logger
	Hostname string
	Comment  string

	conn net.PacketConn
}

// Listen binds the responder. addr is normally ":17788"; tests bind an
// ephemeral loopback port.
func (r *Responder) Listen(addr string) error {
	conn, err := net.ListenPacket("udp4", addr)
	if err != nil {
		return fmt.Errorf("discovery listen: %w", err)
	}
	r.conn = conn
	return nil
}

// Addr returns the bound address, valid after Listen.
func (r *Responder) Addr() net.Addr { return r.conn.LocalAddr() }

// Serve answers probes until the context is cancelled or the listener closes.
func (r *Responder) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		r.conn.Close()
	}()

	reply := []byte(fmt.Sprintf("%s: %s|%s", Command, r.Hostname, r.Comment))
	buf := make([]byte, 1024)
	for {
		n, remote, err := r.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if string(buf[:n]) != Command {
			r.Log.Debug("ignoring invalid discovery packet",
				zap.String("remote", remote.String()))
			continue
		}
		if _, err := r.conn.WriteTo(reply, remote); err != nil {
			r.Log.Warn("discovery reply failed",
				zap.String("remote", remote.String()), zap.Error(err))
		}
	}
}

// Discover broadcasts a probe and collects replies for the given window.
// Replies from outside our own /24 are ignored, like any packet that does not
// carry the expected prefix.
func Discover(ctx context.Context, window time.Duration) ([]Kiosk, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	broadcast := &net.UDPAddr{IP: net.IPv4bcast, Port: Port}
	if _, err := conn.WriteTo([]byte(Command), broadcast); err != nil {
		return nil, fmt.Errorf("discovery broadcast: %w", err)
	}
	return collect(ctx, conn, window, localSubnet())
}

// collect reads replies from conn until the window closes. Factored out so
// tests can drive it against a loopback responder without broadcasting.
func collect(ctx context.Context, conn net.PacketConn, window time.Duration, subnet string) ([]Kiosk, error) {
	deadline := time.Now().Add(window)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)

	seen := make(map[string]Kiosk)
	buf := make([]byte, 1024)
	for {
		n, remote, err := conn.ReadFrom(buf)
		if err != nil {
			break // window closed
		}
		address := remote.(*net.UDPAddr).IP.String()
		if subnet != "" && !strings.HasPrefix(address, subnet) {
			continue
		}
		payload, ok := strings.CutPrefix(string(buf[:n]), Command+": ")
		if !ok {
			continue
		}
		hostname, comment, _ := strings.Cut(payload, "|")
		seen[address] = Kiosk{Address: address, Hostname: hostname, Comment: comment}
	}

	kiosks := make([]Kiosk, 0, len(seen))
	for _, k := range seen {
		kiosks = append(kiosks, k)
	}
	return kiosks, nil
}

// localSubnet returns the "a.b.c." prefix of the first LAN address, or ""
// when it cannot be determined.
func localSubnet() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			parts := strings.Split(v4.String(), ".")
			return strings.Join(parts[:3], ".") + "."
		}
	}
	return ""
}
