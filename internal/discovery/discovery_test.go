package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

func startResponder(t *testing.T, hostname, comment string) net.Addr {
	t.Helper()
	r := &Responder{Log: zap.NewNop(), Hostname: hostname, Comment: comment}
	if err := r.Listen("127.0.0.1:0"); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go r.Serve(ctx)
	return r.Addr()
}

func TestResponderAnswersProbe(t *testing.T) {
	addr := startResponder(t, "kiosk-0042", "lobby screen")

	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.WriteTo([]byte(Command), addr); err != nil {
		t.Fatal(err)
	}
	kiosks, err := collect(context.Background(), conn, time.Second, "127.0.0.")
	if err != nil {
		t.Fatal(err)
	}
	if len(kiosks) != 1 {
		t.Fatalf("found %d kiosks, want 1", len(kiosks))
	}
	if kiosks[0].Hostname != "kiosk-0042" || kiosks[0].Comment != "lobby screen" {
		t.Fatalf("unexpected reply: %+v", kiosks[0])
	}
}

func TestResponderIgnoresMalformedProbe(t *testing.T) {
	addr := startResponder(t, "kiosk-0042", "")

	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.WriteTo([]byte("HELLO?"), addr); err != nil {
		t.Fatal(err)
	}
	kiosks, err := collect(context.Background(), conn, 200*time.Millisecond, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(kiosks) != 0 {
		t.Fatalf("responder answered a malformed probe: %+v", kiosks)
	}
}

func TestCollectFiltersForeignSubnets(t *testing.T) {
	addr := startResponder(t, "kiosk-0042", "")

	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.WriteTo([]byte(Command), addr); err != nil {
		t.Fatal(err)
	}
	kiosks, err := collect(context.Background(), conn, 200*time.Millisecond, "10.1.2.")
	if err != nil {
		t.Fatal(err)
	}
	if len(kiosks) != 0 {
		t.Fatalf("reply from outside the subnet accepted: %+v", kiosks)
	}
}
