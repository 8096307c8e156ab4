package interactive

import (
	"bytes"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/codec"
	"github.com/smartcfg/smartcfg-go/pkg/credential"
	"github.com/smartcfg/smartcfg-go/pkg/provision"
	"github.com/smartcfg/smartcfg-go/pkg/station"
	"github.com/smartcfg/smartcfg-go/pkg/transport"
)

type fixedStatus provision.Status

func (f fixedStatus) Status() provision.Status { return provision.Status(f) }

func newTestConsole(t *testing.T) (*Console, *transport.Characteristic, *bytes.Buffer) {
	t.Helper()
	link := transport.NewCharacteristic(transport.CharacteristicConfig{})
	t.Cleanup(func() { link.Close() })

	var out bytes.Buffer
	c := newConsole(Options{
		Link:   link,
		Intake: credential.NewIntake(codec.NewDefaultObfuscator(), credential.IntegrityTrailer),
	}, &out)
	return c, link, &out
}

func TestConsoleSendWritesEncodedCredentials(t *testing.T) {
	c, link, out := newTestConsole(t)

	c.exec("send homenet secret123")
	if !strings.Contains(out.String(), "No client attached") {
		t.Errorf("send without client: output = %q", out.String())
	}

	c.exec("attach phone")
	if !link.Attached() {
		t.Fatal("Attached() = false after attach")
	}

	c.exec("send homenet secret 123")
	intake := credential.NewIntake(codec.NewDefaultObfuscator(), credential.IntegrityTrailer)
	cred, err := intake.Accept(link.LatestPayload())
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if cred.Name != "homenet" || cred.Secret != "secret 123" {
		t.Errorf("credential = %+v, want homenet/secret 123", cred)
	}
}

func TestConsoleCorruptFailsIntegrity(t *testing.T) {
	c, link, _ := newTestConsole(t)
	c.exec("attach")
	c.exec("corrupt homenet secret123")

	intake := credential.NewIntake(codec.NewDefaultObfuscator(), credential.IntegrityTrailer)
	if _, err := intake.Accept(link.LatestPayload()); !credential.IsIntegrityError(err) {
		t.Errorf("Accept() error = %v, want integrity error", err)
	}
}

func TestConsoleRaw(t *testing.T) {
	c, link, out := newTestConsole(t)
	c.exec("attach")

	c.exec("raw zz")
	if !strings.Contains(out.String(), "Invalid hex") {
		t.Errorf("output = %q, want invalid hex message", out.String())
	}

	c.exec("raw 69676f")
	if got := link.LatestPayload(); !bytes.Equal(got, []byte{0x69, 0x67, 0x6f}) {
		t.Errorf("LatestPayload() = %x, want 69676f", got)
	}
}

func TestConsoleDetach(t *testing.T) {
	c, link, out := newTestConsole(t)

	c.exec("detach")
	if !strings.Contains(out.String(), "Error") {
		t.Errorf("detach without client: output = %q", out.String())
	}

	c.exec("attach")
	c.exec("detach")
	if link.Attached() {
		t.Error("Attached() = true after detach")
	}
}

func TestConsoleStationCommands(t *testing.T) {
	c, _, out := newTestConsole(t)

	c.exec("allow homenet pw")
	if !strings.Contains(out.String(), "Station not available") {
		t.Errorf("output = %q", out.String())
	}

	sim := station.NewSimulator(station.SimulatorConfig{
		Networks: map[string]string{},
		Addr:     netip.MustParseAddr("192.168.1.50"),
	})
	defer sim.Close()
	c.Bind(nil, sim)

	c.exec("allow homenet pw")
	if err := sim.Join("homenet", "pw"); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for sim.Status() != station.StatusConnected && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sim.Status() != station.StatusConnected {
		t.Fatalf("station status = %v, want CONNECTED", sim.Status())
	}

	c.exec("drop")
	if sim.Status() != station.StatusDisconnected {
		t.Errorf("station status = %v after drop, want DISCONNECTED", sim.Status())
	}
}

func TestConsoleStatus(t *testing.T) {
	c, _, out := newTestConsole(t)
	c.Bind(fixedStatus{
		State:           provision.StateIdle,
		Provisioned:     true,
		Network:         "homenet",
		Addr:            netip.MustParseAddr("192.168.1.50"),
		UplinkConnected: true,
		Accepted:        1,
		Rejected:        2,
		Provisions:      1,
	}, nil)

	c.exec("status")
	for _, want := range []string{"IDLE", "homenet at 192.168.1.50", "connected", "1 accepted, 2 rejected", "trailer"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("status output missing %q:\n%s", want, out.String())
		}
	}
}

func TestConsoleExec(t *testing.T) {
	c, _, out := newTestConsole(t)

	if c.exec("   ") {
		t.Error("blank line should not quit")
	}
	if c.exec("bogus") {
		t.Error("unknown command should not quit")
	}
	if !strings.Contains(out.String(), "Unknown command: bogus") {
		t.Errorf("output = %q", out.String())
	}
	for _, cmd := range []string{"quit", "exit", "q", "QUIT"} {
		if !c.exec(cmd) {
			t.Errorf("exec(%q) = false, want true", cmd)
		}
	}
}
