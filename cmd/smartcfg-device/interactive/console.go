// Package interactive provides the interactive console for smartcfg-device.
//
// The console plays the companion app against the in-memory link: it attaches,
// writes encoded credentials and detaches, and shows the controller status.
package interactive

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/smartcfg/smartcfg-go/pkg/credential"
	"github.com/smartcfg/smartcfg-go/pkg/provision"
	"github.com/smartcfg/smartcfg-go/pkg/station"
	"github.com/smartcfg/smartcfg-go/pkg/transport"
)

// Link is the client side of the in-memory link.
type Link interface {
	Attach(remote string) (string, error)
	Detach() error
	Write(data []byte) error
	Attached() bool
}

// StatusSource reports the controller status.
type StatusSource interface {
	Status() provision.Status
}

// Station is the simulated station controlled from the console.
type Station interface {
	AddNetwork(name, secret string)
	Drop()
	Status() station.Status
	Network() string
}

// Options configures a Console.
type Options struct {
	Link   Link
	Intake *credential.Intake
}

// Console handles interactive mode for smartcfg-device.
type Console struct {
	opts Options
	out  io.Writer
	rl   *readline.Instance

	mu      sync.RWMutex
	status  StatusSource
	station Station

	closeOnce sync.Once
}

// New creates a console on the terminal.
func New(opts Options) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "smartcfg> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(opts, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(opts Options, out io.Writer) *Console {
	return &Console{opts: opts, out: out}
}

// Bind connects the console to the running controller and station.
func (c *Console) Bind(status StatusSource, st Station) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.station = st
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Close restores the terminal.
func (c *Console) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.rl != nil {
			err = c.rl.Close()
		}
	})
	return err
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if quit := c.exec(line); quit {
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
	}
}

// exec runs one command line. It returns true when the console should exit.
func (c *Console) exec(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "attach", "a":
		c.cmdAttach(args)

	case "detach", "d":
		c.cmdDetach()

	case "send", "s":
		c.cmdSend(args, false)

	case "corrupt":
		c.cmdSend(args, true)

	case "raw":
		c.cmdRaw(args)

	case "allow":
		c.cmdAllow(args)

	case "drop":
		c.cmdDrop()

	case "status", "st":
		c.cmdStatus()

	case "quit", "exit", "q":
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
SmartConfig Device Commands:
  Link:
    attach [remote]         - Attach a client to the characteristic
    detach                  - Detach the client
    send <name> <secret>    - Write encoded credentials
    corrupt <name> <secret> - Write credentials with a broken checksum
    raw <hex>               - Write raw bytes

  Station:
    allow <name> <secret>   - Accept a network in the simulated station
    drop                    - Drop the current association

  General:
    status                  - Show provisioning status
    help                    - Show this help
    quit                    - Exit`)
}

func (c *Console) cmdAttach(args []string) {
	remote := "console"
	if len(args) > 0 {
		remote = args[0]
	}
	session, err := c.opts.Link.Attach(remote)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Attached (session %s)\n", session)
}

func (c *Console) cmdDetach() {
	if err := c.opts.Link.Detach(); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Detached")
}

func (c *Console) cmdSend(args []string, corrupt bool) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: send <name> <secret>")
		return
	}
	cred := credential.Credential{Name: args[0], Secret: strings.Join(args[1:], " ")}
	payload := c.opts.Intake.Encode(cred)
	if corrupt {
		payload[len(payload)-1] ^= 0xFF
	}
	c.write(payload)
}

func (c *Console) cmdRaw(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: raw <hex>")
		return
	}
	payload, err := hex.DecodeString(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Invalid hex: %v\n", err)
		return
	}
	c.write(payload)
}

func (c *Console) write(payload []byte) {
	if !c.opts.Link.Attached() {
		fmt.Fprintln(c.out, "No client attached (use 'attach' first)")
		return
	}
	if err := c.opts.Link.Write(payload); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Wrote %d bytes\n", len(payload))
}

func (c *Console) cmdAllow(args []string) {
	st := c.boundStation()
	if st == nil {
		fmt.Fprintln(c.out, "Station not available")
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: allow <name> <secret>")
		return
	}
	st.AddNetwork(args[0], strings.Join(args[1:], " "))
	fmt.Fprintf(c.out, "Network %q accepted\n", args[0])
}

func (c *Console) cmdDrop() {
	st := c.boundStation()
	if st == nil {
		fmt.Fprintln(c.out, "Station not available")
		return
	}
	st.Drop()
	fmt.Fprintln(c.out, "Association dropped")
}

func (c *Console) cmdStatus() {
	c.mu.RLock()
	src, st := c.status, c.station
	c.mu.RUnlock()

	fmt.Fprintf(c.out, "Link:      %s\n", attachedText(c.opts.Link.Attached()))
	fmt.Fprintf(c.out, "Integrity: %s\n", c.opts.Intake.Mode())

	if st != nil {
		fmt.Fprintf(c.out, "Station:   %s", st.Status())
		if name := st.Network(); name != "" {
			fmt.Fprintf(c.out, " (%s)", name)
		}
		fmt.Fprintln(c.out)
	}

	if src == nil {
		return
	}
	s := src.Status()
	fmt.Fprintf(c.out, "State:     %s (join %s)\n", s.State, s.JoinState)
	if s.Provisioned {
		fmt.Fprintf(c.out, "Network:   %s at %s\n", s.Network, s.Addr)
	}
	fmt.Fprintf(c.out, "Uplink:    %s\n", connectedText(s.UplinkConnected))
	fmt.Fprintf(c.out, "Payloads:  %d accepted, %d rejected\n", s.Accepted, s.Rejected)
	fmt.Fprintf(c.out, "Cycles:    %d provisioned, %d teardowns\n", s.Provisions, s.Teardowns)
	if !s.LastActivity.IsZero() {
		fmt.Fprintf(c.out, "Activity:  %s ago\n", time.Since(s.LastActivity).Round(time.Second))
	}
}

func (c *Console) boundStation() Station {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.station
}

func attachedText(b bool) string {
	if b {
		return "attached"
	}
	return "idle"
}

func connectedText(b bool) string {
	if b {
		return "connected"
	}
	return "disconnected"
}

var _ Link = (*transport.Characteristic)(nil)
