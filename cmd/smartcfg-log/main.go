// Command smartcfg-log is a tool for viewing and analyzing smartcfg trace files.
//
// Trace files are written by smartcfg-device when the trace output is set
// in its configuration.
//
// Usage:
//
//	smartcfg-log <command> [flags] <file.plog>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	smartcfg-log view device.plog
//
//	# View only join attempts
//	smartcfg-log view --category join device.plog
//
//	# Export to CSV
//	smartcfg-log export --format csv -o device.csv device.plog
//
//	# Keep one provisioning cycle
//	smartcfg-log filter --session-id 3f2a9c1b -o cycle.plog device.plog
//
//	# Show statistics
//	smartcfg-log stats device.plog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/smartcfg/smartcfg-go/cmd/smartcfg-log/commands"
	"github.com/smartcfg/smartcfg-go/pkg/log"
)

const usage = `smartcfg-log - SmartConfig Trace Analyzer

Usage:
  smartcfg-log <command> [flags] <file.plog>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "smartcfg-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func newFlagSet(name, summary, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "smartcfg-log %s - %s\n\nUsage:\n  smartcfg-log %s\n\nFlags:\n", name, summary, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

// pathArg returns the single positional argument or exits.
func pathArg(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View trace file in human-readable format", "view [flags] <file.plog>")
	session := fs.String("session-id", "", "Filter by session ID prefix")
	layer := fs.String("layer", "", "Filter by layer (link, intake, station, uplink, controller)")
	direction := fs.String("direction", "", "Filter by direction (in, out, local)")
	category := fs.String("category", "", "Filter by category (payload, state, join, uplink, error)")
	path := pathArg(fs, args)

	filter := log.Filter{SessionID: *session}
	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fail(err)
		}
		filter.Layer = &l
	}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fail(err)
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export trace file to JSONL or CSV format", "export [flags] <file.plog>")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := pathArg(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter trace file and write to new file", "filter [flags] <file.plog>")
	output := fs.String("o", "", "Output file (required)")
	sessionID := fs.String("session-id", "", "Filter by session ID")
	deviceID := fs.String("device-id", "", "Filter by device ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (link, intake, station, uplink, controller)")
	direction := fs.String("direction", "", "Filter by direction (in, out, local)")
	category := fs.String("category", "", "Filter by category (payload, state, join, uplink, error)")
	path := pathArg(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	count, err := commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		SessionID: *sessionID,
		DeviceID:  *deviceID,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Direction: *direction,
		Category:  *category,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", count, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the trace file", "stats <file.plog>")
	path := pathArg(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
