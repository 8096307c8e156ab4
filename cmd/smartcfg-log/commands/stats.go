package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	PayloadResults    map[log.PayloadResult]int
	JoinOutcomes      map[string]int
	ConnectAttempts   int
	ConnectFailures   int
	Publishes         int
	Teardowns         int
	Sessions          map[string]*SessionStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single session.
type SessionStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	RemoteAddr string
	Networks   []string
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		PayloadResults:    make(map[log.PayloadResult]int),
		JoinOutcomes:      make(map[string]int),
		Sessions:          make(map[string]*SessionStats),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	switch {
	case event.Payload != nil:
		// Raw link writes carry no result; count only intake outcomes.
		if event.Layer == log.LayerIntake {
			s.PayloadResults[event.Payload.Result]++
		}
	case event.Join != nil:
		s.JoinOutcomes[event.Join.Outcome]++
	case event.Uplink != nil:
		switch event.Uplink.Action {
		case log.UplinkConnect:
			s.ConnectAttempts++
			if !event.Uplink.Success {
				s.ConnectFailures++
			}
		case log.UplinkPublish:
			if event.Uplink.Success {
				s.Publishes++
			}
		case log.UplinkDisconnect:
			s.Teardowns++
		}
	case event.Error != nil:
		s.Errors++
	}

	if event.SessionID == "" {
		return
	}
	sess, ok := s.Sessions[event.SessionID]
	if !ok {
		sess = &SessionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Sessions[event.SessionID] = sess
	}
	sess.Events++
	if event.Timestamp.After(sess.LastSeen) {
		sess.LastSeen = event.Timestamp
	}
	if event.RemoteAddr != "" && sess.RemoteAddr == "" {
		sess.RemoteAddr = event.RemoteAddr
	}
	if event.Join != nil && event.Join.Attempt > len(sess.Networks) {
		sess.Networks = append(sess.Networks, event.Join.Network)
	}
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for event, err := range reader.All() {
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== SmartConfig Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerLink, log.LayerIntake, log.LayerStation, log.LayerUplink, log.LayerController} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryPayload, log.CategoryState, log.CategoryJoin, log.CategoryUplink, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut, log.DirectionNone} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.PayloadResults) > 0 {
		fmt.Fprintln(w, "Payloads:")
		for _, r := range []log.PayloadResult{log.PayloadAccepted, log.PayloadIntegrityRejected, log.PayloadFormatRejected, log.PayloadEmpty} {
			if count := stats.PayloadResults[r]; count > 0 {
				fmt.Fprintf(w, "  %-20s %d\n", r.String()+":", count)
			}
		}
		fmt.Fprintln(w)
	}

	if len(stats.JoinOutcomes) > 0 {
		fmt.Fprintln(w, "Joins:")
		outcomes := make([]string, 0, len(stats.JoinOutcomes))
		for o := range stats.JoinOutcomes {
			outcomes = append(outcomes, o)
		}
		sort.Strings(outcomes)
		for _, o := range outcomes {
			fmt.Fprintf(w, "  %-20s %d\n", o+":", stats.JoinOutcomes[o])
		}
		fmt.Fprintln(w)
	}

	if stats.ConnectAttempts > 0 || stats.Teardowns > 0 {
		fmt.Fprintln(w, "Uplink:")
		fmt.Fprintf(w, "  Connects:  %d (%d failed)\n", stats.ConnectAttempts, stats.ConnectFailures)
		fmt.Fprintf(w, "  Publishes: %d\n", stats.Publishes)
		fmt.Fprintf(w, "  Teardowns: %d\n", stats.Teardowns)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenSessionID(s.id), s.stats.Events, duration)
			if s.stats.RemoteAddr != "" {
				fmt.Fprintf(w, "           Remote: %s\n", s.stats.RemoteAddr)
			}
			if len(s.stats.Networks) > 0 {
				fmt.Fprintf(w, "           Networks: %v\n", s.stats.Networks)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
