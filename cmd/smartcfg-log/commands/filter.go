package commands

import (
	"fmt"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/log"
)

// FilterOptions specifies filtering criteria for the filter command.
type FilterOptions struct {
	Output    string
	SessionID string
	DeviceID  string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
}

// build converts the string options into a reader filter.
func (o FilterOptions) build() (log.Filter, error) {
	filter := log.Filter{
		SessionID: o.SessionID,
		DeviceID:  o.DeviceID,
	}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	if o.Layer != "" {
		l, err := ParseLayerFlag(o.Layer)
		if err != nil {
			return filter, err
		}
		filter.Layer = &l
	}
	if o.Direction != "" {
		d, err := ParseDirectionFlag(o.Direction)
		if err != nil {
			return filter, err
		}
		filter.Direction = &d
	}
	if o.Category != "" {
		c, err := ParseCategoryFlag(o.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	return filter, nil
}

// RunFilter filters the log file and writes matching events to a new file.
// It returns the number of events written.
func RunFilter(path string, opts FilterOptions) (int, error) {
	filter, err := opts.build()
	if err != nil {
		return 0, err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for event, err := range reader.All() {
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}
		logger.Log(event)
		count++
	}
	return count, nil
}
