package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultImportOffset is the UTC offset assumed for day-log times.
const DefaultImportOffset = "-03:00"

// midnightGapMinutes is how far a time may go backwards within a day
// before it is read as belonging to the next day.
const midnightGapMinutes = 360

var (
	dayLineRe   = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	entryLineRe = regexp.MustCompile(`^(.*?)\s*(\d{1,2})h(\d{0,2})\s*(?:\+\d+)?\s*$`)
)

// DayLogEntry is one task parsed from a day log.
type DayLogEntry struct {
	Line        int
	Description string
	StartTime   string
	EndTime     string
}

// DayLogWarning describes a line that was skipped.
type DayLogWarning struct {
	Line   int
	Reason string
}

// ParseOffset parses a UTC offset such as "-03:00" into a fixed location.
func ParseOffset(offset string) (*time.Location, error) {
	t, err := time.Parse("Z07:00", offset)
	if err != nil {
		return nil, fmt.Errorf("parsing offset %q: %w", offset, err)
	}
	_, seconds := t.Zone()
	return time.FixedZone(offset, seconds), nil
}

// ParseDayLog reads a day log: a DD/MM/YYYY line followed by entries of the
// form "+ Description  HHhMM", optionally followed by a "+N" marker that is
// ignored. Each entry ends where the next one starts; the last entry ends
// at its own start. Times that jump back by more than six hours move to
// the following day.
func ParseDayLog(r io.Reader, loc *time.Location) ([]DayLogEntry, []DayLogWarning, error) {
	var (
		entries  []DayLogEntry
		warnings []DayLogWarning
		day      time.Time
		haveDay  bool
		prevMins = -1
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := dayLineRe.FindStringSubmatch(line); m != nil {
			d, err := time.ParseInLocation("02/01/2006", line, loc)
			if err != nil {
				warnings = append(warnings, DayLogWarning{Line: lineNo, Reason: "invalid date " + line})
				haveDay = false
				continue
			}
			day = d
			haveDay = true
			prevMins = -1
			continue
		}

		if !strings.HasPrefix(line, "+ ") {
			continue
		}
		if !haveDay {
			warnings = append(warnings, DayLogWarning{Line: lineNo, Reason: "entry before any date line"})
			continue
		}

		m := entryLineRe.FindStringSubmatch(strings.TrimSpace(line[2:]))
		if m == nil || strings.TrimSpace(m[1]) == "" {
			warnings = append(warnings, DayLogWarning{Line: lineNo, Reason: "missing description or time"})
			continue
		}
		hour, _ := strconv.Atoi(m[2])
		minute := 0
		if m[3] != "" {
			minute, _ = strconv.Atoi(m[3])
		}
		if hour > 23 || minute > 59 {
			warnings = append(warnings, DayLogWarning{Line: lineNo, Reason: fmt.Sprintf("invalid time %sh%s", m[2], m[3])})
			continue
		}

		mins := hour*60 + minute
		if prevMins >= 0 && prevMins-mins > midnightGapMinutes {
			day = day.AddDate(0, 0, 1)
		}
		prevMins = mins

		start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
		entries = append(entries, DayLogEntry{
			Line:        lineNo,
			Description: strings.TrimSpace(m[1]),
			StartTime:   start.Format(time.RFC3339),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading day log: %w", err)
	}

	for i := range entries {
		if i+1 < len(entries) {
			entries[i].EndTime = entries[i+1].StartTime
		} else {
			entries[i].EndTime = entries[i].StartTime
		}
	}
	return entries, warnings, nil
}

// ImportDayLog adds entries through db in order and stops at the first
// failure. It returns how many entries were added.
func ImportDayLog(ctx context.Context, db RemoteDatabase, entries []DayLogEntry, logger EventLogger) (int, error) {
	added := 0
	for _, e := range entries {
		if err := db.AddTask(ctx, e.Description, e.StartTime, e.EndTime); err != nil {
			if logger != nil {
				_ = logger.LogEvent("task.imported", map[string]any{"count": added})
			}
			return added, fmt.Errorf("importing line %d: %w", e.Line, err)
		}
		added++
	}
	if logger != nil {
		_ = logger.LogEvent("task.imported", map[string]any{"count": added})
	}
	return added, nil
}
