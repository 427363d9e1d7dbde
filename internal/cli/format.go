package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// taskSpan returns the parsed start time and duration of t. ok is false
// when either time is not RFC 3339.
func taskSpan(t models.Task) (start time.Time, d time.Duration, ok bool) {
	start, err := time.Parse(time.RFC3339, t.StartTime)
	if err != nil {
		return time.Time{}, 0, false
	}
	end, err := time.Parse(time.RFC3339, t.EndTime)
	if err != nil {
		return time.Time{}, 0, false
	}
	return start, end.Sub(start), true
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		return "?"
	}
	return fmt.Sprintf("%dh%02d", int(d.Hours()), int(d.Minutes())%60)
}

func printTasks(w io.Writer, tasks []models.Task) {
	fmt.Fprintf(w, "%-14s %-25s %-6s %s\n", "ID", "START", "TIME", "DESCRIPTION")
	for _, t := range tasks {
		length := "-"
		if _, d, ok := taskSpan(t); ok {
			length = formatDuration(d)
		}
		fmt.Fprintf(w, "%-14s %-25s %-6s %s\n", t.ID, t.StartTime, length, t.Description)
	}
}
