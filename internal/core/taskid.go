package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskIDGenerator produces the ID of a new task.
type TaskIDGenerator interface {
	NextTaskID(ctx context.Context, startTime string) (string, error)
}

// sequentialIDGenerator builds IDs of the form YYYYMMDDnnn: the task's
// start date followed by a counter one above the highest existing counter
// for that date.
type sequentialIDGenerator struct {
	lister   TaskIDLister
	padWidth int
}

// NewSequentialIDGenerator creates a date-prefixed TaskIDGenerator.
// padWidth controls the zero-padding of the counter (3 gives 20260106001).
func NewSequentialIDGenerator(lister TaskIDLister, padWidth int) TaskIDGenerator {
	if padWidth <= 0 {
		padWidth = 3
	}
	return &sequentialIDGenerator{lister: lister, padWidth: padWidth}
}

// NextTaskID uses the calendar date of startTime in its own offset.
func (g *sequentialIDGenerator) NextTaskID(ctx context.Context, startTime string) (string, error) {
	start, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return "", fmt.Errorf("parsing start time %q: %w", startTime, err)
	}
	prefix := start.Format("20060102")

	ids, err := g.lister.IDsWithPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("listing task IDs for %s: %w", prefix, err)
	}

	highest := 0
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return fmt.Sprintf("%s%0*d", prefix, g.padWidth, highest+1), nil
}

type randomIDGenerator struct{}

// NewRandomIDGenerator creates a TaskIDGenerator that returns UUIDv4 strings.
func NewRandomIDGenerator() TaskIDGenerator {
	return randomIDGenerator{}
}

func (randomIDGenerator) NextTaskID(context.Context, string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generating task ID: %w", err)
	}
	return id.String(), nil
}

// timestampLayout is fixed-width so that lexical order of UTC stamps is
// chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// stampClock hands out strictly increasing creation timestamps.
type stampClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newStampClock(now func() time.Time) *stampClock {
	if now == nil {
		now = time.Now
	}
	return &stampClock{now: now}
}

func (c *stampClock) Stamp() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t.Format(timestampLayout)
}
