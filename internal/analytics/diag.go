package analytics

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tradelens/internal/models"
)

// DiagKind identifies a class of data-quality event raised while matching.
type DiagKind string

const (
	// DiagUnmatched marks an instrument with a single fill in its day,
	// which can never form a round trip.
	DiagUnmatched DiagKind = "unmatched"
	// DiagOverselling marks a sell whose quantity exceeded the open long
	// position. The excess quantity is dropped, not converted to a short.
	DiagOverselling DiagKind = "overselling"
	// DiagUnclosed marks a residual position left open at the end of a day.
	DiagUnclosed DiagKind = "unclosed"
)

// Diagnostic describes one data-quality event. Quantity carries the affected
// amount: the lone fill's size for unmatched, the dropped excess for
// overselling, and the signed residual (negative for shorts) for unclosed.
type Diagnostic struct {
	Kind     DiagKind
	Symbol   string
	Date     time.Time
	Side     models.Side
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DiagUnmatched:
		return fmt.Sprintf("unmatched trade for %s: %s %s at %s", d.Symbol, d.Side, d.Quantity, d.Price)
	case DiagOverselling:
		return fmt.Sprintf("%s: sell quantity exceeds open position, dropping %s", d.Symbol, d.Quantity)
	case DiagUnclosed:
		direction := "long"
		if d.Quantity.IsNegative() {
			direction = "short"
		}
		return fmt.Sprintf("%s: %s position of %s left open at end of day", d.Symbol, direction, d.Quantity.Abs())
	}
	return string(d.Kind)
}

// Sink receives diagnostics from the matching engine. Implementations must be
// safe for concurrent use: when the analyzer runs with multiple workers,
// events arrive from several goroutines at once.
type Sink interface {
	Emit(d Diagnostic)
}

// NopSink discards every diagnostic.
type NopSink struct{}

func (NopSink) Emit(Diagnostic) {}

// CollectorSink retains every diagnostic it receives, for callers that
// present warnings after a run completes and for tests.
type CollectorSink struct {
	mu     sync.Mutex
	events []Diagnostic
}

func (c *CollectorSink) Emit(d Diagnostic) {
	c.mu.Lock()
	c.events = append(c.events, d)
	c.mu.Unlock()
}

// Events returns the collected diagnostics in arrival order.
func (c *CollectorSink) Events() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.events))
	copy(out, c.events)
	return out
}

// Count reports how many diagnostics of the given kind were collected.
func (c *CollectorSink) Count(kind DiagKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.events {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// LogSink forwards diagnostics to a zerolog logger at warn level.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Emit(d Diagnostic) {
	s.Logger.Warn().
		Str("kind", string(d.Kind)).
		Str("symbol", d.Symbol).
		Str("date", d.Date.Format("2006-01-02")).
		Msg(d.String())
}
