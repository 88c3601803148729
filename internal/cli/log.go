package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger writing to w at level, with
// centisecond timestamps ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress counts the items of a batch as they finish and logs one summary
// line for the batch, e.g. "Routed 2 of 3 (12ms) failed=1".
type progress struct {
	logger *log.Logger
	verb   string
	total  int
	ok     int
	failed int
	start  time.Time
}

// newProgress starts timing a batch of total items now.
func newProgress(l *log.Logger, verb string, total int) *progress {
	return &progress{logger: l, verb: verb, total: total, start: time.Now()}
}

// succeed records a finished item.
func (p *progress) succeed() {
	p.ok++
	p.logger.Debug("item done", "n", p.ok+p.failed, "of", p.total)
}

// fail records an item that failed with err.
func (p *progress) fail(err error) {
	p.failed++
	p.logger.Debug("item failed", "n", p.ok+p.failed, "of", p.total, "err", err)
}

// done logs the summary. Items never reported count as neither.
func (p *progress) done() {
	msg := fmt.Sprintf("%s %d of %d (%s)", p.verb, p.ok, p.total, time.Since(p.start).Round(time.Millisecond))
	if p.failed > 0 {
		p.logger.Warn(msg, "failed", p.failed)
		return
	}
	p.logger.Info(msg)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() when a command runs without one (as in tests).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
