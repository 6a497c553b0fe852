package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// ProgressCallback receives progress while a document is processed.
type ProgressCallback interface {
	// OnStart is called when processing begins with the total item count.
	OnStart(total int)

	// OnProgress is called after each processed item.
	OnProgress(current, total int)

	// OnComplete is called when processing is finished.
	OnComplete()
}

// NoOpProgressCallback implements ProgressCallback but does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)             {}
func (NoOpProgressCallback) OnProgress(current, total int) {}
func (NoOpProgressCallback) OnComplete()                   {}

// ConsoleProgressCallback prints coarse progress lines to a writer.
type ConsoleProgressCallback struct {
	writer         io.Writer
	prefix         string
	updateInterval time.Duration
	lastUpdate     time.Time
	startTime      time.Time
	mutex          sync.Mutex
}

// NewConsoleProgressCallback creates a console progress reporter.
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{
		writer:         writer,
		prefix:         prefix,
		updateInterval: 100 * time.Millisecond,
	}
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	_, _ = fmt.Fprintf(c.writer, "%s0/%d\n", c.prefix, total)
}

func (c *ConsoleProgressCallback) OnProgress(current, total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && current < total {
		return
	}
	c.lastUpdate = now

	percent := 0.0
	if total > 0 {
		percent = float64(current) / float64(total) * 100
	}
	_, _ = fmt.Fprintf(c.writer, "\r%s%d/%d (%.1f%%)", c.prefix, current, total, percent)
}

func (c *ConsoleProgressCallback) OnComplete() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elapsed := time.Since(c.startTime)
	_, _ = fmt.Fprintf(c.writer, "\n%scompleted in %v\n", c.prefix, elapsed.Round(time.Millisecond))
}

// LogProgressCallback logs progress updates through slog every N items.
type LogProgressCallback struct {
	logger   *slog.Logger
	interval int
	lastLog  int
}

// NewLogProgressCallback creates a log-based progress reporter.
func NewLogProgressCallback(logger *slog.Logger) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressCallback{logger: logger, interval: 10}
}

// WithInterval sets how frequently to log progress (every N items).
func (l *LogProgressCallback) WithInterval(interval int) *LogProgressCallback {
	if interval > 0 {
		l.interval = interval
	}
	return l
}

func (l *LogProgressCallback) OnStart(total int) {
	l.lastLog = 0
	l.logger.Info("processing started", "total", total)
}

func (l *LogProgressCallback) OnProgress(current, total int) {
	if current-l.lastLog >= l.interval || current == total {
		l.lastLog = current
		l.logger.Info("processing progress", "current", current, "total", total)
	}
}

func (l *LogProgressCallback) OnComplete() {
	l.logger.Info("processing completed")
}

// MultiProgressCallback fans progress out to several callbacks.
type MultiProgressCallback struct {
	callbacks []ProgressCallback
}

// NewMultiProgressCallback creates a callback reporting to all the given
// callbacks.
func NewMultiProgressCallback(callbacks ...ProgressCallback) *MultiProgressCallback {
	return &MultiProgressCallback{callbacks: callbacks}
}

func (m *MultiProgressCallback) OnStart(total int) {
	for _, cb := range m.callbacks {
		cb.OnStart(total)
	}
}

func (m *MultiProgressCallback) OnProgress(current, total int) {
	for _, cb := range m.callbacks {
		cb.OnProgress(current, total)
	}
}

func (m *MultiProgressCallback) OnComplete() {
	for _, cb := range m.callbacks {
		cb.OnComplete()
	}
}
