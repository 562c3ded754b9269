// Package diagnostics receives data anomalies that must not interrupt rendering.
package diagnostics

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/anonto42/nano-midea/feedview/internal/metrics"
)

// Reporter is the sink for non-fatal anomalies
type Reporter interface {
	CaptureMessage(kind, message string, extra map[string]any)
}

// LogReporter writes anomalies to a logger and counts them
type LogReporter struct {
	logger  *log.Logger
	metrics *metrics.Metrics
}

func NewLogReporter(logger *log.Logger, m *metrics.Metrics) *LogReporter {
	if logger == nil {
		logger = log.Default()
	}
	return &LogReporter{logger: logger, metrics: m}
}

func (r *LogReporter) CaptureMessage(kind, message string, extra map[string]any) {
	r.metrics.Diagnostic(kind)
	r.logger.Printf("[diagnostics] %s: %s%s", kind, message, formatExtra(extra))
}

func formatExtra(extra map[string]any) string {
	if len(extra) == 0 {
		return ""
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, extra[k])
	}
	return b.String()
}

// Message is one captured anomaly
type Message struct {
	Kind    string
	Message string
	Extra   map[string]any
}

// Recorder keeps anomalies in memory; handy in tests
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) CaptureMessage(kind, message string, extra map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Kind: kind, Message: message, Extra: extra})
}

// Messages returns what was captured so far
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Discard drops every message
var Discard Reporter = discard{}

type discard struct{}

func (discard) CaptureMessage(string, string, map[string]any) {}
