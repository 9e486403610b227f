// Package metrics keeps process-wide counters and renders them in the
// Prometheus text exposition format.
package metrics

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type collector interface {
	collect(w *bufio.Writer)
}

var (
	exportsInFlight = &gauge{name: "docforms_exports_in_flight", help: "Exports currently being assembled."}
	exportsTotal    = newCounterVec("docforms_exports_total", "Finished exports by document type and outcome.", "type", "outcome")
	exportSeconds   = newHistogram("docforms_export_duration_seconds", "Time spent assembling and archiving one export.",
		0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5)
	summariesTotal = newCounterVec("docforms_summaries_total", "Summary requests by outcome.", "outcome")
	contactTotal   = newCounterVec("docforms_contact_submissions_total", "Contact form submissions by outcome.", "outcome")

	registry = []collector{exportsInFlight, exportsTotal, exportSeconds, summariesTotal, contactTotal}
)

// ExportStarted marks an export as in flight; call ExportFinished exactly once afterwards.
func ExportStarted() { exportsInFlight.add(1) }

// ExportFinished records the outcome and duration of an export.
func ExportFinished(docType string, err error, elapsed time.Duration) {
	exportsInFlight.add(-1)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	exportsTotal.inc(docType, outcome)
	exportSeconds.observe(elapsed.Seconds())
}

// Summary outcomes.
const (
	SummaryOK       = "ok"
	SummaryFallback = "fallback"
	SummaryRejected = "rejected"
)

// SummaryServed counts one summary request by outcome.
func SummaryServed(outcome string) { summariesTotal.inc(outcome) }

// ContactSubmitted counts one contact form submission; delivered is false
// when the notifier failed.
func ContactSubmitted(delivered bool) {
	if delivered {
		contactTotal.inc("delivered")
		return
	}
	contactTotal.inc("failed")
}

// Handler serves the exposition text.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		c.Status(http.StatusOK)
		_ = Write(c.Writer)
	}
}

// Write renders every registered metric to w.
func Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, c := range registry {
		c.collect(bw)
	}
	return bw.Flush()
}

func header(w *bufio.Writer, name, help, kind string) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

type gauge struct {
	name, help string
	mu         sync.Mutex
	v          int64
}

func (g *gauge) add(d int64) {
	g.mu.Lock()
	g.v += d
	g.mu.Unlock()
}

func (g *gauge) collect(w *bufio.Writer) {
	g.mu.Lock()
	v := g.v
	g.mu.Unlock()
	header(w, g.name, g.help, "gauge")
	fmt.Fprintf(w, "%s %d\n", g.name, v)
}

type counterVec struct {
	name, help string
	labels     []string
	mu         sync.Mutex
	values     map[string]uint64
}

func newCounterVec(name, help string, labels ...string) *counterVec {
	return &counterVec{name: name, help: help, labels: labels, values: make(map[string]uint64)}
}

// inc panics on a label count mismatch; every call site is static.
func (c *counterVec) inc(values ...string) {
	if len(values) != len(c.labels) {
		panic(fmt.Sprintf("metrics: %s wants %d labels, got %d", c.name, len(c.labels), len(values)))
	}
	key := strings.Join(values, "\xff")
	c.mu.Lock()
	c.values[key]++
	c.mu.Unlock()
}

func (c *counterVec) collect(w *bufio.Writer) {
	c.mu.Lock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	snapshot := make([]uint64, len(keys))
	for i, k := range keys {
		snapshot[i] = c.values[k]
	}
	c.mu.Unlock()

	header(w, c.name, c.help, "counter")
	for i, k := range keys {
		fmt.Fprintf(w, "%s{%s} %d\n", c.name, labelPairs(c.labels, strings.Split(k, "\xff")), snapshot[i])
	}
}

func labelPairs(names, values []string) string {
	pairs := make([]string, len(names))
	for i := range names {
		pairs[i] = names[i] + "=" + strconv.Quote(values[i])
	}
	return strings.Join(pairs, ",")
}

type histogram struct {
	name, help string
	bounds     []float64
	mu         sync.Mutex
	counts     []uint64
	sum        float64
	n          uint64
}

func newHistogram(name, help string, bounds ...float64) *histogram {
	return &histogram{name: name, help: help, bounds: bounds, counts: make([]uint64, len(bounds))}
}

func (h *histogram) observe(v float64) {
	if v < 0 {
		v = 0
	}
	i := sort.SearchFloat64s(h.bounds, v)
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < len(h.counts) {
		h.counts[i]++
	}
	h.sum += v
	h.n++
}

func (h *histogram) collect(w *bufio.Writer) {
	h.mu.Lock()
	counts := append([]uint64(nil), h.counts...)
	sum, n := h.sum, h.n
	h.mu.Unlock()

	header(w, h.name, h.help, "histogram")
	var running uint64
	for i, b := range h.bounds {
		running += counts[i]
		fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", h.name, strconv.FormatFloat(b, 'g', -1, 64), running)
	}
	fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", h.name, n)
	fmt.Fprintf(w, "%s_sum %s\n%s_count %d\n", h.name, strconv.FormatFloat(sum, 'g', -1, 64), h.name, n)
}
