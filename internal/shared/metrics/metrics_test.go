package metrics

import (
	"bufio"
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func render(c collector) string {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	c.collect(w)
	_ = w.Flush()
	return buf.String()
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram("test_seconds", "test", 0.125, 1)
	h.observe(0.0625)
	h.observe(0.125)
	h.observe(0.5)
	h.observe(3)

	out := render(h)
	for _, want := range []string{
		`test_seconds_bucket{le="0.125"} 2`,
		`test_seconds_bucket{le="1"} 3`,
		`test_seconds_bucket{le="+Inf"} 4`,
		`test_seconds_sum 3.6875`,
		`test_seconds_count 4`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestCounterVecSortsSeries(t *testing.T) {
	c := newCounterVec("jobs_total", "jobs", "kind", "outcome")
	c.inc("b", "ok")
	c.inc("a", "error")
	c.inc("b", "ok")

	out := render(c)
	first := strings.Index(out, `jobs_total{kind="a",outcome="error"} 1`)
	second := strings.Index(out, `jobs_total{kind="b",outcome="ok"} 2`)
	if first < 0 || second < 0 || first > second {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCounterVecLabelMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	newCounterVec("x_total", "x", "a").inc("1", "2")
}

func TestHandlerExposesExportMetrics(t *testing.T) {
	ExportStarted()
	ExportFinished("tax-invoice", nil, 40*time.Millisecond)
	ExportStarted()
	ExportFinished("tax-invoice", errors.New("boom"), time.Millisecond)
	SummaryServed(SummaryFallback)
	ContactSubmitted(true)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	out := resp.Body.String()
	for _, want := range []string{
		"docforms_exports_in_flight 0",
		`docforms_exports_total{type="tax-invoice",outcome="ok"}`,
		`docforms_exports_total{type="tax-invoice",outcome="error"}`,
		`docforms_summaries_total{outcome="fallback"}`,
		`docforms_contact_submissions_total{outcome="delivered"}`,
		"# TYPE docforms_export_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}
