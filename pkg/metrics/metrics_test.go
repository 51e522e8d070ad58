package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.StorageNodesTotal == nil {
		t.Error("StorageNodesTotal not initialized")
	}
	if r.PassesTotal == nil {
		t.Error("PassesTotal not initialized")
	}
	if r.ResolverLookupsTotal == nil {
		t.Error("ResolverLookupsTotal not initialized")
	}
	if r.ExportRowsTotal == nil {
		t.Error("ExportRowsTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestRecordStorageOperation(t *testing.T) {
	r := NewRegistry()

	r.RecordStorageOperation("commit", "success", 10*time.Millisecond)
	r.RecordStorageOperation("commit", "success", 20*time.Millisecond)
	r.RecordStorageOperation("commit", "error", 5*time.Millisecond)

	success, err := r.StorageOperationsTotal.GetMetricWithLabelValues("commit", "success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := counterValue(t, success); got != 2 {
		t.Errorf("Success counter = %v, want 2", got)
	}

	failed, err := r.StorageOperationsTotal.GetMetricWithLabelValues("commit", "error")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := counterValue(t, failed); got != 1 {
		t.Errorf("Error counter = %v, want 1", got)
	}
}

func TestRecordPass(t *testing.T) {
	r := NewRegistry()

	r.RecordPass("DOMAIN", "success", 2*time.Second, 40)
	r.RecordPass("DOMAIN", "success", time.Second, 2)
	r.RecordPass("SPECIES", "error", time.Millisecond, 0)

	passes, _ := r.PassesTotal.GetMetricWithLabelValues("DOMAIN", "success")
	if got := counterValue(t, passes); got != 2 {
		t.Errorf("Passes = %v, want 2", got)
	}

	classes, _ := r.ClassesMaterialized.GetMetricWithLabelValues("DOMAIN")
	if got := counterValue(t, classes); got != 42 {
		t.Errorf("Classes = %v, want 42", got)
	}

	var metric dto.Metric
	hist, _ := r.PassDuration.GetMetricWithLabelValues("DOMAIN")
	if err := hist.(prometheus.Metric).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("Pass duration sample count = %v, want 2", metric.Histogram.GetSampleCount())
	}
}

func TestRecordResolverLookup(t *testing.T) {
	r := NewRegistry()

	r.RecordResolverLookup(true)
	r.RecordResolverLookup(false)
	r.RecordResolverLookup(false)

	created, _ := r.ResolverLookupsTotal.GetMetricWithLabelValues("created")
	hit, _ := r.ResolverLookupsTotal.GetMetricWithLabelValues("hit")
	if got := counterValue(t, created); got != 1 {
		t.Errorf("created = %v, want 1", got)
	}
	if got := counterValue(t, hit); got != 2 {
		t.Errorf("hit = %v, want 2", got)
	}
}

func TestGaugeMetrics(t *testing.T) {
	r := NewRegistry()

	r.UpdateStorageTotals(100, 500)
	r.SetIndividuals("DISCIPLINE", 7)
	individuals, _ := r.IndividualsTotal.GetMetricWithLabelValues("DISCIPLINE")

	tests := []struct {
		name     string
		gauge    prometheus.Gauge
		expected float64
	}{
		{"StorageNodesTotal", r.StorageNodesTotal, 100},
		{"StorageEdgesTotal", r.StorageEdgesTotal, 500},
		{"IndividualsTotal", individuals, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var metric dto.Metric
			if err := tt.gauge.Write(&metric); err != nil {
				t.Fatalf("Failed to write metric: %v", err)
			}

			if metric.Gauge.GetValue() != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, metric.Gauge.GetValue(), tt.expected)
			}
		})
	}
}

func TestUpdateSystemMetrics(t *testing.T) {
	r := NewRegistry()
	r.started = time.Now().Add(-time.Minute)
	r.UpdateSystemMetrics()

	var metric dto.Metric
	if err := r.UptimeSeconds.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() < 60 {
		t.Errorf("UptimeSeconds = %v, want >= 60", metric.Gauge.GetValue())
	}

	if err := r.GoRoutines.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() < 1 {
		t.Errorf("GoRoutines = %v, want >= 1", metric.Gauge.GetValue())
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RecordAbsentChannel("broadSynonyms")
	r.RecordExport("postgres", "classes", "success", 12, time.Second)

	path := filepath.Join(t.TempDir(), "owlgraph.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	text := string(data)

	for _, want := range []string{
		`owlgraph_annotation_channels_absent_total{channel="broadSynonyms"} 1`,
		`owlgraph_export_rows_total{kind="classes",target="postgres"} 12`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestGetPrometheusRegistry(t *testing.T) {
	r := NewRegistry()
	r.RecordHierarchyEdges("isA", 3)

	families, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range families {
		if mf.GetName() == "owlgraph_materialize_hierarchy_edges_total" {
			found = true
		}
	}
	if !found {
		t.Error("hierarchy edge counter not gathered")
	}
}

func TestHandlerRefreshesRuntimeGauges(t *testing.T) {
	r := NewRegistry()
	r.started = time.Now().Add(-time.Hour)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "owlgraph_uptime_seconds 36") {
		t.Errorf("uptime gauge not refreshed:\n%s", body)
	}
	if !strings.Contains(body, "owlgraph_storage_nodes_total") {
		t.Errorf("storage gauges missing:\n%s", body)
	}
}
