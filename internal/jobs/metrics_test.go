package jobs

import (
	"testing"
	"time"

	"github.com/goliatone/go-publish/internal/domain"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsObserveSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(reg)

	started := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	report := newSweepReport(started, nil)
	report.add(ItemResult{ID: uuid.New(), Kind: domain.KindWallpaper, Outcome: OutcomePublished})
	report.add(ItemResult{ID: uuid.New(), Kind: domain.KindWallpaper, Outcome: OutcomePublished})
	report.add(ItemResult{ID: uuid.New(), Kind: domain.KindBanner, Outcome: OutcomeAlreadyPublished})
	report.FinishedAt = started.Add(250 * time.Millisecond)

	metrics.ObserveSweep(report)

	if got := testutil.ToFloat64(metrics.items.WithLabelValues("wallpaper", "published")); got != 2 {
		t.Fatalf("expected 2 published wallpapers, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.items.WithLabelValues("banner", "already_published")); got != 1 {
		t.Fatalf("expected 1 already published banner, got %v", got)
	}
	if count := testutil.CollectAndCount(metrics.duration); count != 1 {
		t.Fatalf("expected duration histogram to be collected, got %d", count)
	}
}

func TestSweepReportTotals(t *testing.T) {
	started := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	kind := domain.KindMedia
	report := newSweepReport(started, &kind)
	for _, outcome := range Outcomes() {
		if _, ok := report.Totals[outcome]; !ok {
			t.Fatalf("expected zeroed total for %s", outcome)
		}
	}

	id := uuid.New()
	report.add(ItemResult{ID: id, Kind: kind, Outcome: OutcomePublished})
	report.add(ItemResult{ID: uuid.New(), Kind: kind, Outcome: OutcomeError, Error: "boom"})

	if report.Published() != 1 || report.Total() != 2 {
		t.Fatalf("unexpected totals %v", report.Totals)
	}
	if len(report.TouchedIDs) != 1 || report.TouchedIDs[0] != id {
		t.Fatalf("expected only published ids to be touched, got %v", report.TouchedIDs)
	}
}

func TestNoOpMetricsIgnoresReports(t *testing.T) {
	NoOpMetrics().ObserveSweep(nil)
	var metrics *PrometheusMetrics
	metrics.ObserveSweep(&SweepReport{})
}
