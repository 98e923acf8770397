package view

import (
	"errors"
	"testing"

	"github.com/drivesight/console/internal/model"
)

func TestHeatmapView_ReplacesWholesale(t *testing.T) {
	r := &recordingHeatmapRenderer{}
	v := NewHeatmapView(r, nil)

	v.ApplyFull(v.Begin(), []model.HeatPoint{
		{Lat: 34.05, Lng: -118.24, Intensity: 0.9, Severity: model.SeverityCritical},
		{Lat: 34.10, Lng: -118.30, Intensity: 0.4, Severity: model.SeverityWarning},
	})
	v.ApplyDelta([]model.HeatPoint{
		{Lat: 37.77, Lng: -122.42, Intensity: 0.2, Severity: model.SeverityLow},
	})

	got := v.Points()
	if len(got) != 1 {
		t.Fatalf("len(Points()) = %d, want 1 after replacement", len(got))
	}
	if got[0].Lat != 37.77 {
		t.Errorf("Points()[0].Lat = %v, want 37.77", got[0].Lat)
	}
}

func TestHeatmapView_EmptyReplacementClears(t *testing.T) {
	r := &recordingHeatmapRenderer{}
	v := NewHeatmapView(r, nil)

	v.ApplyDelta([]model.HeatPoint{{Lat: 1, Lng: 2, Intensity: 0.5}})
	v.ApplyDelta(nil)

	if got := v.Points(); len(got) != 0 {
		t.Errorf("len(Points()) = %d, want 0", len(got))
	}
}

func TestHeatmapView_NormalizesPoints(t *testing.T) {
	r := &recordingHeatmapRenderer{}
	v := NewHeatmapView(r, nil)

	v.ApplyDelta([]model.HeatPoint{
		{Lat: 1, Lng: 2, Intensity: 1.7},
		{Lat: 3, Lng: 4, Intensity: -0.2},
	})

	got := v.Points()
	if got[0].Intensity != 1 {
		t.Errorf("Intensity = %v, want clamped to 1", got[0].Intensity)
	}
	if got[1].Intensity != 0 {
		t.Errorf("Intensity = %v, want clamped to 0", got[1].Intensity)
	}
	if got[0].Severity != model.SeverityLow {
		t.Errorf("Severity = %q, want substituted %q", got[0].Severity, model.SeverityLow)
	}
}

func TestHeatmapView_StaleSnapshotDiscarded(t *testing.T) {
	r := &recordingHeatmapRenderer{}
	v := NewHeatmapView(r, nil)

	// The 24h pull goes out, then the operator narrows to 6h; the wide
	// snapshot arrives after the narrow one and must be ignored.
	wide := v.Begin()
	narrow := v.Begin()

	if !v.ApplyFull(narrow, []model.HeatPoint{{Lat: 1, Lng: 1, Intensity: 0.3}}) {
		t.Fatal("latest pull was not applied")
	}
	if v.ApplyFull(wide, []model.HeatPoint{
		{Lat: 1, Lng: 1, Intensity: 0.3},
		{Lat: 2, Lng: 2, Intensity: 0.8},
	}) {
		t.Error("stale pull was applied")
	}

	if got := v.Points(); len(got) != 1 {
		t.Errorf("len(Points()) = %d, want 1", len(got))
	}
	if n := v.StaleDiscards(); n != 1 {
		t.Errorf("StaleDiscards() = %d, want 1", n)
	}
}

func TestHeatmapView_FailKeepsPoints(t *testing.T) {
	r := &recordingHeatmapRenderer{}
	v := NewHeatmapView(r, nil)

	v.ApplyDelta([]model.HeatPoint{{Lat: 1, Lng: 2, Intensity: 0.5}})
	v.Fail(v.Begin(), errors.New("timeout"))

	if len(v.Points()) != 1 {
		t.Error("failure cleared existing points")
	}
	if len(r.errs) != 1 {
		t.Errorf("len(errs) = %d, want 1", len(r.errs))
	}
}
