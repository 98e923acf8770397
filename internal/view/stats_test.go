package view

import (
	"errors"
	"testing"

	"github.com/drivesight/console/internal/model"
)

func TestStatsView_OverwritesWholeRecord(t *testing.T) {
	r := &recordingStatsRenderer{}
	v := NewStatsView(r, nil)

	v.ApplyFull(v.Begin(), model.Stats{
		CamerasActive:  12,
		IncidentsToday: 40,
		ActiveAlerts:   3,
		SeverityCounts: map[string]int{model.SeverityCritical: 2},
	})
	// The pushed record omits severity counts; the omission must win.
	v.ApplyDelta(model.Stats{CamerasActive: 11, IncidentsToday: 41})

	got := v.Stats()
	if got.CamerasActive != 11 || got.IncidentsToday != 41 {
		t.Errorf("Stats() = %+v, want pushed counters", got)
	}
	if got.ActiveAlerts != 0 {
		t.Errorf("ActiveAlerts = %d, want 0 after whole-record overwrite", got.ActiveAlerts)
	}
	if got.SeverityCounts != nil {
		t.Errorf("SeverityCounts = %v, want nil after whole-record overwrite", got.SeverityCounts)
	}
}

func TestStatsView_StaleSnapshotDiscarded(t *testing.T) {
	r := &recordingStatsRenderer{}
	v := NewStatsView(r, nil)

	seq1 := v.Begin()
	seq2 := v.Begin()

	if !v.ApplyFull(seq2, model.Stats{IncidentsToday: 50}) {
		t.Fatal("latest pull was not applied")
	}
	if v.ApplyFull(seq1, model.Stats{IncidentsToday: 49}) {
		t.Error("stale pull was applied")
	}

	if got := v.Stats(); got.IncidentsToday != 50 {
		t.Errorf("IncidentsToday = %d, want 50", got.IncidentsToday)
	}
}

func TestStatsView_FailKeepsRecord(t *testing.T) {
	r := &recordingStatsRenderer{}
	v := NewStatsView(r, nil)

	v.ApplyDelta(model.Stats{ActiveAlerts: 5})
	v.Fail(v.Begin(), errors.New("backend down"))

	if got := v.Stats(); got.ActiveAlerts != 5 {
		t.Errorf("ActiveAlerts = %d, want 5 kept through failure", got.ActiveAlerts)
	}
	if len(r.errs) != 1 {
		t.Errorf("len(errs) = %d, want 1", len(r.errs))
	}
}
