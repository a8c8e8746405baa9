package models

import "testing"

func TestBoundsExtend(t *testing.T) {
	b := Bounds{Min: 100, Max: 200}

	if got := b.Extend(150); got != b {
		t.Errorf("Extend(inside) = %+v, want unchanged %+v", got, b)
	}
	if got := b.Extend(90); got.Min != 90 || got.Max != 200 {
		t.Errorf("Extend(90) = %+v", got)
	}
	if got := b.Extend(250); got.Min != 100 || got.Max != 250 {
		t.Errorf("Extend(250) = %+v", got)
	}
}

func TestShotClubType(t *testing.T) {
	shot := Shot{Metrics: map[string]string{"Club Type": "Driver"}}
	if shot.ClubType() != "Driver" {
		t.Errorf("ClubType = %q, want Driver", shot.ClubType())
	}

	if (Shot{Metrics: map[string]string{}}).ClubType() != "" {
		t.Error("ClubType on clubless shot should be empty")
	}
	if (Shot{}).ClubType() != "" {
		t.Error("ClubType on nil metrics should be empty")
	}
}

func TestMetricAllowed(t *testing.T) {
	for _, name := range MetricAllowlist {
		if !MetricAllowed(name) {
			t.Errorf("MetricAllowed(%q) = false", name)
		}
	}
	for _, name := range []string{"", "Shot Quality", "Club Type", "Date", "carry distance"} {
		if MetricAllowed(name) {
			t.Errorf("MetricAllowed(%q) = true", name)
		}
	}
	if len(MetricAllowlist) != 20 {
		t.Errorf("allowlist has %d metrics, want 20", len(MetricAllowlist))
	}
}
