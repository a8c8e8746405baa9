package models

// MetricAllowlist is the fixed set of numeric launch-monitor metrics eligible
// for bounds and progression computation. Columns outside this list (club
// type, shot quality labels, timestamps) never participate in numeric folds.
var MetricAllowlist = []string{
	"Club Speed", "Attack Angle", "Club Path", "Club Face", "Face to Path",
	"Ball Speed", "Smash Factor", "Launch Angle", "Launch Direction", "Backspin",
	"Sidespin", "Spin Rate", "Spin Axis", "Apex Height", "Carry Distance",
	"Carry Deviation Angle", "Carry Deviation Distance", "Total Distance",
	"Total Deviation Angle", "Total Deviation Distance",
}

var allowedMetrics = func() map[string]struct{} {
	m := make(map[string]struct{}, len(MetricAllowlist))
	for _, name := range MetricAllowlist {
		m[name] = struct{}{}
	}
	return m
}()

// MetricAllowed reports whether name is in the allowlist.
func MetricAllowed(name string) bool {
	_, ok := allowedMetrics[name]
	return ok
}
