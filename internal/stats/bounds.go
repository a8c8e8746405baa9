// Package stats computes read-side aggregates over stored sessions and shots:
// per-metric numeric bounds, global overview stats, and per-club progression
// series.
package stats

import (
	"strconv"
	"strings"

	"github.com/claude/rangelog/internal/models"
)

// CalcBounds folds the allow-listed metrics of every row into per-metric
// {min,max}. Empty and non-numeric cells are skipped; metrics never observed
// numerically are absent from the result. The fold is associative, so
// CalcBounds over a row set equals MergeBounds over any partition of it.
func CalcBounds(rows []map[string]string) map[string]models.Bounds {
	bounds := make(map[string]models.Bounds)
	for _, row := range rows {
		foldRow(bounds, row)
	}
	return bounds
}

// MergeBounds combines two bounds maps into a new one.
func MergeBounds(a, b map[string]models.Bounds) map[string]models.Bounds {
	merged := make(map[string]models.Bounds, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		if cur, ok := merged[k]; ok {
			merged[k] = cur.Extend(v.Min).Extend(v.Max)
		} else {
			merged[k] = v
		}
	}
	return merged
}

func foldRow(bounds map[string]models.Bounds, row map[string]string) {
	for key, value := range row {
		if !models.MetricAllowed(key) {
			continue
		}
		num, ok := parseMetricValue(value)
		if !ok {
			continue
		}
		if cur, exists := bounds[key]; exists {
			bounds[key] = cur.Extend(num)
		} else {
			bounds[key] = models.Bounds{Min: num, Max: num}
		}
	}
}

// parseMetricValue coerces a raw CSV cell to a float. Blank cells and
// sentinel strings like "N/A" simply fail the parse and are skipped.
func parseMetricValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
