// Package garmin parses Garmin R50 launch monitor CSV exports.
//
// The export format carries three header-ish lines before the shot data: the
// first line names the columns, the second maps each column to its unit label,
// and the third is a structural placeholder the device always emits. Every
// line after that is one shot.
package garmin

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrMalformedInput is returned when the CSV lacks the units row, the
// placeholder row, or any data rows.
var ErrMalformedInput = errors.New("csv must have a units row, a placeholder row, and at least one data row")

// Result holds one parsed export: the raw shot rows plus the per-file
// metadata derived in the same pass.
type Result struct {
	Rows           []map[string]string // one map per shot, keyed by trimmed column name
	Units          map[string]string   // column name -> unit label
	FileDate       *time.Time          // first data row's Date column, nil if unparseable
	ShotCount      int
	AvailableClubs []string // distinct Club Type values, first-appearance order
	ClubData       bool     // any row has a non-empty Club Speed value
}

// Parse reads a Garmin R50 CSV export.
func Parse(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrMalformedInput
	}

	columns := make([]string, len(records[0]))
	for i, name := range records[0] {
		columns[i] = strings.TrimSpace(name)
	}

	// After the column-name line: units row, placeholder row, then data.
	body := records[1:]
	if len(body) < 3 {
		return nil, ErrMalformedInput
	}

	units := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(body[0]) {
			units[col] = strings.TrimSpace(body[0][i])
		}
	}

	data := body[2:]
	res := &Result{
		Units:     units,
		ShotCount: len(data),
	}

	seenClubs := make(map[string]struct{})
	for _, rec := range data {
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		res.Rows = append(res.Rows, row)

		if club := row["Club Type"]; club != "" {
			if _, ok := seenClubs[club]; !ok {
				seenClubs[club] = struct{}{}
				res.AvailableClubs = append(res.AvailableClubs, club)
			}
		}
		if !res.ClubData && ClubSpeed(row) != "" {
			res.ClubData = true
		}
	}

	if t, ok := parseShotDate(res.Rows[0]["Date"]); ok {
		res.FileDate = &t
	}

	return res, nil
}

// ClubSpeed looks up the Club Speed cell of a row. Device firmware revisions
// disagree on the column spelling; the accepted forms are "Club Speed",
// "club speed", and "clubSpeed", all matched case- and space-insensitively.
func ClubSpeed(row map[string]string) string {
	if v, ok := row["Club Speed"]; ok {
		return v
	}
	for k, v := range row {
		if normalizeColumn(k) == "clubspeed" {
			return v
		}
	}
	return ""
}

func normalizeColumn(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// shotDateLayouts are the timestamp formats observed across R50 firmware
// versions and regional settings.
var shotDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/06 3:04:05 PM",
	"1/2/2006",
	time.RFC3339,
}

// parseShotDate parses a Date cell. Unparseable dates are not an error; the
// session simply has no timestamp.
func parseShotDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range shotDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
