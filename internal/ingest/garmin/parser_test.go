package garmin

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const sampleCSV = `Date,Club Type,Club Speed,Ball Speed,Carry Distance,Smash Factor,Shot Quality
,,[mph],[mph],[yds],,
,,,,,,
2024-05-11 09:15:02,Driver,98.4,145.2,230.5,1.48,Good
2024-05-11 09:16:40,Driver,97.1,141.0,224.1,1.45,OK
2024-05-11 09:18:03,7 Iron,78.2,102.3,152.7,1.31,Good
2024-05-11 09:19:21,7 Iron,N/A,101.1,150.2,1.29,
`

// TestParseCompleteExport covers the happy path end-to-end: row extraction,
// units mapping, file date, club list and club-data detection.
func TestParseCompleteExport(t *testing.T) {
	res, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if res.ShotCount != 4 {
		t.Errorf("ShotCount = %d, want 4", res.ShotCount)
	}
	if len(res.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(res.Rows))
	}

	if res.Units["Club Speed"] != "[mph]" {
		t.Errorf("Units[Club Speed] = %q, want [mph]", res.Units["Club Speed"])
	}
	if res.Units["Carry Distance"] != "[yds]" {
		t.Errorf("Units[Carry Distance] = %q, want [yds]", res.Units["Carry Distance"])
	}
	if res.Units["Date"] != "" {
		t.Errorf("Units[Date] = %q, want empty", res.Units["Date"])
	}

	want := time.Date(2024, 5, 11, 9, 15, 2, 0, time.UTC)
	if res.FileDate == nil || !res.FileDate.Equal(want) {
		t.Errorf("FileDate = %v, want %v", res.FileDate, want)
	}

	if len(res.AvailableClubs) != 2 || res.AvailableClubs[0] != "Driver" || res.AvailableClubs[1] != "7 Iron" {
		t.Errorf("AvailableClubs = %v, want [Driver, 7 Iron]", res.AvailableClubs)
	}
	if !res.ClubData {
		t.Error("ClubData = false, want true")
	}

	// Row mapping keys are exactly the header columns
	row := res.Rows[0]
	if row["Carry Distance"] != "230.5" {
		t.Errorf("row[Carry Distance] = %q, want 230.5", row["Carry Distance"])
	}
	if row["Shot Quality"] != "Good" {
		t.Errorf("row[Shot Quality] = %q, want Good", row["Shot Quality"])
	}
}

// TestParseMalformed verifies that exports missing the units row, the
// placeholder row, or all data rows are rejected.
func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"header only":      "Date,Club Type\n",
		"header and units": "Date,Club Type\n,,\n",
		"no data rows":     "Date,Club Type\n,,\n,,\n",
	}
	for name, input := range cases {
		_, err := Parse(strings.NewReader(input))
		if !errors.Is(err, ErrMalformedInput) {
			t.Errorf("%s: err = %v, want ErrMalformedInput", name, err)
		}
	}
}

// TestParseMinimal verifies the smallest valid export: units row, placeholder
// row, one data row.
func TestParseMinimal(t *testing.T) {
	input := "Date,Club Type,Carry Distance\n,,[yds]\n,,\n2024-01-01,Driver,200\n"
	res, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if res.ShotCount != 1 {
		t.Errorf("ShotCount = %d, want 1", res.ShotCount)
	}
	if res.Rows[0]["Carry Distance"] != "200" {
		t.Errorf("row value = %q, want 200", res.Rows[0]["Carry Distance"])
	}
}

// TestClubSpeedSpellings verifies the firmware-dependent Club Speed column
// spellings all count as club data.
func TestClubSpeedSpellings(t *testing.T) {
	for _, column := range []string{"Club Speed", "club speed", "clubSpeed"} {
		input := "Date," + column + "\n,[mph]\n,\n2024-01-01,95.0\n"
		res, err := Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("%s: parse error: %v", column, err)
		}
		if !res.ClubData {
			t.Errorf("%s: ClubData = false, want true", column)
		}
	}

	// Empty club speed values are not club data
	input := "Date,Club Speed\n,[mph]\n,\n2024-01-01,\n"
	res, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if res.ClubData {
		t.Error("ClubData = true for empty values, want false")
	}
}

// TestParseUnparseableDate verifies a bad Date cell yields a nil FileDate
// rather than an error.
func TestParseUnparseableDate(t *testing.T) {
	input := "Date,Carry Distance\n,[yds]\n,\nnot a date,200\n"
	res, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if res.FileDate != nil {
		t.Errorf("FileDate = %v, want nil", res.FileDate)
	}
}

// TestHeaderTrimming verifies surrounding whitespace is stripped from column
// names before they are used as keys.
func TestHeaderTrimming(t *testing.T) {
	input := "Date, Carry Distance \n,[yds]\n,\n2024-01-01,200\n"
	res, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if res.Rows[0]["Carry Distance"] != "200" {
		t.Errorf("trimmed column lookup = %q, want 200", res.Rows[0]["Carry Distance"])
	}
	if res.Units["Carry Distance"] != "[yds]" {
		t.Errorf("trimmed units lookup = %q, want [yds]", res.Units["Carry Distance"])
	}
}
