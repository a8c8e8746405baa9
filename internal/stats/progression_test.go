package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claude/rangelog/internal/models"
)

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func shot(sessionID uuid.UUID, club, metric, value string) models.Shot {
	return models.Shot{
		ID:        uuid.New(),
		SessionID: sessionID,
		Metrics:   map[string]string{"Club Type": club, metric: value},
	}
}

func TestProgressionSummary(t *testing.T) {
	s1 := models.Session{ID: uuid.New(), Date: day(2024, 1, 1), Units: map[string]string{"Carry Distance": "[yds]"}}
	s2 := models.Session{ID: uuid.New(), Date: day(2024, 2, 1)}

	shots := []models.Shot{
		shot(s1.ID, "Driver", "Carry Distance", "200"),
		shot(s1.ID, "Driver", "Carry Distance", "210"),
		shot(s1.ID, "7 Iron", "Carry Distance", "150"),
		shot(s2.ID, "Driver", "Carry Distance", "220"),
	}

	prog, err := ProgressionSummary([]models.Session{s1, s2}, shots, "Carry Distance", nil)
	if err != nil {
		t.Fatalf("ProgressionSummary: %v", err)
	}

	if prog.Units != "[yds]" {
		t.Errorf("Units = %q, want [yds]", prog.Units)
	}
	if len(prog.Series) != 2 {
		t.Fatalf("series count = %d, want 2", len(prog.Series))
	}

	driver := prog.Series[0]
	if driver.Club != "Driver" {
		t.Fatalf("first series club = %q, want Driver", driver.Club)
	}
	if len(driver.Data) != 2 {
		t.Fatalf("driver points = %d, want 2", len(driver.Data))
	}
	if driver.Data[0].Value != 205 {
		t.Errorf("driver 2024-01-01 mean = %v, want 205", driver.Data[0].Value)
	}
	if driver.Data[1].Value != 220 {
		t.Errorf("driver 2024-02-01 mean = %v, want 220", driver.Data[1].Value)
	}
	if !driver.Data[0].Date.Before(driver.Data[1].Date) {
		t.Error("driver points not date ordered")
	}

	iron := prog.Series[1]
	if iron.Club != "7 Iron" || len(iron.Data) != 1 || iron.Data[0].Value != 150 {
		t.Errorf("7 Iron series = %+v", iron)
	}
}

func TestProgressionClubFilter(t *testing.T) {
	s := models.Session{ID: uuid.New(), Date: day(2024, 3, 5)}
	shots := []models.Shot{
		shot(s.ID, "Driver", "Ball Speed", "150"),
		shot(s.ID, "7 Iron", "Ball Speed", "110"),
	}

	prog, err := ProgressionSummary([]models.Session{s}, shots, "Ball Speed", []string{"7 Iron"})
	if err != nil {
		t.Fatalf("ProgressionSummary: %v", err)
	}
	if len(prog.Series) != 1 || prog.Series[0].Club != "7 Iron" {
		t.Fatalf("series = %+v, want only 7 Iron", prog.Series)
	}

	// Filtering on a club no shot has yields an empty, non-nil series slice
	prog, err = ProgressionSummary([]models.Session{s}, shots, "Ball Speed", []string{"Putter"})
	if err != nil {
		t.Fatalf("ProgressionSummary: %v", err)
	}
	if prog.Series == nil || len(prog.Series) != 0 {
		t.Errorf("series = %v, want empty slice", prog.Series)
	}
}

func TestProgressionInvalidMetric(t *testing.T) {
	_, err := ProgressionSummary(nil, nil, "Shot Quality", nil)
	if !errors.Is(err, ErrInvalidMetric) {
		t.Errorf("err = %v, want ErrInvalidMetric", err)
	}

	// The allowlist check runs before any data access
	_, err = ProgressionSummary(nil, nil, "", nil)
	if !errors.Is(err, ErrInvalidMetric) {
		t.Errorf("empty metric err = %v, want ErrInvalidMetric", err)
	}
}

func TestProgressionSkipsUndatedSessions(t *testing.T) {
	dated := models.Session{ID: uuid.New(), Date: day(2024, 1, 1)}
	undated := models.Session{ID: uuid.New()}
	shots := []models.Shot{
		shot(dated.ID, "Driver", "Carry Distance", "200"),
		shot(undated.ID, "Driver", "Carry Distance", "950"),
	}

	prog, err := ProgressionSummary([]models.Session{dated, undated}, shots, "Carry Distance", nil)
	if err != nil {
		t.Fatalf("ProgressionSummary: %v", err)
	}
	if len(prog.Series) != 1 || len(prog.Series[0].Data) != 1 {
		t.Fatalf("series = %+v, want one point", prog.Series)
	}
	if prog.Series[0].Data[0].Value != 200 {
		t.Errorf("value = %v, undated session leaked in", prog.Series[0].Data[0].Value)
	}
}

func TestProgressionSkipsBadValues(t *testing.T) {
	s := models.Session{ID: uuid.New(), Date: day(2024, 1, 1)}
	shots := []models.Shot{
		shot(s.ID, "Driver", "Club Speed", "98.0"),
		shot(s.ID, "Driver", "Club Speed", "N/A"),
		shot(s.ID, "Driver", "Club Speed", ""),
		shot(s.ID, "", "Club Speed", "100.0"),
	}

	prog, err := ProgressionSummary([]models.Session{s}, shots, "Club Speed", nil)
	if err != nil {
		t.Fatalf("ProgressionSummary: %v", err)
	}
	if len(prog.Series) != 1 {
		t.Fatalf("series = %+v", prog.Series)
	}
	// Only the single numeric clubbed shot counts toward the mean
	if got := prog.Series[0].Data[0].Value; got != 98.0 {
		t.Errorf("mean = %v, want 98", got)
	}
}

func TestProgressionUnitsFromFirstDefiningSession(t *testing.T) {
	s1 := models.Session{ID: uuid.New(), Date: day(2024, 1, 1), Units: map[string]string{"Carry Distance": ""}}
	s2 := models.Session{ID: uuid.New(), Date: day(2024, 2, 1), Units: map[string]string{"Carry Distance": "[m]"}}

	prog, err := ProgressionSummary([]models.Session{s1, s2}, nil, "Carry Distance", nil)
	if err != nil {
		t.Fatalf("ProgressionSummary: %v", err)
	}
	if prog.Units != "[m]" {
		t.Errorf("Units = %q, want [m]", prog.Units)
	}
}
