package stats

import (
	"errors"
	"sort"
	"time"

	"github.com/claude/rangelog/internal/models"
	"github.com/google/uuid"
)

// ErrInvalidMetric is returned when a caller requests a metric outside the
// allowlist. This is a client-input error, never retried.
var ErrInvalidMetric = errors.New("metric is not in the allowlist")

// Point is one per-session average of a metric for one club.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ClubSeries is a club's chronologically ordered sequence of points.
type ClubSeries struct {
	Club string  `json:"club"`
	Data []Point `json:"data"`
}

// Progression is the cross-session summary for one metric.
type Progression struct {
	Series []ClubSeries `json:"series"`
	Units  string       `json:"units"`
}

// ProgressionSummary averages metric per (session, club) and returns one
// date-sorted series per club. Sessions must be in stored (creation) order;
// the first session whose units map defines the metric supplies the display
// units. An empty clubs filter includes every club. Shots without a club
// type, non-numeric values, and sessions without a parseable date contribute
// nothing. Clubs with no surviving data points are omitted entirely.
func ProgressionSummary(sessions []models.Session, shots []models.Shot, metric string, clubs []string) (*Progression, error) {
	if !models.MetricAllowed(metric) {
		return nil, ErrInvalidMetric
	}

	units := ""
	for _, s := range sessions {
		if u := s.Units[metric]; u != "" {
			units = u
			break
		}
	}

	var filter map[string]struct{}
	if len(clubs) > 0 {
		filter = make(map[string]struct{}, len(clubs))
		for _, c := range clubs {
			filter[c] = struct{}{}
		}
	}

	bySession := make(map[uuid.UUID][]models.Shot)
	for _, shot := range shots {
		bySession[shot.SessionID] = append(bySession[shot.SessionID], shot)
	}

	series := make(map[string][]Point)
	var clubOrder []string

	for _, session := range sessions {
		if session.Date == nil {
			continue
		}

		values := make(map[string][]float64)
		var sessionClubs []string
		for _, shot := range bySession[session.ID] {
			club := shot.ClubType()
			if club == "" {
				continue
			}
			if filter != nil {
				if _, ok := filter[club]; !ok {
					continue
				}
			}
			v, ok := parseMetricValue(shot.Metrics[metric])
			if !ok {
				continue
			}
			if _, seen := values[club]; !seen {
				sessionClubs = append(sessionClubs, club)
			}
			values[club] = append(values[club], v)
		}

		for _, club := range sessionClubs {
			vs := values[club]
			sum := 0.0
			for _, v := range vs {
				sum += v
			}
			if _, seen := series[club]; !seen {
				clubOrder = append(clubOrder, club)
			}
			series[club] = append(series[club], Point{
				Date:  *session.Date,
				Value: sum / float64(len(vs)),
			})
		}
	}

	result := &Progression{Series: []ClubSeries{}, Units: units}
	for _, club := range clubOrder {
		data := series[club]
		sort.SliceStable(data, func(i, j int) bool {
			return data[i].Date.Before(data[j].Date)
		})
		result.Series = append(result.Series, ClubSeries{Club: club, Data: data})
	}
	return result, nil
}
