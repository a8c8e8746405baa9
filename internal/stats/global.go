package stats

import (
	"sort"

	"github.com/claude/rangelog/internal/models"
)

// Overview holds whole-store aggregates used for UI axis scaling and club
// filter menus.
type Overview struct {
	Bounds         map[string]models.Bounds `json:"bounds"`
	AvailableClubs []string                 `json:"available_clubs"`
}

// GlobalStats folds bounds over every stored shot and collects the union of
// observed club types. It is recomputed in full on every call; the store is
// small and a fresh fold always reflects live state.
func GlobalStats(shots []models.Shot) *Overview {
	bounds := make(map[string]models.Bounds)
	clubSet := make(map[string]struct{})

	for _, shot := range shots {
		foldRow(bounds, shot.Metrics)
		if club := shot.ClubType(); club != "" {
			clubSet[club] = struct{}{}
		}
	}

	clubs := make([]string, 0, len(clubSet))
	for club := range clubSet {
		clubs = append(clubs, club)
	}
	sort.Strings(clubs)

	return &Overview{Bounds: bounds, AvailableClubs: clubs}
}
