package catalog

import "modecoach-backend/internal/models"

// Merge combines the built-in catalog with fetched public and user-owned
// coaches. Identity key is the coach ID; later lists win on collision
// (public, then mine, then builtins take lowest precedence), while the
// first-seen position of each ID is preserved. Pure function of its inputs.
func Merge(builtins, public, mine []models.Coach) []models.Coach {
	order := make([]string, 0, len(builtins)+len(public)+len(mine))
	byID := make(map[string]models.Coach)

	for _, list := range [][]models.Coach{builtins, public, mine} {
		for _, c := range list {
			if _, seen := byID[c.ID]; !seen {
				order = append(order, c.ID)
			}
			byID[c.ID] = c
		}
	}

	merged := make([]models.Coach, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	return merged
}
