package strategies

import (
	"sort"

	"ParamSweep/internal/domain/models"
)

// Grid enumerates the Cartesian product of ranges. Names are iterated in
// sorted order with the last name varying fastest, so the output order is
// deterministic. A parameter with no candidates yields an empty grid.
func Grid(ranges models.Ranges) []models.Params {
	names := make([]string, 0, len(ranges))
	for name := range ranges {
		names = append(names, name)
	}
	sort.Strings(names)

	grid := []models.Params{{}}
	for _, name := range names {
		values := ranges[name]
		next := make([]models.Params, 0, len(grid)*len(values))
		for _, base := range grid {
			for _, v := range values {
				p := base.Clone()
				p[name] = v
				next = append(next, p)
			}
		}
		grid = next
	}
	return grid
}

// GridSize is the number of tuples Grid would return.
func GridSize(ranges models.Ranges) int {
	n := 1
	for _, values := range ranges {
		n *= len(values)
	}
	return n
}

// MinLookback is the largest lookback any tuple of the grid needs.
func MinLookback(ev Evaluator, grid []models.Params) int {
	need := 0
	for _, p := range grid {
		if l := ev.Lookback(ev.Defaults().Merge(p)); l > need {
			need = l
		}
	}
	return need
}
