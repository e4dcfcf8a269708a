package usecase

import (
	"sort"

	"ParamSweep/internal/domain/models"
)

// RankBestPerCoin keeps the highest-profit row per coin, the first one on
// exact ties, and sorts the kept rows by total profit descending. It is
// idempotent.
func RankBestPerCoin(results []models.BacktestResult) []models.BacktestResult {
	index := make(map[string]int)
	var best []models.BacktestResult
	for _, r := range results {
		i, ok := index[r.Coin]
		if !ok {
			index[r.Coin] = len(best)
			best = append(best, r)
			continue
		}
		if r.TotalProfit > best[i].TotalProfit {
			best[i] = r
		}
	}
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].TotalProfit > best[j].TotalProfit
	})
	return best
}
