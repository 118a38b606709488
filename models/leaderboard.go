package models

import (
	"context"
	"sort"

	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
)

// LeaderboardEntry is one ranked row in a single leaderboard dimension.
type LeaderboardEntry struct {
	CustomerId   int    `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Score        int    `json:"score"`
}

// Leaderboard carries three independent top-N rankings. There is no
// cross-weighting between them; ties break by customer id ascending.
type Leaderboard struct {
	MostReviews []LeaderboardEntry `json:"most_reviews"`
	MostLiked   []LeaderboardEntry `json:"most_liked"`
	MostCoins   []LeaderboardEntry `json:"most_coins"`
}

// GetLeaderboard runs the three rankings over approved reviews and coin
// balances. Read-only.
func GetLeaderboard(ctx context.Context, limit int) (*Leaderboard, error) {
	db := config.GetDB()

	if limit <= 0 {
		limit = 10
	}

	var board Leaderboard

	err := db.WithContext(ctx).Raw(`
        SELECT c.id AS customer_id, c.name AS customer_name, COUNT(r.id) AS score
        FROM reviews r
        JOIN customers c ON c.id = r.customer_id
        WHERE r.status = 'approved'
        GROUP BY c.id, c.name
        ORDER BY score DESC, customer_id ASC
        LIMIT ?
    `, limit).Scan(&board.MostReviews).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	err = db.WithContext(ctx).Raw(`
        SELECT c.id AS customer_id, c.name AS customer_name, COALESCE(SUM(r.likes), 0) AS score
        FROM reviews r
        JOIN customers c ON c.id = r.customer_id
        WHERE r.status = 'approved'
        GROUP BY c.id, c.name
        ORDER BY score DESC, customer_id ASC
        LIMIT ?
    `, limit).Scan(&board.MostLiked).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	err = db.WithContext(ctx).Raw(`
        SELECT id AS customer_id, name AS customer_name, coins AS score
        FROM customers
        WHERE coins > 0
        ORDER BY score DESC, customer_id ASC
        LIMIT ?
    `, limit).Scan(&board.MostCoins).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	return &board, nil
}

// RankEntries sorts entries by score descending with customer id ascending
// as the tie break. Exposed for the in-memory paths that assemble entries
// without SQL.
func RankEntries(entries []LeaderboardEntry, limit int) []LeaderboardEntry {
	ranked := make([]LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CustomerId < ranked[j].CustomerId
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
