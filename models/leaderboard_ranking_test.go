package models_test

import (
	"testing"

	"github.com/vsfastfood/restaurant_backend/models"
)

func TestRankEntries_ScoreDescending(t *testing.T) {
	entries := []models.LeaderboardEntry{
		{CustomerId: 1, CustomerName: "Asha", Score: 3},
		{CustomerId: 2, CustomerName: "Ravi", Score: 9},
		{CustomerId: 3, CustomerName: "Meena", Score: 5},
	}

	ranked := models.RankEntries(entries, 10)
	want := []int{2, 3, 1}
	for i, id := range want {
		if ranked[i].CustomerId != id {
			t.Errorf("position %d: expected customer %d, got %d", i, id, ranked[i].CustomerId)
		}
	}
}

func TestRankEntries_TieBreaksByCustomerId(t *testing.T) {
	entries := []models.LeaderboardEntry{
		{CustomerId: 7, Score: 4},
		{CustomerId: 2, Score: 4},
		{CustomerId: 5, Score: 4},
	}

	ranked := models.RankEntries(entries, 10)
	want := []int{2, 5, 7}
	for i, id := range want {
		if ranked[i].CustomerId != id {
			t.Errorf("position %d: expected customer %d, got %d", i, id, ranked[i].CustomerId)
		}
	}
}

func TestRankEntries_AppliesLimit(t *testing.T) {
	entries := []models.LeaderboardEntry{
		{CustomerId: 1, Score: 1},
		{CustomerId: 2, Score: 2},
		{CustomerId: 3, Score: 3},
	}

	ranked := models.RankEntries(entries, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ranked))
	}
	if ranked[0].CustomerId != 3 || ranked[1].CustomerId != 2 {
		t.Errorf("expected top two by score, got %+v", ranked)
	}
}

func TestRankEntries_DoesNotMutateInput(t *testing.T) {
	entries := []models.LeaderboardEntry{
		{CustomerId: 1, Score: 1},
		{CustomerId: 2, Score: 2},
	}

	models.RankEntries(entries, 10)
	if entries[0].CustomerId != 1 || entries[1].CustomerId != 2 {
		t.Errorf("input slice was reordered: %+v", entries)
	}
}
