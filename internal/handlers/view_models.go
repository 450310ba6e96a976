package handlers

import (
	"fmt"
	"time"

	"classquiz/internal/models"
	"classquiz/internal/service"
)

// LimitStatus is the daily-limit banner shown on the student dashboard
type LimitStatus struct {
	Message      string
	ReachedLimit bool
}

// buildLimitStatus renders the admission state into the banner text
func buildLimitStatus(adm service.Admission) LimitStatus {
	if adm.Unlimited {
		return LimitStatus{Message: "No daily quiz limit today."}
	}
	if !adm.Allowed {
		return LimitStatus{
			Message:      fmt.Sprintf("You have reached today's quiz limit (%d).", adm.Limit),
			ReachedLimit: true,
		}
	}
	return LimitStatus{
		Message: fmt.Sprintf("Quizzes remaining today: %d (limit %d).", adm.Remaining, adm.Limit),
	}
}

// PointsEntry is one row of the attempt history with the running total
type PointsEntry struct {
	Time       time.Time
	Score      int
	Cumulative int
}

// buildPointsEntries folds the attempt history into rows with cumulative
// points
func buildPointsEntries(history []models.AttemptSummary) []PointsEntry {
	entries := make([]PointsEntry, 0, len(history))
	total := 0
	for _, h := range history {
		total += h.Score
		entries = append(entries, PointsEntry{
			Time:       h.Time,
			Score:      h.Score,
			Cumulative: total,
		})
	}
	return entries
}
