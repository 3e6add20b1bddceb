package battleship

import (
	"math"

	"github.com/dariubs/percent"
)

type MatchStats struct {
	TotalTurns    int `json:"total_turns"`
	HumanAttacks  int `json:"human_attacks"`
	HumanHits     int `json:"human_hits"`
	HumanAccuracy int `json:"human_accuracy"`
}

// Stats counts every logged attack, repeats included, and rounds the
// human accuracy to a whole percent.
func (m *Match) Stats() MatchStats {
	stats := MatchStats{TotalTurns: len(m.history)}
	for _, record := range m.history {
		if record.ActorKind != PlayerKindHuman {
			continue
		}
		stats.HumanAttacks++
		if record.Outcome.Landed() {
			stats.HumanHits++
		}
	}
	if stats.HumanAttacks > 0 {
		stats.HumanAccuracy = int(math.Round(percent.PercentOf(stats.HumanHits, stats.HumanAttacks)))
	}
	return stats
}
