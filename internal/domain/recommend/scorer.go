package recommend

import (
	"sort"

	"github.com/okian/leetlens/internal/domain/model"
	"github.com/okian/leetlens/internal/domain/weights"
)

// Scoring multipliers.
const (
	// exactMatchBonus rewards candidates whose every tag is a weak topic.
	exactMatchBonus = 1.15

	// HistoryDepth bounds the anti-repeat recommendation history.
	HistoryDepth = 3

	// CandidateCap bounds corpus retrieval. Ranking fairness beyond this
	// bound is not guaranteed; documented limitation.
	CandidateCap = 500
)

// ExclusionSet returns the problem ids that must not be recommended again:
// everything already solved plus the last few persisted batches.
func ExclusionSet(solved []model.SubmissionRecord, history [][]string) map[string]struct{} {
	excluded := make(map[string]struct{}, len(solved))
	for _, p := range solved {
		excluded[p.ProblemID] = struct{}{}
	}
	for _, batch := range history {
		for _, id := range batch {
			excluded[id] = struct{}{}
		}
	}
	return excluded
}

// ScoreCandidates ranks candidates against the weak-topic map and truncates
// to limit. Candidates with no matched tags are dropped. Ties are broken by
// input order (insertion-order-stable sort); that ordering is a contract,
// not an accident.
func ScoreCandidates(weakTopics map[string]float64, candidates []model.Problem, limit int) []model.RecommendationEntry {
	entries := make([]model.RecommendationEntry, 0, len(candidates))
	for _, c := range candidates {
		if len(c.TopicTags) == 0 {
			continue
		}

		var matched []string
		var matchedWeightSum float64
		for _, tag := range c.TopicTags {
			topic := weights.NormalizeTopic(tag)
			if score, ok := weakTopics[topic]; ok {
				matched = append(matched, topic)
				matchedWeightSum += score
			}
		}
		if len(matched) == 0 {
			continue
		}

		totalTags := len(c.TopicTags)
		matchFraction := float64(len(matched)) / float64(totalTags)
		brevityBonus := 1.0 + 1.0/float64(totalTags)
		exactBonus := 1.0
		if len(matched) == totalTags {
			exactBonus = exactMatchBonus
		}

		entries = append(entries, model.RecommendationEntry{
			ID:               c.ID,
			Title:            c.Title,
			Slug:             c.TitleSlug,
			Rating:           c.Rating,
			Difficulty:       c.Difficulty,
			Tags:             c.TopicTags,
			MatchedTags:      matched,
			MatchedWeightSum: matchedWeightSum,
			MatchFraction:    matchFraction,
			Weight:           matchedWeightSum * matchFraction * brevityBonus * exactBonus,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// PushHistory appends a new batch's ids onto the bounded history ring,
// evicting the oldest batches beyond HistoryDepth.
func PushHistory(history [][]string, batch []model.RecommendationEntry) [][]string {
	ids := make([]string, len(batch))
	for i, e := range batch {
		ids[i] = e.ID
	}
	history = append(history, ids)
	if len(history) > HistoryDepth {
		history = history[len(history)-HistoryDepth:]
	}
	return history
}
