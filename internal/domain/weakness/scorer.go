// Package weakness turns a user's submission history into a ranked
// weak-topic score map.
package weakness

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/okian/leetlens/internal/domain/model"
	"github.com/okian/leetlens/internal/domain/weights"
)

// Default scoring configuration constants.
const (
	defaultDecayDays = 30.0
	defaultMaxTopics = 15
	minOccurrences   = 2

	// A solved problem only signals weakness when it took repeated attempts.
	highSubmissionThreshold = 4
	solvedBaseWeight        = 0.7
	failedBaseWeight        = 1.0

	hoursPerDay = 24

	algorithmName = "bayesian_weighted_v3"
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithClock overrides the time source, used by tests for determinism.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDecayDays sets the exponential time-decay constant in days.
func WithDecayDays(days float64) Option {
	return func(s *Scorer) {
		if days > 0 {
			s.decayDays = days
		}
	}
}

// WithMaxTopics caps how many topics the result keeps.
func WithMaxTopics(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.maxTopics = n
		}
	}
}

// Scorer computes weak-topic scores against an immutable weight table.
type Scorer struct {
	table     *weights.Table
	now       func() time.Time
	decayDays float64
	maxTopics int
}

// NewScorer creates a scorer bound to a weight table.
func NewScorer(table *weights.Table, opts ...Option) *Scorer {
	s := &Scorer{
		table:     table,
		now:       time.Now,
		decayDays: defaultDecayDays,
		maxTopics: defaultMaxTopics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type weightedRecord struct {
	record     model.SubmissionRecord
	baseWeight float64
}

// Score produces the ranked weak-topic map for the given history. Empty
// input yields an empty topic map; it is not an error condition.
func (s *Scorer) Score(_ context.Context, solved, failed []model.SubmissionRecord) model.WeakTopicResult {
	pool := make([]weightedRecord, 0, len(solved)+len(failed))
	for _, p := range solved {
		// Cleanly solved problems carry no weakness signal.
		if p.NumSubmitted >= highSubmissionThreshold {
			pool = append(pool, weightedRecord{record: p, baseWeight: solvedBaseWeight})
		}
	}
	for _, p := range failed {
		pool = append(pool, weightedRecord{record: p, baseWeight: failedBaseWeight})
	}

	now := s.now()
	scores := make(map[string]float64)
	for _, wr := range pool {
		if len(wr.record.TopicTags) == 0 {
			continue
		}

		timeWeight := 1.0
		if !wr.record.LastSubmittedAt.IsZero() {
			days := now.Sub(wr.record.LastSubmittedAt).Hours() / hoursPerDay
			timeWeight = math.Exp(-days / s.decayDays)
		}

		for _, tag := range wr.record.TopicTags {
			topic := weights.NormalizeTopic(tag)
			if s.table.Filtered(topic) {
				continue
			}
			scores[topic] += wr.baseWeight * timeWeight * s.table.Weight(topic)
		}
	}

	// Drop topics below the minimum accumulated signal.
	minScore := minOccurrences * 0.5
	type topicScore struct {
		topic string
		score float64
	}
	kept := make([]topicScore, 0, len(scores))
	for topic, score := range scores {
		if score >= minScore {
			kept = append(kept, topicScore{topic: topic, score: round2(score)})
		}
	}

	// Descending by score; equal scores break by topic key so the output is
	// deterministic across runs.
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].topic < kept[j].topic
	})
	if len(kept) > s.maxTopics {
		kept = kept[:s.maxTopics]
	}

	topics := make(map[string]float64, len(kept))
	for _, ts := range kept {
		topics[ts.topic] = ts.score
	}

	minRange, maxRange := s.table.ScoreRange()
	return model.WeakTopicResult{
		Topics:                topics,
		TotalProblemsAnalyzed: len(pool),
		Algorithm:             algorithmName,
		WeightsInfo: model.WeightsInfo{
			TotalTopics:         s.table.Len(),
			ScoreRange:          model.ScoreRange{Min: minRange, Max: maxRange},
			FilteredTopicsCount: s.table.FilteredCount(),
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
