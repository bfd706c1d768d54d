package weakness_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/leetlens/internal/domain/model"
	weakness "github.com/okian/leetlens/internal/domain/weakness"
	weights "github.com/okian/leetlens/internal/domain/weights"
	. "github.com/smartystreets/goconvey/convey"
)

func fallbackTable() *weights.Table {
	return weights.Load("", weights.WithReadFile(func(string) ([]byte, error) {
		return nil, errors.New("unavailable")
	}))
}

func TestScorer_Score(t *testing.T) {
	now := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	Convey("Given a scorer over the fallback weight table", t, func() {
		scorer := weakness.NewScorer(fallbackTable(), weakness.WithClock(clock))
		ctx := context.Background()

		Convey("When the history is empty", func() {
			result := scorer.Score(ctx, nil, nil)

			Convey("Then the topic map is empty but metadata is populated", func() {
				So(result.Topics, ShouldBeEmpty)
				So(result.TotalProblemsAnalyzed, ShouldEqual, 0)
				So(result.Algorithm, ShouldEqual, "bayesian_weighted_v3")
				So(result.WeightsInfo.TotalTopics, ShouldEqual, 13)
			})
		})

		Convey("When a solved problem took many attempts", func() {
			solved := []model.SubmissionRecord{{
				ProblemID:    "146",
				TopicTags:    []string{"Tree"},
				NumSubmitted: 5,
			}}
			result := scorer.Score(ctx, solved, nil)

			Convey("Then it contributes at the solved base weight", func() {
				// 0.7 * 1.0 (no timestamp, no decay) * 2.0 (tree)
				So(result.Topics["tree"], ShouldEqual, 1.4)
				So(result.TotalProblemsAnalyzed, ShouldEqual, 1)
			})
		})

		Convey("When a solved problem went in cleanly", func() {
			solved := []model.SubmissionRecord{{
				ProblemID:    "1",
				TopicTags:    []string{"Tree"},
				NumSubmitted: 1,
			}}
			result := scorer.Score(ctx, solved, nil)

			Convey("Then it carries no weakness signal at all", func() {
				So(result.Topics, ShouldBeEmpty)
				So(result.TotalProblemsAnalyzed, ShouldEqual, 0)
			})
		})

		Convey("When a problem was failed", func() {
			failed := []model.SubmissionRecord{{
				ProblemID: "72",
				TopicTags: []string{"Dynamic Programming"},
			}}
			result := scorer.Score(ctx, nil, failed)

			Convey("Then it contributes at full base weight", func() {
				So(result.Topics["dynamic-programming"], ShouldEqual, 2.5)
			})
		})

		Convey("When a failed problem is a month old", func() {
			failed := []model.SubmissionRecord{{
				ProblemID:       "72",
				TopicTags:       []string{"Dynamic Programming"},
				LastSubmittedAt: now.Add(-30 * 24 * time.Hour),
			}}
			result := scorer.Score(ctx, nil, failed)

			Convey("Then exponential decay discounts it below the floor", func() {
				// 1.0 * e^-1 * 2.5 == 0.92 after rounding, under the 1.0 floor.
				So(result.Topics, ShouldNotContainKey, "dynamic-programming")
				So(result.TotalProblemsAnalyzed, ShouldEqual, 1)
			})

			Convey("And a second failure on the same topic keeps it above the floor", func() {
				result := scorer.Score(ctx, nil, append(failed, failed[0]))
				So(result.Topics["dynamic-programming"], ShouldEqual, 1.84)
			})
		})

		Convey("When tags include filtered topics", func() {
			failed := []model.SubmissionRecord{{
				ProblemID: "1",
				TopicTags: []string{"Array", "Hash Table", "Graph"},
			}}
			result := scorer.Score(ctx, nil, failed)

			Convey("Then only the unfiltered tag accumulates", func() {
				So(result.Topics, ShouldNotContainKey, "array")
				So(result.Topics, ShouldNotContainKey, "hash-table")
				So(result.Topics["graph"], ShouldEqual, 2.3)
			})
		})

		Convey("When two identical histories are scored", func() {
			failed := []model.SubmissionRecord{
				{ProblemID: "a", TopicTags: []string{"Graph", "Trie"}},
				{ProblemID: "b", TopicTags: []string{"Backtracking"}},
			}
			first := scorer.Score(ctx, nil, failed)
			second := scorer.Score(ctx, nil, failed)

			Convey("Then the results are identical", func() {
				So(second, ShouldResemble, first)
			})
		})
	})

	Convey("Given a scorer capped at two topics", t, func() {
		scorer := weakness.NewScorer(fallbackTable(),
			weakness.WithClock(clock), weakness.WithMaxTopics(2))

		Convey("When three topics tie on score", func() {
			failed := []model.SubmissionRecord{
				{ProblemID: "a", TopicTags: []string{"Tree"}},
				{ProblemID: "b", TopicTags: []string{"Heap"}},
				{ProblemID: "c", TopicTags: []string{"Binary Search"}},
			}
			result := scorer.Score(context.Background(), nil, failed)

			Convey("Then the cap keeps the alphabetically first topics", func() {
				So(len(result.Topics), ShouldEqual, 2)
				So(result.Topics, ShouldContainKey, "binary-search")
				So(result.Topics, ShouldContainKey, "heap")
				So(result.Topics, ShouldNotContainKey, "tree")
			})
		})
	})
}
