package recommend_test

import (
	"testing"

	"github.com/okian/leetlens/internal/domain/model"
	recommend "github.com/okian/leetlens/internal/domain/recommend"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExclusionSet(t *testing.T) {
	Convey("Given solved history and recommendation batches", t, func() {
		solved := []model.SubmissionRecord{{ProblemID: "1"}, {ProblemID: "42"}}
		history := [][]string{{"7", "42"}, {"99"}}

		set := recommend.ExclusionSet(solved, history)

		Convey("Then the union of ids is excluded", func() {
			So(set, ShouldContainKey, "1")
			So(set, ShouldContainKey, "42")
			So(set, ShouldContainKey, "7")
			So(set, ShouldContainKey, "99")
			So(len(set), ShouldEqual, 4)
		})
	})
}

func TestScoreCandidates(t *testing.T) {
	weak := map[string]float64{
		"dynamic-programming": 3.0,
		"graph":               2.0,
	}

	Convey("Given candidates overlapping the weak topics", t, func() {
		candidates := []model.Problem{
			{ID: "full", TopicTags: []string{"Dynamic Programming"}, Rating: 1600},
			{ID: "partial", TopicTags: []string{"Dynamic Programming", "Greedy"}, Rating: 1610},
			{ID: "none", TopicTags: []string{"Greedy", "Math"}, Rating: 1620},
			{ID: "untagged", Rating: 1630},
		}
		entries := recommend.ScoreCandidates(weak, candidates, 10)

		Convey("Then unmatched and untagged candidates are dropped", func() {
			So(len(entries), ShouldEqual, 2)
		})

		Convey("Then a full-overlap candidate outranks a partial one", func() {
			So(entries[0].ID, ShouldEqual, "full")
			// 3.0 * 1.0 match fraction * 2.0 brevity * 1.15 exact
			So(entries[0].Weight, ShouldAlmostEqual, 6.9, 1e-9)
			// 3.0 * 0.5 * 1.5, no exact bonus
			So(entries[1].Weight, ShouldAlmostEqual, 2.25, 1e-9)
		})

		Convey("Then matched tags come back normalized", func() {
			So(entries[1].MatchedTags, ShouldResemble, []string{"dynamic-programming"})
			So(entries[1].MatchFraction, ShouldEqual, 0.5)
		})
	})

	Convey("Given candidates that tie on weight", t, func() {
		candidates := []model.Problem{
			{ID: "earlier", TopicTags: []string{"Graph"}},
			{ID: "later", TopicTags: []string{"Graph"}},
		}
		entries := recommend.ScoreCandidates(weak, candidates, 10)

		Convey("Then input order is preserved for ties", func() {
			So(entries[0].ID, ShouldEqual, "earlier")
			So(entries[1].ID, ShouldEqual, "later")
		})
	})

	Convey("Given more matches than the limit", t, func() {
		candidates := make([]model.Problem, 0, 8)
		for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			candidates = append(candidates, model.Problem{ID: id, TopicTags: []string{"Graph"}})
		}
		entries := recommend.ScoreCandidates(weak, candidates, 3)

		Convey("Then the batch truncates to the limit", func() {
			So(len(entries), ShouldEqual, 3)
			So(entries[0].ID, ShouldEqual, "a")
		})
	})
}

func TestPushHistory(t *testing.T) {
	batch := func(ids ...string) []model.RecommendationEntry {
		out := make([]model.RecommendationEntry, len(ids))
		for i, id := range ids {
			out[i] = model.RecommendationEntry{ID: id}
		}
		return out
	}

	Convey("Given an empty history", t, func() {
		h := recommend.PushHistory(nil, batch("1", "2"))
		So(h, ShouldResemble, [][]string{{"1", "2"}})
	})

	Convey("Given a history at capacity", t, func() {
		h := [][]string{{"a"}, {"b"}, {"c"}}
		h = recommend.PushHistory(h, batch("d"))

		Convey("Then the oldest batch is evicted", func() {
			So(h, ShouldResemble, [][]string{{"b"}, {"c"}, {"d"}})
		})
	})

	Convey("Given an empty batch", t, func() {
		h := recommend.PushHistory([][]string{{"a"}}, nil)

		Convey("Then an empty round still occupies a slot", func() {
			So(h, ShouldResemble, [][]string{{"a"}, {}})
		})
	})
}
