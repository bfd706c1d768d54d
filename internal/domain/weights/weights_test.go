package weights_test

import (
	"errors"
	"testing"

	weights "github.com/okian/leetlens/internal/domain/weights"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizeTopic(t *testing.T) {
	Convey("Given topic names in various shapes", t, func() {
		cases := map[string]string{
			"Dynamic Programming": "dynamic-programming",
			"hash_table":          "hash-table",
			"  Binary Search  ":   "binary-search",
			"Graph":               "graph",
			"two_pointers  trick": "two-pointers-trick",
		}
		Convey("Then each normalizes to the artifact key convention", func() {
			for in, want := range cases {
				So(weights.NormalizeTopic(in), ShouldEqual, want)
			}
		})
	})
}

func TestLoadArtifact(t *testing.T) {
	Convey("Given a well-formed artifact", t, func() {
		artifact := []byte(`{
			"dynamic programming": {"count": 120, "mean": 1900, "score": 10},
			"greedy":              {"count": 80,  "mean": 1600, "score": 6},
			"two pointers":        {"count": 50,  "mean": 1400, "score": 2},
			"array":               {"count": 400, "mean": 1200, "score": 2}
		}`)
		table := weights.Load("weights.json", weights.WithReadFile(func(string) ([]byte, error) {
			return artifact, nil
		}))

		Convey("Then it is not the fallback table", func() {
			So(table.Fallback(), ShouldBeFalse)
			So(table.Len(), ShouldEqual, 4)
		})

		Convey("Then weights normalize into [0.5, 3.0]", func() {
			// score 10 is the max, score 2 the min.
			So(table.Weight("dynamic programming"), ShouldEqual, 3.0)
			So(table.Weight("two pointers"), ShouldEqual, 0.5)
			So(table.Weight("greedy"), ShouldEqual, 1.75)
		})

		Convey("Then unknown topics default to 1.0", func() {
			So(table.Weight("quantum-annealing"), ShouldEqual, 1.0)
		})

		Convey("Then the raw score range is preserved", func() {
			lo, hi := table.ScoreRange()
			So(lo, ShouldEqual, 2.0)
			So(hi, ShouldEqual, 10.0)
		})

		Convey("Then low-weight and stoplisted topics are filtered", func() {
			So(table.Filtered("two pointers"), ShouldBeTrue) // weight 0.5 < 0.8
			So(table.Filtered("array"), ShouldBeTrue)        // stoplist
			So(table.Filtered("hash table"), ShouldBeTrue)   // stoplist, space form
			So(table.Filtered("Simulation"), ShouldBeTrue)
			So(table.Filtered("greedy"), ShouldBeFalse)
			So(table.Filtered("dynamic programming"), ShouldBeFalse)
		})
	})

	Convey("Given a missing artifact file", t, func() {
		table := weights.Load("nope.json", weights.WithReadFile(func(string) ([]byte, error) {
			return nil, errors.New("no such file")
		}))

		Convey("Then the fallback table is used and reported", func() {
			So(table.Fallback(), ShouldBeTrue)
			So(table.Weight("dynamic programming"), ShouldEqual, 2.5)
			So(table.Weight("trie"), ShouldEqual, 2.4)
		})

		Convey("Then the stoplist still applies", func() {
			So(table.Filtered("brute-force"), ShouldBeTrue)
			So(table.Filtered("hash table"), ShouldBeTrue)
		})
	})

	Convey("Given a degenerate artifact with one usable score", t, func() {
		artifact := []byte(`{
			"graph": {"count": 10, "mean": 1500, "score": 4},
			"junk":  {"count": 10, "mean": 1500, "score": 0}
		}`)
		table := weights.Load("weights.json", weights.WithReadFile(func(string) ([]byte, error) {
			return artifact, nil
		}))

		Convey("Then loading falls back rather than dividing by zero", func() {
			So(table.Fallback(), ShouldBeTrue)
		})
	})

	Convey("Given a malformed artifact", t, func() {
		table := weights.Load("weights.json", weights.WithReadFile(func(string) ([]byte, error) {
			return []byte("{not json"), nil
		}))

		Convey("Then loading falls back", func() {
			So(table.Fallback(), ShouldBeTrue)
		})
	})
}
