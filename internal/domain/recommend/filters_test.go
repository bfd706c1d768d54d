package recommend_test

import (
	"testing"

	json "github.com/goccy/go-json"

	recommend "github.com/okian/leetlens/internal/domain/recommend"
	. "github.com/smartystreets/goconvey/convey"
)

func f64(v float64) *float64 { return &v }

func TestDifficultyFilter(t *testing.T) {
	Convey("Given the request's dynamic difficulty shapes", t, func() {
		Convey("When the field is a single string", func() {
			var f recommend.Filters
			err := json.Unmarshal([]byte(`{"preferredDifficulty": "medium"}`), &f)
			So(err, ShouldBeNil)

			levels, err := f.PreferredDifficulty.Canonical()
			So(err, ShouldBeNil)
			So(levels, ShouldResemble, []string{"Medium"})
		})

		Convey("When the field is an array", func() {
			var f recommend.Filters
			err := json.Unmarshal([]byte(`{"preferredDifficulty": ["EASY", "Hard"]}`), &f)
			So(err, ShouldBeNil)

			levels, err := f.PreferredDifficulty.Canonical()
			So(err, ShouldBeNil)
			So(levels, ShouldResemble, []string{"Easy", "Hard"})
		})

		Convey("When the field is null or omitted", func() {
			var f recommend.Filters
			So(json.Unmarshal([]byte(`{"preferredDifficulty": null}`), &f), ShouldBeNil)
			So(f.PreferredDifficulty.IsZero(), ShouldBeTrue)

			var g recommend.Filters
			So(json.Unmarshal([]byte(`{}`), &g), ShouldBeNil)
			So(g.PreferredDifficulty.IsZero(), ShouldBeTrue)
		})

		Convey("When the field holds an unknown token", func() {
			var f recommend.Filters
			So(json.Unmarshal([]byte(`{"preferredDifficulty": "insane"}`), &f), ShouldBeNil)

			_, err := f.PreferredDifficulty.Canonical()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "insane")
		})

		Convey("When the field is a number", func() {
			var f recommend.Filters
			err := json.Unmarshal([]byte(`{"preferredDifficulty": 3}`), &f)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestFiltersValidate(t *testing.T) {
	Convey("Given filter bodies", t, func() {
		Convey("Then an empty body is valid and uses the default offsets", func() {
			So(recommend.Filters{}.Validate(), ShouldBeNil)
		})

		Convey("Then an inverted window is rejected", func() {
			f := recommend.Filters{MinRating: f64(200), MaxRating: f64(100)}
			So(f.Validate(), ShouldNotBeNil)
		})

		Convey("Then an equal window is rejected", func() {
			f := recommend.Filters{MinRating: f64(100), MaxRating: f64(100)}
			So(f.Validate(), ShouldNotBeNil)
		})

		Convey("Then a bad difficulty fails validation", func() {
			var f recommend.Filters
			So(json.Unmarshal([]byte(`{"preferredDifficulty": "nope"}`), &f), ShouldBeNil)
			So(f.Validate(), ShouldNotBeNil)
		})
	})
}

func TestWindow(t *testing.T) {
	Convey("Given a user rated 1500", t, func() {
		Convey("When no offsets are supplied", func() {
			lo, hi := recommend.Window(1500, recommend.Filters{}, false)
			So(lo, ShouldEqual, 1550)
			So(hi, ShouldEqual, 1600)
		})

		Convey("When custom offsets are supplied", func() {
			f := recommend.Filters{MinRating: f64(-50), MaxRating: f64(150)}
			lo, hi := recommend.Window(1500, f, false)
			So(lo, ShouldEqual, 1450)
			So(hi, ShouldEqual, 1650)
		})

		Convey("When push mode is on", func() {
			f := recommend.Filters{MinRating: f64(-50), MaxRating: f64(150)}
			lo, hi := recommend.Window(1500, f, true)

			Convey("Then the fixed push window overrides the body", func() {
				So(lo, ShouldEqual, 1600)
				So(hi, ShouldEqual, 1700)
			})
		})
	})
}

func TestClampLimit(t *testing.T) {
	Convey("Given requested batch sizes", t, func() {
		So(recommend.ClampLimit(0), ShouldEqual, recommend.DefaultLimit)
		So(recommend.ClampLimit(-3), ShouldEqual, recommend.DefaultLimit)
		So(recommend.ClampLimit(1), ShouldEqual, 1)
		So(recommend.ClampLimit(25), ShouldEqual, 25)
		So(recommend.ClampLimit(26), ShouldEqual, recommend.MaxLimit)
	})

	Convey("Given caller-supplied bounds", t, func() {
		So(recommend.ClampLimitBounds(0, 3, 5), ShouldEqual, 3)
		So(recommend.ClampLimitBounds(4, 3, 5), ShouldEqual, 4)
		So(recommend.ClampLimitBounds(25, 3, 5), ShouldEqual, 5)

		Convey("Then non-positive bounds fall back to the defaults", func() {
			So(recommend.ClampLimitBounds(0, 0, 0), ShouldEqual, recommend.DefaultLimit)
			So(recommend.ClampLimitBounds(100, 0, 0), ShouldEqual, recommend.MaxLimit)
		})
	})
}
