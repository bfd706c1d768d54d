package contest_test

import (
	"testing"

	contest "github.com/okian/leetlens/internal/contest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSlugify(t *testing.T) {
	Convey("Given contest titles", t, func() {
		cases := map[string]string{
			"Weekly Contest 371":            "weekly-contest-371",
			"Biweekly Contest 117":          "biweekly-contest-117",
			"  Weekly   Contest  1  ":       "weekly-contest-1",
			"Weekly Contest #42!":           "weekly-contest-42",
			"weekly-contest-9":              "weekly-contest-9",
			"--- odd --- title ---":         "odd-title",
			"":                              "",
			"!!!":                           "",
			"Tencent Cup (Quarter Finals)":  "tencent-cup-quarter-finals",
		}
		Convey("Then each maps to its URL slug", func() {
			for in, want := range cases {
				So(contest.Slugify(in), ShouldEqual, want)
			}
		})
	})
}
