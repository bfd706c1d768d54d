package weakness_test

import (
	"testing"
	"time"

	"github.com/okian/leetlens/internal/domain/model"
	weakness "github.com/okian/leetlens/internal/domain/weakness"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	now := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	result := &model.WeakTopicResult{Topics: map[string]float64{"graph": 2.3}}

	freshCache := func() *model.WeakTopicCache {
		return &model.WeakTopicCache{
			Result:          result,
			LastCalculated:  now.Add(-2 * time.Hour).Format(time.RFC3339),
			SubmissionCount: 40,
		}
	}

	Convey("Given a fresh, consistent cache", t, func() {
		v := weakness.Validate(freshCache(), 40, weakness.DefaultCacheTTLHours, now)

		Convey("Then it validates with its age reported", func() {
			So(v.Valid, ShouldBeTrue)
			So(v.Reason, ShouldEqual, weakness.ReasonOK)
			So(v.HoursSince, ShouldNotBeNil)
			So(*v.HoursSince, ShouldAlmostEqual, 2.0, 0.01)
		})
	})

	Convey("Given no cache at all", t, func() {
		v := weakness.Validate(nil, 40, weakness.DefaultCacheTTLHours, now)
		So(v.Valid, ShouldBeFalse)
		So(v.Reason, ShouldEqual, weakness.ReasonNoCache)
		So(v.HoursSince, ShouldBeNil)
	})

	Convey("Given a cache without a result", t, func() {
		c := freshCache()
		c.Result = nil
		v := weakness.Validate(c, 40, weakness.DefaultCacheTTLHours, now)
		So(v.Valid, ShouldBeFalse)
		So(v.Reason, ShouldEqual, weakness.ReasonNoResult)
	})

	Convey("Given a cache without a timestamp", t, func() {
		c := freshCache()
		c.LastCalculated = ""
		v := weakness.Validate(c, 40, weakness.DefaultCacheTTLHours, now)
		So(v.Valid, ShouldBeFalse)
		So(v.Reason, ShouldEqual, weakness.ReasonNoTimestamp)
		So(v.HoursSince, ShouldBeNil)
	})

	Convey("Given a cache with an unparsable timestamp", t, func() {
		c := freshCache()
		c.LastCalculated = "last tuesday"
		v := weakness.Validate(c, 40, weakness.DefaultCacheTTLHours, now)
		So(v.Valid, ShouldBeFalse)
		So(v.Reason, ShouldEqual, weakness.ReasonInvalidTimestamp)
		So(v.HoursSince, ShouldBeNil)
	})

	Convey("Given a submission count that moved", t, func() {
		Convey("When the user solved one more problem", func() {
			v := weakness.Validate(freshCache(), 41, weakness.DefaultCacheTTLHours, now)
			So(v.Valid, ShouldBeFalse)
			So(v.Reason, ShouldEqual, weakness.ReasonCountMismatch)
		})

		Convey("When history shrank", func() {
			v := weakness.Validate(freshCache(), 39, weakness.DefaultCacheTTLHours, now)
			So(v.Valid, ShouldBeFalse)
			So(v.Reason, ShouldEqual, weakness.ReasonCountMismatch)
		})
	})

	Convey("Given an expired cache", t, func() {
		c := freshCache()
		c.LastCalculated = now.Add(-7 * time.Hour).Format(time.RFC3339)
		v := weakness.Validate(c, 40, weakness.DefaultCacheTTLHours, now)

		Convey("Then it rejects with the age reported", func() {
			So(v.Valid, ShouldBeFalse)
			So(v.Reason, ShouldEqual, weakness.ReasonExpired)
			So(v.HoursSince, ShouldNotBeNil)
			So(*v.HoursSince, ShouldAlmostEqual, 7.0, 0.01)
		})
	})

	Convey("Given a cache exactly at the TTL boundary", t, func() {
		c := freshCache()
		c.LastCalculated = now.Add(-6 * time.Hour).Format(time.RFC3339)
		v := weakness.Validate(c, 40, weakness.DefaultCacheTTLHours, now)

		Convey("Then the boundary counts as expired", func() {
			So(v.Valid, ShouldBeFalse)
			So(v.Reason, ShouldEqual, weakness.ReasonExpired)
		})
	})

	Convey("Given a count mismatch on an expired cache", t, func() {
		c := freshCache()
		c.LastCalculated = now.Add(-10 * time.Hour).Format(time.RFC3339)
		v := weakness.Validate(c, 99, weakness.DefaultCacheTTLHours, now)

		Convey("Then the count mismatch wins the reason", func() {
			So(v.Reason, ShouldEqual, weakness.ReasonCountMismatch)
		})
	})
}
