package pool_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	pool "github.com/okian/leetlens/pkg/pool"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMap(t *testing.T) {
	Convey("Given items whose latencies invert their order", t, func() {
		items := []int{5, 4, 3, 2, 1}

		results := pool.Map(context.Background(), items, 5, func(_ context.Context, item, _ int) (int, error) {
			time.Sleep(time.Duration(item) * 5 * time.Millisecond)
			return item * 10, nil
		})

		Convey("Then results stay aligned with input positions", func() {
			So(len(results), ShouldEqual, 5)
			for i, item := range items {
				So(results[i].Err, ShouldBeNil)
				So(results[i].Value, ShouldEqual, item*10)
			}
		})
	})

	Convey("Given a concurrency bound below the item count", t, func() {
		var inFlight, peak atomic.Int64

		items := make([]int, 20)
		pool.Map(context.Background(), items, 3, func(_ context.Context, _, _ int) (int, error) {
			cur := inFlight.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return 0, nil
		})

		Convey("Then no more than three calls run at once", func() {
			So(peak.Load(), ShouldBeLessThanOrEqualTo, 3)
		})
	})

	Convey("Given a fn that fails for some items", t, func() {
		boom := errors.New("boom")
		items := []int{0, 1, 2, 3}

		results := pool.Map(context.Background(), items, 2, func(_ context.Context, item, _ int) (int, error) {
			if item%2 == 1 {
				return 0, boom
			}
			return item, nil
		})

		Convey("Then per-item errors stay in their own slots", func() {
			So(results[0].Err, ShouldBeNil)
			So(errors.Is(results[1].Err, boom), ShouldBeTrue)
			So(results[2].Err, ShouldBeNil)
			So(errors.Is(results[3].Err, boom), ShouldBeTrue)
		})
	})

	Convey("Given a fn that panics on one item", t, func() {
		items := []int{0, 1, 2}

		results := pool.Map(context.Background(), items, 1, func(_ context.Context, item, _ int) (int, error) {
			if item == 1 {
				panic("bad record")
			}
			return item, nil
		})

		Convey("Then the panic is confined to its result slot", func() {
			So(results[0].Err, ShouldBeNil)
			So(results[1].Err, ShouldNotBeNil)
			So(results[1].Err.Error(), ShouldContainSubstring, "panicked")
			So(results[2].Err, ShouldBeNil)
		})
	})

	Convey("Given a canceled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		items := []int{0, 1, 2}
		results := pool.Map(ctx, items, 2, func(context.Context, int, int) (int, error) {
			return 0, nil
		})

		Convey("Then every item records the cancellation", func() {
			for _, r := range results {
				So(errors.Is(r.Err, context.Canceled), ShouldBeTrue)
			}
		})
	})

	Convey("Given no items", t, func() {
		results := pool.Map(context.Background(), nil, 4, func(context.Context, int, int) (int, error) {
			return 0, nil
		})
		So(results, ShouldBeEmpty)
	})
}
