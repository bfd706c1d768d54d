package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	metrics "github.com/okian/leetlens/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager with its own registry", t, func() {
		m := metrics.NewManager()

		Convey("Then gathering the fresh registry succeeds", func() {
			_, err := m.Registry().Gather()
			So(err, ShouldBeNil)
		})

		Convey("Then a custom registry is honored", func() {
			reg := prometheus.NewRegistry()
			custom := metrics.NewManager(metrics.WithRegistry(reg))
			So(custom.Registry(), ShouldEqual, reg)
		})

		Convey("Then namespace and subsystem options shape metric names", func() {
			reg := prometheus.NewRegistry()
			metrics.NewManager(
				metrics.WithRegistry(reg),
				metrics.WithNamespace("testns"),
				metrics.WithSubsystem("unit"),
			)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			// Counters without observations gather empty; registering a
			// second manager on the same names would panic instead.
			So(families, ShouldNotBeNil)
		})
	})

	Convey("Given the global record helpers", t, func() {
		metrics.RecordHTTPRequest("/healthz", "GET", "200")
		metrics.RecordHTTPRequestDuration("/healthz", "GET", "200", 1.2)
		metrics.RecordWeakCacheHit()
		metrics.RecordWeakCacheMiss("cache too old")
		metrics.RecordRecommendationBatch(12)
		metrics.RecordContestCacheHit()
		metrics.RecordContestStaleServe()
		metrics.RecordContestRebuild("success", 1500)
		metrics.RecordRemoteCall("user_status", "ok", 80)

		Convey("Then the default registry carries the observations", func() {
			families, err := metrics.Default().Registry().Gather()
			So(err, ShouldBeNil)

			names := make(map[string]bool, len(families))
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["leetlens_engine_http_requests_total"], ShouldBeTrue)
			So(names["leetlens_engine_weak_cache_misses_total"], ShouldBeTrue)
			So(names["leetlens_engine_contest_rebuilds_total"], ShouldBeTrue)
			So(names["leetlens_engine_remote_calls_total"], ShouldBeTrue)
		})
	})
}
