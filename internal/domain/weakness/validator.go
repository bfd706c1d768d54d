package weakness

import (
	"time"

	"github.com/okian/leetlens/internal/domain/model"
)

// DefaultCacheTTLHours is how long a weakness computation stays reusable.
const DefaultCacheTTLHours = 6.0

// Reason explains why a cached weakness result was accepted or rejected.
type Reason string

// Validation outcomes, one per rejection path plus the accept path.
const (
	ReasonOK               Reason = "ok"
	ReasonNoCache          Reason = "no cache"
	ReasonNoResult         Reason = "no result in cache"
	ReasonNoTimestamp      Reason = "no lastCalculated"
	ReasonInvalidTimestamp Reason = "invalid lastCalculated"
	ReasonCountMismatch    Reason = "submission count mismatch"
	ReasonExpired          Reason = "cache too old"
)

// Validation is the outcome of a cache check. HoursSince is nil when the
// cached timestamp was absent or unparsable.
type Validation struct {
	Valid      bool
	HoursSince *float64
	Reason     Reason
}

// Validate decides whether a cached weak-topic result may be reused. It is a
// pure function: no side effects, all inputs explicit.
//
// Any submission-count discrepancy invalidates, not just growth: removed or
// edited history must also force a recompute.
func Validate(cache *model.WeakTopicCache, currentSubmissionCount int, ttlHours float64, now time.Time) Validation {
	if cache == nil {
		return Validation{Reason: ReasonNoCache}
	}
	if cache.Result == nil {
		return Validation{Reason: ReasonNoResult}
	}
	if cache.LastCalculated == "" {
		return Validation{Reason: ReasonNoTimestamp}
	}

	last, err := time.Parse(time.RFC3339, cache.LastCalculated)
	if err != nil {
		return Validation{Reason: ReasonInvalidTimestamp}
	}

	hours := now.Sub(last).Hours()

	if cache.SubmissionCount != currentSubmissionCount {
		return Validation{HoursSince: &hours, Reason: ReasonCountMismatch}
	}
	if hours >= ttlHours {
		return Validation{HoursSince: &hours, Reason: ReasonExpired}
	}

	return Validation{Valid: true, HoursSince: &hours, Reason: ReasonOK}
}
