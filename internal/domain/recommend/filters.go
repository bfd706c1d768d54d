// Package recommend scores problem candidates against a user's weak topics.
package recommend

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Rating-window policy constants, expressed as offsets off the user rating.
const (
	DefaultMinOffset = 50.0
	DefaultMaxOffset = 100.0

	// Push mode overrides the filter body with a fixed harder window.
	PushMinOffset = 100.0
	PushMaxOffset = 200.0

	DefaultLimit = 12
	MaxLimit     = 25
)

// validDifficulties is the closed set of accepted difficulty tokens.
var validDifficulties = map[string]string{
	"easy":   "Easy",
	"medium": "Medium",
	"hard":   "Hard",
}

// DifficultyFilter is a tagged variant over the request's dynamic shape:
// omitted, a single difficulty string, or a list of them. The variant is
// resolved once at the JSON boundary.
type DifficultyFilter struct {
	levels []string
}

// UnmarshalJSON accepts null, a string, or an array of strings.
func (d *DifficultyFilter) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` {
		d.levels = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		d.levels = []string{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("%w: preferredDifficulty must be a string or string array", ErrInvalidInput)
	}
	d.levels = many
	return nil
}

// MarshalJSON renders the canonical array form.
func (d DifficultyFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.levels)
}

// Levels returns the canonical difficulty names, or nil when unset.
func (d DifficultyFilter) Levels() []string { return d.levels }

// IsZero reports whether no difficulty preference was supplied.
func (d DifficultyFilter) IsZero() bool { return len(d.levels) == 0 }

// Canonical validates each token case-insensitively and returns the
// canonical casing. Unknown tokens fail with ErrInvalidInput.
func (d DifficultyFilter) Canonical() ([]string, error) {
	if len(d.levels) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(d.levels))
	for _, level := range d.levels {
		canonical, ok := validDifficulties[strings.ToLower(strings.TrimSpace(level))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, level)
		}
		out = append(out, canonical)
	}
	return out, nil
}

// Filters is the recommendation request body. Min and max ratings are
// relative offsets off the user's current rating.
type Filters struct {
	MinRating           *float64         `json:"minRating"`
	MaxRating           *float64         `json:"maxRating"`
	PreferredDifficulty DifficultyFilter `json:"preferredDifficulty"`
	IsPremium           bool             `json:"isPremium"`
}

// offsets resolves the configured offsets, applying defaults for omitted
// fields.
func (f Filters) offsets() (minOff, maxOff float64) {
	minOff, maxOff = DefaultMinOffset, DefaultMaxOffset
	if f.MinRating != nil {
		minOff = *f.MinRating
	}
	if f.MaxRating != nil {
		maxOff = *f.MaxRating
	}
	return minOff, maxOff
}

// Validate rejects malformed filters before any data access.
func (f Filters) Validate() error {
	minOff, maxOff := f.offsets()
	if minOff >= maxOff {
		return fmt.Errorf("%w: minRating (%v) must be below maxRating (%v)", ErrInvalidInput, minOff, maxOff)
	}
	if _, err := f.PreferredDifficulty.Canonical(); err != nil {
		return err
	}
	return nil
}

// Window computes the absolute rating window. Push mode applies the fixed
// push-difficulty policy and overrides the filter body entirely.
func Window(userRating float64, f Filters, push bool) (lo, hi float64) {
	if push {
		return userRating + PushMinOffset, userRating + PushMaxOffset
	}
	minOff, maxOff := f.offsets()
	return userRating + minOff, userRating + maxOff
}

// ClampLimit normalizes a requested batch size into [1, MaxLimit], applying
// the default when unset.
func ClampLimit(limit int) int {
	return ClampLimitBounds(limit, DefaultLimit, MaxLimit)
}

// ClampLimitBounds is ClampLimit with caller-supplied bounds. Non-positive
// bounds fall back to the package defaults.
func ClampLimitBounds(limit, def, max int) int {
	if def <= 0 {
		def = DefaultLimit
	}
	if max <= 0 {
		max = MaxLimit
	}
	switch {
	case limit <= 0:
		return def
	case limit > max:
		return max
	default:
		return limit
	}
}
