// Package repository defines the user-record and problem-corpus store
// contracts and their sqlite implementation.
package repository

import (
	"context"

	"github.com/okian/leetlens/internal/domain/model"
)

// UserStore provides access to the durable per-user record.
type UserStore interface {
	// Get returns the record for a user id. Returns ErrNotFound for an
	// unknown user.
	Get(ctx context.Context, userID string) (*model.User, error)

	// UpsertSync replaces the profile fields and the solved-problem history
	// wholesale, keyed by leetcode username. Failed history, caches and
	// recommendation state are preserved. Returns the stored record.
	UpsertSync(ctx context.Context, user *model.User) (*model.User, error)

	// SaveWeakTopicCache persists a fresh weakness computation together
	// with the submission count it was derived from, as one update.
	SaveWeakTopicCache(ctx context.Context, userID string, cache *model.WeakTopicCache) error

	// SaveRecommendation overwrites the current batch and the anti-repeat
	// history ring in a single update, so a reader never observes one
	// without the other.
	SaveRecommendation(ctx context.Context, userID string, history [][]string, current []model.RecommendationEntry) error
}

// CandidateQuery describes a recommendation candidate retrieval.
type CandidateQuery struct {
	MinRating    float64
	MaxRating    float64
	Premium      bool
	Difficulties []string            // canonical names; empty means any
	WeakTopics   map[string]float64  // normalized topic keys
	ExcludeIDs   map[string]struct{} // solved + recent recommendations
	Limit        int
}

// ProblemStore provides read access to the problem corpus.
type ProblemStore interface {
	// GetByID returns one corpus entry or ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Problem, error)

	// RatingsByIDs batch-resolves ratings; ids absent from the corpus are
	// missing from the returned map.
	RatingsByIDs(ctx context.Context, ids []string) (map[string]float64, error)

	// FindCandidates returns problems inside the rating window matching
	// the premium flag, difficulty set and at least one weak topic, with
	// excluded ids dropped, capped at q.Limit.
	FindCandidates(ctx context.Context, q CandidateQuery) ([]model.Problem, error)

	// Put stores a corpus entry, used by seeding and tests.
	Put(ctx context.Context, p *model.Problem) error
}
