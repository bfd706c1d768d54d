// Package model contains domain models passed between layers.
package model

import "time"

// SubmissionRecord captures one problem in a user's solved or failed history.
// Records are replaced wholesale on each full resync, never mutated in place.
type SubmissionRecord struct {
	ProblemID       string    `json:"problemId"`
	Difficulty      string    `json:"difficulty"`
	TitleSlug       string    `json:"titleSlug,omitempty"`
	TopicTags       []string  `json:"topicTags"`
	LastSubmittedAt time.Time `json:"lastSubmittedAt"`
	RatingAtEvent   float64   `json:"ratingAtEvent"`
	NumSubmitted    int       `json:"numSubmitted"`
	LastResult      string    `json:"lastResult,omitempty"`
}

// ScoreRange reports the raw score spread of the topic-weight artifact.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// WeightsInfo describes the weight table a weakness result was computed with.
type WeightsInfo struct {
	TotalTopics         int        `json:"totalTopics"`
	ScoreRange          ScoreRange `json:"scoreRange"`
	FilteredTopicsCount int        `json:"filteredTopicsCount"`
}

// WeakTopicResult is the ranked weak-topic score map for one user.
// Scores are a ranking signal, not probabilities; callers must not assume
// a bounded range.
type WeakTopicResult struct {
	Topics                map[string]float64 `json:"topics"`
	TotalProblemsAnalyzed int                `json:"totalProblemsAnalyzed"`
	Algorithm             string             `json:"algorithm"`
	WeightsInfo           WeightsInfo        `json:"weightsInfo"`
}

// WeakTopicCache is the persisted weakness computation for a user.
// LastCalculated is kept as the stored string form so the validator can
// distinguish a missing timestamp from an unparsable one.
type WeakTopicCache struct {
	Result          *WeakTopicResult `json:"result,omitempty"`
	LastCalculated  string           `json:"lastCalculated,omitempty"`
	SubmissionCount int              `json:"submissionCount"`
}

// Problem is a corpus entry, read-only relative to this service's core.
type Problem struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	TitleSlug  string   `json:"titleSlug"`
	Difficulty string   `json:"difficulty"`
	IsPaidOnly bool     `json:"isPaidOnly"`
	TopicTags  []string `json:"topicTags"`
	Rating     float64  `json:"rating"`
}

// RecommendationEntry is one scored recommendation.
type RecommendationEntry struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Slug             string   `json:"slug"`
	Rating           float64  `json:"rating"`
	Difficulty       string   `json:"difficulty"`
	Tags             []string `json:"tags"`
	MatchedTags      []string `json:"matchedTags"`
	MatchedWeightSum float64  `json:"matchedWeightSum"`
	MatchFraction    float64  `json:"matchFraction"`
	Weight           float64  `json:"weight"`
}

// ContestQuestion is a single question within a contest, with its corpus
// rating backfilled after the fetch (nil when unresolvable).
type ContestQuestion struct {
	QuestionID string   `json:"questionId"`
	Title      string   `json:"title"`
	TitleSlug  string   `json:"titleSlug"`
	IsAc       bool     `json:"isAc"`
	Credit     int      `json:"credit"`
	Rating     *float64 `json:"rating"`
}

// ContestResult is one attended contest after transformation.
type ContestResult struct {
	Title         string            `json:"title"`
	TitleSlug     string            `json:"titleSlug"`
	StartTime     int64             `json:"startTime"`
	Attended      bool              `json:"attended"`
	Rating        *float64          `json:"rating"`
	Ranking       *int              `json:"ranking"`
	TotalCredits  int               `json:"totalCredits"`
	EarnedCredits int               `json:"earnedCredits"`
	Questions     []ContestQuestion `json:"questions"`
	// FetchError marks a contest whose question fetch failed; the contest
	// still appears with empty question data so pagination counts hold.
	FetchError string `json:"fetchError,omitempty"`
}

// ContestCacheEntry is the per-user contest-history cache payload.
// LastUpdated advances only on a successful full rebuild.
type ContestCacheEntry struct {
	UserID      string          `json:"userId"`
	Contests    []ContestResult `json:"contests"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// User is the durable per-user record this service reads and writes.
type User struct {
	ID               string  `json:"id"`
	LeetcodeUserName string  `json:"leetcodeUserName"`
	LeetcodeAvatar   string  `json:"leetcodeAvatar,omitempty"`
	SessionToken     string  `json:"-"`
	CSRFToken        string  `json:"-"`
	ContestRating    float64 `json:"contestRating"`
	TotalSolved      int     `json:"totalProblemsSolved"`
	AverageRating    float64 `json:"averageRating"`

	Solved []SubmissionRecord `json:"solvedProblems"`
	Failed []SubmissionRecord `json:"failedProblems"`

	WeakTopicCache *WeakTopicCache `json:"weakTopicsCache,omitempty"`

	// RecommendationHistory keeps the id batches of the most recent
	// recommendation rounds, newest last.
	RecommendationHistory [][]string            `json:"recentRecommendationHistory"`
	CurrentRecommendation []RecommendationEntry `json:"currentRecommendation"`
}

// SubmissionCount is the solved+failed total the weakness cache is keyed on.
func (u *User) SubmissionCount() int {
	return len(u.Solved) + len(u.Failed)
}
