// Package leetcode talks to the remote LeetCode GraphQL endpoint on behalf
// of a user, using the session credentials captured by the extension.
package leetcode

import (
	"context"
)

// Credentials is the per-user authentication pair plus the username most
// call shapes require.
type Credentials struct {
	SessionToken string
	CSRFToken    string
	Username     string
}

// AttendedContest is one entry from the user's contest ranking history,
// already filtered to attended contests.
type AttendedContest struct {
	Title     string
	StartTime int64
	Attended  bool
	Rating    *float64
	Ranking   *int
}

// ContestQuestion is one question's outcome within a contest.
type ContestQuestion struct {
	QuestionID string
	Title      string
	TitleSlug  string
	IsAc       bool
	Credit     int
}

// UserStatus is the authenticated user's identity.
type UserStatus struct {
	Username string
	Avatar   string
}

// SubmissionStat is a per-difficulty accepted-submission count.
type SubmissionStat struct {
	Difficulty  string
	Count       int
	Submissions int
}

// ProgressQuestion is one solved problem from the user's progress list.
type ProgressQuestion struct {
	FrontendID      string
	Title           string
	Difficulty      string
	LastSubmittedAt string
	NumSubmitted    int
	TopicTags       []string
}

// Client is the remote contest-history and profile source. Calls may fail,
// rate-limit, or return partial data; callers own the degradation policy.
type Client interface {
	// AttendedContests lists the contests the user attended.
	AttendedContests(ctx context.Context, creds Credentials) ([]AttendedContest, error)

	// ContestQuestions lists the per-question results for one contest slug.
	ContestQuestions(ctx context.Context, creds Credentials, contestSlug string) ([]ContestQuestion, error)

	// UserStatus resolves the identity behind the session credentials.
	UserStatus(ctx context.Context, creds Credentials) (*UserStatus, error)

	// SubmitStats returns accepted-submission counts per difficulty.
	SubmitStats(ctx context.Context, creds Credentials, username string) ([]SubmissionStat, error)

	// ProgressQuestions pages through the user's solved-problem list.
	ProgressQuestions(ctx context.Context, creds Credentials, skip, limit int) ([]ProgressQuestion, error)
}
