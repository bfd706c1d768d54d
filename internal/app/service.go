// Package app composes the domain packages behind one service facade the
// HTTP layer calls into. It owns the cache-or-recompute policy for weakness
// results and the persistence choreography around recommendations and syncs.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/okian/leetlens/internal/adapters/leetcode"
	"github.com/okian/leetlens/internal/adapters/repository"
	"github.com/okian/leetlens/internal/contest"
	"github.com/okian/leetlens/internal/domain/model"
	"github.com/okian/leetlens/internal/domain/recommend"
	"github.com/okian/leetlens/internal/domain/weakness"
	"github.com/okian/leetlens/pkg/logger"
	"github.com/okian/leetlens/pkg/metrics"
)

// Option configures the service.
type Option func(*Service)

// WithWeakCacheTTL overrides the weakness cache TTL in hours.
func WithWeakCacheTTL(hours float64) Option {
	return func(s *Service) {
		if hours > 0 {
			s.weakTTLHours = hours
		}
	}
}

// WithCandidateCap bounds how many candidates one recommendation request
// scores.
func WithCandidateCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.candidateCap = n
		}
	}
}

// WithRecommendLimits overrides the default and maximum recommendation
// batch sizes.
func WithRecommendLimits(def, max int) Option {
	return func(s *Service) {
		if def > 0 {
			s.defaultLimit = def
		}
		if max > 0 {
			s.maxLimit = max
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger overrides the default named logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// Service wires the stores, the remote client, the weakness scorer and the
// contest manager into the operations the API exposes.
type Service struct {
	users    repository.UserStore
	problems repository.ProblemStore
	client   leetcode.Client
	contests *contest.Manager
	scorer   *weakness.Scorer

	weakTTLHours float64
	candidateCap int
	defaultLimit int
	maxLimit     int
	now          func() time.Time
	log          logger.Logger
}

// New builds a Service. All collaborators are required.
func New(
	users repository.UserStore,
	problems repository.ProblemStore,
	client leetcode.Client,
	contests *contest.Manager,
	scorer *weakness.Scorer,
	opts ...Option,
) *Service {
	s := &Service{
		users:        users,
		problems:     problems,
		client:       client,
		contests:     contests,
		scorer:       scorer,
		weakTTLHours: weakness.DefaultCacheTTLHours,
		candidateCap: recommend.CandidateCap,
		defaultLimit: recommend.DefaultLimit,
		maxLimit:     recommend.MaxLimit,
		now:          time.Now,
		log:          logger.Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WeakTopicsResponse reports the weakness ranking and whether it was served
// from cache.
type WeakTopicsResponse struct {
	Result model.WeakTopicResult `json:"result"`
	Cached bool                  `json:"cached"`
	// Reason explains a recompute; "ok" on a cache hit.
	Reason string `json:"reason"`
}

// WeakTopics returns the user's weak-topic ranking, serving the cached
// computation while it is still valid and recomputing otherwise.
func (s *Service) WeakTopics(ctx context.Context, userID string) (*WeakTopicsResponse, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	result, cached, reason, err := s.resolveWeakTopics(ctx, user)
	if err != nil {
		return nil, err
	}
	return &WeakTopicsResponse{Result: *result, Cached: cached, Reason: reason}, nil
}

// resolveWeakTopics is the shared cache-or-recompute path used by both the
// weak-topics endpoint and the recommender.
func (s *Service) resolveWeakTopics(ctx context.Context, user *model.User) (*model.WeakTopicResult, bool, string, error) {
	count := user.SubmissionCount()
	v := weakness.Validate(user.WeakTopicCache, count, s.weakTTLHours, s.now())
	if v.Valid {
		metrics.RecordWeakCacheHit()
		return user.WeakTopicCache.Result, true, string(v.Reason), nil
	}
	metrics.RecordWeakCacheMiss(string(v.Reason))

	result := s.scorer.Score(ctx, user.Solved, user.Failed)
	cache := &model.WeakTopicCache{
		Result:          &result,
		LastCalculated:  s.now().UTC().Format(time.RFC3339),
		SubmissionCount: count,
	}
	if err := s.users.SaveWeakTopicCache(ctx, user.ID, cache); err != nil {
		return nil, false, "", fmt.Errorf("persist weak-topic cache: %w", err)
	}
	s.log.Debug(ctx, "weak topics recomputed",
		logger.String("user_id", user.ID),
		logger.String("reason", string(v.Reason)),
		logger.Int("topics", len(result.Topics)))
	return &result, false, string(v.Reason), nil
}

// RecommendRequest is the recommendation call surface after HTTP decoding.
type RecommendRequest struct {
	Filters recommend.Filters
	Push    bool
	Limit   int
}

// RecommendMeta is the context a recommendation batch was built under.
type RecommendMeta struct {
	RatingWindow   model.ScoreRange `json:"ratingWindow"`
	WeakTopicCount int              `json:"weakTopicCount"`
	CandidateCount int              `json:"candidateCount"`
	Push           bool             `json:"push"`
}

// RecommendResponse carries the persisted batch. Message is set only on the
// empty-signal path.
type RecommendResponse struct {
	Recommendations []model.RecommendationEntry `json:"recommendations"`
	Message         string                      `json:"message,omitempty"`
	Meta            RecommendMeta               `json:"meta"`
}

// Recommend builds, persists and returns a fresh recommendation batch.
func (s *Service) Recommend(ctx context.Context, userID string, req RecommendRequest) (*RecommendResponse, error) {
	if err := req.Filters.Validate(); err != nil {
		return nil, err
	}
	limit := recommend.ClampLimitBounds(req.Limit, s.defaultLimit, s.maxLimit)

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	weak, _, _, err := s.resolveWeakTopics(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(weak.Topics) == 0 {
		// Not an error: a fresh account simply has no signal yet.
		return &RecommendResponse{
			Recommendations: []model.RecommendationEntry{},
			Message:         "not enough submission history to rank weak topics yet",
			Meta:            RecommendMeta{Push: req.Push},
		}, nil
	}

	rating := userRating(user)
	lo, hi := recommend.Window(rating, req.Filters, req.Push)
	difficulties, err := req.Filters.PreferredDifficulty.Canonical()
	if err != nil {
		return nil, err
	}
	exclude := recommend.ExclusionSet(user.Solved, user.RecommendationHistory)

	candidates, err := s.problems.FindCandidates(ctx, repository.CandidateQuery{
		MinRating:    lo,
		MaxRating:    hi,
		Premium:      req.Filters.IsPremium,
		Difficulties: difficulties,
		WeakTopics:   weak.Topics,
		ExcludeIDs:   exclude,
		Limit:        s.candidateCap,
	})
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	batch := recommend.ScoreCandidates(weak.Topics, candidates, limit)
	history := recommend.PushHistory(user.RecommendationHistory, batch)
	if err := s.users.SaveRecommendation(ctx, user.ID, history, batch); err != nil {
		return nil, fmt.Errorf("persist recommendation: %w", err)
	}
	metrics.RecordRecommendationBatch(len(batch))
	s.log.Info(ctx, "recommendation batch built",
		logger.String("user_id", user.ID),
		logger.Int("candidates", len(candidates)),
		logger.Int("batch", len(batch)),
		logger.Bool("push", req.Push))

	return &RecommendResponse{
		Recommendations: batch,
		Meta: RecommendMeta{
			RatingWindow:   model.ScoreRange{Min: lo, Max: hi},
			WeakTopicCount: len(weak.Topics),
			CandidateCount: len(candidates),
			Push:           req.Push,
		},
	}, nil
}

// CurrentRecommendation returns the last persisted batch without rebuilding.
func (s *Service) CurrentRecommendation(ctx context.Context, userID string) ([]model.RecommendationEntry, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.CurrentRecommendation == nil {
		return []model.RecommendationEntry{}, nil
	}
	return user.CurrentRecommendation, nil
}

// ContestHistory serves the user's contest page through the cache manager,
// using the credentials captured at sync time.
func (s *Service) ContestHistory(ctx context.Context, userID string, page contest.Page, forceRefresh bool) (*contest.HistoryResult, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.SessionToken == "" || user.CSRFToken == "" {
		return nil, ErrMissingCredentials
	}
	creds := leetcode.Credentials{
		SessionToken: user.SessionToken,
		CSRFToken:    user.CSRFToken,
		Username:     user.LeetcodeUserName,
	}
	return s.contests.History(ctx, user.ID, creds, page, forceRefresh)
}

// SyncUserData pulls the authenticated user's profile and full solved
// history from the remote source and replaces the stored record.
func (s *Service) SyncUserData(ctx context.Context, sessionToken, csrfToken string) (*model.User, error) {
	creds := leetcode.Credentials{SessionToken: sessionToken, CSRFToken: csrfToken}

	status, err := s.client.UserStatus(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("resolve user status: %w", err)
	}
	creds.Username = status.Username

	stats, err := s.client.SubmitStats(ctx, creds, status.Username)
	if err != nil {
		return nil, fmt.Errorf("fetch submit stats: %w", err)
	}
	totalSolved := 0
	for _, st := range stats {
		if st.Difficulty == "All" {
			totalSolved = st.Count
		}
	}

	var questions []leetcode.ProgressQuestion
	if totalSolved > 0 {
		questions, err = s.client.ProgressQuestions(ctx, creds, 0, totalSolved)
		if err != nil {
			return nil, fmt.Errorf("fetch progress questions: %w", err)
		}
	}

	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.FrontendID)
	}
	ratings, err := s.problems.RatingsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve ratings: %w", err)
	}

	solved := make([]model.SubmissionRecord, 0, len(questions))
	ratingSum := 0.0
	for _, q := range questions {
		rec := model.SubmissionRecord{
			ProblemID:    q.FrontendID,
			Difficulty:   q.Difficulty,
			TopicTags:    q.TopicTags,
			NumSubmitted: q.NumSubmitted,
		}
		if ts, perr := time.Parse(time.RFC3339, q.LastSubmittedAt); perr == nil {
			rec.LastSubmittedAt = ts
		}
		if r, ok := ratings[q.FrontendID]; ok {
			rec.RatingAtEvent = r
			ratingSum += r
		}
		solved = append(solved, rec)
	}
	// Unrated problems count as zero; the mean runs over the whole history.
	avg := 0.0
	if len(solved) > 0 {
		avg = round2(ratingSum / float64(len(solved)))
	}

	user := &model.User{
		LeetcodeUserName: status.Username,
		LeetcodeAvatar:   status.Avatar,
		SessionToken:     sessionToken,
		CSRFToken:        csrfToken,
		TotalSolved:      totalSolved,
		AverageRating:    avg,
		Solved:           solved,
	}
	stored, err := s.users.UpsertSync(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("persist user: %w", err)
	}
	s.log.Info(ctx, "user data synced",
		logger.String("user_id", stored.ID),
		logger.String("username", stored.LeetcodeUserName),
		logger.Int("solved", len(solved)))
	return stored, nil
}

var titleIDPattern = regexp.MustCompile(`^(\d+)\.`)

// RateProblem resolves the corpus rating for a "123. Title" style problem
// title. A nil rating means the problem is unknown to the corpus.
func (s *Service) RateProblem(ctx context.Context, title string) (*float64, error) {
	m := titleIDPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTitle, title)
	}
	p, err := s.problems.GetByID(ctx, m[1])
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load problem: %w", err)
	}
	return &p.Rating, nil
}

// RateProblems resolves ratings for a batch of titles. Titles without a
// leading id or without a corpus entry map to nil, never to an error.
func (s *Service) RateProblems(ctx context.Context, titles []string) (map[string]*float64, error) {
	ids := make([]string, 0, len(titles))
	byTitle := make(map[string]string, len(titles))
	for _, title := range titles {
		if m := titleIDPattern.FindStringSubmatch(strings.TrimSpace(title)); m != nil {
			ids = append(ids, m[1])
			byTitle[title] = m[1]
		}
	}
	ratings, err := s.problems.RatingsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve ratings: %w", err)
	}
	out := make(map[string]*float64, len(titles))
	for _, title := range titles {
		out[title] = nil
		if id, ok := byTitle[title]; ok {
			if r, found := ratings[id]; found {
				v := r
				out[title] = &v
			}
		}
	}
	return out, nil
}

// userRating prefers the live contest rating and falls back to the average
// rating of the solved history.
func userRating(u *model.User) float64 {
	if u.ContestRating > 0 {
		return u.ContestRating
	}
	return u.AverageRating
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
