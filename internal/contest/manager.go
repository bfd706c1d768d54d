// Package contest reconciles the expensive remote contest-history source
// against the local per-user cache, degrading to stale data when a refresh
// fails.
package contest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/leetlens/internal/adapters/contestcache"
	"github.com/okian/leetlens/internal/adapters/leetcode"
	"github.com/okian/leetlens/internal/adapters/repository"
	"github.com/okian/leetlens/internal/domain/model"
	"github.com/okian/leetlens/pkg/logger"
	"github.com/okian/leetlens/pkg/metrics"
	"github.com/okian/leetlens/pkg/pool"
)

// Default manager configuration constants.
const (
	DefaultTTL         = 7 * 24 * time.Hour
	DefaultConcurrency = 6
	DefaultPageSize    = 10

	staleWarning = "showing previously cached contests; the refresh attempt failed"
)

// Page is a pagination request.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) normalized() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// PageMeta describes the returned slice relative to the full history.
type PageMeta struct {
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Returned   int `json:"returned"`
}

// CacheMeta tells the caller how the response relates to the cache.
type CacheMeta struct {
	Used         bool       `json:"used"`
	Stale        bool       `json:"stale"`
	RefreshedAt  *time.Time `json:"refreshedAt,omitempty"`
	Warning      string     `json:"warning,omitempty"`
	RefreshError string     `json:"refreshError,omitempty"`
}

// HistoryResult is one page of contest history plus its provenance.
type HistoryResult struct {
	Meta     PageMeta              `json:"meta"`
	Cache    CacheMeta             `json:"cache"`
	Contests []model.ContestResult `json:"contests"`
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithTTL sets how long a cache entry stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithConcurrency bounds the per-contest fetch fan-out.
func WithConcurrency(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// Manager orchestrates contest-history reads: fresh cache hits, bounded
// fan-out rebuilds, and stale-serve degradation.
type Manager struct {
	client   leetcode.Client
	cache    contestcache.Store
	problems repository.ProblemStore

	ttl         time.Duration
	concurrency int
	now         func() time.Time

	// Concurrent rebuild requests for one user collapse into a single
	// in-flight rebuild.
	group singleflight.Group

	log logger.Logger
}

// NewManager creates a contest-history manager.
func NewManager(client leetcode.Client, cache contestcache.Store, problems repository.ProblemStore, opts ...Option) *Manager {
	m := &Manager{
		client:      client,
		cache:       cache,
		problems:    problems,
		ttl:         DefaultTTL,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		log:         logger.Named("contest"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// History returns one page of the user's contest history. The cache serves
// fresh hits directly; otherwise a full rebuild runs, and on rebuild
// failure any prior cache is served stale rather than surfacing the error.
func (m *Manager) History(ctx context.Context, userID string, creds leetcode.Credentials, page Page, forceRefresh bool) (*HistoryResult, error) {
	page = page.normalized()

	prior, err := m.cache.Get(ctx, userID)
	if err != nil && !errors.Is(err, contestcache.ErrNotFound) {
		return nil, fmt.Errorf("read contest cache: %w", err)
	}

	if prior != nil && !forceRefresh && m.now().Sub(prior.LastUpdated) < m.ttl {
		metrics.RecordContestCacheHit()
		return paged(prior.Contests, page, CacheMeta{Used: true}), nil
	}

	contests, rebuildErr := m.rebuildShared(ctx, userID, creds)
	if rebuildErr == nil {
		refreshedAt := m.now()
		entry := &model.ContestCacheEntry{
			UserID:      userID,
			Contests:    contests,
			LastUpdated: refreshedAt,
		}
		if err := m.cache.Put(ctx, entry); err != nil {
			// The rebuild result is still good; serve it and log the
			// persistence failure.
			m.log.Error(ctx, "persisting contest cache failed",
				logger.String("userID", userID),
				logger.Error(err),
			)
		}
		return paged(contests, page, CacheMeta{RefreshedAt: &refreshedAt}), nil
	}

	if prior != nil {
		metrics.RecordContestStaleServe()
		m.log.Warn(ctx, "serving stale contest cache",
			logger.String("userID", userID),
			logger.Error(rebuildErr),
		)
		return paged(prior.Contests, page, CacheMeta{
			Used:         true,
			Stale:        true,
			Warning:      staleWarning,
			RefreshError: rebuildErr.Error(),
		}), nil
	}

	return nil, fmt.Errorf("%w: %v", ErrRebuildFailed, rebuildErr)
}

// rebuildShared funnels concurrent rebuilds for one user through a single
// in-flight call.
func (m *Manager) rebuildShared(ctx context.Context, userID string, creds leetcode.Credentials) ([]model.ContestResult, error) {
	v, err, _ := m.group.Do(userID, func() (any, error) {
		return m.rebuild(ctx, creds)
	})
	if err != nil {
		return nil, err
	}
	contests, ok := v.([]model.ContestResult)
	if !ok {
		return nil, fmt.Errorf("unexpected rebuild result type %T", v)
	}
	return contests, nil
}

// rebuild fetches and transforms the user's whole contest history. A
// failure listing attended contests aborts; per-contest question fetch
// failures are isolated as inline markers.
func (m *Manager) rebuild(ctx context.Context, creds leetcode.Credentials) ([]model.ContestResult, error) {
	start := time.Now()

	attended, err := m.client.AttendedContests(ctx, creds)
	if err != nil {
		metrics.RecordContestRebuild("error", float64(time.Since(start).Milliseconds()))
		return nil, fmt.Errorf("list attended contests: %w", err)
	}

	normalized := make([]model.ContestResult, len(attended))
	for i, entry := range attended {
		normalized[i] = model.ContestResult{
			Title:     entry.Title,
			TitleSlug: Slugify(entry.Title),
			StartTime: entry.StartTime,
			Attended:  entry.Attended,
			Rating:    entry.Rating,
			Ranking:   entry.Ranking,
		}
	}
	sort.SliceStable(normalized, func(i, j int) bool {
		if normalized[i].StartTime != normalized[j].StartTime {
			return normalized[i].StartTime > normalized[j].StartTime
		}
		return normalized[i].TitleSlug > normalized[j].TitleSlug
	})

	// Fan out per-contest question fetches under the concurrency cap.
	// Results stay index-correlated with the sorted contest list.
	fetched := pool.Map(ctx, normalized, m.concurrency,
		func(ctx context.Context, c model.ContestResult, _ int) ([]leetcode.ContestQuestion, error) {
			return m.client.ContestQuestions(ctx, creds, c.TitleSlug)
		})

	// One batch rating lookup across every successfully fetched question.
	idSet := make(map[string]struct{})
	for _, res := range fetched {
		if res.Err != nil {
			continue
		}
		for _, q := range res.Value {
			if q.QuestionID != "" {
				idSet[q.QuestionID] = struct{}{}
			}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ratings, err := m.problems.RatingsByIDs(ctx, ids)
	if err != nil {
		metrics.RecordContestRebuild("error", float64(time.Since(start).Milliseconds()))
		return nil, fmt.Errorf("resolve question ratings: %w", err)
	}

	for i := range normalized {
		res := fetched[i]
		if res.Err != nil {
			normalized[i].FetchError = res.Err.Error()
			normalized[i].Questions = []model.ContestQuestion{}
			continue
		}
		questions := make([]model.ContestQuestion, len(res.Value))
		totalCredits, earnedCredits := 0, 0
		for j, q := range res.Value {
			var rating *float64
			if r, ok := ratings[q.QuestionID]; ok {
				rating = &r
			}
			questions[j] = model.ContestQuestion{
				QuestionID: q.QuestionID,
				Title:      q.Title,
				TitleSlug:  q.TitleSlug,
				IsAc:       q.IsAc,
				Credit:     q.Credit,
				Rating:     rating,
			}
			totalCredits += q.Credit
			if q.IsAc {
				earnedCredits += q.Credit
			}
		}
		normalized[i].Questions = questions
		normalized[i].TotalCredits = totalCredits
		normalized[i].EarnedCredits = earnedCredits
	}

	metrics.RecordContestRebuild("success", float64(time.Since(start).Milliseconds()))
	return normalized, nil
}

// paged slices the full history into the requested page.
func paged(contests []model.ContestResult, page Page, cache CacheMeta) *HistoryResult {
	total := len(contests)
	totalPages := int(math.Ceil(float64(total) / float64(page.PageSize)))

	start := (page.Page - 1) * page.PageSize
	if start > total {
		start = total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}

	slice := make([]model.ContestResult, end-start)
	copy(slice, contests[start:end])

	return &HistoryResult{
		Meta: PageMeta{
			TotalCount: total,
			TotalPages: totalPages,
			Page:       page.Page,
			PageSize:   page.PageSize,
			Returned:   len(slice),
		},
		Cache:    cache,
		Contests: slice,
	}
}
