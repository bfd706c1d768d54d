package leetcode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/okian/leetlens/pkg/logger"
	"github.com/okian/leetlens/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultEndpoint    = "https://leetcode.com/graphql/"
	defaultTimeout     = 15 * time.Second
	defaultRatePerSec  = 5.0
	defaultRateBurst   = 10
	breakerMaxRequests = 3
	breakerInterval    = 60 * time.Second
	breakerCooldown    = 30 * time.Second
	breakerMinRequests = 5
	breakerFailureRate = 0.6
)

// graphQLRequest is the POST body for every call shape.
type graphQLRequest struct {
	OperationName string `json:"operationName,omitempty"`
	Query         string `json:"query"`
	Variables     any    `json:"variables,omitempty"`
}

// HTTPClient implements Client against the real GraphQL endpoint. All
// calls share one rate limiter and one circuit breaker so a failing or
// throttling upstream is backed off across users.
type HTTPClient struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	log      logger.Logger
}

// Option applies a configuration option to the HTTPClient.
type Option func(*HTTPClient)

// WithEndpoint points the client at a different GraphQL endpoint,
// used in tests.
func WithEndpoint(endpoint string) Option {
	return func(c *HTTPClient) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRateLimit sets the sustained request rate against the upstream.
func WithRateLimit(perSecond float64) Option {
	return func(c *HTTPClient) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), defaultRateBurst)
		}
	}
}

// WithHTTPClient swaps the underlying transport, used in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(c *HTTPClient) {
		if log != nil {
			c.log = log
		}
	}
}

// NewHTTPClient creates a client with breaker and limiter wired in.
func NewHTTPClient(opts ...Option) *HTTPClient {
	c := &HTTPClient{
		endpoint: defaultEndpoint,
		client:   &http.Client{},
		timeout:  defaultTimeout,
		limiter:  rate.NewLimiter(rate.Limit(defaultRatePerSec), defaultRateBurst),
		log:      logger.Named("leetcode"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "leetcode",
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= breakerFailureRate
		},
	})
	return c
}

// do posts one GraphQL request and returns the raw response body.
func (c *HTTPClient) do(ctx context.Context, kind string, creds Credentials, req graphQLRequest, extraHeaders map[string]string) ([]byte, error) {
	if creds.SessionToken == "" || creds.CSRFToken == "" {
		return nil, fmt.Errorf("%w: session token and csrf token are required", ErrMissingCredentials)
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		return c.post(ctx, creds, req, extraHeaders)
	})
	durationMS := float64(time.Since(start).Milliseconds())

	if err != nil {
		metrics.RecordRemoteCall(kind, "error", durationMS)
		c.log.Warn(ctx, "remote call failed",
			logger.String("kind", kind),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, kind, err)
	}
	metrics.RecordRemoteCall(kind, "ok", durationMS)
	return body, nil
}

func (c *HTTPClient) post(ctx context.Context, creds Credentials, req graphQLRequest, extraHeaders map[string]string) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Origin", "https://leetcode.com")
	httpReq.Header.Set("x-csrftoken", creds.CSRFToken)
	httpReq.Header.Set("Cookie", "LEETCODE_SESSION="+creds.SessionToken)
	for k, v := range extraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 256))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// AttendedContests lists attended contests from the ranking history.
func (c *HTTPClient) AttendedContests(ctx context.Context, creds Credentials) ([]AttendedContest, error) {
	if creds.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrMissingCredentials)
	}

	req := graphQLRequest{
		OperationName: "userContestRankingHistory",
		Query: `
      query userContestRankingHistory($username: String!) {
        userContestRankingHistory(username: $username) {
          attended
          rating
          ranking
          contest { title startTime }
        }
      }
    `,
		Variables: map[string]any{"username": creds.Username},
	}

	body, err := c.do(ctx, "attended_contests", creds, req, nil)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Data struct {
			History []struct {
				Attended bool     `json:"attended"`
				Rating   *float64 `json:"rating"`
				Ranking  *int     `json:"ranking"`
				Contest  struct {
					Title     string `json:"title"`
					StartTime int64  `json:"startTime"`
				} `json:"contest"`
			} `json:"userContestRankingHistory"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: decode contest history: %v", ErrUpstream, err)
	}

	out := make([]AttendedContest, 0, len(wire.Data.History))
	for _, entry := range wire.Data.History {
		if !entry.Attended {
			continue
		}
		out = append(out, AttendedContest{
			Title:     entry.Contest.Title,
			StartTime: entry.Contest.StartTime,
			Attended:  true,
			Rating:    entry.Rating,
			Ranking:   entry.Ranking,
		})
	}
	return out, nil
}

// ContestQuestions lists per-question results for one contest.
func (c *HTTPClient) ContestQuestions(ctx context.Context, creds Credentials, contestSlug string) ([]ContestQuestion, error) {
	req := graphQLRequest{
		OperationName: "contestQuestionList",
		Query: `
      query contestQuestionList($contestSlug: String!) {
        contestQuestionList(contestSlug: $contestSlug) {
          isAc
          credit
          title
          titleSlug
          questionId
        }
      }
    `,
		Variables: map[string]any{"contestSlug": contestSlug},
	}
	headers := map[string]string{
		"Referer": "https://leetcode.com/contest/" + contestSlug + "/",
	}

	body, err := c.do(ctx, "contest_questions", creds, req, headers)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Data struct {
			Questions []struct {
				IsAc       bool   `json:"isAc"`
				Credit     int    `json:"credit"`
				Title      string `json:"title"`
				TitleSlug  string `json:"titleSlug"`
				QuestionID string `json:"questionId"`
			} `json:"contestQuestionList"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: decode contest questions: %v", ErrUpstream, err)
	}

	out := make([]ContestQuestion, len(wire.Data.Questions))
	for i, q := range wire.Data.Questions {
		out[i] = ContestQuestion{
			QuestionID: q.QuestionID,
			Title:      q.Title,
			TitleSlug:  q.TitleSlug,
			IsAc:       q.IsAc,
			Credit:     q.Credit,
		}
	}
	return out, nil
}

// UserStatus resolves the identity behind the session credentials.
func (c *HTTPClient) UserStatus(ctx context.Context, creds Credentials) (*UserStatus, error) {
	req := graphQLRequest{
		Query: `query { userStatus { username avatar } }`,
	}
	body, err := c.do(ctx, "user_status", creds, req, nil)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Data struct {
			UserStatus struct {
				Username string `json:"username"`
				Avatar   string `json:"avatar"`
			} `json:"userStatus"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: decode user status: %v", ErrUpstream, err)
	}
	if wire.Data.UserStatus.Username == "" {
		return nil, fmt.Errorf("%w: session is not authenticated", ErrUpstream)
	}
	return &UserStatus{
		Username: wire.Data.UserStatus.Username,
		Avatar:   wire.Data.UserStatus.Avatar,
	}, nil
}

// SubmitStats returns accepted-submission counts per difficulty.
func (c *HTTPClient) SubmitStats(ctx context.Context, creds Credentials, username string) ([]SubmissionStat, error) {
	req := graphQLRequest{
		Query: `
        query($username: String!) {
          matchedUser(username: $username) {
            submitStats {
              acSubmissionNum { difficulty count submissions }
            }
          }
        }`,
		Variables: map[string]any{"username": username},
	}
	body, err := c.do(ctx, "submit_stats", creds, req, nil)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Data struct {
			MatchedUser struct {
				SubmitStats struct {
					AcSubmissionNum []struct {
						Difficulty  string `json:"difficulty"`
						Count       int    `json:"count"`
						Submissions int    `json:"submissions"`
					} `json:"acSubmissionNum"`
				} `json:"submitStats"`
			} `json:"matchedUser"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: decode submit stats: %v", ErrUpstream, err)
	}

	stats := wire.Data.MatchedUser.SubmitStats.AcSubmissionNum
	out := make([]SubmissionStat, len(stats))
	for i, s := range stats {
		out[i] = SubmissionStat{Difficulty: s.Difficulty, Count: s.Count, Submissions: s.Submissions}
	}
	return out, nil
}

// ProgressQuestions pages through the user's solved-problem list.
func (c *HTTPClient) ProgressQuestions(ctx context.Context, creds Credentials, skip, limit int) ([]ProgressQuestion, error) {
	req := graphQLRequest{
		Query: `
        query($skip: Int!, $limit: Int!) {
          userProgressQuestionList(filters: { skip: $skip, limit: $limit }) {
            questions {
              frontendId title difficulty lastSubmittedAt numSubmitted topicTags { name }
            }
          }
        }`,
		Variables: map[string]any{"skip": skip, "limit": limit},
	}
	headers := map[string]string{
		"Referer": "https://leetcode.com/progress/",
		"Accept":  "*/*",
	}

	body, err := c.do(ctx, "progress_questions", creds, req, headers)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Data struct {
			List struct {
				Questions []struct {
					FrontendID      string `json:"frontendId"`
					Title           string `json:"title"`
					Difficulty      string `json:"difficulty"`
					LastSubmittedAt string `json:"lastSubmittedAt"`
					NumSubmitted    int    `json:"numSubmitted"`
					TopicTags       []struct {
						Name string `json:"name"`
					} `json:"topicTags"`
				} `json:"questions"`
			} `json:"userProgressQuestionList"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: decode progress questions: %v", ErrUpstream, err)
	}

	out := make([]ProgressQuestion, len(wire.Data.List.Questions))
	for i, q := range wire.Data.List.Questions {
		tags := make([]string, len(q.TopicTags))
		for j, t := range q.TopicTags {
			tags[j] = t.Name
		}
		out[i] = ProgressQuestion{
			FrontendID:      q.FrontendID,
			Title:           q.Title,
			Difficulty:      q.Difficulty,
			LastSubmittedAt: q.LastSubmittedAt,
			NumSubmitted:    q.NumSubmitted,
			TopicTags:       tags,
		}
	}
	return out, nil
}
