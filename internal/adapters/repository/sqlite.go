package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/okian/leetlens/internal/domain/model"
	"github.com/okian/leetlens/internal/domain/weights"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                TEXT PRIMARY KEY,
	leetcode_username TEXT NOT NULL UNIQUE,
	leetcode_avatar   TEXT NOT NULL DEFAULT '',
	session_token     TEXT NOT NULL DEFAULT '',
	csrf_token        TEXT NOT NULL DEFAULT '',
	contest_rating    REAL NOT NULL DEFAULT 0,
	total_solved      INTEGER NOT NULL DEFAULT 0,
	average_rating    REAL NOT NULL DEFAULT 0,
	solved_json       TEXT NOT NULL DEFAULT '[]',
	failed_json       TEXT NOT NULL DEFAULT '[]',
	weak_cache_json   TEXT NOT NULL DEFAULT '',
	rec_history_json  TEXT NOT NULL DEFAULT '[]',
	current_rec_json  TEXT NOT NULL DEFAULT '[]',
	updated_at        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS problems (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	title_slug    TEXT NOT NULL DEFAULT '',
	difficulty    TEXT NOT NULL DEFAULT '',
	is_paid_only  INTEGER NOT NULL DEFAULT 0,
	rating        REAL NOT NULL DEFAULT 0,
	topic_tags    TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_problems_rating ON problems(rating);
`

// SQLiteStore implements UserStore and ProblemStore on a sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and bootstraps) the database at path. Use ":memory:"
// for an ephemeral store in tests.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	// The sqlite driver serializes writes; a single connection avoids
	// table-lock errors under concurrent requests.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

const userColumns = `id, leetcode_username, leetcode_avatar, session_token, csrf_token,
	contest_rating, total_solved, average_rating,
	solved_json, failed_json, weak_cache_json, rec_history_json, current_rec_json`

// Get returns the record for a user id.
func (s *SQLiteStore) Get(ctx context.Context, userID string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return u, nil
}

// GetByUsername returns the record for a leetcode username.
func (s *SQLiteStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE leetcode_username = ?`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	var solved, failed, weakCache, history, current string
	err := row.Scan(
		&u.ID, &u.LeetcodeUserName, &u.LeetcodeAvatar, &u.SessionToken, &u.CSRFToken,
		&u.ContestRating, &u.TotalSolved, &u.AverageRating,
		&solved, &failed, &weakCache, &history, &current,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(solved), &u.Solved); err != nil {
		return nil, fmt.Errorf("decode solved history: %w", err)
	}
	if err := json.Unmarshal([]byte(failed), &u.Failed); err != nil {
		return nil, fmt.Errorf("decode failed history: %w", err)
	}
	if weakCache != "" {
		u.WeakTopicCache = &model.WeakTopicCache{}
		if err := json.Unmarshal([]byte(weakCache), u.WeakTopicCache); err != nil {
			return nil, fmt.Errorf("decode weak-topic cache: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(history), &u.RecommendationHistory); err != nil {
		return nil, fmt.Errorf("decode recommendation history: %w", err)
	}
	if err := json.Unmarshal([]byte(current), &u.CurrentRecommendation); err != nil {
		return nil, fmt.Errorf("decode current recommendation: %w", err)
	}
	return &u, nil
}

// UpsertSync replaces the profile fields and solved history wholesale,
// keyed by leetcode username. A fresh id is minted on first insert.
func (s *SQLiteStore) UpsertSync(ctx context.Context, user *model.User) (*model.User, error) {
	solved, err := json.Marshal(user.Solved)
	if err != nil {
		return nil, fmt.Errorf("encode solved history: %w", err)
	}

	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, leetcode_username, leetcode_avatar, session_token, csrf_token,
			contest_rating, total_solved, average_rating, solved_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(leetcode_username) DO UPDATE SET
			leetcode_avatar = excluded.leetcode_avatar,
			session_token   = excluded.session_token,
			csrf_token      = excluded.csrf_token,
			contest_rating  = excluded.contest_rating,
			total_solved    = excluded.total_solved,
			average_rating  = excluded.average_rating,
			solved_json     = excluded.solved_json,
			updated_at      = excluded.updated_at`,
		id, user.LeetcodeUserName, user.LeetcodeAvatar, user.SessionToken, user.CSRFToken,
		user.ContestRating, user.TotalSolved, user.AverageRating,
		string(solved), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", user.LeetcodeUserName, err)
	}
	return s.GetByUsername(ctx, user.LeetcodeUserName)
}

// SaveWeakTopicCache persists a weakness computation atomically.
func (s *SQLiteStore) SaveWeakTopicCache(ctx context.Context, userID string, cache *model.WeakTopicCache) error {
	raw, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("encode weak-topic cache: %w", err)
	}
	return s.updateUserField(ctx, userID, `weak_cache_json`, string(raw))
}

// SaveRecommendation overwrites history ring and current batch in one
// statement.
func (s *SQLiteStore) SaveRecommendation(ctx context.Context, userID string, history [][]string, current []model.RecommendationEntry) error {
	historyRaw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode recommendation history: %w", err)
	}
	currentRaw, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode current recommendation: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET rec_history_json = ?, current_rec_json = ?, updated_at = ? WHERE id = ?`,
		string(historyRaw), string(currentRaw), time.Now().UTC().Format(time.RFC3339), userID,
	)
	if err != nil {
		return fmt.Errorf("save recommendation for user %s: %w", userID, err)
	}
	return requireRow(res, userID)
}

func (s *SQLiteStore) updateUserField(ctx context.Context, userID, column, value string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC().Format(time.RFC3339), userID,
	)
	if err != nil {
		return fmt.Errorf("update user %s: %w", userID, err)
	}
	return requireRow(res, userID)
}

func requireRow(res sql.Result, userID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

// GetByID returns one corpus entry.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*model.Problem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, title_slug, difficulty, is_paid_only, rating, topic_tags FROM problems WHERE id = ?`, id)
	p, err := scanProblem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("problem %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get problem %s: %w", id, err)
	}
	return p, nil
}

func scanProblem(row rowScanner) (*model.Problem, error) {
	var p model.Problem
	var tags string
	if err := row.Scan(&p.ID, &p.Title, &p.TitleSlug, &p.Difficulty, &p.IsPaidOnly, &p.Rating, &tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &p.TopicTags); err != nil {
		return nil, fmt.Errorf("decode topic tags: %w", err)
	}
	return &p, nil
}

// RatingsByIDs batch-resolves ratings in one query.
func (s *SQLiteStore) RatingsByIDs(ctx context.Context, ids []string) (map[string]float64, error) {
	ratings := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return ratings, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, rating FROM problems WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("batch rating lookup: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var rating float64
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		ratings[id] = rating
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}
	return ratings, nil
}

// FindCandidates retrieves recommendation candidates. Window, premium flag
// and difficulty narrow the SQL scan; tag matching and id exclusion apply
// while scanning so the cap counts only eligible problems.
func (s *SQLiteStore) FindCandidates(ctx context.Context, q CandidateQuery) ([]model.Problem, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, title, title_slug, difficulty, is_paid_only, rating, topic_tags
		FROM problems WHERE rating >= ? AND rating <= ? AND is_paid_only = ?`)
	args := []any{q.MinRating, q.MaxRating, boolToInt(q.Premium)}

	if len(q.Difficulties) > 0 {
		sb.WriteString(` AND difficulty IN (` + strings.Repeat("?,", len(q.Difficulties)-1) + `?)`)
		for _, d := range q.Difficulties {
			args = append(args, d)
		}
	}
	sb.WriteString(` ORDER BY rating ASC, id ASC`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("candidate query: %w", err)
	}
	defer rows.Close()

	var out []model.Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		if _, excluded := q.ExcludeIDs[p.ID]; excluded {
			continue
		}
		if !matchesAnyTopic(p.TopicTags, q.WeakTopics) {
			continue
		}
		out = append(out, *p)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate rows: %w", err)
	}
	return out, nil
}

func matchesAnyTopic(tags []string, weak map[string]float64) bool {
	for _, tag := range tags {
		if _, ok := weak[weights.NormalizeTopic(tag)]; ok {
			return true
		}
	}
	return false
}

// Put stores a corpus entry.
func (s *SQLiteStore) Put(ctx context.Context, p *model.Problem) error {
	tags, err := json.Marshal(p.TopicTags)
	if err != nil {
		return fmt.Errorf("encode topic tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO problems (id, title, title_slug, difficulty, is_paid_only, rating, topic_tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			title_slug = excluded.title_slug,
			difficulty = excluded.difficulty,
			is_paid_only = excluded.is_paid_only,
			rating = excluded.rating,
			topic_tags = excluded.topic_tags`,
		p.ID, p.Title, p.TitleSlug, p.Difficulty, boolToInt(p.IsPaidOnly), p.Rating, string(tags),
	)
	if err != nil {
		return fmt.Errorf("put problem %s: %w", p.ID, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
