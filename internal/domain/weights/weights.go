// Package weights provides the topic complexity-weight table consumed by the
// weakness scorer. The table is built once at startup from a statistical
// artifact and treated as immutable afterwards.
package weights

import (
	"math"
	"os"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// Normalization bounds for complexity weights.
const (
	weightFloor = 0.5
	weightSpan  = 2.5

	// Topics below this weight are considered too ubiquitous to carry a
	// weakness signal and join the filtered set.
	filterThreshold = 0.8

	defaultWeight = 1.0
)

// stoplist holds topics excluded regardless of weight.
var stoplist = []string{
	"array",
	"arrays",
	"hash table",
	"implementation",
	"brute-force",
	"simulation",
}

// artifactEntry mirrors one record of the tag-averages artifact produced by
// the offline corpus pass.
type artifactEntry struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Score float64 `json:"score"`
}

// Table maps normalized topic keys to complexity multipliers in [0.5, 3.0].
type Table struct {
	weights  map[string]float64
	filtered map[string]struct{}
	scoreMin float64
	scoreMax float64
	fallback bool
}

// Option applies a configuration option to table loading.
type Option func(*loaderConfig)

type loaderConfig struct {
	readFile func(string) ([]byte, error)
}

// WithReadFile overrides artifact reading, used in tests.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(c *loaderConfig) {
		if fn != nil {
			c.readFile = fn
		}
	}
}

var topicSeparators = regexp.MustCompile(`[\s_]+`)

// NormalizeTopic lowercases a topic name and collapses spaces and
// underscores into hyphens, matching the artifact's key convention.
func NormalizeTopic(topic string) string {
	t := strings.ToLower(strings.TrimSpace(topic))
	return topicSeparators.ReplaceAllString(t, "-")
}

// Load builds a Table from the artifact at path. A missing or malformed
// artifact never fails the process: the hard-coded fallback table is used
// instead, and Fallback() reports the degradation.
func Load(path string, opts ...Option) *Table {
	cfg := &loaderConfig{readFile: os.ReadFile}
	for _, opt := range opts {
		opt(cfg)
	}

	t, err := loadArtifact(path, cfg)
	if err != nil {
		t = fallbackTable()
	}
	t.buildFilteredSet()
	return t
}

func loadArtifact(path string, cfg *loaderConfig) (*Table, error) {
	raw, err := cfg.readFile(path)
	if err != nil {
		return nil, err
	}

	var entries map[string]artifactEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	minScore := math.Inf(1)
	maxScore := math.Inf(-1)
	usable := 0
	for _, e := range entries {
		if e.Score <= 0 {
			continue
		}
		usable++
		minScore = math.Min(minScore, e.Score)
		maxScore = math.Max(maxScore, e.Score)
	}
	if usable < 2 || maxScore <= minScore {
		return nil, errDegenerateArtifact
	}

	t := &Table{
		weights:  make(map[string]float64, len(entries)),
		scoreMin: minScore,
		scoreMax: maxScore,
	}
	for topic, e := range entries {
		if e.Score <= 0 {
			continue
		}
		w := weightFloor + weightSpan*(e.Score-minScore)/(maxScore-minScore)
		t.weights[NormalizeTopic(topic)] = round2(w)
	}
	return t, nil
}

// fallbackTable is the hard-coded table used when the artifact is absent.
func fallbackTable() *Table {
	return &Table{
		weights: map[string]float64{
			"dynamic-programming": 2.5,
			"graph":               2.3,
			"tree":                2.0,
			"binary-search":       2.0,
			"backtracking":        2.2,
			"trie":                2.4,
			"heap":                2.0,
			"linked-list":         1.5,
			"stack":               1.4,
			"queue":               1.4,
			"hash-table":          0.7,
			"string":              0.9,
			"math":                1.0,
		},
		scoreMin: 1,
		scoreMax: 1,
		fallback: true,
	}
}

func (t *Table) buildFilteredSet() {
	t.filtered = make(map[string]struct{})
	for topic, w := range t.weights {
		if w < filterThreshold {
			t.filtered[topic] = struct{}{}
		}
	}
	for _, topic := range stoplist {
		t.filtered[NormalizeTopic(topic)] = struct{}{}
	}
}

// Weight returns the complexity multiplier for a topic, defaulting to 1.0
// for topics the table does not know.
func (t *Table) Weight(topic string) float64 {
	if w, ok := t.weights[NormalizeTopic(topic)]; ok {
		return w
	}
	return defaultWeight
}

// Filtered reports whether a topic belongs to the exclusion set.
func (t *Table) Filtered(topic string) bool {
	_, ok := t.filtered[NormalizeTopic(topic)]
	return ok
}

// Len returns the number of topics carrying an explicit weight.
func (t *Table) Len() int { return len(t.weights) }

// FilteredCount returns the size of the exclusion set.
func (t *Table) FilteredCount() int { return len(t.filtered) }

// ScoreRange returns the raw artifact score spread the table was
// normalized against.
func (t *Table) ScoreRange() (minScore, maxScore float64) {
	return t.scoreMin, t.scoreMax
}

// Fallback reports whether the hard-coded table is in use.
func (t *Table) Fallback() bool { return t.fallback }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
