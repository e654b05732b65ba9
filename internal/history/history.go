// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists the time series of metric snapshots.
//
// The file is a JSON array rewritten in full on every run
// (load, prune, append, save). Pruning by age is applied when loading.
package history

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/bartekus/qualitydash/internal/projection"
	"github.com/bartekus/qualitydash/internal/report"
)

// DefaultMaxAgeDays is the default retention window.
const DefaultMaxAgeDays = 90

// Entry is one run's snapshot. Entries are never edited after they are appended.
type Entry struct {
	ID        string    `json:"id,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
	Date      string    `json:"date"`
	Commit    string    `json:"commit"`
	report.Metrics
}

// NewEntry builds the entry for a run at now.
func NewEntry(now time.Time, commitSHA string, m report.Metrics) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: Timestamp{Time: now.UTC()},
		Date:      now.UTC().Format(time.DateOnly),
		Commit:    ShortSHA(commitSHA),
		Metrics:   m,
	}
}

// ShortSHA returns the first 8 characters of sha, or "unknown" when empty.
func ShortSHA(sha string) string {
	if sha == "" {
		return "unknown"
	}
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

// Store reads and writes a history file.
type Store struct {
	path   string
	maxAge time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for pruning.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for non-fatal load problems.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a store for path keeping maxAgeDays of history.
func NewStore(path string, maxAgeDays int, opts ...Option) *Store {
	s := &Store{
		path:   path,
		maxAge: time.Duration(maxAgeDays) * 24 * time.Hour,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the history file location.
func (s *Store) Path() string { return s.path }

// Load returns the entries within the retention window in file order.
// A missing or corrupt file yields an empty history.
func (s *Store) Load() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("reading history failed, starting fresh", "path", s.path, "error", err)
		}
		return []Entry{}
	}

	var all []Entry
	if err := json.Unmarshal(data, &all); err != nil {
		s.logger.Warn("history file is corrupt, starting fresh", "path", s.path, "error", err)
		return []Entry{}
	}

	cutoff := s.now().Add(-s.maxAge)
	kept := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.Timestamp.IsZero() || e.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	if pruned := len(all) - len(kept); pruned > 0 {
		s.logger.Debug("pruned history entries", "count", pruned, "cutoff", cutoff.Format(time.RFC3339))
	}
	return kept
}

// Save overwrites the history file with entries.
func (s *Store) Save(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	return projection.WriteJSON(s.path, entries)
}

// Append loads the pruned history, adds e at the end and saves the result.
func (s *Store) Append(e Entry) ([]Entry, error) {
	entries := append(s.Load(), e)
	if err := s.Save(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Load reads path keeping entries newer than maxAgeDays.
func Load(path string, maxAgeDays int) []Entry {
	return NewStore(path, maxAgeDays).Load()
}

// Save writes entries to path.
func Save(path string, entries []Entry) error {
	return NewStore(path, DefaultMaxAgeDays).Save(entries)
}

// Append adds e to the history at path.
func Append(path string, e Entry, maxAgeDays int) ([]Entry, error) {
	return NewStore(path, maxAgeDays).Append(e)
}
