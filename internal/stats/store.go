// Package stats keeps a local history of bot runs as JSON Lines.
package stats

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spiffcs/issuebot/internal/constants"
	"github.com/spiffcs/issuebot/internal/log"
	"github.com/spiffcs/issuebot/internal/policy"
)

// Snapshot summarizes one engine run.
type Snapshot struct {
	Timestamp    time.Time   `json:"ts"`
	Repository   string      `json:"repo"`
	Mode         policy.Mode `json:"mode"`
	DryRun       bool        `json:"dryRun,omitempty"`
	Evaluated    int         `json:"evaluated"`
	Fresh        int         `json:"fresh"`
	Warned       int         `json:"warned"`
	PendingClose int         `json:"pendingClose"`
	Closed       int         `json:"closed"`
	Skipped      int         `json:"skipped"`
	Reactivated  int         `json:"reactivated"`
	Failures     int         `json:"failures"`
	Aborted      bool        `json:"aborted,omitempty"`
}

// FromReport builds a snapshot from an engine report.
func FromReport(repo string, report policy.Report) Snapshot {
	snap := Snapshot{
		Timestamp:  report.EvaluatedAt,
		Repository: repo,
		Mode:       report.Mode,
		DryRun:     report.DryRun,
		Evaluated:  len(report.Outcomes),
		Skipped:    report.Count(policy.TierSkip),
		Failures:   len(report.Failures()),
		Aborted:    report.Aborted != nil,
	}

	switch report.Mode {
	case policy.ModeReactivate:
		for _, o := range report.Outcomes {
			if o.Tier == policy.TierFresh && !o.Failed() {
				snap.Reactivated++
			}
		}
	default:
		snap.Fresh = report.Count(policy.TierFresh)
		snap.Warned = report.Count(policy.TierWarn)
		snap.PendingClose = report.Count(policy.TierPendingClose)
		snap.Closed = report.Count(policy.TierClosed)
	}

	return snap
}

// Store manages persistence of run snapshots as JSON Lines.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store at ~/.cache/issuebot/history.jsonl.
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cacheDir, "issuebot")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Store{
		path: filepath.Join(dir, "history.jsonl"),
	}, nil
}

// NewStoreWithPath creates a store at the given path.
func NewStoreWithPath(path string) *Store {
	return &Store{path: path}
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Append adds snapshots and prunes to the most recent MaxHistoryRecords.
func (s *Store) Append(snaps ...Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		log.Debug("could not read history, starting fresh", "error", err)
		records = nil
	}

	records = append(records, snaps...)
	if len(records) > constants.MaxHistoryRecords {
		records = records[len(records)-constants.MaxHistoryRecords:]
	}

	return s.writeAll(records)
}

// Recent returns the last n snapshots, oldest first. When repo is not
// empty only that repository's runs are considered.
func (s *Store) Recent(n int, repo string) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		log.Debug("could not read history", "path", s.path, "error", err)
		return nil
	}

	if repo != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.Repository == repo {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

func (s *Store) readAll() ([]Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var records []Snapshot
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			continue // skip malformed lines
		}
		records = append(records, snap)
	}
	return records, scanner.Err()
}

// writeAll replaces the file through a rename so readers never see a
// half-written history.
func (s *Store) writeAll(records []Snapshot) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, s.path)
}
