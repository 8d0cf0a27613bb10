package ruleset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"strideworks/plan-engine/internal/domain"
)

// ErrValidationFailed is returned by Save when the candidate ruleset is
// rejected; the SaveResult carries the individual problems. Nothing is
// persisted on a rejected save.
var ErrValidationFailed = errors.New("ruleset validation failed")

// ErrNoBackup is returned by Rollback when no backup revision exists yet.
var ErrNoBackup = errors.New("no ruleset backup available")

// SaveResult reports the outcome of a Save: the persisted snapshot, the raw
// JSON of the revision it replaced (for archival), and any advisory
// warnings. On validation failure only Errors is populated.
type SaveResult struct {
	Snapshot        *domain.Ruleset `json:"snapshot,omitempty"`
	ReplacedPayload []byte          `json:"-"`
	Warnings        []string        `json:"warnings,omitempty"`
	Errors          []string        `json:"errors,omitempty"`
}

// Store is the versioned, coach-editable ruleset store. Implementations must
// be safe for concurrent use; the planner re-reads the active ruleset at the
// start of every planning call instead of caching it.
type Store interface {
	Load() (*domain.Ruleset, error)
	Save(candidate *domain.Ruleset) (*SaveResult, error)
	Rollback() (*domain.Ruleset, error)
}

// FileStore keeps the active ruleset as a JSON file with a single
// backup-on-write revision next to it. When no file exists yet, Load serves
// the built-in default ruleset.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store over the given JSON file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) backupPath() string {
	return s.path + ".bak"
}

// Load reads the active ruleset from disk, or the built-in defaults when the
// file does not exist yet.
func (s *FileStore) Load() (*domain.Ruleset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore) loadLocked() (*domain.Ruleset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRuleset(), nil
		}
		return nil, fmt.Errorf("read ruleset file: %w", err)
	}
	var rs domain.Ruleset
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse ruleset file: %w", err)
	}
	return &rs, nil
}

// Save validates the candidate and, when acceptable, backs up the current
// file and atomically replaces it. The save is all-or-nothing: validation
// problems reject the whole candidate and leave the active ruleset
// untouched. Advisory warnings (missing version bump, large rule-count
// delta) accompany a successful save.
func (s *FileStore) Save(candidate *domain.Ruleset) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if problems := Validate(candidate); len(problems) > 0 {
		return &SaveResult{Errors: problems}, ErrValidationFailed
	}

	current, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	diff := ComputeDiff(candidate, current)

	snapshot := candidate.Clone()
	snapshot.Meta.PolicyRuleCount = countPolicyRules(snapshot)
	snapshot.Meta.OrchestrationRuleCount = len(snapshot.TokenOrchestrationRules)

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode ruleset: %w", err)
	}

	var replaced []byte
	if data, readErr := os.ReadFile(s.path); readErr == nil {
		replaced = data
		if err := os.WriteFile(s.backupPath(), data, 0o644); err != nil {
			return nil, fmt.Errorf("write ruleset backup: %w", err)
		}
	} else if !os.IsNotExist(readErr) {
		return nil, fmt.Errorf("read current ruleset: %w", readErr)
	}

	if err := s.writeAtomic(payload); err != nil {
		return nil, err
	}

	return &SaveResult{
		Snapshot:        snapshot,
		ReplacedPayload: replaced,
		Warnings:        diff.Warnings,
	}, nil
}

func (s *FileStore) writeAtomic(payload []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ruleset directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp ruleset file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp ruleset file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp ruleset file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ruleset file: %w", err)
	}
	return nil
}

// Rollback restores the most recent backup revision as the active ruleset
// and returns it.
func (s *FileStore) Rollback() (*domain.Ruleset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.backupPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackup
		}
		return nil, fmt.Errorf("read ruleset backup: %w", err)
	}
	var rs domain.Ruleset
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse ruleset backup: %w", err)
	}
	if err := s.writeAtomic(data); err != nil {
		return nil, err
	}
	return &rs, nil
}
