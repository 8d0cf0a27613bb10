package service

import (
	"context"
	"log"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/ruleset"
	"strideworks/plan-engine/internal/storage"
)

// RulesetService exposes the coach-editable planning ruleset: read, preview a
// diff, save with validation, and roll back to the previous revision.
type RulesetService interface {
	GetActive(ctx context.Context) (*domain.Ruleset, error)
	PreviewDiff(ctx context.Context, candidate *domain.Ruleset) (ruleset.Diff, error)
	Save(ctx context.Context, candidate *domain.Ruleset) (*ruleset.SaveResult, error)
	Rollback(ctx context.Context) (*domain.Ruleset, error)
}

// rulesetService implements the RulesetService interface.
type rulesetService struct {
	store    ruleset.Store
	archiver storage.SnapshotArchiver
}

// NewRulesetService creates a new instance of rulesetService.
func NewRulesetService(store ruleset.Store, archiver storage.SnapshotArchiver) RulesetService {
	if archiver == nil {
		archiver = storage.NoopArchiver{}
	}
	return &rulesetService{
		store:    store,
		archiver: archiver,
	}
}

// GetActive returns the ruleset the planner is currently using.
func (s *rulesetService) GetActive(ctx context.Context) (*domain.Ruleset, error) {
	return s.store.Load()
}

// PreviewDiff compares a candidate against the active ruleset without saving.
func (s *rulesetService) PreviewDiff(ctx context.Context, candidate *domain.Ruleset) (ruleset.Diff, error) {
	current, err := s.store.Load()
	if err != nil {
		return ruleset.Diff{}, err
	}
	return ruleset.ComputeDiff(candidate, current), nil
}

// Save validates and persists a candidate ruleset. The replaced revision is
// archived best-effort; an archive failure is logged but never undoes the
// save.
func (s *rulesetService) Save(ctx context.Context, candidate *domain.Ruleset) (*ruleset.SaveResult, error) {
	result, err := s.store.Save(candidate)
	if err != nil {
		return result, err
	}

	if len(result.ReplacedPayload) > 0 {
		version := ""
		if result.Snapshot != nil {
			version = result.Snapshot.Meta.PolicyVersion
		}
		key, archiveErr := s.archiver.ArchiveSnapshot(ctx, version, result.ReplacedPayload)
		if archiveErr != nil {
			log.Printf("WARN: Failed to archive replaced ruleset revision: %v", archiveErr)
		} else if key != "" {
			log.Printf("INFO: Archived replaced ruleset revision as %s", key)
		}
	}
	return result, nil
}

// Rollback restores the previous ruleset revision.
func (s *rulesetService) Rollback(ctx context.Context) (*domain.Ruleset, error) {
	return s.store.Rollback()
}
