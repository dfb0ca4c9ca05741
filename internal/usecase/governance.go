package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/openscholar/paperview"
	"github.com/openscholar/paperview/internal/domain"
	"github.com/openscholar/paperview/internal/service"
)

// ProposalView pairs a proposal with its derived voting stats.
type ProposalView struct {
	paperview.ProposalRecord
	Stats paperview.VotingStats `json:"stats"`
}

// GovernanceUsecase serves DAO proposals and aggregate governance stats.
type GovernanceUsecase struct {
	reader    ChainReader
	cache     *service.QueryCache
	snapshots SnapshotRepository
	tuning    domain.Tuning

	// now is swappable for tests.
	now func() time.Time
}

func NewGovernanceUsecase(
	reader ChainReader,
	cache *service.QueryCache,
	snapshots SnapshotRepository,
	tuning domain.Tuning,
) *GovernanceUsecase {
	return &GovernanceUsecase{
		reader:    reader,
		cache:     cache,
		snapshots: snapshots,
		tuning:    tuning,
		now:       time.Now,
	}
}

// probeProposals enumerates proposals by probing ids 1..N, where N is the
// contract-reported count or, when that read fails, the configured scan
// ceiling. Ids that fail to resolve are skipped; the result is ascending
// by id.
func (uc *GovernanceUsecase) probeProposals(ctx context.Context) ([]paperview.ProposalRecord, error) {

	ceiling, err := uc.reader.GetProposalCount(ctx)
	if err != nil || ceiling <= 0 {
		if err != nil {
			slog.Warn("proposal count unavailable, falling back to scan ceiling",
				slog.String("error", err.Error()))
		}
		ceiling = uc.tuning.Paging.ScanCeiling
	}

	proposals := make([]paperview.ProposalRecord, 0, ceiling)
	var transient error
	for id := int64(1); id <= ceiling; id++ {
		record, err := uc.reader.GetProposal(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			transient = err
			continue
		}
		proposals = append(proposals, *record)
	}

	// A run where every probe failed with provider errors should retry,
	// not cache an empty list.
	if len(proposals) == 0 && transient != nil {
		return nil, transient
	}

	if uc.snapshots != nil && len(proposals) > 0 {
		if err := uc.snapshots.SaveProposals(ctx, proposals); err != nil {
			slog.Warn("failed to snapshot proposals", slog.String("error", err.Error()))
		}
	}

	return proposals, nil
}

// Proposals returns all resolvable proposals in ascending id order.
func (uc *GovernanceUsecase) Proposals(ctx context.Context) ([]paperview.ProposalRecord, error) {
	proposals, err := service.FetchAs(ctx, uc.cache, domain.KeyProposals, domain.CategoryShort, uc.probeProposals)
	if err == nil {
		return proposals, nil
	}

	if uc.snapshots != nil && errors.Is(err, domain.ErrTransient) {
		cached, loadErr := uc.snapshots.LoadProposals(ctx)
		if loadErr == nil && len(cached) > 0 {
			slog.Warn("serving proposals from snapshot store", slog.String("error", err.Error()))
			return cached, nil
		}
	}

	return nil, err
}

// ProposalViews returns all proposals with derived voting stats, computed
// over one atomic snapshot of the fetched list.
func (uc *GovernanceUsecase) ProposalViews(ctx context.Context) ([]ProposalView, error) {
	proposals, err := uc.Proposals(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	views := make([]ProposalView, 0, len(proposals))
	for _, p := range proposals {
		views = append(views, ProposalView{
			ProposalRecord: p,
			Stats:          ComputeVotingStats(p, now),
		})
	}
	return views, nil
}

// Proposal returns one proposal with stats, or domain.ErrNotFound.
func (uc *GovernanceUsecase) Proposal(ctx context.Context, id int64) (*ProposalView, error) {
	key := fmt.Sprintf("%s:%d", domain.KeyProposal, id)
	record, err := service.FetchAs(ctx, uc.cache, key, domain.CategoryShort,
		func(ctx context.Context) (*paperview.ProposalRecord, error) {
			return uc.reader.GetProposal(ctx, id)
		})
	if err != nil {
		return nil, err
	}

	return &ProposalView{
		ProposalRecord: *record,
		Stats:          ComputeVotingStats(*record, uc.now()),
	}, nil
}

// ActiveProposalIDs returns the ids currently open for voting.
func (uc *GovernanceUsecase) ActiveProposalIDs(ctx context.Context) ([]int64, error) {
	key := domain.KeyProposals + ":active"
	return service.FetchAs(ctx, uc.cache, key, domain.CategoryShort, uc.reader.GetActiveProposalIDs)
}

// Stats aggregates governance activity across all proposals.
func (uc *GovernanceUsecase) Stats(ctx context.Context) (paperview.GovernanceStats, error) {
	proposals, err := uc.Proposals(ctx)
	if err != nil {
		return paperview.GovernanceStats{}, err
	}
	return ComputeGovernanceStats(proposals), nil
}
