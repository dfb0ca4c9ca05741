package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/openscholar/paperview"
	"github.com/openscholar/paperview/internal/domain"
	"github.com/openscholar/paperview/internal/service"
)

// Shown when a paper has no resolvable metadata document.
const defaultAbstract = "Abstract not yet available."

// PaperUsecase serves paper lists, asset views, and the review queue.
// All chain and gateway reads go through the query cache.
type PaperUsecase struct {
	reader    ChainReader
	metadata  MetadataResolver
	cache     *service.QueryCache
	snapshots SnapshotRepository
	tuning    domain.Tuning
}

func NewPaperUsecase(
	reader ChainReader,
	metadata MetadataResolver,
	cache *service.QueryCache,
	snapshots SnapshotRepository,
	tuning domain.Tuning,
) *PaperUsecase {
	return &PaperUsecase{
		reader:    reader,
		metadata:  metadata,
		cache:     cache,
		snapshots: snapshots,
		tuning:    tuning,
	}
}

// TotalSupply reads the minted paper count, cached on a medium window.
func (uc *PaperUsecase) TotalSupply(ctx context.Context) (int64, error) {
	return service.FetchAs(ctx, uc.cache, domain.KeyTotalSupply, domain.CategoryMedium, uc.reader.GetTotalSupply)
}

// listPage loads one page of papers from chain, falling back to the
// snapshot store when retries exhaust. Successful reads refresh the
// snapshots.
func (uc *PaperUsecase) listPage(ctx context.Context, offset, limit int64) ([]paperview.PaperRecord, error) {

	total, err := uc.reader.GetTotalSupply(ctx)
	if err != nil {
		return nil, err
	}

	offset, limit = PageBounds(offset, limit, total)
	papers, err := uc.reader.GetPapersInRange(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	if uc.snapshots != nil && len(papers) > 0 {
		if err := uc.snapshots.SavePapers(ctx, papers); err != nil {
			slog.Warn("failed to snapshot papers", slog.String("error", err.Error()))
		}
	}

	return papers, nil
}

// Papers returns one page of raw paper records. offset/limit outside the
// supply are clamped; a fixed pair never overlaps another window while
// the supply is unchanged.
func (uc *PaperUsecase) Papers(ctx context.Context, offset, limit int64) ([]paperview.PaperRecord, error) {

	if limit <= 0 {
		limit = int64(uc.tuning.Paging.PageSize)
	}

	key := fmt.Sprintf("%s:%d:%d", domain.KeyPapers, offset, limit)
	papers, err := service.FetchAs(ctx, uc.cache, key, domain.CategoryMedium,
		func(ctx context.Context) ([]paperview.PaperRecord, error) {
			return uc.listPage(ctx, offset, limit)
		})
	if err == nil {
		return papers, nil
	}

	// Degraded path: after retry exhaustion, serve the last snapshot
	// rather than a blank page.
	if uc.snapshots != nil && errors.Is(err, domain.ErrTransient) {
		cached, loadErr := uc.snapshots.LoadPapers(ctx, offset, limit)
		if loadErr == nil && len(cached) > 0 {
			slog.Warn("serving papers from snapshot store", slog.String("error", err.Error()))
			return cached, nil
		}
	}

	return nil, err
}

// AllPapers returns every minted paper, cached as one query key.
func (uc *PaperUsecase) AllPapers(ctx context.Context) ([]paperview.PaperRecord, error) {
	key := domain.KeyPapers + ":all"
	papers, err := service.FetchAs(ctx, uc.cache, key, domain.CategoryMedium,
		func(ctx context.Context) ([]paperview.PaperRecord, error) {
			total, err := uc.reader.GetTotalSupply(ctx)
			if err != nil {
				return nil, err
			}
			return uc.listPage(ctx, 0, total)
		})
	if err == nil {
		return papers, nil
	}

	if uc.snapshots != nil && errors.Is(err, domain.ErrTransient) {
		cached, loadErr := uc.snapshots.LoadPapers(ctx, 0, -1)
		if loadErr == nil && len(cached) > 0 {
			slog.Warn("serving papers from snapshot store", slog.String("error", err.Error()))
			return cached, nil
		}
	}

	return nil, err
}

// Buckets partitions all papers by status for the dashboard.
func (uc *PaperUsecase) Buckets(ctx context.Context) (paperview.StatusBuckets, error) {
	papers, err := uc.AllPapers(ctx)
	if err != nil {
		return paperview.StatusBuckets{}, err
	}
	return BucketByStatus(papers), nil
}

// PendingReview returns the draft papers awaiting verification. The queue
// churns quickly, so it runs on its own short-window key.
func (uc *PaperUsecase) PendingReview(ctx context.Context) ([]paperview.PaperRecord, error) {
	key := domain.KeyPapers + ":pending"
	return service.FetchAs(ctx, uc.cache, key, domain.CategoryShort,
		func(ctx context.Context) ([]paperview.PaperRecord, error) {
			total, err := uc.reader.GetTotalSupply(ctx)
			if err != nil {
				return nil, err
			}
			papers, err := uc.reader.GetPapersInRange(ctx, 0, total)
			if err != nil {
				return nil, err
			}
			return BucketByStatus(papers).Draft, nil
		})
}

// Asset returns the full derived view for one paper.
func (uc *PaperUsecase) Asset(ctx context.Context, tokenID string) (*paperview.AssetView, error) {
	key := domain.KeyPaper + ":" + tokenID
	record, err := service.FetchAs(ctx, uc.cache, key, domain.CategoryMedium,
		func(ctx context.Context) (*paperview.PaperRecord, error) {
			record, err := uc.reader.GetPaper(ctx, tokenID)
			if err != nil {
				return nil, err
			}
			owner, err := uc.reader.GetPaperOwner(ctx, tokenID)
			if err == nil {
				record.Owner = owner
			}
			return record, nil
		})
	if err != nil {
		return nil, err
	}

	view := uc.assetView(ctx, *record)
	return &view, nil
}

// ListAssets returns one page of derived asset views.
func (uc *PaperUsecase) ListAssets(ctx context.Context, offset, limit int64) ([]paperview.AssetView, error) {
	papers, err := uc.Papers(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return uc.assetViews(ctx, papers), nil
}

// OwnedAssets returns the derived views of papers owned by a wallet,
// matched case-insensitively.
func (uc *PaperUsecase) OwnedAssets(ctx context.Context, owner string) ([]paperview.AssetView, error) {
	papers, err := uc.AllPapers(ctx)
	if err != nil {
		return nil, err
	}
	return uc.assetViews(ctx, OwnedAssets(papers, owner)), nil
}

// Verifications returns the verification history of a paper.
func (uc *PaperUsecase) Verifications(ctx context.Context, tokenID string) ([]paperview.VerificationRecord, error) {
	key := domain.KeyVerifications + ":" + tokenID
	return service.FetchAs(ctx, uc.cache, key, domain.CategoryShort,
		func(ctx context.Context) ([]paperview.VerificationRecord, error) {
			return uc.reader.GetPaperVerifications(ctx, tokenID)
		})
}

// assetViews derives views over a single snapshot of the input records.
func (uc *PaperUsecase) assetViews(ctx context.Context, papers []paperview.PaperRecord) []paperview.AssetView {
	views := make([]paperview.AssetView, 0, len(papers))
	for _, p := range papers {
		views = append(views, uc.assetView(ctx, p))
	}
	return views
}

// assetView joins a paper with its metadata document and derives the AI
// score and reward. Metadata failure never blocks the on-chain fields:
// the view degrades to placeholders.
func (uc *PaperUsecase) assetView(ctx context.Context, record paperview.PaperRecord) paperview.AssetView {

	view := paperview.AssetView{
		PaperRecord: record,
		Description: defaultAbstract,
	}

	md := uc.resolveMetadata(ctx, record.ContentHash)
	if md != nil {
		view.HasMetadata = true
		if md.Description != "" {
			view.Description = md.Description
		}
		// Display-only override; the on-chain author field is never
		// written back.
		if author := md.Attribute(paperview.TraitAuthor); author != "" {
			view.Author = author
		}
		view.Keywords = md.Attribute(paperview.TraitKeywords)
		if score, ok := paperview.ParsePercent(md.Attribute(paperview.TraitAICertainty)); ok {
			view.AIScore = score
		}
	}

	view.Reward, view.RewardTier = RewardForScore(view.AIScore, uc.tuning.Rewards)
	return view
}

func (uc *PaperUsecase) resolveMetadata(ctx context.Context, contentHash string) *paperview.PaperMetadata {
	if contentHash == "" {
		return nil
	}
	key := domain.KeyMetadata + ":" + contentHash
	md, err := service.FetchAs(ctx, uc.cache, key, domain.CategoryLong,
		func(ctx context.Context) (*paperview.PaperMetadata, error) {
			return uc.metadata.Resolve(ctx, contentHash)
		})
	if err != nil {
		slog.Debug("metadata unavailable", slog.String("contentHash", contentHash),
			slog.String("error", err.Error()))
		return nil
	}
	return md
}
