package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openscholar/paperview"
	"github.com/openscholar/paperview/internal/infrastructure/database/models"
)

var tracer = otel.Tracer("repository")

// SnapshotRepository persists normalized chain records so RPC outages
// degrade to slightly old data instead of empty pages.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// SavePapers upserts the given records by token id.
func (r *SnapshotRepository) SavePapers(ctx context.Context, papers []paperview.PaperRecord) error {
	ctx, span := tracer.Start(ctx, "Repository.Snapshot.SavePapers")
	defer span.End()

	if len(papers) == 0 {
		return nil
	}

	rows := make([]models.PaperSnapshot, 0, len(papers))
	for _, p := range papers {
		id, err := strconv.ParseInt(p.TokenID, 10, 64)
		if err != nil {
			continue
		}
		rows = append(rows, models.PaperSnapshot{
			TokenID:     id,
			Title:       p.Title,
			Author:      p.Author,
			Affiliation: p.Affiliation,
			ContentHash: p.ContentHash,
			Status:      int(p.Status),
			MintedAt:    p.MintedAt,
			Owner:       paperview.NormalizeAddress(p.Owner),
			UpdatedAt:   time.Now(),
		})
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to upsert paper snapshots")
	}
	return nil
}

// LoadPapers returns the snapshot window ordered by token id. A negative
// limit loads everything past offset.
func (r *SnapshotRepository) LoadPapers(ctx context.Context, offset, limit int64) ([]paperview.PaperRecord, error) {
	ctx, span := tracer.Start(ctx, "Repository.Snapshot.LoadPapers")
	defer span.End()

	query := r.db.WithContext(ctx).Order("token_id asc").Offset(int(offset))
	if limit >= 0 {
		query = query.Limit(int(limit))
	}

	var rows []models.PaperSnapshot
	err := query.Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to load paper snapshots")
	}

	papers := make([]paperview.PaperRecord, 0, len(rows))
	for _, row := range rows {
		papers = append(papers, paperview.PaperRecord{
			TokenID:     strconv.FormatInt(row.TokenID, 10),
			Title:       row.Title,
			Author:      row.Author,
			Affiliation: row.Affiliation,
			ContentHash: row.ContentHash,
			Status:      paperview.PaperStatus(row.Status),
			MintedAt:    row.MintedAt,
			Owner:       row.Owner,
		})
	}
	return papers, nil
}

// SaveProposals upserts the given proposals by id.
func (r *SnapshotRepository) SaveProposals(ctx context.Context, proposals []paperview.ProposalRecord) error {
	ctx, span := tracer.Start(ctx, "Repository.Snapshot.SaveProposals")
	defer span.End()

	if len(proposals) == 0 {
		return nil
	}

	rows := make([]models.ProposalSnapshot, 0, len(proposals))
	for _, p := range proposals {
		rows = append(rows, models.ProposalSnapshot{
			ID:            p.ID,
			Title:         p.Title,
			Description:   p.Description,
			Type:          int(p.Type),
			Status:        int(p.Status),
			VotesFor:      p.VotesFor,
			VotesAgainst:  p.VotesAgainst,
			TotalVotes:    p.TotalVotes,
			Proposer:      paperview.NormalizeAddress(p.Proposer),
			StartTime:     p.StartTime,
			EndTime:       p.EndTime,
			RequiredVotes: p.RequiredVotes,
			UpdatedAt:     time.Now(),
		})
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to upsert proposal snapshots")
	}
	return nil
}

// LoadProposals returns every snapshotted proposal ascending by id.
func (r *SnapshotRepository) LoadProposals(ctx context.Context) ([]paperview.ProposalRecord, error) {
	ctx, span := tracer.Start(ctx, "Repository.Snapshot.LoadProposals")
	defer span.End()

	var rows []models.ProposalSnapshot
	err := r.db.WithContext(ctx).Order("id asc").Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to load proposal snapshots")
	}

	proposals := make([]paperview.ProposalRecord, 0, len(rows))
	for _, row := range rows {
		proposals = append(proposals, paperview.ProposalRecord{
			ID:            row.ID,
			Title:         row.Title,
			Description:   row.Description,
			Type:          paperview.ProposalType(row.Type),
			Status:        paperview.ProposalStatus(row.Status),
			VotesFor:      row.VotesFor,
			VotesAgainst:  row.VotesAgainst,
			TotalVotes:    row.TotalVotes,
			Proposer:      row.Proposer,
			StartTime:     row.StartTime,
			EndTime:       row.EndTime,
			RequiredVotes: row.RequiredVotes,
		})
	}
	return proposals, nil
}
