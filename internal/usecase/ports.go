package usecase

import (
	"context"

	"github.com/openscholar/paperview"
)

// ChainReader defines the read-only contract surface. Implementations
// return domain.ErrNotFound for records that do not exist and
// domain.TransientError for provider failures; the two are never
// conflated.
type ChainReader interface {
	GetPaper(ctx context.Context, tokenID string) (*paperview.PaperRecord, error)
	GetTotalSupply(ctx context.Context) (int64, error)
	GetPaperOwner(ctx context.Context, tokenID string) (string, error)
	GetPapersInRange(ctx context.Context, offset, limit int64) ([]paperview.PaperRecord, error)
	GetProposal(ctx context.Context, id int64) (*paperview.ProposalRecord, error)
	GetProposalCount(ctx context.Context) (int64, error)
	GetActiveProposalIDs(ctx context.Context) ([]int64, error)
	GetVerifierStats(ctx context.Context, address string) (*paperview.VerifierStats, error)
	IsRegisteredVerifier(ctx context.Context, address string) (bool, error)
	GetPaperVerifications(ctx context.Context, tokenID string) ([]paperview.VerificationRecord, error)
	GetTokenBalance(ctx context.Context, address string) (int64, error)
}

// MetadataResolver fetches paper metadata documents. (nil, nil) means the
// document is absent or unparseable; the paper renders with placeholders.
type MetadataResolver interface {
	Resolve(ctx context.Context, contentHash string) (*paperview.PaperMetadata, error)
}

// SnapshotRepository persists the last successfully normalized records so
// an RPC outage degrades to slightly old data instead of a blank page.
type SnapshotRepository interface {
	SavePapers(ctx context.Context, papers []paperview.PaperRecord) error
	LoadPapers(ctx context.Context, offset, limit int64) ([]paperview.PaperRecord, error)
	SaveProposals(ctx context.Context, proposals []paperview.ProposalRecord) error
	LoadProposals(ctx context.Context) ([]paperview.ProposalRecord, error)
}
