package usecase

import (
	"context"
	"sync"

	"github.com/openscholar/paperview"
	"github.com/openscholar/paperview/internal/domain"
)

// mockReader implements ChainReader with per-method function hooks.
// Unhooked methods report absence.
type mockReader struct {
	getPaper              func(ctx context.Context, tokenID string) (*paperview.PaperRecord, error)
	getTotalSupply        func(ctx context.Context) (int64, error)
	getPaperOwner         func(ctx context.Context, tokenID string) (string, error)
	getPapersInRange      func(ctx context.Context, offset, limit int64) ([]paperview.PaperRecord, error)
	getProposal           func(ctx context.Context, id int64) (*paperview.ProposalRecord, error)
	getProposalCount      func(ctx context.Context) (int64, error)
	getActiveProposalIDs  func(ctx context.Context) ([]int64, error)
	getVerifierStats      func(ctx context.Context, address string) (*paperview.VerifierStats, error)
	isRegisteredVerifier  func(ctx context.Context, address string) (bool, error)
	getPaperVerifications func(ctx context.Context, tokenID string) ([]paperview.VerificationRecord, error)
	getTokenBalance       func(ctx context.Context, address string) (int64, error)
}

func (m *mockReader) GetPaper(ctx context.Context, tokenID string) (*paperview.PaperRecord, error) {
	if m.getPaper == nil {
		return nil, domain.NotFoundError{Resource: "paper " + tokenID}
	}
	return m.getPaper(ctx, tokenID)
}

func (m *mockReader) GetTotalSupply(ctx context.Context) (int64, error) {
	if m.getTotalSupply == nil {
		return 0, nil
	}
	return m.getTotalSupply(ctx)
}

func (m *mockReader) GetPaperOwner(ctx context.Context, tokenID string) (string, error) {
	if m.getPaperOwner == nil {
		return "", domain.NotFoundError{Resource: "owner of " + tokenID}
	}
	return m.getPaperOwner(ctx, tokenID)
}

func (m *mockReader) GetPapersInRange(ctx context.Context, offset, limit int64) ([]paperview.PaperRecord, error) {
	if m.getPapersInRange == nil {
		return []paperview.PaperRecord{}, nil
	}
	return m.getPapersInRange(ctx, offset, limit)
}

func (m *mockReader) GetProposal(ctx context.Context, id int64) (*paperview.ProposalRecord, error) {
	if m.getProposal == nil {
		return nil, domain.NotFoundError{Resource: "proposal"}
	}
	return m.getProposal(ctx, id)
}

func (m *mockReader) GetProposalCount(ctx context.Context) (int64, error) {
	if m.getProposalCount == nil {
		return 0, nil
	}
	return m.getProposalCount(ctx)
}

func (m *mockReader) GetActiveProposalIDs(ctx context.Context) ([]int64, error) {
	if m.getActiveProposalIDs == nil {
		return []int64{}, nil
	}
	return m.getActiveProposalIDs(ctx)
}

func (m *mockReader) GetVerifierStats(ctx context.Context, address string) (*paperview.VerifierStats, error) {
	if m.getVerifierStats == nil {
		return nil, domain.NotFoundError{Resource: "verifier " + address}
	}
	return m.getVerifierStats(ctx, address)
}

func (m *mockReader) IsRegisteredVerifier(ctx context.Context, address string) (bool, error) {
	if m.isRegisteredVerifier == nil {
		return false, nil
	}
	return m.isRegisteredVerifier(ctx, address)
}

func (m *mockReader) GetPaperVerifications(ctx context.Context, tokenID string) ([]paperview.VerificationRecord, error) {
	if m.getPaperVerifications == nil {
		return []paperview.VerificationRecord{}, nil
	}
	return m.getPaperVerifications(ctx, tokenID)
}

func (m *mockReader) GetTokenBalance(ctx context.Context, address string) (int64, error) {
	if m.getTokenBalance == nil {
		return 0, nil
	}
	return m.getTokenBalance(ctx, address)
}

// mockMetadata implements MetadataResolver over a fixed hash -> document
// map. Unknown hashes resolve to absence.
type mockMetadata struct {
	docs map[string]*paperview.PaperMetadata
}

func (m *mockMetadata) Resolve(ctx context.Context, contentHash string) (*paperview.PaperMetadata, error) {
	if m.docs == nil {
		return nil, nil
	}
	return m.docs[contentHash], nil
}

// mockSnapshots implements SnapshotRepository in memory.
type mockSnapshots struct {
	mu        sync.Mutex
	papers    []paperview.PaperRecord
	proposals []paperview.ProposalRecord
	saves     int
}

func (m *mockSnapshots) SavePapers(ctx context.Context, papers []paperview.PaperRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.papers = papers
	m.saves++
	return nil
}

func (m *mockSnapshots) LoadPapers(ctx context.Context, offset, limit int64) ([]paperview.PaperRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit < 0 || offset >= int64(len(m.papers)) {
		return m.papers, nil
	}
	end := offset + limit
	if end > int64(len(m.papers)) {
		end = int64(len(m.papers))
	}
	return m.papers[offset:end], nil
}

func (m *mockSnapshots) SaveProposals(ctx context.Context, proposals []paperview.ProposalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals = proposals
	m.saves++
	return nil
}

func (m *mockSnapshots) LoadProposals(ctx context.Context) ([]paperview.ProposalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proposals, nil
}
