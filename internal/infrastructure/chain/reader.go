package chain

import (
	"context"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/openscholar/paperview"
	"github.com/openscholar/paperview/internal/config"
	"github.com/openscholar/paperview/internal/domain"
)

var tracer = otel.Tracer("chain")

// Addresses are the deployed contract locations the reader binds to.
type Addresses struct {
	PaperRegistry    common.Address
	VerifierRegistry common.Address
	Governance       common.Address
	Stablecoin       common.Address
}

// AddressesFromConfig parses the configured hex addresses.
func AddressesFromConfig(c config.Contracts) Addresses {
	return Addresses{
		PaperRegistry:    common.HexToAddress(c.PaperRegistry),
		VerifierRegistry: common.HexToAddress(c.VerifierRegistry),
		Governance:       common.HexToAddress(c.Governance),
		Stablecoin:       common.HexToAddress(c.Stablecoin),
	}
}

// Reader issues read-only calls against the deployed contracts and
// normalizes raw returns into typed records. "Record does not exist" is a
// valid outcome represented by domain.ErrNotFound, never a batch-aborting
// failure; provider-level problems surface as domain.TransientError.
type Reader struct {
	papers     *bind.BoundContract
	verifiers  *bind.BoundContract
	governance *bind.BoundContract
	token      *bind.BoundContract
	paging     domain.Paging
}

// NewReader binds the four read surfaces on one RPC connection.
func NewReader(client *ethclient.Client, addrs Addresses, paging domain.Paging) (*Reader, error) {

	parsedPapers, err := abi.JSON(strings.NewReader(paperRegistryABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse paper registry abi")
	}
	parsedVerifiers, err := abi.JSON(strings.NewReader(verifierRegistryABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse verifier registry abi")
	}
	parsedGovernance, err := abi.JSON(strings.NewReader(governanceABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse governance abi")
	}
	parsedToken, err := abi.JSON(strings.NewReader(stablecoinABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse stablecoin abi")
	}

	return &Reader{
		papers:     bind.NewBoundContract(addrs.PaperRegistry, parsedPapers, client, nil, nil),
		verifiers:  bind.NewBoundContract(addrs.VerifierRegistry, parsedVerifiers, client, nil, nil),
		governance: bind.NewBoundContract(addrs.Governance, parsedGovernance, client, nil, nil),
		token:      bind.NewBoundContract(addrs.Stablecoin, parsedToken, client, nil, nil),
		paging:     paging,
	}, nil
}

// Dial opens the RPC connection.
func Dial(rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RPC")
	}
	return client, nil
}

// classify maps a raw call error into the domain taxonomy. Reverts on view
// calls mean the probed record does not exist; anything else is a provider
// problem worth retrying.
func classify(op string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "execution reverted") || strings.Contains(msg, "revert") {
		return domain.NotFoundError{Resource: op}
	}
	return domain.TransientError{Op: op, Err: err}
}

func parseTokenID(tokenID string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(tokenID, 10)
	if !ok || id.Sign() < 0 {
		return nil, domain.NotFoundError{Resource: "token " + tokenID}
	}
	return id, nil
}

func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

// GetPaper reads one paper record. Returns domain.ErrNotFound when the
// token id is unused.
func (r *Reader) GetPaper(ctx context.Context, tokenID string) (*paperview.PaperRecord, error) {
	ctx, span := tracer.Start(ctx, "Chain.Reader.GetPaper")
	defer span.End()

	id, err := parseTokenID(tokenID)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	err = r.papers.Call(callOpts(ctx), &out, "getPaper", id)
	if err != nil {
		span.RecordError(err)
		return nil, classify("paper "+tokenID, err)
	}

	mintedAt := out[5].(*big.Int).Int64()
	record := &paperview.PaperRecord{
		TokenID:     tokenID,
		Title:       out[0].(string),
		Author:      out[1].(string),
		Affiliation: out[2].(string),
		ContentHash: out[3].(string),
		Status:      paperview.PaperStatusFromContract(out[4].(uint8)),
		MintedAt:    time.Unix(mintedAt, 0).UTC(),
	}

	// Registries that pre-allocate storage return a zero struct instead of
	// reverting for an unused id.
	if record.Title == "" && mintedAt == 0 {
		return nil, domain.NotFoundError{Resource: "paper " + tokenID}
	}

	return record, nil
}

// GetTotalSupply reads the number of minted papers.
func (r *Reader) GetTotalSupply(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Chain.Reader.GetTotalSupply")
	defer span.End()

	var out []interface{}
	err := r.papers.Call(callOpts(ctx), &out, "totalSupply")
	if err != nil {
		span.RecordError(err)
		return 0, classify("total supply", err)
	}
	return out[0].(*big.Int).Int64(), nil
}

// GetPaperOwner resolves the current owner wallet of a token.
func (r *Reader) GetPaperOwner(ctx context.Context, tokenID string) (string, error) {
	ctx, span := tracer.Start(ctx, "Chain.Reader.GetPaperOwner")
	defer span.End()

	id, err := parseTokenID(tokenID)
	if err != nil {
		return "", err
	}

	var out []interface{}
	err = r.papers.Call(callOpts(ctx), &out, "ownerOf", id)
	if err != nil {
		span.RecordError(err)
		return "", classify("owner of "+tokenID, err)
	}
	return strings.ToLower(out[0].(common.Address).Hex()), nil
}

// GetPapersInRange reads papers for token ids [offset+1, offset+limit],
// chunked into bounded sub-batches with an inter-chunk delay to respect
// upstream rate limits. Items that fail to resolve are logged and
// excluded; a single bad item never aborts the batch.
func (r *Reader) GetPapersInRange(ctx context.Context, offset, limit int64) ([]paperview.PaperRecord, error) {
	ctx, span := tracer.Start(ctx, "Chain.Reader.GetPapersInRange")
	defer span.End()

	if limit <= 0 {
		return []paperview.PaperRecord{}, nil
	}

	chunkSize := int64(r.paging.ChunkSize)
	if chunkSize <= 0 {
		chunkSize = 10
	}

	records := make([]paperview.PaperRecord, 0, limit)
	var transient error

	for start := offset + 1; start <= offset+limit; start += chunkSize {
		end := start + chunkSize - 1
		if end > offset+limit {
			end = offset + limit
		}

		chunk := make([]*paperview.PaperRecord, end-start+1)
		var wg sync.WaitGroup
		var mu sync.Mutex

		for i := start; i <= end; i++ {
			wg.Add(1)
			go func(tokenID int64, slot int) {
				defer wg.Done()
				record, err := r.GetPaper(ctx, big.NewInt(tokenID).String())
				if err != nil {
					if !errors.Is(err, domain.ErrNotFound) {
						slog.Warn("skipping paper in batch read",
							slog.Int64("tokenId", tokenID), slog.String("error", err.Error()))
						mu.Lock()
						transient = err
						mu.Unlock()
					}
					return
				}

				owner, err := r.GetPaperOwner(ctx, record.TokenID)
				if err == nil {
					record.Owner = owner
				}

				chunk[slot] = record
			}(i, int(i-start))
		}
		wg.Wait()

		for _, record := range chunk {
			if record != nil {
				records = append(records, *record)
			}
		}

		if end < offset+limit && r.paging.ChunkDelay > 0 {
			select {
			case <-time.After(r.paging.ChunkDelay):
			case <-ctx.Done():
				return records, domain.TransientError{Op: "batch read", Err: ctx.Err()}
			}
		}
	}

	// A wholly empty result caused by provider failures should retry, not
	// cache an empty page.
	if len(records) == 0 && transient != nil {
		return nil, transient
	}

	return records, nil
}

// GetProposal reads one governance proposal, or domain.ErrNotFound for an
// id past the real count.
func (r *Reader) GetProposal(ctx context.Context, id int64) (*paperview.ProposalRecord, error) {
	ctx, span := tracer.Start(ctx, "Chain.Reader.GetProposal")
	defer span.End()

	var out []interface{}
	err := r.governance.Call(callOpts(ctx), &out, "getProposal", big.NewInt(id))
	if err != nil {
		span.RecordError(err)
		return nil, classify("proposal", err)
	}

	record := &paperview.ProposalRecord{
		ID:            id,
		Title:         out[0].(string),
		Description:   out[1].(string),
		Type:          paperview.ProposalType(out[2].(uint8)),
		Status:        paperview.ProposalStatus(out[3].(uint8)),
		VotesFor:      out[4].(*big.Int).Int64(),
		VotesAgainst:  out[5].(*big.Int).Int64(),
		TotalVotes:    out[6].(*big.Int).Int64(),
		Proposer:      strings.ToLower(out[7].(common.Address).Hex()),
		StartTime:     time.Unix(out[8].(*big.Int).Int64(), 0).UTC(),
		EndTime:       time.Unix(out[9].(*big.Int).Int64(), 0).UTC(),
		RequiredVotes: out[10].(*big.Int).Int64(),
	}

	if record.Title == "" && record.StartTime.Unix() == 0 {
		return nil, domain.NotFoundError{Resource: "proposal"}
	}

	return record, nil
}

// GetProposalCount reads the contract-reported proposal count.
func (r *Reader) GetProposalCount(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Chain.Reader.GetProposalCount")
	defer span.End()

	var out []interface{}
	err := r.governance.Call(callOpts(ctx), &out, "getProposalCount")
	if err != nil {
		span.RecordError(err)
		return 0, classify("proposal count", err)
	}
	return out[0].(*big.Int).Int64(), nil
}

// GetActiveProposalIDs reads the ids of proposals currently open for
// voting.
func (r *Reader) GetActiveProposalIDs(ctx context.Context) ([]int64, error) {
	ctx, span := tracer.Start(ctx, "Chain.Reader.GetActiveProposalIDs")
	defer span.End()

	var out []interface{}
	err := r.governance.Call(callOpts(ctx), &out, "getActiveProposals")
	if err != nil {
		span.RecordError(err)
		return nil, classify("active proposals", err)
	}

	raw := out[0].([]*big.Int)
	ids := make([]int64, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, id.Int64())
	}
	return ids, nil
}

// GetVerifierStats reads the registry record for a wallet, or
// domain.ErrNotFound when the wallet never registered.
func (r *Reader) GetVerifierStats(ctx context.Context, address string) (*paperview.VerifierStats, error) {
	ctx, span := tracer.Start(ctx, "Chain.Reader.GetVerifierStats")
	defer span.End()

	var out []interface{}
	err := r.verifiers.Call(callOpts(ctx), &out, "getVerifierStats", common.HexToAddress(address))
	if err != nil {
		span.RecordError(err)
		return nil, classify("verifier "+address, err)
	}

	return &paperview.VerifierStats{
		Tier:                 paperview.VerifierTier(out[0].(uint8)),
		TotalVerifications:   out[1].(*big.Int).Int64(),
		CorrectVerifications: out[2].(*big.Int).Int64(),
		RewardsEarned:        out[3].(*big.Int).Int64(),
	}, nil
}

// IsRegisteredVerifier reports registry membership for a wallet.
func (r *Reader) IsRegisteredVerifier(ctx context.Context, address string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Chain.Reader.IsRegisteredVerifier")
	defer span.End()

	var out []interface{}
	err := r.verifiers.Call(callOpts(ctx), &out, "isRegisteredVerifier", common.HexToAddress(address))
	if err != nil {
		span.RecordError(err)
		return false, classify("verifier registration", err)
	}
	return out[0].(bool), nil
}

// rawVerification matches the tuple layout of getPaperVerifications.
type rawVerification struct {
	Verifier      common.Address
	Approved      bool
	Comment       string
	Timestamp     *big.Int
	RewardClaimed bool
}

// GetPaperVerifications reads the append-only verification history of a
// paper. An unused token id yields an empty history.
func (r *Reader) GetPaperVerifications(ctx context.Context, tokenID string) ([]paperview.VerificationRecord, error) {
	ctx, span := tracer.Start(ctx, "Chain.Reader.GetPaperVerifications")
	defer span.End()

	id, err := parseTokenID(tokenID)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	err = r.verifiers.Call(callOpts(ctx), &out, "getPaperVerifications", id)
	if err != nil {
		span.RecordError(err)
		err = classify("verifications of "+tokenID, err)
		if errors.Is(err, domain.ErrNotFound) {
			return []paperview.VerificationRecord{}, nil
		}
		return nil, err
	}

	raw := *abi.ConvertType(out[0], new([]rawVerification)).(*[]rawVerification)
	records := make([]paperview.VerificationRecord, 0, len(raw))
	for _, v := range raw {
		records = append(records, paperview.VerificationRecord{
			Verifier:      strings.ToLower(v.Verifier.Hex()),
			TokenID:       tokenID,
			Approved:      v.Approved,
			Comment:       v.Comment,
			Timestamp:     time.Unix(v.Timestamp.Int64(), 0).UTC(),
			RewardClaimed: v.RewardClaimed,
		})
	}
	return records, nil
}

// GetTokenBalance reads a stablecoin balance in 6-decimal fixed-point
// units.
func (r *Reader) GetTokenBalance(ctx context.Context, address string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Chain.Reader.GetTokenBalance")
	defer span.End()

	var out []interface{}
	err := r.token.Call(callOpts(ctx), &out, "balanceOf", common.HexToAddress(address))
	if err != nil {
		span.RecordError(err)
		return 0, classify("balance of "+address, err)
	}
	return out[0].(*big.Int).Int64(), nil
}
