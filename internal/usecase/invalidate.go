package usecase

import (
	"fmt"

	"github.com/openscholar/paperview"
	"github.com/openscholar/paperview/internal/domain"
)

// TxReport is a transaction-confirmation report from the dApp: the wallet
// side submitted a write, waited for it, and tells the gateway which
// operation completed (or why it failed) so affected cache keys refresh.
type TxReport struct {
	TxHash       string `json:"txHash"`
	Operation    string `json:"operation"`
	TokenID      string `json:"tokenId,omitempty"`
	ProposalID   int64  `json:"proposalId,omitempty"`
	Address      string `json:"address,omitempty"`
	Succeeded    bool   `json:"succeeded"`
	RevertReason string `json:"revertReason,omitempty"`
}

// Write operation names accepted in reports.
const (
	OpMintPaper        = "mint_paper"
	OpUpdateStatus     = "update_status"
	OpSubmitReview     = "submit_review"
	OpClaimReward      = "claim_reward"
	OpCastVote         = "cast_vote"
	OpCreateProposal   = "create_proposal"
	OpExecuteProposal  = "execute_proposal"
	OpDelegateVote     = "delegate_vote"
	OpTokenTransfer    = "token_transfer"
	OpRegisterVerifier = "register_verifier"
)

// InvalidationTargets maps a confirmed write to the cache keys and key
// families it dirtied. Readers never invalidate; this mapping is the only
// writer-side path into the cache.
func InvalidationTargets(report TxReport) (keys []string, prefixes []string) {

	addr := paperview.NormalizeAddress(report.Address)

	switch report.Operation {
	case OpMintPaper:
		keys = append(keys, domain.KeyTotalSupply)
		prefixes = append(prefixes, domain.KeyPapers)

	case OpUpdateStatus, OpSubmitReview:
		prefixes = append(prefixes, domain.KeyPapers)
		if report.TokenID != "" {
			keys = append(keys,
				domain.KeyPaper+":"+report.TokenID,
				domain.KeyVerifications+":"+report.TokenID,
			)
		}
		if addr != "" {
			keys = append(keys, domain.KeyVerifier+":"+addr)
		}

	case OpClaimReward:
		if report.TokenID != "" {
			keys = append(keys, domain.KeyVerifications+":"+report.TokenID)
		}
		if addr != "" {
			keys = append(keys,
				domain.KeyVerifier+":"+addr,
				domain.KeyBalance+":"+addr,
			)
		}

	case OpCastVote, OpExecuteProposal:
		prefixes = append(prefixes, domain.KeyProposals)
		if report.ProposalID > 0 {
			keys = append(keys, fmt.Sprintf("%s:%d", domain.KeyProposal, report.ProposalID))
		}

	case OpCreateProposal, OpDelegateVote:
		prefixes = append(prefixes, domain.KeyProposals)

	case OpTokenTransfer:
		if addr != "" {
			keys = append(keys, domain.KeyBalance+":"+addr)
		}

	case OpRegisterVerifier:
		if addr != "" {
			keys = append(keys, domain.KeyVerifier+":"+addr)
		}
	}

	return keys, prefixes
}
