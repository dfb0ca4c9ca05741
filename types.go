package paperview

import (
	"time"
)

// PaperStatus is the lifecycle state of a paper as stored in the registry
// contract. The contract encodes it as a uint8.
type PaperStatus int

const (
	PaperStatusDraft PaperStatus = iota
	PaperStatusVerified
	PaperStatusRejected
	PaperStatusDataPool
	// PaperStatusUnknown marks a status value the contract reported that we
	// do not recognize. Records carrying it land in an error bucket, never
	// silently dropped.
	PaperStatusUnknown
)

func PaperStatusFromContract(v uint8) PaperStatus {
	if v > uint8(PaperStatusDataPool) {
		return PaperStatusUnknown
	}
	return PaperStatus(v)
}

func (s PaperStatus) String() string {
	switch s {
	case PaperStatusDraft:
		return "Draft"
	case PaperStatusVerified:
		return "Verified"
	case PaperStatusRejected:
		return "Rejected"
	case PaperStatusDataPool:
		return "DataPool"
	default:
		return "Unknown"
	}
}

type ProposalType int

const (
	ProposalTypeJournal ProposalType = iota
	ProposalTypeReviewer
	ProposalTypeTreasury
	ProposalTypePolicy
)

func (t ProposalType) String() string {
	switch t {
	case ProposalTypeJournal:
		return "Journal"
	case ProposalTypeReviewer:
		return "Reviewer"
	case ProposalTypeTreasury:
		return "Treasury"
	case ProposalTypePolicy:
		return "Policy"
	default:
		return "Unknown"
	}
}

type ProposalStatus int

const (
	ProposalStatusActive ProposalStatus = iota
	ProposalStatusPassed
	ProposalStatusRejected
	ProposalStatusExecuted
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalStatusActive:
		return "Active"
	case ProposalStatusPassed:
		return "Passed"
	case ProposalStatusRejected:
		return "Rejected"
	case ProposalStatusExecuted:
		return "Executed"
	default:
		return "Unknown"
	}
}

// VerifierTier is the reputation rank stored in the verifier registry
// contract as a uint8 index. It is read as-is, not recomputed client-side.
type VerifierTier int

const (
	VerifierTierBronze VerifierTier = iota
	VerifierTierSilver
	VerifierTierGold
	VerifierTierPlatinum
)

func (t VerifierTier) String() string {
	switch t {
	case VerifierTierBronze:
		return "Bronze"
	case VerifierTierSilver:
		return "Silver"
	case VerifierTierGold:
		return "Gold"
	case VerifierTierPlatinum:
		return "Platinum"
	default:
		return "Unknown"
	}
}

// PaperRecord is the normalized projection of one token in the paper
// registry. The gateway never mutates it; it is re-read after a write
// transaction confirms.
type PaperRecord struct {
	TokenID     string      `json:"tokenId"`
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	Affiliation string      `json:"affiliation"`
	ContentHash string      `json:"contentHash"`
	Status      PaperStatus `json:"status"`
	MintedAt    time.Time   `json:"mintedAt"`
	Owner       string      `json:"owner,omitempty"`
}

// ProposalRecord is the normalized projection of one governance proposal.
type ProposalRecord struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Type          ProposalType   `json:"proposalType"`
	Status        ProposalStatus `json:"status"`
	VotesFor      int64          `json:"votesFor"`
	VotesAgainst  int64          `json:"votesAgainst"`
	TotalVotes    int64          `json:"totalVotes"`
	Proposer      string         `json:"proposer"`
	StartTime     time.Time      `json:"startTime"`
	EndTime       time.Time      `json:"endTime"`
	RequiredVotes int64          `json:"requiredVotes"`
}

// VerifierStats is the per-wallet record from the verifier registry.
// Reputation is derived, not stored; see usecase.ReputationTier.
type VerifierStats struct {
	Tier                 VerifierTier `json:"tier"`
	TotalVerifications   int64        `json:"totalVerifications"`
	CorrectVerifications int64        `json:"correctVerifications"`
	RewardsEarned        int64        `json:"rewardsEarned"`
}

// VerificationRecord is one entry of a paper's append-only verification
// history. A wallet appears at most once per paper (contract-enforced).
type VerificationRecord struct {
	Verifier      string    `json:"verifier"`
	TokenID       string    `json:"tokenId"`
	Approved      bool      `json:"approved"`
	Comment       string    `json:"comment"`
	Timestamp     time.Time `json:"timestamp"`
	RewardClaimed bool      `json:"rewardClaimed"`
}

// MetadataAttribute is one trait in a gateway metadata document.
type MetadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

const (
	TraitAuthor          = "Author"
	TraitAffiliation     = "Affiliation"
	TraitKeywords        = "Keywords"
	TraitSintaPrediction = "SintaPrediction"
	TraitAICertainty     = "AICertainty"
)

// PaperMetadata is the JSON document stored in the content-addressable
// store for a paper. Any field may be absent.
type PaperMetadata struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Attributes  []MetadataAttribute `json:"attributes"`
}

// Attribute returns the value for a trait type, or "" when absent.
func (m *PaperMetadata) Attribute(traitType string) string {
	if m == nil {
		return ""
	}
	for _, a := range m.Attributes {
		if a.TraitType == traitType {
			return a.Value
		}
	}
	return ""
}

// AssetView is the projection served to UI views: a paper joined with its
// resolved metadata and the derived score and reward. Recomputed on every
// read, never persisted.
type AssetView struct {
	PaperRecord
	Description string `json:"description"`
	Keywords    string `json:"keywords,omitempty"`
	AIScore     int    `json:"aiScore"`
	Reward      int64  `json:"reward"`
	RewardTier  string `json:"rewardTier"`
	HasMetadata bool   `json:"hasMetadata"`
}

// StatusBuckets is the total partition of a paper set by status.
type StatusBuckets struct {
	Verified []PaperRecord `json:"verified"`
	Draft    []PaperRecord `json:"draft"`
	Rejected []PaperRecord `json:"rejected"`
	DataPool []PaperRecord `json:"dataPool"`
	Errored  []PaperRecord `json:"errored"`
}

// Size returns the total number of records across all buckets.
func (b StatusBuckets) Size() int {
	return len(b.Verified) + len(b.Draft) + len(b.Rejected) + len(b.DataPool) + len(b.Errored)
}

// VotingStats is the derived per-proposal view used by governance pages.
// QuorumPercentage carries the raw ratio; QuorumDisplay is clamped to 100
// for rendering.
type VotingStats struct {
	VotePercentage   float64 `json:"votePercentage"`
	QuorumPercentage float64 `json:"quorumPercentage"`
	QuorumDisplay    float64 `json:"quorumDisplay"`
	IsActive         bool    `json:"isActive"`
	TimeLeft         string  `json:"timeLeft"`
}

// GovernanceStats is the aggregate view across all proposals.
// EstimatedActiveVoters is a documented approximation (0.8 x total votes)
// standing in until the contract exposes a unique-voter count.
type GovernanceStats struct {
	ActiveCount           int    `json:"activeCount"`
	TotalVotes            int64  `json:"totalVotes"`
	EstimatedActiveVoters int64  `json:"estimatedActiveVoters"`
	Participation         string `json:"participation"`
}

// Reputation is the derived verifier standing.
type Reputation struct {
	Level string `json:"level"`
	Score int64  `json:"reputationScore"`
}
