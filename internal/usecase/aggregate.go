package usecase

import (
	"fmt"
	"math"
	"time"

	"github.com/openscholar/paperview"
	"github.com/openscholar/paperview/internal/domain"
)

// The aggregator: pure functions turning already-fetched records into the
// derived view-model state every page renders from. No I/O, no hidden
// state; partial upstream data must be normalized to defaults before it
// reaches this layer.

// BucketByStatus partitions papers by status. The partition is total:
// every record lands in exactly one bucket, order preserved within each,
// and unrecognized statuses go to Errored instead of vanishing.
func BucketByStatus(papers []paperview.PaperRecord) paperview.StatusBuckets {
	buckets := paperview.StatusBuckets{
		Verified: []paperview.PaperRecord{},
		Draft:    []paperview.PaperRecord{},
		Rejected: []paperview.PaperRecord{},
		DataPool: []paperview.PaperRecord{},
		Errored:  []paperview.PaperRecord{},
	}
	for _, p := range papers {
		switch p.Status {
		case paperview.PaperStatusVerified:
			buckets.Verified = append(buckets.Verified, p)
		case paperview.PaperStatusDraft:
			buckets.Draft = append(buckets.Draft, p)
		case paperview.PaperStatusRejected:
			buckets.Rejected = append(buckets.Rejected, p)
		case paperview.PaperStatusDataPool:
			buckets.DataPool = append(buckets.DataPool, p)
		default:
			buckets.Errored = append(buckets.Errored, p)
		}
	}
	return buckets
}

// RewardForScore maps an AI score (0..100) to a reward amount and tier
// label through the configured band table: a deterministic, monotone
// non-decreasing step function. Bands must be ordered by descending
// threshold; the first band at or below the score wins. Out-of-range
// scores are clamped.
func RewardForScore(score int, bands []domain.RewardBand) (int64, string) {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	for _, band := range bands {
		if score >= band.Threshold {
			return band.Amount, band.Label
		}
	}
	return 0, "none"
}

// TimeLeft renders remaining voting time: "CLOSED" at or past the end,
// then days, hours, or "<1 HOUR" by integer division, days taking
// precedence.
func TimeLeft(remaining time.Duration) string {
	if remaining <= 0 {
		return "CLOSED"
	}
	days := int(remaining.Hours()) / 24
	if days > 0 {
		return fmt.Sprintf("%d DAYS", days)
	}
	hours := int(remaining.Hours())
	if hours > 0 {
		return fmt.Sprintf("%d HOURS", hours)
	}
	return "<1 HOUR"
}

// ComputeVotingStats derives the per-proposal voting view. Zero
// denominators yield 0%, never NaN or Inf. QuorumPercentage keeps the raw
// ratio; QuorumDisplay clamps it to 100 for rendering.
func ComputeVotingStats(p paperview.ProposalRecord, now time.Time) paperview.VotingStats {
	stats := paperview.VotingStats{
		TimeLeft: TimeLeft(p.EndTime.Sub(now)),
		IsActive: p.Status == paperview.ProposalStatusActive && p.EndTime.After(now),
	}
	if p.TotalVotes > 0 {
		stats.VotePercentage = float64(p.VotesFor) / float64(p.TotalVotes) * 100
	}
	if p.RequiredVotes > 0 {
		stats.QuorumPercentage = float64(p.TotalVotes) / float64(p.RequiredVotes) * 100
	}
	stats.QuorumDisplay = stats.QuorumPercentage
	if stats.QuorumDisplay > 100 {
		stats.QuorumDisplay = 100
	}
	return stats
}

// ReputationTier derives a verifier's standing. The level comes straight
// from the contract-stored tier index; the score is
// round(correct/total*1000), 0 when the verifier has no history.
func ReputationTier(stats paperview.VerifierStats) paperview.Reputation {
	rep := paperview.Reputation{
		Level: stats.Tier.String(),
	}
	if stats.TotalVerifications > 0 {
		ratio := float64(stats.CorrectVerifications) / float64(stats.TotalVerifications)
		rep.Score = int64(math.Round(ratio * 1000))
	}
	return rep
}

// ComputeGovernanceStats aggregates across all proposals.
// EstimatedActiveVoters is the documented 0.8 x totalVotes approximation
// carried over from the original design; it stands in until the contract
// exposes a real unique-voter count and must not be mistaken for one.
func ComputeGovernanceStats(proposals []paperview.ProposalRecord) paperview.GovernanceStats {
	stats := paperview.GovernanceStats{}
	for _, p := range proposals {
		if p.Status == paperview.ProposalStatusActive {
			stats.ActiveCount++
		}
		stats.TotalVotes += p.TotalVotes
	}
	stats.EstimatedActiveVoters = int64(float64(stats.TotalVotes) * 0.8)
	stats.Participation = participationLabel(proposals, stats.TotalVotes)
	return stats
}

// participationLabel buckets average votes per proposal into a coarse
// display label.
func participationLabel(proposals []paperview.ProposalRecord, totalVotes int64) string {
	if len(proposals) == 0 || totalVotes == 0 {
		return "None"
	}
	avg := totalVotes / int64(len(proposals))
	switch {
	case avg >= 1000:
		return "High"
	case avg >= 100:
		return "Moderate"
	default:
		return "Low"
	}
}

// OwnedAssets filters papers to those owned by the wallet, compared
// case-insensitively: addresses are not case-sensitive identifiers.
func OwnedAssets(papers []paperview.PaperRecord, owner string) []paperview.PaperRecord {
	normalized := paperview.NormalizeAddress(owner)
	owned := []paperview.PaperRecord{}
	for _, p := range papers {
		if paperview.NormalizeAddress(p.Owner) == normalized {
			owned = append(owned, p)
		}
	}
	return owned
}

// PageBounds clamps a pagination window against the current total so a
// fixed (offset, limit) pair never overlaps or skips token ids while the
// supply is unchanged.
func PageBounds(offset, limit, total int64) (int64, int64) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= total {
		return total, 0
	}
	if offset+limit > total {
		limit = total - offset
	}
	return offset, limit
}
