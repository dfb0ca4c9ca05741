package usecase

import (
	"testing"
	"time"

	"github.com/openscholar/paperview"
	"github.com/openscholar/paperview/internal/domain"
)

func samplePapers() []paperview.PaperRecord {
	return []paperview.PaperRecord{
		{TokenID: "1", Status: paperview.PaperStatusVerified, Owner: "0xAbC0000000000000000000000000000000000001"},
		{TokenID: "2", Status: paperview.PaperStatusDraft, Owner: "0xabc0000000000000000000000000000000000001"},
		{TokenID: "3", Status: paperview.PaperStatusRejected, Owner: "0x0000000000000000000000000000000000000002"},
		{TokenID: "4", Status: paperview.PaperStatusDataPool, Owner: "0x0000000000000000000000000000000000000003"},
		{TokenID: "5", Status: paperview.PaperStatusVerified, Owner: "0x0000000000000000000000000000000000000002"},
		{TokenID: "6", Status: paperview.PaperStatusUnknown, Owner: ""},
	}
}

func TestBucketByStatusTotalPartition(t *testing.T) {
	papers := samplePapers()
	buckets := BucketByStatus(papers)

	if buckets.Size() != len(papers) {
		t.Fatalf("partition not total: %d in, %d out", len(papers), buckets.Size())
	}
	if len(buckets.Verified) != 2 || len(buckets.Draft) != 1 || len(buckets.Rejected) != 1 ||
		len(buckets.DataPool) != 1 || len(buckets.Errored) != 1 {
		t.Fatalf("unexpected bucket sizes: %+v", buckets)
	}

	// Order preserved within a bucket.
	if buckets.Verified[0].TokenID != "1" || buckets.Verified[1].TokenID != "5" {
		t.Fatalf("order not preserved: %+v", buckets.Verified)
	}

	// Unrecognized status surfaces, never vanishes.
	if buckets.Errored[0].TokenID != "6" {
		t.Fatalf("unknown status dropped")
	}
}

func TestBucketByStatusIdempotent(t *testing.T) {
	papers := samplePapers()
	first := BucketByStatus(papers)
	second := BucketByStatus(papers)

	if first.Size() != second.Size() {
		t.Fatalf("bucketing not idempotent")
	}
	for i := range first.Verified {
		if first.Verified[i].TokenID != second.Verified[i].TokenID {
			t.Fatalf("bucketing not deterministic")
		}
	}
}

func TestRewardForScoreBoundaries(t *testing.T) {
	bands := domain.DefaultTuning().Rewards

	cases := []struct {
		score  int
		amount int64
		label  string
	}{
		{100, 100_000_000, "excellent"},
		{95, 100_000_000, "excellent"},
		{91, 100_000_000, "excellent"},
		{90, 100_000_000, "excellent"},
		{89, 75_000_000, "high"},
		{81, 75_000_000, "high"},
		{80, 75_000_000, "high"},
		{79, 50_000_000, "good"},
		{71, 50_000_000, "good"},
		{70, 50_000_000, "good"},
		{69, 25_000_000, "standard"},
		{1, 25_000_000, "standard"},
		{0, 25_000_000, "standard"},
	}

	for _, tc := range cases {
		amount, label := RewardForScore(tc.score, bands)
		if amount != tc.amount || label != tc.label {
			t.Fatalf("score %d: got (%d, %s), want (%d, %s)", tc.score, amount, label, tc.amount, tc.label)
		}
	}
}

func TestRewardForScoreMonotone(t *testing.T) {
	bands := domain.DefaultTuning().Rewards
	prev, _ := RewardForScore(0, bands)
	for score := 1; score <= 100; score++ {
		amount, _ := RewardForScore(score, bands)
		if amount < prev {
			t.Fatalf("reward decreased at score %d: %d < %d", score, amount, prev)
		}
		prev = amount
	}
}

func TestRewardForScoreClamps(t *testing.T) {
	bands := domain.DefaultTuning().Rewards
	low, _ := RewardForScore(-5, bands)
	zero, _ := RewardForScore(0, bands)
	if low != zero {
		t.Fatalf("negative score not clamped")
	}
	high, _ := RewardForScore(150, bands)
	hundred, _ := RewardForScore(100, bands)
	if high != hundred {
		t.Fatalf("overflow score not clamped")
	}
}

func TestComputeVotingStatsExample(t *testing.T) {
	now := time.Now()
	p := paperview.ProposalRecord{
		Status:        paperview.ProposalStatusActive,
		VotesFor:      1247,
		VotesAgainst:  328,
		TotalVotes:    1575,
		RequiredVotes: 2000,
		EndTime:       now.Add(48 * time.Hour),
	}

	stats := ComputeVotingStats(p, now)

	if stats.VotePercentage < 79.1 || stats.VotePercentage > 79.3 {
		t.Fatalf("vote percentage %.2f, want ~79.2", stats.VotePercentage)
	}
	if stats.QuorumPercentage < 78.7 || stats.QuorumPercentage > 78.8 {
		t.Fatalf("quorum percentage %.2f, want ~78.75", stats.QuorumPercentage)
	}
	if !stats.IsActive {
		t.Fatalf("expected active")
	}
	if stats.TimeLeft != "2 DAYS" {
		t.Fatalf("time left %q, want 2 DAYS", stats.TimeLeft)
	}
}

func TestComputeVotingStatsZeroDenominators(t *testing.T) {
	now := time.Now()
	p := paperview.ProposalRecord{
		Status:  paperview.ProposalStatusActive,
		EndTime: now.Add(time.Hour),
	}

	stats := ComputeVotingStats(p, now)
	if stats.VotePercentage != 0 {
		t.Fatalf("vote percentage %.2f, want 0 for zero total votes", stats.VotePercentage)
	}
	if stats.QuorumPercentage != 0 {
		t.Fatalf("quorum percentage %.2f, want 0 for zero required votes", stats.QuorumPercentage)
	}
}

func TestComputeVotingStatsQuorumDisplayClamped(t *testing.T) {
	now := time.Now()
	p := paperview.ProposalRecord{
		TotalVotes:    3000,
		RequiredVotes: 2000,
		EndTime:       now.Add(time.Hour),
	}

	stats := ComputeVotingStats(p, now)
	if stats.QuorumPercentage != 150 {
		t.Fatalf("raw quorum %.2f, want 150", stats.QuorumPercentage)
	}
	if stats.QuorumDisplay != 100 {
		t.Fatalf("display quorum %.2f, want clamped 100", stats.QuorumDisplay)
	}
}

func TestTimeLeftBuckets(t *testing.T) {
	cases := []struct {
		remaining time.Duration
		want      string
	}{
		{-time.Hour, "CLOSED"},
		{0, "CLOSED"},
		{30 * time.Minute, "<1 HOUR"},
		{90 * time.Minute, "1 HOURS"},
		{5 * time.Hour, "5 HOURS"},
		{23 * time.Hour, "23 HOURS"},
		{25 * time.Hour, "1 DAYS"},
		{10 * 24 * time.Hour, "10 DAYS"},
	}
	for _, tc := range cases {
		if got := TimeLeft(tc.remaining); got != tc.want {
			t.Fatalf("TimeLeft(%v) = %q, want %q", tc.remaining, got, tc.want)
		}
	}
}

func TestReputationTier(t *testing.T) {
	rep := ReputationTier(paperview.VerifierStats{
		Tier:                 paperview.VerifierTierGold,
		TotalVerifications:   40,
		CorrectVerifications: 37,
	})
	if rep.Level != "Gold" {
		t.Fatalf("level %q, want Gold", rep.Level)
	}
	if rep.Score != 925 {
		t.Fatalf("score %d, want 925", rep.Score)
	}
}

func TestReputationTierNoHistory(t *testing.T) {
	rep := ReputationTier(paperview.VerifierStats{Tier: paperview.VerifierTierBronze})
	if rep.Score != 0 {
		t.Fatalf("score %d, want 0 with no history", rep.Score)
	}
}

func TestComputeGovernanceStats(t *testing.T) {
	proposals := []paperview.ProposalRecord{
		{Status: paperview.ProposalStatusActive, TotalVotes: 1000},
		{Status: paperview.ProposalStatusPassed, TotalVotes: 500},
		{Status: paperview.ProposalStatusActive, TotalVotes: 0},
	}

	stats := ComputeGovernanceStats(proposals)
	if stats.ActiveCount != 2 {
		t.Fatalf("active count %d, want 2", stats.ActiveCount)
	}
	if stats.TotalVotes != 1500 {
		t.Fatalf("total votes %d, want 1500", stats.TotalVotes)
	}
	if stats.EstimatedActiveVoters != 1200 {
		t.Fatalf("estimated voters %d, want 1200 (0.8 approximation)", stats.EstimatedActiveVoters)
	}
}

func TestOwnedAssetsCaseInsensitive(t *testing.T) {
	papers := samplePapers()
	owned := OwnedAssets(papers, "0xABC0000000000000000000000000000000000001")
	if len(owned) != 2 {
		t.Fatalf("owned %d, want 2 (case-insensitive match)", len(owned))
	}
	if owned[0].TokenID != "1" || owned[1].TokenID != "2" {
		t.Fatalf("wrong records: %+v", owned)
	}
}

func TestPageBounds(t *testing.T) {
	// Fixed windows never overlap or skip while total is unchanged.
	total := int64(25)
	seen := map[int64]bool{}
	for offset := int64(0); offset < total; offset += 10 {
		off, lim := PageBounds(offset, 10, total)
		for id := off + 1; id <= off+lim; id++ {
			if seen[id] {
				t.Fatalf("token id %d returned twice", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != int(total) {
		t.Fatalf("windows skipped ids: covered %d of %d", len(seen), total)
	}

	off, lim := PageBounds(100, 10, total)
	if lim != 0 || off != total {
		t.Fatalf("out-of-range window not clamped: off=%d lim=%d", off, lim)
	}
}
