package domain

import (
	"fmt"
	"strings"
)

// NotFoundError represents a record that does not exist on chain. Probing
// unused token ids and proposal ids is expected; this is an absence, not a
// failure, and is never surfaced to users.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing on-chain records.
var ErrNotFound = NotFoundError{}

// TransientError wraps an RPC or gateway failure worth retrying: timeouts,
// rate limits, 5xx responses, malformed replies.
type TransientError struct {
	Op  string
	Err error
}

func (e TransientError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Err)
}

func (e TransientError) Unwrap() error { return e.Err }

// Is enables errors.Is matching on TransientError.
func (e TransientError) Is(target error) bool {
	_, ok := target.(TransientError)
	if ok {
		return true
	}
	_, ok = target.(*TransientError)
	return ok
}

// ErrTransient is the sentinel for retryable failures.
var ErrTransient = TransientError{}

// RevertCategory classifies a contract revert reason into a user-facing
// message bucket.
type RevertCategory string

const (
	RevertAlreadyVoted        RevertCategory = "already_voted"
	RevertAlreadyVerified     RevertCategory = "already_verified"
	RevertNotRegistered       RevertCategory = "not_registered"
	RevertInsufficientBalance RevertCategory = "insufficient_balance"
	RevertVotingClosed        RevertCategory = "voting_closed"
	RevertUserRejected        RevertCategory = "user_rejected"
	RevertUnknown             RevertCategory = "unknown"
)

// revertPatterns maps substrings of raw revert reasons to categories.
// Matching is case-insensitive, first hit wins.
var revertPatterns = []struct {
	substr   string
	category RevertCategory
	message  string
}{
	{"already voted", RevertAlreadyVoted, "You have already voted on this proposal."},
	{"already verified", RevertAlreadyVerified, "You have already reviewed this paper."},
	{"not registered", RevertNotRegistered, "This wallet is not a registered verifier."},
	{"not a verifier", RevertNotRegistered, "This wallet is not a registered verifier."},
	{"insufficient balance", RevertInsufficientBalance, "Insufficient token balance for this action."},
	{"insufficient funds", RevertInsufficientBalance, "Insufficient token balance for this action."},
	{"voting closed", RevertVotingClosed, "Voting has closed for this proposal."},
	{"voting ended", RevertVotingClosed, "Voting has closed for this proposal."},
	{"user rejected", RevertUserRejected, "The signature request was declined in the wallet."},
	{"user denied", RevertUserRejected, "The signature request was declined in the wallet."},
}

// CategorizeRevert maps a raw revert reason into a category and a
// human-readable message. Unmatched reasons fall back to a generic failure
// message; they are never swallowed.
func CategorizeRevert(reason string) (RevertCategory, string) {
	lower := strings.ToLower(reason)
	for _, p := range revertPatterns {
		if strings.Contains(lower, p.substr) {
			return p.category, p.message
		}
	}
	return RevertUnknown, "The transaction was rejected by the contract."
}
