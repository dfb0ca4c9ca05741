package chain

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/openscholar/paperview/internal/domain"
)

func TestClassify(t *testing.T) {
	err := classify("paper 7", errors.New("execution reverted: ERC721: invalid token ID"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("revert must classify as absence, got %v", err)
	}

	err = classify("paper 7", errors.New("Execution Reverted"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("classification must be case-insensitive, got %v", err)
	}

	err = classify("total supply", errors.New("dial tcp: connection refused"))
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("provider failure must classify as transient, got %v", err)
	}

	err = classify("total supply", errors.New("429 Too Many Requests"))
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("rate limit must classify as transient, got %v", err)
	}
}

func TestParseTokenID(t *testing.T) {
	if _, err := parseTokenID("7"); err != nil {
		t.Fatalf("valid id rejected: %v", err)
	}
	for _, bad := range []string{"", "abc", "-1", "1.5"} {
		if _, err := parseTokenID(bad); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("parseTokenID(%q) = %v, want absence", bad, err)
		}
	}
}
