package usecase

import (
	"context"

	"github.com/pkg/errors"

	"github.com/openscholar/paperview"
	"github.com/openscholar/paperview/internal/domain"
	"github.com/openscholar/paperview/internal/service"
)

// VerifierProfile is the derived view of a verifier wallet.
type VerifierProfile struct {
	Address    string                   `json:"address"`
	Registered bool                     `json:"registered"`
	Stats      *paperview.VerifierStats `json:"stats,omitempty"`
	Reputation paperview.Reputation     `json:"reputation"`
}

// Balance is a stablecoin balance in raw 6-decimal units plus its display
// form.
type Balance struct {
	Address string `json:"address"`
	Units   int64  `json:"units"`
	Display string `json:"display"`
}

// VerifierUsecase serves verifier profiles and wallet balances.
type VerifierUsecase struct {
	reader ChainReader
	cache  *service.QueryCache
}

func NewVerifierUsecase(reader ChainReader, cache *service.QueryCache) *VerifierUsecase {
	return &VerifierUsecase{
		reader: reader,
		cache:  cache,
	}
}

// Profile returns the derived standing of a wallet. An unregistered
// wallet yields Registered=false with zeroed reputation, not an error.
func (uc *VerifierUsecase) Profile(ctx context.Context, address string) (*VerifierProfile, error) {

	address = paperview.NormalizeAddress(address)
	key := domain.KeyVerifier + ":" + address

	profile, err := service.FetchAs(ctx, uc.cache, key, domain.CategoryMedium,
		func(ctx context.Context) (*VerifierProfile, error) {

			registered, err := uc.reader.IsRegisteredVerifier(ctx, address)
			if err != nil {
				return nil, err
			}

			profile := &VerifierProfile{
				Address:    address,
				Registered: registered,
				Reputation: paperview.Reputation{Level: paperview.VerifierTierBronze.String()},
			}
			if !registered {
				return profile, nil
			}

			stats, err := uc.reader.GetVerifierStats(ctx, address)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return profile, nil
				}
				return nil, err
			}

			profile.Stats = stats
			profile.Reputation = ReputationTier(*stats)
			return profile, nil
		})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// TokenBalance returns a wallet's stablecoin balance.
func (uc *VerifierUsecase) TokenBalance(ctx context.Context, address string) (*Balance, error) {

	address = paperview.NormalizeAddress(address)
	key := domain.KeyBalance + ":" + address

	units, err := service.FetchAs(ctx, uc.cache, key, domain.CategoryShort,
		func(ctx context.Context) (int64, error) {
			return uc.reader.GetTokenBalance(ctx, address)
		})
	if err != nil {
		return nil, err
	}

	return &Balance{
		Address: address,
		Units:   units,
		Display: paperview.FormatTokenAmount(units),
	}, nil
}
