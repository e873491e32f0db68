package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/taskhive/auth-service/internal/domain"
	"github.com/taskhive/auth-service/internal/helper"
	"github.com/taskhive/auth-service/internal/log"
	"github.com/taskhive/auth-service/internal/metrics"
	"github.com/taskhive/auth-service/internal/repo"
)

// Identity is a verified user record from an external provider.
type Identity struct {
	Provider   string
	ExternalID string
	Email      string // may be empty, some providers withhold it
	Name       string
	Picture    string
}

// Resolve maps an external identity onto exactly one local account.
// Resolution order: existing provider link, then email match, then a brand
// new account. The email match links without any ownership proof beyond the
// provider's own email claim; see the note on linkByEmail.
func (s *Service) Resolve(ctx context.Context, id Identity) (*domain.Account, bool, error) {
	if !domain.SupportedProvider(id.Provider) {
		return nil, false, fmt.Errorf("%w: %q", ErrUnsupportedProvider, id.Provider)
	}

	link, err := s.links.FindLinkByProviderAndExternalID(ctx, id.Provider, id.ExternalID)
	if err == nil {
		account, err := s.accounts.FindAccountByID(ctx, link.AccountID)
		if err != nil {
			return nil, false, fmt.Errorf("find linked account: %w", err)
		}
		return account, false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, fmt.Errorf("find provider link: %w", err)
	}

	if id.Email != "" {
		account, err := s.accounts.FindAccountByEmail(ctx, helper.NormalizeEmail(id.Email))
		if err == nil {
			if err := s.linkByEmail(ctx, account, id); err != nil {
				return nil, false, err
			}
			return account, false, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, false, fmt.Errorf("find account by email: %w", err)
		}
	}

	account, err := s.registerFederated(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

// linkByEmail attaches the external identity to an existing local account
// whose email matches. There is no re-authentication or confirmation step
// before the merge; the provider's email claim is trusted as ownership proof.
func (s *Service) linkByEmail(ctx context.Context, account *domain.Account, id Identity) error {
	err := s.links.SaveProviderLink(ctx, &domain.ProviderLink{
		AccountID:  account.ID,
		Provider:   id.Provider,
		ExternalID: id.ExternalID,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateLink) {
			// Concurrent resolve already created the link; same outcome.
			return nil
		}
		return fmt.Errorf("save provider link: %w", err)
	}
	log.L().Info("provider linked to existing account",
		zap.String("provider", id.Provider), zap.String("account_id", account.ID.Hex()))
	return nil
}

func (s *Service) registerFederated(ctx context.Context, id Identity) (*domain.Account, error) {
	account, err := s.allocator.Allocate(ctx, func(shortCode string) *domain.Account {
		return &domain.Account{
			DisplayName:  id.Name,
			ShortCode:    shortCode,
			Email:        helper.NormalizeEmail(id.Email),
			ProfileImage: id.Picture,
			Online:       true,
		}
	})
	if err != nil {
		return nil, err
	}
	if err := s.links.SaveProviderLink(ctx, &domain.ProviderLink{
		AccountID:  account.ID,
		Provider:   id.Provider,
		ExternalID: id.ExternalID,
	}); err != nil && !errors.Is(err, repo.ErrDuplicateLink) {
		return nil, fmt.Errorf("%w: save provider link: %v", ErrRegistrationFailed, err)
	}
	metrics.RegistrationsTotal.WithLabelValues(id.Provider).Inc()
	log.L().Info("federated account registered",
		zap.String("provider", id.Provider), zap.String("tag", account.Tag()))
	return account, nil
}
