// Package auth holds the signup and federated-login business logic: the
// short-code allocator, the credential registrar, and the identity resolver.
// Persistence and mail are injected behind small interfaces so the package
// tests run against in-memory fakes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/taskhive/auth-service/internal/codegen"
	"github.com/taskhive/auth-service/internal/domain"
	"github.com/taskhive/auth-service/internal/helper"
	"github.com/taskhive/auth-service/internal/log"
	"github.com/taskhive/auth-service/internal/metrics"
	"github.com/taskhive/auth-service/internal/repo"
	"github.com/taskhive/auth-service/internal/security"
	"github.com/taskhive/auth-service/internal/verification"
)

type AccountRepository interface {
	SaveAccount(ctx context.Context, a *domain.Account) (*domain.Account, error)
	FindAccountByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	ExistsAccountEmail(ctx context.Context, email string) (bool, error)
	TouchLogin(ctx context.Context, id primitive.ObjectID) error
	SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error
}

type CredentialRepository interface {
	SaveCredential(ctx context.Context, c *domain.LocalCredential) error
	FindCredentialByLoginID(ctx context.Context, loginID string) (*domain.LocalCredential, error)
	FindCredentialByAccount(ctx context.Context, accountID primitive.ObjectID) (*domain.LocalCredential, error)
	ExistsLoginID(ctx context.Context, loginID string) (bool, error)
	UpdateCredentialPassword(ctx context.Context, loginID, passwordHash string) error
}

type LinkRepository interface {
	SaveProviderLink(ctx context.Context, l *domain.ProviderLink) error
	FindLinkByProviderAndExternalID(ctx context.Context, provider, externalID string) (*domain.ProviderLink, error)
}

type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service wires the registrar, allocator, and resolver together.
type Service struct {
	accounts  AccountRepository
	creds     CredentialRepository
	links     LinkRepository
	codes     *verification.Store
	mail      MailSender
	allocator *Allocator

	codeLength int
	codeTTL    time.Duration
}

func NewService(accounts AccountRepository, creds CredentialRepository, links LinkRepository,
	codes *verification.Store, mail MailSender, codeLength int, codeTTL time.Duration) *Service {
	return &Service{
		accounts:   accounts,
		creds:      creds,
		links:      links,
		codes:      codes,
		mail:       mail,
		allocator:  NewAllocator(accounts),
		codeLength: codeLength,
		codeTTL:    codeTTL,
	}
}

// SendVerificationCode issues a fresh code for email, replacing any prior
// one, and mails it. Emails that already belong to an account are rejected.
func (s *Service) SendVerificationCode(ctx context.Context, email string) error {
	email = helper.NormalizeEmail(email)
	taken, err := s.accounts.ExistsAccountEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}
	code, err := s.codes.Issue(email, s.codeLength, s.codeTTL)
	if err != nil {
		return fmt.Errorf("issue code: %w", err)
	}
	body := fmt.Sprintf("Your verification code is [%s]. Enter it within %d minutes.",
		code, int(s.codeTTL.Minutes()))
	if err := s.mail.Send(ctx, email, "[TaskHive] Email verification code", body); err != nil {
		log.L().Error("verification mail failed",
			zap.String("email_hash", helper.Hash8(email)), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrMailTransport, err)
	}
	log.L().Info("verification code issued", zap.String("email_hash", helper.Hash8(email)))
	return nil
}

// Register runs local signup: code check, login id and email availability,
// short-code allocation, credential persistence, and finally clearing the
// verification entry. If the credential insert fails after the account was
// committed, the orphaned account is left behind; nothing cleans it up here.
func (s *Service) Register(ctx context.Context, displayName, email, loginID, rawPassword, submittedCode string) (*domain.Account, error) {
	email = helper.NormalizeEmail(email)

	if !s.codes.Verify(email, submittedCode) {
		return nil, ErrVerificationFailed
	}
	taken, err := s.creds.ExistsLoginID(ctx, loginID)
	if err != nil {
		return nil, fmt.Errorf("check login id: %w", err)
	}
	if taken {
		return nil, ErrLoginIDTaken
	}
	emailTaken, err := s.accounts.ExistsAccountEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if emailTaken {
		return nil, ErrEmailTaken
	}

	account, err := s.allocator.Allocate(ctx, func(shortCode string) *domain.Account {
		return &domain.Account{
			DisplayName: displayName,
			ShortCode:   shortCode,
			Email:       email,
		}
	})
	if err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", ErrRegistrationFailed, err)
	}
	cred := &domain.LocalCredential{
		AccountID:    account.ID,
		LoginID:      loginID,
		PasswordHash: hash,
	}
	if err := s.creds.SaveCredential(ctx, cred); err != nil {
		if errors.Is(err, repo.ErrDuplicateLoginID) {
			return nil, ErrLoginIDTaken
		}
		return nil, fmt.Errorf("%w: save credential: %v", ErrRegistrationFailed, err)
	}

	s.codes.Clear(email)
	metrics.RegistrationsTotal.WithLabelValues("local").Inc()
	log.L().Info("account registered",
		zap.String("tag", account.Tag()), zap.String("account_id", account.ID.Hex()))
	return account, nil
}

// Login checks a local credential and stamps the account's login status.
func (s *Service) Login(ctx context.Context, loginID, rawPassword string) (*domain.Account, error) {
	cred, err := s.creds.FindCredentialByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	if !security.CheckPassword(cred.PasswordHash, rawPassword) {
		return nil, ErrInvalidCredentials
	}
	account, err := s.accounts.FindAccountByID(ctx, cred.AccountID)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if err := s.accounts.TouchLogin(ctx, account.ID); err != nil {
		log.L().Warn("login stamp failed", zap.String("account_id", account.ID.Hex()), zap.Error(err))
	}
	return account, nil
}

// AccountByID is a plain lookup for transport-layer needs (token refresh).
func (s *Service) AccountByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error) {
	return s.accounts.FindAccountByID(ctx, id)
}

// MarkOffline clears the online flag on logout.
func (s *Service) MarkOffline(ctx context.Context, id primitive.ObjectID) error {
	return s.accounts.SetOnline(ctx, id, false)
}

// FindLoginID mails the login id registered under email. It deliberately
// reports nothing to the caller: absent emails and social-only accounts are
// skipped silently, and transport failures are logged and suppressed, so the
// response shape never reveals whether an account exists.
func (s *Service) FindLoginID(ctx context.Context, email string) {
	email = helper.NormalizeEmail(email)
	account, err := s.accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.L().Error("find account by email", zap.Error(err))
		}
		return
	}
	cred, err := s.creds.FindCredentialByAccount(ctx, account.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Social-only account, no login id to recover.
			log.L().Info("login id lookup for social-only account",
				zap.String("account_id", account.ID.Hex()))
		} else {
			log.L().Error("find credential by account", zap.Error(err))
		}
		return
	}
	body := fmt.Sprintf("Your login id is [%s].", cred.LoginID)
	if err := s.mail.Send(ctx, email, "[TaskHive] Login id recovery", body); err != nil {
		log.L().Error("login id mail failed",
			zap.String("email_hash", helper.Hash8(email)), zap.Error(err))
	}
}

// ResetPassword replaces the credential's password with a mailed temporary
// one. The claimed loginID and email must belong to the same account. A mail
// failure after the password was already rewritten is escalated: the caller
// must know delivery was not confirmed.
func (s *Service) ResetPassword(ctx context.Context, loginID, email string) error {
	email = helper.NormalizeEmail(email)
	cred, err := s.creds.FindCredentialByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCredentialMismatch
		}
		return fmt.Errorf("find credential: %w", err)
	}
	account, err := s.accounts.FindAccountByID(ctx, cred.AccountID)
	if err != nil {
		return fmt.Errorf("find account: %w", err)
	}
	if account.Email == "" || account.Email != email {
		return ErrCredentialMismatch
	}

	temp, err := codegen.TempPassword(10)
	if err != nil {
		return fmt.Errorf("generate password: %w", err)
	}
	hash, err := security.HashPassword(temp)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.creds.UpdateCredentialPassword(ctx, loginID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	body := fmt.Sprintf("Your temporary password is [%s].\nPlease change it after logging in.", temp)
	if err := s.mail.Send(ctx, email, "[TaskHive] Temporary password", body); err != nil {
		// The password is already rotated; surfacing this is the only honest option.
		log.L().Error("temporary password mail failed",
			zap.String("login_id", loginID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrMailTransport, err)
	}
	return nil
}
