// Package mem is an in-memory implementation of the repositories, enforcing
// the same uniqueness rules as the mongo indexes and returning the same
// tagged errors. It backs the test suites and can stand in for mongo in
// local development.
package mem

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskhive/auth-service/internal/domain"
	"github.com/taskhive/auth-service/internal/repo"
)

type Store struct {
	mu       sync.Mutex
	accounts map[primitive.ObjectID]*domain.Account
	creds    map[string]*domain.LocalCredential // by login id
	links    []*domain.ProviderLink
	refresh  map[string]refreshEntry // by plain token

	// FailNameCodeSaves makes the next N account saves fail with
	// ErrDuplicateNameCode, to exercise the allocator's retry loop.
	FailNameCodeSaves int
	// SaveAccountErr, when set, fails every account save with this error.
	SaveAccountErr error
}

type refreshEntry struct {
	accountID primitive.ObjectID
	expiresAt time.Time
	revoked   bool
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[primitive.ObjectID]*domain.Account),
		creds:    make(map[string]*domain.LocalCredential),
		refresh:  make(map[string]refreshEntry),
	}
}

func (s *Store) SaveAccount(_ context.Context, a *domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveAccountErr != nil {
		return nil, s.SaveAccountErr
	}
	if s.FailNameCodeSaves > 0 {
		s.FailNameCodeSaves--
		return nil, repo.ErrDuplicateNameCode
	}
	for _, other := range s.accounts {
		if other.DisplayName == a.DisplayName && other.ShortCode == a.ShortCode {
			return nil, repo.ErrDuplicateNameCode
		}
		if a.Email != "" && other.Email == a.Email {
			return nil, repo.ErrDuplicateEmail
		}
	}
	cp := *a
	cp.ID = primitive.NewObjectID()
	cp.CreatedAt = time.Now().UTC()
	s.accounts[cp.ID] = &cp
	return &cp, nil
}

func (s *Store) FindAccountByID(_ context.Context, id primitive.ObjectID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) FindAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email != "" && a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Store) ExistsAccountEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email != "" && a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) TouchLogin(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		a.LastLogin = time.Now().UTC()
		a.Online = true
	}
	return nil
}

func (s *Store) SetOnline(_ context.Context, id primitive.ObjectID, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		a.Online = online
	}
	return nil
}

func (s *Store) SaveCredential(_ context.Context, c *domain.LocalCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[c.LoginID]; ok {
		return repo.ErrDuplicateLoginID
	}
	for _, other := range s.creds {
		if other.AccountID == c.AccountID {
			return repo.ErrDuplicateLoginID
		}
	}
	cp := *c
	cp.ID = primitive.NewObjectID()
	cp.CreatedAt = time.Now().UTC()
	s.creds[cp.LoginID] = &cp
	return nil
}

func (s *Store) FindCredentialByLoginID(_ context.Context, loginID string) (*domain.LocalCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creds[loginID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) FindCredentialByAccount(_ context.Context, accountID primitive.ObjectID) (*domain.LocalCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.creds {
		if c.AccountID == accountID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Store) ExistsLoginID(_ context.Context, loginID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.creds[loginID]
	return ok, nil
}

func (s *Store) UpdateCredentialPassword(_ context.Context, loginID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creds[loginID]
	if !ok {
		return repo.ErrNotFound
	}
	c.PasswordHash = passwordHash
	return nil
}

func (s *Store) SaveProviderLink(_ context.Context, l *domain.ProviderLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.links {
		if other.Provider == l.Provider && other.ExternalID == l.ExternalID {
			return repo.ErrDuplicateLink
		}
		if other.AccountID == l.AccountID && other.Provider == l.Provider {
			return repo.ErrDuplicateLink
		}
	}
	cp := *l
	cp.ID = primitive.NewObjectID()
	cp.CreatedAt = time.Now().UTC()
	s.links = append(s.links, &cp)
	return nil
}

func (s *Store) FindLinkByProviderAndExternalID(_ context.Context, provider, externalID string) (*domain.ProviderLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.Provider == provider && l.ExternalID == externalID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

// LinkCount reports how many provider links exist; test helper.
func (s *Store) LinkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

// AccountCount reports how many accounts exist; test helper.
func (s *Store) AccountCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

func (s *Store) SaveRefresh(_ context.Context, accountID primitive.ObjectID, plain string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[plain] = refreshEntry{accountID: accountID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *Store) FindValidRefresh(_ context.Context, plain string) (*repo.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.refresh[plain]
	if !ok || e.revoked || time.Now().After(e.expiresAt) {
		return nil, repo.ErrNotFound
	}
	return &repo.RefreshToken{AccountID: e.accountID, ExpiresAt: e.expiresAt}, nil
}

func (s *Store) RevokeRefresh(_ context.Context, plain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.refresh[plain]; ok {
		e.revoked = true
		s.refresh[plain] = e
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
