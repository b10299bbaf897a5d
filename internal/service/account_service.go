package service

import (
	"context"
	"errors"
	"strings"

	"Warden/internal/cache"
	dom "Warden/internal/domain"
	"Warden/internal/repo"
	"Warden/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

// MinPasswordLen is the minimum accepted password length at registration.
const MinPasswordLen = 6

var (
	// ErrValidation: the request shape was wrong (missing field, short password).
	ErrValidation = errors.New("invalid registration data")
	// ErrDuplicateAccount: username or email already taken. Deliberately one
	// error for both so responses never say which field conflicted.
	ErrDuplicateAccount = errors.New("username or email already taken")
	// ErrInvalidCredentials covers both unknown username and wrong password;
	// callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotFound: the account does not exist.
	ErrNotFound = errors.New("account not found")
)

// AccountService handles registration, credential checks and account reads.
type AccountService struct {
	repo  repo.AccountRepo
	cache *cache.AccountCache
	sf    singleflight.Group
}

// NewAccountService creates an AccountService. If c is nil, caching is disabled.
func NewAccountService(r repo.AccountRepo, c *cache.AccountCache) *AccountService {
	return &AccountService{repo: r, cache: c}
}

// Register creates a new account with a bcrypt-hashed password.
// The plaintext password is never stored; the digest embeds its own random
// salt, so hashing the same password twice yields different digests.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (dom.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || len(password) < MinPasswordLen {
		return dom.Account{}, ErrValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dom.Account{}, err
	}
	a, err := s.repo.Create(ctx, username, email, string(hash))
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.Account{}, ErrDuplicateAccount
		}
		return dom.Account{}, err
	}
	s.invalidateCache(ctx)
	return a, nil
}

// Authenticate checks username and password; returns the account if valid.
// Unknown username and wrong password both come back as ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (dom.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.Account{}, ErrInvalidCredentials
	}
	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Account{}, ErrInvalidCredentials
		}
		return dom.Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return dom.Account{}, ErrInvalidCredentials
	}
	return a, nil
}

// GetByID returns a single account.
func (s *AccountService) GetByID(ctx context.Context, id int64) (dom.Account, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Account{}, ErrNotFound
		}
		return dom.Account{}, err
	}
	return a, nil
}

// List returns all accounts, read-through cached. singleflight collapses
// concurrent cold reads into one DB query.
func (s *AccountService) List(ctx context.Context) ([]dom.Account, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do("list", func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Account), nil
	}
	return s.repo.List(ctx)
}

func (s *AccountService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
}
