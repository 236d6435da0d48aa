// Package usertest provides an in-memory user.Repository for tests.
package usertest

import (
	"context"
	"sync"
	"time"

	"github.com/ledgerline/identity/pkg/identity/user"
	"github.com/ledgerline/identity/pkg/kernel"
)

// Repo is an in-memory user.Repository. It mirrors the Postgres
// implementation's error mapping so services under test see the same
// domain errors. Err, when set, is returned by every method, for
// simulating storage failures.
type Repo struct {
	mu    sync.Mutex
	users map[kernel.UserID]*user.User

	Err error
}

// NewRepo creates a repo seeded with copies of the given users.
func NewRepo(users ...*user.User) *Repo {
	r := &Repo{users: make(map[kernel.UserID]*user.User)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

// Get returns the stored user for direct state assertions.
func (r *Repo) Get(id kernel.UserID) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func (r *Repo) Create(_ context.Context, u *user.User) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken().WithDetail("field", "email")
		}
		if existing.Username == u.Username {
			return user.ErrUsernameTaken().WithDetail("field", "username")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *Repo) FindByID(_ context.Context, id kernel.UserID) (*user.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound()
	}
	cp := *u
	return &cp, nil
}

func (r *Repo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound()
}

func (r *Repo) FindByUsername(_ context.Context, username string) (*user.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound()
}

func (r *Repo) FindByVerificationToken(_ context.Context, token string) (*user.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound()
}

func (r *Repo) SetVerificationToken(_ context.Context, id kernel.UserID, token string, expiresAt time.Time) error {
	return r.update(id, func(u *user.User) {
		u.VerificationToken = &token
		u.VerificationTokenExpiresAt = &expiresAt
	})
}

func (r *Repo) ConsumeVerificationToken(_ context.Context, id kernel.UserID) error {
	return r.update(id, func(u *user.User) {
		u.EmailVerified = true
		u.VerificationToken = nil
		u.VerificationTokenExpiresAt = nil
	})
}

func (r *Repo) SetOTP(_ context.Context, id kernel.UserID, codeHash string, expiresAt time.Time) error {
	return r.update(id, func(u *user.User) {
		u.OTPCode = &codeHash
		u.OTPCodeExpiresAt = &expiresAt
	})
}

func (r *Repo) ClearOTP(_ context.Context, id kernel.UserID) error {
	return r.update(id, func(u *user.User) {
		u.OTPCode = nil
		u.OTPCodeExpiresAt = nil
	})
}

func (r *Repo) UpdatePassword(_ context.Context, id kernel.UserID, passwordHash string) error {
	return r.update(id, func(u *user.User) {
		u.PasswordHash = passwordHash
	})
}

func (r *Repo) StampLastLogin(_ context.Context, id kernel.UserID, at time.Time) error {
	return r.update(id, func(u *user.User) {
		u.LastLogin = &at
	})
}

func (r *Repo) ApplyPatch(_ context.Context, id kernel.UserID, p user.Patch) error {
	return r.update(id, func(u *user.User) {
		if p.FirstName != nil {
			u.FirstName = p.FirstName
		}
		if p.LastName != nil {
			u.LastName = p.LastName
		}
		if p.PhoneNumber != nil {
			u.PhoneNumber = p.PhoneNumber
		}
	})
}

func (r *Repo) PurgeExpiredSecrets(_ context.Context, cutoff time.Time) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.VerificationTokenExpiresAt != nil && u.VerificationTokenExpiresAt.Before(cutoff) {
			u.VerificationToken = nil
			u.VerificationTokenExpiresAt = nil
			n++
		}
		if u.OTPCodeExpiresAt != nil && u.OTPCodeExpiresAt.Before(cutoff) {
			u.OTPCode = nil
			u.OTPCodeExpiresAt = nil
			n++
		}
	}
	return n, nil
}

func (r *Repo) update(id kernel.UserID, fn func(*user.User)) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound()
	}
	fn(u)
	return nil
}
