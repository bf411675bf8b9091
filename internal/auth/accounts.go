// Package auth authenticates the configured account and issues the bearer
// tokens that guard every budget endpoint.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials is returned for any login that does not match.
var ErrBadCredentials = errors.New("incorrect username or password")

// Accounts is the immutable set of users allowed to log in.
type Accounts struct {
	hashes map[string][]byte
	dummy  []byte
}

// Credential describes one configured login. Exactly one of Password and
// PasswordHash is expected to be set.
type Credential struct {
	Username     string
	Password     string
	PasswordHash string
}

// NewAccounts hashes any plaintext passwords with cost and returns the set.
func NewAccounts(cost int, creds ...Credential) (*Accounts, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("unknown-user-placeholder"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder: %w", err)
	}

	a := &Accounts{hashes: make(map[string][]byte, len(creds)), dummy: dummy}
	for _, c := range creds {
		if c.Username == "" {
			return nil, errors.New("account username is required")
		}
		switch {
		case c.PasswordHash != "":
			if _, err := bcrypt.Cost([]byte(c.PasswordHash)); err != nil {
				return nil, fmt.Errorf("password hash for %q: %w", c.Username, err)
			}
			a.hashes[c.Username] = []byte(c.PasswordHash)
		case c.Password != "":
			h, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
			if err != nil {
				return nil, fmt.Errorf("hash password for %q: %w", c.Username, err)
			}
			a.hashes[c.Username] = h
		default:
			return nil, fmt.Errorf("account %q has no password", c.Username)
		}
	}
	return a, nil
}

// Authenticate checks a username/password pair. Unknown usernames still pay
// for a bcrypt comparison so both failure modes take the same time.
func (a *Accounts) Authenticate(username, password string) error {
	hash, ok := a.hashes[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(a.dummy, []byte(password))
		return ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrBadCredentials
	}
	return nil
}

// Exists reports whether username is a configured account.
func (a *Accounts) Exists(username string) bool {
	_, ok := a.hashes[username]
	return ok
}
