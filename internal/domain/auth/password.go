package auth

import (
	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

// Passwords hashes and compares passwords with bcrypt.
type Passwords struct {
	cost  int
	dummy []byte
}

// NewPasswords creates a bcrypt hasher. A zero cost selects bcrypt.DefaultCost.
func NewPasswords(cost int) (*Passwords, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.Errorf("bcrypt cost %d out of range", cost)
	}
	// Compared against when the email is unknown so both login failures
	// take the same time.
	dummy, err := bcrypt.GenerateFromPassword([]byte("teez-dummy-password"), cost)
	if err != nil {
		return nil, errors.Wrap(err, "generate dummy hash")
	}
	return &Passwords{cost: cost, dummy: dummy}, nil
}

// Hash returns the salted bcrypt hash of password.
func (p *Passwords) Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(h), nil
}

// Match reports whether password matches hash.
func (p *Passwords) Match(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// burn performs a comparison against the dummy hash.
func (p *Passwords) burn(password string) {
	_ = bcrypt.CompareHashAndPassword(p.dummy, []byte(password))
}
