package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticator checks a username/password pair.
type Authenticator interface {
	Authenticate(username, password string) (Identity, error)
}

type account struct {
	identity Identity
	hash     []byte
}

// Credentials is an in-memory account store. Passwords are kept as bcrypt
// hashes.
type Credentials struct {
	mu       sync.RWMutex
	accounts map[string]account
	cost     int
}

func NewCredentials() *Credentials {
	return &Credentials{accounts: make(map[string]account), cost: bcrypt.DefaultCost}
}

// WithCost changes the bcrypt cost used by Add; tests use bcrypt.MinCost.
func (s *Credentials) WithCost(cost int) *Credentials {
	s.cost = cost
	return s
}

// Add registers an account, hashing password unless it already looks like a
// bcrypt hash.
func (s *Credentials) Add(id int, username, password string) error {
	hash := []byte(password)
	if !looksLikeBcrypt(password) {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), s.cost)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = account{identity: Identity{ID: id, Username: username}, hash: hash}
	return nil
}

func (s *Credentials) Authenticate(username, password string) (Identity, error) {
	s.mu.RLock()
	acc, ok := s.accounts[username]
	s.mu.RUnlock()
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return acc.identity, nil
}

func looksLikeBcrypt(value string) bool {
	return len(value) > 4 && value[0:2] == "$2"
}
