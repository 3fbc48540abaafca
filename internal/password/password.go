// Package password hashes and verifies user passwords with argon2id.
package password

import (
	"errors"
	"fmt"

	"github.com/matthewhartstonge/argon2"
)

var ErrEmptyPassword = errors.New("password is empty")

// Hasher produces PHC-encoded argon2id hashes.
type Hasher struct {
	cfg argon2.Config
}

// NewHasher uses the library's recommended argon2id parameters.
func NewHasher() *Hasher {
	return &Hasher{cfg: argon2.DefaultConfig()}
}

// NewHasherWithCost lowers or raises the work factor; memory is in KiB.
func NewHasherWithCost(timeCost, memoryKiB uint32, parallelism uint8) *Hasher {
	cfg := argon2.DefaultConfig()
	cfg.TimeCost = timeCost
	cfg.MemoryCost = memoryKiB
	cfg.Parallelism = parallelism
	return &Hasher{cfg: cfg}
}

func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}

	encoded, err := h.cfg.HashEncoded([]byte(plain))
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(encoded), nil
}

// Verify reports whether plain matches encoded. A malformed hash is an error,
// a wrong password is not.
func (h *Hasher) Verify(plain, encoded string) (bool, error) {
	ok, err := argon2.VerifyEncoded([]byte(plain), []byte(encoded))
	if err != nil {
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
	return ok, nil
}
