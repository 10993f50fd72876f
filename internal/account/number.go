package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

const numberGenerateAttempts = 64

var numberPattern = regexp.MustCompile(`^[0-9]{9}$`)

// ErrNumberExhausted indicates number allocation kept colliding with existing
// accounts. Treated as fatal by callers rather than looping forever.
var ErrNumberExhausted = errors.New("account number space exhausted")

// ValidNumber reports whether s is a well-formed 9-digit account number.
func ValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// GenerateNumber draws uniformly random 9-digit numbers until one is free.
// The draw itself has no side effect; the caller persists the number.
func GenerateNumber(ctx context.Context, repo Repository) (string, error) {
	for attempt := 0; attempt < numberGenerateAttempts; attempt++ {
		candidate, err := randomNumber()
		if err != nil {
			return "", err
		}
		exists, err := repo.NumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrNumberExhausted
}

func randomNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%09d", n.Int64()), nil
}
