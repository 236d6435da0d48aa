package credential

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// symbols is the punctuation set accepted by the strength policy.
const symbols = `!@#$%^&*()_+-=[]{}|;:,.<>?`

// Vault owns password hashing, verification and the strength policy.
// The bcrypt cost is injected at construction; there is no ambient state.
type Vault struct {
	cost int
}

// NewVault creates a Vault with the given bcrypt cost. Costs outside the
// valid bcrypt range fall back to the library default.
func NewVault(cost int) *Vault {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Vault{cost: cost}
}

// Hash returns a salted bcrypt hash of password. Output differs per call
// (fresh salt); verification is deterministic via Verify.
func (v *Vault) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword()
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", ErrHashFailed().WithDetail("error", err.Error())
	}
	return string(h), nil
}

// Verify reports whether password matches the stored hash.
func (v *Vault) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateStrength checks password against the policy and returns the first
// violated rule as a validation error, or nil when the password passes.
func (v *Vault) ValidateStrength(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword("Password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(symbols, r):
			hasSymbol = true
		}
	}

	switch {
	case !hasUpper:
		return ErrWeakPassword("Password must contain at least one uppercase letter")
	case !hasLower:
		return ErrWeakPassword("Password must contain at least one lowercase letter")
	case !hasDigit:
		return ErrWeakPassword("Password must contain at least one digit")
	case !hasSymbol:
		return ErrWeakPassword("Password must contain at least one special character")
	}

	return nil
}
