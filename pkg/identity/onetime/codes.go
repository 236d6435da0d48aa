package onetime

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ledgerline/identity/pkg/errx"
)

// GenerateNumericCode generates a cryptographically secure random code of
// the given number of digits, zero-padded.
func GenerateNumericCode(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", errx.Wrap(err, "failed to generate numeric code", errx.TypeInternal)
	}

	return fmt.Sprintf(fmt.Sprintf("%%0%dd", length), n), nil
}

// GenerateOpaqueToken generates a high-entropy URL-safe random string, used
// for verification and invitation tokens.
func GenerateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errx.Wrap(err, "failed to generate token", errx.TypeInternal)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateTempSecret generates a short hex secret handed to provisioned
// placeholder accounts as their temporary credential.
func GenerateTempSecret() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", errx.Wrap(err, "failed to generate temp secret", errx.TypeInternal)
	}
	return hex.EncodeToString(buf), nil
}
