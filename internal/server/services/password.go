package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a variable so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

// dummyDigest is compared against when the email is unknown, so that both
// login failures take about as long.
var dummyDigest = sync.OnceValue(func() []byte {
	d, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return d
})

// HashPassword returns a bcrypt digest of password.
func HashPassword(password string) (string, error) {
	d, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password must be at most 72 bytes", common.ErrorValidation)
		}
		return "", err
	}
	return string(d), nil
}

// LegacyDigest is the unsalted sha256 hex digest older accounts were stored
// with.
func LegacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// verifyPassword checks password against a stored digest of either format.
// legacy reports that the digest is a sha256 one and should be replaced.
func verifyPassword(digest, password string) (ok, legacy bool) {
	if isLegacyDigest(digest) {
		candidate := LegacyDigest(password)
		return subtle.ConstantTimeCompare([]byte(digest), []byte(candidate)) == 1, true
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil, false
}

func isLegacyDigest(digest string) bool {
	if len(digest) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}
