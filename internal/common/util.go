package common

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandURLToken generates size random bytes and returns them encoded with
// unpadded URL-safe base64. 32 bytes yield a 43 character token.
func MakeRandURLToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
