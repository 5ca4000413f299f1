package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// verifierAlphabet is the RFC 7636 unreserved character set.
const verifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// verifierLength is the number of characters in a generated verifier.
// RFC 7636 allows 43 to 128; we always use the maximum.
const verifierLength = 128

// StatePrefix marks state tokens minted by this client. Callbacks whose
// state lacks the prefix never match a pending login.
const StatePrefix = "google_auth_"

// GenerateVerifier returns a 128-character PKCE code verifier drawn from
// the unreserved alphabet using crypto/rand.
func GenerateVerifier() (string, error) {
	buf := make([]byte, verifierLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	out := make([]byte, verifierLength)
	for i, b := range buf {
		out[i] = verifierAlphabet[int(b)%len(verifierAlphabet)]
	}

	return string(out), nil
}

// Challenge derives the S256 code challenge for a verifier: the unpadded
// base64url encoding of the verifier's SHA-256 digest.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateState returns an opaque state token with the [StatePrefix] and
// 16 bytes of entropy.
func GenerateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return StatePrefix + hex.EncodeToString(buf), nil
}
