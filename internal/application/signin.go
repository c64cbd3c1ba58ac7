package application

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const signInNonceBytes = 48

// issuedAtLayout renders timestamps the way the service expects them: UTC,
// millisecond precision, literal Z suffix.
const issuedAtLayout = "2006-01-02T15:04:05.000Z"

// NewSignInNonce returns 48 random bytes hex-encoded.
func NewSignInNonce() (string, error) {
	buf := make([]byte, signInNonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// BuildSignInMessage renders the wallet sign-in challenge. The template is a
// wire contract with the verification endpoint and must match byte for byte.
func BuildSignInMessage(address, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf(
		"klokapp.ai wants you to sign in with your Ethereum account:\n%s\n\n\nURI: https://klokapp.ai/\nVersion: 1\nChain ID: 1\nNonce: %s\nIssued At: %s",
		address,
		nonce,
		issuedAt.UTC().Format(issuedAtLayout),
	)
}
