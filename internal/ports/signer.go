package ports

// Signer turns a wallet secret into an address and message signatures.
// Secrets are only ever passed through, never retained.
type Signer interface {
	Address(secret string) (string, error)
	SignMessage(secret, message string) (string, error)
}
