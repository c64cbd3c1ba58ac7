// Package eth signs sign-in challenges with secp256k1 wallet keys the way
// browser wallets do (EIP-191 personal messages).
package eth

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"klokfarm/internal/ports"
)

type Signer struct{}

var _ ports.Signer = Signer{}

func (Signer) Address(secret string) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(secret, "0x"))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

func (Signer) SignMessage(secret, message string) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(secret, "0x"))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	signature, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}

	// Wallets emit the recovery id in the 27/28 range.
	signature[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(signature), nil
}
