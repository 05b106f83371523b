package ethereum

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/x-xyz/escrow/domain"
)

// NewAccount generates a wallet key and the checksummed address it signs for
func NewAccount() (*ecdsa.PrivateKey, domain.Address, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, "", err
	}
	return key, AddressOf(key), nil
}

func AddressOf(key *ecdsa.PrivateKey) domain.Address {
	return domain.Address(crypto.PubkeyToAddress(key.PublicKey).Hex())
}
