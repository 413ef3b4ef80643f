package testing

import (
	"crypto/sha512"
	"encoding/hex"

	"github.com/solcards/gocardsd/internal/codec/addresscodec"
	"github.com/solcards/gocardsd/internal/core/ledger/genesis"
	ed25519provider "github.com/solcards/gocardsd/internal/crypto/algorithms/ed25519"
	secp256k1provider "github.com/solcards/gocardsd/internal/crypto/algorithms/secp256k1"
)

// KeyType constants for account key derivation.
const (
	KeyTypeSecp256k1 = "secp256k1"
	KeyTypeEd25519   = "ed25519"
)

// Account represents a test account with keypair and address information.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// KeyType indicates the cryptographic algorithm used ("secp256k1" or "ed25519").
	KeyType string

	// Seed is the seed bytes used to derive the keypair.
	Seed []byte

	// Address is the base58 account address.
	Address string

	// PublicKey is the type-prefixed public key bytes.
	PublicKey []byte

	// PrivateKey is the type-prefixed private key bytes.
	PrivateKey []byte

	// ID is the 20-byte account ID derived from the public key.
	ID [20]byte
}

// NewAccount creates a new test account with a deterministic keypair
// derived from the name. Using the same name always produces the same
// account, making tests reproducible. Uses Ed25519 by default.
func NewAccount(name string) *Account {
	return NewAccountWithKeyType(name, KeyTypeEd25519)
}

// NewAccountWithKeyType creates a new test account with the specified key type.
// Supported key types: "secp256k1" and "ed25519".
func NewAccountWithKeyType(name string, keyType string) *Account {
	// Derive the seed from the name: first 16 bytes of SHA-512
	hash := sha512.Sum512([]byte(name))
	seed := hash[:16]
	return newAccountFromSeed(name, keyType, seed)
}

// NewAccountFromPassphrase creates a test account from a specific
// passphrase. Useful for recreating well-known accounts.
func NewAccountFromPassphrase(name, passphrase string) *Account {
	hash := sha512.Sum512([]byte(passphrase))
	return newAccountFromSeed(name, KeyTypeEd25519, hash[:16])
}

// MasterAccount returns the well-known master account that holds the
// entire supply at genesis.
func MasterAccount() *Account {
	acc := newAccountFromSeed("master", KeyTypeEd25519, []byte(genesis.MasterPassphrase))
	return acc
}

func newAccountFromSeed(name, keyType string, seed []byte) *Account {
	var private, public []byte
	var err error

	switch keyType {
	case KeyTypeEd25519:
		private, public, err = ed25519provider.NewProvider().GenerateKeypair(seed)
	case KeyTypeSecp256k1:
		private, public, err = secp256k1provider.NewProvider().GenerateKeypair(seed)
	default:
		panic("unsupported key type: " + keyType + " (must be 'secp256k1' or 'ed25519')")
	}
	if err != nil {
		panic("failed to derive keypair for account " + name + ": " + err.Error())
	}

	address := addresscodec.EncodePublicKey(public)
	id, err := addresscodec.Decode(address)
	if err != nil {
		panic("failed to decode account ID: " + err.Error())
	}

	return &Account{
		Name:       name,
		KeyType:    keyType,
		Seed:       seed,
		Address:    address,
		PublicKey:  public,
		PrivateKey: private,
		ID:         id,
	}
}

// PublicKeyHex returns the public key as a hex string.
func (a *Account) PublicKeyHex() string {
	return hex.EncodeToString(a.PublicKey)
}

// AccountIDHex returns the account ID as a hex string.
func (a *Account) AccountIDHex() string {
	return hex.EncodeToString(a.ID[:])
}

// AccountID returns the 20-byte account ID.
func (a *Account) AccountID() [20]byte {
	return a.ID
}

// IsEd25519 returns true if this account uses Ed25519 cryptography.
func (a *Account) IsEd25519() bool {
	return a.KeyType == KeyTypeEd25519
}

// Human returns the human-readable address of the account.
func (a *Account) Human() string {
	return a.Address
}

// String implements the Stringer interface for debugging.
func (a *Account) String() string {
	return a.Name + " (" + a.Address + ")"
}
