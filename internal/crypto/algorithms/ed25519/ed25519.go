package ed25519

import (
	"bytes"
	"crypto/ed25519"
	"errors"

	"github.com/solcards/gocardsd/internal/crypto"
)

// Provider implements digital signature operations using the Ed25519
// algorithm. Public keys are prefixed with 0xED on the wire so that the
// key type can be recovered from the key material alone.
type Provider struct {
	keyPrefix byte
}

var (
	// ErrInvalidPrivateKey is returned when the private key material is malformed.
	ErrInvalidPrivateKey = errors.New("invalid private key format")
	// ErrInvalidPublicKey is returned when the public key material is malformed.
	ErrInvalidPublicKey = errors.New("invalid public key format")
)

// KeyPrefix identifies Ed25519 keys in serialized form.
const KeyPrefix byte = 0xED

func NewProvider() *Provider {
	return &Provider{keyPrefix: KeyPrefix}
}

// GenerateKeypair derives a deterministic keypair from the given seed.
// The returned keys carry the 0xED type prefix; the private key is the
// 32-byte Ed25519 seed.
func (p *Provider) GenerateKeypair(seed []byte) (private, public []byte, err error) {
	keyMaterial := crypto.Sha512Half(seed)
	pubKey, _, err := ed25519.GenerateKey(bytes.NewBuffer(keyMaterial[:]))
	if err != nil {
		return nil, nil, err
	}

	private = append([]byte{p.keyPrefix}, keyMaterial[:ed25519.SeedSize]...)
	public = append([]byte{p.keyPrefix}, pubKey...)
	return private, public, nil
}

// Sign signs message with the prefixed private key.
func (p *Provider) Sign(message, privateKey []byte) ([]byte, error) {
	if len(privateKey) != 1+ed25519.SeedSize || privateKey[0] != p.keyPrefix {
		return nil, ErrInvalidPrivateKey
	}

	signingKey := ed25519.NewKeyFromSeed(privateKey[1:])
	return ed25519.Sign(signingKey, message), nil
}

// Verify reports whether signature is a valid Ed25519 signature of
// message under the prefixed public key.
func (p *Provider) Verify(message, publicKey, signature []byte) bool {
	if len(publicKey) != 1+ed25519.PublicKeySize || publicKey[0] != p.keyPrefix {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey[1:]), message, signature)
}
