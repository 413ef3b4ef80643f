package secp256k1

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/solcards/gocardsd/internal/crypto"
)

// Provider implements digital signature operations over the secp256k1
// curve. Serialized public keys are 33-byte compressed points prefixed
// with 0x00; signatures are DER encoded.
type Provider struct {
	keyPrefix byte
}

// KeyPrefix identifies secp256k1 keys in serialized form.
const KeyPrefix byte = 0x00

var (
	// ErrInvalidPrivateKey is returned when the private key material is malformed.
	ErrInvalidPrivateKey = errors.New("invalid private key format")
	// ErrInvalidSeed is returned when the seed derives a zero scalar.
	ErrInvalidSeed = errors.New("seed derives an invalid key")
)

func NewProvider() *Provider {
	return &Provider{keyPrefix: KeyPrefix}
}

// GenerateKeypair derives a deterministic keypair from the given seed.
// The 32-byte key material is taken modulo the curve order, matching
// the derivation used for Ed25519 keys.
func (p *Provider) GenerateKeypair(seed []byte) (private, public []byte, err error) {
	keyMaterial := crypto.Sha512Half(seed)

	var scalar secp256k1.ModNScalar
	scalar.SetByteSlice(keyMaterial[:])
	if scalar.IsZero() {
		return nil, nil, ErrInvalidSeed
	}

	privKey := secp256k1.NewPrivateKey(&scalar)
	defer privKey.Zero()

	private = append([]byte{p.keyPrefix}, privKey.Serialize()...)
	public = append([]byte{p.keyPrefix}, privKey.PubKey().SerializeCompressed()...)
	return private, public, nil
}

// Sign signs the half-hash of message with the prefixed private key.
func (p *Provider) Sign(message, privateKey []byte) ([]byte, error) {
	if len(privateKey) != 1+32 || privateKey[0] != p.keyPrefix {
		return nil, ErrInvalidPrivateKey
	}

	privKey := secp256k1.PrivKeyFromBytes(privateKey[1:])
	defer privKey.Zero()

	digest := crypto.Sha512Half(message)
	sig := ecdsa.Sign(privKey, digest[:])
	return sig.Serialize(), nil
}

// Verify reports whether signature is a valid DER-encoded signature of
// message under the prefixed compressed public key.
func (p *Provider) Verify(message, publicKey, signature []byte) bool {
	if len(publicKey) != 1+33 || publicKey[0] != p.keyPrefix {
		return false
	}

	pubKey, err := secp256k1.ParsePubKey(publicKey[1:])
	if err != nil {
		return false
	}

	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}

	digest := crypto.Sha512Half(message)
	return sig.Verify(digest[:], pubKey)
}
