package tx

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/solcards/gocardsd/internal/codec/addresscodec"
	ed25519provider "github.com/solcards/gocardsd/internal/crypto/algorithms/ed25519"
	secp256k1provider "github.com/solcards/gocardsd/internal/crypto/algorithms/secp256k1"
)

// Signature verification errors
var (
	ErrMissingSignature       = errors.New("transaction has no signature")
	ErrMissingSigningKey      = errors.New("transaction has no signing public key")
	ErrBadSignature           = errors.New("signature verification failed")
	ErrKeyAccountMismatch     = errors.New("signing key does not match account")
	ErrUnsupportedKeyType     = errors.New("unsupported signing key type")
	ErrMalformedSigningFields = errors.New("malformed signing fields")
)

// signingPrefix is prepended to the canonical payload before signing so
// that transaction signatures can never be confused with other signed
// material.
var signingPrefix = []byte("STX\x00")

// SigningPayload returns the canonical bytes covered by the signature:
// the signing prefix followed by the transaction's flattened fields,
// minus the signature itself, as canonical JSON. encoding/json writes
// map keys in sorted order, so the payload is deterministic.
func SigningPayload(tx Transaction) ([]byte, error) {
	flat, err := tx.Flatten()
	if err != nil {
		return nil, err
	}
	delete(flat, "TxnSignature")

	body, err := json.Marshal(flat)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, 0, len(signingPrefix)+len(body))
	payload = append(payload, signingPrefix...)
	payload = append(payload, body...)
	return payload, nil
}

// Sign computes and attaches a signature over the transaction using the
// given keypair. SigningPubKey is set from the public key.
func Sign(tx Transaction, privateKey, publicKey []byte) error {
	common := tx.GetCommon()
	common.SigningPubKey = strings.ToUpper(hex.EncodeToString(publicKey))
	common.TxnSignature = ""

	payload, err := SigningPayload(tx)
	if err != nil {
		return err
	}

	var sig []byte
	switch {
	case len(publicKey) > 0 && publicKey[0] == ed25519provider.KeyPrefix:
		sig, err = ed25519provider.NewProvider().Sign(payload, privateKey)
	case len(publicKey) > 0 && publicKey[0] == secp256k1provider.KeyPrefix:
		sig, err = secp256k1provider.NewProvider().Sign(payload, privateKey)
	default:
		return ErrUnsupportedKeyType
	}
	if err != nil {
		return err
	}

	common.TxnSignature = strings.ToUpper(hex.EncodeToString(sig))
	return nil
}

// VerifySignature verifies that a transaction is properly signed.
// Returns nil if the signature is valid, or an error describing the problem.
func VerifySignature(tx Transaction) error {
	common := tx.GetCommon()
	if common.SigningPubKey == "" {
		return ErrMissingSigningKey
	}
	if common.TxnSignature == "" {
		return ErrMissingSignature
	}

	publicKey, err := hex.DecodeString(common.SigningPubKey)
	if err != nil || len(publicKey) == 0 {
		return ErrMalformedSigningFields
	}
	signature, err := hex.DecodeString(common.TxnSignature)
	if err != nil {
		return ErrMalformedSigningFields
	}

	payload, err := SigningPayload(tx)
	if err != nil {
		return err
	}

	var valid bool
	switch publicKey[0] {
	case ed25519provider.KeyPrefix:
		valid = ed25519provider.NewProvider().Verify(payload, publicKey, signature)
	case secp256k1provider.KeyPrefix:
		valid = secp256k1provider.NewProvider().Verify(payload, publicKey, signature)
	default:
		return ErrUnsupportedKeyType
	}
	if !valid {
		return ErrBadSignature
	}

	return nil
}

// VerifySigningKeyAuthorization checks that the public key that signed
// the transaction derives the source account's address.
func VerifySigningKeyAuthorization(tx Transaction) error {
	common := tx.GetCommon()
	publicKey, err := hex.DecodeString(common.SigningPubKey)
	if err != nil || len(publicKey) == 0 {
		return ErrMalformedSigningFields
	}

	if addresscodec.EncodePublicKey(publicKey) != common.Account {
		return ErrKeyAccountMismatch
	}
	return nil
}
