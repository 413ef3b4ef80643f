// Package addresscodec implements base58check encoding of account
// identifiers. An encoded address is base58(version || accountID ||
// checksum) where the checksum is the first four bytes of a double
// SHA-256 over the version and account ID.
package addresscodec

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/mr-tron/base58"

	"github.com/solcards/gocardsd/internal/crypto"
)

const (
	// AccountAddressPrefix is the version byte for account addresses.
	AccountAddressPrefix byte = 0x43

	checksumSize = 4
)

var (
	// ErrInvalidAddress is returned when an address fails to decode.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidChecksum is returned when an address checksum does not match.
	ErrInvalidChecksum = errors.New("invalid address checksum")
	// ErrInvalidAccountID is returned when the payload is not 20 bytes.
	ErrInvalidAccountID = errors.New("invalid account id length")
)

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumSize]
}

// Encode returns the base58check address for a 20-byte account ID.
func Encode(accountID [20]byte) string {
	payload := make([]byte, 0, 1+len(accountID)+checksumSize)
	payload = append(payload, AccountAddressPrefix)
	payload = append(payload, accountID[:]...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload)
}

// Decode parses a base58check address back into a 20-byte account ID.
func Decode(address string) ([20]byte, error) {
	var accountID [20]byte

	payload, err := base58.Decode(address)
	if err != nil {
		return accountID, ErrInvalidAddress
	}
	if len(payload) != 1+len(accountID)+checksumSize {
		return accountID, ErrInvalidAddress
	}
	if payload[0] != AccountAddressPrefix {
		return accountID, ErrInvalidAddress
	}

	body := payload[:len(payload)-checksumSize]
	if !bytes.Equal(checksum(body), payload[len(payload)-checksumSize:]) {
		return accountID, ErrInvalidChecksum
	}

	copy(accountID[:], body[1:])
	return accountID, nil
}

// EncodePublicKey returns the address derived from serialized public
// key material.
func EncodePublicKey(publicKey []byte) string {
	return Encode(crypto.CalcAccountID(publicKey))
}

// IsValid reports whether address decodes to a well-formed account ID.
func IsValid(address string) bool {
	_, err := Decode(address)
	return err == nil
}
