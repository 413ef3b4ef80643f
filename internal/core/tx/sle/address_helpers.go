package sle

import (
	"github.com/solcards/gocardsd/internal/codec/addresscodec"
)

// EncodeAccountID encodes a 20-byte account ID to an address string
func EncodeAccountID(accountID [20]byte) string {
	return addresscodec.Encode(accountID)
}

// DecodeAccountID decodes an address string to a 20-byte account ID
func DecodeAccountID(address string) ([20]byte, error) {
	return addresscodec.Decode(address)
}
