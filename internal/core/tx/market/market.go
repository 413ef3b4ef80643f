// Package market implements the card marketplace transactors: minting,
// listing, price updates, cancellation and purchase with a creator
// royalty split.
package market

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/solcards/gocardsd/internal/crypto"
)

// Royalty configuration. The creator royalty is deducted from the
// seller's proceeds, not added on top of the price.
const (
	// RoyaltyBasisPoints is the creator royalty (300 = 3%)
	RoyaltyBasisPoints = 300

	// basisPointsDivisor converts basis points to a fraction
	basisPointsDivisor = 10000
)

// ErrInvalidCardID is returned when a card ID does not parse.
var ErrInvalidCardID = errors.New("invalid card id")

// cardIDTag namespaces derived card IDs.
var cardIDTag = []byte("card")

// DeriveCardID computes the card ID minted by an account at a given
// sequence. The pair (accountID, sequence) is unique per transaction,
// so a mint can never collide with an earlier card.
func DeriveCardID(accountID [20]byte, sequence uint32) [32]byte {
	seq := make([]byte, 4)
	binary.BigEndian.PutUint32(seq, sequence)
	return crypto.Sha512Half(cardIDTag, accountID[:], seq)
}

// ParseCardID parses a 64-character hex card ID.
func ParseCardID(s string) ([32]byte, error) {
	var id [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(id) {
		return id, ErrInvalidCardID
	}
	copy(id[:], raw)
	return id, nil
}

// FormatCardID renders a card ID as uppercase hex.
func FormatCardID(id [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(id[:]))
}

// RoyaltySplit divides a sale price into the creator royalty and the
// seller proceeds. The royalty rounds down; the seller receives the
// remainder, so the two always sum to the price.
func RoyaltySplit(price uint64) (royalty, proceeds uint64) {
	// Split the price first so the multiplication cannot overflow.
	q, r := price/basisPointsDivisor, price%basisPointsDivisor
	royalty = q*RoyaltyBasisPoints + r*RoyaltyBasisPoints/basisPointsDivisor
	proceeds = price - royalty
	return royalty, proceeds
}
