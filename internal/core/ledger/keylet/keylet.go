package keylet

import (
	"github.com/solcards/gocardsd/internal/core/ledger/entry"
	"github.com/solcards/gocardsd/internal/crypto"
)

// Tag prefixes for keylet generation. Every derived key hashes its tag
// ahead of the entry-specific inputs so that entries of different kinds
// can never collide.
var (
	tagAccount = []byte("account")
	tagStats   = []byte("stats")
	tagListing = []byte("listing")
	tagCustody = []byte("custody")
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the tag and provided data.
func indexHash(tag []byte, data ...[]byte) [32]byte {
	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, tag)
	inputs = append(inputs, data...)
	return crypto.Sha512Half(inputs...)
}

// Account returns the keylet for an account root entry.
func Account(accountID [20]byte) Keylet {
	return Keylet{
		Type: entry.TypeAccountRoot,
		Key:  indexHash(tagAccount, accountID[:]),
	}
}

// Stats returns the keylet for a card's immutable attributes.
func Stats(cardID [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeCardStats,
		Key:  indexHash(tagStats, cardID[:]),
	}
}

// Listing returns the keylet for a card's marketplace listing.
func Listing(cardID [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeListing,
		Key:  indexHash(tagListing, cardID[:]),
	}
}

// Custody returns the keylet for the entry recording a card's holder.
func Custody(cardID [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeCustody,
		Key:  indexHash(tagCustody, cardID[:]),
	}
}
